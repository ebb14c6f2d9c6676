// Package activity publishes and records what users do with the two forms.
package activity

import (
	"fmt"
	"time"

	"github.com/serroba/shurl-web/internal/messaging"
	"github.com/serroba/shurl-web/internal/view"
)

const (
	TopicShorten = "ui.shorten"
	TopicLookup  = "ui.lookup"
)

// ActionEvent is emitted once per completed view action.
type ActionEvent struct {
	SessionID  string      `json:"sessionId"`
	Action     view.Action `json:"action"`
	Input      string      `json:"input"`
	Output     string      `json:"output"`
	Failed     bool        `json:"failed"`
	Sent       bool        `json:"sent"`
	Stale      bool        `json:"stale,omitempty"`
	ClientIP   string      `json:"clientIp"`
	UserAgent  string      `json:"userAgent"`
	Referrer   string      `json:"referrer,omitempty"`
	OccurredAt time.Time   `json:"occurredAt"`
}

// NewActionEvent describes out for the given session.
func NewActionEvent(sessionID string, out view.Outcome, meta RequestMeta, at time.Time) *ActionEvent {
	return &ActionEvent{
		SessionID:  sessionID,
		Action:     out.Action,
		Input:      out.Input,
		Output:     out.Output(),
		Failed:     out.Failed(),
		Sent:       out.Sent,
		Stale:      out.Stale,
		ClientIP:   meta.ClientIP,
		UserAgent:  meta.UserAgent,
		Referrer:   meta.Referrer,
		OccurredAt: at,
	}
}

// Validate rejects events no store can record. Its errors wrap
// messaging.ErrUnrecoverable, so consumers drop such events instead of retrying.
func (e *ActionEvent) Validate() error {
	switch {
	case e.Action != view.ActionShorten && e.Action != view.ActionLookup:
		return fmt.Errorf("%w: unknown action %q", messaging.ErrUnrecoverable, e.Action)
	case e.SessionID == "":
		return fmt.Errorf("%w: missing session id", messaging.ErrUnrecoverable)
	case e.OccurredAt.IsZero():
		return fmt.Errorf("%w: missing occurrence time", messaging.ErrUnrecoverable)
	}

	return nil
}

// TopicFor returns the topic events of action are published on.
func TopicFor(action view.Action) string {
	if action == view.ActionLookup {
		return TopicLookup
	}

	return TopicShorten
}
