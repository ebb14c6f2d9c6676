package view

// State is everything the page renders. It is overwritten by each action, never accumulated.
type State struct {
	// shorten form
	OriginalURL  string `json:"originalUrl"`
	ShortURLView string `json:"shortUrlView"`
	ShortenError bool   `json:"shortenError"`

	// lookup form
	ShortURL        string `json:"shortUrl"`
	OriginalURLView string `json:"originalUrlView"`
	LookupError     bool   `json:"lookupError"`
}

// Action names a user-triggered view action.
type Action string

const (
	ActionShorten Action = "shorten"
	ActionLookup  Action = "lookup"
)

// Outcome reports what an action did to the view.
type Outcome struct {
	Action Action
	Input  string
	// Sent is false when the action was skipped without a network call.
	Sent bool
	// Stale is true when a newer call of the same action finished first
	// and this response was dropped.
	Stale bool
	State State
}

// Failed reports whether this action's own response set its error flag.
func (o Outcome) Failed() bool {
	if !o.Sent || o.Stale {
		return false
	}

	switch o.Action {
	case ActionShorten:
		return o.State.ShortenError
	case ActionLookup:
		return o.State.LookupError
	default:
		return false
	}
}

// Output returns the view field the action writes.
func (o Outcome) Output() string {
	if o.Action == ActionLookup {
		return o.State.OriginalURLView
	}

	return o.State.ShortURLView
}
