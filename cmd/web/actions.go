package main

import (
	"context"
	"fmt"
	"io"

	"github.com/samber/do"
	"github.com/serroba/shurl-web/internal/api"
	"github.com/serroba/shurl-web/internal/container"
	"github.com/serroba/shurl-web/internal/view"
	"go.uber.org/zap"
)

// newBinder wires a single binder for one-shot terminal use.
func newBinder(options *container.Options) *view.Binder {
	injector := do.New()
	do.ProvideValue(injector, options)
	container.LoggerPackage(injector)
	container.APIPackage(injector)

	return view.NewBinder(do.MustInvoke[*api.Client](injector), do.MustInvoke[*zap.Logger](injector))
}

// runShorten prints the shorten view field and reports whether it holds an error.
func runShorten(ctx context.Context, binder *view.Binder, rawURL string, w io.Writer) bool {
	binder.SetOriginalURL(rawURL)

	return report(w, binder.OnShortenRequested(ctx))
}

// runLookup prints the lookup view field and reports whether it holds an error.
func runLookup(ctx context.Context, binder *view.Binder, code string, w io.Writer) bool {
	binder.SetShortURL(code)

	return report(w, binder.OnLookupRequested(ctx))
}

func report(w io.Writer, out view.Outcome) bool {
	if !out.Sent {
		return false
	}

	_, _ = fmt.Fprintln(w, out.Output())

	return out.Failed()
}
