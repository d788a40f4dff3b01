package campaign

import (
	"context"

	"rentscan/internal/offer"
)

// Session fetches offers for windows until it is closed. Sessions are used
// from several goroutines at once when the runner is parallel.
type Session interface {
	Fetch(ctx context.Context, window RequestWindow) ([]offer.RawOffer, error)
	Close() error
}

// Source creates sessions. The runner replaces its session every
// Options.RotateEvery windows.
type Source interface {
	Name() string
	OpenSession(ctx context.Context) (Session, error)
}
