package ledger

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"
)

type contextKey string

const LedgerIdKey contextKey = "ledgerId"

var ErrNoLedger = errors.New("ledger id not found")

// CurrentId retrieves the ledger id from the context. Returns ErrNoLedger
// when no id is present.
func CurrentId(ctx context.Context) (string, error) {
	id, ok := ctx.Value(LedgerIdKey).(string)
	if !ok || id == "" {
		log.Trace("ledger id not found in context")
		return "", ErrNoLedger
	}
	return id, nil
}

func WithLedgerId(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, LedgerIdKey, id)
}
