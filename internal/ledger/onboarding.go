package ledger

import (
	"context"
	"errors"
	"fmt"

	"lastapp/internal/kv"
)

// WelcomeSeen reports whether the one-time welcome flow was already shown.
// The flag lives in its own slot, outside the budget/expense collections.
func (l *Ledger) WelcomeSeen(ctx context.Context) bool {
	data, err := l.store.Get(ctx, SlotOnboarding)
	if errors.Is(err, kv.ErrNotFound) {
		return false
	}
	if err != nil {
		return false
	}
	return string(data) == "true"
}

// MarkWelcomeSeen records that the welcome flow was shown. Unlike the
// collection slots this write is synchronous: it is rare and callers want
// to know it stuck.
func (l *Ledger) MarkWelcomeSeen(ctx context.Context) error {
	if err := l.store.Put(ctx, SlotOnboarding, []byte("true")); err != nil {
		return fmt.Errorf("mark welcome seen: %w", err)
	}
	return nil
}
