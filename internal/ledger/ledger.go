// Package ledger owns the authoritative budget and expense collections.
//
// The in-memory state is the source of truth for the process lifetime.
// Every mutation is followed by a best-effort asynchronous write of the
// affected slot to the kv store: a failed write is logged and abandoned, it
// neither rolls back the mutation nor surfaces to the caller. Durability is
// only needed to survive a restart.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"lastapp/internal/core"
	"lastapp/internal/kv"
)

// Slot keys in the kv store. Budgets and expenses are independent slots so
// a malformed one never takes the other down with it.
const (
	SlotBudgets    = "budgets"
	SlotExpenses   = "expenses"
	SlotOnboarding = "onboarding_shown"
)

const persistTimeout = 5 * time.Second

// Ledger is the single source of truth for budgets and expenses.
type Ledger struct {
	store kv.Store

	mu       sync.RWMutex
	budgets  []core.Budget
	expenses []core.Expense
	revision uint64

	subMu sync.Mutex
	subs  map[chan struct{}]struct{}

	writes sync.WaitGroup
}

func New(store kv.Store) *Ledger {
	return &Ledger{
		store: store,
		subs:  make(map[chan struct{}]struct{}),
	}
}

// Load reads both collections from the kv store. An absent slot becomes an
// empty collection; a malformed slot is logged and replaced by an empty
// collection without affecting the other slot. Load never fails the
// startup: worst case the ledger starts empty.
func (l *Ledger) Load(ctx context.Context) {
	budgets := loadSlot[core.Budget](ctx, l.store, SlotBudgets)
	expenses := loadSlot[core.Expense](ctx, l.store, SlotExpenses)

	l.mu.Lock()
	l.budgets = budgets
	l.expenses = expenses
	l.mu.Unlock()

	slog.InfoContext(ctx, "Ledger loaded",
		"budgets", len(budgets),
		"expenses", len(expenses))
}

func loadSlot[T any](ctx context.Context, store kv.Store, slot string) []T {
	data, err := store.Get(ctx, slot)
	if errors.Is(err, kv.ErrNotFound) {
		return nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "Failed to read slot, starting empty",
			"slot", slot, "error", err)
		return nil
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		slog.ErrorContext(ctx, "Malformed slot data, starting empty",
			"slot", slot, "error", err)
		return nil
	}
	return items
}

// AddBudget validates the budget and appends it in insertion order.
func (l *Ledger) AddBudget(ctx context.Context, b core.Budget) error {
	if err := b.Validate(); err != nil {
		return err
	}

	l.mu.Lock()
	l.budgets = append(l.budgets, b)
	l.revision++
	payload, err := json.Marshal(l.budgets)
	l.mu.Unlock()

	l.persist(ctx, SlotBudgets, payload, err)
	l.notify()
	return nil
}

// AddExpense validates the expense and appends it in insertion order. The
// budget reference is deliberately not checked against the budget
// collection: a dangling reference degrades to the "unknown budget" bucket
// in derived views.
func (l *Ledger) AddExpense(ctx context.Context, e core.Expense) error {
	if err := e.Validate(); err != nil {
		return err
	}

	l.mu.Lock()
	l.expenses = append(l.expenses, e)
	l.revision++
	payload, err := json.Marshal(l.expenses)
	l.mu.Unlock()

	l.persist(ctx, SlotExpenses, payload, err)
	l.notify()
	return nil
}

// DeleteExpense removes the expense with the given id. Deleting an unknown
// id is a no-op, not an error; it reports whether anything was removed.
func (l *Ledger) DeleteExpense(ctx context.Context, id string) bool {
	l.mu.Lock()
	idx := -1
	for i, e := range l.expenses {
		if e.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		l.mu.Unlock()
		return false
	}
	l.expenses = append(l.expenses[:idx], l.expenses[idx+1:]...)
	l.revision++
	payload, err := json.Marshal(l.expenses)
	l.mu.Unlock()

	l.persist(ctx, SlotExpenses, payload, err)
	l.notify()
	return true
}

// Snapshot returns a consistent copy of both collections in insertion
// order.
func (l *Ledger) Snapshot() core.Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	s := core.Snapshot{
		Budgets:  make([]core.Budget, len(l.budgets)),
		Expenses: make([]core.Expense, len(l.expenses)),
	}
	copy(s.Budgets, l.budgets)
	copy(s.Expenses, l.expenses)
	return s
}

// Revision is a monotonic mutation counter. Readers use it to key derived
// caches: two equal revisions imply identical snapshots.
func (l *Ledger) Revision() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.revision
}

// persist hands the serialized slot to a background write. The caller's
// context is not reused: the mutator may long have returned when the write
// runs, and a canceled request must not cancel durability.
func (l *Ledger) persist(ctx context.Context, slot string, payload []byte, marshalErr error) {
	if marshalErr != nil {
		slog.ErrorContext(ctx, "Failed to serialize slot, skipping persist",
			"slot", slot, "error", marshalErr)
		return
	}

	l.writes.Add(1)
	go func() {
		defer l.writes.Done()
		writeCtx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := l.store.Put(writeCtx, slot, payload); err != nil {
			// Best effort: the in-memory state stays authoritative, only
			// restart durability is at risk.
			slog.Error("Failed to persist slot",
				"slot", slot, "error", err)
		}
	}()
}

// Subscribe registers a change listener. The channel receives a signal
// after every committed mutation; slow listeners may coalesce signals but
// never block a mutator.
func (l *Ledger) Subscribe() chan struct{} {
	ch := make(chan struct{}, 1)
	l.subMu.Lock()
	l.subs[ch] = struct{}{}
	l.subMu.Unlock()
	return ch
}

func (l *Ledger) Unsubscribe(ch chan struct{}) {
	l.subMu.Lock()
	delete(l.subs, ch)
	l.subMu.Unlock()
}

func (l *Ledger) notify() {
	l.subMu.Lock()
	defer l.subMu.Unlock()
	for ch := range l.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Flush blocks until all in-flight persistence writes have finished.
func (l *Ledger) Flush() {
	l.writes.Wait()
}

// Close flushes pending writes and closes the kv store.
func (l *Ledger) Close() error {
	l.Flush()
	return l.store.Close()
}
