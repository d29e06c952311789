package services

import (
	"context"
	"fmt"
	"log/slog"

	"lastapp/internal/amqp"
	"lastapp/internal/core"
	"lastapp/internal/ledger"
)

// ChangePublisher is the outbound port for the change feed. *amqp.Client
// satisfies it; a nil publisher disables publication entirely.
type ChangePublisher interface {
	PublishChange(ctx context.Context, msg *amqp.ChangeMessage) error
}

// LedgerService fronts the ledger store and announces committed mutations
// on the change feed. Publication is best effort: a broker failure never
// fails the mutation, the expense or budget is already committed locally.
type LedgerService struct {
	ledger    *ledger.Ledger
	publisher ChangePublisher
}

func NewLedgerService(l *ledger.Ledger, publisher ChangePublisher) *LedgerService {
	return &LedgerService{
		ledger:    l,
		publisher: publisher,
	}
}

func (s *LedgerService) AddBudget(ctx context.Context, b core.Budget) error {
	if err := s.ledger.AddBudget(ctx, b); err != nil {
		return err
	}
	s.publish(ctx, amqp.NewChangeMessage(amqp.EntityBudget, amqp.OpAdd, b.ID))
	return nil
}

func (s *LedgerService) AddExpense(ctx context.Context, e core.Expense) error {
	if err := s.ledger.AddExpense(ctx, e); err != nil {
		return err
	}
	s.publish(ctx, amqp.NewChangeMessage(amqp.EntityExpense, amqp.OpAdd, e.ID))
	return nil
}

func (s *LedgerService) DeleteExpense(ctx context.Context, id string) {
	if removed := s.ledger.DeleteExpense(ctx, id); !removed {
		return
	}
	s.publish(ctx, amqp.NewChangeMessage(amqp.EntityExpense, amqp.OpDelete, id))
}

func (s *LedgerService) publish(ctx context.Context, msg *amqp.ChangeMessage) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishChange(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish change message",
			"entity", msg.Entity,
			"op", msg.Op,
			"id", msg.ID,
			"error", err)
	}
}

// Read-side passthroughs so HTTP handlers depend on one collaborator.

func (s *LedgerService) Snapshot() core.Snapshot { return s.ledger.Snapshot() }
func (s *LedgerService) Revision() uint64        { return s.ledger.Revision() }

func (s *LedgerService) Subscribe() chan struct{}     { return s.ledger.Subscribe() }
func (s *LedgerService) Unsubscribe(ch chan struct{}) { s.ledger.Unsubscribe(ch) }

func (s *LedgerService) WelcomeSeen(ctx context.Context) bool { return s.ledger.WelcomeSeen(ctx) }
func (s *LedgerService) MarkWelcomeSeen(ctx context.Context) error {
	return s.ledger.MarkWelcomeSeen(ctx)
}

// Close flushes pending ledger writes and releases the broker connection.
func (s *LedgerService) Close() error {
	var errs []error

	if s.ledger != nil {
		if err := s.ledger.Close(); err != nil {
			errs = append(errs, fmt.Errorf("ledger: %w", err))
		}
	}

	if closer, ok := s.publisher.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %v", errs)
	}

	return nil
}
