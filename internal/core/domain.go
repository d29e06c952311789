package core

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	CategoryFood          Category = "food"
	CategoryTransport     Category = "transport"
	CategoryShopping      Category = "shopping"
	CategoryEntertainment Category = "entertainment"
	CategoryBills         Category = "bills"
	CategoryHealth        Category = "health"
	CategoryEducation     Category = "education"
	CategoryOther         Category = "other"
)

type (
	// Category is one label from the fixed closed set used to group
	// expenses for analytics.
	Category string

	Budget struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		Amount    Money     `json:"amount"`
		CreatedAt time.Time `json:"createdAt"`
	}

	Expense struct {
		ID          string   `json:"id"`
		BudgetID    string   `json:"budgetId"`
		Description string   `json:"description"`
		Amount      Money    `json:"amount"`
		Category    Category `json:"category"`
		// ReceiptImage is an opaque reference to an attached receipt,
		// empty when none was captured.
		ReceiptImage string    `json:"receiptImage,omitempty"`
		CreatedAt    time.Time `json:"createdAt"`
	}

	// Snapshot is a consistent read-only copy of both collections, safe to
	// iterate without observing an in-progress mutation.
	Snapshot struct {
		Budgets  []Budget
		Expenses []Expense
	}
)

var (
	ErrEmptyID          = errors.New("empty id")
	ErrEmptyName        = errors.New("empty name")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyBudgetID    = errors.New("empty budget reference")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrUnknownCategory  = errors.New("unknown category")
)

// Categories returns the closed category set in its canonical order.
func Categories() []Category {
	return []Category{
		CategoryFood,
		CategoryTransport,
		CategoryShopping,
		CategoryEntertainment,
		CategoryBills,
		CategoryHealth,
		CategoryEducation,
		CategoryOther,
	}
}

func (c Category) Valid() bool {
	switch c {
	case CategoryFood, CategoryTransport, CategoryShopping, CategoryEntertainment,
		CategoryBills, CategoryHealth, CategoryEducation, CategoryOther:
		return true
	default:
		return false
	}
}

// ParseCategory normalizes and validates a category label.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", ErrUnknownCategory
	}
	return c, nil
}

// NewID returns a unique stable identifier for a new entity.
func NewID() string {
	return uuid.NewString()
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.ID) == "" {
		return ErrEmptyID
	}
	if len(strings.TrimSpace(b.Name)) == 0 {
		return ErrEmptyName
	}
	if len(b.Name) > 100 {
		return errors.New("name too long (max 100 characters)")
	}
	if err := b.Amount.Validate(); err != nil {
		return err
	}
	return nil
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(e.BudgetID) == "" {
		return ErrEmptyBudgetID
	}
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(e.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if !e.Category.Valid() {
		return ErrUnknownCategory
	}
	return nil
}
