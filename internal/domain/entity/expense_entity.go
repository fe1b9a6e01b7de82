package entity

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type ExpenseStatus string

const (
	StatusPending  ExpenseStatus = "Pending"
	StatusApproved ExpenseStatus = "Approved"
	StatusRejected ExpenseStatus = "Rejected"
)

var (
	ErrInvalidStatus     = errors.New("invalid status")
	ErrIllegalTransition = errors.New("illegal status transition")
)

// ParseStatus converts a raw string into an ExpenseStatus.
func ParseStatus(s string) (ExpenseStatus, error) {
	switch st := ExpenseStatus(s); st {
	case StatusPending, StatusApproved, StatusRejected:
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// IsDecision reports whether st is an outcome an approver may choose.
func (st ExpenseStatus) IsDecision() bool {
	return st == StatusApproved || st == StatusRejected
}

func (st ExpenseStatus) Terminal() bool { return st.IsDecision() }

// Amounts are stored as NUMERIC(14,2): at most two decimal places and
// twelve integer digits.
const AmountScale = 2

var MaxAmount = decimal.RequireFromString("999999999999.99")

// ValidAmount reports whether a is positive, has no more than AmountScale
// decimal places and does not exceed MaxAmount.
func ValidAmount(a decimal.Decimal) bool {
	return a.IsPositive() && a.Equal(a.Truncate(AmountScale)) && a.LessThanOrEqual(MaxAmount)
}

// Expense is a single reimbursement claim.
// SubmittedBy, CompanyID and ApprovedBy are fixed at submission.
type Expense struct {
	ID          string
	Description string
	Amount      decimal.Decimal
	Currency    string
	Status      ExpenseStatus
	SubmittedBy string
	CompanyID   string
	ApprovedBy  *string
	ReceiptURL  string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Submitter is filled by read-side joins (approval queue).
	Submitter *UserSummary
}

// UserSummary is the public projection of a user joined onto other records.
type UserSummary struct {
	ID    string
	Name  string
	Email string
}

// IsApprover compares identities; roles play no part.
func (e *Expense) IsApprover(userID string) bool {
	return e.ApprovedBy != nil && *e.ApprovedBy == userID
}

// Transition moves the expense to next if the state machine allows it.
// Pending is the only non-terminal state.
func (e *Expense) Transition(next ExpenseStatus) error {
	if !next.IsDecision() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, next)
	}
	if e.Status != StatusPending {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, e.Status, next)
	}
	e.Status = next
	return nil
}
