package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/Pari658/Expense-Management/internal/domain/entity"
	repo "github.com/Pari658/Expense-Management/internal/domain/repository"
	"github.com/Pari658/Expense-Management/pkg/helpers"
)

// ReceiptStore persists uploaded receipt files and returns their URL.
type ReceiptStore interface {
	Put(ctx context.Context, objectPath, contentType string, metadata map[string]string, r io.Reader) (string, error)
}

// ExpenseService is the expense lifecycle: submission bound to a fixed
// approver, and the single Pending -> Approved|Rejected transition.
type ExpenseService struct {
	Expenses  repo.ExpenseRepository
	Users     repo.UserRepository
	Companies repo.CompanyRepository
	Receipts  ReceiptStore
	Notifier  *Notifier
	Logger    *logrus.Logger
}

func NewExpenseService(expenses repo.ExpenseRepository, users repo.UserRepository, companies repo.CompanyRepository,
	receipts ReceiptStore, notifier *Notifier, logger *logrus.Logger) *ExpenseService {
	if logger == nil {
		logger = helpers.NewDiscardLogger()
	}
	return &ExpenseService{Expenses: expenses, Users: users, Companies: companies, Receipts: receipts, Notifier: notifier, Logger: logger}
}

type SubmitInput struct {
	Description string
	Amount      decimal.Decimal
}

// Submit files a Pending expense for u, assigned to u's manager.
func (s *ExpenseService) Submit(ctx context.Context, u *entity.User, in SubmitInput) (*entity.Expense, error) {
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return nil, invalid("description is required")
	}
	if !in.Amount.IsPositive() {
		return nil, invalid("amount must be greater than zero")
	}
	if !entity.ValidAmount(in.Amount) {
		return nil, invalid("amount must have at most 2 decimal places and be at most " + entity.MaxAmount.StringFixed(2))
	}
	if !u.HasManager() {
		return nil, invalid("no approver assigned: ask an admin to set your manager")
	}
	company := u.Company
	if company == nil {
		c, err := s.Companies.GetByID(ctx, u.CompanyID)
		if err != nil {
			return nil, err
		}
		company = c
	}

	approver := *u.ManagerID
	e := &entity.Expense{
		ID:          uuid.NewString(),
		Description: desc,
		Amount:      in.Amount.Round(entity.AmountScale),
		Currency:    company.DefaultCurrency,
		Status:      entity.StatusPending,
		SubmittedBy: u.ID,
		CompanyID:   u.CompanyID,
		ApprovedBy:  &approver,
	}
	if err := s.Expenses.Create(ctx, e); err != nil {
		if errors.Is(err, repo.ErrConstraint) {
			return nil, invalid("amount is out of range")
		}
		return nil, err
	}
	expensesSubmitted.Add(1)
	s.Logger.WithFields(logrus.Fields{"expense_id": e.ID, "submitted_by": u.ID, "approved_by": approver}).Info("expense submitted")

	if s.Notifier != nil {
		if mgr, err := s.Users.GetByID(ctx, approver); err == nil {
			s.Notifier.ExpenseSubmitted(ctx, mgr, e, u.Name)
		} else {
			s.Logger.WithError(err).WithField("approver_id", approver).Warn("approver lookup failed")
		}
	}
	return e, nil
}

// ListMine returns the caller's own expenses in submission order.
func (s *ExpenseService) ListMine(ctx context.Context, u *entity.User) ([]*entity.Expense, error) {
	return s.Expenses.ListBySubmitter(ctx, u.ID)
}

// ListPendingApprovals returns the pending queue assigned to u.
func (s *ExpenseService) ListPendingApprovals(ctx context.Context, u *entity.User) ([]*entity.Expense, error) {
	if err := RequireRole(u, entity.RoleManager, entity.RoleAdmin); err != nil {
		return nil, err
	}
	return s.Expenses.ListPendingFor(ctx, u.ID)
}

// ListCompany returns every expense in the admin's company.
func (s *ExpenseService) ListCompany(ctx context.Context, u *entity.User) ([]*entity.Expense, error) {
	if err := RequireRole(u, entity.RoleAdmin); err != nil {
		return nil, err
	}
	return s.Expenses.ListByCompany(ctx, u.CompanyID)
}

// Decide moves a Pending expense to Approved or Rejected. Only the approver
// recorded on the expense may do so; role alone grants nothing.
func (s *ExpenseService) Decide(ctx context.Context, u *entity.User, expenseID, status string) (*entity.Expense, error) {
	e, err := s.Expenses.GetByID(ctx, expenseID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, notFound("Expense not found")
		}
		return nil, err
	}
	if !e.IsApprover(u.ID) {
		return nil, forbidden("Not authorized to update this expense")
	}

	next, err := entity.ParseStatus(status)
	if err == nil {
		err = e.Transition(next)
	}
	switch {
	case errors.Is(err, entity.ErrInvalidStatus):
		return nil, invalid("status must be Approved or Rejected")
	case errors.Is(err, entity.ErrIllegalTransition):
		return nil, invalid(fmt.Sprintf("expense already %s", strings.ToLower(string(e.Status))))
	case err != nil:
		return nil, err
	}

	updated, err := s.Expenses.UpdateStatus(ctx, e.ID, u.ID, next)
	if err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return nil, invalid("expense already decided")
		}
		return nil, err
	}
	expensesDecided.Add(string(next), 1)
	s.Logger.WithFields(logrus.Fields{"expense_id": e.ID, "status": next, "approver": u.ID}).Info("expense decided")

	if s.Notifier != nil {
		if submitter, err := s.Users.GetByID(ctx, updated.SubmittedBy); err == nil {
			s.Notifier.ExpenseDecided(ctx, submitter, updated, u.Name)
		} else {
			s.Logger.WithError(err).WithField("user_id", updated.SubmittedBy).Warn("submitter lookup failed")
		}
	}
	return updated, nil
}

type ReceiptUpload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// AttachReceipt uploads a receipt for one of the caller's own expenses.
func (s *ExpenseService) AttachReceipt(ctx context.Context, u *entity.User, expenseID string, up ReceiptUpload) (*entity.Expense, error) {
	e, err := s.Expenses.GetByID(ctx, expenseID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, notFound("Expense not found")
		}
		return nil, err
	}
	if e.SubmittedBy != u.ID {
		return nil, forbidden("Not authorized to update this expense")
	}
	if s.Receipts == nil {
		return nil, errors.New("receipt storage not configured")
	}
	ct, ok := helpers.ReceiptContentType(up.Filename, up.ContentType)
	if !ok {
		return nil, invalid("receipt must be a JPEG, PNG, WebP or PDF file")
	}
	objectPath := helpers.ReceiptObjectPath(e.CompanyID, e.ID, uuid.NewString(), ct)
	url, err := s.Receipts.Put(ctx, objectPath, ct, map[string]string{
		"expense_id":    e.ID,
		"submitted_by":  u.ID,
		"original_name": up.Filename,
	}, up.Body)
	if err != nil {
		s.Logger.WithError(err).WithField("expense_id", e.ID).Error("receipt upload failed")
		return nil, err
	}
	if err := s.Expenses.SetReceiptURL(ctx, e.ID, url); err != nil {
		return nil, err
	}
	e.ReceiptURL = url
	return e, nil
}
