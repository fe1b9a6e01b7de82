package handlers

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Pari658/Expense-Management/internal/domain/entity"
)

type userResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CompanyID string    `json:"companyId"`
	ManagerID *string   `json:"managerId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserResponse(u *entity.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role.String(),
		CompanyID: u.CompanyID,
		ManagerID: u.ManagerID,
		CreatedAt: u.CreatedAt,
	}
}

func toUserResponses(users []*entity.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out
}

type companyResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	DefaultCurrency string `json:"defaultCurrency"`
}

// authResponse is the user's profile plus the issued token.
type authResponse struct {
	userResponse
	Company   *companyResponse `json:"company,omitempty"`
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expiresAt"`
}

type profileResponse struct {
	userResponse
	Company *companyResponse `json:"company,omitempty"`
}

func toCompanyResponse(c *entity.Company) *companyResponse {
	if c == nil {
		return nil
	}
	return &companyResponse{ID: c.ID, Name: c.Name, DefaultCurrency: c.DefaultCurrency}
}

type submitterResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type expenseResponse struct {
	ID          string             `json:"id"`
	Description string             `json:"description"`
	Amount      decimal.Decimal    `json:"amount"`
	Currency    string             `json:"currency"`
	Status      string             `json:"status"`
	SubmittedBy string             `json:"submittedBy"`
	Submitter   *submitterResponse `json:"submitter,omitempty"`
	CompanyID   string             `json:"companyId"`
	ApprovedBy  *string            `json:"approvedBy,omitempty"`
	ReceiptURL  string             `json:"receiptUrl,omitempty"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

func toExpenseResponse(e *entity.Expense) expenseResponse {
	r := expenseResponse{
		ID:          e.ID,
		Description: e.Description,
		Amount:      e.Amount,
		Currency:    e.Currency,
		Status:      string(e.Status),
		SubmittedBy: e.SubmittedBy,
		CompanyID:   e.CompanyID,
		ApprovedBy:  e.ApprovedBy,
		ReceiptURL:  e.ReceiptURL,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
	if e.Submitter != nil {
		r.Submitter = &submitterResponse{ID: e.Submitter.ID, Name: e.Submitter.Name, Email: e.Submitter.Email}
	}
	return r
}

func toExpenseResponses(list []*entity.Expense) []expenseResponse {
	out := make([]expenseResponse, 0, len(list))
	for _, e := range list {
		out = append(out, toExpenseResponse(e))
	}
	return out
}
