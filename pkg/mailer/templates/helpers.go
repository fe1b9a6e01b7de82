package templates

import (
	"time"

	"github.com/Pari658/Expense-Management/internal/domain/entity"
)

// Option pattern
type Option func(*EmailData)

func WithTime(t time.Time) Option {
	return func(d *EmailData) { d.Time = t.UTC().Format("02 January 2006, 15:04") }
}

func WithExpense(e *entity.Expense) Option {
	return func(d *EmailData) {
		d.ExpenseID = e.ID
		d.Description = e.Description
		d.Amount = e.Amount.StringFixed(2)
		d.Currency = e.Currency
		d.Status = string(e.Status)
	}
}

func WithSubmitter(name string) Option { return func(d *EmailData) { d.SubmitterName = name } }
func WithApprover(name string) Option  { return func(d *EmailData) { d.ApproverName = name } }
func WithCompany(name string) Option   { return func(d *EmailData) { d.CompanyName = name } }
func WithRole(r entity.Role) Option    { return func(d *EmailData) { d.Role = r.String() } }

// Branding carries the app-level fields every email shares.
type Branding struct {
	AppName string
	AppURL  string
}

// NewBaseEmailData fills the common fields, then applies options.
func NewBaseEmailData(b Branding, typ, name, recipient string, opts ...Option) EmailData {
	d := EmailData{
		Name:           name,
		RecipientEmail: recipient,
		Type:           typ,
		AppName:        b.AppName,
		AppURL:         b.AppURL,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

func NewExpenseSubmittedData(b Branding, approver *entity.User, e *entity.Expense, submitter string) map[string]any {
	return ToMap(NewBaseEmailData(b, ExpenseSubmitted, approver.Name, approver.Email,
		WithExpense(e), WithSubmitter(submitter), WithTime(e.CreatedAt)))
}

func NewExpenseDecidedData(b Branding, submitter *entity.User, e *entity.Expense, approver string) map[string]any {
	return ToMap(NewBaseEmailData(b, ExpenseDecided, submitter.Name, submitter.Email,
		WithExpense(e), WithApprover(approver), WithTime(e.UpdatedAt)))
}

func NewUserWelcomeData(b Branding, u *entity.User, company string) map[string]any {
	return ToMap(NewBaseEmailData(b, UserWelcome, u.Name, u.Email,
		WithRole(u.Role), WithCompany(company), WithTime(u.CreatedAt)))
}
