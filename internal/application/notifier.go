package application

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/Pari658/Expense-Management/internal/domain/entity"
	"github.com/Pari658/Expense-Management/pkg/mailer"
	tpl "github.com/Pari658/Expense-Management/pkg/mailer/templates"
)

// Publisher enqueues a job; *helpers.JobQueue satisfies it.
type Publisher interface {
	Publish(ctx context.Context, kind string, body any) error
}

// Notifier turns domain events into email jobs. Publishing is best effort:
// failures are logged and never fail the request. A nil Notifier is a no-op.
type Notifier struct {
	Pub    Publisher
	Brand  tpl.Branding
	Logger *logrus.Logger
}

func NewNotifier(pub Publisher, brand tpl.Branding, logger *logrus.Logger) *Notifier {
	return &Notifier{Pub: pub, Brand: brand, Logger: logger}
}

func (n *Notifier) publish(ctx context.Context, job mailer.EmailJob) {
	if n == nil || n.Pub == nil {
		return
	}
	if err := n.Pub.Publish(ctx, job.Template, job); err != nil && n.Logger != nil {
		n.Logger.WithError(err).WithField("template", job.Template).Warn("failed to publish email job")
	}
}

func (n *Notifier) ExpenseSubmitted(ctx context.Context, approver *entity.User, e *entity.Expense, submitter string) {
	if n == nil {
		return
	}
	n.publish(ctx, mailer.EmailJob{
		To:       approver.Email,
		Template: tpl.ExpenseSubmitted,
		Data:     tpl.NewExpenseSubmittedData(n.Brand, approver, e, submitter),
	})
}

func (n *Notifier) ExpenseDecided(ctx context.Context, submitter *entity.User, e *entity.Expense, approver string) {
	if n == nil {
		return
	}
	n.publish(ctx, mailer.EmailJob{
		To:       submitter.Email,
		Template: tpl.ExpenseDecided,
		Data:     tpl.NewExpenseDecidedData(n.Brand, submitter, e, approver),
	})
}

func (n *Notifier) UserCreated(ctx context.Context, u *entity.User, company string) {
	if n == nil {
		return
	}
	n.publish(ctx, mailer.EmailJob{
		To:       u.Email,
		Template: tpl.UserWelcome,
		Data:     tpl.NewUserWelcomeData(n.Brand, u, company),
	})
}
