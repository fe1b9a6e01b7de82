package application

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Pari658/Expense-Management/internal/domain/entity"
	repo "github.com/Pari658/Expense-Management/internal/domain/repository"
	"github.com/Pari658/Expense-Management/pkg/helpers"
)

// UserService covers Admin user provisioning. Index and Notifier are optional.
type UserService struct {
	Users    repo.UserRepository
	Index    repo.UserIndex
	Notifier *Notifier
	Logger   *logrus.Logger
}

func NewUserService(users repo.UserRepository, index repo.UserIndex, notifier *Notifier, logger *logrus.Logger) *UserService {
	if logger == nil {
		logger = helpers.NewDiscardLogger()
	}
	return &UserService{Users: users, Index: index, Notifier: notifier, Logger: logger}
}

// RequireRole fails with ErrForbidden unless u holds one of allowed.
func RequireRole(u *entity.User, allowed ...entity.Role) error {
	if u == nil || !u.Role.In(allowed...) {
		return forbidden("Not authorized for this action")
	}
	return nil
}

type CreateUserInput struct {
	Name      string
	Email     string
	Password  string
	Role      string
	ManagerID string
}

// CreateUser adds a user to the admin's company. A manager, when given,
// must already exist in that company and be able to approve.
func (s *UserService) CreateUser(ctx context.Context, admin *entity.User, in CreateUserInput) (*entity.User, error) {
	if err := RequireRole(admin, entity.RoleAdmin); err != nil {
		return nil, err
	}
	role, err := entity.ParseRole(in.Role)
	if err != nil {
		return nil, invalid("role must be one of Admin, Manager, Employee")
	}
	email := normalizeEmail(in.Email)
	if _, err := s.Users.GetByEmail(ctx, email); err == nil {
		return nil, invalid("User already exists")
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	u := &entity.User{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(in.Name),
		Email:     email,
		Role:      role,
		CompanyID: admin.CompanyID,
	}
	if id := strings.TrimSpace(in.ManagerID); id != "" {
		mgr, err := s.Users.GetByID(ctx, id)
		if errors.Is(err, repo.ErrNotFound) || (err == nil && mgr.CompanyID != admin.CompanyID) {
			return nil, notFound("manager not found")
		}
		if err != nil {
			return nil, err
		}
		if !mgr.Role.CanApprove() {
			return nil, invalid("manager must have the Manager or Admin role")
		}
		u.ManagerID = &mgr.ID
	}

	if u.Password, err = hashPassword(in.Password); err != nil {
		return nil, err
	}
	if err := s.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, invalid("User already exists")
		}
		return nil, err
	}
	usersCreated.Add(1)
	s.Logger.WithFields(logrus.Fields{"user_id": u.ID, "role": u.Role, "created_by": admin.ID}).Info("user created")

	if s.Index != nil {
		if err := s.Index.Index(ctx, u); err != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("es index failed")
		}
	}
	company := ""
	if admin.Company != nil {
		company = admin.Company.Name
	}
	s.Notifier.UserCreated(ctx, u, company)
	return u, nil
}

// ListUsers returns every user of the admin's company.
func (s *UserService) ListUsers(ctx context.Context, admin *entity.User) ([]*entity.User, error) {
	if err := RequireRole(admin, entity.RoleAdmin); err != nil {
		return nil, err
	}
	return s.Users.ListByCompany(ctx, admin.CompanyID)
}

// SearchUsers queries the directory index within the admin's company.
func (s *UserService) SearchUsers(ctx context.Context, admin *entity.User, q string, size int) ([]entity.UserSummary, error) {
	if err := RequireRole(admin, entity.RoleAdmin); err != nil {
		return nil, err
	}
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, invalid("query is required")
	}
	if s.Index == nil {
		return []entity.UserSummary{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	return s.Index.Search(ctx, admin.CompanyID, q, size)
}
