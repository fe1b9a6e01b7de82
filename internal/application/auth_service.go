package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/Pari658/Expense-Management/internal/domain/entity"
	repo "github.com/Pari658/Expense-Management/internal/domain/repository"
	"github.com/Pari658/Expense-Management/pkg/helpers"
)

const msgRegistrationClosed = "Cannot register directly. Admin must create users."

// AuthService owns registration, credential checks and token sessions.
// Redis is optional; without it tokens are valid until they expire.
type AuthService struct {
	Users     repo.UserRepository
	Companies repo.CompanyRepository
	Registrar repo.Registrar
	JWT       *helpers.JWTManager
	Redis     *redis.Client
	Logger    *logrus.Logger
}

func NewAuthService(users repo.UserRepository, companies repo.CompanyRepository, registrar repo.Registrar,
	jwt *helpers.JWTManager, rdb *redis.Client, logger *logrus.Logger) *AuthService {
	if logger == nil {
		logger = helpers.NewDiscardLogger()
	}
	return &AuthService{Users: users, Companies: companies, Registrar: registrar, JWT: jwt, Redis: rdb, Logger: logger}
}

// Session is an authenticated user with the token that proves it.
type Session struct {
	User      *entity.User
	Token     string
	ExpiresAt time.Time
}

type RegisterInput struct {
	Name        string
	Email       string
	Password    string
	CompanyName string
	Currency    string
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register bootstraps the first company and its Admin. It only succeeds
// while no user exists; afterwards users are created by an Admin.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	n, err := s.Users.Count(ctx)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, invalid(msgRegistrationClosed)
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	company := &entity.Company{
		ID:              uuid.NewString(),
		Name:            strings.TrimSpace(in.CompanyName),
		DefaultCurrency: strings.ToUpper(strings.TrimSpace(in.Currency)),
	}
	admin := &entity.User{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(in.Name),
		Email:     normalizeEmail(in.Email),
		Password:  hash,
		Role:      entity.RoleAdmin,
		CompanyID: company.ID,
	}
	if err := s.Registrar.Bootstrap(ctx, company, admin); err != nil {
		if errors.Is(err, repo.ErrConflict) || errors.Is(err, repo.ErrDuplicate) {
			return nil, invalid(msgRegistrationClosed)
		}
		return nil, err
	}
	admin.Company = company
	registrations.Add(1)
	s.Logger.WithFields(logrus.Fields{"user_id": admin.ID, "company_id": company.ID}).Info("company registered")

	return s.issue(ctx, admin)
}

// Login verifies credentials and issues a fresh token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.Users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			helpers.PasswordMatches("", password)
			return nil, unauthorized("invalid email or password")
		}
		return nil, err
	}
	if !helpers.PasswordMatches(u.Password, password) {
		return nil, unauthorized("invalid email or password")
	}
	logins.Add(1)
	return s.issue(ctx, u)
}

// issue generates a token and records its session id in Redis.
func (s *AuthService) issue(ctx context.Context, u *entity.User) (*Session, error) {
	sid := uuid.NewString()
	token, exp, err := s.JWT.GenerateToken(u.ID, sid)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate token failed")
		return nil, err
	}
	if s.Redis != nil {
		if err := helpers.SaveSession(ctx, s.Redis, u.ID, sid, s.JWT.TTL()); err != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("save session failed")
			return nil, err
		}
	}
	return &Session{User: u, Token: token, ExpiresAt: exp}, nil
}

// Authenticate resolves a bearer token to its user, with the company loaded.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*entity.User, error) {
	if token == "" {
		return nil, unauthorized("missing access token")
	}
	claims, err := s.JWT.ParseToken(token)
	if err != nil {
		return nil, unauthorized("invalid access token")
	}
	if s.Redis != nil {
		sid, err := helpers.SessionID(ctx, s.Redis, claims.UserID)
		if err != nil || sid == "" || sid != claims.SessionID {
			return nil, unauthorized("session not found")
		}
	}
	u, err := s.Users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, unauthorized("user no longer exists")
		}
		return nil, err
	}
	c, err := s.Companies.GetByID(ctx, u.CompanyID)
	if err != nil {
		return nil, err
	}
	u.Company = c
	return u, nil
}

// Logout revokes the user's live session.
func (s *AuthService) Logout(ctx context.Context, u *entity.User) error {
	if s.Redis == nil {
		return nil
	}
	return helpers.DeleteSession(ctx, s.Redis, u.ID)
}
