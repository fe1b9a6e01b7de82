package application

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/Pari658/Expense-Management/internal/domain/entity"
	"github.com/Pari658/Expense-Management/internal/infrastructure/sqlite"
	"github.com/Pari658/Expense-Management/pkg/helpers"
	"github.com/Pari658/Expense-Management/pkg/mailer"
	tpl "github.com/Pari658/Expense-Management/pkg/mailer/templates"
)

type fakePublisher struct {
	mu   sync.Mutex
	jobs []mailer.EmailJob
	err  error
}

func (f *fakePublisher) Publish(_ context.Context, _ string, body any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, body.(mailer.EmailJob))
	return nil
}

func (f *fakePublisher) templates() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.jobs))
	for _, j := range f.jobs {
		out = append(out, j.Template)
	}
	return out
}

type fakeIndex struct {
	docs []*entity.User
}

func (f *fakeIndex) Index(_ context.Context, u *entity.User) error {
	f.docs = append(f.docs, u)
	return nil
}

func (f *fakeIndex) Search(_ context.Context, companyID, q string, size int) ([]entity.UserSummary, error) {
	var out []entity.UserSummary
	for _, u := range f.docs {
		if u.CompanyID == companyID && strings.Contains(strings.ToLower(u.Name), strings.ToLower(q)) {
			out = append(out, entity.UserSummary{ID: u.ID, Name: u.Name, Email: u.Email})
		}
	}
	return out, nil
}

type fakeReceipts struct {
	paths []string
	types []string
	meta  []map[string]string
}

func (f *fakeReceipts) Put(_ context.Context, objectPath, contentType string, metadata map[string]string, r io.Reader) (string, error) {
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	f.paths = append(f.paths, objectPath)
	f.types = append(f.types, contentType)
	f.meta = append(f.meta, metadata)
	return "https://storage.test/" + objectPath, nil
}

type ServiceSuite struct {
	suite.Suite
	ctx context.Context
	db  *sqlite.DB

	pub      *fakePublisher
	index    *fakeIndex
	receipts *fakeReceipts

	auth     *AuthService
	users    *UserService
	expenses *ExpenseService
}

func TestServiceSuite(t *testing.T) {
	helpers.PasswordCost = bcrypt.MinCost
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	db, err := sqlite.Open(":memory:")
	s.Require().NoError(err)
	s.db = db
	s.ctx = context.Background()
	s.pub = &fakePublisher{}
	s.index = &fakeIndex{}
	s.receipts = &fakeReceipts{}

	notifier := NewNotifier(s.pub, tpl.Branding{AppName: "Expenses", AppURL: "http://app.test"}, nil)
	s.auth = NewAuthService(db.Users(), db.Companies(), db.Companies(), helpers.NewJWTManager("test-secret", 0), nil, nil)
	s.users = NewUserService(db.Users(), s.index, notifier, nil)
	s.expenses = NewExpenseService(db.Expenses(), db.Users(), db.Companies(), s.receipts, notifier, nil)
}

func (s *ServiceSuite) TearDownTest() {
	s.Require().NoError(s.db.Close())
}

func (s *ServiceSuite) register() *entity.User {
	sess, err := s.auth.Register(s.ctx, RegisterInput{
		Name: "Alice", Email: "A@x.com ", Password: "pw", CompanyName: "Acme", Currency: "usd",
	})
	s.Require().NoError(err)
	return sess.User
}

func (s *ServiceSuite) create(admin *entity.User, name string, role entity.Role, manager *entity.User) *entity.User {
	in := CreateUserInput{Name: name, Email: strings.ToLower(name) + "@x.com", Password: "pw", Role: role.String()}
	if manager != nil {
		in.ManagerID = manager.ID
	}
	u, err := s.users.CreateUser(s.ctx, admin, in)
	s.Require().NoError(err)
	return u
}

// authed reloads u through the token path so Company is populated like in requests.
func (s *ServiceSuite) authed(u *entity.User) *entity.User {
	sess, err := s.auth.Login(s.ctx, u.Email, "pw")
	s.Require().NoError(err)
	got, err := s.auth.Authenticate(s.ctx, sess.Token)
	s.Require().NoError(err)
	return got
}

func (s *ServiceSuite) submit(u *entity.User, desc, amount string) *entity.Expense {
	e, err := s.expenses.Submit(s.ctx, u, SubmitInput{Description: desc, Amount: decimal.RequireFromString(amount)})
	s.Require().NoError(err)
	return e
}

func (s *ServiceSuite) TestRegisterFirstUserBecomesAdmin() {
	sess, err := s.auth.Register(s.ctx, RegisterInput{
		Name: "Alice", Email: "a@x.com", Password: "pw", CompanyName: "Acme", Currency: "USD",
	})
	s.Require().NoError(err)
	s.Equal(entity.RoleAdmin, sess.User.Role)
	s.NotEmpty(sess.Token)
	s.Require().NotNil(sess.User.Company)
	s.Equal("USD", sess.User.Company.DefaultCurrency)
	s.Nil(sess.User.ManagerID)
}

func (s *ServiceSuite) TestSecondRegistrationIsRejected() {
	s.register()
	_, err := s.auth.Register(s.ctx, RegisterInput{
		Name: "Mallory", Email: "m@x.com", Password: "pw", CompanyName: "Acme", Currency: "USD",
	})
	s.ErrorIs(err, ErrValidation)
}

func (s *ServiceSuite) TestLoginAndAuthenticate() {
	s.register()

	_, err := s.auth.Login(s.ctx, "a@x.com", "wrong")
	s.ErrorIs(err, ErrUnauthorized)
	_, err = s.auth.Login(s.ctx, "nobody@x.com", "pw")
	s.ErrorIs(err, ErrUnauthorized)

	sess, err := s.auth.Login(s.ctx, " A@X.com", "pw")
	s.Require().NoError(err)
	u, err := s.auth.Authenticate(s.ctx, sess.Token)
	s.Require().NoError(err)
	s.Equal("Alice", u.Name)
	s.Require().NotNil(u.Company)
	s.Equal("Acme", u.Company.Name)

	for _, tok := range []string{"", "garbage"} {
		_, err := s.auth.Authenticate(s.ctx, tok)
		s.ErrorIs(err, ErrUnauthorized)
	}
	other, _, err := helpers.NewJWTManager("other-secret", 0).GenerateToken(u.ID, "sid")
	s.Require().NoError(err)
	_, err = s.auth.Authenticate(s.ctx, other)
	s.ErrorIs(err, ErrUnauthorized)
}

func (s *ServiceSuite) TestCreateUserRules() {
	alice := s.authed(s.register())
	bob := s.create(alice, "Bob", entity.RoleEmployee, alice)
	s.Equal(alice.CompanyID, bob.CompanyID)
	s.Require().NotNil(bob.ManagerID)
	s.Equal(alice.ID, *bob.ManagerID)
	s.Len(s.index.docs, 1)
	s.Equal([]string{tpl.UserWelcome}, s.pub.templates())

	_, err := s.users.CreateUser(s.ctx, alice, CreateUserInput{Name: "B", Email: "BOB@x.com", Password: "pw", Role: "Employee"})
	s.ErrorIs(err, ErrValidation, "duplicate email")

	_, err = s.users.CreateUser(s.ctx, alice, CreateUserInput{Name: "C", Email: "c@x.com", Password: "pw", Role: "Owner"})
	s.ErrorIs(err, ErrValidation, "unknown role")

	_, err = s.users.CreateUser(s.ctx, alice, CreateUserInput{Name: "C", Email: "c@x.com", Password: "pw", Role: "Employee", ManagerID: "7c9e6679-7425-40de-944b-e07fc1f90ae7"})
	s.ErrorIs(err, ErrNotFound, "missing manager")

	_, err = s.users.CreateUser(s.ctx, alice, CreateUserInput{Name: "C", Email: "c@x.com", Password: "pw", Role: "Employee", ManagerID: bob.ID})
	s.ErrorIs(err, ErrValidation, "an Employee cannot manage")

	_, err = s.users.CreateUser(s.ctx, bob, CreateUserInput{Name: "C", Email: "c@x.com", Password: "pw", Role: "Employee"})
	s.ErrorIs(err, ErrForbidden, "only admins create users")

	list, err := s.users.ListUsers(s.ctx, alice)
	s.Require().NoError(err)
	s.Len(list, 2)
	_, err = s.users.ListUsers(s.ctx, bob)
	s.ErrorIs(err, ErrForbidden)
}

func (s *ServiceSuite) TestSearchUsers() {
	alice := s.authed(s.register())
	s.create(alice, "Bob", entity.RoleEmployee, alice)

	hits, err := s.users.SearchUsers(s.ctx, alice, "bo", 0)
	s.Require().NoError(err)
	s.Require().Len(hits, 1)
	s.Equal("Bob", hits[0].Name)

	_, err = s.users.SearchUsers(s.ctx, alice, "  ", 10)
	s.ErrorIs(err, ErrValidation)

	s.users.Index = nil
	hits, err = s.users.SearchUsers(s.ctx, alice, "bo", 10)
	s.Require().NoError(err)
	s.Empty(hits)
}

func (s *ServiceSuite) TestSubmitBindsApproverAndCurrency() {
	alice := s.authed(s.register())
	bob := s.authed(s.create(alice, "Bob", entity.RoleEmployee, alice))

	e := s.submit(bob, "Taxi", "42")
	s.Equal(entity.StatusPending, e.Status)
	s.Equal("USD", e.Currency)
	s.Equal(alice.CompanyID, e.CompanyID)
	s.True(e.IsApprover(alice.ID))
	s.Contains(s.pub.templates(), tpl.ExpenseSubmitted)
}

func (s *ServiceSuite) TestSubmitValidation() {
	alice := s.authed(s.register())
	bob := s.authed(s.create(alice, "Bob", entity.RoleEmployee, alice))

	_, err := s.expenses.Submit(s.ctx, bob, SubmitInput{Description: " ", Amount: decimal.NewFromInt(1)})
	s.ErrorIs(err, ErrValidation)
	_, err = s.expenses.Submit(s.ctx, bob, SubmitInput{Description: "x", Amount: decimal.Zero})
	s.ErrorIs(err, ErrValidation)
	_, err = s.expenses.Submit(s.ctx, bob, SubmitInput{Description: "x", Amount: decimal.NewFromInt(-5)})
	s.ErrorIs(err, ErrValidation)

	// must fit NUMERIC(14,2) exactly
	for _, v := range []string{"0.001", "1.005", "1000000000000"} {
		_, err = s.expenses.Submit(s.ctx, bob, SubmitInput{Description: "x", Amount: decimal.RequireFromString(v)})
		s.ErrorIs(err, ErrValidation, v)
	}
	mine, err := s.expenses.ListMine(s.ctx, bob)
	s.Require().NoError(err)
	s.Empty(mine)

	e := s.submit(bob, "Max", "999999999999.99")
	s.Equal("999999999999.99", e.Amount.StringFixed(2))

	// the bootstrap admin has no manager, so nobody could approve
	_, err = s.expenses.Submit(s.ctx, alice, SubmitInput{Description: "x", Amount: decimal.NewFromInt(5)})
	s.ErrorIs(err, ErrValidation)
}

func (s *ServiceSuite) TestPendingQueueIsPerApprover() {
	alice := s.authed(s.register())
	carol := s.authed(s.create(alice, "Carol", entity.RoleManager, alice))
	bob := s.authed(s.create(alice, "Bob", entity.RoleEmployee, carol))
	dan := s.authed(s.create(alice, "Dan", entity.RoleEmployee, alice))

	taxi := s.submit(bob, "Taxi", "42")
	s.submit(dan, "Lunch", "12.30")

	queue, err := s.expenses.ListPendingApprovals(s.ctx, carol)
	s.Require().NoError(err)
	s.Require().Len(queue, 1)
	s.Equal(taxi.ID, queue[0].ID)
	s.Equal("Bob", queue[0].Submitter.Name)

	queue, err = s.expenses.ListPendingApprovals(s.ctx, alice)
	s.Require().NoError(err)
	s.Require().Len(queue, 1)
	s.Equal("Lunch", queue[0].Description)

	_, err = s.expenses.ListPendingApprovals(s.ctx, bob)
	s.ErrorIs(err, ErrForbidden)

	all, err := s.expenses.ListCompany(s.ctx, alice)
	s.Require().NoError(err)
	s.Len(all, 2)
	_, err = s.expenses.ListCompany(s.ctx, carol)
	s.ErrorIs(err, ErrForbidden)

	mine, err := s.expenses.ListMine(s.ctx, bob)
	s.Require().NoError(err)
	s.Len(mine, 1)
}

func (s *ServiceSuite) TestDecideOnlyByAssignedApprover() {
	alice := s.authed(s.register())
	carol := s.authed(s.create(alice, "Carol", entity.RoleManager, alice))
	bob := s.authed(s.create(alice, "Bob", entity.RoleEmployee, carol))
	e := s.submit(bob, "Taxi", "42")

	// Admin is not the approver and has no override.
	_, err := s.expenses.Decide(s.ctx, alice, e.ID, "Approved")
	s.ErrorIs(err, ErrForbidden)
	_, err = s.expenses.Decide(s.ctx, bob, e.ID, "Approved")
	s.ErrorIs(err, ErrForbidden)
	// Outsiders get 403 even with a bad status.
	_, err = s.expenses.Decide(s.ctx, alice, e.ID, "Paid")
	s.ErrorIs(err, ErrForbidden)

	_, err = s.expenses.Decide(s.ctx, carol, "7c9e6679-7425-40de-944b-e07fc1f90ae7", "Approved")
	s.ErrorIs(err, ErrNotFound)
	_, err = s.expenses.Decide(s.ctx, carol, e.ID, "Pending")
	s.ErrorIs(err, ErrValidation)

	got, err := s.expenses.Decide(s.ctx, carol, e.ID, "Rejected")
	s.Require().NoError(err)
	s.Equal(entity.StatusRejected, got.Status)
	s.Contains(s.pub.templates(), tpl.ExpenseDecided)
}

func (s *ServiceSuite) TestDecidedExpenseIsTerminal() {
	alice := s.authed(s.register())
	bob := s.authed(s.create(alice, "Bob", entity.RoleEmployee, alice))
	e := s.submit(bob, "Taxi", "42")

	_, err := s.expenses.Decide(s.ctx, alice, e.ID, "Approved")
	s.Require().NoError(err)

	_, err = s.expenses.Decide(s.ctx, alice, e.ID, "Rejected")
	s.ErrorIs(err, ErrValidation)
	_, err = s.expenses.Decide(s.ctx, alice, e.ID, "Approved")
	s.ErrorIs(err, ErrValidation)

	mine, err := s.expenses.ListMine(s.ctx, bob)
	s.Require().NoError(err)
	s.Equal(entity.StatusApproved, mine[0].Status)
}

func (s *ServiceSuite) TestAttachReceipt() {
	alice := s.authed(s.register())
	bob := s.authed(s.create(alice, "Bob", entity.RoleEmployee, alice))
	e := s.submit(bob, "Taxi", "42")

	_, err := s.expenses.AttachReceipt(s.ctx, alice, e.ID, ReceiptUpload{Filename: "r.png", Body: strings.NewReader("x")})
	s.ErrorIs(err, ErrForbidden)

	got, err := s.expenses.AttachReceipt(s.ctx, bob, e.ID, ReceiptUpload{Filename: "R.PNG", ContentType: "image/png", Body: strings.NewReader("png")})
	s.Require().NoError(err)
	s.Require().Len(s.receipts.paths, 1)
	s.True(strings.HasPrefix(s.receipts.paths[0], "receipts/"+e.CompanyID+"/"+e.ID+"/"))
	s.True(strings.HasSuffix(s.receipts.paths[0], ".png"))
	s.Equal("https://storage.test/"+s.receipts.paths[0], got.ReceiptURL)
	s.Equal("image/png", s.receipts.types[0])
	s.Equal("R.PNG", s.receipts.meta[0]["original_name"])

	_, err = s.expenses.AttachReceipt(s.ctx, bob, e.ID, ReceiptUpload{Filename: "scan.pdf", Body: strings.NewReader("%PDF")})
	s.Require().NoError(err)
	s.Equal("application/pdf", s.receipts.types[1])
	s.True(strings.HasSuffix(s.receipts.paths[1], ".pdf"))

	_, err = s.expenses.AttachReceipt(s.ctx, bob, e.ID, ReceiptUpload{Filename: "run.exe", ContentType: "application/octet-stream", Body: strings.NewReader("MZ")})
	s.ErrorIs(err, ErrValidation)
	s.Len(s.receipts.paths, 2)

	s.expenses.Receipts = nil
	_, err = s.expenses.AttachReceipt(s.ctx, bob, e.ID, ReceiptUpload{Filename: "r.png", Body: strings.NewReader("x")})
	s.Error(err)
	s.NotErrorIs(err, ErrValidation)
}

func (s *ServiceSuite) TestNotificationFailureDoesNotFailRequest() {
	alice := s.authed(s.register())
	s.pub.err = errors.New("broker down")

	bob := s.authed(s.create(alice, "Bob", entity.RoleEmployee, alice))
	e := s.submit(bob, "Taxi", "42")
	_, err := s.expenses.Decide(s.ctx, alice, e.ID, "Approved")
	s.NoError(err)
}
