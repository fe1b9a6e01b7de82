package router

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Pari658/Expense-Management/config"
	"github.com/Pari658/Expense-Management/internal/container"
	"github.com/Pari658/Expense-Management/internal/infrastructure/sqlite"
	"github.com/Pari658/Expense-Management/pkg/helpers"
)

type envelope struct {
	Status  int             `json:"status"`
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

type testAPI struct {
	t      *testing.T
	engine *gin.Engine
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	helpers.PasswordCost = bcrypt.MinCost

	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)

	cfg := &config.Config{
		AppName:             "expense-management",
		AppURL:              "http://localhost:8080",
		CORSAllowedOrigins:  "http://localhost:3000",
		DebugMetricsEnabled: true,
		ESUsersIndex:        "users",
	}
	c := &container.Container{
		Config: cfg,
		Logger: helpers.NewDiscardLogger(),
		JWT:    helpers.NewJWTManager("test-secret", 0),
	}
	c.UseSQLite(db)
	t.Cleanup(c.Close)

	return &testAPI{t: t, engine: NewEngine(c)}
}

func (a *testAPI) do(method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()
	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return a.serve(req)
}

func (a *testAPI) serve(req *http.Request) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	var env envelope
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

type authData struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	CompanyID string `json:"companyId"`
	Token     string `json:"token"`
}

type expenseData struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Status      string `json:"status"`
	SubmittedBy string `json:"submittedBy"`
	ApprovedBy  string `json:"approvedBy"`
	ReceiptURL  string `json:"receiptUrl"`
	Submitter   *struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"submitter"`
}

func (a *testAPI) registerAlice() authData {
	w, env := a.do(http.MethodPost, "/api/auth/register", "", map[string]any{
		"name": "Alice", "email": "a@x.com", "password": "pw", "companyName": "Acme", "currency": "USD",
	})
	require.Equal(a.t, http.StatusCreated, w.Code, env.Message)
	return decode[authData](a.t, env.Data)
}

func (a *testAPI) createUser(adminToken, name, role, managerID string) authData {
	w, env := a.do(http.MethodPost, "/api/users", adminToken, map[string]any{
		"name": name, "email": name + "@x.com", "password": "pw", "role": role, "managerId": managerID,
	})
	require.Equal(a.t, http.StatusCreated, w.Code, env.Message)
	return decode[authData](a.t, env.Data)
}

func (a *testAPI) login(email string) string {
	w, env := a.do(http.MethodPost, "/api/auth/login", "", map[string]any{"email": email, "password": "pw"})
	require.Equal(a.t, http.StatusOK, w.Code, env.Message)
	return decode[authData](a.t, env.Data).Token
}

func TestApprovalScenario(t *testing.T) {
	api := newTestAPI(t)

	alice := api.registerAlice()
	assert.Equal(t, "Admin", alice.Role)
	require.NotEmpty(t, alice.Token)

	bob := api.createUser(alice.Token, "bob", "Employee", alice.ID)
	bobToken := api.login("bob@x.com")

	w, env := api.do(http.MethodPost, "/api/expenses", bobToken, map[string]any{"description": "Taxi", "amount": 42})
	require.Equal(t, http.StatusCreated, w.Code, env.Message)
	taxi := decode[expenseData](t, env.Data)
	assert.Equal(t, "USD", taxi.Currency)
	assert.Equal(t, "Pending", taxi.Status)
	assert.Equal(t, alice.ID, taxi.ApprovedBy)
	assert.Equal(t, bob.ID, taxi.SubmittedBy)
	assert.Equal(t, "42", taxi.Amount)

	w, env = api.do(http.MethodGet, "/api/expenses/approvals", alice.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	queue := decode[[]expenseData](t, env.Data)
	require.Len(t, queue, 1)
	assert.Equal(t, taxi.ID, queue[0].ID)
	require.NotNil(t, queue[0].Submitter)
	assert.Equal(t, "bob", queue[0].Submitter.Name)
	assert.Equal(t, "bob@x.com", queue[0].Submitter.Email)

	w, env = api.do(http.MethodPut, "/api/expenses/"+taxi.ID+"/status", alice.Token, map[string]any{"status": "Approved"})
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	assert.Equal(t, "Approved", decode[expenseData](t, env.Data).Status)

	// Decisions are terminal.
	w, env = api.do(http.MethodPut, "/api/expenses/"+taxi.ID+"/status", alice.Token, map[string]any{"status": "Rejected"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
	assert.NotEmpty(t, env.Message)

	w, env = api.do(http.MethodGet, "/api/expenses", bobToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	mine := decode[[]expenseData](t, env.Data)
	require.Len(t, mine, 1)
	assert.Equal(t, "Approved", mine[0].Status)

	w, env = api.do(http.MethodGet, "/api/expenses/approvals", alice.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"data":[]`)
	assert.Empty(t, decode[[]expenseData](t, env.Data))
}

func TestRegistrationIsFirstUserOnly(t *testing.T) {
	api := newTestAPI(t)
	api.registerAlice()

	w, env := api.do(http.MethodPost, "/api/auth/register", "", map[string]any{
		"name": "Mallory", "email": "m@x.com", "password": "pw", "companyName": "Acme", "currency": "USD",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Cannot register directly. Admin must create users.", env.Message)
}

func TestAuthGates(t *testing.T) {
	api := newTestAPI(t)
	alice := api.registerAlice()
	api.createUser(alice.Token, "bob", "Employee", alice.ID)
	bobToken := api.login("bob@x.com")

	w, env := api.do(http.MethodGet, "/api/expenses", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "missing access token", env.Message)

	w, _ = api.do(http.MethodGet, "/api/expenses", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = api.do(http.MethodPost, "/api/auth/login", "", map[string]any{"email": "a@x.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	for _, path := range []string{"/api/users", "/api/users/search?q=bob", "/api/expenses/approvals", "/api/expenses/all"} {
		w, env := api.do(http.MethodGet, path, bobToken, nil)
		assert.Equal(t, http.StatusForbidden, w.Code, path)
		assert.NotEmpty(t, env.Message, path)
	}

	w, _ = api.do(http.MethodPost, "/api/users", bobToken, map[string]any{
		"name": "eve", "email": "eve@x.com", "password": "pw", "role": "Admin",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestNonApproverCannotDecide(t *testing.T) {
	api := newTestAPI(t)
	alice := api.registerAlice()
	carol := api.createUser(alice.Token, "carol", "Manager", alice.ID)
	api.createUser(alice.Token, "bob", "Employee", carol.ID)
	carolToken := api.login("carol@x.com")
	bobToken := api.login("bob@x.com")

	_, env := api.do(http.MethodPost, "/api/expenses", bobToken, map[string]any{"description": "Taxi", "amount": "12.50"})
	taxi := decode[expenseData](t, env.Data)
	assert.Equal(t, carol.ID, taxi.ApprovedBy)

	// Admin is not the assigned approver.
	w, _ := api.do(http.MethodPut, "/api/expenses/"+taxi.ID+"/status", alice.Token, map[string]any{"status": "Approved"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = api.do(http.MethodPut, "/api/expenses/"+taxi.ID+"/status", bobToken, map[string]any{"status": "Approved"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Body shape does not matter to someone who is not the approver.
	api.createUser(alice.Token, "dave", "Manager", alice.ID)
	daveToken := api.login("dave@x.com")
	for _, body := range []any{map[string]any{}, map[string]any{"status": "Paid"}} {
		w, _ = api.do(http.MethodPut, "/api/expenses/"+taxi.ID+"/status", daveToken, body)
		assert.Equal(t, http.StatusForbidden, w.Code, "%v", body)
	}

	w, env = api.do(http.MethodPut, "/api/expenses/"+taxi.ID+"/status", carolToken, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "status must be Approved or Rejected", env.Message)

	w, _ = api.do(http.MethodPut, "/api/expenses/7c9e6679-7425-40de-944b-e07fc1f90ae7/status", carolToken, map[string]any{"status": "Approved"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = api.do(http.MethodPut, "/api/expenses/"+taxi.ID+"/status", carolToken, map[string]any{"status": "Paid"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = api.do(http.MethodPut, "/api/expenses/"+taxi.ID+"/status", carolToken, map[string]any{"status": "Rejected"})
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	assert.Equal(t, "Rejected", decode[expenseData](t, env.Data).Status)

	w, env = api.do(http.MethodGet, "/api/expenses/all", alice.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]expenseData](t, env.Data), 1)
}

func TestInputValidation(t *testing.T) {
	api := newTestAPI(t)
	alice := api.registerAlice()

	w, env := api.do(http.MethodPost, "/api/users", alice.Token, `{"name":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEmpty(t, env.Message)

	w, env = api.do(http.MethodPost, "/api/users", alice.Token, map[string]any{
		"name": "x", "email": "x@x.com", "password": "pw", "role": "Owner",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	details := decode[map[string]string](t, env.Error)
	assert.Contains(t, details, "role")

	w, _ = api.do(http.MethodPost, "/api/users", alice.Token, map[string]any{
		"name": "x", "email": "A@x.com", "password": "pw", "role": "Employee",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code, "duplicate email")

	w, _ = api.do(http.MethodPost, "/api/users", alice.Token, map[string]any{
		"name": "x", "email": "x@x.com", "password": "pw", "role": "Employee",
		"managerId": "7c9e6679-7425-40de-944b-e07fc1f90ae7",
	})
	assert.Equal(t, http.StatusNotFound, w.Code, "unknown manager")

	// Alice has no manager of her own.
	w, env = api.do(http.MethodPost, "/api/expenses", alice.Token, map[string]any{"description": "Taxi", "amount": 5})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Message, "no approver")

	api.createUser(alice.Token, "bob", "Employee", alice.ID)
	bobToken := api.login("bob@x.com")
	for _, body := range []map[string]any{
		{"description": "Taxi"},
		{"description": "Taxi", "amount": -3},
		{"amount": 3},
		{"description": "Taxi", "amount": "0.001"},
		{"description": "Taxi", "amount": "1.005"},
		{"description": "Taxi", "amount": "1000000000000"},
	} {
		w, _ := api.do(http.MethodPost, "/api/expenses", bobToken, body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestMeLogoutAndCookie(t *testing.T) {
	api := newTestAPI(t)
	w, env := api.do(http.MethodPost, "/api/auth/register", "", map[string]any{
		"name": "Alice", "email": "a@x.com", "password": "pw", "companyName": "Acme", "currency": "EUR",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	alice := decode[authData](t, env.Data)

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == helpers.AccessTokenCookie {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: helpers.AccessTokenCookie, Value: cookie.Value})
	w, env = api.serve(req)
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	me := decode[struct {
		ID      string `json:"id"`
		Company struct {
			DefaultCurrency string `json:"defaultCurrency"`
		} `json:"company"`
	}](t, env.Data)
	assert.Equal(t, alice.ID, me.ID)
	assert.Equal(t, "EUR", me.Company.DefaultCurrency)

	w, _ = api.do(http.MethodPost, "/api/auth/logout", alice.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReceiptUploadWithoutStorage(t *testing.T) {
	api := newTestAPI(t)
	alice := api.registerAlice()
	api.createUser(alice.Token, "bob", "Employee", alice.ID)
	bobToken := api.login("bob@x.com")
	_, env := api.do(http.MethodPost, "/api/expenses", bobToken, map[string]any{"description": "Taxi", "amount": 42})
	taxi := decode[expenseData](t, env.Data)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("receipt", "taxi.png")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("png"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/expenses/"+taxi.ID+"/receipt", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+alice.Token)
	w, _ := api.serve(req)
	assert.Equal(t, http.StatusForbidden, w.Code, "only the submitter may attach")

	req = httptest.NewRequest(http.MethodPost, "/api/expenses/"+taxi.ID+"/receipt", bytes.NewReader(nil))
	req.Header.Set("Authorization", "Bearer "+bobToken)
	w, env = api.serve(req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "receipt file is required", env.Message)
}

func TestDebugVarsPrivateOnly(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/api/debug/vars", nil)
	req.RemoteAddr = "127.0.0.1:4321"
	w := httptest.NewRecorder()
	api.engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "expenses_submitted")

	req = httptest.NewRequest(http.MethodGet, "/api/debug/vars", nil)
	req.RemoteAddr = "203.0.113.7:4321"
	w, _ = api.serve(req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Forwarding headers from an untrusted peer are ignored.
	for _, h := range []string{"X-Forwarded-For", "X-Real-IP", "CF-Connecting-IP"} {
		req = httptest.NewRequest(http.MethodGet, "/api/debug/vars", nil)
		req.RemoteAddr = "203.0.113.7:4321"
		req.Header.Set(h, "127.0.0.1")
		w, _ = api.serve(req)
		assert.Equal(t, http.StatusForbidden, w.Code, h)
		assert.NotContains(t, w.Body.String(), "cmdline", h)
	}
}

func TestUnknownRoute(t *testing.T) {
	api := newTestAPI(t)
	w, env := api.do(http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, env.Success)
}
