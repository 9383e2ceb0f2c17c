package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/festipay/festipay/internal/models"
	"github.com/festipay/festipay/internal/service"
	"github.com/festipay/festipay/internal/session"
)

// memKV is an in-memory store for router tests.
type memKV struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *memKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

func (m *memKV) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// newTestServer wires real services over an in-memory store behind the
// router, exactly as cmd/server does.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	ledger, err := service.NewLedger(context.Background(), &memKV{data: make(map[string][]byte)}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewLedger returned error: %v", err)
	}
	auth := service.NewAuth(ledger, session.NewManager(), zap.NewNop())

	router := NewRouter(
		&AuthHandler{AuthService: auth},
		&LedgerHandler{LedgerService: ledger},
		&StatsHandler{StatsService: ledger},
		auth,
		zap.NewNop(),
	)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

// do sends a JSON request and decodes the response body into out (when
// out is non-nil).
func do(t *testing.T, srv *httptest.Server, method, path, token, body string, out any) int {
	t.Helper()

	var buf *bytes.Buffer
	if body == "" {
		buf = bytes.NewBuffer(nil)
	} else {
		buf = bytes.NewBufferString(body)
	}
	req, err := http.NewRequest(method, srv.URL+path, buf)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer res.Body.Close()
	if out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return res.StatusCode
}

// login returns a session token for the given seeded account.
func login(t *testing.T, srv *httptest.Server, username, password string) string {
	t.Helper()
	var resp LoginResponse
	code := do(t, srv, "POST", "/api/login", "", `{"username":"`+username+`","password":"`+password+`"}`, &resp)
	if code != http.StatusOK {
		t.Fatalf("login status = %d", code)
	}
	return resp.Token
}

func TestRouterPointOfSaleFlow(t *testing.T) {
	srv := newTestServer(t)
	admin := login(t, srv, "admin1", "admin123")

	// Issue a card with an opening balance.
	var card models.Card
	if code := do(t, srv, "POST", "/api/cards", admin, `{"initialBalance":100}`, &card); code != http.StatusOK {
		t.Fatalf("issue status = %d", code)
	}

	// Charge a cart against it.
	var res models.Result
	body := `{"cart":[{"id":"prod-1","name":"Beer","price":5,"quantity":2}]}`
	if code := do(t, srv, "POST", "/api/cards/"+card.ID+"/payment", admin, body, &res); code != http.StatusOK {
		t.Fatalf("payment status = %d: %s", code, res.Message)
	}
	if res.Message != "Payment successful! New balance: 90 ◎" {
		t.Errorf("message = %q", res.Message)
	}

	// The transaction shows up in the card's history.
	var txns []models.Transaction
	if code := do(t, srv, "GET", "/api/cards/"+card.ID+"/transactions", admin, "", &txns); code != http.StatusOK {
		t.Fatalf("transactions status = %d", code)
	}
	if len(txns) != 1 || txns[0].Total != 10 {
		t.Errorf("transactions = %+v; want one with total 10", txns)
	}
}

func TestRouterRoleGating(t *testing.T) {
	srv := newTestServer(t)

	// Unauthenticated requests to gated routes are rejected.
	if code := do(t, srv, "GET", "/api/cards", "", "", nil); code != http.StatusUnauthorized {
		t.Errorf("unauthenticated /api/cards = %d; want 401", code)
	}

	admin := login(t, srv, "admin1", "admin123")
	super := login(t, srv, "superadmin", "superadmin123")

	// Card admin detail is super-admin only.
	body := `{"amount":-1,"reason":"test"}`
	if code := do(t, srv, "POST", "/api/cards/user-123/correct", admin, body, nil); code != http.StatusForbidden {
		t.Errorf("admin correction = %d; want 403", code)
	}
	if code := do(t, srv, "POST", "/api/cards/user-123/correct", super, body, nil); code != http.StatusOK {
		t.Errorf("super admin correction = %d; want 200", code)
	}

	// Statistics are super-admin only.
	if code := do(t, srv, "GET", "/api/stats/spending", admin, "", nil); code != http.StatusForbidden {
		t.Errorf("admin stats = %d; want 403", code)
	}
	if code := do(t, srv, "GET", "/api/stats/spending", super, "", nil); code != http.StatusOK {
		t.Errorf("super admin stats = %d; want 200", code)
	}
}

func TestRouterUserSelfLink(t *testing.T) {
	srv := newTestServer(t)

	if code := do(t, srv, "POST", "/api/register", "", `{"username":"dave","password":"pw"}`, nil); code != http.StatusOK {
		t.Fatalf("register failed")
	}
	token := login(t, srv, "dave", "pw")

	// Self-link an unowned seeded card, then read it back.
	var res models.Result
	if code := do(t, srv, "POST", "/api/cards/user-123/link", token, `{}`, &res); code != http.StatusOK {
		t.Fatalf("link status = %d: %s", code, res.Message)
	}

	var card models.Card
	if code := do(t, srv, "GET", "/api/cards/user-123", token, "", &card); code != http.StatusOK {
		t.Fatalf("get card status = %d", code)
	}
	if card.Balance != 100 {
		t.Errorf("balance = %d; want 100", card.Balance)
	}

	// Other cards stay invisible to a plain user.
	if code := do(t, srv, "GET", "/api/cards/user-456", token, "", nil); code != http.StatusForbidden {
		t.Errorf("foreign card = %d; want 403", code)
	}

	// The card table is staff-only.
	if code := do(t, srv, "GET", "/api/cards", token, "", nil); code != http.StatusForbidden {
		t.Errorf("card table for user = %d; want 403", code)
	}
}

func TestRouterPasswordResetQueue(t *testing.T) {
	srv := newTestServer(t)

	if code := do(t, srv, "POST", "/api/register", "", `{"username":"erin","password":"old-pw"}`, nil); code != http.StatusOK {
		t.Fatalf("register failed")
	}
	if code := do(t, srv, "POST", "/api/password-reset", "", `{"username":"erin"}`, nil); code != http.StatusOK {
		t.Fatalf("reset request failed")
	}

	// The user listing is super-admin only.
	admin := login(t, srv, "admin1", "admin123")
	if code := do(t, srv, "GET", "/api/users", admin, "", nil); code != http.StatusForbidden {
		t.Errorf("admin user listing = %d; want 403", code)
	}

	// The super admin finds the pending request in the listing.
	super := login(t, srv, "superadmin", "superadmin123")
	var users []UserResponse
	if code := do(t, srv, "GET", "/api/users", super, "", &users); code != http.StatusOK {
		t.Fatalf("user listing status = %d", code)
	}
	var erin *UserResponse
	for i := range users {
		if users[i].Username == "erin" {
			erin = &users[i]
		}
	}
	if erin == nil {
		t.Fatalf("erin missing from user listing: %+v", users)
	}
	if !erin.PasswordResetRequested {
		t.Fatalf("erin's reset flag not set in listing")
	}

	// Resetting through the listed id clears the flag and the new
	// password works.
	if code := do(t, srv, "POST", "/api/users/"+erin.ID+"/password", super, `{"newPassword":"new-pw"}`, nil); code != http.StatusOK {
		t.Fatalf("admin reset status = %d", code)
	}
	users = nil
	if code := do(t, srv, "GET", "/api/users", super, "", &users); code != http.StatusOK {
		t.Fatalf("user listing status = %d", code)
	}
	for _, u := range users {
		if u.Username == "erin" && u.PasswordResetRequested {
			t.Errorf("reset flag still set after admin reset")
		}
	}
	login(t, srv, "erin", "new-pw")
}

func TestRouterLogoutEndsSession(t *testing.T) {
	srv := newTestServer(t)
	admin := login(t, srv, "admin1", "admin123")

	if code := do(t, srv, "POST", "/api/logout", admin, "", nil); code != http.StatusOK {
		t.Fatalf("logout status = %d", code)
	}
	if code := do(t, srv, "GET", "/api/cards", admin, "", nil); code != http.StatusUnauthorized {
		t.Errorf("revoked token = %d; want 401", code)
	}
}
