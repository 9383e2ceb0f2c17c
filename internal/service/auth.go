package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/festipay/festipay/internal/models"
	"github.com/festipay/festipay/internal/session"
	"github.com/festipay/festipay/internal/store"
)

// Auth implements the session/auth gate over the ledger's user
// collection: registration, credential checks, session issuance and the
// password-reset flow. Passwords are stored as bcrypt hashes and
// compared in constant time; the contract stays exact-match gating.
type Auth struct {
	ledger   *Ledger
	sessions *session.Manager
	lg       *zap.Logger
}

// NewAuth constructs the auth gate over the given ledger and session
// manager.
func NewAuth(ledger *Ledger, sessions *session.Manager, lg *zap.Logger) *Auth {
	return &Auth{ledger: ledger, sessions: sessions, lg: lg}
}

// Register creates a USER-role account with a placeholder email.
// Usernames are unique; registration never assigns a staff role.
func (a *Auth) Register(ctx context.Context, username, password string) models.Result {
	a.ledger.mu.Lock()
	defer a.ledger.mu.Unlock()

	for i := range a.ledger.users {
		if a.ledger.users[i].Username == username {
			return models.Fail("Username already exists.")
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		a.lg.Error("hash password", zap.Error(err))
		return models.Fail("Registration failed.")
	}

	a.ledger.users = append(a.ledger.users, models.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		CardIDs:      []string{},
		Role:         models.RoleUser,
		Email:        fmt.Sprintf("%s@event.com", username),
	})
	a.ledger.persist(ctx, store.KeyUsers)

	a.lg.Info("user registered", zap.String("username", username))
	return models.Ok("Registration successful! Please log in.")
}

// Login checks credentials and, on success, issues a capability token
// for the session. Unknown usernames and wrong passwords produce the
// same generic failure.
func (a *Auth) Login(_ context.Context, username, password string) (models.Result, string, *models.User) {
	a.ledger.mu.Lock()
	var user models.User
	found := false
	for i := range a.ledger.users {
		if a.ledger.users[i].Username == username {
			user = a.ledger.users[i]
			found = true
			break
		}
	}
	a.ledger.mu.Unlock()

	if !found || bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) != nil {
		return models.Fail("Invalid username or password."), "", nil
	}

	token, err := a.sessions.Issue(user.ID)
	if err != nil {
		a.lg.Error("issue session token", zap.Error(err))
		return models.Fail("Login failed."), "", nil
	}

	a.lg.Info("user logged in", zap.String("username", username), zap.String("role", string(user.Role)))
	return models.Ok("Login successful!"), token, &user
}

// Logout revokes the session token unconditionally.
func (a *Auth) Logout(token string) {
	a.sessions.Revoke(token)
}

// ActorFromToken resolves a session token to its user, or nil for an
// unknown or revoked token.
func (a *Auth) ActorFromToken(token string) *models.User {
	userID, ok := a.sessions.Resolve(token)
	if !ok {
		return nil
	}
	user, ok := a.ledger.UserByID(userID)
	if !ok {
		return nil
	}
	return &user
}

// RequestPasswordReset flags the account for administrator attention.
// The secret itself is untouched.
func (a *Auth) RequestPasswordReset(ctx context.Context, username string) models.Result {
	a.ledger.mu.Lock()
	defer a.ledger.mu.Unlock()

	for i := range a.ledger.users {
		if a.ledger.users[i].Username == username {
			a.ledger.users[i].PasswordResetRequested = true
			a.ledger.persist(ctx, store.KeyUsers)
			return models.Ok("Password reset request sent to administrator.")
		}
	}
	return models.Fail("Username not found.")
}

// AdminResetPassword overwrites the user's secret and clears the
// reset-requested flag. The role check lives here, not in the
// presentation routing.
func (a *Auth) AdminResetPassword(ctx context.Context, actor *models.User, userID, newPassword string) models.Result {
	if !CanPerform(actor, OpResetPassword) {
		return models.Fail(MsgNotPermitted)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		a.lg.Error("hash password", zap.Error(err))
		return models.Fail("Password reset failed.")
	}

	a.ledger.mu.Lock()
	defer a.ledger.mu.Unlock()

	user := a.ledger.findUser(userID)
	if user == nil {
		return models.Fail("User not found.")
	}
	user.PasswordHash = hash
	user.PasswordResetRequested = false
	a.ledger.persist(ctx, store.KeyUsers)

	a.lg.Info("password reset by admin", zap.String("user", userID))
	return models.Ok("Password has been reset successfully.")
}
