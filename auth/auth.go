// Package auth implements the two-step OTP login handshake and owns the
// client session: identifier+password first, then a six-digit code, then a
// bearer token persisted across restarts.
//
// State machine:
//
//	StateIdentifierEntry --SendOTP ok--> StateOTPSent --VerifyOTP ok--> StateVerified
//
// A failed SendOTP keeps the state at identifier entry; a failed VerifyOTP
// keeps it at OTP entry. Logout returns to identifier entry from anywhere.
package auth

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/sujitha-np/grandkitchen-go/core"
	"github.com/sujitha-np/grandkitchen-go/pkg/logger"
	"github.com/sujitha-np/grandkitchen-go/pkg/store"
)

// User is the employee profile returned at login and cached locally
type User struct {
	ID         int    `json:"id"`
	EmployeeID int    `json:"employee_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Department string `json:"department"`
}

// State is the position in the login handshake
type State int

const (
	StateIdentifierEntry State = iota
	StateOTPSent
	StateVerified
)

// String returns a readable state name
func (s State) String() string {
	switch s {
	case StateIdentifierEntry:
		return "identifier_entry"
	case StateOTPSent:
		return "otp_sent"
	case StateVerified:
		return "verified"
	}
	return "unknown"
}

// Authenticator drives the login handshake and holds the active session.
// It is safe for concurrent use; the transport reads the token through
// TokenFunc on every request.
type Authenticator struct {
	transport *core.Transport
	store     store.Store
	logger    logger.Logger

	mu              sync.RWMutex
	state           State
	token           string
	employeeID      int
	user            *User
	pendingLoginID  string
	pendingEmployee int
}

// NewAuthenticator creates an authenticator backed by the given transport
// and session store
func NewAuthenticator(transport *core.Transport, st store.Store, log logger.Logger) *Authenticator {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Authenticator{
		transport: transport,
		store:     st,
		logger:    log.With(map[string]interface{}{"component": "auth"}),
		state:     StateIdentifierEntry,
	}
}

// State returns the current handshake state
func (a *Authenticator) State() State {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

// IsAuthenticated reports whether a verified session is active
func (a *Authenticator) IsAuthenticated() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state == StateVerified && a.token != ""
}

// Token implements core.TokenFunc for the transport
func (a *Authenticator) Token(_ context.Context) string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.token
}

// EmployeeID returns the logged-in employee id. ok is false when no session
// is active; callers must short-circuit before issuing employee-scoped
// requests in that case.
func (a *Authenticator) EmployeeID() (int, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.state != StateVerified || a.employeeID == 0 {
		return 0, false
	}
	return a.employeeID, true
}

// User returns the cached user object, nil when not logged in
func (a *Authenticator) User() *User {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.user
}

type sendOTPRequest struct {
	LoginID  string `json:"login_id"`
	Password string `json:"password"`
}

type sendOTPResponse struct {
	EmployeeID int `json:"employee_id"`
}

// SendOTP submits the identifier and password and asks the server to
// dispatch a one-time code. On success the handshake advances to
// StateOTPSent. Empty inputs are rejected before any network call.
func (a *Authenticator) SendOTP(ctx context.Context, loginID, password string) error {
	loginID = strings.TrimSpace(loginID)
	if loginID == "" || password == "" {
		return core.NewClientError("auth.SendOTP", "auth",
			fmt.Errorf("login id and password are required"))
	}

	var resp sendOTPResponse
	if err := a.transport.PostJSON(ctx, core.PathSendOTP, sendOTPRequest{
		LoginID:  loginID,
		Password: password,
	}, &resp); err != nil {
		a.logger.Warn("OTP dispatch failed", map[string]interface{}{
			"login_id": loginID,
			"error":    core.UserMessage(err),
		})
		return err
	}

	a.mu.Lock()
	a.state = StateOTPSent
	a.pendingLoginID = loginID
	a.pendingEmployee = resp.EmployeeID
	a.mu.Unlock()

	a.logger.Info("OTP dispatched", map[string]interface{}{"login_id": loginID})
	return nil
}

type verifyOTPRequest struct {
	OTP        string `json:"otp"`
	LoginID    string `json:"login_id"`
	EmployeeID int    `json:"employee_id"`
}

type verifyOTPResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// VerifyOTP submits the six-digit code for the pending login. On success the
// bearer token and user are persisted to the store and written into the
// in-memory session before the method returns, so the caller can navigate
// straight into the app.
func (a *Authenticator) VerifyOTP(ctx context.Context, code string) error {
	a.mu.RLock()
	state := a.state
	loginID := a.pendingLoginID
	employeeID := a.pendingEmployee
	a.mu.RUnlock()

	if state != StateOTPSent {
		return core.NewClientError("auth.VerifyOTP", "auth",
			fmt.Errorf("no OTP has been requested"))
	}
	if len(code) != OTPLength {
		return core.NewClientError("auth.VerifyOTP", "auth",
			fmt.Errorf("code must be %d digits", OTPLength))
	}

	var resp verifyOTPResponse
	if err := a.transport.PostJSON(ctx, core.PathVerifyOTP, verifyOTPRequest{
		OTP:        code,
		LoginID:    loginID,
		EmployeeID: employeeID,
	}, &resp); err != nil {
		return err
	}
	if resp.Token == "" {
		return core.NewClientError("auth.VerifyOTP", "auth",
			fmt.Errorf("server returned no token"))
	}

	if resp.User != nil && resp.User.EmployeeID != 0 {
		employeeID = resp.User.EmployeeID
	}

	if err := a.persistSession(ctx, resp.Token, employeeID, resp.User); err != nil {
		// The session is still usable in memory; persistence failure only
		// costs the user a re-login after restart.
		a.logger.Error("Failed to persist session", map[string]interface{}{
			"error": err.Error(),
		})
	}

	a.mu.Lock()
	a.state = StateVerified
	a.token = resp.Token
	a.employeeID = employeeID
	a.user = resp.User
	a.pendingLoginID = ""
	a.pendingEmployee = 0
	a.mu.Unlock()

	a.logger.Info("Login verified", map[string]interface{}{"employee_id": employeeID})
	return nil
}

func (a *Authenticator) persistSession(ctx context.Context, token string, employeeID int, user *User) error {
	if err := a.store.Set(ctx, store.KeyAuthToken, token); err != nil {
		return err
	}
	if err := a.store.Set(ctx, store.KeyEmployeeID, strconv.Itoa(employeeID)); err != nil {
		return err
	}
	if user != nil {
		if err := store.SetJSON(ctx, a.store, store.KeyUserData, user); err != nil {
			return err
		}
	}
	return nil
}

// Hydrate restores a persisted session at startup. It is best effort: any
// read failure leaves the client unauthenticated and is logged rather than
// returned, matching the app's startup behavior. A corrupted store therefore
// degrades to a fresh login instead of a startup crash.
func (a *Authenticator) Hydrate(ctx context.Context) {
	token, err := a.store.Get(ctx, store.KeyAuthToken)
	if err != nil {
		a.logger.Debug("No persisted session", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	rawID, err := a.store.Get(ctx, store.KeyEmployeeID)
	if err != nil {
		a.logger.Debug("Persisted token without employee id", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	employeeID, err := strconv.Atoi(rawID)
	if err != nil || token == "" || employeeID == 0 {
		a.logger.Warn("Discarding malformed persisted session", nil)
		return
	}

	var user User
	userPtr := &user
	if err := store.GetJSON(ctx, a.store, store.KeyUserData, &user); err != nil {
		// The cached user is display-only; a session without it is fine.
		userPtr = nil
	}

	a.mu.Lock()
	a.state = StateVerified
	a.token = token
	a.employeeID = employeeID
	a.user = userPtr
	a.mu.Unlock()

	a.logger.Info("Session restored", map[string]interface{}{"employee_id": employeeID})
}

// Logout clears the persisted and in-memory session
func (a *Authenticator) Logout(ctx context.Context) error {
	for _, key := range []string{store.KeyAuthToken, store.KeyEmployeeID, store.KeyUserData} {
		if err := a.store.Delete(ctx, key); err != nil {
			return core.NewClientError("auth.Logout", "auth", err)
		}
	}

	a.mu.Lock()
	a.state = StateIdentifierEntry
	a.token = ""
	a.employeeID = 0
	a.user = nil
	a.pendingLoginID = ""
	a.pendingEmployee = 0
	a.mu.Unlock()

	a.logger.Info("Logged out", nil)
	return nil
}
