package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sujitha-np/grandkitchen-go/auth"
	"github.com/sujitha-np/grandkitchen-go/core"
	"github.com/sujitha-np/grandkitchen-go/pkg/logger"
	"github.com/sujitha-np/grandkitchen-go/pkg/store"
)

func newAuthenticator(t *testing.T, handler http.Handler) (*auth.Authenticator, store.Store) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := core.DefaultConfig()
	cfg.BaseURL = srv.URL
	cfg.Retry.InitialDelay = time.Millisecond

	st := store.NewMemoryStore()
	tr := core.NewTransport(cfg, logger.NopLogger{})
	return auth.NewAuthenticator(tr, st, logger.NopLogger{}), st
}

func loginHandler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(core.DefaultAPIPrefix+core.PathSendOTP, func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"success":false,"errors":{"password":["Password is incorrect"]}}`))
			return
		}
		w.Write([]byte(`{"success":true,"data":{"employee_id":42},"message":"OTP sent"}`))
	})
	mux.HandleFunc(core.DefaultAPIPrefix+core.PathVerifyOTP, func(w http.ResponseWriter, r *http.Request) {
		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req["otp"] != "123456" {
			w.Write([]byte(`{"success":false,"message":"Invalid OTP"}`))
			return
		}
		assert.Equal(t, "EMP042", req["login_id"])
		assert.EqualValues(t, 42, req["employee_id"])
		w.Write([]byte(`{"success":true,"data":{"token":"tok-xyz","user":{"id":1,"employee_id":42,"name":"Amal"}}}`))
	})
	return mux
}

func TestLoginHandshake(t *testing.T) {
	a, st := newAuthenticator(t, loginHandler(t))
	ctx := context.Background()

	assert.Equal(t, auth.StateIdentifierEntry, a.State())
	assert.False(t, a.IsAuthenticated())

	require.NoError(t, a.SendOTP(ctx, "EMP042", "secret"))
	assert.Equal(t, auth.StateOTPSent, a.State())

	require.NoError(t, a.VerifyOTP(ctx, "123456"))
	assert.Equal(t, auth.StateVerified, a.State())
	assert.True(t, a.IsAuthenticated())
	assert.Equal(t, "tok-xyz", a.Token(ctx))

	id, ok := a.EmployeeID()
	assert.True(t, ok)
	assert.Equal(t, 42, id)
	require.NotNil(t, a.User())
	assert.Equal(t, "Amal", a.User().Name)

	// Session persisted under the original device-store keys
	token, err := st.Get(ctx, store.KeyAuthToken)
	require.NoError(t, err)
	assert.Equal(t, "tok-xyz", token)
	rawID, err := st.Get(ctx, store.KeyEmployeeID)
	require.NoError(t, err)
	assert.Equal(t, "42", rawID)
}

func TestSendOTPFailureStaysOnIdentifierEntry(t *testing.T) {
	a, _ := newAuthenticator(t, loginHandler(t))

	err := a.SendOTP(context.Background(), "EMP042", "wrong")
	require.Error(t, err)
	assert.Equal(t, "Password is incorrect", core.UserMessage(err))
	assert.Equal(t, auth.StateIdentifierEntry, a.State())
}

func TestSendOTPGuardsEmptyInput(t *testing.T) {
	called := false
	a, _ := newAuthenticator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	assert.Error(t, a.SendOTP(context.Background(), "  ", "pw"))
	assert.Error(t, a.SendOTP(context.Background(), "EMP042", ""))
	assert.False(t, called, "guard rejections must not reach the network")
}

func TestVerifyOTPFailureKeepsOTPState(t *testing.T) {
	a, _ := newAuthenticator(t, loginHandler(t))
	ctx := context.Background()

	require.NoError(t, a.SendOTP(ctx, "EMP042", "secret"))

	err := a.VerifyOTP(ctx, "000000")
	require.Error(t, err)
	assert.Equal(t, "Invalid OTP", core.UserMessage(err))
	assert.Equal(t, auth.StateOTPSent, a.State())
	assert.False(t, a.IsAuthenticated())
}

func TestVerifyOTPWithoutPendingLogin(t *testing.T) {
	a, _ := newAuthenticator(t, loginHandler(t))
	assert.Error(t, a.VerifyOTP(context.Background(), "123456"))
}

func TestVerifyOTPRejectsShortCode(t *testing.T) {
	a, _ := newAuthenticator(t, loginHandler(t))
	require.NoError(t, a.SendOTP(context.Background(), "EMP042", "secret"))
	assert.Error(t, a.VerifyOTP(context.Background(), "123"))
}

func TestHydrateRestoresSession(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	require.NoError(t, st.Set(ctx, store.KeyAuthToken, "tok-persisted"))
	require.NoError(t, st.Set(ctx, store.KeyEmployeeID, "42"))
	require.NoError(t, store.SetJSON(ctx, st, store.KeyUserData, auth.User{EmployeeID: 42, Name: "Amal"}))

	cfg := core.DefaultConfig()
	cfg.BaseURL = "https://api.gcbk.example"
	a := auth.NewAuthenticator(core.NewTransport(cfg, logger.NopLogger{}), st, logger.NopLogger{})

	a.Hydrate(ctx)
	assert.True(t, a.IsAuthenticated())
	assert.Equal(t, "tok-persisted", a.Token(ctx))
	id, ok := a.EmployeeID()
	assert.True(t, ok)
	assert.Equal(t, 42, id)
}

func TestHydrateBestEffort(t *testing.T) {
	tests := []struct {
		name  string
		setup func(ctx context.Context, st store.Store)
	}{
		{name: "empty store", setup: func(context.Context, store.Store) {}},
		{
			name: "token without employee id",
			setup: func(ctx context.Context, st store.Store) {
				st.Set(ctx, store.KeyAuthToken, "tok")
			},
		},
		{
			name: "malformed employee id",
			setup: func(ctx context.Context, st store.Store) {
				st.Set(ctx, store.KeyAuthToken, "tok")
				st.Set(ctx, store.KeyEmployeeID, "forty-two")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			st := store.NewMemoryStore()
			tt.setup(ctx, st)

			cfg := core.DefaultConfig()
			cfg.BaseURL = "https://api.gcbk.example"
			a := auth.NewAuthenticator(core.NewTransport(cfg, logger.NopLogger{}), st, logger.NopLogger{})

			// Hydrate never fails hard; it just leaves the client logged out
			a.Hydrate(ctx)
			assert.False(t, a.IsAuthenticated())
		})
	}
}

func TestHydrateWithoutCachedUser(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	require.NoError(t, st.Set(ctx, store.KeyAuthToken, "tok"))
	require.NoError(t, st.Set(ctx, store.KeyEmployeeID, "7"))

	cfg := core.DefaultConfig()
	cfg.BaseURL = "https://api.gcbk.example"
	a := auth.NewAuthenticator(core.NewTransport(cfg, logger.NopLogger{}), st, logger.NopLogger{})

	a.Hydrate(ctx)
	assert.True(t, a.IsAuthenticated())
	assert.Nil(t, a.User())
}

func TestLogoutClearsSession(t *testing.T) {
	a, st := newAuthenticator(t, loginHandler(t))
	ctx := context.Background()

	require.NoError(t, a.SendOTP(ctx, "EMP042", "secret"))
	require.NoError(t, a.VerifyOTP(ctx, "123456"))
	require.True(t, a.IsAuthenticated())

	require.NoError(t, a.Logout(ctx))
	assert.False(t, a.IsAuthenticated())
	assert.Equal(t, auth.StateIdentifierEntry, a.State())
	assert.Empty(t, a.Token(ctx))

	ok, err := st.Exists(ctx, store.KeyAuthToken)
	require.NoError(t, err)
	assert.False(t, ok)
}
