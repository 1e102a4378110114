package auth_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/validity/backend/internal/auth"
	"github.com/pkordes/validity/backend/internal/domain"
)

const testSecret = "test-secret-at-least-32-bytes-long!!"

type mockRoles struct {
	roleOf func(ctx context.Context, id uuid.UUID) (domain.Role, error)
}

func (m *mockRoles) RoleOf(ctx context.Context, id uuid.UUID) (domain.Role, error) {
	return m.roleOf(ctx, id)
}

func fixedRole(role domain.Role) *mockRoles {
	return &mockRoles{roleOf: func(context.Context, uuid.UUID) (domain.Role, error) { return role, nil }}
}

func signToken(t *testing.T, secret string, mutate func(c jwt.MapClaims)) string {
	t.Helper()
	c := jwt.MapClaims{
		"sub":   uuid.NewString(),
		"email": "ada@example.com",
		"iss":   "https://auth.example.com",
		"aud":   "authenticated",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	if mutate != nil {
		mutate(c)
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ---- Verifier --------------------------------------------------------------

func TestVerifier_Verify_OK(t *testing.T) {
	id := uuid.New()
	token := signToken(t, testSecret, func(c jwt.MapClaims) { c["sub"] = id.String() })
	v := auth.NewVerifier(testSecret, "https://auth.example.com", "authenticated")

	user, err := v.Verify(token)

	require.NoError(t, err)
	assert.Equal(t, id, user.ID)
	assert.Equal(t, "ada@example.com", user.Email)
}

func TestVerifier_Verify_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		token func(t *testing.T) string
	}{
		{"wrong secret", func(t *testing.T) string { return signToken(t, "another-secret-another-secret-xx", nil) }},
		{"expired", func(t *testing.T) string {
			return signToken(t, testSecret, func(c jwt.MapClaims) { c["exp"] = time.Now().Add(-time.Minute).Unix() })
		}},
		{"no expiry", func(t *testing.T) string {
			return signToken(t, testSecret, func(c jwt.MapClaims) { delete(c, "exp") })
		}},
		{"wrong issuer", func(t *testing.T) string {
			return signToken(t, testSecret, func(c jwt.MapClaims) { c["iss"] = "https://evil.example.com" })
		}},
		{"wrong audience", func(t *testing.T) string {
			return signToken(t, testSecret, func(c jwt.MapClaims) { c["aud"] = "service_role" })
		}},
		{"subject not a uuid", func(t *testing.T) string {
			return signToken(t, testSecret, func(c jwt.MapClaims) { c["sub"] = "user-1" })
		}},
		{"garbage", func(*testing.T) string { return "not.a.jwt" }},
	}
	v := auth.NewVerifier(testSecret, "https://auth.example.com", "authenticated")

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := v.Verify(tc.token(t))

			assert.ErrorIs(t, err, domain.ErrUnauthorized)
		})
	}
}

func TestVerifier_Verify_IssuerAndAudienceOptional(t *testing.T) {
	token := signToken(t, testSecret, func(c jwt.MapClaims) {
		delete(c, "iss")
		delete(c, "aud")
	})
	v := auth.NewVerifier(testSecret, "", "")

	_, err := v.Verify(token)

	assert.NoError(t, err)
}

// ---- Middleware ------------------------------------------------------------

// captureSession runs one request through the middleware and returns the
// session the next handler observed.
func captureSession(t *testing.T, roles auth.RoleLookup, header string) domain.Session {
	t.Helper()
	var got domain.Session
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = auth.SessionFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	mw := auth.Middleware(auth.NewVerifier(testSecret, "", ""), roles, discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rr := httptest.NewRecorder()
	mw(next).ServeHTTP(rr, req)

	require.Equal(t, http.StatusNoContent, rr.Code)
	return got
}

func TestMiddleware_NoHeader_Anonymous(t *testing.T) {
	sess := captureSession(t, fixedRole(domain.RoleAdmin), "")

	assert.False(t, sess.IsAuthenticated)
	assert.Equal(t, domain.RoleAnonymous, sess.Role)
}

func TestMiddleware_InvalidToken_Anonymous(t *testing.T) {
	sess := captureSession(t, fixedRole(domain.RoleAdmin), "Bearer nope")

	assert.False(t, sess.IsAuthenticated)
}

func TestMiddleware_NonBearerScheme_Anonymous(t *testing.T) {
	sess := captureSession(t, fixedRole(domain.RoleAdmin), "Basic "+signToken(t, testSecret, nil))

	assert.False(t, sess.IsAuthenticated)
}

func TestMiddleware_ValidToken_RoleFromLookup(t *testing.T) {
	id := uuid.New()
	token := signToken(t, testSecret, func(c jwt.MapClaims) { c["sub"] = id.String() })

	sess := captureSession(t, fixedRole(domain.RoleDeveloper), "Bearer "+token)

	assert.True(t, sess.IsAuthenticated)
	assert.Equal(t, id, sess.User.ID)
	assert.Equal(t, domain.RoleDeveloper, sess.Role)
}

func TestMiddleware_RoleLookupFails_FallsBackToUser(t *testing.T) {
	roles := &mockRoles{roleOf: func(context.Context, uuid.UUID) (domain.Role, error) {
		return "", errors.New("db down")
	}}

	sess := captureSession(t, roles, "Bearer "+signToken(t, testSecret, nil))

	assert.True(t, sess.IsAuthenticated)
	assert.Equal(t, domain.RoleUser, sess.Role)
}

func TestSessionFromContext_Empty(t *testing.T) {
	sess := auth.SessionFromContext(context.Background())

	assert.Equal(t, domain.AnonymousSession(), sess)
}

// ---- gates -----------------------------------------------------------------

// gateResult runs a request carrying sess through the gate built by mk and
// returns the status code and the error passed to the deny func, if any.
func gateResult(mk func(auth.DenyFunc) func(http.Handler) http.Handler, sess domain.Session) (int, error) {
	var denied error
	deny := func(w http.ResponseWriter, _ *http.Request, err error) {
		denied = err
		w.WriteHeader(http.StatusTeapot)
	}
	h := mk(deny)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(auth.WithSession(req.Context(), sess))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code, denied
}

func signedIn(role domain.Role) domain.Session {
	return domain.Session{User: domain.SessionUser{ID: uuid.New()}, Role: role, IsAuthenticated: true}
}

func TestRequireAuth(t *testing.T) {
	code, err := gateResult(auth.RequireAuth, domain.AnonymousSession())
	assert.Equal(t, http.StatusTeapot, code)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	code, err = gateResult(auth.RequireAuth, signedIn(domain.RoleUser))
	assert.Equal(t, http.StatusOK, code)
	assert.NoError(t, err)
}

func TestRequireRole(t *testing.T) {
	publishers := func(deny auth.DenyFunc) func(http.Handler) http.Handler {
		return auth.RequireRole(deny, domain.RoleDeveloper, domain.RoleAdmin)
	}

	tests := []struct {
		name     string
		sess     domain.Session
		wantCode int
		wantErr  error
	}{
		{"anonymous", domain.AnonymousSession(), http.StatusTeapot, domain.ErrUnauthorized},
		{"user", signedIn(domain.RoleUser), http.StatusTeapot, domain.ErrForbidden},
		{"developer", signedIn(domain.RoleDeveloper), http.StatusOK, nil},
		{"admin", signedIn(domain.RoleAdmin), http.StatusOK, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			code, err := gateResult(publishers, tc.sess)

			assert.Equal(t, tc.wantCode, code)
			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}
