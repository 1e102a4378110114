// Package auth turns the bearer token issued by the hosted auth provider into
// a domain.Session for each request.
//
// Tokens are HS256 JWTs signed with the provider's shared secret. The subject
// claim is the user id; the application role is never read from the token but
// looked up from the user's profile.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/pkordes/validity/backend/internal/domain"
)

// claims is the subset of the provider's access token the API relies on.
type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Verifier validates access tokens.
type Verifier struct {
	secret []byte
	parser *jwt.Parser
}

// NewVerifier returns a Verifier for tokens signed with secret.
// Issuer and audience are checked only when non-empty.
func NewVerifier(secret, issuer, audience string) *Verifier {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	if audience != "" {
		opts = append(opts, jwt.WithAudience(audience))
	}
	return &Verifier{secret: []byte(secret), parser: jwt.NewParser(opts...)}
}

// Verify parses token and returns the user it identifies.
// Every failure wraps domain.ErrUnauthorized.
func (v *Verifier) Verify(token string) (domain.SessionUser, error) {
	var c claims
	_, err := v.parser.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return domain.SessionUser{}, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return domain.SessionUser{}, fmt.Errorf("%w: subject is not a uuid", domain.ErrUnauthorized)
	}
	return domain.SessionUser{ID: id, Email: c.Email}, nil
}

// RoleLookup resolves the stored application role of a user.
type RoleLookup interface {
	RoleOf(ctx context.Context, userID uuid.UUID) (domain.Role, error)
}

type sessionKey struct{}

// WithSession returns a copy of ctx carrying sess.
func WithSession(ctx context.Context, sess domain.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, sess)
}

// SessionFromContext returns the session attached by Middleware, or an
// anonymous session if there is none.
func SessionFromContext(ctx context.Context) domain.Session {
	if sess, ok := ctx.Value(sessionKey{}).(domain.Session); ok {
		return sess
	}
	return domain.AnonymousSession()
}

// Middleware attaches a domain.Session to every request.
//
// A missing or invalid token yields an anonymous session rather than an
// error; operations that need a user reject anonymous sessions themselves.
// If the role lookup fails the user is signed in with RoleUser.
func Middleware(v *Verifier, roles RoleLookup, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := domain.AnonymousSession()

			if token, ok := bearerToken(r); ok {
				user, err := v.Verify(token)
				switch {
				case err != nil:
					logger.DebugContext(r.Context(), "rejected bearer token", "error", err)
				default:
					sess = domain.Session{User: user, Role: domain.RoleUser, IsAuthenticated: true}
					role, err := roles.RoleOf(r.Context(), user.ID)
					if err != nil {
						logger.ErrorContext(r.Context(), "role lookup failed", "user_id", user.ID, "error", err)
					} else {
						sess.Role = role
					}
				}
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
		})
	}
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// DenyFunc writes the response for a request rejected by a gate.
// err wraps domain.ErrUnauthorized or domain.ErrForbidden.
type DenyFunc func(w http.ResponseWriter, r *http.Request, err error)

// RequireAuth rejects anonymous sessions with domain.ErrUnauthorized.
func RequireAuth(deny DenyFunc) func(http.Handler) http.Handler {
	return RequireRole(deny)
}

// RequireRole rejects anonymous sessions with domain.ErrUnauthorized and
// sessions whose role is not in roles with domain.ErrForbidden.
// With no roles, any signed-in user passes.
func RequireRole(deny DenyFunc, roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := SessionFromContext(r.Context())
			if !sess.IsAuthenticated {
				deny(w, r, domain.ErrUnauthorized)
				return
			}
			if len(roles) > 0 && !slices.Contains(roles, sess.Role) {
				deny(w, r, fmt.Errorf("%w: role %q is not allowed", domain.ErrForbidden, sess.Role))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
