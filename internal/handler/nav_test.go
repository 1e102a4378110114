package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/validity/backend/internal/domain"
	"github.com/pkordes/validity/backend/internal/handler"
)

type navJSON struct {
	Role            string `json:"role"`
	IsAuthenticated bool   `json:"is_authenticated"`
	Items           []struct {
		Route string `json:"route"`
		Label string `json:"label"`
	} `json:"items"`
}

func (n navJSON) routes() []string {
	out := make([]string, len(n.Items))
	for i, it := range n.Items {
		out[i] = it.Route
	}
	return out
}

func TestGetNav_PerRole(t *testing.T) {
	tests := []struct {
		name    string
		sess    domain.Session
		want    []string
		notWant []string
	}{
		{"anonymous", anonymous(), []string{"/tools", "/login"}, []string{"/profile", "/admin"}},
		{"user", signedInAs(domain.RoleUser), []string{"/profile"}, []string{"/login", "/dashboard/tools", "/admin"}},
		{"developer", signedInAs(domain.RoleDeveloper), []string{"/dashboard/tools", "/dashboard/posts"}, []string{"/admin"}},
		{"admin", signedInAs(domain.RoleAdmin), []string{"/admin", "/dashboard/tools"}, []string{"/login"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newTestHandler(handler.Services{}, tc.sess)

			rec := serve(h, http.MethodGet, "/nav", "")

			require.Equal(t, http.StatusOK, rec.Code)
			var body navJSON
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, string(tc.sess.Role), body.Role)
			assert.Equal(t, tc.sess.IsAuthenticated, body.IsAuthenticated)
			routes := body.routes()
			for _, r := range tc.want {
				assert.Contains(t, routes, r)
			}
			for _, r := range tc.notWant {
				assert.NotContains(t, routes, r)
			}
		})
	}
}

func TestGetMe_SignedIn(t *testing.T) {
	sess := signedInAs(domain.RoleDeveloper)
	svc := &mockProfileServicer{me: func(_ context.Context, s domain.Session) (domain.Profile, error) {
		return domain.Profile{ID: s.User.ID, Username: "ada", Role: s.Role}, nil
	}}
	h := newTestHandler(handler.Services{Profiles: svc}, sess)

	rec := serve(h, http.MethodGet, "/me", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Email   string `json:"email"`
		Profile struct {
			Username string `json:"username"`
			Role     string `json:"role"`
		} `json:"profile"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "someone@example.com", body.Email)
	assert.Equal(t, "ada", body.Profile.Username)
	assert.Equal(t, "developer", body.Profile.Role)
}

func TestGetMe_Anonymous_Returns401(t *testing.T) {
	h := newTestHandler(handler.Services{Profiles: &mockProfileServicer{}}, anonymous())

	rec := serve(h, http.MethodGet, "/me", "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUpdateMe_PassesInput(t *testing.T) {
	var gotIn domain.ProfileInput
	svc := &mockProfileServicer{updateMe: func(_ context.Context, s domain.Session, in domain.ProfileInput) (domain.Profile, error) {
		gotIn = in
		return domain.Profile{ID: s.User.ID, Username: in.Username, Role: s.Role}, nil
	}}
	h := newTestHandler(handler.Services{Profiles: svc}, signedInAs(domain.RoleUser))

	rec := serve(h, http.MethodPut, "/me", `{"username":"grace","bio":"Compilers"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "grace", gotIn.Username)
	assert.Equal(t, "Compilers", gotIn.Bio)
}

func TestUpdateMe_ShortUsername_Returns422(t *testing.T) {
	h := newTestHandler(handler.Services{Profiles: &mockProfileServicer{}}, signedInAs(domain.RoleUser))

	rec := serve(h, http.MethodPut, "/me", `{"username":"ab"}`)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body errorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "username must be at least 3 characters", body.Error.Message)
}
