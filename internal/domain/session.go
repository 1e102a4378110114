package domain

import "github.com/google/uuid"

// SessionUser identifies the signed-in user behind a Session.
type SessionUser struct {
	ID    uuid.UUID
	Email string
}

// Session is the auth context of one request. It is built once by the auth
// middleware and passed explicitly to services that enforce ownership.
type Session struct {
	User            SessionUser
	Role            Role
	IsAuthenticated bool
}

// AnonymousSession returns the session used when no valid token is presented.
func AnonymousSession() Session {
	return Session{Role: RoleAnonymous}
}

// IsAdmin reports whether the session belongs to an admin.
func (s Session) IsAdmin() bool {
	return s.IsAuthenticated && s.Role == RoleAdmin
}

// CanModify reports whether the session may edit or delete a resource
// authored by ownerID: the author themselves or any admin.
func (s Session) CanModify(ownerID uuid.UUID) bool {
	if !s.IsAuthenticated {
		return false
	}
	return s.Role == RoleAdmin || s.User.ID == ownerID
}
