package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role is the application role of a user. It is stored on the profile row,
// not in the hosted provider's token.
type Role string

const (
	RoleAnonymous Role = "anonymous"
	RoleUser      Role = "user"
	RoleDeveloper Role = "developer"
	RoleAdmin     Role = "admin"
)

// Assignable reports whether r may be stored on a profile.
// RoleAnonymous only ever describes a session without a user.
func (r Role) Assignable() bool {
	switch r {
	case RoleUser, RoleDeveloper, RoleAdmin:
		return true
	}
	return false
}

// CanPublish reports whether r may create tools and blog posts.
func (r Role) CanPublish() bool {
	return r == RoleDeveloper || r == RoleAdmin
}

// Profile is the public face of a registered user.
// ID matches the subject id issued by the hosted auth provider.
type Profile struct {
	ID          uuid.UUID
	Username    string
	DisplayName string
	Bio         string
	AvatarURL   string
	WebsiteURL  string
	Role        Role
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProfileInput carries the fields a user may change on their own profile.
type ProfileInput struct {
	Username    string
	DisplayName string
	Bio         string
	AvatarURL   string
	WebsiteURL  string
}
