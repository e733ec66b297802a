package domain

import "time"

// Role enumerates account privilege levels.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Account mirrors the persisted representation in the accounts collection.
// PasswordHash and the lockout counters never leave the service layer.
type Account struct {
	ID             string     `bson:"_id,omitempty"`
	Name           string     `bson:"name"`
	Email          string     `bson:"email"`
	PasswordHash   string     `bson:"password_hash"`
	Role           Role       `bson:"role"`
	FailedAttempts int        `bson:"failed_attempts"`
	LockedUntil    *time.Time `bson:"locked_until,omitempty"`
	CreatedAt      time.Time  `bson:"created_at"`
	LastLogin      *time.Time `bson:"last_login,omitempty"`
}

// Locked reports whether the account lockout window is still open at now.
// An elapsed lock is ignored rather than actively cleared; the counters are
// reset on the next successful login.
func (a Account) Locked(now time.Time) bool {
	return a.LockedUntil != nil && a.LockedUntil.After(now)
}

// AccountUpdate captures a partial update of mutable profile fields.
// Nil pointers leave the corresponding field untouched.
type AccountUpdate struct {
	Name  *string
	Email *string
}
