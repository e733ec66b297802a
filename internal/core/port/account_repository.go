package port

import (
	"context"
	"time"

	"github.com/coursehub/coursehub-api/internal/core/domain"
)

// AccountRepository exposes persistence behavior for accounts.
//
// Lockout bookkeeping goes through RecordFailedAttempt and ResetLockout so
// concurrent failed logins hit the store's atomic update primitives instead
// of racing read-then-write cycles.
type AccountRepository interface {
	Create(ctx context.Context, account domain.Account) (*domain.Account, error)
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	// GetByEmail matches on the normalized (lowercased) email.
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	UpdateDetails(ctx context.Context, id string, update domain.AccountUpdate) (*domain.Account, error)
	// RecordFailedAttempt atomically increments the failure counter and, when
	// the counter reaches threshold, sets locked_until to now+lockFor. It
	// returns the account as persisted after the update.
	RecordFailedAttempt(ctx context.Context, id string, threshold int, lockFor time.Duration) (*domain.Account, error)
	// ResetLockout zeroes the failure counter, clears locked_until, and stamps
	// last_login. Called on every successful authentication.
	ResetLockout(ctx context.Context, id string, lastLogin time.Time) error
}
