package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/coursehub/coursehub-api/internal/core/domain"
	"github.com/coursehub/coursehub-api/internal/core/port"
	"github.com/coursehub/coursehub-api/internal/infra/config"
	"github.com/coursehub/coursehub-api/internal/infra/logger"
	"github.com/coursehub/coursehub-api/internal/infra/security"
	"github.com/coursehub/coursehub-api/internal/repository"
)

const (
	minPasswordLength   = 6
	defaultTokenTTL     = 7 * 24 * time.Hour
	defaultMaxAttempts  = 5
	defaultLockDuration = 15 * time.Minute
)

var (
	// ErrInvalidCredentials indicates the provided email or password are
	// incorrect. Unknown email and wrong password are deliberately
	// indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailTaken indicates an account with the normalized email already exists.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidToken indicates the session token is missing, malformed, or
	// carries an invalid signature.
	ErrInvalidToken = errors.New("invalid session token")
	// ErrExpiredToken indicates the session token has expired.
	ErrExpiredToken = errors.New("session token expired")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidationError reports malformed caller input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s %s", e.Field, e.Message)
}

// AccountLockedError reports an active login lockout with the remaining window.
type AccountLockedError struct {
	RetryAfter time.Duration
}

func (e *AccountLockedError) Error() string {
	return fmt.Sprintf("account locked, retry after %s", e.RetryAfter)
}

// RetryAfterSeconds returns the remaining lock window rounded up to whole seconds.
func (e *AccountLockedError) RetryAfterSeconds() int {
	seconds := int(e.RetryAfter / time.Second)
	if e.RetryAfter%time.Second != 0 {
		seconds++
	}
	if seconds < 0 {
		seconds = 0
	}
	return seconds
}

// SessionClaims carry the account identity embedded in a session token.
type SessionClaims struct {
	AccountID string `json:"uid"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// AuthService coordinates registration, login, and session verification. It
// owns the lockout policy and token issuance.
type AuthService struct {
	cfg      *config.AppConfig
	accounts port.AccountRepository
	log      *zap.Logger
	now      func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(cfg *config.AppConfig, accounts port.AccountRepository, log *zap.Logger) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{
		cfg:      cfg,
		accounts: accounts,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// AuthResult pairs a minted session token with the authenticated account.
type AuthResult struct {
	Token   string
	Account domain.Account
}

// Register creates a new account and issues its first session token.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)

	if name == "" {
		return nil, &ValidationError{Field: "name", Message: "is required"}
	}
	if !emailPattern.MatchString(email) {
		return nil, &ValidationError{Field: "email", Message: "is not a valid address"}
	}
	if len(password) < minPasswordLength {
		return nil, &ValidationError{Field: "password", Message: fmt.Sprintf("must be at least %d characters", minPasswordLength)}
	}

	if _, err := s.accounts.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup account: %w", err)
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := domain.Account{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         domain.RoleUser,
		CreatedAt:    s.now(),
	}

	created, err := s.accounts.Create(ctx, account)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	token, err := s.mintToken(*created)
	if err != nil {
		return nil, err
	}

	s.log.Info("account registered",
		zap.String("account_id", created.ID),
		zap.String("email", logger.MaskEmail(created.Email)),
	)

	sanitized := *created
	sanitized.PasswordHash = ""

	return &AuthResult{Token: token, Account: sanitized}, nil
}

// Login validates credentials, applies the lockout policy, and issues a
// session token on success.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, &ValidationError{Field: "email", Message: "is required"}
	}
	if password == "" {
		return nil, &ValidationError{Field: "password", Message: "is required"}
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// No account to count failures against.
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup account: %w", err)
	}

	now := s.now()
	if account.Locked(now) {
		return nil, &AccountLockedError{RetryAfter: account.LockedUntil.Sub(now)}
	}

	ok, err := security.VerifyPassword(password, account.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		updated, recordErr := s.accounts.RecordFailedAttempt(ctx, account.ID, s.maxAttempts(), s.lockDuration())
		if recordErr != nil && !errors.Is(recordErr, repository.ErrNotFound) {
			return nil, fmt.Errorf("record failed attempt: %w", recordErr)
		}
		if updated != nil && updated.LockedUntil != nil {
			s.log.Warn("account locked after repeated failures",
				zap.String("account_id", account.ID),
				zap.String("email", logger.MaskEmail(account.Email)),
				zap.Int("failed_attempts", updated.FailedAttempts),
			)
		}
		return nil, ErrInvalidCredentials
	}

	if err := s.accounts.ResetLockout(ctx, account.ID, now); err != nil {
		return nil, fmt.Errorf("reset lockout: %w", err)
	}

	account.FailedAttempts = 0
	account.LockedUntil = nil
	account.LastLogin = &now

	token, err := s.mintToken(*account)
	if err != nil {
		return nil, err
	}

	s.log.Info("login succeeded",
		zap.String("account_id", account.ID),
		zap.String("email", logger.MaskEmail(account.Email)),
	)

	sanitized := *account
	sanitized.PasswordHash = ""

	return &AuthResult{Token: token, Account: sanitized}, nil
}

// VerifySession validates the token and re-resolves the embedded account.
// A valid token whose account no longer exists surfaces repository.ErrNotFound
// so the transport layer can fail closed.
func (s *AuthService) VerifySession(ctx context.Context, token string) (*domain.Account, error) {
	claims, err := s.ParseSessionToken(token)
	if err != nil {
		return nil, err
	}

	account, err := s.accounts.GetByID(ctx, claims.AccountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("lookup account: %w", err)
	}

	sanitized := *account
	sanitized.PasswordHash = ""

	return &sanitized, nil
}

// UpdateDetails changes the account's name and/or email. Emails are
// normalized and re-checked for uniqueness.
func (s *AuthService) UpdateDetails(ctx context.Context, accountID, name, email string) (*domain.Account, error) {
	update := domain.AccountUpdate{}

	if trimmed := strings.TrimSpace(name); trimmed != "" {
		update.Name = &trimmed
	}
	if email != "" {
		normalized := normalizeEmail(email)
		if !emailPattern.MatchString(normalized) {
			return nil, &ValidationError{Field: "email", Message: "is not a valid address"}
		}
		update.Email = &normalized
	}

	account, err := s.accounts.UpdateDetails(ctx, accountID, update)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	sanitized := *account
	sanitized.PasswordHash = ""

	return &sanitized, nil
}

// mintToken signs a session token carrying the account id and role.
func (s *AuthService) mintToken(account domain.Account) (string, error) {
	now := s.now()
	ttl := s.cfg.JWT.TokenTTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}

	claims := SessionClaims{
		AccountID: account.ID,
		Role:      string(account.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID,
			Issuer:    s.cfg.App.Name,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString([]byte(s.cfg.JWT.Secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// ParseSessionToken validates the token signature and expiry and returns its claims.
func (s *AuthService) ParseSessionToken(token string) (*SessionClaims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}

	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWT.Secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if parsed == nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if strings.TrimSpace(claims.AccountID) == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func (s *AuthService) maxAttempts() int {
	if s.cfg.Lockout.MaxAttempts > 0 {
		return s.cfg.Lockout.MaxAttempts
	}
	return defaultMaxAttempts
}

func (s *AuthService) lockDuration() time.Duration {
	if s.cfg.Lockout.LockDuration > 0 {
		return s.cfg.Lockout.LockDuration
	}
	return defaultLockDuration
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
