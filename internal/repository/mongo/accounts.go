package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/coursehub/coursehub-api/internal/core/domain"
	"github.com/coursehub/coursehub-api/internal/repository"
)

const accountsCollection = "accounts"

// AccountRepository implements port.AccountRepository using MongoDB.
type AccountRepository struct {
	coll *mongo.Collection
}

// NewAccountRepository wires a MongoDB-backed account repository.
func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{coll: db.Collection(accountsCollection)}
}

// EnsureIndexes creates the unique index backing the one-account-per-email invariant.
func (r *AccountRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create email index: %w", err)
	}
	return nil
}

// Create inserts a new account document. Duplicate normalized emails surface
// as repository.ErrConflict.
func (r *AccountRepository) Create(ctx context.Context, account domain.Account) (*domain.Account, error) {
	if account.ID == "" {
		account.ID = primitive.NewObjectID().Hex()
	}

	if _, err := r.coll.InsertOne(ctx, account); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, repository.ErrConflict
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}

	return &account, nil
}

// GetByID retrieves an account by identifier.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	var account domain.Account
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&account)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("find account by id: %w", err)
	}
	return &account, nil
}

// GetByEmail retrieves an account by its normalized email.
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	var account domain.Account
	err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&account)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("find account by email: %w", err)
	}
	return &account, nil
}

// UpdateDetails applies a partial profile update and returns the updated document.
func (r *AccountRepository) UpdateDetails(ctx context.Context, id string, update domain.AccountUpdate) (*domain.Account, error) {
	set := bson.M{}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Email != nil {
		set["email"] = *update.Email
	}
	if len(set) == 0 {
		return r.GetByID(ctx, id)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var account domain.Account
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&account)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, repository.ErrConflict
		}
		return nil, fmt.Errorf("update account: %w", err)
	}

	return &account, nil
}

// RecordFailedAttempt atomically increments the failure counter and applies
// the lock window once the counter reaches threshold. The increment uses the
// store's $inc primitive so concurrent failures do not lose updates.
func (r *AccountRepository) RecordFailedAttempt(ctx context.Context, id string, threshold int, lockFor time.Duration) (*domain.Account, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var account domain.Account
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"failed_attempts": 1}},
		opts,
	).Decode(&account)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("record failed attempt: %w", err)
	}

	if threshold > 0 && account.FailedAttempts >= threshold {
		lockedUntil := time.Now().UTC().Add(lockFor)
		_, err := r.coll.UpdateByID(ctx, id, bson.M{"$set": bson.M{"locked_until": lockedUntil}})
		if err != nil {
			return nil, fmt.Errorf("set lock window: %w", err)
		}
		account.LockedUntil = &lockedUntil
	}

	return &account, nil
}

// ResetLockout clears the failure counters after a successful authentication.
func (r *AccountRepository) ResetLockout(ctx context.Context, id string, lastLogin time.Time) error {
	res, err := r.coll.UpdateByID(ctx, id, bson.M{
		"$set":   bson.M{"failed_attempts": 0, "last_login": lastLogin},
		"$unset": bson.M{"locked_until": ""},
	})
	if err != nil {
		return fmt.Errorf("reset lockout: %w", err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
