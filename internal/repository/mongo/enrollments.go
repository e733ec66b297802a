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

const enrollmentsCollection = "enrollments"

// EnrollmentRepository implements port.EnrollmentRepository using MongoDB.
type EnrollmentRepository struct {
	coll *mongo.Collection
}

// NewEnrollmentRepository wires a MongoDB-backed enrollment repository.
func NewEnrollmentRepository(db *mongo.Database) *EnrollmentRepository {
	return &EnrollmentRepository{coll: db.Collection(enrollmentsCollection)}
}

// EnsureIndexes creates the unique compound index preventing duplicate enrollments.
func (r *EnrollmentRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "account_id", Value: 1}, {Key: "course_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create enrollment index: %w", err)
	}
	return nil
}

// Create inserts a new enrollment. Enrolling twice in the same course
// surfaces as repository.ErrConflict.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment domain.Enrollment) (*domain.Enrollment, error) {
	if enrollment.ID == "" {
		enrollment.ID = primitive.NewObjectID().Hex()
	}

	if _, err := r.coll.InsertOne(ctx, enrollment); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, repository.ErrConflict
		}
		return nil, fmt.Errorf("insert enrollment: %w", err)
	}

	return &enrollment, nil
}

// GetByAccountAndCourse looks up a single enrollment record.
func (r *EnrollmentRepository) GetByAccountAndCourse(ctx context.Context, accountID, courseID string) (*domain.Enrollment, error) {
	var enrollment domain.Enrollment
	err := r.coll.FindOne(ctx, bson.M{"account_id": accountID, "course_id": courseID}).Decode(&enrollment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("find enrollment: %w", err)
	}
	return &enrollment, nil
}

// ListByAccount returns all enrollments for an account, newest first.
func (r *EnrollmentRepository) ListByAccount(ctx context.Context, accountID string) ([]domain.Enrollment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "enrolled_at", Value: -1}})

	cursor, err := r.coll.Find(ctx, bson.M{"account_id": accountID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	defer cursor.Close(ctx)

	var enrollments []domain.Enrollment
	if err := cursor.All(ctx, &enrollments); err != nil {
		return nil, fmt.Errorf("decode enrollments: %w", err)
	}
	return enrollments, nil
}

// UpdateProgress stores the new progress value and completion flag.
func (r *EnrollmentRepository) UpdateProgress(ctx context.Context, id string, progress int, completed bool) (*domain.Enrollment, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var enrollment domain.Enrollment
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"progress":   progress,
			"completed":  completed,
			"updated_at": time.Now().UTC(),
		}},
		opts,
	).Decode(&enrollment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("update enrollment progress: %w", err)
	}

	return &enrollment, nil
}
