package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/coursehub/coursehub-api/internal/core/domain"
	"github.com/coursehub/coursehub-api/internal/repository"
)

const coursesCollection = "courses"

// CourseRepository implements port.CourseRepository using MongoDB.
type CourseRepository struct {
	coll *mongo.Collection
}

// NewCourseRepository wires a MongoDB-backed course repository.
func NewCourseRepository(db *mongo.Database) *CourseRepository {
	return &CourseRepository{coll: db.Collection(coursesCollection)}
}

// Create inserts a new course document.
func (r *CourseRepository) Create(ctx context.Context, course domain.Course) (*domain.Course, error) {
	if course.ID == "" {
		course.ID = primitive.NewObjectID().Hex()
	}

	if _, err := r.coll.InsertOne(ctx, course); err != nil {
		return nil, fmt.Errorf("insert course: %w", err)
	}

	return &course, nil
}

// GetByID retrieves a course by identifier.
func (r *CourseRepository) GetByID(ctx context.Context, id string) (*domain.Course, error) {
	var course domain.Course
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&course)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("find course: %w", err)
	}
	return &course, nil
}

// List returns all catalog courses, newest first.
func (r *CourseRepository) List(ctx context.Context) ([]domain.Course, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	defer cursor.Close(ctx)

	var courses []domain.Course
	if err := cursor.All(ctx, &courses); err != nil {
		return nil, fmt.Errorf("decode courses: %w", err)
	}
	return courses, nil
}
