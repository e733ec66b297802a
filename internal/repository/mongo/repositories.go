package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
)

// Repositories groups concrete MongoDB repository implementations.
type Repositories struct {
	Accounts    *AccountRepository
	Courses     *CourseRepository
	Enrollments *EnrollmentRepository
}

// NewRepositories wires all repositories backed by the provided database.
func NewRepositories(db *mongo.Database) *Repositories {
	return &Repositories{
		Accounts:    NewAccountRepository(db),
		Courses:     NewCourseRepository(db),
		Enrollments: NewEnrollmentRepository(db),
	}
}

// EnsureIndexes creates the indexes every repository relies on. Called once
// at startup before the HTTP server starts accepting traffic.
func (r *Repositories) EnsureIndexes(ctx context.Context) error {
	if err := r.Accounts.EnsureIndexes(ctx); err != nil {
		return err
	}
	return r.Enrollments.EnsureIndexes(ctx)
}
