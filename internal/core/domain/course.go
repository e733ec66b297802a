package domain

import "time"

// Course is a catalog entry students can enroll in.
type Course struct {
	ID          string    `bson:"_id,omitempty"`
	Title       string    `bson:"title"`
	Description string    `bson:"description"`
	Instructor  string    `bson:"instructor"`
	Category    string    `bson:"category,omitempty"`
	Duration    int       `bson:"duration,omitempty"` // hours
	CreatedAt   time.Time `bson:"created_at"`
}

// Enrollment links an account to a course and tracks completion progress.
type Enrollment struct {
	ID         string    `bson:"_id,omitempty"`
	AccountID  string    `bson:"account_id"`
	CourseID   string    `bson:"course_id"`
	Progress   int       `bson:"progress"`
	Completed  bool      `bson:"completed"`
	EnrolledAt time.Time `bson:"enrolled_at"`
	UpdatedAt  time.Time `bson:"updated_at"`
}
