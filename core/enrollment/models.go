package enrollment

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/taleemhub/backoffice/core"
)

// Enrollment is a course enrollment/revenue line. Lines created by a daily-stat
// approval carry the producing stat's id in DailyStatID; manual lines do not.
type Enrollment struct {
	ID             string      `json:"id"`
	CourseID       string      `json:"course_id"`
	Amount         float64     `json:"amount"`
	TraineeCount   int         `json:"trainee_count"`
	PaidAmount     float64     `json:"paid_amount"`
	EnrollmentDate time.Time   `json:"enrollment_date"`
	DailyStatID    null.String `json:"daily_stat_id,omitempty"`
	CreatedAt      time.Time   `json:"created_at"` // UTC
	UpdatedAt      time.Time   `json:"updated_at"` // UTC
}

// NewEnrollment contains information needed to create a manual enrollment line.
type NewEnrollment struct {
	CourseID       string    `json:"course_id" validate:"required"`
	Amount         float64   `json:"amount" validate:"gte=0"`
	TraineeCount   int       `json:"trainee_count" validate:"gt=0"`
	PaidAmount     float64   `json:"paid_amount" validate:"gte=0"`
	EnrollmentDate time.Time `json:"enrollment_date"`
}

func (ne *NewEnrollment) Validate() error {
	return core.Validate.Struct(ne)
}

type QueryFilter struct {
	CourseID string    `query:"course_id"`
	DateFrom time.Time `query:"date_from"`
	DateTo   time.Time `query:"date_to"`
}
