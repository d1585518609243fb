package course

import (
	"time"

	"github.com/taleemhub/backoffice/core"
)

type Course struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Price       float64   `json:"price"`
	IsActive    *bool     `json:"is_active"`
	FeeTiers    []FeeTier `json:"fee_tiers,omitempty"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

func (c *Course) SetActive(active bool) {
	c.IsActive = &active
}

func (c *Course) Active() bool {
	return c.IsActive != nil && *c.IsActive
}

// FeeTier is a pricing tier of a Course (e.g. group rate, corporate rate).
type FeeTier struct {
	ID           string  `json:"id"`
	CourseID     string  `json:"course_id"`
	Label        string  `json:"label" validate:"required"`
	Amount       float64 `json:"amount" validate:"gte=0"`
	TraineeCount int     `json:"trainee_count" validate:"gte=0"`
}

// Stats aggregates the enrollment lines attributed to a Course.
type Stats struct {
	CourseID        string  `json:"course_id"`
	EnrollmentCount int     `json:"enrollment_count"`
	TotalTrainees   int     `json:"total_trainees"`
	TotalRevenue    float64 `json:"total_revenue"`
	TotalPaid       float64 `json:"total_paid"`
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Name        string    `json:"name" validate:"required"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Price       float64   `json:"price" validate:"gte=0"`
	FeeTiers    []FeeTier `json:"fee_tiers" validate:"omitempty,dive"`
}

func (nc *NewCourse) Validate() error {
	nc.Name = core.CleanString(nc.Name)
	nc.Description = core.CleanString(nc.Description)
	nc.Category = core.CleanString(nc.Category)
	return core.Validate.Struct(nc)
}

// UpdateCourse defines what information may be provided to modify an existing Course.
type UpdateCourse struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Price       *float64  `json:"price" validate:"omitempty,gte=0"`
	IsActive    *bool     `json:"is_active"`
	FeeTiers    []FeeTier `json:"fee_tiers" validate:"omitempty,dive"`
}

func (uc *UpdateCourse) Validate() error {
	uc.Name = core.CleanString(uc.Name)
	uc.Description = core.CleanString(uc.Description)
	uc.Category = core.CleanString(uc.Category)
	return core.Validate.Struct(uc)
}

type QueryFilter struct {
	Search   string `query:"search"`
	Category string `query:"category"`
	IsActive *bool  `query:"is_active"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Category = core.CleanString(qf.Category)
}
