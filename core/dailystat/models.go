package dailystat

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/taleemhub/backoffice/core"
)

// Review states of a DailyStat.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// FeeTier is one line of a fee breakdown attached to a daily stat
// (e.g. 3 trainees at the group rate + 2 at the corporate rate).
type FeeTier struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount" validate:"gte=0"`
	Count  int     `json:"count" validate:"gte=0"`
}

// FeeBreakdown is stored as a jsonb column.
type FeeBreakdown []FeeTier

func (fb FeeBreakdown) Value() (driver.Value, error) {
	if fb == nil {
		return nil, nil
	}
	return json.Marshal(fb)
}

func (fb *FeeBreakdown) Scan(src interface{}) error {
	if src == nil {
		*fb = nil
		return nil
	}
	data, ok := src.([]byte)
	if !ok {
		return errors.New("incompatible type for FeeBreakdown")
	}
	return json.Unmarshal(data, fb)
}

// DailyStat is a single employee's one-day submission of customer/sales
// counters, subject to reviewer approval. Only approved stats count towards
// targets and course revenue.
type DailyStat struct {
	ID         string      `json:"id"`
	EmployeeID string      `json:"employee_id"`
	Date       time.Time   `json:"date"`
	CourseID   null.String `json:"course_id,omitempty"`
	CourseFee  float64     `json:"course_fee"`

	ConfirmedCustomers  int     `json:"confirmed_customers"`
	RegisteredCustomers int     `json:"registered_customers"`
	TargetedCustomers   int     `json:"targeted_customers"`
	ServicesSold        int     `json:"services_sold"`
	SalesAmount         float64 `json:"sales_amount"`

	FeeBreakdown      FeeBreakdown `json:"fee_breakdown,omitempty"`
	CalculatedRevenue float64      `json:"calculated_revenue"`

	Notes       string      `json:"notes"`
	Status      Status      `json:"status"`
	ReviewedBy  null.String `json:"reviewed_by,omitempty"`
	ReviewedAt  null.Time   `json:"reviewed_at,omitempty"`
	ReviewNotes null.String `json:"review_notes,omitempty"`

	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// ComputeRevenue derives the authoritative revenue figure at submission time:
// the fee breakdown sum when one is supplied, confirmedCustomers * courseFee
// otherwise. Approval promotes this value; it is never recomputed on review.
func (ds *DailyStat) ComputeRevenue() {
	if !ds.CourseID.Valid {
		ds.CalculatedRevenue = 0
		return
	}
	if len(ds.FeeBreakdown) > 0 {
		var sum float64
		for _, tier := range ds.FeeBreakdown {
			sum += float64(tier.Count) * tier.Amount
		}
		ds.CalculatedRevenue = sum
		return
	}
	ds.CalculatedRevenue = float64(ds.ConfirmedCustomers) * ds.CourseFee
}

// HasRevenue reports whether approving this stat should produce an enrollment line.
func (ds *DailyStat) HasRevenue() bool {
	return ds.CourseID.Valid && ds.ConfirmedCustomers > 0 && ds.CalculatedRevenue > 0
}

func (ds *DailyStat) clearReview() {
	ds.ReviewedBy = null.String{}
	ds.ReviewedAt = null.Time{}
	ds.ReviewNotes = null.String{}
}

// NewDailyStat contains information needed to submit a new DailyStat.
type NewDailyStat struct {
	Date      time.Time    `json:"date" validate:"required"`
	CourseID  string       `json:"course_id"`
	CourseFee float64      `json:"course_fee" validate:"gte=0"`
	Breakdown FeeBreakdown `json:"fee_breakdown" validate:"omitempty,dive"`

	ConfirmedCustomers  int     `json:"confirmed_customers" validate:"gte=0"`
	RegisteredCustomers int     `json:"registered_customers" validate:"gte=0"`
	TargetedCustomers   int     `json:"targeted_customers" validate:"gte=0"`
	ServicesSold        int     `json:"services_sold" validate:"gte=0"`
	SalesAmount         float64 `json:"sales_amount" validate:"gte=0"`

	Notes string `json:"notes"`
}

func (ns *NewDailyStat) Validate() error {
	ns.CourseID = core.CleanString(ns.CourseID)
	ns.Notes = core.CleanString(ns.Notes)
	return core.Validate.Struct(ns)
}

// UpdateDailyStat defines the submitter's edit of a pending/rejected DailyStat.
type UpdateDailyStat struct {
	Date      time.Time    `json:"date"`
	CourseID  *string      `json:"course_id"`
	CourseFee *float64     `json:"course_fee" validate:"omitempty,gte=0"`
	Breakdown FeeBreakdown `json:"fee_breakdown" validate:"omitempty,dive"`

	ConfirmedCustomers  *int     `json:"confirmed_customers" validate:"omitempty,gte=0"`
	RegisteredCustomers *int     `json:"registered_customers" validate:"omitempty,gte=0"`
	TargetedCustomers   *int     `json:"targeted_customers" validate:"omitempty,gte=0"`
	ServicesSold        *int     `json:"services_sold" validate:"omitempty,gte=0"`
	SalesAmount         *float64 `json:"sales_amount" validate:"omitempty,gte=0"`

	Notes *string `json:"notes"`
}

func (us *UpdateDailyStat) Validate() error {
	return core.Validate.Struct(us)
}

// QueryFilter applies AND operation on available fields.
// DateFrom is inclusive and DateTo exclusive.
type QueryFilter struct {
	EmployeeID string    `query:"employee_id"`
	Status     Status    `query:"status"`
	CourseID   string    `query:"course_id"`
	Month      int       `query:"month"` // 1 - 12; requires Year
	Year       int       `query:"year"`
	DateFrom   time.Time `query:"date_from"`
	DateTo     time.Time `query:"date_to"`
}

// Window resolves the Month/Year fields into a [from, to) date range;
// the zero time pair is returned when no month/year scope is set.
func (qf *QueryFilter) Window() (time.Time, time.Time) {
	if qf.Year == 0 {
		return time.Time{}, time.Time{}
	}
	if qf.Month == 0 {
		from := time.Date(qf.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
		return from, from.AddDate(1, 0, 0)
	}
	from := time.Date(qf.Year, time.Month(qf.Month), 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0)
}

// ReviewSummary is the aggregate count of stats per review state.
type ReviewSummary struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}
