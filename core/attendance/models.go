package attendance

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/taleemhub/backoffice/core"
)

type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusLate    Status = "late"
	StatusLeave   Status = "leave"
)

var AllStatuses = []Status{StatusPresent, StatusAbsent, StatusLate, StatusLeave}

func (s Status) Valid() bool {
	for _, status := range AllStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// Record is one employee's attendance for one day.
type Record struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employee_id"`
	Date       time.Time `json:"date"`
	CheckIn    null.Time `json:"check_in,omitempty"`
	CheckOut   null.Time `json:"check_out,omitempty"`
	Status     Status    `json:"status"`
	Notes      string    `json:"notes"`
	CreatedAt  time.Time `json:"created_at"` // UTC
	UpdatedAt  time.Time `json:"updated_at"` // UTC
}

// MonthlySummary counts an employee's records per status for one month.
type MonthlySummary struct {
	EmployeeID string `json:"employee_id"`
	Month      int    `json:"month"`
	Year       int    `json:"year"`
	Present    int    `json:"present"`
	Absent     int    `json:"absent"`
	Late       int    `json:"late"`
	Leave      int    `json:"leave"`
}

// NewRecord contains information needed to record attendance.
type NewRecord struct {
	EmployeeID string    `json:"employee_id" validate:"required"`
	Date       time.Time `json:"date" validate:"required"`
	CheckIn    null.Time `json:"check_in"`
	CheckOut   null.Time `json:"check_out"`
	Status     Status    `json:"status" validate:"required,attstatus"`
	Notes      string    `json:"notes"`
}

func (nr *NewRecord) Validate() error {
	nr.Notes = core.CleanString(nr.Notes)
	return core.Validate.Struct(nr)
}

// UpdateRecord defines what may be modified on an attendance record.
type UpdateRecord struct {
	CheckIn  null.Time `json:"check_in"`
	CheckOut null.Time `json:"check_out"`
	Status   Status    `json:"status" validate:"omitempty,attstatus"`
	Notes    *string   `json:"notes"`
}

func (ur *UpdateRecord) Validate() error {
	return core.Validate.Struct(ur)
}

type QueryFilter struct {
	EmployeeID string `query:"employee_id"`
	Status     Status `query:"status"`
	Month      int    `query:"month"` // 1 - 12; requires Year
	Year       int    `query:"year"`
}

// Window resolves the Month/Year fields into a [from, to) date range.
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
