package target

import (
	"time"

	"github.com/taleemhub/backoffice/core"
	"github.com/taleemhub/backoffice/core/dailystat"
)

// Type decides which daily-stat field a target progresses on.
type Type string

const (
	TypeConfirmedCustomers  Type = "confirmed_customers"
	TypeRegisteredCustomers Type = "registered_customers"
	TypeTargetedCustomers   Type = "targeted_customers"
	TypeServicesSold        Type = "services_sold"
	TypeSalesAmount         Type = "sales_amount"
	// TypeDailyCalls is a legacy alias for targeted_customers.
	TypeDailyCalls Type = "daily_calls"
)

var AllTypes = []Type{
	TypeConfirmedCustomers,
	TypeRegisteredCustomers,
	TypeTargetedCustomers,
	TypeServicesSold,
	TypeSalesAmount,
	TypeDailyCalls,
}

// statValues maps every Type to its daily-stat field selector. sales_amount
// reads the computed revenue, not the raw sales counter: revenue is the
// authoritative figure once a course fee is involved.
var statValues = map[Type]func(dailystat.DailyStat) float64{
	TypeConfirmedCustomers:  func(ds dailystat.DailyStat) float64 { return float64(ds.ConfirmedCustomers) },
	TypeRegisteredCustomers: func(ds dailystat.DailyStat) float64 { return float64(ds.RegisteredCustomers) },
	TypeTargetedCustomers:   func(ds dailystat.DailyStat) float64 { return float64(ds.TargetedCustomers) },
	TypeServicesSold:        func(ds dailystat.DailyStat) float64 { return float64(ds.ServicesSold) },
	TypeSalesAmount:         func(ds dailystat.DailyStat) float64 { return ds.CalculatedRevenue },
	TypeDailyCalls:          func(ds dailystat.DailyStat) float64 { return float64(ds.TargetedCustomers) },
}

func (t Type) Valid() bool {
	_, ok := statValues[t]
	return ok
}

// StatValue extracts this target type's contribution from a daily stat.
func (t Type) StatValue(ds dailystat.DailyStat) float64 {
	selector, ok := statValues[t]
	if !ok {
		return 0
	}
	return selector(ds)
}

type Period string

const (
	PeriodDaily     Period = "daily"
	PeriodWeekly    Period = "weekly"
	PeriodMonthly   Period = "monthly"
	PeriodQuarterly Period = "quarterly"
	PeriodYearly    Period = "yearly"
)

var AllPeriods = []Period{PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodQuarterly, PeriodYearly}

func (p Period) Valid() bool {
	for _, period := range AllPeriods {
		if p == period {
			return true
		}
	}
	return false
}

type Status string

const (
	StatusInProgress  Status = "in_progress"
	StatusAchieved    Status = "achieved"
	StatusNotAchieved Status = "not_achieved"
)

// EmployeeTarget is a quota assigned to an employee for a period.
// CurrentValue is always derived: BaseValue + the approved-stat sum inside the
// target's window. It is never hand-edited; BaseValue is the admin-seeded floor.
type EmployeeTarget struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employee_id"`
	Type       Type   `json:"target_type"`
	Period     Period `json:"period"`
	Month      int    `json:"month"` // 1 - 12; 0 for quarterly/yearly scopes
	Year       int    `json:"year"`

	TargetValue  float64 `json:"target_value"`
	BaseValue    float64 `json:"base_value"`
	CurrentValue float64 `json:"current_value"`
	Status       Status  `json:"status"`

	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// Window resolves the target's scope into a [from, to) date range:
// the scoped month for daily/weekly/monthly targets, the whole year for
// quarterly/yearly ones.
func (t EmployeeTarget) Window() (time.Time, time.Time) {
	switch t.Period {
	case PeriodQuarterly, PeriodYearly:
		from := time.Date(t.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
		return from, from.AddDate(1, 0, 0)
	default:
		from := time.Date(t.Year, time.Month(t.Month), 1, 0, 0, 0, 0, time.UTC)
		return from, from.AddDate(0, 1, 0)
	}
}

// Percentage is the achieved percentage, capped at 100.
func (t EmployeeTarget) Percentage() float64 {
	if t.TargetValue <= 0 {
		return 0
	}
	pct := t.CurrentValue / t.TargetValue * 100
	if pct > 100 {
		return 100
	}
	return pct
}

type AlertType string

const (
	AlertReached80  AlertType = "reached_80"
	AlertReached100 AlertType = "reached_100"
)

// Alert is a historical record of a threshold crossing, fired at most once per
// (target, type); crossing back below a threshold never removes it.
type Alert struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employee_id"`
	TargetID   string    `json:"target_id"`
	AlertType  AlertType `json:"alert_type"`
	Percentage float64   `json:"percentage"`
	Message    string    `json:"message"`
	IsRead     bool      `json:"is_read"`
	CreatedAt  time.Time `json:"created_at"` // UTC
}

// NewTarget contains information needed to create a new EmployeeTarget.
type NewTarget struct {
	EmployeeID  string  `json:"employee_id" validate:"required"`
	Type        Type    `json:"target_type" validate:"required,targettype"`
	Period      Period  `json:"period" validate:"required,targetperiod"`
	Month       int     `json:"month" validate:"gte=0,lte=12"`
	Year        int     `json:"year" validate:"required,gte=2000"`
	TargetValue float64 `json:"target_value" validate:"gt=0"`
	BaseValue   float64 `json:"base_value" validate:"gte=0"`
}

func (nt *NewTarget) Validate() error {
	return core.Validate.Struct(nt)
}

// UpdateTarget adjusts a target's quota or admin-seeded floor; either change
// forces recomputation of the derived current value.
type UpdateTarget struct {
	TargetValue *float64 `json:"target_value" validate:"omitempty,gt=0"`
	BaseValue   *float64 `json:"base_value" validate:"omitempty,gte=0"`
}

func (ut *UpdateTarget) Validate() error {
	return core.Validate.Struct(ut)
}

type QueryFilter struct {
	EmployeeID string `query:"employee_id"`
	Type       Type   `query:"target_type"`
	Period     Period `query:"period"`
	Month      int    `query:"month"`
	Year       int    `query:"year"`
	Status     Status `query:"status"`
}

type AlertQueryFilter struct {
	EmployeeID string    `query:"employee_id"`
	TargetID   string    `query:"target_id"`
	AlertType  AlertType `query:"alert_type"`
	IsRead     *bool     `query:"is_read"`
}
