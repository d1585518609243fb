package target

import (
	"github.com/go-playground/validator/v10"

	"github.com/taleemhub/backoffice/core"
)

var (
	targetTypeTag  = "targettype"
	targetTypeText = "invalid target type"

	targetPeriodTag  = "targetperiod"
	targetPeriodText = "invalid target period"

	monthRequiredTag  = "month_required"
	monthRequiredText = "month is required for this period"
)

func init() {
	_ = core.Validate.RegisterValidation(targetTypeTag, func(fl validator.FieldLevel) bool {
		return Type(fl.Field().String()).Valid()
	})
	core.RegisterCustomTranslation(targetTypeTag, targetTypeText)

	_ = core.Validate.RegisterValidation(targetPeriodTag, func(fl validator.FieldLevel) bool {
		return Period(fl.Field().String()).Valid()
	})
	core.RegisterCustomTranslation(targetPeriodTag, targetPeriodText)

	core.Validate.RegisterStructValidation(newTargetStructValidation, NewTarget{})
	core.RegisterCustomTranslation(monthRequiredTag, monthRequiredText)
}

// newTargetStructValidation requires a month scope for sub-yearly periods.
func newTargetStructValidation(sl validator.StructLevel) {
	nt, ok := sl.Current().Interface().(NewTarget)
	if !ok {
		return
	}
	switch nt.Period {
	case PeriodQuarterly, PeriodYearly:
	default:
		if nt.Month == 0 {
			sl.ReportError(nt.Month, "month", "Month", monthRequiredTag, "")
		}
	}
}
