package domain

import (
	"time"

	customError "github.com/segyhp/invoice-engine/pkg/errors"
	"github.com/segyhp/invoice-engine/pkg/utils"
)

// RecurringSchedule is the cadence on which a recurring invoice spawns clones
type RecurringSchedule string

const (
	ScheduleDaily   RecurringSchedule = "daily"
	ScheduleWeekly  RecurringSchedule = "weekly"
	ScheduleMonthly RecurringSchedule = "monthly"
	ScheduleYearly  RecurringSchedule = "yearly"
)

// Schedules lists every valid schedule kind
var Schedules = []RecurringSchedule{ScheduleDaily, ScheduleWeekly, ScheduleMonthly, ScheduleYearly}

// ParseRecurringSchedule validates a raw schedule value
func ParseRecurringSchedule(raw string) (RecurringSchedule, error) {
	s := RecurringSchedule(raw)
	if !s.Valid() {
		return "", customError.WrapInvalidScheduleKind(raw)
	}
	return s, nil
}

func (s RecurringSchedule) Valid() bool {
	switch s {
	case ScheduleDaily, ScheduleWeekly, ScheduleMonthly, ScheduleYearly:
		return true
	}
	return false
}

// NextDueDate returns the occurrence following current. Month and year steps
// clamp to the last day of the target month.
func (s RecurringSchedule) NextDueDate(current time.Time) (time.Time, error) {
	switch s {
	case ScheduleDaily:
		return current.AddDate(0, 0, 1), nil
	case ScheduleWeekly:
		return current.AddDate(0, 0, 7), nil
	case ScheduleMonthly:
		return utils.AddMonthsClamped(current, 1), nil
	case ScheduleYearly:
		return utils.AddMonthsClamped(current, 12), nil
	default:
		return time.Time{}, customError.WrapInvalidScheduleKind(string(s))
	}
}
