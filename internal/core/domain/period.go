package domain

import "time"

// Period is a calendar period of the accounting calendar.
type Period struct {
	PeriodID  int64     `json:"periodID"`
	Name      string    `json:"name"`
	OrgID     int64     `json:"orgID"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

// Contains reports whether the date falls inside the period.
func (p *Period) Contains(date time.Time) bool {
	d := date.Truncate(24 * time.Hour)
	return !d.Before(p.StartDate) && !d.After(p.EndDate)
}

// PeriodControlAction is the state of a period for one document type.
type PeriodControlAction string

const (
	PeriodOpen   PeriodControlAction = "O"
	PeriodClosed PeriodControlAction = "C"
)
