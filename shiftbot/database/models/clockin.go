package models

import (
	"time"

	"github.com/uptrace/bun"
)

// ClockIn is one work session for one employee on one local calendar day.
// The session is open while ClockOutTime is nil. At most one session per
// (employee, date) may exist; the unique index is created in InitializeSchema.
type ClockIn struct {
	bun.BaseModel `bun:"table:clock_ins,alias:ci"`

	ID           int64      `bun:"id,pk,autoincrement" json:"id"`
	EmployeeID   int64      `bun:"employee_id,notnull" json:"employee_id"`
	ClockInTime  time.Time  `bun:"clock_in_time,notnull" json:"clock_in_time"`
	ClockOutTime *time.Time `bun:"clock_out_time" json:"clock_out_time,omitempty"`
	Date         string     `bun:"date,notnull" json:"date"`
	TotalHours   *float64   `bun:"total_hours" json:"total_hours,omitempty"`
}

// Open reports whether the session has no clock-out yet.
func (c *ClockIn) Open() bool {
	return c.ClockOutTime == nil
}
