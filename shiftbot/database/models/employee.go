package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Employee struct {
	bun.BaseModel `bun:"table:employees,alias:e"`

	ID         int64     `bun:"id,pk,autoincrement" json:"id"`
	Name       string    `bun:"name,notnull" json:"name"`
	TelegramID string    `bun:"telegram_id,notnull,unique" json:"telegram_id"`
	Role       string    `bun:"role,notnull,default:'employee'" json:"role"`
	Active     bool      `bun:"active,notnull,default:true" json:"active"`
	CreatedAt  time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

// Admin marks an employee as having admin capability. Grants are created by
// seeding or by another admin; there is no update or delete path.
type Admin struct {
	bun.BaseModel `bun:"table:admins,alias:a"`

	ID          int64  `bun:"id,pk,autoincrement" json:"id"`
	EmployeeID  int64  `bun:"employee_id,notnull" json:"employee_id"`
	Permissions string `bun:"permissions,notnull,default:'read,write'" json:"permissions"`
}
