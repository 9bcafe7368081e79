package models

import (
	"time"

	"github.com/uptrace/bun"
)

type SaleCategory string

const (
	SaleCategoryTip SaleCategory = "tip"
	SaleCategoryPPV SaleCategory = "ppv"
)

// Valid reports whether the category is one of the known kinds.
func (c SaleCategory) Valid() bool {
	return c == SaleCategoryTip || c == SaleCategoryPPV
}

type Sale struct {
	bun.BaseModel `bun:"table:sales,alias:s"`

	ID          int64        `bun:"id,pk,autoincrement" json:"id"`
	EmployeeID  int64        `bun:"employee_id,notnull" json:"employee_id"`
	Category    SaleCategory `bun:"category,notnull" json:"category"`
	Amount      float64      `bun:"amount,notnull" json:"amount"`
	Date        string       `bun:"date,notnull" json:"date"`
	Description string       `bun:"description" json:"description,omitempty"`
	CreatedAt   time.Time    `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}
