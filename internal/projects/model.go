// Package projects holds the minimal project master data that estimates
// attach to.
package projects

import "time"

// Project is the owning aggregate of an estimate. Code is the short handle
// the PMO uses in documents and is unique.
type Project struct {
	ID         int64     `json:"id" db:"id"`
	Code       string    `json:"code" db:"code"`
	Name       string    `json:"name" db:"name"`
	ClientName string    `json:"clientName" db:"client_name"`
	IsActive   bool      `json:"isActive" db:"is_active"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}
