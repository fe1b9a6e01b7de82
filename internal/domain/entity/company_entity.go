package entity

import "time"

// Company owns its users by reference: membership is users.company_id.
type Company struct {
	ID              string
	Name            string
	DefaultCurrency string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
