package models

import "time"

// Settings stores per-user publishing preferences. DefaultNetworks is the
// set of networks an adaptation request targets when none are given.
type Settings struct {
	ID              int64     `db:"id" json:"id"`
	UserID          int64     `db:"user_id" json:"user_id"`
	DefaultNetworks []string  `db:"default_networks" json:"default_networks"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}
