package postgres

import (
	"time"
)

type playerTableModel struct {
	ID         int64     `db:"id"`
	ExternalID string    `db:"external_id"`
	Name       string    `db:"name"`
	Team       string    `db:"team"`
	Position   string    `db:"position"`
	Stats      []byte    `db:"stats"`
	Season     int       `db:"season"`
	LastWeek   int       `db:"last_week"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

type playerInsertModel struct {
	ExternalID *string   `db:"external_id"`
	Name       string    `db:"name"`
	Team       string    `db:"team"`
	Position   string    `db:"position"`
	Stats      string    `db:"stats"`
	Season     int       `db:"season"`
	LastWeek   int       `db:"last_week"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

type playerIdentityTableModel struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	Team      string    `db:"team"`
	Position  string    `db:"position"`
	UpdatedAt time.Time `db:"updated_at"`
}
