package sqlstore

import (
	"time"

	"github.com/uptrace/bun"
)

type searchRecord struct {
	bun.BaseModel `bun:"table:searches,alias:s"`

	ID         string    `bun:"id,pk"`
	OwnerID    string    `bun:"owner_id,notnull"`
	Term       string    `bun:"term,notnull"`
	City       string    `bun:"city,notnull"`
	Status     string    `bun:"status,notnull"`
	LeadsCount int       `bun:"leads_count,notnull"`
	CreatedAt  time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt  time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type leadRecord struct {
	bun.BaseModel `bun:"table:leads,alias:l"`

	ID           string    `bun:"id,pk"`
	SearchID     string    `bun:"search_id,notnull"`
	OwnerID      string    `bun:"owner_id,notnull"`
	Name         string    `bun:"name,notnull"`
	Phone        string    `bun:"phone,notnull"`
	Address      string    `bun:"address,notnull"`
	Neighborhood string    `bun:"neighborhood,notnull"`
	City         string    `bun:"city,notnull"`
	Rating       *float64  `bun:"rating"`
	Website      *string   `bun:"website"`
	Email1       *string   `bun:"email_1"`
	Email2       *string   `bun:"email_2"`
	PhotoURL     *string   `bun:"photo_url"`
	Photos       []string  `bun:"photos,type:jsonb,notnull"`
	Status       string    `bun:"status,notnull"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// leadKeyRecord is the narrow projection read by the duplicate sweep.
type leadKeyRecord struct {
	bun.BaseModel `bun:"table:leads,alias:l"`

	ID        string    `bun:"id,pk"`
	SearchID  string    `bun:"search_id"`
	Phone     string    `bun:"phone"`
	CreatedAt time.Time `bun:"created_at"`
}
