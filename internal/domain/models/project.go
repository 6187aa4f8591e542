package models

import (
	"time"
)

type Project struct {
	ID           string    `json:"id" db:"id"`
	Title        string    `json:"title" db:"title"`
	FileLocation string    `json:"file_location" db:"file_location"`
	DisplayOrder *int      `json:"display_order" db:"display_order"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
