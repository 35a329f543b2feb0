package model

import "time"

// Tech is a technology badge shown on the portfolio.
type Tech struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name_tech"`
	ImageKey  *string   `json:"img_tech"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TechInput carries the editable fields of a Tech.
type TechInput struct {
	Name string
}
