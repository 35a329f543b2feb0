package model

import "time"

// Experience is a single position held at a company.
type Experience struct {
	ID         int64      `json:"id"`
	Department string     `json:"dept_exp"`
	Company    string     `json:"comp_exp"`
	JobTitles  []string   `json:"job_exp"`
	TechTags   []string   `json:"tech_exp"`
	StartDate  time.Time  `json:"start_exp"`
	EndDate    *time.Time `json:"end_exp,omitempty"`
	ImageKey   *string    `json:"img_exp"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// IsCurrent reports whether the position has no end date.
func (e *Experience) IsCurrent() bool {
	return e.EndDate == nil
}

// ExperienceInput carries the editable fields of an Experience.
type ExperienceInput struct {
	Department string
	Company    string
	JobTitles  []string
	TechTags   []string
	StartDate  time.Time
	EndDate    *time.Time
}
