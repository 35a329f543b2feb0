package model

import "time"

// Project is a showcased piece of work.
type Project struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name_project"`
	Description   string    `json:"desc_project"`
	TechTags      []string  `json:"tech_project"`
	ImageKey      *string   `json:"img_project"`
	RepositoryURL string    `json:"github_project"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ProjectInput carries the editable fields of a Project.
type ProjectInput struct {
	Name          string
	Description   string
	TechTags      []string
	RepositoryURL string
}
