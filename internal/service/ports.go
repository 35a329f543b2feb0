package service

import (
	"context"

	"github.com/foliocms/folio/internal/model"
)

// UserStore persists accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// TechStore persists tech records.
type TechStore interface {
	ListTech(ctx context.Context) ([]*model.Tech, error)
	CreateTech(ctx context.Context, in model.TechInput, imageKey string) (*model.Tech, error)
	GetTechByID(ctx context.Context, id int64) (*model.Tech, error)
	UpdateTech(ctx context.Context, id int64, in model.TechInput, imageKey *string) (*model.Tech, string, error)
	DeleteTech(ctx context.Context, id int64) (string, error)
}

// ExperienceStore persists experience records.
type ExperienceStore interface {
	ListExperiences(ctx context.Context) ([]*model.Experience, error)
	CreateExperience(ctx context.Context, in model.ExperienceInput, imageKey string) (*model.Experience, error)
	GetExperienceByID(ctx context.Context, id int64) (*model.Experience, error)
	UpdateExperience(ctx context.Context, id int64, in model.ExperienceInput, imageKey *string) (*model.Experience, string, error)
	DeleteExperience(ctx context.Context, id int64) (string, error)
}

// ProjectStore persists project records.
type ProjectStore interface {
	ListProjects(ctx context.Context) ([]*model.Project, error)
	CreateProject(ctx context.Context, in model.ProjectInput, imageKey string) (*model.Project, error)
	GetProjectByID(ctx context.Context, id int64) (*model.Project, error)
	UpdateProject(ctx context.Context, id int64, in model.ProjectInput, imageKey *string) (*model.Project, string, error)
	DeleteProject(ctx context.Context, id int64) (string, error)
}

// ObjectStore holds uploaded images.
type ObjectStore interface {
	Put(ctx context.Context, data []byte, field, ext string) (string, error)
	Delete(ctx context.Context, key string) error
}

// Upload is the single file attached to a mutating request.
type Upload struct {
	Field    string
	Filename string
	Data     []byte
}
