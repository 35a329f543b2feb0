package testutil

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/foliocms/folio/internal/model"
	"github.com/foliocms/folio/internal/repository"
)

// MemoryStore is an in-memory stand-in for repository.Repository.
type MemoryStore struct {
	mu     sync.Mutex
	nextID int64

	users       map[string]*model.User
	tech        map[int64]*model.Tech
	experiences map[int64]*model.Experience
	projects    map[int64]*model.Project

	// Err, when set, is returned by every write.
	Err error
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:       make(map[string]*model.User),
		tech:        make(map[int64]*model.Tech),
		experiences: make(map[int64]*model.Experience),
		projects:    make(map[int64]*model.Project),
	}
}

func (m *MemoryStore) id() int64 {
	m.nextID++
	return m.nextID
}

// UserCount returns the number of stored users.
func (m *MemoryStore) UserCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

func (m *MemoryStore) CreateUser(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.users[user.Email]; ok {
		return repository.ErrEmailExists
	}
	user.ID = m.id()
	user.CreatedAt = time.Now()
	cp := *user
	m.users[user.Email] = &cp
	return nil
}

func (m *MemoryStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MemoryStore) ListTech(context.Context) ([]*model.Tech, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return sortedValues(m.tech, func(t *model.Tech) int64 { return t.ID }), nil
}

func (m *MemoryStore) CreateTech(_ context.Context, in model.TechInput, imageKey string) (*model.Tech, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	now := time.Now()
	t := &model.Tech{ID: m.id(), Name: in.Name, ImageKey: strPtr(imageKey), CreatedAt: now, UpdatedAt: now}
	m.tech[t.ID] = t
	cp := *t
	return &cp, nil
}

func (m *MemoryStore) GetTechByID(_ context.Context, id int64) (*model.Tech, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tech[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *MemoryStore) UpdateTech(_ context.Context, id int64, in model.TechInput, imageKey *string) (*model.Tech, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, "", m.Err
	}
	t, ok := m.tech[id]
	if !ok {
		return nil, "", repository.ErrNotFound
	}
	prev := deref(t.ImageKey)
	t.Name = in.Name
	if imageKey != nil {
		t.ImageKey = strPtr(*imageKey)
	}
	t.UpdatedAt = time.Now()
	cp := *t
	return &cp, prev, nil
}

func (m *MemoryStore) DeleteTech(_ context.Context, id int64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	t, ok := m.tech[id]
	if !ok {
		return "", repository.ErrNotFound
	}
	delete(m.tech, id)
	return deref(t.ImageKey), nil
}

func (m *MemoryStore) ListExperiences(context.Context) ([]*model.Experience, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return sortedValues(m.experiences, func(e *model.Experience) int64 { return e.ID }), nil
}

func (m *MemoryStore) CreateExperience(_ context.Context, in model.ExperienceInput, imageKey string) (*model.Experience, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	now := time.Now()
	e := &model.Experience{ID: m.id(), ImageKey: strPtr(imageKey), CreatedAt: now, UpdatedAt: now}
	applyExperience(e, in)
	m.experiences[e.ID] = e
	cp := *e
	return &cp, nil
}

func (m *MemoryStore) GetExperienceByID(_ context.Context, id int64) (*model.Experience, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.experiences[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *MemoryStore) UpdateExperience(_ context.Context, id int64, in model.ExperienceInput, imageKey *string) (*model.Experience, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, "", m.Err
	}
	e, ok := m.experiences[id]
	if !ok {
		return nil, "", repository.ErrNotFound
	}
	prev := deref(e.ImageKey)
	applyExperience(e, in)
	if imageKey != nil {
		e.ImageKey = strPtr(*imageKey)
	}
	e.UpdatedAt = time.Now()
	cp := *e
	return &cp, prev, nil
}

func (m *MemoryStore) DeleteExperience(_ context.Context, id int64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	e, ok := m.experiences[id]
	if !ok {
		return "", repository.ErrNotFound
	}
	delete(m.experiences, id)
	return deref(e.ImageKey), nil
}

func (m *MemoryStore) ListProjects(context.Context) ([]*model.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return sortedValues(m.projects, func(p *model.Project) int64 { return p.ID }), nil
}

func (m *MemoryStore) CreateProject(_ context.Context, in model.ProjectInput, imageKey string) (*model.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	now := time.Now()
	p := &model.Project{ID: m.id(), ImageKey: strPtr(imageKey), CreatedAt: now, UpdatedAt: now}
	applyProject(p, in)
	m.projects[p.ID] = p
	cp := *p
	return &cp, nil
}

func (m *MemoryStore) GetProjectByID(_ context.Context, id int64) (*model.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MemoryStore) UpdateProject(_ context.Context, id int64, in model.ProjectInput, imageKey *string) (*model.Project, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, "", m.Err
	}
	p, ok := m.projects[id]
	if !ok {
		return nil, "", repository.ErrNotFound
	}
	prev := deref(p.ImageKey)
	applyProject(p, in)
	if imageKey != nil {
		p.ImageKey = strPtr(*imageKey)
	}
	p.UpdatedAt = time.Now()
	cp := *p
	return &cp, prev, nil
}

func (m *MemoryStore) DeleteProject(_ context.Context, id int64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	p, ok := m.projects[id]
	if !ok {
		return "", repository.ErrNotFound
	}
	delete(m.projects, id)
	return deref(p.ImageKey), nil
}

func applyExperience(e *model.Experience, in model.ExperienceInput) {
	e.Department = in.Department
	e.Company = in.Company
	e.JobTitles = slices.Clone(in.JobTitles)
	e.TechTags = slices.Clone(in.TechTags)
	e.StartDate = in.StartDate
	e.EndDate = in.EndDate
}

func applyProject(p *model.Project, in model.ProjectInput) {
	p.Name = in.Name
	p.Description = in.Description
	p.TechTags = slices.Clone(in.TechTags)
	p.RepositoryURL = in.RepositoryURL
}

func sortedValues[T any](m map[int64]*T, id func(*T) int64) []*T {
	out := make([]*T, 0, len(m))
	for _, v := range m {
		cp := *v
		out = append(out, &cp)
	}
	slices.SortFunc(out, func(a, b *T) int { return int(id(a) - id(b)) })
	return out
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ObjectStore is an in-memory object store that records every call.
type ObjectStore struct {
	mu      sync.Mutex
	seq     int
	Objects map[string][]byte
	Puts    []string
	Deletes []string

	PutErr    error
	DeleteErr error
}

// NewObjectStore creates an empty ObjectStore.
func NewObjectStore() *ObjectStore {
	return &ObjectStore{Objects: make(map[string][]byte)}
}

func (s *ObjectStore) Put(_ context.Context, data []byte, field, ext string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.PutErr != nil {
		return "", s.PutErr
	}
	s.seq++
	key := fmt.Sprintf("%s-%d%s", field, s.seq, ext)
	s.Objects[key] = data
	s.Puts = append(s.Puts, key)
	return key, nil
}

func (s *ObjectStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Deletes = append(s.Deletes, key)
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	delete(s.Objects, key)
	return nil
}

// Has reports whether key is stored.
func (s *ObjectStore) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.Objects[key]
	return ok
}

// DeleteCount returns how many times key was deleted.
func (s *ObjectStore) DeleteCount(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, k := range s.Deletes {
		if k == key {
			n++
		}
	}
	return n
}

// ErrInjected is a generic failure for fakes.
var ErrInjected = errors.New("injected failure")
