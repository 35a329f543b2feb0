package handler

import (
	"net/http"

	"github.com/foliocms/folio/internal/model"
	"github.com/foliocms/folio/internal/service"
)

const projectsPath = "/projects"

// ProjectHandler serves the project pages.
type ProjectHandler struct {
	*Handler
	svc *service.ProjectService
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(h *Handler, svc *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{Handler: h, svc: svc}
}

// List handles GET /projects.
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, h.renderer.ProjectList(h.page(w, r, "Projects"), items))
}

// CreateForm handles GET /projects/create.
func (h *ProjectHandler) CreateForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, h.renderer.ProjectForm(h.page(w, r, "New project"), &model.Project{}, ""))
}

// Create handles POST /projects/create.
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, img, err := h.readProject(w, r)
	form := func(status int, msg string) {
		h.render(w, r, status, h.renderer.ProjectForm(h.page(w, r, "New project"), projectDraft(0, in), msg))
	}
	if err != nil {
		h.handleServiceError(w, r, err, form)
		return
	}

	if _, err := h.svc.Create(r.Context(), in, img); err != nil {
		h.handleServiceError(w, r, err, form)
		return
	}
	redirect(w, r, projectsPath)
}

// EditForm handles GET /projects/edit/{id}.
func (h *ProjectHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		h.NotFound(w, r)
		return
	}
	p, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err, nil)
		return
	}
	h.render(w, r, http.StatusOK, h.renderer.ProjectForm(h.page(w, r, "Edit project"), p, ""))
}

// Update handles POST /projects/edit/{id}.
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		h.NotFound(w, r)
		return
	}

	in, img, err := h.readProject(w, r)
	form := func(status int, msg string) {
		draft := projectDraft(id, in)
		if stored, err := h.svc.Get(r.Context(), id); err == nil {
			draft.ImageKey = stored.ImageKey
		}
		h.render(w, r, status, h.renderer.ProjectForm(h.page(w, r, "Edit project"), draft, msg))
	}
	if err != nil {
		h.handleServiceError(w, r, err, form)
		return
	}

	if _, err := h.svc.Update(r.Context(), id, in, img, r.FormValue("old_imgProject")); err != nil {
		h.handleServiceError(w, r, err, form)
		return
	}
	redirect(w, r, projectsPath)
}

// Delete handles POST /projects/delete/{id}.
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		h.NotFound(w, r)
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.handleServiceError(w, r, err, nil)
		return
	}
	redirect(w, r, projectsPath)
}

func (h *ProjectHandler) readProject(w http.ResponseWriter, r *http.Request) (model.ProjectInput, *service.Upload, error) {
	if err := h.parseForm(w, r); err != nil {
		return model.ProjectInput{}, nil, err
	}
	in := model.ProjectInput{
		Name:          r.FormValue("name_project"),
		Description:   r.FormValue("desc_project"),
		TechTags:      service.SplitList(r.FormValue("tech_project")),
		RepositoryURL: r.FormValue("github_project"),
	}
	img, err := h.formFile(r, "img_project")
	return in, img, err
}

func projectDraft(id int64, in model.ProjectInput) *model.Project {
	return &model.Project{
		ID:            id,
		Name:          in.Name,
		Description:   in.Description,
		TechTags:      in.TechTags,
		RepositoryURL: in.RepositoryURL,
	}
}
