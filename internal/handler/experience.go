package handler

import (
	"net/http"

	"github.com/foliocms/folio/internal/model"
	"github.com/foliocms/folio/internal/service"
)

const experiencesPath = "/experiences"

// ExperienceHandler serves the experience pages.
type ExperienceHandler struct {
	*Handler
	svc *service.ExperienceService
}

// NewExperienceHandler creates a new ExperienceHandler.
func NewExperienceHandler(h *Handler, svc *service.ExperienceService) *ExperienceHandler {
	return &ExperienceHandler{Handler: h, svc: svc}
}

// List handles GET /experiences.
func (h *ExperienceHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, h.renderer.ExperienceList(h.page(w, r, "Experiences"), items))
}

// CreateForm handles GET /experiences/create.
func (h *ExperienceHandler) CreateForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, h.renderer.ExperienceForm(h.page(w, r, "New experience"), &model.Experience{}, ""))
}

// Create handles POST /experiences/create.
func (h *ExperienceHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, img, err := h.readExperience(w, r)
	form := func(status int, msg string) {
		h.render(w, r, status, h.renderer.ExperienceForm(h.page(w, r, "New experience"), experienceDraft(0, in), msg))
	}
	if err != nil {
		h.handleServiceError(w, r, err, form)
		return
	}

	if _, err := h.svc.Create(r.Context(), in, img); err != nil {
		h.handleServiceError(w, r, err, form)
		return
	}
	redirect(w, r, experiencesPath)
}

// EditForm handles GET /experiences/edit/{id}.
func (h *ExperienceHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		h.NotFound(w, r)
		return
	}
	e, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err, nil)
		return
	}
	h.render(w, r, http.StatusOK, h.renderer.ExperienceForm(h.page(w, r, "Edit experience"), e, ""))
}

// Update handles POST /experiences/edit/{id}.
func (h *ExperienceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		h.NotFound(w, r)
		return
	}

	in, img, err := h.readExperience(w, r)
	form := func(status int, msg string) {
		draft := experienceDraft(id, in)
		if stored, err := h.svc.Get(r.Context(), id); err == nil {
			draft.ImageKey = stored.ImageKey
		}
		h.render(w, r, status, h.renderer.ExperienceForm(h.page(w, r, "Edit experience"), draft, msg))
	}
	if err != nil {
		h.handleServiceError(w, r, err, form)
		return
	}

	if _, err := h.svc.Update(r.Context(), id, in, img, r.FormValue("old_img")); err != nil {
		h.handleServiceError(w, r, err, form)
		return
	}
	redirect(w, r, experiencesPath)
}

// Delete handles POST /experiences/delete/{id}.
func (h *ExperienceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		h.NotFound(w, r)
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.handleServiceError(w, r, err, nil)
		return
	}
	redirect(w, r, experiencesPath)
}

func (h *ExperienceHandler) readExperience(w http.ResponseWriter, r *http.Request) (model.ExperienceInput, *service.Upload, error) {
	if err := h.parseForm(w, r); err != nil {
		return model.ExperienceInput{}, nil, err
	}

	in := model.ExperienceInput{
		Department: r.FormValue("dept_exp"),
		Company:    r.FormValue("comp_exp"),
		JobTitles:  service.SplitList(r.FormValue("job_exp")),
		TechTags:   service.SplitList(r.FormValue("tech_exp")),
	}

	start, err := service.ParseDate("start_date", r.FormValue("start_exp"))
	if err != nil {
		return in, nil, err
	}
	in.StartDate = start

	end, err := service.ParseOptionalDate("end_date", r.FormValue("end_exp"))
	if err != nil {
		return in, nil, err
	}
	in.EndDate = end

	img, err := h.formFile(r, "img_exp")
	return in, img, err
}

// experienceDraft refills the form with what the user submitted.
func experienceDraft(id int64, in model.ExperienceInput) *model.Experience {
	return &model.Experience{
		ID:         id,
		Department: in.Department,
		Company:    in.Company,
		JobTitles:  in.JobTitles,
		TechTags:   in.TechTags,
		StartDate:  in.StartDate,
		EndDate:    in.EndDate,
	}
}
