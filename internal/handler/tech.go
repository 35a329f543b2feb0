package handler

import (
	"errors"
	"net/http"

	"github.com/foliocms/folio/internal/model"
	"github.com/foliocms/folio/internal/service"
)

const techPath = "/tech"

// TechHandler serves the tech pages.
type TechHandler struct {
	*Handler
	svc *service.TechService
}

// NewTechHandler creates a new TechHandler.
func NewTechHandler(h *Handler, svc *service.TechService) *TechHandler {
	return &TechHandler{Handler: h, svc: svc}
}

// List handles GET /tech.
func (h *TechHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, h.renderer.TechList(h.page(w, r, "Tech"), items))
}

// CreateForm handles GET /tech/create.
func (h *TechHandler) CreateForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, h.renderer.TechForm(h.page(w, r, "New tech"), &model.Tech{}, ""))
}

// Create handles POST /tech/create and POST /tech.
func (h *TechHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, img, err := h.readTech(w, r, "img_tech")
	form := func(status int, msg string) {
		h.render(w, r, status, h.renderer.TechForm(h.page(w, r, "New tech"), &model.Tech{Name: in.Name}, msg))
	}
	if err != nil {
		h.handleServiceError(w, r, err, form)
		return
	}

	if _, err := h.svc.Create(r.Context(), in, img); err != nil {
		h.handleServiceError(w, r, err, form)
		return
	}
	redirect(w, r, techPath)
}

// EditForm handles GET /tech/edit/{id}.
func (h *TechHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		h.NotFound(w, r)
		return
	}
	t, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err, nil)
		return
	}
	h.render(w, r, http.StatusOK, h.renderer.TechForm(h.page(w, r, "Edit tech"), t, ""))
}

// Update handles POST /tech/edit/{id}.
func (h *TechHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		h.NotFound(w, r)
		return
	}

	in, img, err := h.readTech(w, r, "img_tech")
	form := func(status int, msg string) {
		draft := &model.Tech{ID: id, Name: in.Name}
		if stored, err := h.svc.Get(r.Context(), id); err == nil {
			draft.ImageKey = stored.ImageKey
		}
		h.render(w, r, status, h.renderer.TechForm(h.page(w, r, "Edit tech"), draft, msg))
	}
	if err != nil {
		h.handleServiceError(w, r, err, form)
		return
	}

	if _, err := h.svc.Update(r.Context(), id, in, img); err != nil {
		h.handleServiceError(w, r, err, form)
		return
	}
	redirect(w, r, techPath)
}

// techUpdateResponse is returned to the list page's in-place editor.
// ImageKey is null when no new image was sent.
type techUpdateResponse struct {
	Name     string  `json:"name_tech"`
	ImageKey *string `json:"img_tech"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// UpdateInPlace handles POST /tech/update/{id}.
func (h *TechHandler) UpdateInPlace(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "tech not found"})
		return
	}

	in, img, err := h.readTech(w, r, "edit_img_tech")
	if err == nil {
		var t *model.Tech
		t, err = h.svc.Update(r.Context(), id, in, img)
		if err == nil {
			resp := techUpdateResponse{Name: t.Name}
			if img != nil {
				resp.ImageKey = t.ImageKey
			}
			writeJSON(w, http.StatusOK, resp)
			return
		}
	}

	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: validationMessage(ve)})
	case errors.Is(err, errUploadTooLarge):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "The image is too large."})
	case errors.Is(err, service.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "tech not found"})
	default:
		h.logger.Error("internal_error", "endpoint", r.Method+" "+r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "update failed"})
	}
}

// Delete handles POST /tech/delete/{id}.
func (h *TechHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		h.NotFound(w, r)
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.handleServiceError(w, r, err, nil)
		return
	}
	redirect(w, r, techPath)
}

func (h *TechHandler) readTech(w http.ResponseWriter, r *http.Request, fileField string) (model.TechInput, *service.Upload, error) {
	if err := h.parseForm(w, r); err != nil {
		return model.TechInput{}, nil, err
	}
	in := model.TechInput{Name: r.FormValue("name_tech")}
	img, err := h.formFile(r, fileField)
	return in, img, err
}
