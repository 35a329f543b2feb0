// Package handler serves folio's pages and form posts.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/foliocms/folio/internal/auth"
	"github.com/foliocms/folio/internal/middleware"
	"github.com/foliocms/folio/internal/service"
	"github.com/foliocms/folio/internal/view"
)

// Handler holds what every page handler needs.
type Handler struct {
	renderer       *view.Renderer
	flashes        FlashStore
	maxUploadBytes int64
	logger         *slog.Logger
}

// New creates a new Handler instance.
func New(renderer *view.Renderer, flashes FlashStore, maxUploadBytes int64, logger *slog.Logger) *Handler {
	return &Handler{
		renderer:       renderer,
		flashes:        flashes,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusNotFound, view.ErrorPage(h.page(w, r, "Not found"), "The page you asked for does not exist."))
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusMethodNotAllowed, view.ErrorPage(h.page(w, r, "Method not allowed"), "That action is not available here."))
}

// page builds the chrome for title and consumes any pending flash.
func (h *Handler) page(w http.ResponseWriter, r *http.Request, title string) view.Page {
	p := view.Page{
		Title:    title,
		UserName: auth.NameFromContext(r.Context()),
	}
	if h.flashes != nil {
		p.Flash = h.flashes.Pop(w, r)
	}
	return p
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		h.logger.Error("render_failed",
			slog.String("request_id", middleware.GetRequestID(r.Context())),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}
}

func (h *Handler) flash(w http.ResponseWriter, r *http.Request, kind, message string) {
	if h.flashes == nil {
		return
	}
	h.flashes.Set(w, r, view.Flash{Kind: kind, Message: message})
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("internal_error",
		slog.String("request_id", middleware.GetRequestID(r.Context())),
		slog.String("endpoint", r.Method+" "+r.URL.Path),
		slog.String("error", err.Error()),
	)
	h.render(w, r, http.StatusInternalServerError, view.ErrorPage(view.Page{
		Title:    "Something went wrong",
		UserName: auth.NameFromContext(r.Context()),
	}, "The request could not be completed. Please try again."))
}

// handleServiceError maps service errors to responses. Validation failures
// re-render the submitted form through form.
func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error, form func(status int, msg string)) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve) && form != nil:
		form(http.StatusBadRequest, validationMessage(ve))
	case errors.Is(err, errUploadTooLarge) && form != nil:
		form(http.StatusBadRequest, "The image is too large.")
	case errors.Is(err, service.ErrNotFound):
		h.NotFound(w, r)
	default:
		h.serverError(w, r, err)
	}
}

func validationMessage(ve *service.ValidationError) string {
	switch {
	case errors.Is(ve.Err, service.ErrMissingFile):
		return "An image is required."
	case errors.Is(ve.Err, service.ErrMissingField):
		return ve.Field + " is required."
	case errors.Is(ve.Err, service.ErrConstraint):
		return "The submitted values were rejected."
	default:
		return ve.Field + " is invalid."
	}
}

// redirect sends the browser to path after a form post.
func redirect(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// parseID reads the {id} route parameter.
func parseID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
