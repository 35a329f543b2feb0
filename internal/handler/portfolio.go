package handler

import (
	"net/http"

	"github.com/foliocms/folio/internal/service"
	"github.com/foliocms/folio/internal/view"
)

// PortfolioHandler serves the public page showing every resource.
type PortfolioHandler struct {
	*Handler
	tech        *service.TechService
	experiences *service.ExperienceService
	projects    *service.ProjectService
}

// NewPortfolioHandler creates a new PortfolioHandler.
func NewPortfolioHandler(h *Handler, tech *service.TechService, experiences *service.ExperienceService, projects *service.ProjectService) *PortfolioHandler {
	return &PortfolioHandler{Handler: h, tech: tech, experiences: experiences, projects: projects}
}

// Show handles GET /portfolio.
func (h *PortfolioHandler) Show(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var data view.Portfolio
	var err error
	if data.Tech, err = h.tech.List(ctx); err != nil {
		h.serverError(w, r, err)
		return
	}
	if data.Experiences, err = h.experiences.List(ctx); err != nil {
		h.serverError(w, r, err)
		return
	}
	if data.Projects, err = h.projects.List(ctx); err != nil {
		h.serverError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, h.renderer.PortfolioPage(h.page(w, r, "Portfolio"), data))
}
