// internal/navapi/navapi.go
package navapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dalemusser/routenav/httputil"
	"github.com/dalemusser/routenav/metrics"
	"github.com/dalemusser/routenav/middleware"
	"github.com/dalemusser/routenav/pantry/health"
	"github.com/dalemusser/routenav/pantry/httpnav"
	"github.com/dalemusser/routenav/pantry/routenav"
	"github.com/dalemusser/routenav/pantry/version"
	"github.com/dalemusser/routenav/router"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves the navigation endpoints on top of a view registry.
type Handler struct {
	reg          *router.Registry
	logger       *zap.Logger
	fallbackView string
}

// New returns a Handler. fallbackView is the target of GET /go.
func New(reg *router.Registry, logger *zap.Logger, fallbackView string) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{reg: reg, logger: logger, fallbackView: fallbackView}
}

// DescriptorResponse is a descriptor plus the URL the registry resolves it to.
type DescriptorResponse struct {
	routenav.Descriptor
	URL string `json:"url"`
}

// DescriptorRequest is the body of POST /api/descriptor. The current query
// is supplied by the caller instead of being read from the request URL.
type DescriptorRequest struct {
	View           string          `json:"view"`
	Params         routenav.Params `json:"params"`
	KeepStateQuery *bool           `json:"keep_state_query"`
	CurrentQuery   routenav.Query  `json:"current_query"`
	Query          routenav.Query  `json:"query"`
}

// Routes mounts the navigation and service endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/go", h.navigateFallback)
	r.Get("/go/{view}", h.navigate)
	r.Get("/api/views", h.views)
	r.Get("/api/descriptor/{view}", h.describe)
	r.With(middleware.RequireJSON).Post("/api/descriptor", h.describeBody)
	health.Mount(r, map[string]health.Check{"views": h.checkViews}, h.logger)
	version.Mount(r)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
}

// MountViews registers each view and serves a landing page for it that
// echoes the view name, its route params and the query it was reached with.
func (h *Handler) MountViews(r chi.Router, views []router.View) error {
	for _, v := range views {
		if err := h.reg.Handle(r, v.Name, v.Pattern, h.landing(v.Name)); err != nil {
			return err
		}
	}
	return nil
}

// fromRequest builds the descriptor for view out of the request's state
// query and its keep / set.* / param.* control parameters.
func fromRequest(r *http.Request, view string) routenav.Descriptor {
	return routenav.Build(
		httpnav.StateQuery(r),
		view,
		httpnav.RouteParams(r),
		httpnav.KeepState(r),
		httpnav.QueryUpdate(r, httpnav.SetPrefix),
	)
}

func (h *Handler) navigate(w http.ResponseWriter, r *http.Request) {
	d := fromRequest(r, chi.URLParam(r, "view"))
	if err := h.reg.Push(w, r, d); err != nil {
		writeNavError(w, err)
	}
}

func (h *Handler) navigateFallback(w http.ResponseWriter, r *http.Request) {
	if h.fallbackView == "" {
		httputil.JSONError(w, http.StatusNotFound, "no_fallback_view", "No fallback view is configured")
		return
	}
	d := fromRequest(r, h.fallbackView)
	if err := h.reg.Push(w, r, d); err != nil {
		writeNavError(w, err)
	}
}

func (h *Handler) describe(w http.ResponseWriter, r *http.Request) {
	h.respond(w, fromRequest(r, chi.URLParam(r, "view")))
}

func (h *Handler) describeBody(w http.ResponseWriter, r *http.Request) {
	var req DescriptorRequest
	if err := httputil.BindJSON(r, &req); err != nil {
		httputil.JSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	keep := req.KeepStateQuery == nil || *req.KeepStateQuery
	d := routenav.Build(routenav.StaticQuery(req.CurrentQuery), req.View, req.Params, keep, req.Query)
	h.respond(w, d)
}

func (h *Handler) respond(w http.ResponseWriter, d routenav.Descriptor) {
	target, err := h.reg.Resolve(d)
	if err != nil {
		h.logger.Debug("descriptor not resolvable", zap.String("view", d.ViewName), zap.Error(err))
		writeNavError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, DescriptorResponse{Descriptor: d, URL: target})
}

// checkViews fails until at least one view is registered, and while the
// fallback view is missing from the registry.
func (h *Handler) checkViews(context.Context) error {
	if len(h.reg.Views()) == 0 {
		return errors.New("no views registered")
	}
	if h.fallbackView != "" && !h.reg.Has(h.fallbackView) {
		return fmt.Errorf("fallback view %q not registered", h.fallbackView)
	}
	return nil
}

func (h *Handler) views(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.reg.Views())
}

func (h *Handler) landing(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params routenav.Params
		if rctx := chi.RouteContext(r.Context()); rctx != nil && len(rctx.URLParams.Keys) > 0 {
			params = make(routenav.Params, len(rctx.URLParams.Keys))
			for i, k := range rctx.URLParams.Keys {
				params[k] = rctx.URLParams.Values[i]
			}
		}
		httputil.WriteJSON(w, http.StatusOK, routenav.Descriptor{
			ViewName: name,
			Params:   params,
			Query:    httpnav.RequestQuery(r).CurrentQuery(),
		})
	}
}

func writeNavError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, router.ErrUnknownView):
		httputil.JSONError(w, http.StatusNotFound, "unknown_view", err.Error())
	case errors.Is(err, router.ErrMissingParam):
		httputil.JSONError(w, http.StatusBadRequest, "missing_param", err.Error())
	case errors.Is(err, router.ErrInvalidParam):
		httputil.JSONError(w, http.StatusBadRequest, "invalid_param", err.Error())
	case errors.Is(err, router.ErrUnsafeTarget):
		httputil.JSONError(w, http.StatusBadRequest, "unsafe_target", err.Error())
	case errors.Is(err, routenav.ErrEmptyViewName):
		httputil.JSONError(w, http.StatusBadRequest, "invalid_view", err.Error())
	default:
		httputil.JSONError(w, http.StatusInternalServerError, "internal_error", "navigation failed")
	}
}
