package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/FrankDatema/MindHop/internal/chore"
	"github.com/FrankDatema/MindHop/internal/game"
	"github.com/FrankDatema/MindHop/internal/geom"
	"github.com/FrankDatema/MindHop/internal/httpmw"
	"github.com/FrankDatema/MindHop/internal/logx"
	"github.com/FrankDatema/MindHop/internal/nfc"
	"github.com/FrankDatema/MindHop/internal/scene"
	"github.com/FrankDatema/MindHop/internal/telemetry"
)

type Options struct {
	Runtime *game.Runtime
	// Tags, when set, receives tags posted to /api/tags as if read by hardware.
	Tags   *nfc.Queue
	Logger *logx.Logger
	// Timeout bounds each round trip to the engine loop.
	Timeout time.Duration
}

type api struct {
	rt      *game.Runtime
	tags    *nfc.Queue
	log     *logx.Logger
	timeout time.Duration
	routes  *RouteRegistry
}

func NewHandler(opts Options) (http.Handler, error) {
	if opts.Runtime == nil {
		return nil, errors.New("runtime is required")
	}
	if opts.Logger == nil {
		opts.Logger = logx.Discard()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	a := &api{
		rt:      opts.Runtime,
		tags:    opts.Tags,
		log:     opts.Logger,
		timeout: opts.Timeout,
		routes:  &RouteRegistry{},
	}

	r := chi.NewRouter()
	r.Use(httpmw.WithRequestID, httpmw.WithAccessLog(opts.Logger), httpmw.WithRecover(opts.Logger))

	rr := a.routes
	Handle(r, rr, "GET /healthz", "Liveness probe", "", a.health)
	Handle(r, rr, "GET /api/routes", "List documented routes", "", a.listRoutes)
	Handle(r, rr, "GET /api/chores", "Chore status snapshot", "", a.chores)
	Handle(r, rr, "POST /api/scan", "Handle a scanned tag", `{"tag":"BNaF2g=="}`, a.scan)
	Handle(r, rr, "POST /api/tags", "Queue a tag for the reader poll", `{"tag":"BNaF2g=="}`, a.queueTag)
	Handle(r, rr, "GET /api/instances", "Live chore clouds", "", a.instances)
	Handle(r, rr, "POST /api/instances/{id}/dismiss", "Pop a chore cloud", "", a.dismiss)
	Handle(r, rr, "GET /api/settings/{chore}", "Read a chore reset interval", "", a.getSettings)
	Handle(r, rr, "PUT /api/settings/{chore}", "Save a chore reset interval", `{"max_days":3}`, a.putSettings)
	Handle(r, rr, "GET /api/stats", "Telemetry counters, optional ?since=24h", "", a.stats)
	Handle(r, rr, "GET /", "Status page", "", a.page)

	return r, nil
}

// do runs fn on the engine loop under the request context.
func (a *api) do(r *http.Request, fn func(*game.Engine) error) error {
	ctx, cancel := context.WithTimeout(r.Context(), a.timeout)
	defer cancel()
	return a.rt.Do(ctx, fn)
}

func (a *api) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"service": "mindhop",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *api) listRoutes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.routes.List())
}

func (a *api) chores(w http.ResponseWriter, r *http.Request) {
	var out []game.ChoreStatus
	err := a.do(r, func(e *game.Engine) error {
		out = e.Status()
		return nil
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type tagRequest struct {
	Tag string `json:"tag"`
}

func (a *api) scan(w http.ResponseWriter, r *http.Request) {
	var req tagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Tag) == "" {
		writeError(w, http.StatusBadRequest, "tag is required")
		return
	}
	var def chore.Definition
	err := a.do(r, func(e *game.Engine) error {
		var err error
		def, err = e.ScanTag(req.Tag)
		return err
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, def)
}

func (a *api) queueTag(w http.ResponseWriter, r *http.Request) {
	if a.tags == nil {
		writeError(w, http.StatusNotImplemented, "no tag queue configured")
		return
	}
	var req tagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Tag) == "" {
		writeError(w, http.StatusBadRequest, "tag is required")
		return
	}
	a.tags.Push(req.Tag)
	writeJSON(w, http.StatusAccepted, map[string]any{"queued": a.tags.Len()})
}

type instanceView struct {
	ID       string    `json:"id"`
	Chore    string    `json:"chore"`
	Phase    string    `json:"phase"`
	Position geom.Vec3 `json:"position"`
	Scale    geom.Vec3 `json:"scale"`
	Target   geom.Vec3 `json:"target"`
}

func (a *api) instances(w http.ResponseWriter, r *http.Request) {
	var out []instanceView
	err := a.do(r, func(e *game.Engine) error {
		for _, in := range e.Scene().Instances() {
			out = append(out, instanceView{
				ID:       in.ID.String(),
				Chore:    in.ChoreName(),
				Phase:    string(in.Phase),
				Position: in.Position,
				Scale:    in.Scale,
				Target:   in.Target,
			})
		}
		return nil
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if out == nil {
		out = []instanceView{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *api) dismiss(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid instance id")
		return
	}
	if err := a.do(r, func(e *game.Engine) error { return e.Dismiss(id) }); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type settingsView struct {
	Chore   string `json:"chore"`
	MaxDays int    `json:"max_days"`
}

func (a *api) getSettings(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "chore")
	var out settingsView
	err := a.do(r, func(e *game.Engine) error {
		def, ok := e.Registry().FindByName(name)
		if !ok {
			return chore.ErrNotFound
		}
		out = settingsView{Chore: def.Name, MaxDays: e.ResetDays(def)}
		return nil
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *api) putSettings(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "chore")
	var req struct {
		MaxDays *int `json:"max_days"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.MaxDays == nil {
		writeError(w, http.StatusBadRequest, "max_days is required")
		return
	}
	if *req.MaxDays < 0 {
		writeError(w, http.StatusBadRequest, "max_days must be >= 0")
		return
	}
	err := a.do(r, func(e *game.Engine) error { return e.SetResetDays(name, *req.MaxDays) })
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settingsView{Chore: name, MaxDays: *req.MaxDays})
}

func (a *api) stats(w http.ResponseWriter, r *http.Request) {
	var since time.Time
	if raw := strings.TrimSpace(r.URL.Query().Get("since")); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d < 0 {
			writeError(w, http.StatusBadRequest, "since must be a positive duration")
			return
		}
		since = time.Now().Add(-d)
	}

	var events []telemetry.Event
	err := a.do(r, func(e *game.Engine) error {
		var err error
		events, err = e.Events().GetEvents(since, nil)
		return err
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	stats, err := telemetry.CalculateStats(events, since)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (a *api) page(w http.ResponseWriter, r *http.Request) {
	var (
		status  []game.ChoreStatus
		current string
	)
	err := a.do(r, func(e *game.Engine) error {
		status = e.Status()
		current = e.CurrentChore()
		return nil
	})
	if err != nil {
		http.Error(w, "engine unavailable", http.StatusServiceUnavailable)
		return
	}
	templ.Handler(StatusPage(status, current), templ.WithErrorHandler(func(r *http.Request, err error) http.Handler {
		a.log.Error("page_render_failed", logx.Fields{"request_id": httpmw.RequestIDFromContext(r.Context()), "error": err})
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "render failed", http.StatusInternalServerError)
		})
	})).ServeHTTP(w, r)
}

func (a *api) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, chore.ErrNotFound), errors.Is(err, scene.ErrInstanceNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, game.ErrStopped), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "engine unavailable")
	default:
		a.log.Error("request_failed", logx.Fields{
			"request_id": httpmw.RequestIDFromContext(r.Context()),
			"path":       r.URL.Path,
			"error":      err,
		})
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
