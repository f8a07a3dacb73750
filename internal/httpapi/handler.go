// Package httpapi implements the JSON HTTP API of the tracker service.
//
// Routes:
//
//	POST /add_job/                           → create an application
//	PUT  /update_job_field/{id}/             → write one application field
//	POST /add_step/{id}/                     → append a timeline step
//	GET  /api/jobs/                          → dashboard (ordered jobs + aggregates)
//	POST /add_job_board/                     → register a job board
//	PUT  /update_last_visited/{id}/          → mark a job board as visited now
//	GET  /api/job-boards/                    → job boards, least recently visited first
//	POST /add_research_data/{id}/            → attach research to an application
//	PUT  /update_research_data/{id}/         → edit research
//	GET  /api/work-experiences/              → work history
//	POST /add_work_experience/               → add a work history entry
//	POST /add_work_achievement/{id}/         → add an achievement to an entry
//	PUT  /update_work_achievement/{id}/      → edit an achievement
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"jobtracker/internal/tracker"
)

const maxBodyBytes = 1 << 20

// Handler holds shared dependencies.
type Handler struct {
	svc *tracker.Service
	log *slog.Logger
}

// NewHandler returns a configured Handler.
func NewHandler(svc *tracker.Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, log: logger}
}

// RegisterRoutes mounts all tracker routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /add_job/{$}", h.addJob)
	mux.HandleFunc("PUT /update_job_field/{id}/{$}", h.updateJobField)
	mux.HandleFunc("POST /add_step/{id}/{$}", h.addStep)
	mux.HandleFunc("GET /api/jobs/{$}", h.dashboard)

	mux.HandleFunc("POST /add_job_board/{$}", h.addJobBoard)
	mux.HandleFunc("PUT /update_last_visited/{id}/{$}", h.visitJobBoard)
	mux.HandleFunc("GET /api/job-boards/{$}", h.listJobBoards)

	mux.HandleFunc("POST /add_research_data/{id}/{$}", h.addResearchData)
	mux.HandleFunc("PUT /update_research_data/{id}/{$}", h.updateResearchData)

	mux.HandleFunc("GET /api/work-experiences/{$}", h.listWorkExperiences)
	mux.HandleFunc("POST /add_work_experience/{$}", h.addWorkExperience)
	mux.HandleFunc("POST /add_work_achievement/{id}/{$}", h.addWorkAchievement)
	mux.HandleFunc("PUT /update_work_achievement/{id}/{$}", h.updateWorkAchievement)
}

// ─── Applications ────────────────────────────────────────────────────────────

func (h *Handler) addJob(w http.ResponseWriter, r *http.Request) {
	var body tracker.NewApplication
	if !h.decode(w, r, &body) {
		return
	}
	app, err := h.svc.AddJob(r.Context(), body)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	jsonOK(w, map[string]any{"success": true, "job": app})
}

func (h *Handler) updateJobField(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.fail(w, r, &tracker.MalformedError{Msg: "could not read request body"})
		return
	}
	field, value, err := tracker.ParseFieldUpdate(raw)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	app, err := h.svc.UpdateField(r.Context(), id, string(field), value)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	jsonOK(w, map[string]any{"success": true, "job": app})
}

func (h *Handler) addStep(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var body struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if !h.decode(w, r, &body) {
		return
	}
	step, err := h.svc.AddStep(r.Context(), id, body.Title, body.Description)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	jsonOK(w, map[string]any{"success": true, "step": step})
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Dashboard(r.Context(), h.svc.Now())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	jsonOK(w, d)
}

// ─── Job boards ──────────────────────────────────────────────────────────────

func (h *Handler) addJobBoard(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	}
	if !h.decode(w, r, &body) {
		return
	}
	board, err := h.svc.AddJobBoard(r.Context(), body.Name, body.URL)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	jsonOK(w, map[string]any{"success": true, "job_board": board})
}

func (h *Handler) visitJobBoard(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	board, err := h.svc.VisitJobBoard(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	jsonOK(w, map[string]any{"success": true, "last_visited": board.LastVisited})
}

func (h *Handler) listJobBoards(w http.ResponseWriter, r *http.Request) {
	boards, err := h.svc.ListJobBoards(r.Context(), h.svc.Now())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	jsonOK(w, map[string]any{"job_boards": boards})
}

// ─── Research data ───────────────────────────────────────────────────────────

type researchBody struct {
	Category *int   `json:"category"`
	Info     string `json:"info"`
}

func (h *Handler) addResearchData(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var body researchBody
	if !h.decode(w, r, &body) {
		return
	}
	rd, err := h.svc.AddResearchData(r.Context(), id, body.Category, body.Info)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	jsonOK(w, map[string]any{"success": true, "research_data": rd})
}

func (h *Handler) updateResearchData(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var body researchBody
	if !h.decode(w, r, &body) {
		return
	}
	rd, err := h.svc.UpdateResearchData(r.Context(), id, body.Category, body.Info)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	jsonOK(w, map[string]any{"success": true, "research_data": rd})
}

// ─── Work history ────────────────────────────────────────────────────────────

func (h *Handler) listWorkExperiences(w http.ResponseWriter, r *http.Request) {
	exps, err := h.svc.ListWorkExperiences(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	jsonOK(w, map[string]any{"work_experiences": exps})
}

func (h *Handler) addWorkExperience(w http.ResponseWriter, r *http.Request) {
	var body tracker.NewWorkExperience
	if !h.decode(w, r, &body) {
		return
	}
	exp, err := h.svc.AddWorkExperience(r.Context(), body)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	jsonOK(w, map[string]any{"success": true, "work_experience": exp})
}

type achievementBody struct {
	Description string `json:"description"`
}

func (h *Handler) addWorkAchievement(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var body achievementBody
	if !h.decode(w, r, &body) {
		return
	}
	ach, err := h.svc.AddWorkAchievement(r.Context(), id, body.Description)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	jsonOK(w, map[string]any{"success": true, "work_achievement": ach})
}

func (h *Handler) updateWorkAchievement(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var body achievementBody
	if !h.decode(w, r, &body) {
		return
	}
	ach, err := h.svc.UpdateWorkAchievement(r.Context(), id, body.Description)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	jsonOK(w, map[string]any{"success": true, "work_achievement": ach})
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// pathID parses the {id} wildcard. An unparseable id cannot name a record,
// so it is reported as not found.
func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		jsonError(w, fmt.Sprintf("no record with id %q", raw), http.StatusNotFound)
		return 0, false
	}
	return id, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		h.fail(w, r, &tracker.MalformedError{Msg: "invalid JSON body"})
		return false
	}
	return true
}

// fail maps a tracker error onto a status code and writes it.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch tracker.KindOf(err) {
	case tracker.KindNotFound:
		jsonError(w, err.Error(), http.StatusNotFound)
	case tracker.KindInvalidValue, tracker.KindMalformedRequest:
		jsonError(w, userMessage(err), http.StatusBadRequest)
	default:
		h.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		jsonError(w, "internal server error", http.StatusInternalServerError)
	}
}

func userMessage(err error) string {
	var ve *tracker.ValidationError
	if errors.As(err, &ve) {
		return ve.Msg
	}
	var me *tracker.MalformedError
	if errors.As(err, &me) {
		return me.Msg
	}
	return err.Error()
}

func jsonOK(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]any{"success": false, "error": msg})
}
