package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jwebster45206/lotus-events/internal/logger"
	"github.com/jwebster45206/lotus-events/internal/session"
	"github.com/jwebster45206/lotus-events/internal/stats"
	"github.com/jwebster45206/lotus-events/pkg/dice"
	"github.com/jwebster45206/lotus-events/pkg/engine"
	"github.com/jwebster45206/lotus-events/pkg/player"
)

var (
	errNoCurrentEvent = errors.New("no event in progress, request one first")
	errInvalidOption  = errors.New("option index out of range")
)

type SessionHandler struct {
	engine   *engine.Engine
	store    *session.Store
	recorder stats.Recorder
	logger   *slog.Logger
}

func NewSessionHandler(eng *engine.Engine, store *session.Store, recorder stats.Recorder, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		engine:   eng,
		store:    store,
		recorder: recorder,
		logger:   logger,
	}
}

// CreateSessionRequest optionally overrides the starting player.
type CreateSessionRequest struct {
	Player *player.State `json:"player,omitempty"`
}

// ChoiceRequest picks an option of the current event by index.
type ChoiceRequest struct {
	Option int `json:"option"`
}

type EventResponse struct {
	engine.Issued
	Session session.View `json:"session"`
}

type ChoiceResponse struct {
	Resolution engine.Resolution `json:"resolution"`
	Session    session.View      `json:"session"`
}

// ServeHTTP handles HTTP requests for sessions
// Routes:
// POST /v1/sessions             - Start a session
// GET /v1/sessions/{id}         - Read a session
// DELETE /v1/sessions/{id}      - End a session
// POST /v1/sessions/{id}/event  - Draw the next event
// POST /v1/sessions/{id}/choice - Resolve an option of the current event
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/sessions"), "/")
	if path == "" {
		if r.Method != http.MethodPost {
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST")
			return
		}
		h.handleCreate(w, r)
		return
	}

	idStr, action, _ := strings.Cut(path, "/")
	id, err := uuid.Parse(idStr)
	if err != nil {
		h.logger.Warn("Invalid session ID", "id", idStr, "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid session ID format")
		return
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		h.handleRead(w, id)
	case action == "" && r.Method == http.MethodDelete:
		h.handleDelete(w, id)
	case action == "event" && r.Method == http.MethodPost:
		h.handleEvent(w, r, id)
	case action == "choice" && r.Method == http.MethodPost:
		h.handleChoice(w, r, id)
	case action == "" || action == "event" || action == "choice":
		h.logger.Warn("Method not allowed for session endpoint", "method", r.Method, "action", action)
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed")
	default:
		writeError(w, h.logger, http.StatusNotFound, "Unknown session action: "+action)
	}
}

func (h *SessionHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Warn("Invalid create session request", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	p := player.Default()
	if req.Player != nil {
		p = *req.Player
	}
	if err := validatePlayer(p); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	view, err := h.store.Create(p)
	if err != nil {
		h.logger.Error("Failed to create session", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to create session")
		return
	}

	logger.WithSession(h.logger, view.ID.String()).Info("Session created",
		"tier", p.Tier, "life_stage", p.LifeStage, "seed", view.Seed)
	writeJSON(w, h.logger, http.StatusCreated, view)
}

func (h *SessionHandler) handleRead(w http.ResponseWriter, id uuid.UUID) {
	view, err := h.store.Get(id)
	if err != nil {
		h.writeStoreError(w, id, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, view)
}

func (h *SessionHandler) handleDelete(w http.ResponseWriter, id uuid.UUID) {
	if err := h.store.Delete(id); err != nil {
		h.writeStoreError(w, id, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) handleEvent(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var issued engine.Issued
	var tier int
	view, err := h.store.Update(id, func(sess *session.Session, src dice.Source) error {
		issued = h.engine.NextEvent(sess.Player, sess.History, src)
		current := issued.Event
		sess.Current = &current
		tier = sess.Player.Tier
		return nil
	})
	if err != nil {
		h.writeStoreError(w, id, err)
		return
	}

	if err := h.recorder.RecordEvent(r.Context(), issued.Origin, issued.Event.ProceduralDomain, tier); err != nil {
		logger.WithError(h.logger, err).Warn("Failed to record event stats")
	}

	logger.WithSession(h.logger, id.String()).Info("Event issued",
		"origin", issued.Origin,
		"title", issued.Event.Title,
		"options", len(issued.Event.Options))
	writeJSON(w, h.logger, http.StatusOK, EventResponse{Issued: issued, Session: view})
}

func (h *SessionHandler) handleChoice(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req ChoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	var res engine.Resolution
	view, err := h.store.Update(id, func(sess *session.Session, src dice.Source) error {
		if sess.Current == nil {
			return errNoCurrentEvent
		}
		if req.Option < 0 || req.Option >= len(sess.Current.Options) {
			return fmt.Errorf("%w: %d", errInvalidOption, req.Option)
		}
		res = h.engine.Choose(&sess.Player, sess.Current.Options[req.Option], src)
		sess.Current = nil
		sess.Turns++
		return nil
	})
	switch {
	case errors.Is(err, errNoCurrentEvent):
		writeError(w, h.logger, http.StatusConflict, err.Error())
		return
	case errors.Is(err, errInvalidOption):
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.writeStoreError(w, id, err)
		return
	}

	if err := h.recorder.RecordChoice(r.Context(), res.Failed); err != nil {
		logger.WithError(h.logger, err).Warn("Failed to record choice stats")
	}

	logger.WithSession(h.logger, id.String()).Info("Choice resolved",
		"option", req.Option, "failed", res.Failed, "scs", view.Player.SocialCredit)
	writeJSON(w, h.logger, http.StatusOK, ChoiceResponse{Resolution: res, Session: view})
}

func (h *SessionHandler) writeStoreError(w http.ResponseWriter, id uuid.UUID, err error) {
	if errors.Is(err, session.ErrNotFound) {
		h.logger.Warn("Session not found", "session_id", id)
		writeError(w, h.logger, http.StatusNotFound, "Session not found")
		return
	}
	h.logger.Error("Session operation failed", "session_id", id, "error", err)
	writeError(w, h.logger, http.StatusInternalServerError, "Internal server error")
}

func validatePlayer(p player.State) error {
	if p.Tier < player.MinTier || p.Tier > player.MaxTier {
		return fmt.Errorf("tier must be between %d and %d", player.MinTier, player.MaxTier)
	}
	if p.LifeStage < player.MinLifeStage || p.LifeStage > player.MaxLifeStage {
		return fmt.Errorf("life_stage must be between %d and %d", player.MinLifeStage, player.MaxLifeStage)
	}
	return nil
}
