// Package server exposes the engine over a JSON HTTP API plus a
// per-session websocket event feed.
package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/duskhollow/engine/internal/event"
	"github.com/duskhollow/engine/internal/game"
	"github.com/duskhollow/engine/internal/platform/errors"
	"github.com/duskhollow/engine/internal/state"
)

// Server serves the engine API.
type Server struct {
	svc *game.Service
	hub *Hub
	log *zap.Logger

	upgrader websocket.Upgrader
}

// New creates a server over the game service. The hub should also be
// registered as the service's broadcaster so appends reach subscribers.
func New(svc *game.Service, hub *Hub, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		svc: svc,
		hub: hub,
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("POST /api/sessions", s.handleCreateSession)
	mux.HandleFunc("GET /api/sessions", s.handleListSessions)
	mux.HandleFunc("GET /api/sessions/{id}", s.handleGetSession)
	mux.HandleFunc("GET /api/sessions/{id}/events", s.handleListEvents)
	mux.HandleFunc("POST /api/sessions/{id}/events", s.handleAppendEvent)
	mux.HandleFunc("GET /api/sessions/{id}/state", s.handleGameState)
	mux.HandleFunc("GET /api/sessions/{id}/summary", s.handleSummary)

	mux.HandleFunc("POST /api/sessions/{id}/combat/attack", s.handleAttack)
	mux.HandleFunc("GET /api/sessions/{id}/combat/encounter", s.handleGetEncounter)
	mux.HandleFunc("POST /api/sessions/{id}/combat/encounter/start", s.handleStartEncounter)
	mux.HandleFunc("POST /api/sessions/{id}/combat/encounter/next-turn", s.handleNextTurn)
	mux.HandleFunc("POST /api/sessions/{id}/combat/encounter/end", s.handleEndEncounter)
	mux.HandleFunc("POST /api/sessions/{id}/combat/encounter/combatants", s.handleAddCombatants)
	mux.HandleFunc("DELETE /api/sessions/{id}/combat/encounter/combatants/{combatant_id}", s.handleRemoveCombatant)

	mux.HandleFunc("POST /api/sessions/{id}/skills/add-xp", s.handleAddSkillXP)
	mux.HandleFunc("POST /api/sessions/{id}/skills/check", s.handleProgressiveCheck)
	mux.HandleFunc("POST /api/sessions/{id}/skills/action", s.handlePerformSkillAction)

	mux.HandleFunc("POST /api/sessions/{id}/characters", s.handleCreateCharacter)
	mux.HandleFunc("GET /api/characters", s.handleListCharacters)
	mux.HandleFunc("GET /api/characters/{id}", s.handleGetCharacter)
	mux.HandleFunc("GET /api/characters/{id}/skills", s.handleSkillsOverview)

	mux.HandleFunc("GET /ws/sessions/{id}", s.handleSubscribe)

	return mux
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error("encode response", zap.Error(err))
	}
}

type errorBody struct {
	Code     string            `json:"code"`
	Message  string            `json:"message"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.CodeOf(err)
	body := errorBody{Code: string(code), Message: err.Error()}
	var domainErr *errors.Error
	if stderrors.As(err, &domainErr) {
		body.Metadata = domainErr.Metadata
	}
	s.writeJSON(w, code.HTTPStatus(), body)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody{
			Code:    string(errors.CodeEventPayloadInvalid),
			Message: "invalid request body: " + err.Error(),
		})
		return false
	}
	return true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Campaign string `json:"campaign"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	session, err := s.svc.CreateSession(r.Context(), req.Campaign)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, session)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.svc.ListSessions(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.svc.GetSession(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	afterSeq, _ := strconv.ParseInt(r.URL.Query().Get("after"), 10, 64)
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	events, err := s.svc.ListEvents(r.Context(), r.PathValue("id"), afterSeq, limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleAppendEvent(w http.ResponseWriter, r *http.Request) {
	var evt event.Event
	if !s.decode(w, r, &evt) {
		return
	}
	stored, err := s.svc.AppendEvent(r.Context(), r.PathValue("id"), evt)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, stored)
}

func (s *Server) handleGameState(w http.ResponseWriter, r *http.Request) {
	gs, err := s.svc.GameState(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, gs)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.svc.Summary(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleAttack(w http.ResponseWriter, r *http.Request) {
	var req game.AttackRequest
	if !s.decode(w, r, &req) {
		return
	}
	result, err := s.svc.Attack(r.Context(), r.PathValue("id"), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleStartEncounter(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Participants []string `json:"participants"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	encounter, err := s.svc.StartEncounter(r.Context(), r.PathValue("id"), req.Participants)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, encounter)
}

func (s *Server) handleGetEncounter(w http.ResponseWriter, r *http.Request) {
	encounter, err := s.svc.Encounter(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, encounter)
}

func (s *Server) handleAddCombatants(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Participants []string `json:"participants"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	encounter, err := s.svc.AddCombatants(r.Context(), r.PathValue("id"), req.Participants)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, encounter)
}

func (s *Server) handleRemoveCombatant(w http.ResponseWriter, r *http.Request) {
	encounter, err := s.svc.RemoveCombatant(r.PathValue("id"), r.PathValue("combatant_id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, encounter)
}

func (s *Server) handleNextTurn(w http.ResponseWriter, r *http.Request) {
	current, err := s.svc.NextTurn(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, current)
}

func (s *Server) handleEndEncounter(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.EndEncounter(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ended"})
}

func (s *Server) handleAddSkillXP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CharacterID string `json:"character_id"`
		SkillName   string `json:"skill_name"`
		Amount      int    `json:"xp_amount"`
		Reason      string `json:"reason"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	result, err := s.svc.AddSkillXP(r.Context(), r.PathValue("id"), req.CharacterID, req.SkillName, req.Amount, req.Reason)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleProgressiveCheck(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CharacterID string `json:"character_id"`
		SkillName   string `json:"skill_name"`
		Difficulty  int    `json:"difficulty"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	check, err := s.svc.ProgressiveCheck(r.Context(), r.PathValue("id"), req.CharacterID, req.SkillName, req.Difficulty)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, check)
}

func (s *Server) handlePerformSkillAction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CharacterID string `json:"character_id"`
		SkillName   string `json:"skill_name"`
		ActionName  string `json:"action_name"`
		Quantity    int    `json:"quantity"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	result, err := s.svc.PerformSkillAction(r.Context(), r.PathValue("id"), req.CharacterID, req.SkillName, req.ActionName, req.Quantity)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleCreateCharacter(w http.ResponseWriter, r *http.Request) {
	var character state.Character
	if !s.decode(w, r, &character) {
		return
	}
	created, err := s.svc.CreateCharacter(r.Context(), r.PathValue("id"), character)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListCharacters(w http.ResponseWriter, r *http.Request) {
	characters, err := s.svc.ListCharacters(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, characters)
}

func (s *Server) handleGetCharacter(w http.ResponseWriter, r *http.Request) {
	character, err := s.svc.GetCharacter(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, character)
}

func (s *Server) handleSkillsOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := s.svc.SkillsOverview(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, overview)
}

// handleSubscribe upgrades the connection and streams the session's
// appended events until the client goes away. Incoming messages are
// drained and discarded; the feed is one-way.
func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if _, err := s.svc.GetSession(r.Context(), sessionID); err != nil {
		s.writeError(w, err)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("websocket upgrade", zap.Error(err))
		return
	}
	sub := s.hub.Subscribe(sessionID, conn)
	s.log.Info("subscriber joined", zap.String("session_id", sessionID))

	go func() {
		defer func() {
			s.hub.Unsubscribe(sessionID, sub)
			_ = conn.Close()
			s.log.Info("subscriber left", zap.String("session_id", sessionID))
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
