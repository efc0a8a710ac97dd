package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"moneta/internal/config"
	"moneta/internal/game"
	"moneta/internal/recorder"
)

// Server is the thin HTTP surface the UI collaborator talks to: it collects
// decisions, hands them to the session, and renders the returned state. No
// authentication; the display name is the session key.
type Server struct {
	cfg     config.APIConfig
	log     *slog.Logger
	session *game.Session
	rec     recorder.Recorder
	mux     *chi.Mux
}

func New(cfg config.APIConfig, logger *slog.Logger, session *game.Session, rec recorder.Recorder) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	s := &Server{
		cfg:     cfg,
		log:     logger,
		session: session,
		rec:     rec,
		mux:     chi.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	r := s.mux
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/rules", s.handleRules)
		r.Get("/banks", s.handleBanks)
		r.Get("/leaderboard", s.handleLeaderboard)

		r.Post("/players", s.handleJoin)
		r.Get("/players/{name}", s.handlePortfolio)
		r.Get("/players/{name}/history", s.handleHistory)
		r.Get("/players/{name}/banks", s.handlePlayerBanks)
		r.Post("/players/{name}/turn", s.handleTurn)
	})
}

func (s *Server) handleRules(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Rules())
}

func (s *Server) handleBanks(w http.ResponseWriter, r *http.Request) {
	// Capping at the horizon keeps players from previewing rates beyond the
	// months the session will actually play.
	months := s.session.Rules().Months
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil || month < 1 || month > months {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("month query parameter must be between 1 and %d", months))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"month": month, "banks": s.session.Offers(month)})
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"rows": s.session.Leaderboard()})
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := s.session.Join(strings.TrimSpace(in.Name))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	p, err := s.session.Portfolio(chi.URLParam(r, "name"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	log, err := s.session.History(chi.URLParam(r, "name"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"log": log})
}

func (s *Server) handlePlayerBanks(w http.ResponseWriter, r *http.Request) {
	offers, err := s.session.OffersForPlayer(chi.URLParam(r, "name"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"banks": offers})
}

func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var in game.Decisions
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, p, err := s.session.ResolveTurn(name, in, idempotencyKey(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if err := s.rec.RecordTurn(name, result.Record); err != nil {
		s.log.Error("record turn failed", "player", name, "err", err)
	}
	if result.Outcome != game.OutcomeOK {
		if err := s.rec.RecordStandings(s.session.Leaderboard()); err != nil {
			s.log.Error("record standings failed", "err", err)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": result, "portfolio": p})
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrUnknownPlayer), errors.Is(err, game.ErrUnknownBank):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, game.ErrInvalidDecision),
		errors.Is(err, game.ErrInvalidPlayerName),
		errors.Is(err, game.ErrAssetLocked),
		errors.Is(err, game.ErrLoansNotActive):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, game.ErrGameOver), errors.Is(err, game.ErrDuplicateIdempotency):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": strings.TrimSpace(message)})
}

func idempotencyKey(r *http.Request) string {
	key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if key != "" {
		return key
	}
	return uuid.NewString()
}
