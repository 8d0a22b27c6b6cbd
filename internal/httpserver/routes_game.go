// internal/httpserver/routes_game.go
//
// Game session routes, mounted under /game:
//   - POST   /game        → create a session (intro state), returns id + token
//   - GET    /game        → current view
//   - POST   /game/start  → start or restart
//   - POST   /game/select → card click {column, id}
//   - POST   /game/next   → advance from the level-complete screen
//   - DELETE /game        → tear the session down
//
// Select/next answer {accepted, view}; a rejected event is not an error, the
// engine simply ignored it.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/qmcDevelopment/auditoria-iso/internal/daily"
	"github.com/qmcDevelopment/auditoria-iso/internal/game"
	"github.com/qmcDevelopment/auditoria-iso/internal/results"
	"github.com/qmcDevelopment/auditoria-iso/internal/store"
)

const (
	modeRandom = "random"
	modeDaily  = "daily"
)

type newGameReq struct {
	Mode string `json:"mode"` // "random" (default) | "daily"
}

type newGameRes struct {
	GameID string    `json:"gameId"`
	Token  string    `json:"token"`
	View   game.View `json:"view"`
}

type selectReq struct {
	Column game.Column `json:"column"`
	ID     string      `json:"id"`
}

type actionRes struct {
	Accepted bool      `json:"accepted"`
	View     game.View `json:"view"`
}

// handleNewGame creates a session in the intro state and hands out its token.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.Mode == "" {
		req.Mode = modeRandom
	}

	id := uuid.NewString()
	now := s.opts.Now()
	opts := []game.Option{
		game.WithConfig(s.opts.Rules),
		game.WithScheduler(s.opts.Scheduler),
		game.WithObserver(s.observer(id, req.Mode)),
	}
	switch req.Mode {
	case modeRandom:
	case modeDaily:
		opts = append(opts, game.WithRand(daily.Rand(now, s.opts.DailySalt)))
	default:
		http.Error(w, `{"error":"invalid_mode"}`, http.StatusBadRequest)
		return
	}

	g, err := game.New(s.opts.Catalog, opts...)
	if err != nil {
		log.Error().Err(err).Msg("new game")
		http.Error(w, `{"error":"new_game_failed"}`, http.StatusInternalServerError)
		return
	}
	sess := &store.Session{ID: id, Mode: req.Mode, Game: g, CreatedAt: now}
	if err := s.opts.Sessions.Save(r.Context(), sess); err != nil {
		g.Close()
		log.Error().Err(err).Msg("save session")
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}

	tok, exp, err := signToken(s.opts.SessionSecret, id, now, s.opts.SessionTTL)
	if err != nil {
		_ = s.opts.Sessions.Delete(r.Context(), id)
		http.Error(w, `{"error":"sign_failed"}`, http.StatusInternalServerError)
		return
	}
	s.setSessionCookie(w, tok, exp)
	log.Info().Str("gameId", id).Str("mode", req.Mode).Msg("session created")

	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(newGameRes{GameID: id, Token: tok, View: g.Snapshot()})
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	_ = json.NewEncoder(w).Encode(sessionFrom(r).Game.Snapshot())
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	g := sessionFrom(r).Game
	g.StartGame()
	_ = json.NewEncoder(w).Encode(actionRes{Accepted: true, View: g.Snapshot()})
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	g := sessionFrom(r).Game
	ok := g.Click(req.Column, req.ID)
	_ = json.NewEncoder(w).Encode(actionRes{Accepted: ok, View: g.Snapshot()})
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	g := sessionFrom(r).Game
	ok := g.NextLevel()
	_ = json.NewEncoder(w).Encode(actionRes{Accepted: ok, View: g.Snapshot()})
}

// handleQuit closes the session and clears the cookie.
func (s *Server) handleQuit(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	if err := s.opts.Sessions.Delete(r.Context(), sess.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
		log.Warn().Err(err).Str("gameId", sess.ID).Msg("delete session")
	}
	s.clearSessionCookie(w)
	log.Info().Str("gameId", sess.ID).Msg("session closed")
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

// observer logs engine events and records the run once the game is complete.
// It runs on whichever goroutine produced the event, timer callbacks included.
func (s *Server) observer(gameID, mode string) func(game.Event) {
	return func(e game.Event) {
		log.Debug().
			Str("gameId", gameID).
			Str("event", string(e.Kind)).
			Int("run", e.Run).
			Int("level", e.Level).
			Str("pair", e.ID).
			Int("score", e.Score).
			Int("mistakes", e.Mistakes).
			Msg("game event")

		if e.Kind != game.EventGameComplete || s.opts.Results == nil {
			return
		}
		now := s.opts.Now()
		res := results.Result{
			GameID:     gameID,
			Run:        e.Run,
			Date:       daily.DateKey(now),
			Mode:       mode,
			Score:      e.Score,
			Mistakes:   e.Mistakes,
			Levels:     s.opts.Catalog.Len(),
			FinishedAt: now,
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.opts.Results.Record(ctx, res); err != nil {
			log.Warn().Err(err).Str("gameId", gameID).Int("run", e.Run).Msg("record result")
			return
		}
		log.Info().Str("gameId", gameID).Int("run", e.Run).Int("score", e.Score).Int("mistakes", e.Mistakes).Msg("game complete")
	}
}

// ---------------------------- session middleware ---------------------------

type ctxSessionKey struct{}

// withSession resolves the caller's token to a live session.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := bearerOrCookie(r)
		if tok == "" {
			http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
			return
		}
		id, err := parseToken(s.opts.SessionSecret, tok, s.opts.Now)
		if err != nil {
			http.Error(w, `{"error":"Invalid token"}`, http.StatusUnauthorized)
			return
		}
		sess, err := s.opts.Sessions.Get(r.Context(), id)
		if err != nil {
			http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
			return
		}
		ctx := context.WithValue(r.Context(), ctxSessionKey{}, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFrom(r *http.Request) *store.Session {
	sess, _ := r.Context().Value(ctxSessionKey{}).(*store.Session)
	return sess
}
