// internal/httpserver/routes_game.go
//
// Word-chain session endpoints:
//   - POST /game/new      {puzzleId?}             → {gameId, game}
//   - GET  /game/{id}                             → game
//   - POST /game/submit   {gameId, word, from?}   → {outcome, game}
//   - POST /game/complete {gameId}                → {score, game, recorded}
//   - POST /game/reset    {gameId}                → {game}
//
// Sessions live in the store; the database only sees completed chains of
// signed-in players (daily results and user stats).

package httpserver

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	ozzo "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/linkdle/internal/daily"
	"github.com/robalobadob/linkdle/internal/game"
	"github.com/robalobadob/linkdle/internal/scoring"
	"github.com/robalobadob/linkdle/internal/store"
	"github.com/robalobadob/linkdle/internal/validation"
	"github.com/robalobadob/linkdle/internal/words"
)

// mountGame registers all /game routes.
func (s *Server) mountGame(r chi.Router) {
	r.Route("/game", func(r chi.Router) {
		r.Post("/new", s.handleNewGame)
		r.Get("/{id}", s.handleGetGame)
		r.Post("/submit", s.handleSubmit)
		r.Post("/complete", s.handleComplete)
		r.Post("/reset", s.handleReset)
	})
}

type newGameReq struct {
	PuzzleID *int `json:"puzzleId"` // catalog index; today's puzzle when absent
}

type newGameRes struct {
	GameID string    `json:"gameId"`
	Game   game.View `json:"game"`
}

// handleNewGame starts a session on the requested or today's puzzle.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}

	var puzzle words.Puzzle
	if req.PuzzleID == nil {
		_, puzzle = daily.Today(s.now(), s.salt, s.catalog)
	} else {
		p, ok := s.catalog.At(*req.PuzzleID)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown_puzzle")
			return
		}
		puzzle = p
	}

	g := game.New(puzzle, s.validator, game.WithClock(s.now))
	if err := s.store.Save(r.Context(), g); err != nil {
		log.Error().Err(err).Msg("save game")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}

	if me := userFrom(r.Context()); me != nil {
		if _, err := s.db.ExecContext(r.Context(),
			`UPDATE users SET games_played = games_played + 1 WHERE id=?`, me.ID); err != nil {
			log.Warn().Err(err).Str("user", me.ID).Msg("bump games played")
		}
	}

	writeJSON(w, http.StatusOK, newGameRes{GameID: g.ID(), Game: g.View()})
}

// handleGetGame returns the session view.
func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	g, ok := s.loadGame(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, g.View())
}

type gameReq struct {
	GameID string `json:"gameId"`
}

func (g gameReq) Validate() error {
	return ozzo.ValidateStruct(&g,
		ozzo.Field(&g.GameID, ozzo.Required),
	)
}

type submitReq struct {
	GameID string `json:"gameId"`
	Word   string `json:"word"`
	From   string `json:"from,omitempty"` // earlier chain word for a direct jump
}

// Validate only checks the envelope; the word itself is judged by the
// pipeline so an empty word yields a rejection outcome, not a 400.
func (q submitReq) Validate() error {
	return ozzo.ValidateStruct(&q,
		ozzo.Field(&q.GameID, ozzo.Required),
	)
}

type submitRes struct {
	Outcome validation.Outcome `json:"outcome"`
	Game    game.View          `json:"game"`
}

// handleSubmit validates a word against the chain and appends it on acceptance.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitReq
	if !s.decodeValid(w, r, &req) {
		return
	}
	g, ok := s.loadGame(w, r, req.GameID)
	if !ok {
		return
	}

	var (
		out validation.Outcome
		err error
	)
	if req.From != "" {
		out, err = g.SubmitFrom(r.Context(), req.From, req.Word)
	} else {
		out, err = g.Submit(r.Context(), req.Word)
	}
	if err != nil {
		writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, submitRes{Outcome: out, Game: g.View()})
}

type completeRes struct {
	Score    scoring.Breakdown `json:"score"`
	Game     game.View         `json:"game"`
	Recorded bool              `json:"recorded"` // a daily result row was written
}

// handleComplete scores a chain that reached the end word. For signed-in
// players it records today's result (once per day) and updates their stats.
func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	var req gameReq
	if !s.decodeValid(w, r, &req) {
		return
	}
	g, ok := s.loadGame(w, r, req.GameID)
	if !ok {
		return
	}

	score, err := g.Complete()
	if err != nil {
		writeGameError(w, err)
		return
	}
	view := g.View()

	recorded := false
	if me := userFrom(r.Context()); me != nil {
		recorded, err = s.recordCompletion(r.Context(), me.ID, view)
		if err != nil {
			log.Warn().Err(err).Str("user", me.ID).Str("gameId", view.ID).Msg("record completion")
		}
	}

	writeJSON(w, http.StatusOK, completeRes{Score: score, Game: view, Recorded: recorded})
}

// handleReset discards a session's progress.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var req gameReq
	if !s.decodeValid(w, r, &req) {
		return
	}
	g, ok := s.loadGame(w, r, req.GameID)
	if !ok {
		return
	}
	g.Reset()
	writeJSON(w, http.StatusOK, map[string]game.View{"game": g.View()})
}

// recordCompletion stores the daily result when view is today's puzzle and
// bumps the player's stats. It reports whether a daily row was written.
func (s *Server) recordCompletion(ctx context.Context, userID string, view game.View) (bool, error) {
	date, today := daily.Today(s.now(), s.salt, s.catalog)

	inserted := false
	if view.Puzzle == today {
		var err error
		inserted, err = s.daily.InsertResult(ctx, daily.Result{
			UserID:      userID,
			Date:        date,
			PuzzleIndex: view.Puzzle.Index,
			ChainLength: len(view.Chain),
			Score:       view.Score.FinalScore,
			ElapsedMs:   view.EndTime.Sub(view.StartTime).Milliseconds(),
		})
		if err != nil {
			return false, err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return inserted, err
	}
	defer func() { _ = tx.Rollback() }()
	if err := bumpStats(ctx, tx, userID, view.Score.FinalScore, inserted, date); err != nil {
		return inserted, err
	}
	return inserted, tx.Commit()
}

// bumpStats increments completed chains and best score; a new daily result
// extends the streak when the previous one was yesterday, else restarts it.
func bumpStats(ctx context.Context, tx *sql.Tx, userID string, score int, isDaily bool, date string) error {
	var completed, streak, best int
	row := tx.QueryRowContext(ctx, `SELECT completed, streak, best_score FROM users WHERE id=?`, userID)
	if err := row.Scan(&completed, &streak, &best); err != nil {
		return err
	}
	completed++
	if score > best {
		best = score
	}
	if isDaily {
		var last string
		err := tx.QueryRowContext(ctx,
			`SELECT date FROM daily_results WHERE user_id=? AND date<? ORDER BY date DESC LIMIT 1`,
			userID, date).Scan(&last)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			streak = 1
		case err != nil:
			return err
		case last == previousDate(date):
			streak++
		default:
			streak = 1
		}
	}
	_, err := tx.ExecContext(ctx, `UPDATE users SET completed=?, streak=?, best_score=? WHERE id=?`,
		completed, streak, best, userID)
	return err
}

// ------------------------------- helpers -----------------------------------

// loadGame fetches a session or writes a 404.
func (s *Server) loadGame(w http.ResponseWriter, r *http.Request, id string) (*game.Session, bool) {
	g, err := s.store.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found")
		return nil, false
	}
	if err != nil {
		log.Error().Err(err).Str("gameId", id).Msg("load game")
		writeError(w, http.StatusInternalServerError, "load_failed")
		return nil, false
	}
	return g, true
}

// decodeValid decodes and validates a request body, writing a 400 on failure.
func (s *Server) decodeValid(w http.ResponseWriter, r *http.Request, v ozzo.Validatable) bool {
	if err := decode(r, v); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return false
	}
	if err := v.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err)
		return false
	}
	return true
}

// writeGameError maps session state errors to HTTP statuses.
func writeGameError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrFinished):
		writeError(w, http.StatusConflict, "game_finished")
	case errors.Is(err, game.ErrAwaitingCompletion):
		writeError(w, http.StatusConflict, "awaiting_completion")
	case errors.Is(err, game.ErrNotAtEnd):
		writeError(w, http.StatusConflict, "not_at_end")
	case errors.Is(err, game.ErrNotInChain):
		writeError(w, http.StatusBadRequest, "not_in_chain")
	case errors.Is(err, game.ErrNotEndWord):
		writeError(w, http.StatusBadRequest, "not_end_word")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "request_cancelled")
	default:
		log.Error().Err(err).Msg("game operation")
		writeError(w, http.StatusInternalServerError, "server_error")
	}
}
