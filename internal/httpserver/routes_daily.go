// internal/httpserver/routes_daily.go
//
// HTTP routes for the puzzle of the day.
//   - GET /daily/today       → today's date and puzzle (+ played flag when signed in)
//   - GET /daily/leaderboard → top 20 results for today (or ?date=YYYY-MM-DD)
//
// Play itself goes through /game/*; a completed chain on today's puzzle is
// recorded by /game/complete. Selection is deterministic per date + salt.

package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/linkdle/internal/daily"
	"github.com/robalobadob/linkdle/internal/words"
)

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	r.Route("/daily", func(r chi.Router) {
		r.Get("/today", s.handleToday)
		r.Get("/leaderboard", s.handleLeaderboard)
	})
}

type todayRes struct {
	Date   string       `json:"date"`
	Puzzle words.Puzzle `json:"puzzle"`
	Played bool         `json:"played"`
}

// handleToday returns today's puzzle. Played is set when a signed-in user
// already has a result for the date.
func (s *Server) handleToday(w http.ResponseWriter, r *http.Request) {
	date, puzzle := daily.Today(s.now(), s.salt, s.catalog)
	res := todayRes{Date: date, Puzzle: puzzle}
	if me := userFrom(r.Context()); me != nil {
		played, err := s.daily.AlreadyPlayed(r.Context(), me.ID, date)
		if err != nil {
			log.Warn().Err(err).Str("user", me.ID).Msg("check daily played")
		}
		res.Played = played
	}
	writeJSON(w, http.StatusOK, res)
}

type lbRes struct {
	Date string        `json:"date"`
	Top  []daily.LBRow `json:"top"`
}

// handleLeaderboard returns the leaderboard for the given date (default today).
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = daily.DateKey(s.now())
	} else if _, err := time.Parse(time.DateOnly, date); err != nil {
		writeError(w, http.StatusBadRequest, "bad_date")
		return
	}
	rows, err := s.daily.Leaderboard(r.Context(), date, 20)
	if err != nil {
		log.Error().Err(err).Str("date", date).Msg("leaderboard")
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, lbRes{Date: date, Top: rows})
}

// previousDate returns the date key one day before date, or "" if date is
// not a date key.
func previousDate(date string) string {
	t, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return ""
	}
	return daily.DateKey(t.AddDate(0, 0, -1))
}
