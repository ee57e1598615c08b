// internal/game/engine.go
//
// State machine for a single word-chain session.
// Responsibilities:
//   - Start a chain at the puzzle's start word.
//   - Validate and append submissions through the Validator.
//   - Track attempts and incorrect end-word guesses.
//   - Score the finished chain and freeze the session: building → completed.
//
// Notes:
//   - All methods are serialized by the session mutex, so validation of one
//     submission completes before the next is considered.
//   - Chain and edges only grow; Reset is the only way back.
package game

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/robalobadob/linkdle/internal/relation"
	"github.com/robalobadob/linkdle/internal/scoring"
	"github.com/robalobadob/linkdle/internal/validation"
	"github.com/robalobadob/linkdle/internal/words"
)

// Session holds the state of one player's attempt at a puzzle.
type Session struct {
	mu        sync.Mutex
	id        string
	puzzle    words.Puzzle
	validator Validator
	now       func() time.Time

	chain     []string
	edges     []relation.Edge
	attempts  int
	incorrect []string
	startTime time.Time
	endTime   time.Time
	score     *scoring.Breakdown
	status    Status
}

// Option configures a Session.
type Option func(*Session)

// WithClock overrides time.Now (tests).
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithID sets the session ID instead of a random UUID.
func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

// New starts a session for puzzle.
func New(puzzle words.Puzzle, v Validator, opts ...Option) *Session {
	s := &Session{
		id:        uuid.NewString(),
		puzzle:    puzzle,
		validator: v,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.reset()
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Submit validates word against the chain tail and appends it on acceptance.
// Rejections are reported in the Outcome; the error is reserved for
// submissions the session state does not allow and for a ctx that ended
// before validation finished.
func (s *Session) Submit(ctx context.Context, word string) (validation.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOpen(); err != nil {
		return validation.Outcome{}, err
	}
	tail := s.tail()
	return s.apply(ctx, validation.Input{
		Previous:      tail,
		Candidate:     word,
		AttemptingEnd: words.Equal(word, s.puzzle.End),
		Tail:          tail,
	})
}

// SubmitFrom attempts a direct jump from an earlier chain word to the end
// word.
func (s *Session) SubmitFrom(ctx context.Context, from, word string) (validation.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOpen(); err != nil {
		return validation.Outcome{}, err
	}
	if !words.Equal(word, s.puzzle.End) {
		return validation.Outcome{}, ErrNotEndWord
	}
	idx := slices.IndexFunc(s.chain, func(w string) bool { return words.Equal(w, from) })
	if idx < 0 {
		return validation.Outcome{}, ErrNotInChain
	}
	return s.apply(ctx, validation.Input{
		Previous:      s.chain[idx],
		Candidate:     word,
		AttemptingEnd: true,
		Tail:          s.tail(),
	})
}

// apply runs validation and records the result. Nothing is recorded when ctx
// ended during validation. Caller holds s.mu.
func (s *Session) apply(ctx context.Context, in validation.Input) (validation.Outcome, error) {
	out := s.validator.Validate(ctx, in)
	if err := ctx.Err(); err != nil {
		return validation.Outcome{}, err
	}
	switch {
	case out.Accepted:
		s.chain = append(s.chain, out.Edge.To)
		s.edges = append(s.edges, *out.Edge)
		s.attempts++
	case in.AttemptingEnd:
		s.attempts++
		s.incorrect = append(s.incorrect, s.puzzle.End)
	}
	return out, nil
}

// Complete scores the chain and freezes the session.
func (s *Session) Complete() (scoring.Breakdown, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == StatusCompleted {
		return scoring.Breakdown{}, ErrFinished
	}
	if s.tail() != s.puzzle.End {
		return scoring.Breakdown{}, ErrNotAtEnd
	}

	creativity := make([]float64, len(s.edges))
	for i, e := range s.edges {
		creativity[i] = e.Creativity / relation.MaxCreativity
	}
	s.endTime = s.now()
	b := scoring.Calculate(scoring.Input{
		StartTime:        s.startTime,
		EndTime:          s.endTime,
		ChainLength:      len(s.chain),
		MinSteps:         s.puzzle.MinSteps,
		CreativityScores: creativity,
	})
	s.score = &b
	s.status = StatusCompleted
	return b, nil
}

// Reset discards all progress and restarts the clock.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

// View returns a snapshot safe to read without holding the session lock.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		ID:               s.id,
		Puzzle:           s.puzzle,
		Chain:            slices.Clone(s.chain),
		Edges:            slices.Clone(s.edges),
		Attempts:         s.attempts,
		IncorrectGuesses: slices.Clone(s.incorrect),
		StartTime:        s.startTime,
		Status:           s.status,
	}
	if v.Edges == nil {
		v.Edges = []relation.Edge{}
	}
	if v.IncorrectGuesses == nil {
		v.IncorrectGuesses = []string{}
	}
	if s.status == StatusCompleted {
		end := s.endTime
		score := *s.score
		v.EndTime, v.Score = &end, &score
	}
	return v
}

func (s *Session) reset() {
	s.chain = []string{s.puzzle.Start}
	s.edges = nil
	s.attempts = 0
	s.incorrect = nil
	s.startTime = s.now()
	s.endTime = time.Time{}
	s.score = nil
	s.status = StatusBuilding
}

func (s *Session) checkOpen() error {
	if s.status == StatusCompleted {
		return ErrFinished
	}
	if s.tail() == s.puzzle.End {
		return ErrAwaitingCompletion
	}
	return nil
}

func (s *Session) tail() string { return s.chain[len(s.chain)-1] }
