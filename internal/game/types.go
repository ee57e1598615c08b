// internal/game/types.go
//
// Core type definitions for a word-chain game session.
// Defines:
//   - Status: lifecycle state of a session (building/completed).
//   - View: read-only snapshot of a session for rendering and JSON.
//   - Validator: the validation pipeline as seen by a session.

package game

import (
	"context"
	"errors"
	"time"

	"github.com/robalobadob/linkdle/internal/relation"
	"github.com/robalobadob/linkdle/internal/scoring"
	"github.com/robalobadob/linkdle/internal/validation"
	"github.com/robalobadob/linkdle/internal/words"
)

// Status is the lifecycle state of a session.
//   - "building":  the chain is still being extended.
//   - "completed": the chain reached the end word and was scored (terminal
//     until Reset).
type Status string

const (
	StatusBuilding  Status = "building"
	StatusCompleted Status = "completed"
)

var (
	// ErrFinished is returned for any mutation of a completed session except Reset.
	ErrFinished = errors.New("game finished")
	// ErrNotAtEnd is returned by Complete while the chain tail is not the end word.
	ErrNotAtEnd = errors.New("chain has not reached the end word")
	// ErrAwaitingCompletion is returned by submissions once the end word is reached.
	ErrAwaitingCompletion = errors.New("chain already reached the end word")
	// ErrNotInChain is returned by SubmitFrom when the jump origin is not a chain word.
	ErrNotInChain = errors.New("word is not part of the chain")
	// ErrNotEndWord is returned by SubmitFrom when the target is not the end word.
	ErrNotEndWord = errors.New("direct jumps must target the end word")
)

// Validator checks a candidate word against the chain.
type Validator interface {
	Validate(ctx context.Context, in validation.Input) validation.Outcome
}

// View is a snapshot of a session.
//
// Edges[i] is the edge that appended Chain[i+1]. It links Chain[i] to
// Chain[i+1] except after a direct jump, where its From is the earlier chain
// word the jump started from (see Edge.IsDirectJump).
type View struct {
	ID               string             `json:"id"`
	Puzzle           words.Puzzle       `json:"puzzle"`
	Chain            []string           `json:"chain"`            // Words so far, starting at Puzzle.Start.
	Edges            []relation.Edge    `json:"edges"`            // Edges[i] appended Chain[i+1].
	Attempts         int                `json:"attempts"`         // Accepted appends + rejected end-word attempts.
	IncorrectGuesses []string           `json:"incorrectGuesses"` // Rejected end-word attempts.
	StartTime        time.Time          `json:"startTime"`
	EndTime          *time.Time         `json:"endTime,omitempty"`
	Score            *scoring.Breakdown `json:"score,omitempty"`
	Status           Status             `json:"status"`
}

// Tail returns the last chain word.
func (v View) Tail() string { return v.Chain[len(v.Chain)-1] }
