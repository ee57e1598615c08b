// internal/relation/edge.go
//
// Relationship vocabulary shared by the resolver, the validation pipeline and
// the game session.

package relation

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an accepted link between two words.
type Kind string

const (
	KindSynonym       Kind = "synonym"
	KindAntonym       Kind = "antonym"
	KindContextual    Kind = "contextual"
	KindFigurative    Kind = "figurative"
	KindAssociation   Kind = "association"
	KindSemantic      Kind = "semantic"
	KindConceptual    Kind = "conceptual"
	KindCreative      Kind = "creative"
	KindLetterOverlap Kind = "letter-overlap"
)

var kinds = []Kind{
	KindSynonym, KindAntonym, KindContextual, KindFigurative, KindAssociation,
	KindSemantic, KindConceptual, KindCreative, KindLetterOverlap,
}

// ParseKind maps free text (as reported by a generative model) to a Kind.
func ParseKind(s string) (Kind, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, k := range kinds {
		if s == string(k) || s == string(k)+"s" {
			return k, true
		}
	}
	return "", false
}

// StageKind names one step of the resolution cascade.
type StageKind string

const (
	StageDictionary    StageKind = "dictionary"
	StageEmbedding     StageKind = "embedding"
	StageConceptual    StageKind = "conceptual"
	StageGenerative    StageKind = "generative"
	StageLetterOverlap StageKind = "letter-overlap"
)

// MaxCreativity bounds Edge.Creativity.
const MaxCreativity = 20

// Edge is an accepted link between two consecutive chain words.
type Edge struct {
	From         string    `json:"from"`
	To           string    `json:"to"`
	Kind         Kind      `json:"kind"`
	Label        string    `json:"label"`
	Creativity   float64   `json:"creativity"`
	IsDirectJump bool      `json:"isDirectJump"`
	Stage        StageKind `json:"stage"`
}

// ErrNoRelationship is matched by every NoMatchError.
var ErrNoRelationship = errors.New("no relationship")

// NoMatchError reports that the cascade was exhausted. Failed lists stages
// that errored (as opposed to declining).
type NoMatchError struct {
	Failed []StageKind
}

func (e *NoMatchError) Error() string {
	if len(e.Failed) == 0 {
		return ErrNoRelationship.Error()
	}
	names := make([]string, len(e.Failed))
	for i, s := range e.Failed {
		names[i] = string(s)
	}
	return fmt.Sprintf("%s (failed stages: %s)", ErrNoRelationship, strings.Join(names, ", "))
}

func (e *NoMatchError) Is(target error) bool { return target == ErrNoRelationship }

// Degraded reports whether any stage failed rather than declined.
func (e *NoMatchError) Degraded() bool { return len(e.Failed) > 0 }

func clampCreativity(c float64) float64 {
	switch {
	case c < 0:
		return 0
	case c > MaxCreativity:
		return MaxCreativity
	}
	return c
}
