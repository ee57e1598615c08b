// internal/validation/pipeline.go
//
// Pipeline decides whether a candidate word may follow the previous word.
// Responsibilities:
//   - Normalize input and reject non-words before any provider call.
//   - Run priority-ordered rules, returning the first rejection:
//       1. dictionary  candidate is a headword
//       2. distinct    candidate differs from the previous word
//       3. connected   the resolver finds a relationship (letter overlap
//                      included)
//   - Memoize full outcomes by (previous, candidate, attemptingEnd), and
//     share one evaluation between concurrent identical requests. The shared
//     evaluation is detached from the cancellation of whichever caller
//     started it.
//
// Rejections caused by provider failures are returned but not memoized.

package validation

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/robalobadob/linkdle/internal/cache"
	"github.com/robalobadob/linkdle/internal/metrics"
	"github.com/robalobadob/linkdle/internal/relation"
	"github.com/robalobadob/linkdle/internal/words"
)

// WordChecker reports dictionary existence. A non-nil error means the check
// could not be performed.
type WordChecker interface {
	Exists(ctx context.Context, word string) (bool, error)
}

// Linker finds a relationship between two words.
type Linker interface {
	Resolve(ctx context.Context, from, to string) (*relation.Edge, error)
}

// Input is one validation request. Previous is the word the candidate is
// attached to; Tail is the chain's current last word.
type Input struct {
	Previous      string
	Candidate     string
	AttemptingEnd bool
	Tail          string
}

// Outcome is the result returned to callers. Accepted outcomes carry an Edge
// and no Reason; rejections carry a Reason and no Edge.
type Outcome struct {
	Accepted bool           `json:"accepted"`
	Reason   string         `json:"reason,omitempty"`
	Code     Code           `json:"code,omitempty"`
	Edge     *relation.Edge `json:"edge,omitempty"`
}

// Err returns the rejection as a *RuleError, or nil when accepted.
func (o Outcome) Err() error {
	if o.Accepted {
		return nil
	}
	return &RuleError{Code: o.Code, Reason: o.Reason}
}

func reject(e *RuleError) Outcome {
	return Outcome{Reason: e.Reason, Code: e.Code}
}

// RuleKind tags a rule.
type RuleKind string

const (
	RuleDictionary RuleKind = "dictionary"
	RuleDistinct   RuleKind = "distinct"
	RuleConnected  RuleKind = "connected"
)

// evaluation carries state between rules of one run.
type evaluation struct {
	previous  string
	candidate string
	edge      *relation.Edge
	degraded  bool
}

type rule struct {
	kind     RuleKind
	priority int
	evaluate func(ctx context.Context, ev *evaluation) *RuleError
}

// Pipeline validates chain extensions.
type Pipeline struct {
	checker  WordChecker
	linker   Linker
	outcomes *cache.Cache[Outcome]
	rules    []rule
	group    singleflight.Group
	log      zerolog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the pipeline logger.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Pipeline) { p.log = l }
}

// NewPipeline builds a pipeline over checker and linker, memoizing into
// outcomes.
func NewPipeline(checker WordChecker, linker Linker, outcomes *cache.Cache[Outcome], opts ...Option) *Pipeline {
	p := &Pipeline{
		checker:  checker,
		linker:   linker,
		outcomes: outcomes,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.log = p.log.With().Str("component", "validation").Logger()

	p.rules = []rule{
		{RuleConnected, 3, p.connected},
		{RuleDistinct, 2, distinct},
		{RuleDictionary, 1, p.inDictionary},
	}
	slices.SortFunc(p.rules, func(a, b rule) int { return a.priority - b.priority })
	return p
}

// Validate runs the pipeline. It never returns an error: every failure is
// expressed as a rejected Outcome. When ctx ends first the outcome carries
// CodeCanceled and nothing is memoized on the caller's behalf.
func (p *Pipeline) Validate(ctx context.Context, in Input) Outcome {
	candidate, err := words.Normalize(in.Candidate)
	if err != nil {
		reason := ReasonNotAlpha
		if errors.Is(err, words.ErrEmpty) {
			reason = ReasonEmpty
		}
		metrics.Validations.WithLabelValues("reject", string(CodeInput)).Inc()
		return reject(&RuleError{Code: CodeInput, Reason: reason})
	}
	previous := strings.ToLower(strings.TrimSpace(in.Previous))
	tail := strings.ToLower(strings.TrimSpace(in.Tail))
	if tail == "" {
		tail = previous
	}

	key := previous + "|" + candidate + "|" + strconv.FormatBool(in.AttemptingEnd)
	out, ok := p.outcomes.Get(key)
	if !ok {
		// The shared run outlives any one caller; stage timeouts bound it.
		ch := p.group.DoChan(key, func() (any, error) {
			if o, hit := p.outcomes.Get(key); hit {
				return o, nil
			}
			o, degraded := p.run(context.WithoutCancel(ctx), previous, candidate)
			if !degraded {
				p.outcomes.Set(key, o)
			}
			return o, nil
		})
		select {
		case <-ctx.Done():
			metrics.Validations.WithLabelValues("reject", string(CodeCanceled)).Inc()
			return reject(&RuleError{Code: CodeCanceled, Reason: ReasonCanceled})
		case res := <-ch:
			out = res.Val.(Outcome)
		}
	}

	if out.Accepted {
		metrics.Validations.WithLabelValues("accept", "").Inc()
	} else {
		metrics.Validations.WithLabelValues("reject", string(out.Code)).Inc()
	}
	return stampJump(out, previous != tail)
}

// run evaluates the rules in priority order.
func (p *Pipeline) run(ctx context.Context, previous, candidate string) (Outcome, bool) {
	ev := &evaluation{previous: previous, candidate: candidate}
	for _, r := range p.rules {
		if rerr := r.evaluate(ctx, ev); rerr != nil {
			p.log.Debug().
				Str("rule", string(r.kind)).
				Str("previous", previous).
				Str("candidate", candidate).
				Str("code", string(rerr.Code)).
				Msg("candidate rejected")
			return reject(rerr), ev.degraded
		}
	}
	return Outcome{Accepted: true, Edge: ev.edge}, false
}

func (p *Pipeline) inDictionary(ctx context.Context, ev *evaluation) *RuleError {
	ok, err := p.checker.Exists(ctx, ev.candidate)
	if err != nil {
		ev.degraded = true
		p.log.Warn().Err(err).Str("word", ev.candidate).Msg("dictionary check failed")
	}
	if !ok {
		return &RuleError{Code: CodeNotFound, Reason: ReasonNotFound}
	}
	return nil
}

func distinct(_ context.Context, ev *evaluation) *RuleError {
	if words.Equal(ev.previous, ev.candidate) {
		return &RuleError{Code: CodeDuplicate, Reason: ReasonDuplicate}
	}
	return nil
}

func (p *Pipeline) connected(ctx context.Context, ev *evaluation) *RuleError {
	edge, err := p.linker.Resolve(ctx, ev.previous, ev.candidate)
	if err == nil && edge != nil {
		ev.edge = edge
		return nil
	}
	var nm *relation.NoMatchError
	if !errors.As(err, &nm) || nm.Degraded() {
		ev.degraded = true
	}
	return &RuleError{Code: CodeNoRelationship, Reason: ReasonNoRelationship}
}

// stampJump returns out with a private Edge copy carrying the jump flag, so
// memoized outcomes are never mutated.
func stampJump(out Outcome, jump bool) Outcome {
	if out.Edge == nil {
		return out
	}
	e := *out.Edge
	e.IsDirectJump = jump
	out.Edge = &e
	return out
}
