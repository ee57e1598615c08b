// internal/provider/provider.go
//
// Contracts for the external collaborators consulted by the relationship
// cascade. Concrete clients live in the sub-packages (dictionary, conceptnet,
// openai, ollama); tests substitute in-memory fakes.
//
// Every client wraps its failures in *Error so callers can log the provider
// and operation, and use errors.Is(err, ErrNotFound) for dictionary misses.

package provider

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound reports that a headword does not exist.
var ErrNotFound = errors.New("not found")

// Error wraps a collaborator failure.
type Error struct {
	Provider string
	Op       string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap returns nil for a nil err, otherwise an *Error.
func Wrap(provider, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Provider: provider, Op: op, Err: err}
}

// DictionaryEntry is one headword with its meanings.
type DictionaryEntry struct {
	Word     string    `json:"word"`
	Meanings []Meaning `json:"meanings"`
}

// Meaning groups definitions for one part of speech.
type Meaning struct {
	PartOfSpeech string       `json:"partOfSpeech"`
	Definitions  []Definition `json:"definitions"`
	Synonyms     []string     `json:"synonyms,omitempty"`
	Antonyms     []string     `json:"antonyms,omitempty"`
}

// Definition is a single sense.
type Definition struct {
	Definition string   `json:"definition"`
	Synonyms   []string `json:"synonyms,omitempty"`
	Antonyms   []string `json:"antonyms,omitempty"`
}

// Synonyms returns meaning- and definition-level synonyms.
func (e *DictionaryEntry) Synonyms() []string {
	var out []string
	for _, m := range e.Meanings {
		out = append(out, m.Synonyms...)
		for _, d := range m.Definitions {
			out = append(out, d.Synonyms...)
		}
	}
	return out
}

// Antonyms returns meaning- and definition-level antonyms.
func (e *DictionaryEntry) Antonyms() []string {
	var out []string
	for _, m := range e.Meanings {
		out = append(out, m.Antonyms...)
		for _, d := range m.Definitions {
			out = append(out, d.Antonyms...)
		}
	}
	return out
}

// DefinitionTexts returns every definition string.
func (e *DictionaryEntry) DefinitionTexts() []string {
	var out []string
	for _, m := range e.Meanings {
		for _, d := range m.Definitions {
			out = append(out, d.Definition)
		}
	}
	return out
}

// Dictionary looks up headwords. A missing headword yields ErrNotFound.
type Dictionary interface {
	Lookup(ctx context.Context, word string) (*DictionaryEntry, error)
}

// Embedder maps a word to a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, word string) ([]float32, error)
}

// ConceptGraph scores how related two words are in a concept network.
type ConceptGraph interface {
	// Relatedness returns a score in [0,1].
	Relatedness(ctx context.Context, a, b string) (float64, error)
	// Edges returns relation labels of edges between a and b, strongest first.
	Edges(ctx context.Context, a, b string) ([]string, error)
}

// Judgement is the generative model's verdict on a word pair.
type Judgement struct {
	IsValid          bool    `json:"isValid" jsonschema:"description=Whether the two words are meaningfully connected"`
	RelationshipType string  `json:"relationshipType" jsonschema:"description=One of synonym antonym contextual figurative association semantic conceptual creative"`
	Creativity       float64 `json:"creativity" jsonschema:"description=How surprising the connection is from 0 to 20"`
}

// StrictRelations are conventional lexical relations.
type StrictRelations struct {
	Synonyms   []string `json:"synonyms"`
	Antonyms   []string `json:"antonyms"`
	Contextual []string `json:"contextual"`
}

// CreativeRelations are looser, figurative relations.
type CreativeRelations struct {
	Figurative   []string `json:"figurative"`
	Associations []string `json:"associations"`
}

// RelationshipSet is the generative model's list of words related to one word.
type RelationshipSet struct {
	Strict   StrictRelations   `json:"strict"`
	Creative CreativeRelations `json:"creative"`
}

// Empty reports whether the set lists no words at all.
func (s *RelationshipSet) Empty() bool {
	return s == nil ||
		len(s.Strict.Synonyms)+len(s.Strict.Antonyms)+len(s.Strict.Contextual)+
			len(s.Creative.Figurative)+len(s.Creative.Associations) == 0
}

// Generator asks a generative text model about word relationships.
// Malformed model output is returned as a negative Judgement or empty set,
// never as an error.
type Generator interface {
	Judge(ctx context.Context, a, b string) (*Judgement, error)
	Relationships(ctx context.Context, word string) (*RelationshipSet, error)
}
