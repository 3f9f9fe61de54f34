// Package knowledge defines the retrieval contract between the turn brief
// builder and the doctrine knowledge base.
//
// The knowledge base itself is an external collaborator; the core injects a
// Retriever so tests can substitute a deterministic fake.
package knowledge

import "context"

// MaxSnippets bounds the number of doctrine snippets in one turn brief.
const MaxSnippets = 8

// MaxQueryTerms bounds how many entity names seed a retrieval query.
const MaxQueryTerms = 5

// Snippet is one provenance-tagged doctrine excerpt. The core never edits
// snippet text; it is passed through verbatim.
type Snippet struct {
	Text     string
	SourceID string
}

// Query describes one retrieval call.
type Query struct {
	Faction string
	Terms   []string
	TopK    int
}

// Retriever answers doctrine queries. Implementations must treat an empty
// result as valid, not an error.
type Retriever interface {
	Retrieve(ctx context.Context, q Query) ([]Snippet, error)
}
