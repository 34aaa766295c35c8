package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"booksage-backend/internal/registry"
)

const DefaultSearchLimit = 10

// Embedder converts query text into a vector representation.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// SearchResult is one ranked passage returned by hybrid search.
type SearchResult struct {
	Content    string
	Score      float64
	DocumentId string
}

// SearchIndex runs a hybrid (vector + lexical) search over the ingested
// corpus. A non-empty documentId restricts results to that document. An empty
// result slice is a valid response, distinct from an error.
type SearchIndex interface {
	Search(ctx context.Context, query string, embedding []float32, documentId string, limit int) ([]SearchResult, error)
}

// Synthesizer produces a natural-language answer from a query and the
// assembled context. documentName may be empty when the search was unscoped.
type Synthesizer interface {
	Synthesize(ctx context.Context, query, contextText, documentName string) (string, error)
}

type OutcomeKind int

const (
	Answered OutcomeKind = iota
	NoEvidence
	RetrievalFailed
	InvalidInput
)

type Stage string

const (
	StageEmbedding Stage = "embedding"
	StageSearch    Stage = "search"
	StageSynthesis Stage = "synthesis"
)

// Outcome is the result of one Answer call. Text carries the answer for
// Answered and the fallback message for NoEvidence. Stage and Err are set
// only for RetrievalFailed and exist for logging; callers show generic text
// to the user regardless of which stage failed.
type Outcome struct {
	Kind  OutcomeKind
	Text  string
	Stage Stage
	Err   error
}

const noDocumentFallback = "To provide specific information, I'll need you to upload a document first."

// Orchestrator composes embedding, hybrid search, context assembly and answer
// synthesis into one query-answering operation. It never mutates registry or
// session state; it only produces an Outcome for the caller to apply.
type Orchestrator struct {
	embedder    Embedder
	index       SearchIndex
	synthesizer Synthesizer
	registry    registry.Registry
	limit       int
}

func NewOrchestrator(embedder Embedder, index SearchIndex, synthesizer Synthesizer, reg registry.Registry) *Orchestrator {
	return &Orchestrator{
		embedder:    embedder,
		index:       index,
		synthesizer: synthesizer,
		registry:    reg,
		limit:       DefaultSearchLimit,
	}
}

// Answer runs the retrieval pipeline for one query. scope is the active
// document id, or empty for an unscoped search. Each external stage is called
// at most once; synthesis is skipped entirely when search returns nothing.
func (o *Orchestrator) Answer(ctx context.Context, query, scope string) Outcome {
	if strings.TrimSpace(query) == "" {
		return Outcome{Kind: InvalidInput}
	}

	embedding, err := o.embedder.Embed(ctx, query)
	if err != nil {
		return Outcome{Kind: RetrievalFailed, Stage: StageEmbedding, Err: err}
	}

	results, err := o.index.Search(ctx, query, embedding, scope, o.limit)
	if err != nil {
		return Outcome{Kind: RetrievalFailed, Stage: StageSearch, Err: err}
	}

	if len(results) == 0 {
		if scope == "" {
			return Outcome{Kind: NoEvidence, Text: noDocumentFallback}
		}
		name := o.documentName(ctx, scope)
		return Outcome{
			Kind: NoEvidence,
			Text: fmt.Sprintf("I couldn't find any relevant content in %q for that question. Try rephrasing or asking about a different part of the document.", name),
		}
	}

	answer, err := o.synthesizer.Synthesize(ctx, query, AssembleContext(results), o.lookupName(ctx, scope))
	if err != nil {
		return Outcome{Kind: RetrievalFailed, Stage: StageSynthesis, Err: err}
	}

	// The answer is returned verbatim, no post-processing.
	return Outcome{Kind: Answered, Text: answer}
}

func (o *Orchestrator) lookupName(ctx context.Context, scope string) string {
	if scope == "" {
		return ""
	}
	return o.documentName(ctx, scope)
}

// documentName falls back to the raw id if the registry has no entry, so a
// stale scope still produces a usable message.
func (o *Orchestrator) documentName(ctx context.Context, id string) string {
	doc, err := o.registry.Get(ctx, id)
	if err != nil {
		return id
	}
	return doc.Name
}

// AssembleContext concatenates passage contents in descending score order,
// separated by blank lines. Ties keep the original search-result order.
func AssembleContext(results []SearchResult) string {
	ordered := make([]SearchResult, len(results))
	copy(ordered, results)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Score > ordered[j].Score
	})

	var b strings.Builder
	for i, result := range ordered {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(result.Content)
	}
	return b.String()
}
