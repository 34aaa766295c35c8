package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"booksage-backend/internal/registry"
	"booksage-backend/internal/retrieval"

	"github.com/google/uuid"
)

var (
	// ErrSessionBusy is returned when a query or upload is already in flight.
	ErrSessionBusy = errors.New("session is busy")
	ErrEmptyQuery  = errors.New("query text is empty")
	ErrNoFile      = errors.New("no file selected")
)

// User-visible messages. Failures always collapse to these generic texts; the
// underlying cause is only logged.
const (
	RetrievalErrorMessage = "I encountered an error while processing your request. Please try again."
	IngestionErrorMessage = "Failed to process the document. Please try again."
)

const titlePrefixLen = 30

type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Message is one transcript entry. Messages are immutable once appended and
// their append order defines the transcript.
type Message struct {
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	CreatedAt time.Time `json:"created_at"`
}

// HistoryEntry is the metadata snapshot created when a non-empty chat is
// superseded by a new one.
type HistoryEntry struct {
	Id    int       `json:"id"`
	Title string    `json:"title"`
	Date  time.Time `json:"date"`
}

// Orchestrator answers one query scoped to an optional document.
type Orchestrator interface {
	Answer(ctx context.Context, query, scope string) retrieval.Outcome
}

// Ingestor turns an uploaded file into an indexed, registered document.
type Ingestor interface {
	Ingest(ctx context.Context, filename string, contents io.Reader) (registry.Document, error)
}

// Session owns the state of one conversation: the transcript, the active
// document scope and the chat archive. All mutations go through its methods;
// collaborators never write session state directly. At most one query or
// upload is in flight at a time, enforced by the busy flag.
type Session struct {
	mu            sync.Mutex
	id            uuid.UUID
	messages      []Message
	activeDocId   string
	history       []HistoryEntry
	nextHistoryId int
	busy          bool

	registry     registry.Registry
	orchestrator Orchestrator
	ingestor     Ingestor
	archiver     Archiver
	now          func() time.Time
}

func NewSession(id uuid.UUID, reg registry.Registry, orch Orchestrator, ingestor Ingestor, archiver Archiver) *Session {
	return &Session{
		id:            id,
		nextHistoryId: 1,
		registry:      reg,
		orchestrator:  orch,
		ingestor:      ingestor,
		archiver:      archiver,
		now:           time.Now,
	}
}

func (s *Session) Id() uuid.UUID { return s.id }

// clearBusy runs deferred during SubmitQuery and SubmitUpload so the busy
// flag is dropped on every exit path, panics included.
func (s *Session) clearBusy() {
	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
}

// SubmitQuery appends the user message, runs the retrieval pipeline and
// appends exactly one bot message for the outcome. It rejects empty text and
// concurrent entry without touching any state.
func (s *Session) SubmitQuery(ctx context.Context, text string) (Message, error) {
	if strings.TrimSpace(text) == "" {
		return Message{}, ErrEmptyQuery
	}

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return Message{}, ErrSessionBusy
	}
	s.busy = true
	s.messages = append(s.messages, Message{Text: text, Sender: SenderUser, CreatedAt: s.now()})
	scope := s.activeDocId
	s.mu.Unlock()

	// Deferred so a panicking collaborator cannot leave the session wedged.
	defer s.clearBusy()

	outcome := s.orchestrator.Answer(ctx, text, scope)

	s.mu.Lock()
	defer s.mu.Unlock()

	var botText string
	switch outcome.Kind {
	case retrieval.Answered, retrieval.NoEvidence:
		botText = outcome.Text
	case retrieval.RetrievalFailed:
		slog.Error("retrieval failed", "session_id", s.id, "stage", outcome.Stage, "error", outcome.Err)
		botText = RetrievalErrorMessage
	default:
		// InvalidInput cannot happen here since empty text is rejected above,
		// but the mapping stays exhaustive.
		botText = RetrievalErrorMessage
	}

	bot := Message{Text: botText, Sender: SenderBot, CreatedAt: s.now()}
	s.messages = append(s.messages, bot)
	return bot, nil
}

// SubmitUpload delegates ingestion, registers the resulting document and
// makes it the active scope. On failure the active document is left
// unchanged and a generic bot message is appended.
func (s *Session) SubmitUpload(ctx context.Context, filename string, contents io.Reader) (Message, error) {
	if filename == "" {
		return Message{}, ErrNoFile
	}

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return Message{}, ErrSessionBusy
	}
	s.busy = true
	s.messages = append(s.messages, Message{
		Text:      fmt.Sprintf("Uploaded file: %s", filename),
		Sender:    SenderUser,
		CreatedAt: s.now(),
	})
	s.mu.Unlock()

	defer s.clearBusy()

	doc, err := s.ingestor.Ingest(ctx, filename, contents)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		slog.Error("ingestion failed", "session_id", s.id, "filename", filename, "error", err)
		bot := Message{Text: IngestionErrorMessage, Sender: SenderBot, CreatedAt: s.now()}
		s.messages = append(s.messages, bot)
		return bot, nil
	}

	if _, err := s.registry.Register(ctx, doc); err != nil {
		slog.Error("error registering document", "session_id", s.id, "document_id", doc.Id, "error", err)
		bot := Message{Text: IngestionErrorMessage, Sender: SenderBot, CreatedAt: s.now()}
		s.messages = append(s.messages, bot)
		return bot, nil
	}

	s.activeDocId = doc.Id
	bot := Message{
		Text:      fmt.Sprintf("I've analyzed %q and indexed its contents. What would you like to know about this document?", doc.Name),
		Sender:    SenderBot,
		CreatedAt: s.now(),
	}
	s.messages = append(s.messages, bot)
	return bot, nil
}

// SelectDocument sets the active scope to a registered document. An empty
// transcript is seeded with a greeting naming the document; an existing
// transcript is left alone.
func (s *Session) SelectDocument(ctx context.Context, id string) error {
	doc, err := s.registry.Get(ctx, id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.activeDocId = doc.Id
	if len(s.messages) == 0 {
		s.messages = append(s.messages, Message{
			Text:      fmt.Sprintf("You've selected %q. What would you like to know about this document?", doc.Name),
			Sender:    SenderBot,
			CreatedAt: s.now(),
		})
	}
	return nil
}

// ClearActiveDocument drops the scope but keeps the transcript.
func (s *Session) ClearActiveDocument() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeDocId = ""
}

// StartNewChat archives the current transcript under a derived title when it
// is non-empty, then resets messages and the active document. The returned
// entry is nil when there was nothing to archive.
func (s *Session) StartNewChat(ctx context.Context) (*HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busy {
		return nil, ErrSessionBusy
	}

	var archived *HistoryEntry
	if len(s.messages) > 0 {
		entry := HistoryEntry{
			Id:    s.nextHistoryId,
			Title: deriveTitle(s.messages[0].Text),
			Date:  s.now(),
		}
		s.nextHistoryId++
		s.history = append(s.history, entry)

		transcript := make([]Message, len(s.messages))
		copy(transcript, s.messages)
		if err := s.archiver.Archive(ctx, s.id, entry, transcript); err != nil {
			// The in-memory entry is kept; losing the persisted transcript
			// must not wedge the reset.
			slog.Error("error archiving chat transcript", "session_id", s.id, "entry_id", entry.Id, "error", err)
		}
		archived = &entry
	}

	s.messages = nil
	s.activeDocId = ""
	return archived, nil
}

func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *Session) History() []HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]HistoryEntry, len(s.history))
	copy(out, s.history)
	return out
}

func (s *Session) ActiveDocumentId() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeDocId
}

func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// deriveTitle truncates the first message to a fixed prefix and marks the cut
// with an ellipsis.
func deriveTitle(text string) string {
	runes := []rune(text)
	if len(runes) > titlePrefixLen {
		runes = runes[:titlePrefixLen]
	}
	return string(runes) + "..."
}
