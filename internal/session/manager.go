package session

import (
	"errors"
	"sync"
	"time"

	"booksage-backend/internal/registry"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("session not found")

type sessionEntry struct {
	session      *Session
	lastAccessed time.Time
}

// Manager owns the live sessions, keyed by id. When the pool is full the
// least recently accessed session is evicted; its archived chats stay in the
// database.
type Manager struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*sessionEntry
	maxSize  int

	registry     registry.Registry
	orchestrator Orchestrator
	ingestor     Ingestor
	archiver     Archiver
}

func NewManager(reg registry.Registry, orch Orchestrator, ingestor Ingestor, archiver Archiver, maxSize int) *Manager {
	return &Manager{
		sessions:     make(map[uuid.UUID]*sessionEntry, maxSize),
		maxSize:      maxSize,
		registry:     reg,
		orchestrator: orch,
		ingestor:     ingestor,
		archiver:     archiver,
	}
}

func (m *Manager) Create() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sessions) >= m.maxSize {
		m.evictOldestLocked()
	}

	session := NewSession(uuid.New(), m.registry, m.orchestrator, m.ingestor, m.archiver)
	m.sessions[session.Id()] = &sessionEntry{session: session, lastAccessed: time.Now()}
	return session
}

func (m *Manager) Get(id uuid.UUID) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.sessions[id]
	if !exists {
		return nil, ErrSessionNotFound
	}
	entry.lastAccessed = time.Now()
	return entry.session, nil
}

func (m *Manager) evictOldestLocked() {
	oldestId := uuid.Nil
	var oldestTime time.Time
	for id, entry := range m.sessions {
		if oldestId == uuid.Nil || entry.lastAccessed.Before(oldestTime) {
			oldestId = id
			oldestTime = entry.lastAccessed
		}
	}
	if oldestId != uuid.Nil {
		delete(m.sessions, oldestId)
	}
}
