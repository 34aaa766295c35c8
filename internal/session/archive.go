package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"booksage-backend/internal/database"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Archiver receives the full transcript when a chat is archived. The session
// itself only keeps the HistoryEntry metadata.
type Archiver interface {
	Archive(ctx context.Context, sessionId uuid.UUID, entry HistoryEntry, transcript []Message) error
}

// NopArchiver discards transcripts. Used when no database is configured.
type NopArchiver struct{}

func (NopArchiver) Archive(ctx context.Context, sessionId uuid.UUID, entry HistoryEntry, transcript []Message) error {
	return nil
}

// GormArchiver persists archived chats, transcript included, as JSON rows.
type GormArchiver struct {
	db *gorm.DB

	// SQLite only supports one writer at a time, so we need a lock whenever
	// we write to the database.
	writeMu sync.Mutex
}

func NewGormArchiver(db *gorm.DB) *GormArchiver {
	return &GormArchiver{db: db}
}

func (a *GormArchiver) Archive(ctx context.Context, sessionId uuid.UUID, entry HistoryEntry, transcript []Message) error {
	b, err := json.Marshal(transcript)
	if err != nil {
		return fmt.Errorf("could not marshal transcript: %w", err)
	}

	record := database.ChatArchive{
		Id:         uuid.New(),
		SessionId:  sessionId,
		EntryId:    entry.Id,
		Title:      entry.Title,
		Date:       entry.Date,
		Transcript: datatypes.JSON(b),
	}

	a.writeMu.Lock()
	defer a.writeMu.Unlock()
	if err := a.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("could not save chat archive: %w", err)
	}
	return nil
}
