package session

import (
	"context"
	"encoding/json"
	"log"
	"testing"
	"time"

	"booksage-backend/internal/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestGormArchiverPersistsTranscript(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:archivetest?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.GetMigrator(db).Migrate(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	archiver := NewGormArchiver(db)
	sessionId := uuid.New()
	entry := HistoryEntry{Id: 1, Title: "What is retrieval?...", Date: time.Date(2025, 2, 26, 12, 0, 0, 0, time.UTC)}
	transcript := []Message{
		{Text: "What is retrieval?", Sender: SenderUser, CreatedAt: entry.Date},
		{Text: "Retrieval is...", Sender: SenderBot, CreatedAt: entry.Date.Add(time.Second)},
	}

	require.NoError(t, archiver.Archive(context.Background(), sessionId, entry, transcript))

	var record database.ChatArchive
	require.NoError(t, db.First(&record, "session_id = ?", sessionId).Error)
	assert.Equal(t, entry.Id, record.EntryId)
	assert.Equal(t, entry.Title, record.Title)

	var restored []Message
	require.NoError(t, json.Unmarshal(record.Transcript, &restored))
	require.Len(t, restored, 2)
	assert.Equal(t, SenderUser, restored[0].Sender)
	assert.Equal(t, "Retrieval is...", restored[1].Text)
}
