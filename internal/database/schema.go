package database

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Document is one ingested document. The id is assigned at ingestion time and
// is the only identity; names are not unique. Seq records registration order;
// sqlite only auto-increments the primary key, so it is assigned by the
// registry on insert.
type Document struct {
	Id         string `gorm:"primaryKey"`
	Name       string `gorm:"not null"`
	UploadedAt time.Time
	Seq        int64 `gorm:"index"`
}

// ChatArchive is the snapshot written when a non-empty chat is superseded by a
// new one. Transcript holds the archived messages as JSON.
type ChatArchive struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	SessionId uuid.UUID `gorm:"type:uuid;index"`
	EntryId   int       `gorm:"not null"`
	Title     string    `gorm:"not null"`
	Date      time.Time

	Transcript datatypes.JSON
}
