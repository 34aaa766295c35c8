package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"booksage-backend/internal/database"

	"gorm.io/gorm"
)

// GormRegistry persists documents in the database so they survive restarts.
type GormRegistry struct {
	db *gorm.DB

	// SQLite only supports one writer at a time, so we need a lock whenever
	// we write to the database.
	writeMu sync.Mutex
}

func NewGormRegistry(db *gorm.DB) *GormRegistry {
	return &GormRegistry{db: db}
}

func (r *GormRegistry) Register(ctx context.Context, doc Document) (RegisterOutcome, error) {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	var existing database.Document
	err := r.db.WithContext(ctx).First(&existing, "id = ?", doc.Id).Error
	if err == nil {
		return AlreadyPresent, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return outcomeUnknown, fmt.Errorf("could not check for existing document: %w", err)
	}

	// writeMu serializes inserts, so MAX(seq)+1 cannot race with itself.
	var maxSeq int64
	err = r.db.WithContext(ctx).Model(&database.Document{}).
		Select("COALESCE(MAX(seq), 0)").Scan(&maxSeq).Error
	if err != nil {
		return outcomeUnknown, fmt.Errorf("could not determine next document sequence: %w", err)
	}

	record := database.Document{Id: doc.Id, Name: doc.Name, UploadedAt: doc.UploadedAt, Seq: maxSeq + 1}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return outcomeUnknown, fmt.Errorf("could not create document record: %w", err)
	}
	return Inserted, nil
}

func (r *GormRegistry) Get(ctx context.Context, id string) (Document, error) {
	var record database.Document
	err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Document{}, ErrNotFound
		}
		return Document{}, fmt.Errorf("could not query document: %w", err)
	}
	return Document{Id: record.Id, Name: record.Name, UploadedAt: record.UploadedAt}, nil
}

func (r *GormRegistry) List(ctx context.Context) ([]Document, error) {
	var records []database.Document
	err := r.db.WithContext(ctx).Order("seq ASC").Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("could not list documents: %w", err)
	}

	docs := make([]Document, len(records))
	for i, record := range records {
		docs[i] = Document{Id: record.Id, Name: record.Name, UploadedAt: record.UploadedAt}
	}
	return docs, nil
}
