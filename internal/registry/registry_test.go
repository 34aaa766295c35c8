package registry

import (
	"context"
	"log"
	"testing"
	"time"

	"booksage-backend/internal/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T, name string) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.GetMigrator(db).Migrate(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	return db
}

func testRegistryContract(t *testing.T, reg Registry) {
	ctx := context.Background()
	base := time.Date(2025, 2, 26, 12, 0, 0, 0, time.UTC)

	outcome, err := reg.Register(ctx, Document{Id: "doc-1", Name: "manual.pdf", UploadedAt: base})
	require.NoError(t, err)
	assert.Equal(t, Inserted, outcome)

	// Registering the same id again leaves the registry unchanged.
	outcome, err = reg.Register(ctx, Document{Id: "doc-1", Name: "renamed.pdf", UploadedAt: base.Add(time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, AlreadyPresent, outcome)

	outcome, err = reg.Register(ctx, Document{Id: "doc-2", Name: "appendix.pdf", UploadedAt: base.Add(time.Minute)})
	require.NoError(t, err)
	assert.Equal(t, Inserted, outcome)

	docs, err := reg.List(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "doc-1", docs[0].Id)
	assert.Equal(t, "manual.pdf", docs[0].Name)
	assert.Equal(t, "doc-2", docs[1].Id)

	doc, err := reg.Get(ctx, "doc-2")
	require.NoError(t, err)
	assert.Equal(t, "appendix.pdf", doc.Name)

	_, err = reg.Get(ctx, "doc-3")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRegistry(t *testing.T) {
	testRegistryContract(t, NewMemoryRegistry())
}

func TestGormRegistry(t *testing.T) {
	testRegistryContract(t, NewGormRegistry(openTestDB(t, "registrytest")))
}

func TestGormRegistryPreservesInsertionOrder(t *testing.T) {
	ctx := context.Background()
	reg := NewGormRegistry(openTestDB(t, "registryorder"))

	// Identical upload times and ids out of lexical order, so only the
	// registration sequence can produce this ordering.
	uploaded := time.Date(2025, 2, 26, 12, 0, 0, 0, time.UTC)
	ids := []string{"z", "a", "m", "b"}
	for _, id := range ids {
		_, err := reg.Register(ctx, Document{Id: id, Name: id + ".pdf", UploadedAt: uploaded})
		require.NoError(t, err)
	}

	docs, err := reg.List(ctx)
	require.NoError(t, err)
	require.Len(t, docs, len(ids))
	for i, id := range ids {
		assert.Equal(t, id, docs[i].Id)
	}
}

func TestGormRegistryErrorReportsNoOutcome(t *testing.T) {
	db := openTestDB(t, "registryclosed")
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	reg := NewGormRegistry(db)
	outcome, err := reg.Register(context.Background(), Document{Id: "doc-1", Name: "manual.pdf"})
	require.Error(t, err)
	assert.Equal(t, outcomeUnknown, outcome)
}

func TestMemoryRegistryPreservesInsertionOrder(t *testing.T) {
	ctx := context.Background()
	reg := NewMemoryRegistry()

	ids := []string{"z", "a", "m", "b"}
	for _, id := range ids {
		_, err := reg.Register(ctx, Document{Id: id, Name: id + ".pdf"})
		require.NoError(t, err)
	}

	docs, err := reg.List(ctx)
	require.NoError(t, err)
	require.Len(t, docs, len(ids))
	for i, id := range ids {
		assert.Equal(t, id, docs[i].Id)
	}
}
