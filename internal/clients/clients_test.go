package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"booksage-backend/internal/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTimeout = 5 * time.Second

func TestEmbeddingClient(t *testing.T) {
	var gotBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/embed", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"embedding": []float32{0.1, 0.2, 0.3}})
	}))
	defer server.Close()

	client := NewEmbeddingClient(server.URL, testTimeout)
	embedding, err := client.Embed(context.Background(), "what is retrieval?")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, embedding)
	assert.Equal(t, "what is retrieval?", gotBody["text"])
}

func TestEmbeddingClientNon2xxIsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewEmbeddingClient(server.URL, testTimeout)
	_, err := client.Embed(context.Background(), "query")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestSynthesisClientSendsDocumentName(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/generate-answer", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"answer": "the synthesized answer"})
	}))
	defer server.Close()

	client := NewSynthesisClient(server.URL, testTimeout)
	answer, err := client.Synthesize(context.Background(), "query", "passage one\n\npassage two", "manual.pdf")
	require.NoError(t, err)
	assert.Equal(t, "the synthesized answer", answer)
	assert.Equal(t, "query", gotBody["query"])
	assert.Equal(t, "passage one\n\npassage two", gotBody["context"])
	assert.Equal(t, "manual.pdf", gotBody["documentName"])
}

func TestSynthesisClientNullDocumentNameWhenUnscoped(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"answer": "ok"})
	}))
	defer server.Close()

	client := NewSynthesisClient(server.URL, testTimeout)
	_, err := client.Synthesize(context.Background(), "query", "context", "")
	require.NoError(t, err)

	value, present := gotBody["documentName"]
	assert.True(t, present)
	assert.Nil(t, value)
}

func TestSearchClientScopedAndUnscoped(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/rpc/hybrid_search", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotBody = body
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]map[string]any{
			{"content": "passage", "score": 0.92, "document_id": "doc-1"},
		})
	}))
	defer server.Close()

	client := NewSearchClient(server.URL, "test-key", "hybrid_search", testTimeout)

	results, err := client.Search(context.Background(), "query text", []float32{0.1}, "doc-1", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "passage", results[0].Content)
	assert.Equal(t, 0.92, results[0].Score)
	assert.Equal(t, "doc-1", results[0].DocumentId)

	assert.Equal(t, "query text", gotBody["query_text"])
	assert.Equal(t, float64(10), gotBody["match_count"])
	assert.Equal(t, "doc-1", gotBody["document_id"])

	_, err = client.Search(context.Background(), "query text", []float32{0.1}, "", 10)
	require.NoError(t, err)
	_, present := gotBody["document_id"]
	assert.False(t, present)
}

func TestSearchClientEmptyResultIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("[]"))
	}))
	defer server.Close()

	client := NewSearchClient(server.URL, "", "hybrid_search", testTimeout)
	results, err := client.Search(context.Background(), "query", []float32{0.1}, "", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchClientInsertChunks(t *testing.T) {
	var gotRows []map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/documents", r.URL.Path)
		assert.Equal(t, "return=minimal", r.Header.Get("Prefer"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotRows))
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := NewSearchClient(server.URL, "", "hybrid_search", testTimeout)
	doc := registry.Document{Id: "doc-1", Name: "manual.pdf"}
	err := client.InsertChunks(context.Background(), doc, []string{"a", "b"}, [][]float32{{0.1}, {0.2}})
	require.NoError(t, err)

	require.Len(t, gotRows, 2)
	assert.Equal(t, "doc-1", gotRows[0]["document_id"])
	assert.Equal(t, "manual.pdf", gotRows[0]["title"])
	assert.Equal(t, "b", gotRows[1]["content"])
}

func TestIngestionClientSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/upload", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "manual.pdf", header.Filename)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"document": map[string]string{"id": "doc-1", "name": "manual.pdf"},
		})
	}))
	defer server.Close()

	client := NewIngestionClient(server.URL, testTimeout)
	doc, err := client.Ingest(context.Background(), "manual.pdf", strings.NewReader("%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, "doc-1", doc.Id)
	assert.Equal(t, "manual.pdf", doc.Name)
}

func TestIngestionClientErrorFieldOn2xxIsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"error": "could not extract text"})
	}))
	defer server.Close()

	client := NewIngestionClient(server.URL, testTimeout)
	_, err := client.Ingest(context.Background(), "manual.pdf", strings.NewReader("junk"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not extract text")
}

func TestIngestionClientNon2xxIsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "no file part"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewIngestionClient(server.URL, testTimeout)
	_, err := client.Ingest(context.Background(), "manual.pdf", strings.NewReader("junk"))
	assert.Error(t, err)
}
