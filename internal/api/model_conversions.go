package api

import (
	"booksage-backend/internal/registry"
	"booksage-backend/internal/session"
	"booksage-backend/pkg/api"
)

func toAPIMessage(msg session.Message) api.Message {
	return api.Message{Text: msg.Text, Sender: string(msg.Sender), CreatedAt: msg.CreatedAt}
}

func toAPIMessages(msgs []session.Message) []api.Message {
	out := make([]api.Message, len(msgs))
	for i, msg := range msgs {
		out[i] = toAPIMessage(msg)
	}
	return out
}

func toAPIDocument(doc registry.Document) api.Document {
	return api.Document{Id: doc.Id, Name: doc.Name, UploadedAt: doc.UploadedAt}
}

func toAPIDocuments(docs []registry.Document) []api.Document {
	out := make([]api.Document, len(docs))
	for i, doc := range docs {
		out[i] = toAPIDocument(doc)
	}
	return out
}

func toAPIHistoryEntry(entry session.HistoryEntry) api.HistoryEntry {
	return api.HistoryEntry{Id: entry.Id, Title: entry.Title, Date: entry.Date}
}

func toAPIHistory(entries []session.HistoryEntry) []api.HistoryEntry {
	out := make([]api.HistoryEntry, len(entries))
	for i, entry := range entries {
		out[i] = toAPIHistoryEntry(entry)
	}
	return out
}
