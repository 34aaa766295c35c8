// Package api holds the request and response shapes of the HTTP surface.
package api

import "time"

type CreateSessionResponse struct {
	SessionId string `json:"session_id"`
}

type Message struct {
	Text      string    `json:"text"`
	Sender    string    `json:"sender"`
	CreatedAt time.Time `json:"created_at"`
}

type Document struct {
	Id         string    `json:"id"`
	Name       string    `json:"name"`
	UploadedAt time.Time `json:"uploaded_at"`
}

type HistoryEntry struct {
	Id    int       `json:"id"`
	Title string    `json:"title"`
	Date  time.Time `json:"date"`
}

// SessionView is the read-only snapshot of one session.
type SessionView struct {
	SessionId        string         `json:"session_id"`
	Messages         []Message      `json:"messages"`
	Documents        []Document     `json:"documents"`
	History          []HistoryEntry `json:"history"`
	ActiveDocumentId string         `json:"active_document_id,omitempty"`
	Busy             bool           `json:"busy"`
}

type QueryRequest struct {
	Text string `json:"text"`
}

// QueryResponse carries the bot message appended for the submitted query.
type QueryResponse struct {
	Reply Message `json:"reply"`
}

type UploadResponse struct {
	Reply            Message `json:"reply"`
	ActiveDocumentId string  `json:"active_document_id,omitempty"`
}

type SelectDocumentRequest struct {
	DocumentId string `json:"document_id"`
}

type NewChatResponse struct {
	Archived *HistoryEntry `json:"archived,omitempty"`
}

type HistoryQuery struct {
	Limit int `schema:"limit"`
}

type HistoryResponse struct {
	History []HistoryEntry `json:"history"`
}
