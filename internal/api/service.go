package api

import (
	"errors"
	"log/slog"
	"net/http"

	"booksage-backend/internal/registry"
	"booksage-backend/internal/session"
	"booksage-backend/pkg/api"

	"github.com/go-chi/chi/v5"
)

const maxUploadBytes = 50 << 20

// BackendService exposes the session surface over HTTP: submit query, submit
// upload, select/clear document, start new chat, and read-only views.
type BackendService struct {
	manager  *session.Manager
	registry registry.Registry
}

func NewBackendService(manager *session.Manager, reg registry.Registry) *BackendService {
	return &BackendService{manager: manager, registry: reg}
}

func (s *BackendService) AddRoutes(r chi.Router) {
	r.Get("/health", RestHandler(func(r *http.Request) (any, error) { return nil, nil }))

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", RestHandler(s.CreateSession))
		r.Get("/{session_id}", RestHandler(s.GetSession))
		r.Post("/{session_id}/messages", RestHandler(s.SubmitQuery))
		r.Post("/{session_id}/documents", RestHandler(s.SubmitUpload))
		r.Put("/{session_id}/document", RestHandler(s.SelectDocument))
		r.Delete("/{session_id}/document", RestHandler(s.ClearActiveDocument))
		r.Post("/{session_id}/chats", RestHandler(s.StartNewChat))
		r.Get("/{session_id}/history", RestHandler(s.GetHistory))
	})

	r.Route("/documents", func(r chi.Router) {
		r.Get("/", RestHandler(s.ListDocuments))
		r.Get("/{document_id}", RestHandler(s.GetDocument))
	})
}

func (s *BackendService) CreateSession(r *http.Request) (any, error) {
	sess := s.manager.Create()
	slog.Info("created session", "session_id", sess.Id())
	return api.CreateSessionResponse{SessionId: sess.Id().String()}, nil
}

func (s *BackendService) GetSession(r *http.Request) (any, error) {
	sess, err := s.session(r)
	if err != nil {
		return nil, err
	}

	docs, err := s.registry.List(r.Context())
	if err != nil {
		return nil, CodedErrorf(http.StatusInternalServerError, "error listing documents")
	}

	return api.SessionView{
		SessionId:        sess.Id().String(),
		Messages:         toAPIMessages(sess.Messages()),
		Documents:        toAPIDocuments(docs),
		History:          toAPIHistory(sess.History()),
		ActiveDocumentId: sess.ActiveDocumentId(),
		Busy:             sess.Busy(),
	}, nil
}

func (s *BackendService) SubmitQuery(r *http.Request) (any, error) {
	sess, err := s.session(r)
	if err != nil {
		return nil, err
	}

	req, err := ParseRequest[api.QueryRequest](r)
	if err != nil {
		return nil, err
	}

	reply, err := sess.SubmitQuery(r.Context(), req.Text)
	if err != nil {
		return nil, mapSessionError(err)
	}

	return api.QueryResponse{Reply: toAPIMessage(reply)}, nil
}

func (s *BackendService) SubmitUpload(r *http.Request) (any, error) {
	sess, err := s.session(r)
	if err != nil {
		return nil, err
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, CodedErrorf(http.StatusBadRequest, "unable to parse multipart form")
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, CodedErrorf(http.StatusBadRequest, "no file provided")
	}
	defer file.Close()

	reply, err := sess.SubmitUpload(r.Context(), header.Filename, file)
	if err != nil {
		return nil, mapSessionError(err)
	}

	return api.UploadResponse{Reply: toAPIMessage(reply), ActiveDocumentId: sess.ActiveDocumentId()}, nil
}

func (s *BackendService) SelectDocument(r *http.Request) (any, error) {
	sess, err := s.session(r)
	if err != nil {
		return nil, err
	}

	req, err := ParseRequest[api.SelectDocumentRequest](r)
	if err != nil {
		return nil, err
	}
	if req.DocumentId == "" {
		return nil, CodedErrorf(http.StatusBadRequest, "missing document_id")
	}

	if err := sess.SelectDocument(r.Context(), req.DocumentId); err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return nil, CodedErrorf(http.StatusNotFound, "document not found")
		}
		return nil, CodedErrorf(http.StatusInternalServerError, "error selecting document")
	}

	return nil, nil
}

func (s *BackendService) ClearActiveDocument(r *http.Request) (any, error) {
	sess, err := s.session(r)
	if err != nil {
		return nil, err
	}

	sess.ClearActiveDocument()
	return nil, nil
}

func (s *BackendService) StartNewChat(r *http.Request) (any, error) {
	sess, err := s.session(r)
	if err != nil {
		return nil, err
	}

	archived, err := sess.StartNewChat(r.Context())
	if err != nil {
		return nil, mapSessionError(err)
	}

	var entry *api.HistoryEntry
	if archived != nil {
		converted := toAPIHistoryEntry(*archived)
		entry = &converted
	}
	return api.NewChatResponse{Archived: entry}, nil
}

func (s *BackendService) GetHistory(r *http.Request) (any, error) {
	sess, err := s.session(r)
	if err != nil {
		return nil, err
	}

	query, err := ParseRequestQueryParams[api.HistoryQuery](r)
	if err != nil {
		return nil, err
	}

	history := toAPIHistory(sess.History())
	if query.Limit > 0 && query.Limit < len(history) {
		history = history[len(history)-query.Limit:]
	}
	return api.HistoryResponse{History: history}, nil
}

func (s *BackendService) ListDocuments(r *http.Request) (any, error) {
	docs, err := s.registry.List(r.Context())
	if err != nil {
		return nil, CodedErrorf(http.StatusInternalServerError, "error listing documents")
	}
	return toAPIDocuments(docs), nil
}

func (s *BackendService) GetDocument(r *http.Request) (any, error) {
	id := chi.URLParam(r, "document_id")
	if id == "" {
		return nil, CodedErrorf(http.StatusBadRequest, "missing {document_id} url parameter")
	}

	doc, err := s.registry.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return nil, CodedErrorf(http.StatusNotFound, "document not found")
		}
		return nil, CodedErrorf(http.StatusInternalServerError, "error retrieving document")
	}
	return toAPIDocument(doc), nil
}

func (s *BackendService) session(r *http.Request) (*session.Session, error) {
	sessionId, err := URLParamUUID(r, "session_id")
	if err != nil {
		return nil, err
	}

	sess, err := s.manager.Get(sessionId)
	if err != nil {
		return nil, CodedErrorf(http.StatusNotFound, "session not found")
	}
	return sess, nil
}

func mapSessionError(err error) error {
	switch {
	case errors.Is(err, session.ErrSessionBusy):
		return CodedErrorf(http.StatusConflict, "another query or upload is already in progress")
	case errors.Is(err, session.ErrEmptyQuery):
		return CodedErrorf(http.StatusBadRequest, "query text must not be empty")
	case errors.Is(err, session.ErrNoFile):
		return CodedErrorf(http.StatusBadRequest, "no file selected")
	default:
		return CodedError(http.StatusInternalServerError, err)
	}
}
