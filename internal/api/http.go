package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/holloway/lector/internal/bridge"
	"github.com/holloway/lector/internal/companion"
	"github.com/holloway/lector/internal/generate"
	"github.com/holloway/lector/internal/metadata"
	"github.com/holloway/lector/internal/profiler"
	"github.com/holloway/lector/internal/storage"
)

const maxRequestBodySize = 1 << 20 // 1MB

// AppDeps holds the wiring for the localhost HTTP surface.
type AppDeps struct {
	Store     *storage.Store
	Profiler  *profiler.Profiler
	Sessions  *Sessions
	Responder *generate.Pipeline
	Token     string
}

// NewAppHandler returns the localhost HTTP API. All routes except /health
// require the bearer token.
func NewAppHandler(deps AppDeps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(deps.Token))

		r.Post("/books", handleOpenBook(deps))
		r.Get("/books", handleListBooks(deps))
		r.Get("/books/{id}/profile", handleGetProfile(deps))
		r.Post("/books/{id}/progress", handleProgress(deps))
		r.Post("/books/{id}/question", handleQuestion(deps))
		r.Get("/books/{id}/suggestions", handleSuggestions(deps))
		r.Post("/books/{id}/suggestions/{sid}/dismiss", handleDismiss(deps))
		r.Post("/books/{id}/suggestions/{sid}/engage", handleEngage(deps))
		r.Post("/books/{id}/suggestions/{sid}/response", handleResponse(deps))
		r.Post("/books/{id}/close", handleClose(deps))
		r.Get("/books/{id}/interactions", handleListInteractions(deps))
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// OpenBookRequest registers a book and opens its companion session. Either
// inline metadata or a local PDF path must be supplied.
type OpenBookRequest struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Author        string `json:"author"`
	Description   string `json:"description"`
	PageCount     int    `json:"page_count"`
	CurrentPage   int    `json:"current_page"`
	PublishedYear string `json:"published_year"`
	Path          string `json:"path"`
}

type openBookResponse struct {
	Book             metadata.Book          `json:"book"`
	Profile          profiler.BookProfile   `json:"profile"`
	Intimidation     float64                `json:"intimidation"`
	Mode             string                 `json:"mode"`
	NeedsPreparation bool                   `json:"needs_preparation"`
	State            companion.State        `json:"state"`
	Suggestions      []companion.Suggestion `json:"suggestions"`
}

func handleOpenBook(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req OpenBookRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		var book metadata.Book
		if req.Path != "" {
			extracted, err := metadata.FromPDF(req.Path)
			if err != nil {
				httpError(w, http.StatusBadRequest, "invalid_request_error", "reading pdf: %v", err)
				return
			}
			book = extracted
			if req.Title != "" {
				book.Title = req.Title
			}
			if req.Author != "" {
				book.Author = req.Author
			}
			book.CurrentPage = req.CurrentPage
		} else {
			if req.Title == "" {
				httpError(w, http.StatusBadRequest, "invalid_request_error", "title is required")
				return
			}
			book = metadata.Book{
				Title:         req.Title,
				Author:        req.Author,
				Description:   req.Description,
				PageCount:     req.PageCount,
				CurrentPage:   req.CurrentPage,
				PublishedYear: req.PublishedYear,
			}
		}

		book.ID = req.ID
		if book.ID == "" {
			book.ID = uuid.New().String()
		}

		// Reopening a known book resumes from its stored position unless
		// the request carries a newer one.
		if stored, err := deps.Store.GetBook(book.ID); err == nil && book.CurrentPage == 0 {
			book.CurrentPage = stored.CurrentPage
		}

		if err := deps.Store.SaveBook(storage.BookRecord{
			ID:            book.ID,
			Title:         book.Title,
			Author:        book.Author,
			Description:   book.Description,
			PageCount:     book.PageCount,
			CurrentPage:   book.CurrentPage,
			PublishedYear: book.PublishedYear,
			CreatedAt:     time.Now().UTC(),
		}); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "saving book: %v", err)
			return
		}

		o, p := deps.Sessions.Open(book)

		tables := deps.Profiler.Tables()
		score := tables.IntimidationScore(p)

		writeJSON(w, openBookResponse{
			Book:             book,
			Profile:          p,
			Intimidation:     score,
			Mode:             string(tables.Mode(score)),
			NeedsPreparation: tables.NeedsPreparation(p),
			State:            o.SessionState(),
			Suggestions:      o.PendingSuggestions(),
		})
	}
}

func handleListBooks(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		books, err := deps.Store.ListBooks()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "listing books: %v", err)
			return
		}
		if books == nil {
			books = []storage.BookRecord{}
		}
		writeJSON(w, books)
	}
}

func handleGetProfile(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		if o, ok := deps.Sessions.Get(id); ok {
			writeJSON(w, o.Profile())
			return
		}

		rec, err := deps.Store.GetBook(id)
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "book not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "loading book: %v", err)
			return
		}
		writeJSON(w, deps.Profiler.Profile(bookFromRecord(rec)))
	}
}

type progressRequest struct {
	Progress *float64 `json:"progress"`
	Page     *int     `json:"page"`
}

type sessionResponse struct {
	State       companion.State        `json:"state"`
	Progress    float64                `json:"progress"`
	Suggestions []companion.Suggestion `json:"suggestions"`
}

func handleProgress(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		o, ok := deps.Sessions.Get(id)
		if !ok {
			httpError(w, http.StatusNotFound, "not_found", "no open session for book")
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		var req progressRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		book := o.Book()
		var progress float64
		switch {
		case req.Progress != nil:
			progress = *req.Progress
		case req.Page != nil && book.PageCount > 0:
			progress = float64(*req.Page) / float64(book.PageCount)
		default:
			httpError(w, http.StatusBadRequest, "invalid_request_error", "progress or page is required")
			return
		}

		o.UpdateProgress(progress)

		if book.PageCount > 0 {
			page := int(o.Reader().Progress * float64(book.PageCount))
			if err := deps.Store.UpdateBookProgress(id, page); err != nil && !errors.Is(err, storage.ErrNotFound) {
				httpError(w, http.StatusInternalServerError, "api_error", "saving progress: %v", err)
				return
			}
		}

		writeJSON(w, sessionResponse{
			State:       o.SessionState(),
			Progress:    o.Reader().Progress,
			Suggestions: o.PendingSuggestions(),
		})
	}
}

type questionRequest struct {
	Text string `json:"text"`
}

func handleQuestion(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		o, ok := deps.Sessions.Get(id)
		if !ok {
			httpError(w, http.StatusNotFound, "not_found", "no open session for book")
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		var req questionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.Text == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "text is required")
			return
		}

		o.HandleQuestion(req.Text)

		writeJSON(w, sessionResponse{
			State:       o.SessionState(),
			Progress:    o.Reader().Progress,
			Suggestions: o.PendingSuggestions(),
		})
	}
}

type suggestionsResponse struct {
	Show  bool          `json:"show"`
	Pills []bridge.Pill `json:"pills"`
}

func handleSuggestions(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		o, ok := deps.Sessions.Get(id)
		if !ok {
			httpError(w, http.StatusNotFound, "not_found", "no open session for book")
			return
		}

		lastMessage := r.URL.Query().Get("last_message")

		resp := suggestionsResponse{Show: o.ShouldShowSuggestions()}
		if resp.Show {
			resp.Pills = bridge.Build(o.PendingSuggestions(), lastMessage)
		}
		if resp.Pills == nil {
			resp.Pills = []bridge.Pill{}
		}
		writeJSON(w, resp)
	}
}

func handleDismiss(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		o, ok := deps.Sessions.Get(id)
		if !ok {
			httpError(w, http.StatusNotFound, "not_found", "no open session for book")
			return
		}

		o.Dismiss(chi.URLParam(r, "sid"))
		writeJSON(w, map[string]string{"status": "dismissed"})
	}
}

func handleEngage(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		o, ok := deps.Sessions.Get(id)
		if !ok {
			httpError(w, http.StatusNotFound, "not_found", "no open session for book")
			return
		}

		s := o.Engage(chi.URLParam(r, "sid"))
		if s == nil {
			httpError(w, http.StatusNotFound, "not_found", "suggestion not found")
			return
		}
		writeJSON(w, s)
	}
}

// handleResponse engages the suggestion and runs the generation chain. The
// chain never fails; the worst case is the suggestion's built-in text.
func handleResponse(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		o, ok := deps.Sessions.Get(id)
		if !ok {
			httpError(w, http.StatusNotFound, "not_found", "no open session for book")
			return
		}

		s := o.Engage(chi.URLParam(r, "sid"))
		if s == nil {
			httpError(w, http.StatusNotFound, "not_found", "suggestion not found")
			return
		}

		text := deps.Responder.Respond(r.Context(), *s, o.Profile(), o.Reader().Progress)
		writeJSON(w, map[string]string{
			"suggestion_id": s.ID,
			"text":          text,
		})
	}
}

func handleClose(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		if o, ok := deps.Sessions.Get(id); ok {
			book := o.Book()
			if book.PageCount > 0 {
				page := int(o.Reader().Progress * float64(book.PageCount))
				if err := deps.Store.UpdateBookProgress(id, page); err != nil && !errors.Is(err, storage.ErrNotFound) {
					httpError(w, http.StatusInternalServerError, "api_error", "saving progress: %v", err)
					return
				}
			}
		}

		deps.Sessions.Close(id)
		writeJSON(w, map[string]string{"status": "closed"})
	}
}

func handleListInteractions(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		limit := parseIntParam(r, "limit", 20, 100)

		interactions, err := deps.Store.ListInteractions(id, limit)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "listing interactions: %v", err)
			return
		}
		if interactions == nil {
			interactions = []storage.Interaction{}
		}
		writeJSON(w, interactions)
	}
}

func bookFromRecord(rec storage.BookRecord) metadata.Book {
	return metadata.Book{
		ID:            rec.ID,
		Title:         rec.Title,
		Author:        rec.Author,
		Description:   rec.Description,
		PageCount:     rec.PageCount,
		CurrentPage:   rec.CurrentPage,
		PublishedYear: rec.PublishedYear,
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func parseIntParam(r *http.Request, key string, defaultVal, maxVal int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return defaultVal
	}
	if maxVal > 0 && v > maxVal {
		return maxVal
	}
	return v
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
