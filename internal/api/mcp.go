package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/holloway/lector/internal/bridge"
	"github.com/holloway/lector/internal/generate"
	"github.com/holloway/lector/internal/metadata"
	"github.com/holloway/lector/internal/profiler"
	"github.com/holloway/lector/internal/storage"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Store     *storage.Store
	Profiler  *profiler.Profiler
	Sessions  *Sessions
	Responder *generate.Pipeline
}

// NewMCPServer creates an MCP server with all lector tools and resources
// registered. Agent hosts drive the companion through these tools the same
// way the HTTP surface does.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"lector",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("lector reading companion: book difficulty profiles, spoiler-safe discussion boundaries, and proactive reading suggestions."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("open_book",
			mcp.WithDescription("Open a book for a reading session and return its difficulty profile and initial suggestions."),
			mcp.WithString("title", mcp.Description("Book title"), mcp.Required()),
			mcp.WithString("author", mcp.Description("Author name")),
			mcp.WithString("description", mcp.Description("Publisher or store description")),
			mcp.WithNumber("page_count", mcp.Description("Total number of pages")),
			mcp.WithNumber("current_page", mcp.Description("Reader's current page")),
			mcp.WithString("published_year", mcp.Description("Year of first publication")),
			mcp.WithString("id", mcp.Description("Stable book id; omit to generate one")),
		),
		mcpOpenBook(deps),
	)

	s.AddTool(
		mcp.NewTool("reading_progress",
			mcp.WithDescription("Report new reading progress for an open book. Returns session state and pending suggestions."),
			mcp.WithString("book_id", mcp.Description("Book id"), mcp.Required()),
			mcp.WithNumber("progress", mcp.Description("Progress as a fraction in [0,1]"), mcp.Required()),
		),
		mcpReadingProgress(deps),
	)

	s.AddTool(
		mcp.NewTool("ask_companion",
			mcp.WithDescription("Record a reader question so the companion can track confusion and adjust its suggestions."),
			mcp.WithString("book_id", mcp.Description("Book id"), mcp.Required()),
			mcp.WithString("text", mcp.Description("The reader's question"), mcp.Required()),
		),
		mcpAskCompanion(deps),
	)

	s.AddTool(
		mcp.NewTool("list_suggestions",
			mcp.WithDescription("List the renderable suggestion pills for an open book."),
			mcp.WithString("book_id", mcp.Description("Book id"), mcp.Required()),
			mcp.WithString("last_message", mcp.Description("The companion's last message, for reactive question pills")),
		),
		mcpListSuggestions(deps),
	)

	s.AddTool(
		mcp.NewTool("dismiss_suggestion",
			mcp.WithDescription("Dismiss a pending suggestion."),
			mcp.WithString("book_id", mcp.Description("Book id"), mcp.Required()),
			mcp.WithString("suggestion_id", mcp.Description("Suggestion id"), mcp.Required()),
		),
		mcpDismissSuggestion(deps),
	)

	s.AddTool(
		mcp.NewTool("engage_suggestion",
			mcp.WithDescription("Engage a pending suggestion and return its full prompt."),
			mcp.WithString("book_id", mcp.Description("Book id"), mcp.Required()),
			mcp.WithString("suggestion_id", mcp.Description("Suggestion id"), mcp.Required()),
		),
		mcpEngageSuggestion(deps),
	)

	s.AddTool(
		mcp.NewTool("companion_response",
			mcp.WithDescription("Engage a suggestion and generate the companion's spoiler-safe response text."),
			mcp.WithString("book_id", mcp.Description("Book id"), mcp.Required()),
			mcp.WithString("suggestion_id", mcp.Description("Suggestion id"), mcp.Required()),
		),
		mcpCompanionResponse(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"lector://books",
			"Registered Books",
			mcp.WithResourceDescription("All registered books with stored reading positions"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceBooks(deps),
	)

	return s
}

func mcpOpenBook(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		title, err := req.RequireString("title")
		if err != nil {
			return mcpError("title is required"), nil
		}

		book := metadata.Book{
			ID:            req.GetString("id", ""),
			Title:         title,
			Author:        req.GetString("author", ""),
			Description:   req.GetString("description", ""),
			PageCount:     req.GetInt("page_count", 0),
			CurrentPage:   req.GetInt("current_page", 0),
			PublishedYear: req.GetString("published_year", ""),
		}
		if book.ID == "" {
			book.ID = uuid.New().String()
		}

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
			return mcpError(fmt.Sprintf("failed to save book: %v", err)), nil
		}

		o, p := deps.Sessions.Open(book)

		tables := deps.Profiler.Tables()
		score := tables.IntimidationScore(p)

		return mcpJSON(openBookResponse{
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

func mcpReadingProgress(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		bookID, err := req.RequireString("book_id")
		if err != nil {
			return mcpError("book_id is required"), nil
		}
		progress, err := req.RequireFloat("progress")
		if err != nil {
			return mcpError("progress is required"), nil
		}

		o, ok := deps.Sessions.Get(bookID)
		if !ok {
			return mcpError("no open session for book"), nil
		}

		o.UpdateProgress(progress)

		book := o.Book()
		if book.PageCount > 0 {
			page := int(o.Reader().Progress * float64(book.PageCount))
			if err := deps.Store.UpdateBookProgress(bookID, page); err != nil && !errors.Is(err, storage.ErrNotFound) {
				return mcpError(fmt.Sprintf("failed to save progress: %v", err)), nil
			}
		}

		return mcpJSON(sessionResponse{
			State:       o.SessionState(),
			Progress:    o.Reader().Progress,
			Suggestions: o.PendingSuggestions(),
		})
	}
}

func mcpAskCompanion(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		bookID, err := req.RequireString("book_id")
		if err != nil {
			return mcpError("book_id is required"), nil
		}
		text, err := req.RequireString("text")
		if err != nil {
			return mcpError("text is required"), nil
		}

		o, ok := deps.Sessions.Get(bookID)
		if !ok {
			return mcpError("no open session for book"), nil
		}

		o.HandleQuestion(text)

		return mcpJSON(sessionResponse{
			State:       o.SessionState(),
			Progress:    o.Reader().Progress,
			Suggestions: o.PendingSuggestions(),
		})
	}
}

func mcpListSuggestions(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		bookID, err := req.RequireString("book_id")
		if err != nil {
			return mcpError("book_id is required"), nil
		}

		o, ok := deps.Sessions.Get(bookID)
		if !ok {
			return mcpError("no open session for book"), nil
		}

		resp := suggestionsResponse{Show: o.ShouldShowSuggestions()}
		if resp.Show {
			resp.Pills = bridge.Build(o.PendingSuggestions(), req.GetString("last_message", ""))
		}
		if resp.Pills == nil {
			resp.Pills = []bridge.Pill{}
		}
		return mcpJSON(resp)
	}
}

func mcpDismissSuggestion(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		bookID, err := req.RequireString("book_id")
		if err != nil {
			return mcpError("book_id is required"), nil
		}
		sid, err := req.RequireString("suggestion_id")
		if err != nil {
			return mcpError("suggestion_id is required"), nil
		}

		o, ok := deps.Sessions.Get(bookID)
		if !ok {
			return mcpError("no open session for book"), nil
		}

		o.Dismiss(sid)
		return mcpText("dismissed"), nil
	}
}

func mcpEngageSuggestion(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		bookID, err := req.RequireString("book_id")
		if err != nil {
			return mcpError("book_id is required"), nil
		}
		sid, err := req.RequireString("suggestion_id")
		if err != nil {
			return mcpError("suggestion_id is required"), nil
		}

		o, ok := deps.Sessions.Get(bookID)
		if !ok {
			return mcpError("no open session for book"), nil
		}

		s := o.Engage(sid)
		if s == nil {
			return mcpError("suggestion not found"), nil
		}
		return mcpJSON(s)
	}
}

func mcpCompanionResponse(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		bookID, err := req.RequireString("book_id")
		if err != nil {
			return mcpError("book_id is required"), nil
		}
		sid, err := req.RequireString("suggestion_id")
		if err != nil {
			return mcpError("suggestion_id is required"), nil
		}

		o, ok := deps.Sessions.Get(bookID)
		if !ok {
			return mcpError("no open session for book"), nil
		}

		s := o.Engage(sid)
		if s == nil {
			return mcpError("suggestion not found"), nil
		}

		text := deps.Responder.Respond(ctx, *s, o.Profile(), o.Reader().Progress)
		return mcpText(text), nil
	}
}

func mcpResourceBooks(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		books, err := deps.Store.ListBooks()
		if err != nil {
			return nil, fmt.Errorf("failed to list books: %w", err)
		}

		type bookSummary struct {
			ID          string `json:"id"`
			Title       string `json:"title"`
			Author      string `json:"author,omitempty"`
			PageCount   int    `json:"page_count,omitempty"`
			CurrentPage int    `json:"current_page,omitempty"`
		}

		summaries := make([]bookSummary, len(books))
		for i, b := range books {
			summaries[i] = bookSummary{
				ID:          b.ID,
				Title:       b.Title,
				Author:      b.Author,
				PageCount:   b.PageCount,
				CurrentPage: b.CurrentPage,
			}
		}

		b, err := json.Marshal(summaries)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal books: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpJSON(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return mcpError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcpText(string(b)), nil
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
