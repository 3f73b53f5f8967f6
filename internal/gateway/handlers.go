package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/flemzord/parley/internal/render"
	"github.com/flemzord/parley/internal/session"
)

// exportFilenameLayout names downloaded conversations.
const exportFilenameLayout = "conversation_20060102_150405.json"

type chatRequest struct {
	Message *string `json:"message"`
}

type chatResponse struct {
	Response            string `json:"response"`
	FormattedResponse   string `json:"formatted_response"`
	Timestamp           string `json:"timestamp"`
	ConversationSummary string `json:"conversation_summary"`
}

type historyEntry struct {
	Role             string `json:"role"`
	Content          string `json:"content"`
	FormattedContent string `json:"formatted_content"`
	Timestamp        string `json:"timestamp"`
}

type historyResponse struct {
	History []historyEntry `json:"history"`
	Summary string         `json:"summary"`
}

type exportResponse struct {
	Conversation string `json:"conversation"`
	Filename     string `json:"filename"`
}

type importRequest struct {
	Conversation *string `json:"conversation"`
}

type messageResponse struct {
	Message string `json:"message"`
	Summary string `json:"summary,omitempty"`
}

type systemPromptRequest struct {
	SystemPrompt *string `json:"system_prompt"`
}

type systemPromptResponse struct {
	SystemPrompt string `json:"system_prompt"`
}

// handleChat runs one turn. Remote failures surface as 500 with the
// failure description.
func (g *Gateway) handleChat() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if req.Message == nil || strings.TrimSpace(*req.Message) == "" {
			writeError(w, http.StatusBadRequest, "Message cannot be empty")
			return
		}

		reply, err := g.chat.Send(r.Context(), *req.Message)
		if err != nil {
			switch {
			case errors.Is(err, session.ErrEmptyContent):
				writeError(w, http.StatusBadRequest, "Message cannot be empty")
			case errors.Is(err, context.Canceled):
				g.logger.Info("client abandoned chat request", "op", "chat")
			default:
				writeError(w, http.StatusInternalServerError, err.Error())
			}
			return
		}

		writeJSON(w, http.StatusOK, chatResponse{
			Response:            reply.Content,
			FormattedResponse:   g.formatHTML(reply.Content),
			Timestamp:           reply.Timestamp.Format(time.RFC3339Nano),
			ConversationSummary: reply.Summary,
		})
	}
}

func (g *Gateway) handleClear() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		g.chat.Clear()
		writeJSON(w, http.StatusOK, messageResponse{Message: "Conversation history cleared"})
	}
}

func (g *Gateway) handleHistory() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		sess := g.chat.Session()
		history := sess.History()

		entries := make([]historyEntry, 0, len(history))
		for _, msg := range history {
			entries = append(entries, historyEntry{
				Role:             string(msg.Role),
				Content:          msg.Content,
				FormattedContent: g.formatHTML(msg.Content),
				Timestamp:        msg.Timestamp.Format(time.RFC3339Nano),
			})
		}

		writeJSON(w, http.StatusOK, historyResponse{
			History: entries,
			Summary: sess.Summary(),
		})
	}
}

func (g *Gateway) handleExport() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		data, err := g.chat.Session().Export()
		if err != nil {
			g.logger.Error("conversation export failed", "op", "export", "error", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		writeJSON(w, http.StatusOK, exportResponse{
			Conversation: string(data),
			Filename:     g.now().Format(exportFilenameLayout),
		})
	}
}

func (g *Gateway) handleImport() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req importRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if req.Conversation == nil {
			writeError(w, http.StatusBadRequest, "Conversation data is required")
			return
		}

		sess := g.chat.Session()
		if err := g.chat.Import([]byte(*req.Conversation)); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, messageResponse{
			Message: fmt.Sprintf("Imported %d messages", sess.Len()),
			Summary: sess.Summary(),
		})
	}
}

func (g *Gateway) handleGetSystemPrompt() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, systemPromptResponse{
			SystemPrompt: g.chat.Session().Instructions(),
		})
	}
}

func (g *Gateway) handleSetSystemPrompt() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req systemPromptRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if req.SystemPrompt == nil || strings.TrimSpace(*req.SystemPrompt) == "" {
			writeError(w, http.StatusBadRequest, "System prompt cannot be empty")
			return
		}

		g.chat.Session().SetInstructions(*req.SystemPrompt)
		writeJSON(w, http.StatusOK, messageResponse{Message: "System prompt updated successfully"})
	}
}

// formatHTML renders markdown for display, falling back to the raw text.
func (g *Gateway) formatHTML(content string) string {
	html, err := render.HTML(content)
	if err != nil {
		g.logger.Warn("formatting failed, returning raw text", "op", "render", "error", err)
		return content
	}
	return html
}
