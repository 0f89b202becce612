package v1

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/grambharat/gramsathi/store"
)

type chatSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func summarize(chat *store.Chat) chatSummary {
	return chatSummary{
		ID:        chat.ID,
		Title:     chat.Title,
		CreatedAt: chat.CreatedAt,
		UpdatedAt: chat.UpdatedAt,
	}
}

// ListChats returns all chat summaries, most recently updated first.
func (s *APIV1Service) ListChats(c echo.Context) error {
	chats, err := s.Store.ListChats(c.Request().Context())
	if err != nil {
		slog.Error("failed to list chats", "error", err)
		return c.JSON(http.StatusInternalServerError, errorBody("Failed to fetch chats"))
	}
	summaries := make([]chatSummary, 0, len(chats))
	for _, chat := range chats {
		summaries = append(summaries, summarize(chat))
	}
	return c.JSON(http.StatusOK, summaries)
}

func (s *APIV1Service) CreateChat(c echo.Context) error {
	chat, err := s.Store.CreateChat(c.Request().Context())
	if err != nil {
		slog.Error("failed to create chat", "error", err)
		return c.JSON(http.StatusInternalServerError, errorBody("Failed to create chat"))
	}
	slog.Info("created new chat", "chat_id", chat.ID)
	return c.JSON(http.StatusOK, summarize(chat))
}

// DeleteChat removes a chat. Unknown ids succeed as well.
func (s *APIV1Service) DeleteChat(c echo.Context) error {
	chatID := c.Param("chatId")
	if err := s.Store.DeleteChat(c.Request().Context(), chatID); err != nil {
		slog.Error("failed to delete chat", "chat_id", chatID, "error", err)
		return c.JSON(http.StatusInternalServerError, errorBody("Failed to delete chat"))
	}
	slog.Info("deleted chat", "chat_id", chatID)
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

func (s *APIV1Service) GetMessages(c echo.Context) error {
	chat, err := s.Store.GetChat(c.Request().Context(), c.Param("chatId"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, errorBody("Chat not found"))
		}
		slog.Error("failed to load chat", "error", err)
		return c.JSON(http.StatusInternalServerError, errorBody("Failed to fetch messages"))
	}
	return c.JSON(http.StatusOK, chat.Messages)
}

type switchRequest struct {
	ActiveIndex int `json:"activeIndex"`
}

// SwitchAlternative activates a previously generated alternative of an
// assistant message.
func (s *APIV1Service) SwitchAlternative(c echo.Context) error {
	chatID := c.Param("chatId")
	msgIndex, err := strconv.Atoi(c.Param("msgIndex"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("Invalid message index"))
	}

	var req switchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("Invalid request body"))
	}

	content, err := s.Store.SwitchAlternative(c.Request().Context(), chatID, msgIndex, req.ActiveIndex)
	switch {
	case err == nil:
	case errors.Is(err, store.ErrNotFound):
		return c.JSON(http.StatusNotFound, errorBody("Chat not found"))
	case errors.Is(err, store.ErrInvalidMessageIndex):
		return c.JSON(http.StatusBadRequest, errorBody("Invalid message index"))
	case errors.Is(err, store.ErrNoAlternatives):
		return c.JSON(http.StatusBadRequest, errorBody("No alternatives for this message"))
	case errors.Is(err, store.ErrInvalidAlternative):
		return c.JSON(http.StatusBadRequest, errorBody("Invalid alternative index"))
	default:
		slog.Error("failed to switch alternative", "chat_id", chatID, "error", err)
		return c.JSON(http.StatusInternalServerError, errorBody("Failed to switch alternative"))
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"content": content,
	})
}

func errorBody(message string) map[string]string {
	return map[string]string{"error": message}
}
