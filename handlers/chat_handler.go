package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/adilhn/supportflow/db"
)

// ChatHandler exposes the user and conversation store over HTTP.
type ChatHandler struct {
	Store  *db.Store
	Logger *slog.Logger
}

func NewChatHandler(store *db.Store, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{Store: store, Logger: logger}
}

func (h *ChatHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Email       string `json:"email"`
		PhoneNumber string `json:"phone_number"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" || req.PhoneNumber == "" {
		writeJSONError(w, http.StatusBadRequest, "name, email and phone_number are required")
		return
	}

	user, err := h.Store.CreateUser(r.Context(), req.Name, req.Email, req.PhoneNumber)
	if err != nil {
		h.Logger.Error("Failed to create user", slog.String("error", err.Error()))
		writeJSONError(w, http.StatusConflict, "Failed to create user")
		return
	}

	// New users start with a seeded conversation, like the permanent test user.
	if _, err := h.Store.CreateDefaultChatHistory(r.Context(), user.ID); err != nil {
		h.Logger.Warn("Failed to seed default chat history",
			slog.Int64("user_id", user.ID), slog.String("error", err.Error()))
	}

	writeJSON(w, http.StatusCreated, user)
}

func (h *ChatHandler) ListChatHistories(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if _, err := h.Store.GetUser(r.Context(), userID); err == db.ErrNotFound {
		writeJSONError(w, http.StatusNotFound, "User not found")
		return
	} else if err != nil {
		h.Logger.Error("Failed to read user", slog.String("error", err.Error()))
		writeJSONError(w, http.StatusInternalServerError, "Failed to read user")
		return
	}

	histories, err := h.Store.ListChatHistories(r.Context(), userID)
	if err != nil {
		h.Logger.Error("Failed to list chat histories", slog.String("error", err.Error()))
		writeJSONError(w, http.StatusInternalServerError, "Failed to list chat histories")
		return
	}
	if histories == nil {
		histories = []db.ChatHistory{}
	}
	writeJSON(w, http.StatusOK, histories)
}

func (h *ChatHandler) CreateChatHistory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID int64  `json:"user_id"`
		Title  string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UserID == 0 {
		writeJSONError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	history, err := h.Store.CreateChatHistory(r.Context(), req.UserID, req.Title)
	if err != nil {
		h.Logger.Error("Failed to create chat history", slog.String("error", err.Error()))
		writeJSONError(w, http.StatusInternalServerError, "Failed to create chat history")
		return
	}
	writeJSON(w, http.StatusCreated, history)
}

func (h *ChatHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	chatHistoryID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	messages, err := h.Store.ListMessages(r.Context(), chatHistoryID)
	if err != nil {
		h.Logger.Error("Failed to list messages", slog.String("error", err.Error()))
		writeJSONError(w, http.StatusInternalServerError, "Failed to list messages")
		return
	}
	if messages == nil {
		messages = []db.Message{}
	}
	writeJSON(w, http.StatusOK, messages)
}

func (h *ChatHandler) CreateMessage(w http.ResponseWriter, r *http.Request) {
	chatHistoryID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Content == "" {
		writeJSONError(w, http.StatusBadRequest, "content is required")
		return
	}

	message, err := h.Store.CreateMessage(r.Context(), chatHistoryID, req.Role, req.Content)
	if err != nil {
		h.Logger.Error("Failed to create message", slog.String("error", err.Error()))
		writeJSONError(w, http.StatusBadRequest, "Failed to create message")
		return
	}
	writeJSON(w, http.StatusCreated, message)
}

func pathID(w http.ResponseWriter, r *http.Request, key string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[key], 10, 64)
	if err != nil || id <= 0 {
		writeJSONError(w, http.StatusBadRequest, "Invalid id in path")
		return 0, false
	}
	return id, true
}
