package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"tripchat/application/services"
	"tripchat/pkg/common"
	"tripchat/pkg/utils"
)

const maxConversationBodyBytes = 1 << 16 // 64KB

// ConversationHandler handles conversation CRUD requests. The authentication
// middleware has already verified that the path user matches the caller.
type ConversationHandler struct {
	convs  *services.ConversationService
	logger *zap.Logger
}

// NewConversationHandler creates a new ConversationHandler
func NewConversationHandler(convs *services.ConversationService, logger *zap.Logger) *ConversationHandler {
	return &ConversationHandler{
		convs:  convs,
		logger: logger,
	}
}

type createConversationRequest struct {
	Title string `json:"title" validate:"required,max=200"`
}

type renameConversationRequest struct {
	Title string `json:"title" validate:"required,max=200"`
}

// List handles GET /{userID}/conversations
func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	convs, err := h.convs.List(r.Context(), userID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, common.Envelope{"conversations": convs})
}

// Create handles POST /{userID}/conversations
func (h *ConversationHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req createConversationRequest
	if err := common.ParseJSONBody(r, &req, maxConversationBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := h.convs.Create(r.Context(), req.Title, userID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, common.Envelope{"conversation_id": id})
}

// Get handles GET /{userID}/conversations/{conversationID}
func (h *ConversationHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	conversationID := chi.URLParam(r, "conversationID")

	conv, err := h.convs.Get(r.Context(), conversationID, userID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, common.Envelope{"conversation": conv})
}

// Rename handles PUT /{userID}/conversations/{conversationID}
func (h *ConversationHandler) Rename(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	conversationID := chi.URLParam(r, "conversationID")

	var req renameConversationRequest
	if err := common.ParseJSONBody(r, &req, maxConversationBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.convs.Rename(r.Context(), conversationID, req.Title, userID); err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, common.Envelope{})
}

// Touch handles PUT /{userID}/conversations/{conversationID}/date, resetting
// the start timestamp so the staleness sweep spares the conversation.
func (h *ConversationHandler) Touch(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	conversationID := chi.URLParam(r, "conversationID")

	if err := h.convs.Touch(r.Context(), conversationID, userID); err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, common.Envelope{})
}

// Delete handles DELETE /{userID}/conversations/{conversationID}
func (h *ConversationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	conversationID := chi.URLParam(r, "conversationID")

	deleted, err := h.convs.Delete(r.Context(), conversationID, userID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, common.Envelope{"deleted": deleted})
}

// Messages handles GET /{userID}/conversations/{conversationID}/messages
func (h *ConversationHandler) Messages(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	conversationID := chi.URLParam(r, "conversationID")

	msgs, err := h.convs.Messages(r.Context(), conversationID, userID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, common.Envelope{"messages": msgs})
}
