package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"tripchat/application/services"
	"tripchat/pkg/common"
	"tripchat/pkg/utils"
)

const maxMessageBodyBytes = 1 << 20 // 1MB

// MessageHandler handles POST requests that run a full chat turn
type MessageHandler struct {
	chat   *services.ChatService
	logger *zap.Logger
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(chat *services.ChatService, logger *zap.Logger) *MessageHandler {
	return &MessageHandler{
		chat:   chat,
		logger: logger,
	}
}

type sendMessageRequest struct {
	Question string `json:"question" validate:"required"`
	Tag      string `json:"tag"`
}

// Send handles POST /{userID}/conversations/{conversationID}/messages. The
// caller's own bearer token is forwarded to the reasoning pipeline so it can
// call back into the tool endpoints on the user's behalf.
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	conversationID := chi.URLParam(r, "conversationID")

	var req sendMessageRequest
	if err := common.ParseJSONBody(r, &req, maxMessageBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	bearer := bearerFromHeader(r)

	result, err := h.chat.SendMessage(r.Context(), userID, conversationID, req.Question, req.Tag, bearer)
	if err != nil {
		h.logger.Error("Chat turn failed",
			zap.Error(err),
			zap.String("conversationID", conversationID),
		)
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, common.Envelope{
		"respuesta": result.Reply,
		"usage":     result.Usage,
	})
}

func bearerFromHeader(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}
	return ""
}
