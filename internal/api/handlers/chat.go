package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/accountant-ai/backend/internal/agent"
	"github.com/accountant-ai/backend/internal/api/middleware"
	"github.com/accountant-ai/backend/internal/domain"
)

// ChatHandler answers finance questions against the user's loaded data.
type ChatHandler struct {
	svc ChatService
	log zerolog.Logger
}

func NewChatHandler(svc ChatService, log zerolog.Logger) *ChatHandler {
	return &ChatHandler{svc: svc, log: log}
}

type chatRequest struct {
	UserID      string `json:"user_id"`
	Message     string `json:"message"`
	Personality string `json:"personality"`
	IsPayday    bool   `json:"is_payday"`
}

type chatResponse struct {
	AgentUsed       string `json:"agent_used"`
	Response        string `json:"response"`
	Tone            string `json:"tone"`
	ToneDescription string `json:"tone_description"`
}

// Chat validates the request, then routes it through the agent service.
// An unknown personality is rejected before any model call is made.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req.UserID = strings.TrimSpace(req.UserID)
	req.Message = strings.TrimSpace(req.Message)
	if req.UserID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	if req.Message == "" {
		middleware.WriteError(w, http.StatusBadRequest, "message is required")
		return
	}

	personality, err := domain.ParsePersonality(req.Personality)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.svc.Chat(r.Context(), agent.ChatRequest{
		UserID:              req.UserID,
		Message:             req.Message,
		Personality:         personality,
		PersonalityExplicit: strings.TrimSpace(req.Personality) != "",
		IsPayday:            req.IsPayday,
	})
	if err != nil {
		h.log.Error().Err(err).Str("user_id", req.UserID).Msg("chat failed")
		middleware.WriteTaxonomyError(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, chatResponse{
		AgentUsed:       string(result.AgentUsed),
		Response:        result.Response,
		Tone:            string(result.Tone),
		ToneDescription: result.ToneDescription,
	})
}
