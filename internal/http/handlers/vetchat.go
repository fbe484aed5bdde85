package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"server/internal/vetchat"
)

type vetChatRequest struct {
	Question string            `json:"question"`
	History  []vetchat.Message `json:"history"`
}

type vetChatResponse struct {
	Answer   string `json:"answer"`
	Provider string `json:"provider"`
}

const maxChatHistory = 20

// VetChat answers a pet-health question with optional chat history.
func (a *App) VetChat(w http.ResponseWriter, r *http.Request) {
	var req vetChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "question is required")
		return
	}
	if len(req.History) > maxChatHistory {
		req.History = req.History[len(req.History)-maxChatHistory:]
	}

	answer, err := a.Vet.Answer(r.Context(), req.Question, req.History)
	if err != nil {
		a.Logger.Error().Err(err).Str("provider", a.Vet.Name()).Msg("vet chat answer failed")
		a.error(w, http.StatusBadGateway, "upstream", "assistant unavailable")
		return
	}
	a.json(w, http.StatusOK, vetChatResponse{Answer: answer, Provider: a.Vet.Name()})
}
