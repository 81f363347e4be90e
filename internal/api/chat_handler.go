package api

import (
	"net/http"

	"github.com/hal9000y/mail-triage/internal/llm"
)

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Success bool   `json:"success"`
	Reply   string `json:"reply"`
	Model   string `json:"model"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) error {
	var req chatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	if req.Message == "" {
		return badRequest("Message is required")
	}

	reply, err := s.deps.LLM.Complete(r.Context(), llm.ChatRequest(req.Message))
	if err != nil {
		return internal("OpenAI API error", err)
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Success: true,
		Reply:   reply,
		Model:   s.deps.LLM.Model(),
	})
	return nil
}
