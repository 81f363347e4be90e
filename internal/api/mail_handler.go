package api

import (
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/hal9000y/mail-triage/internal/logger"
	"github.com/hal9000y/mail-triage/internal/mail"
	"github.com/hal9000y/mail-triage/internal/session"
	"github.com/hal9000y/mail-triage/internal/triage"
)

const noUnreadMessage = "No unread emails found"

type fetchEmailsRequest struct {
	UserID string `json:"user_id"`
}

type fetchEmailsResponse struct {
	Success bool         `json:"success"`
	Emails  []mail.Email `json:"emails"`
	Count   int          `json:"count"`
	Message string       `json:"message,omitempty"`
}

func (s *Server) handleFetchEmails(w http.ResponseWriter, r *http.Request) error {
	var req fetchEmailsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	if req.UserID == "" {
		return badRequest("User ID is required")
	}

	sess, err := s.deps.Sessions.Get(r.Context(), req.UserID)
	if errors.Is(err, session.ErrNotAuthenticated) {
		return unauthorized("User not authenticated")
	}
	if err != nil {
		return internal("Error fetching emails", fmt.Errorf("sessions.Get failed: %w", err))
	}

	msgs, err := s.deps.Mailbox.UnreadMessages(r.Context(), sess)
	if err != nil {
		return internal("Error fetching emails", err)
	}

	emails := make([]mail.Email, 0, len(msgs))
	for _, msg := range msgs {
		emails = append(emails, s.deps.Normalizer.Normalize(msg))
	}

	logger.WithRequest(r.Context(), s.log).Info("fetched unread emails",
		zap.String("sub", req.UserID),
		zap.Int("count", len(emails)),
	)

	resp := fetchEmailsResponse{Success: true, Emails: emails, Count: len(emails)}
	if len(emails) == 0 {
		resp.Message = noUnreadMessage
	}

	writeJSON(w, http.StatusOK, resp)
	return nil
}

type prioritizeEmailsRequest struct {
	Emails []mail.Email `json:"emails"`
}

type prioritizeEmailsResponse struct {
	Success bool `json:"success"`
	triage.Result
}

func (s *Server) handlePrioritizeEmails(w http.ResponseWriter, r *http.Request) error {
	var req prioritizeEmailsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}

	res, err := s.deps.Prioritizer.Prioritize(r.Context(), req.Emails)
	if errors.Is(err, triage.ErrNoEmails) {
		return badRequest("No emails provided")
	}
	if err != nil {
		return internal("Error prioritizing emails", err)
	}

	writeJSON(w, http.StatusOK, prioritizeEmailsResponse{Success: true, Result: res})
	return nil
}
