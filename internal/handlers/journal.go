package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/mindful-journal/journal-backend/internal/middleware"
	"github.com/mindful-journal/journal-backend/internal/services"
)

const storeTimeout = 5 * time.Second

type JournalHandler struct {
	journals *services.JournalService
	log      logrus.FieldLogger
}

func NewJournalHandler(journals *services.JournalService, log logrus.FieldLogger) *JournalHandler {
	return &JournalHandler{journals: journals, log: log}
}

// GetJournals returns the authenticated user's entries, newest first.
func (h *JournalHandler) GetJournals(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	journals, err := h.journals.List(ctx, userID)
	if err != nil {
		h.fail(w, err, userID, "Failed to fetch journals")
		return
	}
	writeJSON(w, http.StatusOK, journals)
}

// CreateJournal creates a new journal entry owned by the session user; any
// owner in the body is ignored.
func (h *JournalHandler) CreateJournal(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	var req services.CreateJournalInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	journal, err := h.journals.Create(ctx, userID, req)
	if err != nil {
		h.fail(w, err, userID, "Failed to create journal entry")
		return
	}
	writeJSON(w, http.StatusOK, journal)
}

func (h *JournalHandler) GetJournal(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	journal, err := h.journals.Get(ctx, userID, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err, userID, "Failed to fetch journal")
		return
	}
	writeJSON(w, http.StatusOK, journal)
}

func (h *JournalHandler) UpdateJournal(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	var req services.UpdateJournalInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	journal, err := h.journals.Update(ctx, userID, chi.URLParam(r, "id"), req)
	if err != nil {
		h.fail(w, err, userID, "Failed to update journal")
		return
	}
	writeJSON(w, http.StatusOK, journal)
}

func (h *JournalHandler) DeleteJournal(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	if err := h.journals.Delete(ctx, userID, chi.URLParam(r, "id")); err != nil {
		h.fail(w, err, userID, "Failed to delete journal")
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Journal deleted successfully"})
}

func (h *JournalHandler) fail(w http.ResponseWriter, err error, userID, msg string) {
	if errors.Is(err, services.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Journal not found")
		return
	}
	h.log.WithError(err).WithField("user_id", userID).Error(msg)
	writeError(w, http.StatusInternalServerError, msg)
}
