package services

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	mW "github.com/walletfc/backend/internal/middleware"
	"github.com/walletfc/backend/internal/models"
)

type NotificationStore interface {
	ListNotifications(ctx context.Context, userID string) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, id, userID string) error
}

type NotificationService struct {
	store NotificationStore
}

func NewNotificationService(store NotificationStore) *NotificationService {
	return &NotificationService{store: store}
}

// ListNotifications returns the caller's notifications, newest first
// @Summary List notifications
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Notification
// @Router /notifications [get]
func (s *NotificationService) ListNotifications(w http.ResponseWriter, r *http.Request) {
	identity, ok := mW.IdentityFrom(r.Context())
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	notes, err := s.store.ListNotifications(r.Context(), identity.ID)
	if err != nil {
		SendLedgerError(w, "NOTIFY", err)
		return
	}
	if notes == nil {
		notes = []models.Notification{}
	}
	writeJSON(w, http.StatusOK, notes)
}

// MarkRead marks one of the caller's notifications as read
// @Summary Mark notification read
// @Tags notifications
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /notifications/{id}/read [patch]
func (s *NotificationService) MarkRead(w http.ResponseWriter, r *http.Request) {
	identity, ok := mW.IdentityFrom(r.Context())
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	if err := s.store.MarkNotificationRead(r.Context(), chi.URLParam(r, "id"), identity.ID); err != nil {
		SendLedgerError(w, "NOTIFY", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
