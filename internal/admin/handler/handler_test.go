package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"dupguard/internal/notification/models"
	"dupguard/internal/notification/store"
	"dupguard/internal/platform/jwttoken"
	"dupguard/internal/platform/logger"
	"dupguard/internal/platform/middleware"
	id "dupguard/pkg/domain"
)

type AdminHandlerSuite struct {
	suite.Suite
	notifications *store.InMemory
	tokens        *jwttoken.Service
	router        *chi.Mux
}

func (s *AdminHandlerSuite) SetupTest() {
	s.notifications = store.NewInMemory()
	s.tokens = jwttoken.NewService("test-signing-key", "dupguard-test")

	h := New(s.notifications, logger.Discard())
	s.router = chi.NewRouter()
	s.router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin(s.tokens, logger.Discard()))
		h.Register(r)
	})
}

func TestAdminHandlerSuite(t *testing.T) {
	suite.Run(t, new(AdminHandlerSuite))
}

func (s *AdminHandlerSuite) seed(triggeredBy string, createdAt time.Time) *models.Notification {
	n := &models.Notification{
		ID:          id.NewNotificationID(),
		Severity:    models.SeverityCritical,
		TargetRole:  "admin",
		Report:      "Duplicate account report",
		AccountID:   id.NewAccountID(),
		TriggeredBy: triggeredBy,
		CreatedAt:   createdAt,
	}
	s.Require().NoError(s.notifications.Create(context.Background(), n))
	return n
}

func (s *AdminHandlerSuite) do(method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *AdminHandlerSuite) adminToken() string {
	token, err := s.tokens.GenerateAdminToken("ops@example.com", time.Hour)
	s.Require().NoError(err)
	return token
}

func (s *AdminHandlerSuite) TestListRequiresAuth() {
	rec := s.do(http.MethodGet, "/admin/notifications", "")
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *AdminHandlerSuite) TestListNewestFirst() {
	older := s.seed("bank", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	newer := s.seed("ktp", time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC))

	rec := s.do(http.MethodGet, "/admin/notifications", s.adminToken())
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Notifications []NotificationResponse `json:"notifications"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Require().Len(resp.Notifications, 2)
	s.Equal(newer.ID.String(), resp.Notifications[0].ID)
	s.Equal(older.ID.String(), resp.Notifications[1].ID)
}

func (s *AdminHandlerSuite) TestListUnreadOnly() {
	read := s.seed("bank", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	s.Require().NoError(s.notifications.MarkRead(context.Background(), read.ID))
	unread := s.seed("whatsapp", time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC))

	rec := s.do(http.MethodGet, "/admin/notifications?unread_only=true", s.adminToken())
	s.Require().Equal(http.StatusOK, rec.Code)

	var resp struct {
		Notifications []NotificationResponse `json:"notifications"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Require().Len(resp.Notifications, 1)
	s.Equal(unread.ID.String(), resp.Notifications[0].ID)
}

func (s *AdminHandlerSuite) TestListRejectsBadLimit() {
	rec := s.do(http.MethodGet, "/admin/notifications?limit=0", s.adminToken())
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodGet, "/admin/notifications?limit=beaucoup", s.adminToken())
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *AdminHandlerSuite) TestMarkRead() {
	n := s.seed("ktp", time.Now())

	rec := s.do(http.MethodPost, "/admin/notifications/"+n.ID.String()+"/read", s.adminToken())
	s.Require().Equal(http.StatusNoContent, rec.Code, rec.Body.String())

	list, err := s.notifications.List(context.Background(), false, 0)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.True(list[0].Read)

	// Marking again is an idempotent success.
	rec = s.do(http.MethodPost, "/admin/notifications/"+n.ID.String()+"/read", s.adminToken())
	s.Equal(http.StatusNoContent, rec.Code)
}

func (s *AdminHandlerSuite) TestMarkReadUnknownNotification() {
	rec := s.do(http.MethodPost, "/admin/notifications/"+id.NewNotificationID().String()+"/read", s.adminToken())
	s.Equal(http.StatusNotFound, rec.Code)
}
