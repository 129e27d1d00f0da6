package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"dupguard/internal/account/store"
	"dupguard/internal/platform/logger"
	"dupguard/internal/registration"
)

type HandlerSuite struct {
	suite.Suite
	accounts *store.InMemory
	router   *chi.Mux
}

func (s *HandlerSuite) SetupTest() {
	s.accounts = store.NewInMemory()

	svc, err := registration.New(s.accounts, nil)
	s.Require().NoError(err)

	h := New(svc, logger.Discard())
	s.router = chi.NewRouter()
	h.Register(s.router)
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) register(body RegisterRequest) AccountResponse {
	rec := s.do(http.MethodPost, "/providers", body)
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var resp AccountResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func (s *HandlerSuite) TestRegister() {
	resp := s.register(RegisterRequest{
		Kind:           "provider-individual",
		Name:           "Sari Wellness",
		WhatsappNumber: "+62 812-3456-7890",
	})

	s.NotEmpty(resp.ID)
	s.Equal("provider-individual", resp.Kind)
	s.Equal("Sari Wellness", resp.Name)
	s.True(resp.IsActive)
	s.False(resp.FlaggedForReview)
}

func (s *HandlerSuite) TestRegisterRejectsUnknownKind() {
	rec := s.do(http.MethodPost, "/providers", RegisterRequest{
		Kind: "admin",
		Name: "Nope",
	})
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlerSuite) TestRegisterRejectsMalformedBody() {
	req := httptest.NewRequest(http.MethodPost, "/providers", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlerSuite) TestUpdateProfile() {
	created := s.register(RegisterRequest{
		Kind: "provider-place",
		Name: "Lotus Spa",
	})

	bank := "BCA"
	number := "1234567890"
	rec := s.do(http.MethodPatch, "/providers/"+created.ID, UpdateProfileRequest{
		BankName:          &bank,
		BankAccountNumber: &number,
	})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var resp AccountResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal("BCA", resp.BankName)
	s.Equal("1234567890", resp.BankAccountNumber)
	s.Equal("Lotus Spa", resp.Name, "untouched fields stay intact")
}

func (s *HandlerSuite) TestUpdateProfileUnknownAccount() {
	bank := "BCA"
	rec := s.do(http.MethodPatch, "/providers/2c7f1f74-8e1a-4d5e-9a3b-0b1a2c3d4e5f", UpdateProfileRequest{
		BankName: &bank,
	})
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *HandlerSuite) TestUpdateProfileInvalidID() {
	rec := s.do(http.MethodPatch, "/providers/not-a-uuid", UpdateProfileRequest{})
	s.Equal(http.StatusBadRequest, rec.Code)
}
