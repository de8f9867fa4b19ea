package handler_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	applicationservice "talentgate/internal/application/service"
	applicationstore "talentgate/internal/application/store/application"
	"talentgate/internal/assessment"
	"talentgate/internal/assessment/handler"
	assessmentservice "talentgate/internal/assessment/service"
	"talentgate/internal/audit"
	"talentgate/internal/jwttoken"
	personmodels "talentgate/internal/person/models"
	personservice "talentgate/internal/person/service"
	personstore "talentgate/internal/person/store/person"
	"talentgate/pkg/testutil"
)

const webhookSecret = "test-webhook-secret"

type WebhookSuite struct {
	suite.Suite
	router   chi.Router
	resolver *personservice.Resolver
	tokens   *jwttoken.Service
}

func TestWebhookSuite(t *testing.T) {
	suite.Run(t, new(WebhookSuite))
}

func (s *WebhookSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	auditRecorder := audit.NewRecorder(audit.NewInMemoryStore(), logger)

	persons := personstore.NewInMemoryStore()
	resolver, err := personservice.New(persons)
	s.Require().NoError(err)
	s.resolver = resolver

	advancer, err := applicationservice.New(applicationstore.NewInMemoryStore(), auditRecorder)
	s.Require().NoError(err)
	gate, err := assessment.NewGate(70, 100)
	s.Require().NoError(err)

	svc, err := assessmentservice.New(persons, resolver, advancer, gate, auditRecorder)
	s.Require().NoError(err)

	s.tokens = jwttoken.New(webhookSecret, "talentgate")
	s.router = chi.NewRouter()
	handler.New(svc, s.tokens, logger).Register(s.router)
}

func (s *WebhookSuite) createPerson(emailAddr string) {
	_, _, err := s.resolver.FindOrCreate(context.Background(), personmodels.Attributes{
		Email:     emailAddr,
		FirstName: "Jane",
		LastName:  "Doe",
	})
	s.Require().NoError(err)
}

func (s *WebhookSuite) webhookRequest(body any, token string) *http.Request {
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/webhooks/assessment", body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func (s *WebhookSuite) validToken() string {
	token, err := s.tokens.GenerateToken("assessment-provider", time.Minute)
	s.Require().NoError(err)
	return token
}

func scorePtr(v float64) *float64 { return &v }

func (s *WebhookSuite) TestAuthentication() {
	body := handler.RecordResultRequest{Email: "jane@example.com", Score: scorePtr(80)}

	s.Run("missing token is unauthorized", func() {
		rr := testutil.DoRequest(s.router, s.webhookRequest(body, ""))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, "unauthorized")
	})

	s.Run("garbage token is unauthorized", func() {
		rr := testutil.DoRequest(s.router, s.webhookRequest(body, "not-a-jwt"))
		testutil.AssertStatus(s.T(), rr, http.StatusUnauthorized)
	})

	s.Run("token signed with another secret is unauthorized", func() {
		other := jwttoken.New("wrong-secret", "talentgate")
		token, err := other.GenerateToken("assessment-provider", time.Minute)
		s.Require().NoError(err)

		rr := testutil.DoRequest(s.router, s.webhookRequest(body, token))
		testutil.AssertStatus(s.T(), rr, http.StatusUnauthorized)
	})

	s.Run("expired token is unauthorized", func() {
		token, err := s.tokens.GenerateToken("assessment-provider", -time.Minute)
		s.Require().NoError(err)

		rr := testutil.DoRequest(s.router, s.webhookRequest(body, token))
		testutil.AssertStatus(s.T(), rr, http.StatusUnauthorized)
	})

	s.Run("token with a foreign issuer is unauthorized", func() {
		other := jwttoken.New(webhookSecret, "someone-else")
		token, err := other.GenerateToken("assessment-provider", time.Minute)
		s.Require().NoError(err)

		rr := testutil.DoRequest(s.router, s.webhookRequest(body, token))
		testutil.AssertStatus(s.T(), rr, http.StatusUnauthorized)
	})
}

func (s *WebhookSuite) TestRecordResult() {
	s.Run("records a passing result", func() {
		s.createPerson("jane@example.com")

		rr := testutil.DoRequest(s.router, s.webhookRequest(
			handler.RecordResultRequest{Email: "jane@example.com", Score: scorePtr(85)}, s.validToken()))
		testutil.AssertStatus(s.T(), rr, http.StatusOK)

		got := testutil.UnmarshalResponse[handler.RecordResultResponse](s.T(), rr)
		s.Equal("PASSED", got.Verdict)
		s.NotEmpty(got.PersonID)
	})

	s.Run("unknown email is not found", func() {
		rr := testutil.DoRequest(s.router, s.webhookRequest(
			handler.RecordResultRequest{Email: "ghost@example.com", Score: scorePtr(85)}, s.validToken()))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
	})

	s.Run("missing score is a validation error", func() {
		rr := testutil.DoRequest(s.router, s.webhookRequest(
			handler.RecordResultRequest{Email: "jane@example.com"}, s.validToken()))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation")
	})

	s.Run("missing email is a validation error", func() {
		rr := testutil.DoRequest(s.router, s.webhookRequest(
			handler.RecordResultRequest{Score: scorePtr(50)}, s.validToken()))
		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	})
}
