package handler_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	applicationmodels "talentgate/internal/application/models"
	applicationservice "talentgate/internal/application/service"
	applicationstore "talentgate/internal/application/store/application"
	"talentgate/internal/audit"
	"talentgate/internal/person/handler"
	personmodels "talentgate/internal/person/models"
	personservice "talentgate/internal/person/service"
	personstore "talentgate/internal/person/store/person"
	id "talentgate/pkg/domain"
	"talentgate/pkg/testutil"
)

type PersonHandlerSuite struct {
	suite.Suite
	router   chi.Router
	resolver *personservice.Resolver
	advancer *applicationservice.Advancer
}

func TestPersonHandlerSuite(t *testing.T) {
	suite.Run(t, new(PersonHandlerSuite))
}

func (s *PersonHandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	auditRecorder := audit.NewRecorder(audit.NewInMemoryStore(), logger)

	resolver, err := personservice.New(personstore.NewInMemoryStore())
	s.Require().NoError(err)
	s.resolver = resolver

	advancer, err := applicationservice.New(applicationstore.NewInMemoryStore(), auditRecorder)
	s.Require().NoError(err)
	s.advancer = advancer

	s.router = chi.NewRouter()
	handler.New(resolver, advancer, logger).Register(s.router)
}

func (s *PersonHandlerSuite) createPerson() *personmodels.Person {
	p, _, err := s.resolver.FindOrCreate(context.Background(), personmodels.Attributes{
		Email:     "jane@example.com",
		FirstName: "Jane",
		LastName:  "Doe",
	})
	s.Require().NoError(err)
	return p
}

func (s *PersonHandlerSuite) TestGet() {
	s.Run("returns the person", func() {
		p := s.createPerson()

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/persons/"+p.ID.String()))
		testutil.AssertStatus(s.T(), rr, http.StatusOK)

		got := testutil.UnmarshalResponse[handler.PersonResponse](s.T(), rr)
		s.Equal(p.ID.String(), got.ID)
		s.Equal("jane@example.com", got.Email)
		s.False(got.Assessment.Completed)
	})

	s.Run("unknown person is not found", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/persons/"+id.NewPersonID().String()))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
	})

	s.Run("malformed id is a bad request", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/persons/not-a-uuid"))
		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	})
}

func (s *PersonHandlerSuite) TestListApplications() {
	s.Run("returns the person's applications", func() {
		p := s.createPerson()
		_, _, err := s.advancer.CreateForSubmission(context.Background(),
			p.ID, "Backend Engineer", applicationmodels.Materials{}, id.NewSubmissionID())
		s.Require().NoError(err)

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/persons/"+p.ID.String()+"/applications"))
		testutil.AssertStatus(s.T(), rr, http.StatusOK)

		got := testutil.UnmarshalResponse[[]handler.ApplicationResponse](s.T(), rr)
		s.Require().Len(*got, 1)
		s.Equal("Backend Engineer", (*got)[0].Position)
	})

	s.Run("unknown person is a 404, not an empty list", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/persons/"+id.NewPersonID().String()+"/applications"))
		testutil.AssertStatus(s.T(), rr, http.StatusNotFound)
	})
}
