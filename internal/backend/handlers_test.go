package backend

import (
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"scanview/internal/domain"
	"scanview/pkg/testutil"
)

type HandlerSuite struct {
	suite.Suite
	router http.Handler
}

func (s *HandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewHandler(NewInMemoryUserStore(), NewInMemoryReportStore(), NewTokenService("test-key"), logger)
	s.router = NewRouter(handler)
}

func (s *HandlerSuite) signup(name, email, password string) authResponse {
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/signup", signupRequest{
		Name:     name,
		Email:    email,
		Password: password,
	})
	rr := testutil.DoRequest(s.router, req)
	require.Equal(s.T(), http.StatusCreated, rr.Code)
	return *testutil.UnmarshalResponse[authResponse](s.T(), rr)
}

func (s *HandlerSuite) TestSignupIssuesToken() {
	resp := s.signup("Dr. A", "a@example.com", "secret-pass")

	assert.NotEmpty(s.T(), resp.Token)
	assert.Equal(s.T(), "Dr. A", resp.User.Name)
	assert.Equal(s.T(), "a@example.com", resp.User.Email)
}

func (s *HandlerSuite) TestSignupRejectsDuplicateEmail() {
	s.signup("Dr. A", "a@example.com", "secret-pass")

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/signup", signupRequest{
		Name:     "Other",
		Email:    "a@example.com",
		Password: "other-pass",
	})
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	assert.Equal(s.T(), "User exists", testutil.UnmarshalErrorResponse(s.T(), rr)["error"])
}

func (s *HandlerSuite) TestSignupValidatesInput() {
	tests := []struct {
		name string
		req  signupRequest
	}{
		{"missing name", signupRequest{Email: "a@example.com", Password: "secret-pass"}},
		{"bad email", signupRequest{Name: "A", Email: "not-an-email", Password: "secret-pass"}},
		{"short password", signupRequest{Name: "A", Email: "a@example.com", Password: "abc"}},
	}
	for _, tt := range tests {
		s.T().Run(tt.name, func(t *testing.T) {
			rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(t, http.MethodPost, "/signup", tt.req))
			testutil.AssertStatus(t, rr, http.StatusBadRequest)
		})
	}
}

func (s *HandlerSuite) TestLoginWithGoodAndBadCredentials() {
	s.signup("Dr. A", "a@example.com", "secret-pass")

	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/login", loginRequest{
		Email:    "a@example.com",
		Password: "secret-pass",
	}))
	require.Equal(s.T(), http.StatusOK, rr.Code)
	resp := testutil.UnmarshalResponse[authResponse](s.T(), rr)
	assert.NotEmpty(s.T(), resp.Token)

	rr = testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/login", loginRequest{
		Email:    "a@example.com",
		Password: "wrong",
	}))
	testutil.AssertStatus(s.T(), rr, http.StatusUnauthorized)
	assert.Equal(s.T(), "Invalid credentials", testutil.UnmarshalErrorResponse(s.T(), rr)["error"])
}

func (s *HandlerSuite) TestProfileRequiresBearer() {
	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/profile", nil))
	testutil.AssertStatus(s.T(), rr, http.StatusUnauthorized)

	rr = testutil.DoRequest(s.router, testutil.WithBearer(
		testutil.NewJSONRequest(s.T(), http.MethodGet, "/profile", nil), "bogus"))
	testutil.AssertStatus(s.T(), rr, http.StatusUnauthorized)
}

func (s *HandlerSuite) TestProfileRoundTrip() {
	auth := s.signup("Dr. A", "a@example.com", "secret-pass")

	save := testutil.WithBearer(testutil.NewJSONRequest(s.T(), http.MethodPut, "/profile", profileRequest{
		Name:           "Dr. A. Kumar",
		Hospital:       "City General",
		Specialization: "Hematology",
	}), auth.Token)
	rr := testutil.DoRequest(s.router, save)
	require.Equal(s.T(), http.StatusOK, rr.Code)

	get := testutil.WithBearer(testutil.NewJSONRequest(s.T(), http.MethodGet, "/profile", nil), auth.Token)
	rr = testutil.DoRequest(s.router, get)
	require.Equal(s.T(), http.StatusOK, rr.Code)

	profile := testutil.UnmarshalResponse[domain.Profile](s.T(), rr)
	assert.Equal(s.T(), "Dr. A. Kumar", profile.Name)
	assert.Equal(s.T(), "City General", profile.Hospital)
	assert.Equal(s.T(), "Hematology", profile.Specialization)
	assert.Equal(s.T(), "a@example.com", profile.Email)
}

func (s *HandlerSuite) TestClassifyRecordsReport() {
	auth := s.signup("Dr. A", "a@example.com", "secret-pass")

	payload := []byte("fake-blood-smear-image-bytes-0123456789")
	classify := testutil.WithBearer(testutil.NewMultipartRequest(
		s.T(), http.MethodPost, "/classify", "file", "smear.png", payload), auth.Token)
	rr := testutil.DoRequest(s.router, classify)
	require.Equal(s.T(), http.StatusOK, rr.Code)

	result := testutil.UnmarshalResponse[domain.ClassifyResult](s.T(), rr)
	assert.Contains(s.T(), classifyLabels, result.Prediction)
	assert.GreaterOrEqual(s.T(), result.Confidence, 80.0)
	assert.NotEmpty(s.T(), result.Explanation)

	list := testutil.WithBearer(testutil.NewJSONRequest(s.T(), http.MethodGet, "/reports", nil), auth.Token)
	rr = testutil.DoRequest(s.router, list)
	require.Equal(s.T(), http.StatusOK, rr.Code)

	reports := testutil.UnmarshalResponse[[]domain.Report](s.T(), rr)
	require.Len(s.T(), *reports, 1)
	assert.Equal(s.T(), result.Prediction, (*reports)[0].Disease)
	assert.Equal(s.T(), "Dr. A", (*reports)[0].Username)
}

func (s *HandlerSuite) TestClassifyWithoutFileIsRejected() {
	auth := s.signup("Dr. A", "a@example.com", "secret-pass")

	req := testutil.WithBearer(testutil.NewJSONRequest(s.T(), http.MethodPost, "/classify", map[string]string{"image": "x"}), auth.Token)
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	assert.Equal(s.T(), "No file", testutil.UnmarshalErrorResponse(s.T(), rr)["error"])
}

func (s *HandlerSuite) TestClassifyRejectsUnreadableImage() {
	auth := s.signup("Dr. A", "a@example.com", "secret-pass")

	req := testutil.WithBearer(testutil.NewMultipartRequest(
		s.T(), http.MethodPost, "/classify", "file", "tiny.png", []byte("xx")), auth.Token)
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	assert.Equal(s.T(), "Analysis failed", testutil.UnmarshalErrorResponse(s.T(), rr)["error"])
}

func (s *HandlerSuite) TestReportsAreScopedToUser() {
	authA := s.signup("Dr. A", "a@example.com", "secret-pass")
	authB := s.signup("Dr. B", "b@example.com", "secret-pass")

	payload := []byte("fake-blood-smear-image-bytes-0123456789")
	classify := testutil.WithBearer(testutil.NewMultipartRequest(
		s.T(), http.MethodPost, "/classify", "file", "smear.png", payload), authA.Token)
	require.Equal(s.T(), http.StatusOK, testutil.DoRequest(s.router, classify).Code)

	list := testutil.WithBearer(testutil.NewJSONRequest(s.T(), http.MethodGet, "/reports", nil), authB.Token)
	rr := testutil.DoRequest(s.router, list)
	require.Equal(s.T(), http.StatusOK, rr.Code)
	assert.Empty(s.T(), *testutil.UnmarshalResponse[[]domain.Report](s.T(), rr))
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}
