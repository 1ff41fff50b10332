package testutil

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// ReviewerTokens issues reviewer bearer tokens.
type ReviewerTokens interface {
	GenerateReviewerToken(reviewer string, expiresIn time.Duration) (string, error)
}

// AsReviewer signs an hour-long token for reviewer and attaches it to req.
func AsReviewer(t *testing.T, tokens ReviewerTokens, req *http.Request, reviewer string) *http.Request {
	t.Helper()
	token, err := tokens.GenerateReviewerToken(reviewer, time.Hour)
	require.NoError(t, err, "failed to sign reviewer token")
	return WithBearer(req, token)
}

// WithBearer sets a bearer Authorization header.
func WithBearer(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}
