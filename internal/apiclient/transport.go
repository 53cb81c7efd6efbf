package apiclient

import (
	"net/http"

	"go.uber.org/zap"
)

// authTransport adds the stored bearer token to outgoing requests and
// persists a refreshed token announced by the backend.
type authTransport struct {
	base   http.RoundTripper
	tokens TokenStore
	logger *zap.Logger
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.tokens != nil {
		if token := t.tokens.Token(); token != "" {
			req = req.Clone(req.Context())
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if newToken := resp.Header.Get(NewSessionTokenHeader); newToken != "" && t.tokens != nil {
		if err := t.tokens.UpdateToken(newToken); err != nil {
			t.logger.Warn("failed to persist refreshed session token", zap.Error(err))
		} else {
			t.logger.Debug("received refreshed session token, local credential updated")
		}
	}

	return resp, nil
}
