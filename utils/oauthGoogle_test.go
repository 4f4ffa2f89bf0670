package utils

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newFakeGoogle(t *testing.T, verified bool) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "auth-code", r.Form.Get("code"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "google-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer google-token", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"email":          "ana@clinica.es",
			"email_verified": verified,
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testGoogle(srv *httptest.Server) *GoogleOAuth {
	g := NewGoogleOAuth("client", "secret", "http://localhost:8930/auth/callback")
	g.config.Endpoint = oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"}
	g.userInfoURL = srv.URL + "/userinfo"
	return g
}

func TestGoogleAuthCodeURLCarriesState(t *testing.T) {
	g := NewGoogleOAuth("client", "secret", "http://localhost:8930/auth/callback")
	u, err := url.Parse(g.AuthCodeURL("state-123"))
	require.NoError(t, err)
	assert.Equal(t, "state-123", u.Query().Get("state"))
	assert.Equal(t, "client", u.Query().Get("client_id"))
	assert.Equal(t, "http://localhost:8930/auth/callback", u.Query().Get("redirect_uri"))
}

func TestGoogleExchangeEmail(t *testing.T) {
	g := testGoogle(newFakeGoogle(t, true))
	email, err := g.ExchangeEmail(context.Background(), "auth-code")
	require.NoError(t, err)
	assert.Equal(t, "ana@clinica.es", email)
}

func TestGoogleExchangeRejectsUnverified(t *testing.T) {
	g := testGoogle(newFakeGoogle(t, false))
	_, err := g.ExchangeEmail(context.Background(), "auth-code")
	assert.ErrorIs(t, err, ErrEmailNotVerified)
}
