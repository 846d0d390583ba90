// Handlers for connecting external provider accounts, either through the
// OAuth authorization-code flow or by pasting a token manually.

package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/oauth2"

	"github.com/prospectr/prospectr-go/internal/auth"
	"github.com/prospectr/prospectr-go/internal/extractor/providers"
)

const oauthStateCookie = "oauth_state"

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	accounts, err := s.store.ListConnectedAccounts(user.ID)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve connected accounts")
		return
	}
	RespondWithJSON(w, http.StatusOK, accounts)
}

// handleConnectAccount starts the OAuth flow: it returns the provider's
// authorization URL and ties the flow to this browser with a state cookie.
func (s *Server) handleConnectAccount(w http.ResponseWriter, r *http.Request) {
	providerID := chi.URLParam(r, "providerID")
	if _, ok := providers.Get(providerID); !ok {
		RespondWithError(w, http.StatusNotFound, "Provider not found")
		return
	}

	state, err := auth.NewStateToken()
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to generate state token")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Expires:  time.Now().Add(10 * time.Minute),
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	authURL := auth.OAuthConfig(s.app.Config()).AuthCodeURL(state, oauth2.AccessTypeOffline)
	RespondWithJSON(w, http.StatusOK, map[string]string{"auth_url": authURL})
}

// handleOAuthCallback finishes the OAuth flow: it verifies the state cookie,
// exchanges the authorization code and stores the resulting token.
func (s *Server) handleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	providerID := chi.URLParam(r, "providerID")

	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		RespondWithError(w, http.StatusBadRequest, "Invalid OAuth state")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		RespondWithError(w, http.StatusBadRequest, "Missing authorization code")
		return
	}

	token, err := auth.ExchangeCode(r.Context(), s.app.Config(), code)
	if err != nil {
		RespondWithError(w, http.StatusBadGateway, "Failed to exchange authorization code")
		return
	}

	var expiry *time.Time
	if !token.Expiry.IsZero() {
		expiry = &token.Expiry
	}
	if err := s.store.UpsertConnectedAccount(user.ID, providerID, token.AccessToken, token.RefreshToken, expiry); err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to store credentials")
		return
	}

	// Clear the single-use state cookie.
	http.SetCookie(w, &http.Cookie{
		Name:    oauthStateCookie,
		Value:   "",
		Expires: time.Unix(0, 0),
		MaxAge:  -1,
		Path:    "/",
	})

	RespondWithJSON(w, http.StatusOK, map[string]string{"status": "connected", "provider_id": providerID})
}

// handleSetManualToken stores a token the user obtained out of band, for
// providers where the OAuth flow is not available.
func (s *Server) handleSetManualToken(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	providerID := chi.URLParam(r, "providerID")

	var payload struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if payload.AccessToken == "" {
		RespondWithError(w, http.StatusBadRequest, "An access token is required")
		return
	}

	if err := s.store.UpsertConnectedAccount(user.ID, providerID, payload.AccessToken, payload.RefreshToken, nil); err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to store credentials")
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]string{"status": "connected", "provider_id": providerID})
}

func (s *Server) handleDisconnectAccount(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	providerID := chi.URLParam(r, "providerID")

	if err := s.store.DeleteConnectedAccount(user.ID, providerID); err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to disconnect account")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
