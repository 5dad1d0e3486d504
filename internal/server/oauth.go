package server

import (
	"net/http"
	"strings"

	"github.com/jackfredericksen/fantasma/internal/apperr"
	"github.com/jackfredericksen/fantasma/internal/core/services"
)

// handleAuthorize renders the consent screen for a valid /authorize
// request, per §6's authorization_code grant entry point.
func handleAuthorize(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := bindAuthorizeQuery(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		client, err := deps.Auth.ValidateClient(r.Context(), req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		renderConsentPage(w, client, req)
	}
}

// handleConsent completes the /authorize/consent decision: approve issues
// an auth code and 302-redirects with ?code=...&state=...; deny
// 302-redirects with the access_denied grant error, per §6.
func handleConsent(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var form consentForm
		if err := decodeForm(r, &form); err != nil {
			writeError(w, r, err)
			return
		}

		req := services.AuthorizeRequest{
			ResponseType:        "code",
			ClientID:            form.ClientID,
			RedirectURI:         form.RedirectURI,
			Scope:               form.Scope,
			State:               form.State,
			Nonce:               form.Nonce,
			CodeChallenge:       form.CodeChallenge,
			CodeChallengeMethod: form.CodeChallengeMethod,
		}
		if _, err := deps.Auth.ValidateClient(r.Context(), req); err != nil {
			writeError(w, r, err)
			return
		}

		if form.Action != "approve" {
			denied := deps.Auth.Deny()
			redirectWithError(w, r, form.RedirectURI, form.State, string(denied.Grant), denied.Description)
			return
		}

		subjectID := "demo-user:" + form.DemoUser
		ac, err := deps.Auth.Approve(r.Context(), req, subjectID, form.DemoUser)
		if err != nil {
			writeError(w, r, err)
			return
		}
		redirectWithCode(w, r, form.RedirectURI, ac.Code, form.State)
	}
}

// handleToken implements the authorization_code token exchange.
func handleToken(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var form tokenForm
		if err := decodeForm(r, &form); err != nil {
			writeError(w, r, err)
			return
		}

		resp, err := deps.Tokens.Exchange(r.Context(), services.ExchangeRequest{
			GrantType:    form.GrantType,
			Code:         form.Code,
			RedirectURI:  form.RedirectURI,
			ClientID:     form.ClientID,
			CodeVerifier: form.CodeVerifier,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"access_token": resp.AccessToken,
			"token_type":   resp.TokenType,
			"expires_in":   resp.ExpiresIn,
			"id_token":     resp.IDToken,
		})
	}
}

// handleUserInfo validates the bearer access token and returns the bare
// subject claim; this demo issuer has no separate userinfo claim store, so
// it returns exactly what the access token itself carries.
func handleUserInfo(deps *Dependencies) http.HandlerFunc {
	const prefix = "Bearer "
	return func(w http.ResponseWriter, r *http.Request) {
		authz := r.Header.Get("Authorization")
		if !strings.HasPrefix(authz, prefix) {
			writeError(w, r, apperr.Input("missing bearer token", nil))
			return
		}
		claims, err := deps.Issuer.Verify(r.Context(), strings.TrimPrefix(authz, prefix))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"sub": claims.Subject})
	}
}
