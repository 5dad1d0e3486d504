package server

import (
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/jackfredericksen/fantasma/internal/apperr"
	"github.com/jackfredericksen/fantasma/internal/core/domain"
	"github.com/jackfredericksen/fantasma/internal/core/services"
)

// consentTemplate renders the demo consent screen, grounded on
// fantasma-server/src/routes.rs's AUTHORIZE_TEMPLATE/build_permissions_html:
// client name, the requested scopes rendered as a permission list, and a
// demo identity picker standing in for the full protocol's wallet-side
// consent flow.
var consentTemplate = template.Must(template.New("consent").Parse(`<!DOCTYPE html>
<html>
<head><title>Authorize {{.ClientName}}</title></head>
<body>
<h1>{{.ClientName}} is requesting access</h1>
<p>This application is asking for the following zero-knowledge claims:</p>
<ul>
{{range .Permissions}}<li>{{.}}</li>{{end}}
</ul>
<form method="POST" action="/authorize/consent">
<input type="hidden" name="client_id" value="{{.Req.ClientID}}">
<input type="hidden" name="redirect_uri" value="{{.Req.RedirectURI}}">
<input type="hidden" name="scope" value="{{.Req.Scope}}">
<input type="hidden" name="state" value="{{.Req.State}}">
<input type="hidden" name="nonce" value="{{.Req.Nonce}}">
<input type="hidden" name="code_challenge" value="{{.Req.CodeChallenge}}">
<input type="hidden" name="code_challenge_method" value="{{.Req.CodeChallengeMethod}}">
<label>Sign in as:
  <select name="demo_user">
    <option value="alice">alice</option>
    <option value="bob">bob</option>
  </select>
</label>
<button type="submit" name="action" value="approve">Allow</button>
<button type="submit" name="action" value="deny">Deny</button>
</form>
</body>
</html>
`))

type consentView struct {
	ClientName  string
	Permissions []string
	Req         services.AuthorizeRequest
}

func renderConsentPage(w http.ResponseWriter, client *domain.ClientInfo, req services.AuthorizeRequest) {
	mapper := services.NewScopeMapper()
	var perms []string
	for _, tok := range strings.Fields(req.Scope) {
		if tok == "openid" {
			continue
		}
		if _, ok := mapper.FromScope(tok); ok {
			perms = append(perms, tok)
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = consentTemplate.Execute(w, consentView{
		ClientName:  client.ClientName,
		Permissions: perms,
		Req:         req,
	})
}

// redirectWithCode completes the authorization_code grant by 302-redirecting
// back to the client with ?code=...&state=....
func redirectWithCode(w http.ResponseWriter, r *http.Request, redirectURI, code, state string) {
	u, err := buildRedirectURL(redirectURI, map[string]string{"code": code, "state": state})
	if err != nil {
		writeError(w, r, apperr.Input("invalid redirect_uri", err))
		return
	}
	http.Redirect(w, r, u, http.StatusFound)
}

// redirectWithError reports a denied/failed authorization per §6's
// access_denied disposition, redirecting back to the client rather than
// rendering a JSON error body (the browser is mid-flow at this point, not an
// API caller).
func redirectWithError(w http.ResponseWriter, r *http.Request, redirectURI, state, grant, description string) {
	u, err := buildRedirectURL(redirectURI, map[string]string{
		"error":             grant,
		"error_description": description,
		"state":             state,
	})
	if err != nil {
		writeError(w, r, apperr.Input("invalid redirect_uri", err))
		return
	}
	http.Redirect(w, r, u, http.StatusFound)
}

func buildRedirectURL(redirectURI string, params map[string]string) (string, error) {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return "", err
	}
	q := u.Query()
	for k, v := range params {
		if v != "" {
			q.Set(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
