package server

import (
	"net/http"

	"github.com/mitchellh/mapstructure"
	"github.com/oapi-codegen/runtime"

	"github.com/jackfredericksen/fantasma/internal/apperr"
	"github.com/jackfredericksen/fantasma/internal/core/services"
)

// tokenForm is the `/token` POST body per §6's authorization_code grant.
type tokenForm struct {
	GrantType    string `form:"grant_type"`
	Code         string `form:"code"`
	RedirectURI  string `form:"redirect_uri"`
	ClientID     string `form:"client_id"`
	CodeVerifier string `form:"code_verifier"`
}

// consentForm is the `/authorize/consent` POST body: the original
// authorize query carried forward as hidden fields, plus the user's
// approve/deny decision and demo identity selection.
type consentForm struct {
	ClientID            string `form:"client_id"`
	RedirectURI         string `form:"redirect_uri"`
	Scope               string `form:"scope"`
	State               string `form:"state"`
	Nonce               string `form:"nonce"`
	CodeChallenge       string `form:"code_challenge"`
	CodeChallengeMethod string `form:"code_challenge_method"`
	Action              string `form:"action"`
	DemoUser            string `form:"demo_user"`
}

// decodeForm parses r's urlencoded POST body and decodes it into dst via
// mapstructure, matching each struct field's `form` tag against the posted
// key.
func decodeForm(r *http.Request, dst interface{}) error {
	if err := r.ParseForm(); err != nil {
		return apperr.Input("malformed form body", err)
	}
	raw := make(map[string]interface{}, len(r.PostForm))
	for k, v := range r.PostForm {
		if len(v) > 0 {
			raw[k] = v[0]
		}
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "form",
		Result:  dst,
	})
	if err != nil {
		return apperr.ServerError("form decoder construction failed", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return apperr.Input("form field decode failed", err)
	}
	return nil
}

// bindAuthorizeQuery binds `/authorize`'s query string into an
// AuthorizeRequest using oapi-codegen/runtime's generated-code parameter
// binder — the same per-parameter call shape oapi-codegen emits for a
// "form"-style, non-exploded query parameter — rather than a hand-rolled
// url.Values.Get per field.
func bindAuthorizeQuery(r *http.Request) (services.AuthorizeRequest, error) {
	q := r.URL.Query()
	var req services.AuthorizeRequest

	fields := []struct {
		name     string
		required bool
		dst      *string
	}{
		{"response_type", true, &req.ResponseType},
		{"client_id", true, &req.ClientID},
		{"redirect_uri", true, &req.RedirectURI},
		{"scope", false, &req.Scope},
		{"state", false, &req.State},
		{"nonce", false, &req.Nonce},
		{"code_challenge", false, &req.CodeChallenge},
		{"code_challenge_method", false, &req.CodeChallengeMethod},
	}
	for _, f := range fields {
		if err := runtime.BindQueryParameter("form", false, f.required, f.name, q, f.dst); err != nil {
			return req, apperr.Input("invalid query parameter: "+f.name, err)
		}
	}
	return req, nil
}
