package ae

import (
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/hooklift/codegrant/internal/render"
	"github.com/hooklift/codegrant/types"
)

// HandleTokenRequest implements the token endpoint (RFC 6749 section 3.2,
// 4.1.3 and 4.1.4) for grant_type=authorization_code. It authenticates the
// client with HTTP Basic, redeems the authorization code exactly once, and
// writes a JSON response. The response always carries Cache-Control:
// no-store and Pragma: no-cache, per section 5.1.
func (e *Engine) HandleTokenRequest(w http.ResponseWriter, req *http.Request) {
	username, password, basicAuth := parseBasicAuth(req.Header.Get("Authorization"))
	switch basicAuth {
	case basicAuthAbsent:
		render.JSON(w, render.Options{
			Status: http.StatusBadRequest,
			Data: &types.TokenError{
				Code:        types.TokenInvalidClient,
				Description: "Authorization header missing",
			},
		})
		return
	case basicAuthMalformed:
		render.JSON(w, render.Options{
			Status: http.StatusBadRequest,
			Data: &types.TokenError{
				Code:        types.TokenInvalidRequest,
				Description: "Authorization header is malformed",
			},
		})
		return
	}

	client, err := e.caps.FetchClient(username)
	if err != nil {
		render.JSON(w, render.Options{
			Status: http.StatusInternalServerError,
			Data: &types.TokenError{
				Code:        types.TokenInvalidRequest,
				Description: "internal error looking up client",
			},
		})
		return
	}
	if client == nil {
		render.JSON(w, render.Options{
			Status: http.StatusBadRequest,
			Data: &types.TokenError{
				Code:        types.TokenInvalidClient,
				Description: "no such client",
			},
		})
		return
	}

	if subtle.ConstantTimeCompare([]byte(password), []byte(client.Credentials)) != 1 {
		w.Header().Set("WWW-Authenticate", `Basic realm="token"`)
		render.JSON(w, render.Options{
			Status: http.StatusUnauthorized,
			Data: &types.TokenError{
				Code:        types.TokenInvalidClient,
				Description: "client credentials do not match",
			},
		})
		return
	}

	if err := req.ParseForm(); err != nil {
		render.JSON(w, render.Options{
			Status: http.StatusBadRequest,
			Data: &types.TokenError{
				Code:        types.TokenInvalidRequest,
				Description: "unable to parse request body as application/x-www-form-urlencoded",
			},
		})
		return
	}

	grantType := req.PostFormValue("grant_type")
	if grantType == "" {
		render.JSON(w, render.Options{
			Status: http.StatusBadRequest,
			Data: &types.TokenError{
				Code:        types.TokenInvalidRequest,
				Description: "grant_type parameter is required",
			},
		})
		return
	}
	if grantType != "authorization_code" {
		// Non-goal: client_credentials, password and refresh_token grants
		// are not implemented by this engine.
		render.JSON(w, render.Options{
			Status: http.StatusBadRequest,
			Data: &types.TokenError{
				Code:        types.TokenUnsupportedGrantType,
				Description: "only the authorization_code grant type is supported",
			},
		})
		return
	}

	code := req.PostFormValue("code")
	if code == "" {
		render.JSON(w, render.Options{
			Status: http.StatusBadRequest,
			Data: &types.TokenError{
				Code:        types.TokenInvalidRequest,
				Description: "code parameter is required",
			},
		})
		return
	}

	grant, err := e.caps.ConsumeGrant(code)
	if err != nil {
		render.JSON(w, render.Options{
			Status: http.StatusInternalServerError,
			Data: &types.TokenError{
				Code:        types.TokenInvalidRequest,
				Description: "internal error redeeming authorization code",
			},
		})
		return
	}
	if grant == nil {
		render.JSON(w, render.Options{
			Status: http.StatusBadRequest,
			Data: &types.TokenError{
				Code:        types.TokenInvalidGrant,
				Description: "authorization code is invalid, expired or already used",
			},
		})
		return
	}

	if grant.ClientID != client.ClientID {
		// The code was issued to a different client than the one that
		// authenticated. This may indicate the code leaked; revoke
		// anything already issued under it if the host supports it.
		if rev, ok := e.caps.(Revoker); ok {
			rev.RevokeTokensForCode(code)
		}
		render.JSON(w, render.Options{
			Status: http.StatusBadRequest,
			Data: &types.TokenError{
				Code:        types.TokenInvalidGrant,
				Description: "authorization code was not issued to this client",
			},
		})
		return
	}

	if grant.RedirectURI != "" {
		redirectURI := req.PostFormValue("redirect_uri")
		if redirectURI == "" {
			render.JSON(w, render.Options{
				Status: http.StatusBadRequest,
				Data: &types.TokenError{
					Code:        types.TokenInvalidGrant,
					Description: "redirect_uri parameter must be supplied; it was supplied at authorization time",
				},
			})
			return
		}
		if redirectURI != grant.RedirectURI {
			render.JSON(w, render.Options{
				Status: http.StatusBadRequest,
				Data: &types.TokenError{
					Code:        types.TokenInvalidGrant,
					Description: "redirect_uri does not match the one used in the authorization request",
				},
			})
			return
		}
	}

	token, err := e.caps.IssueToken(code, client.ClientID, grant.Scope)
	if err != nil {
		render.JSON(w, render.Options{
			Status: http.StatusBadRequest,
			Data: &types.TokenError{
				Code:        types.TokenInvalidGrant,
				Description: "unable to issue a token for this authorization code",
			},
		})
		return
	}

	render.JSON(w, render.Options{
		Status: http.StatusOK,
		Data:   token,
	})
}

// basicAuthResult distinguishes an absent Authorization header (RFC 6749
// section 4.1.5 step 1: invalid_client) from a malformed one (invalid_request
// per the same step) from a well-formed one.
type basicAuthResult int

const (
	basicAuthOK basicAuthResult = iota
	basicAuthAbsent
	basicAuthMalformed
)

// parseBasicAuth parses an RFC 7617 "Basic" Authorization header value,
// distinguishing a missing header from a malformed one instead of
// collapsing both into http.Request.BasicAuth's single boolean.
func parseBasicAuth(header string) (username, password string, result basicAuthResult) {
	if header == "" {
		return "", "", basicAuthAbsent
	}
	const prefix = "Basic "
	if !strings.HasPrefix(header, prefix) {
		return "", "", basicAuthMalformed
	}
	decoded, err := base64.StdEncoding.DecodeString(header[len(prefix):])
	if err != nil {
		return "", "", basicAuthMalformed
	}
	creds := string(decoded)
	idx := strings.IndexByte(creds, ':')
	if idx < 0 {
		return "", "", basicAuthMalformed
	}
	return creds[:idx], creds[idx+1:], basicAuthOK
}
