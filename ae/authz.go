package ae

import (
	"net/http"
	"net/url"

	"github.com/hooklift/codegrant/syntax"
	"github.com/hooklift/codegrant/types"
)

// PendingAuthz is the parsed and validated state of an in-flight
// authorization request. The host authenticates and authorizes the
// resource owner out of band, then calls Grant or Deny to obtain the
// response to send. Its zero value is not usable; it is only produced by
// HandleAuthzRequest.
type PendingAuthz struct {
	ClientID    string
	RedirectURI string
	State       string
	Scope       string

	// err records a protocol error discovered after redirect_uri was
	// already trusted (e.g. unsupported_response_type). It is reported
	// via redirect rather than as a DirectFailure.
	err *types.AuthzError
}

// HandleAuthzRequest parses and validates req against RFC 6749 section
// 4.1.1. On success it returns a PendingAuthz for the host to resolve with
// Grant or Deny. It returns a non-nil DirectFailure instead when client_id
// or redirect_uri cannot be established well enough to safely redirect the
// user agent; the host must render that failure directly and MUST NOT
// redirect.
func (e *Engine) HandleAuthzRequest(req *http.Request) (*PendingAuthz, *DirectFailure) {
	values := req.URL.Query()

	if len(values["client_id"]) > 1 || len(values["redirect_uri"]) > 1 {
		return nil, &DirectFailure{Kind: DirectFailureBadRequest}
	}

	clientID := values.Get("client_id")
	if clientID == "" || !syntax.ValidClientID(clientID) {
		return nil, &DirectFailure{Kind: DirectFailureMissingClientID}
	}

	client, err := e.caps.FetchClient(clientID)
	if err != nil {
		return nil, &DirectFailure{Kind: DirectFailureServerError, Err: err}
	}
	if client == nil {
		return nil, &DirectFailure{Kind: DirectFailureUnknownClient}
	}

	redirectURI := values.Get("redirect_uri")
	if redirectURI == "" {
		if len(client.RedirectURIs) == 0 {
			return nil, &DirectFailure{Kind: DirectFailureRedirectURINotRegistered}
		}
		redirectURI = client.RedirectURIs[0]
	} else {
		found := false
		for _, u := range client.RedirectURIs {
			if u == redirectURI {
				found = true
				break
			}
		}
		if !found {
			return nil, &DirectFailure{Kind: DirectFailureRedirectURINotRegistered}
		}
	}

	// redirect_uri is now trusted. Every further validation failure is
	// reported by redirecting the user agent back to it, not by a
	// DirectFailure.
	pending := &PendingAuthz{
		ClientID:    clientID,
		RedirectURI: redirectURI,
	}

	if len(values["state"]) > 1 || len(values["response_type"]) > 1 || len(values["scope"]) > 1 {
		pending.err = &types.AuthzError{
			Code:        types.AuthzInvalidRequest,
			Description: "a query parameter was supplied more than once",
		}
		return pending, nil
	}

	state := values.Get("state")
	if state != "" && !syntax.ValidState(state) {
		pending.err = &types.AuthzError{
			Code:        types.AuthzInvalidRequest,
			Description: "state parameter is malformed",
		}
		return pending, nil
	}
	pending.State = state

	responseType := values.Get("response_type")
	switch {
	case responseType == "":
		pending.err = &types.AuthzError{
			Code:        types.AuthzInvalidRequest,
			Description: "response_type parameter is required",
			State:       state,
		}
	case responseType != "code":
		// Non-goal: response types other than "code" (implicit grant etc.)
		// are not implemented.
		pending.err = &types.AuthzError{
			Code:        types.AuthzUnsupportedResponseType,
			Description: `response_type must be "code"`,
			State:       state,
		}
	}

	scope := values.Get("scope")
	if pending.err == nil && scope != "" && !syntax.ValidScope(scope) {
		pending.err = &types.AuthzError{
			Code:        types.AuthzInvalidScope,
			Description: "scope parameter is malformed",
			State:       state,
		}
	}
	pending.Scope = scope

	return pending, nil
}

// Grant authorizes pending, mints a fresh authorization code and returns
// the URL the host should redirect the user agent to. If pending carries a
// deferred protocol error from HandleAuthzRequest, that error is reported
// via redirect instead and no code is issued.
func (e *Engine) Grant(pending *PendingAuthz) (string, error) {
	if pending.err != nil {
		return e.redirectWithError(pending, pending.err), nil
	}

	code, err := e.caps.NewAuthorizationCode()
	if err != nil {
		return "", &HostError{Kind: HostErrorStorage, Err: err}
	}

	grant := types.GrantRecord{
		Code:        code,
		ClientID:    pending.ClientID,
		RedirectURI: pending.RedirectURI,
		Scope:       pending.Scope,
	}
	if err := e.caps.StoreGrant(grant); err != nil {
		return "", &HostError{Kind: HostErrorStorage, Err: err}
	}

	u, err := url.Parse(pending.RedirectURI)
	if err != nil {
		return "", &HostError{Kind: HostErrorStorage, Err: err}
	}
	q := u.Query()
	q.Set("code", code)
	if pending.State != "" {
		q.Set("state", pending.State)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Deny reports access_denied to the client via redirect, for use when the
// resource owner declines to authorize the request.
func (e *Engine) Deny(pending *PendingAuthz) string {
	return e.redirectWithError(pending, &types.AuthzError{
		Code:  types.AuthzAccessDenied,
		State: pending.State,
	})
}

func (e *Engine) redirectWithError(pending *PendingAuthz, aerr *types.AuthzError) string {
	u, err := url.Parse(pending.RedirectURI)
	if err != nil {
		// RedirectURI was already validated in HandleAuthzRequest; this
		// should be unreachable.
		return pending.RedirectURI
	}
	q := u.Query()
	q.Set("error", string(aerr.Code))
	if aerr.Description != "" {
		q.Set("error_description", aerr.Description)
	}
	if aerr.URI != "" {
		q.Set("error_uri", aerr.URI)
	}
	if aerr.State != "" {
		q.Set("state", aerr.State)
	}
	u.RawQuery = q.Encode()
	return u.String()
}
