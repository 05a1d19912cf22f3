package ce

import "net/url"

// StartOAuth begins the authorization-code flow: it stores a fresh nonce as
// this request's anti-CSRF state and returns the URL the host should
// redirect the user agent to at the Authorization Server's authorization
// endpoint. scope may be empty.
func (e *Engine) StartOAuth(authzEndpoint string, scope string) (string, error) {
	client, err := e.caps.OwnClientRecord()
	if err != nil {
		return "", &Error{Kind: ErrHost, Err: err}
	}

	redirectURI, err := e.caps.OwnRedirectURI()
	if err != nil {
		return "", &Error{Kind: ErrHost, Err: err}
	}

	state, err := e.nonceSource()
	if err != nil {
		return "", &Error{Kind: ErrHost, Err: err}
	}
	if err := e.caps.StoreNonce(state); err != nil {
		return "", &Error{Kind: ErrHost, Err: err}
	}

	u, err := url.Parse(authzEndpoint)
	if err != nil {
		return "", &Error{Kind: ErrBadRequest, Err: err}
	}

	q := u.Query()
	q.Set("response_type", "code")
	q.Set("client_id", client.ClientID)
	q.Set("redirect_uri", redirectURI)
	q.Set("state", state)
	if scope != "" {
		q.Set("scope", scope)
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}
