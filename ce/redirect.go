package ce

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/hooklift/codegrant/types"
)

// HandleRedirect handles the user agent's return from the Authorization
// Server's authorization endpoint. It validates the state parameter against
// a previously stored nonce, then redeems the authorization code at
// tokenEndpoint.
//
// Exactly one of the three return values is meaningful at a time, matching
// the Authorization Server's own three-way outcome:
//   - (token, nil, nil): the code was redeemed and a token was issued.
//   - (nil, authzErr, nil): the Authorization Server reported a protocol
//     error, either in the redirect itself (access_denied and friends) or in
//     the token endpoint's response body.
//   - (nil, nil, err): the request from the user agent, or the call to the
//     token endpoint, could not be completed at all.
func (e *Engine) HandleRedirect(redirect *http.Request, tokenEndpoint string) (*types.TokenData, *types.AuthzError, error) {
	query := redirect.URL.Query()

	if errCode := query.Get("error"); errCode != "" {
		return nil, &types.AuthzError{
			Code:        types.AuthzErrorCode(errCode),
			Description: query.Get("error_description"),
			URI:         query.Get("error_uri"),
			State:       query.Get("state"),
		}, nil
	}

	code := query.Get("code")
	if code == "" {
		return nil, nil, &Error{Kind: ErrCodeMissing}
	}

	state := query.Get("state")
	if state == "" {
		return nil, nil, &Error{Kind: ErrStateMissing}
	}

	ok, err := e.caps.ConsumeNonce(state)
	if err != nil {
		return nil, nil, &Error{Kind: ErrHost, Err: err}
	}
	if !ok {
		return nil, nil, &Error{Kind: ErrNonceMismatch}
	}

	client, err := e.caps.OwnClientRecord()
	if err != nil {
		return nil, nil, &Error{Kind: ErrHost, Err: err}
	}
	redirectURI, err := e.caps.OwnRedirectURI()
	if err != nil {
		return nil, nil, &Error{Kind: ErrHost, Err: err}
	}

	form := url.Values{
		"grant_type":   {"authorization_code"},
		"code":         {code},
		"redirect_uri": {redirectURI},
	}

	req, err := http.NewRequestWithContext(redirect.Context(), http.MethodPost, tokenEndpoint, bytes.NewReader([]byte(form.Encode())))
	if err != nil {
		return nil, nil, &Error{Kind: ErrTransport, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(client.ClientID, client.Credentials)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, nil, &Error{Kind: ErrTransport, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, &Error{Kind: ErrTransport, Err: err}
	}

	switch resp.StatusCode {
	case http.StatusOK:
		var token types.TokenData
		if err := json.Unmarshal(body, &token); err != nil {
			return nil, nil, &Error{Kind: ErrDecode, Err: err}
		}
		return &token, nil, nil
	case http.StatusBadRequest, http.StatusUnauthorized:
		var authzErr types.AuthzError
		if err := json.Unmarshal(body, &authzErr); err != nil {
			return nil, nil, &Error{Kind: ErrDecode, Err: err}
		}
		return nil, &authzErr, nil
	default:
		return nil, nil, &Error{
			Kind: ErrUnexpectedStatus,
			Err:  fmt.Errorf("token endpoint returned status %d", resp.StatusCode),
		}
	}
}
