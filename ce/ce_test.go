package ce_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/hooklift/codegrant/ce"
	"github.com/hooklift/codegrant/internal/testutil"
	"github.com/hooklift/codegrant/types"
)

func newFakeClient() *testutil.FakeClient {
	return testutil.NewFakeClient(&types.ClientRecord{
		ClientID:    "s6BhdRkqt3",
		Credentials: "secret",
	}, "https://client.example.com/cb")
}

func TestStartOAuthBuildsAuthzURL(t *testing.T) {
	fake := newFakeClient()
	engine := ce.New(fake)

	redirect, err := engine.StartOAuth("https://as.example.com/authorize", "profile")
	testutil.Ok(t, err)

	u, err := url.Parse(redirect)
	testutil.Ok(t, err)
	testutil.Equals(t, "code", u.Query().Get("response_type"))
	testutil.Equals(t, "s6BhdRkqt3", u.Query().Get("client_id"))
	testutil.Equals(t, "https://client.example.com/cb", u.Query().Get("redirect_uri"))
	testutil.Equals(t, "profile", u.Query().Get("scope"))

	state := u.Query().Get("state")
	testutil.Assert(t, state != "", "expected a non-empty state nonce")
	testutil.Assert(t, fake.Nonces[state], "expected the nonce to be stored")
}

func TestHandleRedirectMissingCode(t *testing.T) {
	fake := newFakeClient()
	engine := ce.New(fake)

	req := httptest.NewRequest(http.MethodGet, "/cb?state=xyz", nil)
	_, _, err := engine.HandleRedirect(req, "https://as.example.com/token")
	testutil.Assert(t, err != nil, "expected an error for a missing code")

	var ceErr *ce.Error
	testutil.Assert(t, asCeError(err, &ceErr), "expected a *ce.Error")
	testutil.Equals(t, ce.ErrCodeMissing, ceErr.Kind)
}

func TestHandleRedirectMissingState(t *testing.T) {
	fake := newFakeClient()
	engine := ce.New(fake)

	req := httptest.NewRequest(http.MethodGet, "/cb?code=abc", nil)
	_, _, err := engine.HandleRedirect(req, "https://as.example.com/token")
	testutil.Assert(t, err != nil, "expected an error for a missing state")

	var ceErr *ce.Error
	testutil.Assert(t, asCeError(err, &ceErr), "expected a *ce.Error")
	testutil.Equals(t, ce.ErrStateMissing, ceErr.Kind)
}

func TestHandleRedirectNonceMismatch(t *testing.T) {
	fake := newFakeClient()
	engine := ce.New(fake)

	req := httptest.NewRequest(http.MethodGet, "/cb?code=abc&state=never-issued", nil)
	_, _, err := engine.HandleRedirect(req, "https://as.example.com/token")
	testutil.Assert(t, err != nil, "expected an error for a state that was never issued")

	var ceErr *ce.Error
	testutil.Assert(t, asCeError(err, &ceErr), "expected a *ce.Error")
	testutil.Equals(t, ce.ErrNonceMismatch, ceErr.Kind)
}

func TestHandleRedirectRedeemsToken(t *testing.T) {
	fake := newFakeClient()
	testutil.Ok(t, fake.StoreNonce("xyz"))

	var gotUser, gotPass string
	var gotBody url.Values
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotPass, _ = r.BasicAuth()
		r.ParseForm()
		gotBody = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(types.TokenData{
			AccessToken: "2YotnFZFEjr1zCsicMWpAA",
			TokenType:   "bearer",
		})
	}))
	defer ts.Close()

	engine := ce.New(fake)

	req := httptest.NewRequest(http.MethodGet, "/cb?code=SplxlOBeZQQYbYS6WxSbIA&state=xyz", nil)
	token, tokenErr, err := engine.HandleRedirect(req, ts.URL)
	testutil.Ok(t, err)
	testutil.Assert(t, tokenErr == nil, "did not expect a token error")
	testutil.Equals(t, "2YotnFZFEjr1zCsicMWpAA", token.AccessToken)
	testutil.Equals(t, "s6BhdRkqt3", gotUser)
	testutil.Equals(t, "secret", gotPass)
	testutil.Equals(t, "authorization_code", gotBody.Get("grant_type"))
	testutil.Equals(t, "SplxlOBeZQQYbYS6WxSbIA", gotBody.Get("code"))
	testutil.Equals(t, "https://client.example.com/cb", gotBody.Get("redirect_uri"))
}

func TestHandleRedirectSurfacesTokenEndpointError(t *testing.T) {
	fake := newFakeClient()
	testutil.Ok(t, fake.StoreNonce("xyz"))

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(types.TokenError{
			Code:        types.TokenInvalidGrant,
			Description: "authorization code is invalid, expired or already used",
		})
	}))
	defer ts.Close()

	engine := ce.New(fake)
	req := httptest.NewRequest(http.MethodGet, "/cb?code=bad&state=xyz", nil)
	token, authzErr, err := engine.HandleRedirect(req, ts.URL)
	testutil.Ok(t, err)
	testutil.Assert(t, token == nil, "did not expect a token")
	testutil.Assert(t, authzErr != nil, "expected a protocol error")
	testutil.Equals(t, types.AuthzErrorCode(types.TokenInvalidGrant), authzErr.Code)
}

func TestHandleRedirectSurfacesAuthorizationServerDenial(t *testing.T) {
	fake := newFakeClient()
	testutil.Ok(t, fake.StoreNonce("xyz"))
	engine := ce.New(fake)

	req := httptest.NewRequest(http.MethodGet, "/cb?error=access_denied&state=xyz", nil)
	token, authzErr, err := engine.HandleRedirect(req, "https://as.example.com/token")
	testutil.Ok(t, err)
	testutil.Assert(t, token == nil, "did not expect a token")
	testutil.Assert(t, authzErr != nil, "expected the denial to surface as a protocol error")
	testutil.Equals(t, types.AuthzAccessDenied, authzErr.Code)
	testutil.Equals(t, "xyz", authzErr.State)
}

func asCeError(err error, target **ce.Error) bool {
	if e, ok := err.(*ce.Error); ok {
		*target = e
		return true
	}
	return false
}
