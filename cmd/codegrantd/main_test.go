package main

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/hooklift/codegrant/ae"
	"github.com/hooklift/codegrant/internal/testutil"
	"github.com/hooklift/codegrant/types"
)

func newTestEngine() (*ae.Engine, *testutil.FakeHost) {
	host := testutil.NewFakeHost()
	host.RegisterClient(&types.ClientRecord{
		ClientID:     "s6BhdRkqt3",
		Type:         types.ClientConfidential,
		RedirectURIs: []string{"https://client.example.com/cb"},
		Credentials:  "secret",
	})
	return ae.New(host), host
}

func TestAuthzHandlerRejectsBadMethod(t *testing.T) {
	engine, _ := newTestEngine()
	req := httptest.NewRequest(http.MethodDelete, "/authorize", nil)
	w := httptest.NewRecorder()
	authzHandler(engine)(w, req)
	testutil.Equals(t, http.StatusMethodNotAllowed, w.Code)
}

func TestAuthzHandlerDirectFailureDoesNotRedirect(t *testing.T) {
	engine, _ := newTestEngine()
	req := httptest.NewRequest(http.MethodGet, "/authorize?response_type=code", nil)
	w := httptest.NewRecorder()
	authzHandler(engine)(w, req)

	testutil.Equals(t, http.StatusBadRequest, w.Code)
	testutil.Equals(t, "", w.Header().Get("Location"))
}

func TestAuthzHandlerGrantsAndRedirects(t *testing.T) {
	engine, _ := newTestEngine()
	req := httptest.NewRequest(http.MethodGet, "/authorize?client_id=s6BhdRkqt3&response_type=code&state=xyz", nil)
	w := httptest.NewRecorder()
	authzHandler(engine)(w, req)

	testutil.Equals(t, http.StatusFound, w.Code)
	loc, err := url.Parse(w.Header().Get("Location"))
	testutil.Ok(t, err)
	testutil.Equals(t, "xyz", loc.Query().Get("state"))
	testutil.Assert(t, loc.Query().Get("code") != "", "expected a code in the redirect")
}

func TestTokenHandlerRejectsBadMethod(t *testing.T) {
	engine, _ := newTestEngine()
	req := httptest.NewRequest(http.MethodGet, "/token", nil)
	w := httptest.NewRecorder()
	tokenHandler(engine)(w, req)
	testutil.Equals(t, http.StatusMethodNotAllowed, w.Code)
}

func TestTokenHandlerRejectsWrongContentType(t *testing.T) {
	engine, _ := newTestEngine()
	req := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader("grant_type=authorization_code"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	tokenHandler(engine)(w, req)
	testutil.Equals(t, http.StatusBadRequest, w.Code)
}

func TestTokenHandlerRedeemsGrantedCode(t *testing.T) {
	engine, host := newTestEngine()
	host.NextCode = "abc123"

	authzReq := httptest.NewRequest(http.MethodGet, "/authorize?client_id=s6BhdRkqt3&response_type=code", nil)
	w := httptest.NewRecorder()
	authzHandler(engine)(w, authzReq)
	testutil.Equals(t, http.StatusFound, w.Code)

	form := url.Values{"grant_type": {"authorization_code"}, "code": {"abc123"}}
	tokenReq := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(form.Encode()))
	tokenReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	tokenReq.SetBasicAuth("s6BhdRkqt3", "secret")
	tw := httptest.NewRecorder()
	tokenHandler(engine)(tw, tokenReq)

	testutil.Equals(t, http.StatusOK, tw.Code)
}
