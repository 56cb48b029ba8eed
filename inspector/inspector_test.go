package inspector

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jayamlp/jayamlp/bnf"
)

func testServer() *Server {
	g := bnf.NewGrammar()
	g.AddOverload(&bnf.Overload{Name: "letter", Body: bnf.Char('a')})
	return &Server{Grammar: g}
}

func TestHandleParseSuccess(t *testing.T) {
	s := testServer()
	body, _ := json.Marshal(parseRequest{Rule: "letter", Text: "a"})
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	w := httptest.NewRecorder()

	s.Handler().ServeHTTP(w, req)

	var resp parseResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.NotNil(t, resp.Result)
}

func TestHandleParseNoMatch(t *testing.T) {
	s := testServer()
	body, _ := json.Marshal(parseRequest{Rule: "letter", Text: "z"})
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	w := httptest.NewRecorder()

	s.Handler().ServeHTTP(w, req)

	var resp parseResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Error)
}

func TestHandleParseRejectsGet(t *testing.T) {
	s := testServer()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
