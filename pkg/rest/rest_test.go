package rest

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type input struct {
	Action string `json:"action"`
}

func TestReadJSON(t *testing.T) {
	var in input
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"action":"play"}`))
	require.NoError(t, ReadJSON(r, &in))
	assert.Equal(t, "play", in.Action)

	for _, body := range []string{``, `{"nope":1}`, `{"action":"play"}{}`, `{`} {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		assert.Error(t, ReadJSON(r, &in), body)
	}
}

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()
	require.NoError(t, WriteJSON(w, http.StatusCreated, Envelope{"ok": true}))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())
}
