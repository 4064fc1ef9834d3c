package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	t.Run("writes JSON with correct content type", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()

		WriteJSON(rec, http.StatusOK, map[string]int{"capacity": 512})

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var result map[string]int
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.Equal(t, 512, result["capacity"])
	})

	t.Run("handles nil data", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()

		WriteJSON(rec, http.StatusNoContent, nil)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
	})
}

func TestWriteOK(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	WriteOK(rec, map[string]string{"status": "ok"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestWriteError(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	WriteError(rec, http.StatusServiceUnavailable, "not_bound", "engine binding invalid")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"error":"not_bound","message":"engine binding invalid"}`, rec.Body.String())
}

func TestWriteText(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	WriteText(rec, http.StatusInternalServerError, "engine binding invalid.")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "engine binding invalid.", rec.Body.String())
}

func TestWriteBody(t *testing.T) {
	t.Parallel()

	t.Run("sets content type", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()

		WriteBody(rec, http.StatusOK, "application/xml", "<sudoku/>")

		assert.Equal(t, "application/xml", rec.Header().Get("Content-Type"))
		assert.Equal(t, "<sudoku/>", rec.Body.String())
	})

	t.Run("empty content type leaves header alone", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()

		WriteBody(rec, http.StatusOK, "", "x")

		assert.Empty(t, rec.Header().Get("Content-Type"))
		assert.Equal(t, "x", rec.Body.String())
	})
}
