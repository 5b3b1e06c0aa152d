package utils

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddToLogMessage(t *testing.T) {
	var b strings.Builder
	AddToLogMessage(&b, "[Rating API]")
	AddToLogMessage(&b, "done")
	assert.Equal(t, "[Rating API];\ndone;\n", b.String())
}

func TestFlushLogMessage(t *testing.T) {
	var out bytes.Buffer
	logger := zerolog.New(&out)

	var b strings.Builder
	FlushLogMessage(logger, &b)
	assert.Empty(t, out.String())

	AddToLogMessage(&b, "[Stats API]")
	FlushLogMessage(logger, &b)
	assert.Contains(t, out.String(), "[Stats API];")
}

func TestRespondError_Envelope(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, nil, "Fragrance not found", http.StatusNotFound)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"status":"fail","message":"Fragrance not found"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	RespondError(rec, nil, "boom", http.StatusInternalServerError)
	assert.JSONEq(t, `{"status":"error","message":"boom"}`, rec.Body.String())
}

func TestRespondSuccess_Envelope(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondSuccess(rec, http.StatusOK, map[string]int{"owned": 1})
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"success","data":{"owned":1}}`, rec.Body.String())
}

func TestParseTags(t *testing.T) {
	tags, err := ParseTags("```json\n[\"Amber Glass\", \"gold cap\", \"amber glass\", \" \"]\n```")
	require.NoError(t, err)
	assert.Equal(t, []string{"amber glass", "gold cap"}, tags)

	_, err = ParseTags("not json")
	assert.Error(t, err)
}

func TestObjectURL(t *testing.T) {
	got := ObjectURL("bucket", "eu-west-1", "fragrances/1-abc-my bottle.jpg")
	assert.Equal(t, "https://bucket.s3.eu-west-1.amazonaws.com/fragrances/1-abc-my%20bottle.jpg", got)
}

func TestValidateStruct(t *testing.T) {
	type req struct {
		Username string  `json:"username" validate:"required,min=3"`
		Rating   float64 `json:"rating" validate:"gte=0,lte=5"`
	}

	assert.Empty(t, ValidateStruct(req{Username: "alice", Rating: 3}))
	assert.Equal(t, "username is required", ValidateStruct(req{Rating: 3}))
	assert.Equal(t, "username must be at least 3 characters", ValidateStruct(req{Username: "al"}))
	assert.Equal(t, "rating must be at most 5", ValidateStruct(req{Username: "alice", Rating: 6}))
}

func TestNewLogger_Levels(t *testing.T) {
	var out bytes.Buffer
	l := newLogger(&out, "warn", "json")
	l.Info().Msg("hidden")
	l.Warn().Msg("shown")
	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "shown")

	out.Reset()
	l = newLogger(&out, "nonsense", "json")
	l.Info().Msg("default info")
	assert.Contains(t, out.String(), "default info")
}
