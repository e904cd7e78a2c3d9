package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meallens/internal/apperrors"
	"meallens/internal/models"
)

const testKey = "sk-test-key"

// chatReply wraps content into the provider's chat-completions envelope.
func chatReply(content string) string {
	reply := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	}
	data, _ := json.Marshal(reply)
	return string(data)
}

func newTestClient(server *httptest.Server) *VisionClient {
	return New(Config{BaseURL: server.URL, Timeout: 5 * time.Second})
}

func TestAnalyze_Success(t *testing.T) {
	var gotAuth string
	var gotBody chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(chatReply(`{"items":[{"name":"White Rice","grams":180.4,"calories":229.6,"confidence":"high"}]}`)))
	}))
	defer server.Close()

	items, err := newTestClient(server).Analyze(context.Background(), "aW1hZ2U=", testKey)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "White Rice", items[0].Name)
	assert.Equal(t, 180, items[0].Grams)
	assert.Equal(t, 230, items[0].Calories)
	assert.Equal(t, models.ConfidenceHigh, items[0].Confidence)
	assert.Empty(t, items[0].MealID, "analyzed items carry no meal yet")

	assert.Equal(t, "Bearer "+testKey, gotAuth)
	require.Len(t, gotBody.Messages, 1)
	require.Len(t, gotBody.Messages[0].Content, 2)
	assert.Equal(t, "data:image/jpeg;base64,aW1hZ2U=", gotBody.Messages[0].Content[1].ImageURL.URL)
	assert.Equal(t, "json_object", gotBody.ResponseFormat.Type)
}

func TestAnalyze_EmptyItemsIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chatReply(`{"items":[]}`)))
	}))
	defer server.Close()

	items, err := newTestClient(server).Analyze(context.Background(), "aW1hZ2U=", testKey)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestAnalyze_KeyPrecheckSkipsNetwork(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer server.Close()
	c := newTestClient(server)

	_, err := c.Analyze(context.Background(), "aW1hZ2U=", "")
	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidAPIKey))

	_, err = c.Analyze(context.Background(), "aW1hZ2U=", "pk-wrong")
	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidAPIKey))

	assert.Zero(t, requests, "format check must run before any network activity")
}

func TestAnalyze_StatusMapping(t *testing.T) {
	cases := []struct {
		status int
		code   apperrors.Code
	}{
		{http.StatusUnauthorized, apperrors.CodeInvalidAPIKey},
		{http.StatusTooManyRequests, apperrors.CodeRateLimited},
		{http.StatusInternalServerError, apperrors.CodeServiceUnavailable},
		{http.StatusBadGateway, apperrors.CodeServiceUnavailable},
		{http.StatusBadRequest, apperrors.CodeUnknown},
	}

	for _, tc := range cases {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
		}))
		_, err := newTestClient(server).Analyze(context.Background(), "aW1hZ2U=", testKey)
		server.Close()
		assert.True(t, apperrors.Is(err, tc.code), "status %d: expected %s, got %v", tc.status, tc.code, err)
	}
}

func TestMapProviderStatus(t *testing.T) {
	assert.True(t, apperrors.Is(MapProviderStatus(401, ""), apperrors.CodeInvalidAPIKey))
	assert.True(t, apperrors.Is(MapProviderStatus(429, ""), apperrors.CodeRateLimited))
	assert.True(t, apperrors.Is(MapProviderStatus(500, ""), apperrors.CodeServiceUnavailable))
	assert.True(t, apperrors.Is(MapProviderStatus(503, ""), apperrors.CodeServiceUnavailable))

	err := MapProviderStatus(418, "teapot")
	assert.True(t, apperrors.Is(err, apperrors.CodeUnknown))
	assert.Contains(t, err.Error(), "teapot")
}

func TestAnalyze_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	c := New(Config{BaseURL: server.URL, Timeout: 50 * time.Millisecond})
	start := time.Now()
	_, err := c.Analyze(context.Background(), "aW1hZ2U=", testKey)
	assert.True(t, apperrors.Is(err, apperrors.CodeTimeout), "got %v", err)
	assert.Less(t, time.Since(start), 2*time.Second, "late response must be discarded, not awaited")
}

func TestAnalyze_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	_, err := newTestClient(server).Analyze(context.Background(), "aW1hZ2U=", testKey)
	assert.True(t, apperrors.Is(err, apperrors.CodeNetwork), "got %v", err)
}

func TestAnalyze_MalformedEnvelope(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"no choices", `{"choices":[]}`},
		{"empty content", chatReply("")},
		{"content not json", chatReply("here are your foods!")},
		{"missing items key", chatReply(`{"foods":[]}`)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tc.body))
			}))
			defer server.Close()

			_, err := newTestClient(server).Analyze(context.Background(), "aW1hZ2U=", testKey)
			assert.True(t, apperrors.Is(err, apperrors.CodeMalformedResponse), "got %v", err)
		})
	}
}
