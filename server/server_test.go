package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plagiax/plagiax/internal/models"
	"github.com/plagiax/plagiax/pkg/checker"
)

type stubFetcher struct{}

func (stubFetcher) FetchRawBytes(context.Context, string) ([]byte, error) {
	return []byte("%PDF"), nil
}

type stubExtractor struct{}

func (stubExtractor) ExtractCleanText([]byte) (string, error) {
	return "Paper Title\nAbstract\nwe investigate automated plagiarism detection across several document collections today", nil
}

type stubEmbedder struct{}

func (stubEmbedder) EmbedText(context.Context, string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

type stubClassifier struct{}

func (stubClassifier) Classify(context.Context, string) (float64, float64, error) {
	return 0.8, 0.2, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	c := checker.NewWithConfig(checker.Deps{
		Fetcher:    stubFetcher{},
		Extractor:  stubExtractor{},
		Embedder:   stubEmbedder{},
		Classifier: stubClassifier{},
	}, checker.Config{})

	s := NewWithConfig(Config{}, c)
	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)
	return ts
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRootEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body["message"], "Plagiarism Detection API")
}

func TestCheckEndpoint(t *testing.T) {
	ts := newTestServer(t)

	reqBody, _ := json.Marshal(models.CheckRequest{
		PDFURL:         "https://example.com/paper.pdf",
		ReferenceTexts: []string{"we investigate automated plagiarism detection"},
	})

	resp, err := http.Post(ts.URL+"/api/check-plagiarism", "application/json", bytes.NewReader(reqBody))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result models.CheckResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))

	assert.True(t, result.Success)
	assert.Len(t, result.PlagiarismResults, 1)
	assert.Contains(t, result.Sections, models.SectionAbstract)
	assert.NotEmpty(t, result.Timestamp)
}

func TestCheckEndpointRequiresPDFURL(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/check-plagiarism", "application/json", strings.NewReader("{}"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, false, body["success"])
}

func TestCheckEndpointRejectsGet(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/check-plagiarism")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t)

	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/api/check-plagiarism", nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestWebSocketCheck(t *testing.T) {
	ts := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	req, _ := json.Marshal(models.CheckRequest{
		PDFURL:         "https://example.com/paper.pdf",
		ReferenceTexts: []string{"reference text"},
	})
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, req))

	var status Message
	require.NoError(t, conn.ReadJSON(&status))
	assert.Equal(t, "status", status.Type)

	var result Message
	require.NoError(t, conn.ReadJSON(&result))
	assert.Equal(t, "result", result.Type)
	require.NotNil(t, result.Data)
}

func TestWebSocketRejectsMissingURL(t *testing.T) {
	ts := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{}")))

	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "error", msg.Type)
}
