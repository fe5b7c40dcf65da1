package extract

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctleads/harvester/internal/inference"
	"github.com/ctleads/harvester/pkg/logger"
)

func chatServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		body := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": content}},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(body))
	}))
}

func inferenceClient(t *testing.T, apiURL string) *inference.Client {
	t.Helper()
	log, err := logger.NewLogger("error", "json")
	require.NoError(t, err)
	c, err := inference.NewClient(apiURL, "test-key", "test/model", 6000, log)
	require.NoError(t, err)
	return c
}

func TestDetectPartiesPagePositive(t *testing.T) {
	server := chatServer(t, "```json\n{\"is_parties_page\": true, \"confidence\": 87, \"page_index\": 2, \"region_hint\": \"upper_half\", \"signals\": [\"name_address_grid\"]}\n```")
	defer server.Close()

	log, _ := logger.NewLogger("error", "json")
	c := NewClassifier(inferenceClient(t, server.URL), log)

	d := c.DetectPartiesPage(context.Background(), "FBTCV246001234S", 2, []byte("png"))
	assert.True(t, d.IsPartiesPage)
	assert.Equal(t, 87, d.Confidence)
	assert.Equal(t, 2, d.PageIndex)
	assert.Equal(t, "upper_half", d.RegionHint)
	assert.Equal(t, []string{"name_address_grid"}, d.Signals)
}

func TestDetectPartiesPageTransportFailureIsNegative(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	log, _ := logger.NewLogger("error", "json")
	c := NewClassifier(inferenceClient(t, server.URL), log)

	d := c.DetectPartiesPage(context.Background(), "FBTCV246001234S", 0, []byte("png"))
	assert.False(t, d.IsPartiesPage)
	assert.Equal(t, 0, d.PageIndex)
	assert.Equal(t, "full", d.RegionHint)
}

func TestDetectPartiesPageMalformedResponseIsNegative(t *testing.T) {
	server := chatServer(t, "I could not read this page, sorry.")
	defer server.Close()

	log, _ := logger.NewLogger("error", "json")
	c := NewClassifier(inferenceClient(t, server.URL), log)

	d := c.DetectPartiesPage(context.Background(), "FBTCV246001234S", 1, []byte("png"))
	assert.False(t, d.IsPartiesPage)
	assert.Equal(t, 1, d.PageIndex)
}

func TestFieldCoercionHelpers(t *testing.T) {
	assert.True(t, asBool(true))
	assert.False(t, asBool("true"))
	assert.False(t, asBool(nil))

	assert.Equal(t, 7, asInt(float64(7.9), 0))
	assert.Equal(t, 3, asInt(3, 0))
	assert.Equal(t, 5, asInt("7", 5))

	assert.Equal(t, "x", asString("x", "def"))
	assert.Equal(t, "def", asString("", "def"))
	assert.Equal(t, "def", asString(nil, "def"))

	assert.Equal(t, []string{"a", "b"}, asStringList([]interface{}{"a", "", "b", 3}))
	assert.Nil(t, asStringList("not a list"))
}
