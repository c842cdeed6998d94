package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "github.com/Alexis-Lijeron/redes/configs"
	"github.com/Alexis-Lijeron/redes/internal/models"
)

func TestOpenAIAdapterParsesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req.Model)
		require.NotNil(t, req.ResponseFormat)
		assert.Equal(t, "json_object", req.ResponseFormat.Type)

		inner := `{"text":"Big news ✨","hashtags":["#launch"],"suggested_media_prompt":"a rocket","character_count":10,"tone":"excited"}`
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": inner}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	adapter := NewOpenAIAdapter(config.OpenAI{APIKey: "sk-test", Model: "gpt-4o-mini"}).(*openaiAdapter)
	adapter.baseURL = srv.URL

	adaptation, err := adapter.AdaptForNetwork(context.Background(), "Launch", "We are live", models.NetworkFacebook)
	require.NoError(t, err)
	assert.Equal(t, "Big news ✨", adaptation.Text)
	assert.Equal(t, []string{"#launch"}, adaptation.Hashtags)
	assert.Equal(t, "excited", adaptation.Tone)
}

func TestOpenAIAdapterAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limited","type":"rate_limit_error"}}`))
	}))
	defer srv.Close()

	adapter := NewOpenAIAdapter(config.OpenAI{APIKey: "sk-test", Model: "gpt-4o-mini"}).(*openaiAdapter)
	adapter.baseURL = srv.URL

	_, err := adapter.AdaptForNetwork(context.Background(), "Launch", "We are live", models.NetworkFacebook)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
