package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListModels(t *testing.T) {
	var gotAuth, gotRequestID, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get(RequestIDHeader)
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[
			{"model_name":"oca/gpt-4.1","model_info":{"max_output_tokens":32768,"max_input_tokens":1047576,"supports_vision":true}},
			{"model_name":"oca/llama4"},
			{"model_name":""}
		]}`))
	}))
	defer server.Close()

	client := NewClient(WithHTTPClient(server.Client()))
	models, err := client.ListModels(context.Background(), server.URL+"/litellm/", "key-1", "req-1")
	require.NoError(t, err)

	assert.Equal(t, "Bearer key-1", gotAuth)
	assert.Equal(t, "req-1", gotRequestID)
	assert.Equal(t, "/litellm/v1/model/info", gotPath)

	assert.Equal(t, []string{"oca/gpt-4.1", "oca/llama4"}, models.IDs())
	assert.Equal(t, int64(32768), models["oca/gpt-4.1"].MaxTokens)
	assert.Equal(t, int64(1047576), models["oca/gpt-4.1"].ContextWindow)
	assert.True(t, models["oca/gpt-4.1"].SupportsImages)
	assert.NotNil(t, models["oca/llama4"])
}

func TestListModels_Errors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/denied/v1/model/info":
			http.Error(w, "token expired", http.StatusUnauthorized)
		default:
			_, _ = w.Write([]byte(`not json`))
		}
	}))
	defer server.Close()

	client := NewClient(WithHTTPClient(server.Client()))

	tests := []struct {
		name    string
		baseURL string
		wantErr string
	}{
		{name: "http error", baseURL: server.URL + "/denied", wantErr: "status 401: token expired"},
		{name: "bad body", baseURL: server.URL, wantErr: "failed to parse model catalog"},
		{name: "no base url", baseURL: "", wantErr: "no API base URL configured"},
		{name: "bad scheme", baseURL: "ftp://example.com", wantErr: "scheme must be http or https"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.ListModels(context.Background(), tt.baseURL, "key", "")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSelectDefault(t *testing.T) {
	models := Models{
		"oca/b":       {MaxTokens: 2},
		"oca/a":       {MaxTokens: 1},
		"oca/gpt-4.1": {MaxTokens: 3},
	}

	id, info, err := SelectDefault(models, "oca/gpt-4.1")
	require.NoError(t, err)
	assert.Equal(t, "oca/gpt-4.1", id)
	assert.Equal(t, int64(3), info.MaxTokens)

	delete(models, "oca/gpt-4.1")
	id, _, err = SelectDefault(models, "oca/gpt-4.1")
	require.NoError(t, err)
	assert.Equal(t, "oca/a", id, "falls back to the first id in sorted order")

	_, _, err = SelectDefault(Models{}, "oca/gpt-4.1")
	assert.True(t, errors.Is(err, ErrNoModels))
}

func TestModelInfoSettings(t *testing.T) {
	var nilInfo *ModelInfo
	assert.Nil(t, nilInfo.Settings())

	settings := (&ModelInfo{MaxTokens: 10, SupportsPromptCache: true}).Settings()
	assert.Equal(t, int64(10), settings["maxTokens"])
	assert.Equal(t, true, settings["supportsPromptCache"])
}
