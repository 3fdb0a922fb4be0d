package core

import (
	"os"
	"path/filepath"
	"testing"

	"codeassist/pkg/corerpc"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestStateStore_ApplyProviderUpdate(t *testing.T) {
	store, err := NewStateStore("")
	require.NoError(t, err)

	err = store.ApplyProviderUpdate(&corerpc.ProviderUpdate{
		Provider:   "oca",
		Updates:    map[string]any{"ocaMode": "external", "ocaBaseUrl": "https://oca.example.com", "ignored": "x"},
		UpdateMask: []string{"ocaMode", "ocaBaseUrl"},
	})
	require.NoError(t, err)

	assert.Equal(t, "external", store.Get("ocaMode").String())
	assert.Equal(t, "https://oca.example.com", store.Get("ocaBaseUrl").String())
	assert.False(t, store.Get("ignored").Exists(), "keys outside the mask are not written")
	assert.False(t, store.Get("planModeApiProvider").Exists())

	t.Run("masked key without value is cleared", func(t *testing.T) {
		err := store.ApplyProviderUpdate(&corerpc.ProviderUpdate{
			Provider:   "oca",
			UpdateMask: []string{"ocaBaseUrl"},
		})
		require.NoError(t, err)
		assert.False(t, store.Get("ocaBaseUrl").Exists())
		assert.Equal(t, "external", store.Get("ocaMode").String(), "unmasked keys survive")
	})

	t.Run("set as active", func(t *testing.T) {
		err := store.ApplyProviderUpdate(&corerpc.ProviderUpdate{
			Provider:    "oca",
			Updates:     map[string]any{"planModeApiModelId": "oca/gpt-4.1", "actModeApiModelId": "oca/gpt-4.1"},
			UpdateMask:  []string{"planModeApiModelId", "actModeApiModelId"},
			SetAsActive: true,
		})
		require.NoError(t, err)
		assert.Equal(t, "oca", store.Get("planModeApiProvider").String())
		assert.Equal(t, "oca", store.Get("actModeApiProvider").String())
		assert.Equal(t, "oca/gpt-4.1", store.Get("actModeApiModelId").String())
	})

	t.Run("nested values", func(t *testing.T) {
		err := store.ApplyProviderUpdate(&corerpc.ProviderUpdate{
			Provider:   "oca",
			Updates:    map[string]any{"actModeOcaModelInfo": map[string]any{"maxTokens": float64(4096)}},
			UpdateMask: []string{"actModeOcaModelInfo"},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(4096), store.Get("actModeOcaModelInfo.maxTokens").Int())
	})

	t.Run("path-like keys are rejected", func(t *testing.T) {
		for _, key := range []string{"a.b", "ocaUserInfo.uid", "x*", ""} {
			err := store.ApplyProviderUpdate(&corerpc.ProviderUpdate{
				Provider:   "oca",
				Updates:    map[string]any{key: "v"},
				UpdateMask: []string{key},
			})
			assert.Error(t, err, "key %q", key)
		}
	})
}

func TestStateStore_Persistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")

	store, err := NewStateStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Set(map[string]any{KeyAPIKey: "secret", KeyMode: "internal"}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	reloaded, err := NewStateStore(path)
	require.NoError(t, err)
	assert.Equal(t, "secret", reloaded.Get(KeyAPIKey).String())
	assert.True(t, gjson.Valid(reloaded.Latest()))

	t.Run("invalid file", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "state.json")
		require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0600))
		_, err := NewStateStore(bad)
		assert.Error(t, err)
	})
}

func TestStateStore_AuthState(t *testing.T) {
	store, err := NewStateStore("")
	require.NoError(t, err)

	state := store.AuthState()
	assert.Nil(t, state.User)
	assert.Nil(t, state.APIKey)

	require.NoError(t, store.Set(map[string]any{
		KeyAPIKey:   "token",
		KeyUserInfo: map[string]any{"uid": "u-1", "email": "dev@example.com"},
	}))

	state = store.AuthState()
	require.NotNil(t, state.User)
	assert.Equal(t, "u-1", state.User.UID)
	assert.Equal(t, "dev@example.com", state.User.Email)
	require.NotNil(t, state.APIKey)
	assert.Equal(t, "token", *state.APIKey)

	require.NoError(t, store.Set(map[string]any{KeyUserInfo: map[string]any{"uid": ""}}))
	assert.Nil(t, store.AuthState().User, "an empty uid is not an identity")
}
