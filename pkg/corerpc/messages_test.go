package corerpc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestAuthStateFromStruct(t *testing.T) {
	t.Run("nil struct is empty state", func(t *testing.T) {
		state := AuthStateFromStruct(nil)
		require.NotNil(t, state)
		assert.Nil(t, state.User)
		assert.Nil(t, state.APIKey)
	})

	t.Run("user and key", func(t *testing.T) {
		st, err := structpb.NewStruct(map[string]any{
			"user":   map[string]any{"uid": "u-1", "email": "a@example.com"},
			"apiKey": "secret",
			"extra":  42,
		})
		require.NoError(t, err)

		state := AuthStateFromStruct(st)
		require.NotNil(t, state.User)
		assert.Equal(t, "u-1", state.User.UID)
		assert.Equal(t, "a@example.com", state.User.Email)
		require.NotNil(t, state.APIKey)
		assert.Equal(t, "secret", *state.APIKey)
	})

	t.Run("empty key is present but empty", func(t *testing.T) {
		st, err := structpb.NewStruct(map[string]any{"apiKey": ""})
		require.NoError(t, err)

		state := AuthStateFromStruct(st)
		require.NotNil(t, state.APIKey)
		assert.Empty(t, *state.APIKey)
	})

	t.Run("non-string key is ignored", func(t *testing.T) {
		st, err := structpb.NewStruct(map[string]any{"apiKey": 12})
		require.NoError(t, err)

		assert.Nil(t, AuthStateFromStruct(st).APIKey)
	})
}

func TestAuthState_ToStructOmitsAbsentFields(t *testing.T) {
	st, err := (&AuthState{}).ToStruct()
	require.NoError(t, err)
	assert.Empty(t, st.GetFields())

	key := "k"
	st, err = (&AuthState{User: &UserInfo{UID: "u"}, APIKey: &key}).ToStruct()
	require.NoError(t, err)
	assert.Contains(t, st.GetFields(), "user")
	assert.Contains(t, st.GetFields(), "apiKey")
	assert.NotContains(t, st.GetFields()["user"].GetStructValue().GetFields(), "email")
}

func TestProviderUpdateFromStruct(t *testing.T) {
	t.Run("missing provider", func(t *testing.T) {
		st, err := structpb.NewStruct(map[string]any{"updates": map[string]any{}})
		require.NoError(t, err)

		_, err = ProviderUpdateFromStruct(st)
		assert.Error(t, err)
	})

	t.Run("invalid mask entry", func(t *testing.T) {
		st, err := structpb.NewStruct(map[string]any{
			"provider":   "oca",
			"updateMask": []any{"ocaMode", 3},
		})
		require.NoError(t, err)

		_, err = ProviderUpdateFromStruct(st)
		assert.Error(t, err)
	})

	t.Run("decodes encoded update", func(t *testing.T) {
		in := &ProviderUpdate{
			Provider:    "oca",
			Updates:     map[string]any{"ocaMode": "external"},
			UpdateMask:  []string{"ocaMode", "ocaBaseUrl"},
			SetAsActive: true,
		}
		st, err := in.ToStruct()
		require.NoError(t, err)

		out, err := ProviderUpdateFromStruct(st)
		require.NoError(t, err)
		assert.Equal(t, "oca", out.Provider)
		assert.True(t, out.SetAsActive)
		assert.Equal(t, []string{"ocaMode", "ocaBaseUrl"}, out.UpdateMask)
		assert.Equal(t, "external", out.Updates["ocaMode"])
		assert.NotContains(t, out.Updates, "ocaBaseUrl")
	})
}
