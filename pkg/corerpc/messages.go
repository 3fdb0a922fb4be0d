package corerpc

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"
)

// UserInfo is the identity attached to an authenticated auth state.
type UserInfo struct {
	UID         string `json:"uid"`
	DisplayName string `json:"displayName,omitempty"`
	Email       string `json:"email,omitempty"`
}

// AuthState is one event on the auth status stream.
// A nil User means no identity; a nil APIKey means no credential.
type AuthState struct {
	User   *UserInfo
	APIKey *string
}

// ToStruct encodes the state as the wire Struct. Absent fields are omitted.
func (s *AuthState) ToStruct() (*structpb.Struct, error) {
	fields := map[string]any{}
	if s != nil && s.User != nil {
		user := map[string]any{"uid": s.User.UID}
		if s.User.DisplayName != "" {
			user["displayName"] = s.User.DisplayName
		}
		if s.User.Email != "" {
			user["email"] = s.User.Email
		}
		fields["user"] = user
	}
	if s != nil && s.APIKey != nil {
		fields["apiKey"] = *s.APIKey
	}

	st, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to encode auth state: %w", err)
	}
	return st, nil
}

// AuthStateFromStruct decodes a wire Struct. Unknown fields are ignored and a
// nil Struct yields an empty state.
func AuthStateFromStruct(st *structpb.Struct) *AuthState {
	state := &AuthState{}
	if st == nil {
		return state
	}

	if v, ok := st.GetFields()["user"]; ok {
		if user := v.GetStructValue(); user != nil {
			f := user.GetFields()
			state.User = &UserInfo{
				UID:         f["uid"].GetStringValue(),
				DisplayName: f["displayName"].GetStringValue(),
				Email:       f["email"].GetStringValue(),
			}
		}
	}
	if v, ok := st.GetFields()["apiKey"]; ok {
		if _, isString := v.GetKind().(*structpb.Value_StringValue); isString {
			key := v.GetStringValue()
			state.APIKey = &key
		}
	}
	return state
}

// ProviderUpdate is a masked partial update of one provider's fields.
// Only keys in UpdateMask are touched; a masked key missing from Updates is
// cleared.
type ProviderUpdate struct {
	Provider    string
	Updates     map[string]any
	UpdateMask  []string
	SetAsActive bool
}

// ToStruct encodes the update as the wire Struct.
func (u *ProviderUpdate) ToStruct() (*structpb.Struct, error) {
	mask := make([]any, 0, len(u.UpdateMask))
	for _, m := range u.UpdateMask {
		mask = append(mask, m)
	}
	updates := u.Updates
	if updates == nil {
		updates = map[string]any{}
	}

	st, err := structpb.NewStruct(map[string]any{
		"provider":    u.Provider,
		"setAsActive": u.SetAsActive,
		"updates":     updates,
		"updateMask":  mask,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode provider update: %w", err)
	}
	return st, nil
}

// ProviderUpdateFromStruct decodes a wire Struct into a ProviderUpdate.
func ProviderUpdateFromStruct(st *structpb.Struct) (*ProviderUpdate, error) {
	if st == nil {
		return nil, fmt.Errorf("provider update is empty")
	}

	m := st.AsMap()
	provider, _ := m["provider"].(string)
	if provider == "" {
		return nil, fmt.Errorf("provider update is missing provider")
	}

	u := &ProviderUpdate{Provider: provider, Updates: map[string]any{}}
	u.SetAsActive, _ = m["setAsActive"].(bool)

	if updates, ok := m["updates"].(map[string]any); ok {
		u.Updates = updates
	}
	if mask, ok := m["updateMask"].([]any); ok {
		for _, item := range mask {
			key, ok := item.(string)
			if !ok || key == "" {
				return nil, fmt.Errorf("invalid update mask entry %v", item)
			}
			u.UpdateMask = append(u.UpdateMask, key)
		}
	}
	return u, nil
}
