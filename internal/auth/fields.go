package auth

import (
	"errors"

	"codeassist/pkg/corerpc"
)

const (
	// ProviderID identifies the Code Assist provider in the state store.
	ProviderID = "oca"

	// ProviderDisplayName is shown to users.
	ProviderDisplayName = "Oracle Code Assist"
)

// ProviderFieldSet maps logical provider settings to their state keys.
type ProviderFieldSet struct {
	Provider      string
	APIKey        string
	BaseURL       string
	RefreshToken  string
	Mode          string
	PlanModelID   string
	ActModelID    string
	PlanModelInfo string
	ActModelInfo  string
	UserInfo      string
}

// OCAFields is the field set of the Code Assist provider.
var OCAFields = ProviderFieldSet{
	Provider:      ProviderID,
	APIKey:        "ocaApiKey",
	BaseURL:       "ocaBaseUrl",
	RefreshToken:  "ocaRefreshToken",
	Mode:          "ocaMode",
	PlanModelID:   "planModeApiModelId",
	ActModelID:    "actModeApiModelId",
	PlanModelInfo: "planModeOcaModelInfo",
	ActModelInfo:  "actModeOcaModelInfo",
	UserInfo:      "ocaUserInfo",
}

// ProviderUpdatesPartial holds the settings to change. Nil fields are left
// untouched. ModelID and ModelInfo apply to both plan and act mode.
type ProviderUpdatesPartial struct {
	APIKey       *string
	BaseURL      *string
	RefreshToken *string
	Mode         *string
	ModelID      *string
	ModelInfo    map[string]any
}

// BuildUpdate turns u into a masked update that only touches the fields
// set in u.
func (f ProviderFieldSet) BuildUpdate(u ProviderUpdatesPartial, setAsActive bool) (*corerpc.ProviderUpdate, error) {
	update := &corerpc.ProviderUpdate{
		Provider:    f.Provider,
		Updates:     map[string]any{},
		SetAsActive: setAsActive,
	}

	set := func(key string, value any) {
		update.Updates[key] = value
		update.UpdateMask = append(update.UpdateMask, key)
	}

	if u.APIKey != nil {
		set(f.APIKey, *u.APIKey)
	}
	if u.BaseURL != nil {
		set(f.BaseURL, *u.BaseURL)
	}
	if u.RefreshToken != nil {
		set(f.RefreshToken, *u.RefreshToken)
	}
	if u.Mode != nil {
		set(f.Mode, *u.Mode)
	}
	if u.ModelID != nil {
		set(f.PlanModelID, *u.ModelID)
		set(f.ActModelID, *u.ModelID)
	}
	if u.ModelInfo != nil {
		set(f.PlanModelInfo, u.ModelInfo)
		set(f.ActModelInfo, u.ModelInfo)
	}

	if len(update.UpdateMask) == 0 && !setAsActive {
		return nil, errors.New("provider update has no fields")
	}
	return update, nil
}
