package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"codeassist/pkg/corerpc"
	"codeassist/pkg/logging"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// State keys written by the core itself. Provider fields written by clients
// arrive through ApplyProviderUpdate.
const (
	KeyAPIKey       = "ocaApiKey"
	KeyRefreshToken = "ocaRefreshToken"
	KeyBaseURL      = "ocaBaseUrl"
	KeyMode         = "ocaMode"
	KeyUserInfo     = "ocaUserInfo"

	keyPlanModeProvider = "planModeApiProvider"
	keyActModeProvider  = "actModeApiProvider"
)

// StateStore holds the persisted state document. Reads return the whole
// JSON document; writes go through masked field updates.
type StateStore struct {
	mu   sync.RWMutex
	doc  []byte
	path string
}

// NewStateStore loads the document at path, or starts empty if it does not
// exist. An empty path keeps the state in memory only.
func NewStateStore(path string) (*StateStore, error) {
	s := &StateStore{doc: []byte("{}"), path: path}
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logging.Debug("Core", "No state file at %s, starting empty", path)
	case err != nil:
		return nil, fmt.Errorf("failed to read state file %s: %w", path, err)
	case !gjson.ValidBytes(data):
		return nil, fmt.Errorf("state file %s is not valid JSON", path)
	default:
		s.doc = data
	}
	return s, nil
}

// Latest returns the current state document.
func (s *StateStore) Latest() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return string(s.doc)
}

// Get reads one value from the state document.
func (s *StateStore) Get(path string) gjson.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return gjson.GetBytes(s.doc, path)
}

// ApplyProviderUpdate applies the masked update. Keys in the mask that have
// no value in Updates are removed. With SetAsActive the provider becomes the
// active provider for both plan and act modes.
func (s *StateStore) ApplyProviderUpdate(u *corerpc.ProviderUpdate) error {
	for _, key := range u.UpdateMask {
		if !isPlainKey(key) {
			return fmt.Errorf("invalid state key %q", key)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.doc
	var err error
	for _, key := range u.UpdateMask {
		if value, ok := u.Updates[key]; ok {
			doc, err = sjson.SetBytes(doc, key, value)
		} else {
			doc, err = sjson.DeleteBytes(doc, key)
		}
		if err != nil {
			return fmt.Errorf("failed to update %s: %w", key, err)
		}
	}

	if u.SetAsActive {
		for _, key := range []string{keyPlanModeProvider, keyActModeProvider} {
			if doc, err = sjson.SetBytes(doc, key, u.Provider); err != nil {
				return fmt.Errorf("failed to set active provider: %w", err)
			}
		}
	}

	return s.commitLocked(doc)
}

// Set writes values at the given keys; a nil value removes the key.
func (s *StateStore) Set(values map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.doc
	var err error
	for key, value := range values {
		if value == nil {
			doc, err = sjson.DeleteBytes(doc, key)
		} else {
			doc, err = sjson.SetBytes(doc, key, value)
		}
		if err != nil {
			return fmt.Errorf("failed to update %s: %w", key, err)
		}
	}
	return s.commitLocked(doc)
}

// AuthState derives the current auth state from the document.
func (s *StateStore) AuthState() *corerpc.AuthState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := &corerpc.AuthState{}
	if user := gjson.GetBytes(s.doc, KeyUserInfo); user.IsObject() && user.Get("uid").String() != "" {
		state.User = &corerpc.UserInfo{
			UID:         user.Get("uid").String(),
			DisplayName: user.Get("displayName").String(),
			Email:       user.Get("email").String(),
		}
	}
	if key := gjson.GetBytes(s.doc, KeyAPIKey); key.Exists() {
		v := key.String()
		state.APIKey = &v
	}
	return state
}

func (s *StateStore) commitLocked(doc []byte) error {
	if s.path != "" {
		if err := writeFileAtomic(s.path, doc); err != nil {
			return err
		}
	}
	s.doc = doc
	return nil
}

// writeFileAtomic writes via a temp file and rename. The state holds
// credentials, so it is only readable by the owner.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write state: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set state file permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write state: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}

// isPlainKey rejects keys that gjson/sjson would treat as paths or patterns.
func isPlainKey(key string) bool {
	if key == "" {
		return false
	}
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return false
		}
	}
	return true
}
