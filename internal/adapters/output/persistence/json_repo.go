package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hue-alerts/internal/domain/model"
	"hue-alerts/internal/ports"
	"os"
	"path/filepath"
	"sync"
)

type JSONCredentialRepository struct {
	filepath string
	mu       sync.RWMutex
}

type credentialFile struct {
	IP       string `json:"ip"`
	Username string `json:"username"`
}

// Older records used other key names for the same two values.
type legacyCredentialFile struct {
	IPAddress      string `json:"ip_address"`
	NetworkAddress string `json:"networkAddress"`
	AuthToken      string `json:"authToken"`
}

func NewJSONCredentialRepository(filepath string) *JSONCredentialRepository {
	return &JSONCredentialRepository{filepath: filepath}
}

var _ ports.CredentialRepository = (*JSONCredentialRepository)(nil)

func (r *JSONCredentialRepository) Load(ctx context.Context) (model.Credential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data, err := os.ReadFile(r.filepath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.Credential{}, ports.ErrCredentialNotFound
		}
		return model.Credential{}, err
	}

	var rec credentialFile
	if err := json.Unmarshal(data, &rec); err != nil {
		return model.Credential{}, fmt.Errorf("decode %s: %w", r.filepath, err)
	}

	cred := model.Credential{Address: rec.IP, Token: rec.Username}
	if cred.Address == "" || cred.Token == "" {
		cred = r.migrate(data, cred)
	}
	if cred.Address == "" && cred.Token == "" {
		return model.Credential{}, ports.ErrCredentialNotFound
	}
	return cred, nil
}

func (r *JSONCredentialRepository) migrate(data []byte, cred model.Credential) model.Credential {
	var legacy legacyCredentialFile
	if err := json.Unmarshal(data, &legacy); err != nil {
		return cred
	}
	if cred.Address == "" {
		cred.Address = legacy.IPAddress
	}
	if cred.Address == "" {
		cred.Address = legacy.NetworkAddress
	}
	if cred.Token == "" {
		cred.Token = legacy.AuthToken
	}
	return cred
}

// Save replaces the record atomically. The file holds the bridge username,
// so it is readable by the owner only.
func (r *JSONCredentialRepository) Save(ctx context.Context, cred model.Credential) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.MarshalIndent(credentialFile{IP: cred.Address, Username: cred.Token}, "", "  ")
	if err != nil {
		return err
	}

	if dir := filepath.Dir(r.filepath); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}

	tmp := r.filepath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	if err := os.Rename(tmp, r.filepath); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
