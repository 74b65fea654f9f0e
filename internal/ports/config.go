package ports

import (
	"context"
	"hue-alerts/internal/domain/model"
)

// CredentialRepository persists the single bridge credential. Load returns
// ErrCredentialNotFound when nothing has been stored yet.
type CredentialRepository interface {
	Load(ctx context.Context) (model.Credential, error)
	Save(ctx context.Context, cred model.Credential) error
}
