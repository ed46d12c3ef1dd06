package storage

import (
	"github.com/ctx400/pv/internal/vault"
)

// Backend persists a vault at a fixed location.
type Backend interface {
	Save(v *vault.Vault) error
	Load() (*vault.Vault, error)
}
