package vault

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ctx400/pv/internal/crypto"
)

var (
	ErrMalformed          = errors.New("malformed vault data")
	ErrUnsupportedVersion = errors.New("unsupported vault format version")
)

// vaultFile is the canonical serialized form. []byte fields marshal as
// base64 strings. Unknown top-level keys in the input are ignored for
// forward compatibility within the same format version.
type vaultFile struct {
	FormatVersion int                        `json:"format_version"`
	Salt          []byte                     `json:"salt"`
	VaultID       string                     `json:"vault_id,omitempty"`
	Entries       map[string]crypto.Envelope `json:"entries"`
}

// Marshal produces the canonical JSON representation of the vault.
func (v *Vault) Marshal() ([]byte, error) {
	f := vaultFile{
		FormatVersion: v.FormatVersion,
		Salt:          v.Salt,
		VaultID:       v.ID,
		Entries:       v.entries,
	}

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal vault: %w", err)
	}
	return data, nil
}

// Unmarshal parses the canonical JSON representation. Structural garbage
// surfaces as ErrMalformed and an unrecognized format_version as
// ErrUnsupportedVersion; in either case no partial vault is returned. No
// password is required or validated at load time.
func Unmarshal(data []byte) (*Vault, error) {
	var f vaultFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	return Restore(f.FormatVersion, f.Salt, f.VaultID, f.Entries)
}

// Restore reconstructs a vault from its persisted parts, applying the same
// validation as Unmarshal. Persistence backends use it to rebuild a vault
// without bypassing the format checks.
func Restore(formatVersion int, salt []byte, id string, envelopes map[string]crypto.Envelope) (*Vault, error) {
	if formatVersion != CurrentFormatVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, formatVersion)
	}

	if len(salt) < crypto.SaltSize {
		return nil, fmt.Errorf("%w: missing or short salt", ErrMalformed)
	}

	entries := make(map[string]crypto.Envelope, len(envelopes))
	for name, env := range envelopes {
		if name == "" {
			return nil, fmt.Errorf("%w: empty secret name", ErrMalformed)
		}
		if len(env.Nonce) != crypto.NonceSize || len(env.Ciphertext) < crypto.TagSize {
			return nil, fmt.Errorf("%w: invalid envelope for %q", ErrMalformed, name)
		}
		entries[name] = env
	}

	return &Vault{
		FormatVersion: formatVersion,
		Salt:          salt,
		ID:            id,
		entries:       entries,
	}, nil
}
