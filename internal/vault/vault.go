package vault

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/ctx400/pv/internal/crypto"
)

// CurrentFormatVersion is the serialization schema version written by this
// build. Loading any other version is rejected.
const CurrentFormatVersion = 1

var (
	ErrNotFound  = errors.New("secret not found")
	ErrEmptyName = errors.New("secret name must not be empty")
)

// Vault is the in-memory mapping of secret names to encrypted envelopes,
// together with the KDF salt shared by every entry. There is no vault-wide
// password: each operation derives its own key from the password the caller
// supplies, so entries stored under different passwords can legally coexist.
//
// A Vault is a single mutable value with no internal locking. Concurrent
// callers must serialize access themselves.
type Vault struct {
	FormatVersion int
	Salt          []byte

	// ID is a random identifier minted at creation. It is carried in the
	// serialized form and used only to key the OS keyring; it plays no
	// part in any cryptographic operation.
	ID string

	entries map[string]crypto.Envelope
}

// New creates an empty vault with a fresh random salt and the current
// format version. No password is bound at creation time.
func New() (*Vault, error) {
	salt, err := crypto.NewSalt()
	if err != nil {
		return nil, err
	}

	return &Vault{
		FormatVersion: CurrentFormatVersion,
		Salt:          salt,
		ID:            uuid.NewString(),
		entries:       make(map[string]crypto.Envelope),
	}, nil
}

// StoreSecret encrypts plaintext under the supplied password and inserts or
// overwrites the named entry. Overwriting is silent, including when the
// prior envelope was created under a different password.
func (v *Vault) StoreSecret(name string, plaintext, password []byte) error {
	if name == "" {
		return ErrEmptyName
	}

	key, err := crypto.DeriveKey(password, v.Salt)
	if err != nil {
		return err
	}
	defer crypto.ClearBytes(key)

	env, err := crypto.Encrypt(key, plaintext)
	if err != nil {
		return fmt.Errorf("failed to encrypt secret: %w", err)
	}

	v.entries[name] = env
	return nil
}

// ReadSecret decrypts the named entry with the supplied password. A wrong
// password and a tampered envelope are indistinguishable: both surface as
// crypto.ErrDecryption.
func (v *Vault) ReadSecret(name string, password []byte) ([]byte, error) {
	env, ok := v.entries[name]
	if !ok {
		return nil, ErrNotFound
	}

	key, err := crypto.DeriveKey(password, v.Salt)
	if err != nil {
		return nil, err
	}
	defer crypto.ClearBytes(key)

	return crypto.Decrypt(key, env)
}

// DeleteSecret removes the named entry. Deleting an absent name signals
// ErrNotFound; callers decide whether to treat that as a no-op.
func (v *Vault) DeleteSecret(name string) error {
	if _, ok := v.entries[name]; !ok {
		return ErrNotFound
	}
	delete(v.entries, name)
	return nil
}

// ListSecrets returns the names of all entries, sorted. Decryptability is
// not checked; that is discovered at read time.
func (v *Vault) ListSecrets() []string {
	names := make([]string, 0, len(v.entries))
	for name := range v.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of entries in the vault.
func (v *Vault) Len() int {
	return len(v.entries)
}

// Envelopes returns a copy of the entry map for persistence backends. The
// envelopes themselves stay opaque: they are only ever produced and
// consumed by the crypto package.
func (v *Vault) Envelopes() map[string]crypto.Envelope {
	out := make(map[string]crypto.Envelope, len(v.entries))
	for name, env := range v.entries {
		out[name] = env
	}
	return out
}
