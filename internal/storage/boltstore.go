package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	bolt "go.etcd.io/bbolt"

	"github.com/ctx400/pv/internal/crypto"
	"github.com/ctx400/pv/internal/vault"
)

// Bucket names
var (
	ConfigBucket  = []byte("config")  // format version, salt, vault ID
	EntriesBucket = []byte("entries") // envelopes, keyed by secret name
)

// Config keys
var (
	ConfigVersion = []byte("format_version")
	ConfigSalt    = []byte("salt")
	ConfigVaultID = []byte("vault_id")
)

// BoltStore persists a vault in a bbolt database. The JSON file remains
// the canonical interchange format; this backend trades portability for
// transactional writes on large vaults.
type BoltStore struct {
	path string
}

// NewBoltStore creates a bbolt-backed store for the given path.
func NewBoltStore(path string) *BoltStore {
	return &BoltStore{path: path}
}

// Path returns the destination path.
func (s *BoltStore) Path() string {
	return s.path
}

// Save writes the vault in a single transaction, replacing any prior
// contents at the path.
func (s *BoltStore) Save(v *vault.Vault) error {
	db, err := bolt.Open(s.path, FilePermSecure, nil)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	return db.Update(func(tx *bolt.Tx) error {
		// Drop stale entries from a previous save
		if tx.Bucket(EntriesBucket) != nil {
			if err := tx.DeleteBucket(EntriesBucket); err != nil {
				return err
			}
		}

		config, err := tx.CreateBucketIfNotExists(ConfigBucket)
		if err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", ConfigBucket, err)
		}
		entries, err := tx.CreateBucket(EntriesBucket)
		if err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", EntriesBucket, err)
		}

		version := make([]byte, 4)
		binary.BigEndian.PutUint32(version, uint32(v.FormatVersion))
		if err := config.Put(ConfigVersion, version); err != nil {
			return err
		}
		if err := config.Put(ConfigSalt, v.Salt); err != nil {
			return err
		}
		if err := config.Put(ConfigVaultID, []byte(v.ID)); err != nil {
			return err
		}

		for name, env := range v.Envelopes() {
			data, err := json.Marshal(env)
			if err != nil {
				return err
			}
			if err := entries.Put([]byte(name), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// Load reads the vault back out of the database, applying the same format
// validation as the JSON codec.
func (s *BoltStore) Load() (*vault.Vault, error) {
	db, err := bolt.Open(s.path, FilePermSecure, &bolt.Options{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	var (
		formatVersion int
		salt          []byte
		id            string
		envelopes     = make(map[string]crypto.Envelope)
	)

	err = db.View(func(tx *bolt.Tx) error {
		config := tx.Bucket(ConfigBucket)
		if config == nil {
			return fmt.Errorf("%w: config bucket not found", vault.ErrMalformed)
		}

		version := config.Get(ConfigVersion)
		if len(version) != 4 {
			return fmt.Errorf("%w: missing format version", vault.ErrMalformed)
		}
		formatVersion = int(binary.BigEndian.Uint32(version))

		// Copy slices out of the transaction
		salt = append([]byte(nil), config.Get(ConfigSalt)...)
		id = string(config.Get(ConfigVaultID))

		entries := tx.Bucket(EntriesBucket)
		if entries == nil {
			return fmt.Errorf("%w: entries bucket not found", vault.ErrMalformed)
		}
		return entries.ForEach(func(k, data []byte) error {
			var env crypto.Envelope
			if err := json.Unmarshal(data, &env); err != nil {
				return fmt.Errorf("%w: invalid envelope for %q", vault.ErrMalformed, k)
			}
			envelopes[string(k)] = env
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return vault.Restore(formatVersion, salt, id, envelopes)
}
