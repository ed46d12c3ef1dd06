package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"syscall"

	"golang.org/x/term"

	"github.com/ctx400/pv/internal/crypto"
	"github.com/ctx400/pv/internal/keyring"
	"github.com/ctx400/pv/internal/storage"
	"github.com/ctx400/pv/internal/vault"
)

// Environment variables honored by the CLI. The core never reads these;
// resolving configuration is strictly a collaborator concern.
const (
	EnvPath     = "PV_PATH"
	EnvPassword = "PV_PASSWORD"
)

// ResolvePath returns the vault path from the argument or PV_PATH.
func ResolvePath(arg string) (string, error) {
	if arg != "" {
		return arg, nil
	}
	if path := os.Getenv(EnvPath); path != "" {
		return path, nil
	}
	return "", fmt.Errorf("no vault path given (pass it as an argument or set %s)", EnvPath)
}

// NewBackend selects the persistence backend for a vault path.
func NewBackend(path string, useBolt bool) storage.Backend {
	if useBolt {
		return storage.NewBoltStore(path)
	}
	return storage.NewFileStore(path)
}

// ReadPassword reads a password from the terminal without echoing
func ReadPassword(prompt string) ([]byte, error) {
	fmt.Print(prompt)

	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println() // New line after password

	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}

	return password, nil
}

// ReadPasswordConfirm reads a password twice and ensures they match
func ReadPasswordConfirm(prompt, confirmPrompt string) ([]byte, error) {
	password1, err := ReadPassword(prompt)
	if err != nil {
		return nil, err
	}
	defer crypto.ClearBytes(password1)

	password2, err := ReadPassword(confirmPrompt)
	if err != nil {
		return nil, err
	}
	defer crypto.ClearBytes(password2)

	if !crypto.ConstantTimeCompare(password1, password2) {
		return nil, fmt.Errorf("passwords do not match")
	}

	result := make([]byte, len(password1))
	copy(result, password1)
	return result, nil
}

// GetPasswordFromEnv reads the password from PV_PASSWORD
func GetPasswordFromEnv() []byte {
	password := os.Getenv(EnvPassword)
	if password == "" {
		return nil
	}
	// Return a copy to avoid issues when clearing the bytes
	result := make([]byte, len(password))
	copy(result, []byte(password))
	return result
}

// GetPassword retrieves the master password: PV_PASSWORD first, then the
// OS keyring (when a password was saved for this vault's ID), then an
// echo-suppressed prompt. The caller must ClearBytes the result.
func GetPassword(prompt, vaultID string) ([]byte, error) {
	if password := GetPasswordFromEnv(); password != nil {
		return password, nil
	}

	if vaultID != "" {
		if saved, err := keyring.GetPassword(vaultID); err == nil {
			return []byte(saved), nil
		}
	}

	return ReadPassword(prompt)
}

// GetPasswordOrExit is like GetPassword but exits on error
func GetPasswordOrExit(prompt, vaultID string) []byte {
	password, err := GetPassword(prompt, vaultID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	return password
}

// LoadVaultOrExit loads the vault or exits with a mapped error message
func LoadVaultOrExit(backend storage.Backend) *vault.Vault {
	v, err := backend.Load()
	if err != nil {
		HandleError(err)
	}
	return v
}

// HandleError prints a user-facing message for a core error and exits.
func HandleError(err error) {
	switch {
	case errors.Is(err, vault.ErrNotFound):
		fmt.Fprintf(os.Stderr, "Error: secret not found\n")
	case errors.Is(err, vault.ErrEmptyName):
		fmt.Fprintf(os.Stderr, "Error: secret name must not be empty\n")
	case errors.Is(err, crypto.ErrDecryption):
		fmt.Fprintf(os.Stderr, "Error: decryption failed (wrong password or corrupted vault)\n")
	case errors.Is(err, vault.ErrUnsupportedVersion):
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		fmt.Fprintf(os.Stderr, "This vault was created by a newer version of pv\n")
	case errors.Is(err, vault.ErrMalformed):
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	case errors.Is(err, fs.ErrNotExist):
		fmt.Fprintf(os.Stderr, "Error: vault file does not exist\n")
		fmt.Fprintf(os.Stderr, "Run 'pv create <path>' first\n")
	default:
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
	os.Exit(1)
}
