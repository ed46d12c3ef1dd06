package cmd

import (
	"fmt"
	"os"

	"github.com/ctx400/pv/internal/crypto"
	"github.com/ctx400/pv/internal/keyring"
)

// KeyringSave stores the vault's master password in the OS keyring.
//
// The vault has no canary, so the password can only be verified against an
// existing entry. An empty vault accepts the password unverified.
func KeyringSave(path string, useBolt bool) {
	v := LoadVaultOrExit(NewBackend(path, useBolt))
	if v.ID == "" {
		fmt.Fprintf(os.Stderr, "Error: vault has no ID; re-save it with this version of pv first\n")
		os.Exit(1)
	}

	password, err := ReadPassword("Master Password: ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	defer crypto.ClearBytes(password)

	if names := v.ListSecrets(); len(names) > 0 {
		if _, err := v.ReadSecret(names[0], password); err != nil {
			HandleError(err)
		}
	} else {
		fmt.Println("Warning: vault is empty, password saved unverified")
	}

	if err := keyring.SavePassword(v.ID, string(password)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to save to keyring: %s\n", err)
		os.Exit(1)
	}

	fmt.Println("Password saved to keyring")
}

// KeyringDelete removes the vault's password from the OS keyring.
func KeyringDelete(path string, useBolt bool) {
	v := LoadVaultOrExit(NewBackend(path, useBolt))

	if v.ID == "" || keyring.DeletePassword(v.ID) != nil {
		fmt.Println("No password stored in keyring")
		return
	}

	fmt.Println("Password removed from keyring")
}

// KeyringStatus reports whether a password is stored for this vault.
func KeyringStatus(path string, useBolt bool) {
	v := LoadVaultOrExit(NewBackend(path, useBolt))

	if v.ID != "" && keyring.HasPassword(v.ID) {
		fmt.Println("Password: stored in keyring")
	} else {
		fmt.Println("Password: not stored")
	}
}
