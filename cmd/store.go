package cmd

import (
	"fmt"

	"github.com/ctx400/pv/internal/crypto"
)

// Store prompts for a secret value and the master password, then inserts
// or overwrites the named entry and saves the vault.
func Store(path, name string, useBolt bool) {
	backend := NewBackend(path, useBolt)
	v := LoadVaultOrExit(backend)

	plaintext, err := ReadPassword("Secret Value: ")
	if err != nil {
		HandleError(err)
	}
	defer crypto.ClearBytes(plaintext)

	password := GetPasswordOrExit("Master Password: ", v.ID)
	defer crypto.ClearBytes(password)

	if err := v.StoreSecret(name, plaintext, password); err != nil {
		HandleError(err)
	}

	if err := backend.Save(v); err != nil {
		HandleError(err)
	}

	fmt.Printf("Stored secret %q\n", name)
}
