package cmd

import (
	"fmt"

	"github.com/ctx400/pv/internal/crypto"
	"github.com/ctx400/pv/internal/keyring"
)

// Passwd rewrites the vault under a new password and a fresh salt. Every
// entry must decrypt under the current password; if the vault holds
// entries stored under different passwords, the rotation fails without
// side effects.
func Passwd(path string, useBolt bool) {
	backend := NewBackend(path, useBolt)
	v := LoadVaultOrExit(backend)

	current := GetPasswordOrExit("Current password: ", v.ID)
	defer crypto.ClearBytes(current)

	newPassword, err := ReadPasswordConfirm("New password: ", "Confirm new password: ")
	if err != nil {
		HandleError(err)
	}
	defer crypto.ClearBytes(newPassword)

	if err := v.Rekey(current, newPassword); err != nil {
		HandleError(err)
	}

	if err := backend.Save(v); err != nil {
		HandleError(err)
	}

	// A stale keyring entry would silently hand out the old password
	if v.ID != "" && keyring.HasPassword(v.ID) {
		if err := keyring.DeletePassword(v.ID); err == nil {
			fmt.Println("Removed old password from keyring")
		}
	}

	fmt.Printf("Password changed (%d secrets re-encrypted)\n", v.Len())
}
