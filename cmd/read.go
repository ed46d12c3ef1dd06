package cmd

import (
	"fmt"

	"github.com/ctx400/pv/internal/crypto"
)

// Read decrypts the named entry and writes it to stdout.
func Read(path, name string, useBolt bool) {
	v := LoadVaultOrExit(NewBackend(path, useBolt))

	password := GetPasswordOrExit("Master Password: ", v.ID)
	defer crypto.ClearBytes(password)

	plaintext, err := v.ReadSecret(name, password)
	if err != nil {
		HandleError(err)
	}
	defer crypto.ClearBytes(plaintext)

	fmt.Printf("%s\n", plaintext)
}
