package cmd

import (
	"fmt"
)

// List prints the names of all entries, one per line. No password is
// needed and no decryptability check is made.
func List(path string, useBolt bool) {
	v := LoadVaultOrExit(NewBackend(path, useBolt))

	for _, name := range v.ListSecrets() {
		fmt.Println(name)
	}
}
