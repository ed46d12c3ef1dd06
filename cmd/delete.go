package cmd

import (
	"fmt"
)

// Delete removes the named entry. No password is needed: deletion never
// touches envelope contents.
func Delete(path, name string, useBolt bool) {
	backend := NewBackend(path, useBolt)
	v := LoadVaultOrExit(backend)

	if err := v.DeleteSecret(name); err != nil {
		HandleError(err)
	}

	if err := backend.Save(v); err != nil {
		HandleError(err)
	}

	fmt.Printf("Deleted secret %q\n", name)
}
