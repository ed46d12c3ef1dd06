package cmd

import (
	"fmt"
	"os"

	"github.com/ctx400/pv/internal/vault"
)

// Create makes a new empty vault at path. No password is bound at creation
// time: each secret operation supplies its own password later.
func Create(path string, useBolt bool) {
	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(os.Stderr, "Error: %s already exists\n", path)
		os.Exit(1)
	}

	v, err := vault.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	if err := NewBackend(path, useBolt).Save(v); err != nil {
		HandleError(err)
	}

	fmt.Printf("Created vault %s\n", path)
}
