package cmd

import (
	"fmt"
	"os"

	"github.com/ctx400/pv/internal/crypto"
	"github.com/ctx400/pv/internal/vault"
)

// Merge folds the entries of the vault at srcPath into the vault at
// dstPath. Both vaults must open under the same master password.
func Merge(dstPath, srcPath, strategy string, useBolt bool) {
	var mergeStrategy vault.MergeStrategy
	switch strategy {
	case "skip":
		mergeStrategy = vault.MergeSkip
	case "theirs":
		mergeStrategy = vault.MergeTheirs
	case "abort":
		mergeStrategy = vault.MergeAbort
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown merge strategy %q (want skip, theirs, or abort)\n", strategy)
		os.Exit(1)
	}

	backend := NewBackend(dstPath, useBolt)
	dst := LoadVaultOrExit(backend)
	src := LoadVaultOrExit(NewBackend(srcPath, useBolt))

	password := GetPasswordOrExit("Master Password: ", dst.ID)
	defer crypto.ClearBytes(password)

	result, err := dst.Merge(src, password, mergeStrategy)
	if err != nil {
		HandleError(err)
	}

	if err := backend.Save(dst); err != nil {
		HandleError(err)
	}

	for _, name := range result.Added {
		fmt.Printf("added: %s\n", name)
	}
	for _, name := range result.Replaced {
		fmt.Printf("replaced: %s\n", name)
	}
	for _, c := range result.Conflicts {
		fmt.Printf("conflict: %s\n", c.Name)
		if c.Diff != "" {
			fmt.Print(c.Diff)
		}
	}
	fmt.Printf("merged: %d added, %d replaced, %d unchanged, %d conflicts\n",
		len(result.Added), len(result.Replaced), len(result.Unchanged), len(result.Conflicts))
}
