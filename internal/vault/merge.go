package vault

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/ctx400/pv/internal/crypto"
)

const (
	BinarySampleSize   = 8192 // Bytes to sample for text/binary detection
	BinaryThresholdPct = 10   // Max % non-printable chars for text values
)

// MergeStrategy defines how to handle name conflicts during a merge
type MergeStrategy int

const (
	MergeSkip   MergeStrategy = iota // Keep this vault's version
	MergeTheirs                      // Take the other vault's version
	MergeAbort                       // Fail on the first conflict
)

// Conflict records a name present in both vaults with differing plaintexts.
// For text values Diff carries a unified diff of ours against theirs.
type Conflict struct {
	Name string
	Diff string
}

// MergeResult summarizes a completed merge.
type MergeResult struct {
	Added     []string   // Names copied from the other vault
	Replaced  []string   // Names overwritten with the other vault's value
	Unchanged []string   // Names identical in both vaults
	Conflicts []Conflict // Names that differed, resolved per strategy
}

// Rekey rewrites every entry under a new password and a fresh salt. All
// entries must decrypt under oldPassword; if any does not, the vault is
// left untouched. This is the rotation mechanism: there is no in-place
// re-encryption of individual envelopes.
func (v *Vault) Rekey(oldPassword, newPassword []byte) error {
	oldKey, err := crypto.DeriveKey(oldPassword, v.Salt)
	if err != nil {
		return err
	}
	defer crypto.ClearBytes(oldKey)

	plaintexts := make(map[string][]byte, len(v.entries))
	defer func() {
		for _, pt := range plaintexts {
			crypto.ClearBytes(pt)
		}
	}()

	for name, env := range v.entries {
		pt, err := crypto.Decrypt(oldKey, env)
		if err != nil {
			return err
		}
		plaintexts[name] = pt
	}

	newSalt, err := crypto.NewSalt()
	if err != nil {
		return err
	}

	newKey, err := crypto.DeriveKey(newPassword, newSalt)
	if err != nil {
		return err
	}
	defer crypto.ClearBytes(newKey)

	entries := make(map[string]crypto.Envelope, len(plaintexts))
	for name, pt := range plaintexts {
		env, err := crypto.Encrypt(newKey, pt)
		if err != nil {
			return fmt.Errorf("failed to re-encrypt %q: %w", name, err)
		}
		entries[name] = env
	}

	v.Salt = newSalt
	v.entries = entries
	return nil
}

// Merge folds the other vault's entries into this one. Both vaults must
// open under the supplied password. Entries only present in the other
// vault are copied (re-encrypted under this vault's salt); entries present
// in both with identical plaintexts are left alone; differing entries are
// resolved per the strategy.
func (v *Vault) Merge(other *Vault, password []byte, strategy MergeStrategy) (*MergeResult, error) {
	ourKey, err := crypto.DeriveKey(password, v.Salt)
	if err != nil {
		return nil, err
	}
	defer crypto.ClearBytes(ourKey)

	theirKey, err := crypto.DeriveKey(password, other.Salt)
	if err != nil {
		return nil, err
	}
	defer crypto.ClearBytes(theirKey)

	result := &MergeResult{}

	names := make([]string, 0, len(other.entries))
	for name := range other.entries {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		theirs, err := crypto.Decrypt(theirKey, other.entries[name])
		if err != nil {
			return nil, err
		}

		ourEnv, exists := v.entries[name]
		if !exists {
			env, err := crypto.Encrypt(ourKey, theirs)
			crypto.ClearBytes(theirs)
			if err != nil {
				return nil, fmt.Errorf("failed to encrypt %q: %w", name, err)
			}
			v.entries[name] = env
			result.Added = append(result.Added, name)
			continue
		}

		ours, err := crypto.Decrypt(ourKey, ourEnv)
		if err != nil {
			crypto.ClearBytes(theirs)
			return nil, err
		}

		if bytes.Equal(ours, theirs) {
			crypto.ClearBytes(ours)
			crypto.ClearBytes(theirs)
			result.Unchanged = append(result.Unchanged, name)
			continue
		}

		conflict := Conflict{Name: name, Diff: renderDiff(name, ours, theirs)}

		switch strategy {
		case MergeAbort:
			crypto.ClearBytes(ours)
			crypto.ClearBytes(theirs)
			return nil, fmt.Errorf("conflict detected for %q (aborting)", name)
		case MergeTheirs:
			env, err := crypto.Encrypt(ourKey, theirs)
			if err != nil {
				crypto.ClearBytes(ours)
				crypto.ClearBytes(theirs)
				return nil, fmt.Errorf("failed to encrypt %q: %w", name, err)
			}
			v.entries[name] = env
			result.Replaced = append(result.Replaced, name)
		default: // MergeSkip
		}

		crypto.ClearBytes(ours)
		crypto.ClearBytes(theirs)
		result.Conflicts = append(result.Conflicts, conflict)
	}

	return result, nil
}

// IsText determines whether a secret value is likely text rather than
// binary. Null bytes, invalid UTF-8, or a high share of control characters
// all indicate binary.
func IsText(data []byte) bool {
	if len(data) == 0 {
		return true
	}

	if bytes.IndexByte(data, 0) != -1 {
		return false
	}

	sampleSize := BinarySampleSize
	if len(data) < sampleSize {
		sampleSize = len(data)
	}
	sample := data[:sampleSize]

	if !utf8.Valid(sample) {
		return false
	}

	nonPrintable := 0
	for _, b := range sample {
		if b < 32 && b != 9 && b != 10 && b != 13 {
			nonPrintable++
		}
		if b == 127 {
			nonPrintable++
		}
	}

	threshold := len(sample) * BinaryThresholdPct / 100
	return nonPrintable <= threshold
}

// renderDiff produces a unified diff of ours against theirs for text
// values, or a one-line notice for binary values.
func renderDiff(name string, ours, theirs []byte) string {
	if !IsText(ours) || !IsText(theirs) {
		return fmt.Sprintf("Binary secret %q differs\n", name)
	}

	dmp := diffmatchpatch.New()

	ourStr, theirStr := string(ours), string(theirs)
	a, b, lineArray := dmp.DiffLinesToChars(ourStr, theirStr)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	patches := dmp.PatchMake(ourStr, diffs)
	if len(patches) == 0 {
		return ""
	}

	var out strings.Builder
	out.WriteString(fmt.Sprintf("--- ours/%s\n", name))
	out.WriteString(fmt.Sprintf("+++ theirs/%s\n", name))
	out.WriteString(dmp.PatchToText(patches))
	return out.String()
}
