// Package vault implements the pv secret store.
//
// Core operations:
//   - New: create an empty vault with a fresh KDF salt
//   - StoreSecret / ReadSecret / DeleteSecret / ListSecrets: entry CRUD,
//     with a master password supplied fresh on every cryptographic call
//   - Marshal / Unmarshal: the canonical JSON on-disk representation
//   - Rekey: rewrite the whole vault under a new password
//   - Merge: fold another vault's entries in, with conflict strategies
//
// The vault is never globally unlocked. No derived key or password is
// cached between operations, and no canary is stored, so a password's
// correctness is only discovered when an entry is read.
package vault
