// Package storage persists vaults to disk.
//
// Two backends implement the Backend interface:
//   - FileStore: the canonical JSON document, written atomically via a
//     temp file and rename so a crash cannot truncate an existing vault
//   - BoltStore: the same data in a bbolt database (config bucket for
//     version/salt/ID, entries bucket for envelopes)
//
// Neither backend requires or checks a password: format validation happens
// on load, but a password's correctness is only discovered when a secret
// is read.
package storage
