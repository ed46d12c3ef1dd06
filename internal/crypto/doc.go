// Package crypto provides the cryptographic primitives for pv.
//
// Encryption uses AES-256-GCM with:
//   - 32-byte key derived from password via Argon2id
//   - 12-byte random nonce per encryption operation
//   - Authenticated encryption prevents tampering
//
// Key derivation uses Argon2id with:
//   - 16-byte random salt (stored unencrypted, one per vault)
//   - time=3, memory=64 MiB, threads=4
//
// Derived keys are never persisted. Use ClearBytes() to zero key material
// immediately after each encrypt/decrypt call.
package crypto
