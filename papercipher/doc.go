// Package papercipher provides authenticated encryption for exam paper
// content.
//
// Papers are sealed with AES-256-GCM under an ephemeral 32-byte key. Each
// Encrypt call generates a fresh random nonce and binds it into the cipher
// operation, so nonce reuse under a key is impossible by construction. Decrypt
// verifies the authentication tag before releasing any plaintext and fails
// closed on tampering, a wrong key, or a wrong nonce.
//
// Both operations are pure and safe for concurrent use. Key material should be
// held only for the duration of a call and wiped with WipeKey afterwards.
package papercipher
