// Package random provides cipher.Stream sources of cryptographic randomness,
// grounded on the teacher corpus's own random helpers (e.g.
// DeDiS-crypto/random). Every Pick, ephemeral-key, and nonce-reservation
// operation in this repository draws from a stream obtained here rather
// than calling crypto/rand directly, so that callers can substitute a
// deterministic stream in tests without touching the protocol code.
package random

import (
	"crypto/cipher"
	"crypto/rand"
)

type cryptoStream struct{}

func (cryptoStream) XORKeyStream(dst, src []byte) {
	if len(dst) != len(src) {
		panic("random: mismatched buffer lengths")
	}
	buf := make([]byte, len(dst))
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	for i := range dst {
		dst[i] = src[i] ^ buf[i]
	}
}

// New returns a fresh cipher.Stream backed by crypto/rand. Each call is
// independent; the returned stream carries no state worth sharing.
func New() cipher.Stream {
	return cryptoStream{}
}

// Bytes draws n cryptographically random bytes from rand.
func Bytes(n int, rand cipher.Stream) []byte {
	b := make([]byte, n)
	rand.XORKeyStream(b, b)
	return b
}
