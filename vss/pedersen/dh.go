package vss

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
	"hash"

	"golang.org/x/crypto/hkdf"

	"github.com/project-dkg/dkg-sub000/group"
)

// dhExchange computes the Diffie-Hellman shared point ownSecret*otherPublic,
// returning its canonical encoding to be fed into newAEAD as key material.
// The teacher corpus's vss.go calls this exact helper from both the
// dealer's EncryptedDeal and the verifier's decryptDeal without vendoring
// its body in the retrieved file; this repository reconstructs it from the
// group.Suite abstraction directly.
func dhExchange(suite group.Suite, ownSecret group.Scalar, otherPublic group.Point) ([]byte, error) {
	shared := suite.Point().Mul(ownSecret, otherPublic)
	return shared.MarshalBinary()
}

// newAEAD derives a 256-bit AES-GCM key from the DH shared secret pre via
// HKDF, bound to hkdfCtx so a key can never be reused across a different
// dealer/verifier-set pairing, and returns the ready-to-use AEAD.
func newAEAD(newHash func() group.HashState, pre, hkdfCtx []byte) (cipher.AEAD, error) {
	h := hkdf.New(func() hash.Hash { return hashStateAdapter{newHash()} }, pre, nil, hkdfCtx)

	key := make([]byte, 32)
	if _, err := h.Read(key); err != nil {
		return nil, fmt.Errorf("vss: deriving AEAD key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("vss: constructing AES cipher: %w", err)
	}
	return cipher.NewGCM(block)
}

// hashStateAdapter bridges a group.HashState (this repository's minimal
// hash surface) to the standard library's hash.Hash, which hkdf.New
// requires of its constructor.
type hashStateAdapter struct {
	group.HashState
}

func (h hashStateAdapter) BlockSize() int { return 64 }
