// Package elgamal implements byte-embedding ElGamal encryption over a
// group.Suite, generalized from the teacher corpus's own encrypt/elgamal
// package (github.com/drand/kyber) to this repository's group abstraction.
// It exists mainly as a client-visible worked example of what a recovered
// DKG public key is good for: encrypting short messages that any t
// DistKeyShare holders can later decrypt together without ever
// reconstructing the shared private key.
package elgamal

import (
	"errors"

	"github.com/project-dkg/dkg-sub000/group"
	"github.com/project-dkg/dkg-sub000/share"
)

// Encrypt embeds data into a curve point and encrypts it under pubKey,
// returning the two points of the ElGamal ciphertext: C1 = k*G, C2 = k*pubKey + M.
func Encrypt(suite group.Suite, pubKey group.Point, data []byte) (C1, C2 group.Point, err error) {
	M, err := suite.EmbedData(data, suite.RandomStream())
	if err != nil {
		return nil, nil, err
	}
	k := suite.Scalar().Pick(suite.RandomStream())
	C1 = suite.Point().Mul(k, nil)
	S := suite.Point().Mul(k, pubKey)
	C2 = suite.Point().Add(S, M)
	return C1, C2, nil
}

// Decrypt undoes Encrypt given the matching private key: M = C2 - priv*C1,
// then extracts the embedded bytes from M.
func Decrypt(suite group.Suite, priv group.Scalar, C1, C2 group.Point) ([]byte, error) {
	S := suite.Point().Mul(priv, C1)
	M := suite.Point().Sub(C2, S)
	return suite.ExtractData(M)
}

// DecryptShare computes one holder's partial decryption V_i = C1 * s_i,
// where s_i is its share of the group secret. i is the holder's share index,
// matching the index in share.PriShare.
func DecryptShare(suite group.Suite, s *share.PriShare, C1 group.Point) *share.PubShare {
	return &share.PubShare{I: s.I, V: suite.Point().Mul(s.V, C1)}
}

// RecoverMessage reconstructs the embedded message point M = C2 - R from t
// or more partial decryptions (R = C1 * secret, reconstructed via Lagrange
// interpolation in point space), then extracts the bytes M carries.
func RecoverMessage(suite group.Suite, C2 group.Point, partials []*share.PubShare, t int) ([]byte, error) {
	if len(partials) < t {
		return nil, errors.New("elgamal: not enough partial decryptions to recover the message")
	}
	R, err := share.RecoverCommit(suite, partials, t)
	if err != nil {
		return nil, err
	}
	M := suite.Point().Sub(C2, R)
	return suite.ExtractData(M)
}
