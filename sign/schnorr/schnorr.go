// Package schnorr implements detached Schnorr signatures over byte
// strings, grounded on the teacher corpus's vendored
// gopkg.in/dedis/kyber.v1/sign/schnorr package: R || s, with the challenge
// h = H(R || A || msg) reduced modulo the group order and the response
// s = k + h*sk.
package schnorr

import (
	"errors"
	"fmt"

	"github.com/project-dkg/dkg-sub000/group"
)

// Sign produces a signature over msg under the long-term secret key
// private, using suite's group and hash. A fresh random scalar k is drawn
// from the suite's own random stream for every call.
func Sign(suite group.Suite, private group.Scalar, msg []byte) ([]byte, error) {
	k := suite.Scalar().Pick(suite.RandomStream())
	R := suite.Point().Mul(k, nil)
	A := suite.Point().Mul(private, nil)

	h, err := challenge(suite, R, A, msg)
	if err != nil {
		return nil, err
	}

	xh := suite.Scalar().Mul(private, h)
	s := suite.Scalar().Add(k, xh)

	Rbuf, err := R.MarshalBinary()
	if err != nil {
		return nil, err
	}
	sbuf, err := s.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return append(Rbuf, sbuf...), nil
}

// Verify reports whether sig is a valid Schnorr signature over msg under
// the public key public. Any signature buffer whose length does not
// exactly match PointLen+ScalarLen is rejected without attempting to parse
// it, so trailing bytes never silently verify.
func Verify(suite group.Suite, public group.Point, msg, sig []byte) error {
	pointLen := suite.PointLen()
	scalarLen := suite.ScalarLen()
	if len(sig) != pointLen+scalarLen {
		return fmt.Errorf("schnorr: signature has invalid length %d, want %d", len(sig), pointLen+scalarLen)
	}

	R := suite.Point()
	if err := R.UnmarshalBinary(sig[:pointLen]); err != nil {
		return fmt.Errorf("schnorr: invalid R encoding: %w", err)
	}
	s := suite.Scalar()
	if err := s.UnmarshalBinary(sig[pointLen:]); err != nil {
		return fmt.Errorf("schnorr: invalid s encoding: %w", err)
	}

	h, err := challenge(suite, R, public, msg)
	if err != nil {
		return err
	}

	sG := suite.Point().Mul(s, nil)
	hA := suite.Point().Mul(h, public)
	rhs := suite.Point().Add(R, hA)

	if !sG.Equal(rhs) {
		return errors.New("schnorr: signature does not verify")
	}
	return nil
}

// challenge computes H(R || A || msg) reduced into a scalar modulo the
// group order.
func challenge(suite group.Suite, R, A group.Point, msg []byte) (group.Scalar, error) {
	h := suite.Hash()
	Rbuf, err := R.MarshalBinary()
	if err != nil {
		return nil, err
	}
	Abuf, err := A.MarshalBinary()
	if err != nil {
		return nil, err
	}
	h.Write(Rbuf)
	h.Write(Abuf)
	h.Write(msg)
	return suite.Scalar().SetBytes(h.Sum(nil)), nil
}
