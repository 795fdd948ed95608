// Package secp256k1 instantiates the group capability set defined by
// package group on the secp256k1 curve, via
// github.com/btcsuite/btcd/btcec/v2 (itself a thin elliptic.Curve wrapper
// around github.com/decred/dcrd/dcrec/secp256k1/v4). This is the default
// curve named by the protocol; any other prime-order curve with a
// comparable API can implement the same group.Suite interface instead.
package secp256k1

import (
	"crypto/cipher"
	"crypto/sha256"

	"github.com/project-dkg/dkg-sub000/group"
	"github.com/project-dkg/dkg-sub000/util/random"
)

type suite struct{}

// NewSuite returns a group.Suite backed by secp256k1.
func NewSuite() group.Suite {
	return &suite{}
}

func (s *suite) String() string { return "secp256k1" }

func (s *suite) ScalarLen() int       { return ScalarLen }
func (s *suite) Scalar() group.Scalar { return newScalar() }

func (s *suite) PointLen() int      { return PointLen }
func (s *suite) Point() group.Point { return newPoint() }

func (s *suite) RandomStream() cipher.Stream { return random.New() }

func (s *suite) Hash() group.HashState { return sha256.New() }
