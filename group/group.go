// Package group defines the abstract capability set that the rest of this
// repository is built on: scalars and points of a prime-order group, their
// canonical serialization, and the embedding of short byte strings into a
// point. Concrete curves (secp256k1 by default, see the secp256k1
// sub-package) implement these interfaces; nothing above this package knows
// or cares which curve is underneath.
package group

import "crypto/cipher"

// Marshaling is satisfied by anything with a canonical, fixed-width byte
// encoding.
type Marshaling interface {
	// MarshalBinary returns the canonical encoding.
	MarshalBinary() ([]byte, error)
	// MarshalSize returns the length in bytes of MarshalBinary's output.
	MarshalSize() int
	// UnmarshalBinary sets the receiver from data. It must reject any input
	// whose length does not exactly match MarshalSize.
	UnmarshalBinary(data []byte) error
}

// Scalar is an element of Z_n for the group's order n. Scalars back both
// secret values (long-term keys, polynomial coefficients, share values) and
// public ones (challenges, indices used as scalars).
type Scalar interface {
	Marshaling

	Equal(s2 Scalar) bool
	Set(a Scalar) Scalar
	Clone() Scalar

	SetInt64(v int64) Scalar
	Zero() Scalar
	One() Scalar

	Add(a, b Scalar) Scalar
	Sub(a, b Scalar) Scalar
	Neg(a Scalar) Scalar
	Mul(a, b Scalar) Scalar
	Inv(a Scalar) Scalar

	// Pick sets the receiver to a fresh random scalar drawn from rand.
	Pick(rand cipher.Stream) Scalar
	// SetBytes sets the scalar from a big-endian byte slice, reducing modulo
	// the group order if necessary.
	SetBytes(b []byte) Scalar
}

// Point is an element of the group. Points are always public: they never
// hold a value an honest participant needs to keep secret.
type Point interface {
	Marshaling

	Equal(p2 Point) bool
	Set(p Point) Point
	Clone() Point

	// Null sets the receiver to the group's neutral (identity) element.
	Null() Point
	// Base sets the receiver to the group's standard base point.
	Base() Point

	Add(a, b Point) Point
	Sub(a, b Point) Point
	Neg(a Point) Point
	// Mul sets the receiver to s*p. If p is nil, the group's base point is
	// used, i.e. Mul(s, nil) computes s*G.
	Mul(s Scalar, p Point) Point
}

// Embeddable curves can pack a short byte string into a point (§4.1 of the
// protocol: used both directly by the ElGamal worked example and, in
// principle, by any component needing a point-valued commitment to a
// message rather than a scalar-valued one).
type Embeddable interface {
	// EmbedLen is the maximum number of bytes EmbedData can reliably embed.
	EmbedLen() int
	// EmbedData packs up to EmbedLen bytes of data into a point, using rand
	// to fill the remaining bits and to reroll on a failed candidate. It
	// panics if len(data) > EmbedLen.
	EmbedData(data []byte, rand cipher.Stream) (Point, error)
	// ExtractData inverts EmbedData, recovering the original bytes from a
	// point produced by it.
	ExtractData(p Point) ([]byte, error)
}

// Group is the constructor interface for a prime-order group: given one,
// callers obtain fresh Scalar and Point values and learn their encoded
// sizes, without ever needing to know which curve backs the implementation.
type Group interface {
	String() string

	ScalarLen() int
	Scalar() Scalar

	PointLen() int
	Point() Point

	Embeddable
}

// Random is satisfied by a suite that can hand out a cryptographically
// strong random stream of its own, independent of any stream a caller
// supplies explicitly.
type Random interface {
	RandomStream() cipher.Stream
}

// Suite bundles everything the rest of this repository needs from a group:
// its arithmetic, its own random source, and a hash constructor bound to the
// same security level (used by Schnorr and by session-ID / HKDF-context
// hashing).
type Suite interface {
	Group
	Random
	Hash() HashState
}

// HashState is the subset of hash.Hash this repository relies on.
type HashState interface {
	Write(p []byte) (n int, err error)
	Sum(b []byte) []byte
	Reset()
	Size() int
}
