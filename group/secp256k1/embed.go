package secp256k1

import (
	"crypto/cipher"
	"errors"

	"github.com/project-dkg/dkg-sub000/group"
)

// embedMaxRerolls bounds how many random fillings of the embedding
// candidate are tried before EmbedData gives up (spec: "up to 256 times").
const embedMaxRerolls = 256

// EmbedLen returns the maximum number of bytes that can be reliably
// embedded into one secp256k1 point: the scalar width minus the length
// prefix byte and one byte of headroom so the candidate x-coordinate never
// collides with values >= the field prime.
func (s *suite) EmbedLen() int {
	return ScalarLen - 2
}

// EmbedData packs up to EmbedLen(s) bytes of data into a curve point. It
// places a length byte in the high-order position of a candidate
// x-coordinate, data in the following bytes, and fills the remainder with
// rand, rerolling the random tail until the candidate lies on the curve.
func (s *suite) EmbedData(data []byte, rand cipher.Stream) (group.Point, error) {
	if len(data) > s.EmbedLen() {
		panic("secp256k1: data too long to embed")
	}
	buf := make([]byte, ScalarLen)
	buf[0] = byte(len(data))
	copy(buf[1:], data)
	tail := buf[1+len(data):]

	for i := 0; i < embedMaxRerolls; i++ {
		rand.XORKeyStream(tail, tail)
		if p, ok := tryPoint(buf); ok {
			return p, nil
		}
	}
	return nil, errors.New("secp256k1: no point found to embed data, too much randomness tried")
}

// ExtractData inverts EmbedData, reading the length byte and returning the
// following bytes of the point's x-coordinate.
func (s *suite) ExtractData(p group.Point) ([]byte, error) {
	pp, ok := p.(*point)
	if !ok || pp.isIdentity() {
		return nil, errors.New("secp256k1: point has no embedded data")
	}
	xBytes := make([]byte, ScalarLen)
	pp.x.FillBytes(xBytes)
	l := int(xBytes[0])
	if l > s.EmbedLen() {
		return nil, errors.New("secp256k1: invalid embedded data length")
	}
	return xBytes[1 : 1+l], nil
}
