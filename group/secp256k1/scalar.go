package secp256k1

import (
	"crypto/cipher"
	"errors"
	"math/big"

	"github.com/project-dkg/dkg-sub000/group"
	"github.com/project-dkg/dkg-sub000/util/random"
)

// ScalarLen is the fixed width, in bytes, of a serialized scalar: the
// secp256k1 group order fits in 32 bytes.
const ScalarLen = 32

type scalar struct {
	v *big.Int
}

func newScalar() *scalar {
	return &scalar{v: new(big.Int)}
}

func (s *scalar) reduce() *scalar {
	s.v.Mod(s.v, order)
	return s
}

func (s *scalar) MarshalSize() int { return ScalarLen }

func (s *scalar) MarshalBinary() ([]byte, error) {
	buf := make([]byte, ScalarLen)
	b := s.v.Bytes()
	if len(b) > ScalarLen {
		return nil, errors.New("secp256k1: scalar does not fit in fixed width")
	}
	copy(buf[ScalarLen-len(b):], b)
	return buf, nil
}

func (s *scalar) UnmarshalBinary(data []byte) error {
	if len(data) != ScalarLen {
		return errors.New("secp256k1: invalid scalar encoding length")
	}
	s.v = new(big.Int).SetBytes(data)
	if s.v.Cmp(order) >= 0 {
		return errors.New("secp256k1: scalar encoding out of range")
	}
	return nil
}

func (s *scalar) Equal(s2 group.Scalar) bool {
	o := s2.(*scalar)
	return s.v.Cmp(o.v) == 0
}

func (s *scalar) Set(a group.Scalar) group.Scalar {
	s.v.Set(a.(*scalar).v)
	return s
}

func (s *scalar) Clone() group.Scalar {
	return &scalar{v: new(big.Int).Set(s.v)}
}

func (s *scalar) SetInt64(v int64) group.Scalar {
	s.v.SetInt64(v)
	return s.reduce()
}

func (s *scalar) Zero() group.Scalar {
	s.v.SetInt64(0)
	return s
}

func (s *scalar) One() group.Scalar {
	s.v.SetInt64(1)
	return s
}

func (s *scalar) Add(a, b group.Scalar) group.Scalar {
	s.v.Add(a.(*scalar).v, b.(*scalar).v)
	return s.reduce()
}

func (s *scalar) Sub(a, b group.Scalar) group.Scalar {
	s.v.Sub(a.(*scalar).v, b.(*scalar).v)
	return s.reduce()
}

func (s *scalar) Neg(a group.Scalar) group.Scalar {
	s.v.Neg(a.(*scalar).v)
	return s.reduce()
}

func (s *scalar) Mul(a, b group.Scalar) group.Scalar {
	s.v.Mul(a.(*scalar).v, b.(*scalar).v)
	return s.reduce()
}

func (s *scalar) Inv(a group.Scalar) group.Scalar {
	s.v.ModInverse(a.(*scalar).v, order)
	return s
}

func (s *scalar) Pick(rand cipher.Stream) group.Scalar {
	for {
		b := random.Bytes(ScalarLen, rand)
		v := new(big.Int).SetBytes(b)
		if v.Sign() != 0 && v.Cmp(order) < 0 {
			s.v = v
			return s
		}
	}
}

func (s *scalar) SetBytes(b []byte) group.Scalar {
	s.v = new(big.Int).SetBytes(b)
	return s.reduce()
}
