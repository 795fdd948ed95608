package secp256k1

import (
	"crypto/elliptic"
	"errors"
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/project-dkg/dkg-sub000/group"
)

// PointLen is the fixed width, in bytes, of a SEC1-compressed secp256k1
// point: a one-byte parity prefix followed by the 32-byte x-coordinate.
const PointLen = 33

var curve = btcec.S256()
var order = curve.Params().N

type point struct {
	x, y *big.Int // nil, nil denotes the identity element
}

func newPoint() *point {
	return &point{}
}

func (p *point) isIdentity() bool {
	return p.x == nil || p.y == nil
}

func (p *point) MarshalSize() int { return PointLen }

func (p *point) MarshalBinary() ([]byte, error) {
	if p.isIdentity() {
		return nil, errors.New("secp256k1: cannot encode the identity point")
	}
	return elliptic.MarshalCompressed(curve, p.x, p.y), nil
}

func (p *point) UnmarshalBinary(data []byte) error {
	if len(data) != PointLen {
		return errors.New("secp256k1: invalid point encoding length")
	}
	x, y := elliptic.UnmarshalCompressed(curve, data)
	if x == nil {
		return errors.New("secp256k1: point is not on the curve")
	}
	p.x, p.y = x, y
	return nil
}

func (p *point) Equal(p2 group.Point) bool {
	o := p2.(*point)
	if p.isIdentity() || o.isIdentity() {
		return p.isIdentity() == o.isIdentity()
	}
	return p.x.Cmp(o.x) == 0 && p.y.Cmp(o.y) == 0
}

func (p *point) Set(q group.Point) group.Point {
	o := q.(*point)
	if o.isIdentity() {
		p.x, p.y = nil, nil
		return p
	}
	p.x = new(big.Int).Set(o.x)
	p.y = new(big.Int).Set(o.y)
	return p
}

func (p *point) Clone() group.Point {
	c := &point{}
	c.Set(p)
	return c
}

func (p *point) Null() group.Point {
	p.x, p.y = nil, nil
	return p
}

func (p *point) Base() group.Point {
	params := curve.Params()
	p.x = new(big.Int).Set(params.Gx)
	p.y = new(big.Int).Set(params.Gy)
	return p
}

func (p *point) Add(a, b group.Point) group.Point {
	pa, pb := a.(*point), b.(*point)
	switch {
	case pa.isIdentity():
		return p.Set(pb)
	case pb.isIdentity():
		return p.Set(pa)
	}
	x, y := curve.Add(pa.x, pa.y, pb.x, pb.y)
	p.x, p.y = x, y
	if p.x.Sign() == 0 && p.y.Sign() == 0 {
		// curve.Add returns (0,0) for P + (-P); normalize to the identity.
		p.x, p.y = nil, nil
	}
	return p
}

func (p *point) Neg(a group.Point) group.Point {
	pa := a.(*point)
	if pa.isIdentity() {
		p.x, p.y = nil, nil
		return p
	}
	p.x = new(big.Int).Set(pa.x)
	p.y = new(big.Int).Sub(curve.Params().P, pa.y)
	p.y.Mod(p.y, curve.Params().P)
	return p
}

func (p *point) Sub(a, b group.Point) group.Point {
	neg := newPoint()
	neg.Neg(b)
	return p.Add(a, neg)
}

func (p *point) Mul(s group.Scalar, q group.Point) group.Point {
	sc := s.(*scalar)
	k := new(big.Int).Mod(sc.v, order).Bytes()
	var x, y *big.Int
	if q == nil {
		x, y = curve.ScalarBaseMult(k)
	} else {
		qp := q.(*point)
		if qp.isIdentity() {
			p.x, p.y = nil, nil
			return p
		}
		x, y = curve.ScalarMult(qp.x, qp.y, k)
	}
	if x.Sign() == 0 && y.Sign() == 0 {
		p.x, p.y = nil, nil
		return p
	}
	p.x, p.y = x, y
	return p
}

// tryPoint interprets xBytes as a candidate x-coordinate and returns the
// corresponding even-y point on the curve, if one exists.
func tryPoint(xBytes []byte) (*point, bool) {
	x := new(big.Int).SetBytes(xBytes)
	params := curve.Params()
	if x.Cmp(params.P) >= 0 {
		return nil, false
	}
	ySq := new(big.Int).Exp(x, big.NewInt(3), params.P)
	ySq.Add(ySq, big.NewInt(7)) // secp256k1: y^2 = x^3 + 7
	ySq.Mod(ySq, params.P)
	y := new(big.Int).ModSqrt(ySq, params.P)
	if y == nil {
		return nil, false
	}
	// pick the even root for a canonical, reproducible embedding.
	if y.Bit(0) == 1 {
		y.Sub(params.P, y)
	}
	return &point{x: x, y: y}, true
}
