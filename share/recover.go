package share

import (
	"errors"
	"sort"

	"github.com/project-dkg/dkg-sub000/group"
)

// ErrTooFewShares is returned by the Recover* functions when fewer than t
// distinct shares are supplied.
var ErrTooFewShares = errors.New("share: not enough shares to recover the secret")

// xCoord returns the Lagrange x-coordinate for share index i: x = i+1.
func xCoord(g group.Group, i int) group.Scalar {
	return g.Scalar().SetInt64(1 + int64(i))
}

// sortedPriShares returns the first t of shares, sorted by ascending index,
// deduplicating repeated indices (the first occurrence wins).
func sortedPriShares(shares []*PriShare, t int) ([]*PriShare, error) {
	filtered := make([]*PriShare, 0, len(shares))
	seen := make(map[int]bool)
	for _, s := range shares {
		if s == nil || seen[s.I] {
			continue
		}
		seen[s.I] = true
		filtered = append(filtered, s)
	}
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].I < filtered[j].I })
	if len(filtered) < t {
		return nil, ErrTooFewShares
	}
	return filtered[:t], nil
}

func sortedPubShares(shares []*PubShare, t int) ([]*PubShare, error) {
	filtered := make([]*PubShare, 0, len(shares))
	seen := make(map[int]bool)
	for _, s := range shares {
		if s == nil || seen[s.I] {
			continue
		}
		seen[s.I] = true
		filtered = append(filtered, s)
	}
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].I < filtered[j].I })
	if len(filtered) < t {
		return nil, ErrTooFewShares
	}
	return filtered[:t], nil
}

// RecoverSecret reconstructs the shared secret p(0) from t or more private
// shares of a threshold-t polynomial, using Lagrange interpolation at x=0
// over the first t shares sorted by ascending index.
func RecoverSecret(g group.Group, shares []*PriShare, t int) (group.Scalar, error) {
	chosen, err := sortedPriShares(shares, t)
	if err != nil {
		return nil, err
	}

	acc := g.Scalar().Zero()
	num := g.Scalar()
	den := g.Scalar()
	tmp := g.Scalar()

	for i, si := range chosen {
		xi := xCoord(g, si.I)
		num.Set(si.V)
		den.One()
		for j, sj := range chosen {
			if j == i {
				continue
			}
			xj := xCoord(g, sj.I)
			num.Mul(num, xj)
			den.Mul(den, tmp.Sub(xj, xi))
		}
		acc.Add(acc, num.Mul(num, den.Inv(den)))
	}
	return acc, nil
}

// RecoverCommit reconstructs the commitment P(0) to the shared secret from
// t or more public shares, mirroring RecoverSecret in point space.
func RecoverCommit(g group.Group, shares []*PubShare, t int) (group.Point, error) {
	chosen, err := sortedPubShares(shares, t)
	if err != nil {
		return nil, err
	}

	num := g.Scalar()
	den := g.Scalar()
	tmp := g.Scalar()
	acc := g.Point().Null()
	scaled := g.Point()

	for i, si := range chosen {
		xi := xCoord(g, si.I)
		num.One()
		den.One()
		for j, sj := range chosen {
			if j == i {
				continue
			}
			xj := xCoord(g, sj.I)
			num.Mul(num, xj)
			den.Mul(den, tmp.Sub(xj, xi))
		}
		lambda := num.Mul(num, den.Inv(den))
		scaled.Mul(lambda, si.V)
		acc.Add(acc, scaled)
	}
	return acc, nil
}

// RecoverPriPoly reconstructs the entire degree t-1 polynomial from t or
// more private shares, using the Lagrange basis polynomials L_j(x) rather
// than evaluating only at x=0.
func RecoverPriPoly(g group.Group, shares []*PriShare, t int) (*PriPoly, error) {
	chosen, err := sortedPriShares(shares, t)
	if err != nil {
		return nil, err
	}

	var acc *PriPoly
	for i, si := range chosen {
		basis := lagrangeBasis(g, i, chosen)
		scaled := basis.scale(si.V)
		if acc == nil {
			acc = scaled
			continue
		}
		acc, err = acc.Add(scaled)
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

// lagrangeBasis computes L_j(x) = prod_{m != j} (x - x_m) / (x_j - x_m) as
// a PriPoly, for the j-th share among chosen.
func lagrangeBasis(g group.Group, j int, chosen []*PriShare) *PriPoly {
	xj := xCoord(g, chosen[j].I)

	basis := &PriPoly{g: g, coeffs: []group.Scalar{g.Scalar().One()}}
	acc := g.Scalar().One()
	for m, sm := range chosen {
		if m == j {
			continue
		}
		xm := xCoord(g, sm.I)
		// basis *= (x - x_m)
		basis = basis.mulLinear(xm)
		// acc *= (x_j - x_m)
		diff := g.Scalar().Sub(xj, xm)
		acc.Mul(acc, diff)
	}
	invAcc := g.Scalar().Inv(acc)
	return basis.scale(invAcc)
}

// mulLinear returns p * (x - root), i.e. multiplies the polynomial by the
// monic linear factor with the given root.
func (p *PriPoly) mulLinear(root group.Scalar) *PriPoly {
	g := p.g
	out := make([]group.Scalar, len(p.coeffs)+1)
	for i := range out {
		out[i] = g.Scalar().Zero()
	}
	negRoot := g.Scalar().Neg(root)
	for i, c := range p.coeffs {
		// out[i]   += c * (-root)
		// out[i+1] += c
		term := g.Scalar().Mul(c, negRoot)
		out[i] = g.Scalar().Add(out[i], term)
		out[i+1] = g.Scalar().Add(out[i+1], c)
	}
	return &PriPoly{g: g, coeffs: out}
}

// scale returns p with every coefficient multiplied by k.
func (p *PriPoly) scale(k group.Scalar) *PriPoly {
	out := make([]group.Scalar, len(p.coeffs))
	for i, c := range p.coeffs {
		out[i] = p.g.Scalar().Mul(c, k)
	}
	return &PriPoly{g: p.g, coeffs: out}
}
