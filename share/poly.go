// Package share implements Shamir secret sharing and polynomial
// interpolation over a prime-order group (see group.Group), generalized
// from the teacher corpus's own share/core.go: a PriPoly represents the
// dealer's secret polynomial, a PubPoly its commitment, and the Recover*
// functions perform Lagrange reconstruction at x=0.
//
// Share index convention: a share with index i is the polynomial
// evaluated at x = i+1, never at x = i. This guarantees that no share by
// itself reveals anything about the secret p(0).
package share

import (
	"crypto/cipher"
	"errors"

	"github.com/project-dkg/dkg-sub000/group"
)

// PriShare is an individual private share v = p(i+1) of a PriPoly.
type PriShare struct {
	I int
	V group.Scalar
}

// PriPoly is a secret sharing polynomial f(x) = a0 + a1*x + ... +
// a_{t-1}*x^{t-1} over the given group, with a0 the shared secret.
type PriPoly struct {
	g      group.Group
	coeffs []group.Scalar
}

// NewPriPoly creates a degree t-1 polynomial whose constant term is s (or a
// fresh random scalar if s is nil), with the remaining coefficients drawn
// from rand.
func NewPriPoly(g group.Group, t int, s group.Scalar, rand cipher.Stream) *PriPoly {
	coeffs := make([]group.Scalar, t)
	if s == nil {
		coeffs[0] = g.Scalar().Pick(rand)
	} else {
		coeffs[0] = s.Clone()
	}
	for i := 1; i < t; i++ {
		coeffs[i] = g.Scalar().Pick(rand)
	}
	return &PriPoly{g: g, coeffs: coeffs}
}

// Coefficients exposes the raw coefficients of p. Secrets (the dealer's own
// polynomial) must never cross a trust boundary through this method in
// cleartext form during a live protocol run; it exists so the DKG
// orchestrator can record the local private polynomial in the DistKeyShare
// it returns.
func (p *PriPoly) Coefficients() []group.Scalar {
	return p.coeffs
}

// Threshold returns t, the number of coefficients of p (and hence the
// number of shares required to reconstruct its secret).
func (p *PriPoly) Threshold() int {
	return len(p.coeffs)
}

// Secret returns the shared secret p(0), the constant term of p.
func (p *PriPoly) Secret() group.Scalar {
	return p.coeffs[0]
}

// Eval computes the share p(i+1).
func (p *PriPoly) Eval(i int) *PriShare {
	xi := p.g.Scalar().SetInt64(1 + int64(i))
	v := p.g.Scalar().Zero()
	for k := p.Threshold() - 1; k >= 0; k-- {
		v.Mul(v, xi)
		v.Add(v, p.coeffs[k])
	}
	return &PriShare{I: i, V: v}
}

// Shares evaluates p at indices 0..n-1.
func (p *PriPoly) Shares(n int) []*PriShare {
	out := make([]*PriShare, n)
	for i := 0; i < n; i++ {
		out[i] = p.Eval(i)
	}
	return out
}

// Commit returns the public commitment polynomial C(x) = b * ... (the
// coefficient-wise commitment of p against base point b, or the group's
// standard base point if b is nil).
func (p *PriPoly) Commit(b group.Point) *PubPoly {
	commits := make([]group.Point, p.Threshold())
	for i, c := range p.coeffs {
		commits[i] = p.g.Point().Mul(c, b)
	}
	return &PubPoly{g: p.g, b: b, commits: commits}
}

// Add returns the coefficient-wise sum of p and q. Both must share the same
// group and threshold.
func (p *PriPoly) Add(q *PriPoly) (*PriPoly, error) {
	if p.Threshold() != q.Threshold() {
		return nil, errors.New("share: private polynomials have different thresholds")
	}
	coeffs := make([]group.Scalar, p.Threshold())
	for i := range coeffs {
		coeffs[i] = p.g.Scalar().Add(p.coeffs[i], q.coeffs[i])
	}
	return &PriPoly{g: p.g, coeffs: coeffs}, nil
}

// PubShare is an individual public share V = P(i+1) of a PubPoly.
type PubShare struct {
	I int
	V group.Point
}

// PubPoly is the public commitment to a PriPoly: a base point b (the
// group's standard base if nil) and the coefficient commitments
// C_k = a_k*b.
type PubPoly struct {
	g       group.Group
	b       group.Point
	commits []group.Point
}

// NewPubPoly builds a public polynomial directly from its base point and
// coefficient commitments, e.g. when reconstructing one received over the
// wire inside a Deal.
func NewPubPoly(g group.Group, b group.Point, commits []group.Point) *PubPoly {
	return &PubPoly{g: g, b: b, commits: commits}
}

// Info returns the base point (nil meaning the group's standard base) and
// the coefficient commitments.
func (p *PubPoly) Info() (group.Point, []group.Point) {
	return p.b, p.commits
}

// Threshold returns the number of coefficient commitments in p.
func (p *PubPoly) Threshold() int {
	return len(p.commits)
}

// Commit returns the commitment to the constant term, i.e. the public key
// when p commits the DKG's distributed secret polynomial.
func (p *PubPoly) Commit() group.Point {
	return p.commits[0]
}

// Eval computes the public share P(i+1) = sum_k C_k * (i+1)^k.
func (p *PubPoly) Eval(i int) *PubShare {
	xi := p.g.Scalar().SetInt64(1 + int64(i))
	v := p.g.Point().Null()
	for k := p.Threshold() - 1; k >= 0; k-- {
		v.Mul(xi, v)
		v.Add(v, p.commits[k])
	}
	return &PubShare{I: i, V: v}
}

// Shares evaluates p at indices 0..n-1.
func (p *PubPoly) Shares(n int) []*PubShare {
	out := make([]*PubShare, n)
	for i := 0; i < n; i++ {
		out[i] = p.Eval(i)
	}
	return out
}

// Add returns the coefficient-wise sum of p and q. Both must use the same
// base point (different bases between operands is a semantic error: the
// resulting "sum" would not commit to any single polynomial).
func (p *PubPoly) Add(q *PubPoly) (*PubPoly, error) {
	if p.Threshold() != q.Threshold() {
		return nil, errors.New("share: public polynomials have different thresholds")
	}
	commits := make([]group.Point, p.Threshold())
	for i := range commits {
		commits[i] = p.g.Point().Add(p.commits[i], q.commits[i])
	}
	return &PubPoly{g: p.g, b: p.b, commits: commits}, nil
}

// Check verifies that the private share s lies on the polynomial committed
// by p, i.e. s.V*b == p.Eval(s.I).V.
func (p *PubPoly) Check(s *PriShare) bool {
	pv := p.Eval(s.I)
	ps := p.g.Point().Mul(s.V, p.b)
	return pv.V.Equal(ps)
}
