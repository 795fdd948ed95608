package vss

import (
	"errors"
	"fmt"

	"github.com/project-dkg/dkg-sub000/group"
	"github.com/project-dkg/dkg-sub000/share"
	"github.com/project-dkg/dkg-sub000/sign/schnorr"
)

// Dealer creates and distributes the shares of one secret, and answers
// Complaints with Justifications.
type Dealer struct {
	suite group.Suite

	long          group.Scalar
	pub           group.Point
	secret        group.Scalar
	secretCommits []group.Point
	secretPoly    *share.PriPoly
	verifiers     []group.Point
	hkdfContext   []byte
	t             int
	sessionID     []byte
	deals         []*Deal

	*Aggregator
}

// NewDealer builds a Dealer sharing secret among verifiers at threshold t.
// t must be in [2, len(verifiers)]; see MinimumT for the smallest value
// that keeps the scheme secure.
func NewDealer(suite group.Suite, longterm, secret group.Scalar, verifiers []group.Point, t int) (*Dealer, error) {
	if !validT(t, verifiers) {
		return nil, fmt.Errorf("vss: threshold %d invalid for %d verifiers", t, len(verifiers))
	}

	d := &Dealer{
		suite:     suite,
		long:      longterm,
		secret:    secret,
		verifiers: verifiers,
		t:         t,
	}

	f := share.NewPriPoly(suite, t, secret, suite.RandomStream())
	d.pub = suite.Point().Mul(longterm, nil)

	F := f.Commit(suite.Point().Base())
	_, d.secretCommits = F.Info()

	sid, err := sessionID(suite, d.pub, verifiers, d.secretCommits, t)
	if err != nil {
		return nil, err
	}
	d.sessionID = sid
	d.Aggregator = newAggregator(suite, d.pub, verifiers, d.secretCommits, t, sid)

	d.deals = make([]*Deal, len(verifiers))
	for i := range verifiers {
		d.deals[i] = &Deal{
			SessionID:   sid,
			SecShare:    f.Eval(i),
			Commitments: d.secretCommits,
			T:           uint32(t),
		}
	}

	ctx, err := hkdfContext(suite, d.pub, verifiers)
	if err != nil {
		return nil, err
	}
	d.hkdfContext = ctx
	d.secretPoly = f
	return d, nil
}

// PlaintextDeal returns the unencrypted Deal destined for verifier i. Only
// meant for tests: in production every deal must travel through
// EncryptedDeal.
func (d *Dealer) PlaintextDeal(i int) (*Deal, error) {
	if i < 0 || i >= len(d.deals) {
		return nil, errors.New("vss: plaintext deal index out of range")
	}
	return d.deals[i], nil
}

// EncryptedDeal encrypts the deal meant for verifier i: it generates an
// ephemeral DH key pair, signs the ephemeral public key with the dealer's
// long-term key, derives an AES-256-GCM key from the DH shared secret via
// HKDF, and seals the deal's canonical encoding under it.
func (d *Dealer) EncryptedDeal(i int) (*EncryptedDeal, error) {
	vPub, ok := findPub(d.verifiers, uint32(i))
	if !ok {
		return nil, errors.New("vss: no verifier at that index")
	}

	dhSecret := d.suite.Scalar().Pick(d.suite.RandomStream())
	dhPublic := d.suite.Point().Mul(dhSecret, nil)
	dhPublicBuf, err := dhPublic.MarshalBinary()
	if err != nil {
		return nil, err
	}

	signature, err := schnorr.Sign(d.suite, d.long, dhPublicBuf)
	if err != nil {
		return nil, err
	}

	pre, err := dhExchange(d.suite, dhSecret, vPub)
	if err != nil {
		return nil, err
	}
	gcm, err := newAEAD(d.suite.Hash, pre, d.hkdfContext)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	dealBuf, err := d.deals[i].MarshalBinary()
	if err != nil {
		return nil, err
	}

	sealed := gcm.Seal(nil, nonce, dealBuf, d.hkdfContext)
	tagStart := len(sealed) - gcm.Overhead()

	return &EncryptedDeal{
		DHKey:     dhPublicBuf,
		Signature: signature,
		Nonce:     nonce,
		Cipher:    sealed[:tagStart],
		Tag:       sealed[tagStart:],
	}, nil
}

// EncryptedDeals returns the encrypted deal for every verifier, in order.
func (d *Dealer) EncryptedDeals() ([]*EncryptedDeal, error) {
	out := make([]*EncryptedDeal, len(d.verifiers))
	for i := range d.verifiers {
		e, err := d.EncryptedDeal(i)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

// ProcessResponse records r and, if it is a valid complaint, produces the
// Justification that must be broadcast in reply. A valid approval yields a
// nil Justification and nil error.
func (d *Dealer) ProcessResponse(r *Response) (*Justification, error) {
	if err := d.verifyResponse(r); err != nil {
		return nil, err
	}
	if r.Status == StatusApproval {
		return nil, nil
	}

	j := &Justification{
		SessionID: d.sessionID,
		Index:     r.Index,
		Deal:      d.deals[int(r.Index)],
	}
	jHash, err := j.Hash(d.suite)
	if err != nil {
		return nil, err
	}
	sig, err := schnorr.Sign(d.suite, d.long, jHash)
	if err != nil {
		return nil, err
	}
	j.Signature = sig
	return j, nil
}

// SecretCommit returns the commitment to the shared secret once the deal
// has gathered enough approvals and is certified; nil otherwise.
func (d *Dealer) SecretCommit() group.Point {
	if !d.EnoughApprovals() || !d.DealCertified() {
		return nil
	}
	return d.suite.Point().Mul(d.secret, nil)
}

// Commits returns the public commitment to every coefficient of the
// dealer's secret polynomial.
func (d *Dealer) Commits() []group.Point {
	return d.secretCommits
}

// Key returns the dealer's long-term key pair.
func (d *Dealer) Key() (group.Scalar, group.Point) {
	return d.long, d.pub
}

// SessionID returns the session ID bound to this dealer's run.
func (d *Dealer) SessionID() []byte {
	return d.sessionID
}

// SetTimeout marks the end of the round: every verifier that has not yet
// responded is recorded as having complained, so DealCertified can resolve
// without waiting on it further.
func (d *Dealer) SetTimeout() {
	d.Aggregator.cleanVerifiers()
}

// PrivatePoly returns the dealer's private polynomial, for use by a caller
// building a new share later (e.g. during resharing). It must never leave
// the dealer's own process.
func (d *Dealer) PrivatePoly() *share.PriPoly {
	return d.secretPoly
}
