package vss

import (
	"errors"

	"github.com/project-dkg/dkg-sub000/group"
	"github.com/project-dkg/dkg-sub000/share"
	"github.com/project-dkg/dkg-sub000/sign/schnorr"
)

// Verifier receives one Deal from a Dealer, checks it, and can cooperate
// with other Verifiers to reconstruct the shared secret.
type Verifier struct {
	suite       group.Suite
	longterm    group.Scalar
	pub         group.Point
	dealerPub   group.Point
	index       int
	verifiers   []group.Point
	hkdfContext []byte

	*Aggregator
}

// NewVerifier builds a Verifier from its own long-term secret key, the
// dealer's long-term public key, and the full list of verifier public
// keys, which must contain this verifier's own derived public key exactly
// once.
func NewVerifier(suite group.Suite, longterm group.Scalar, dealerPub group.Point, verifiers []group.Point) (*Verifier, error) {
	pub := suite.Point().Mul(longterm, nil)

	index := -1
	for i, v := range verifiers {
		if v.Equal(pub) {
			index = i
			break
		}
	}
	if index < 0 {
		return nil, errors.New("vss: public key not found among verifiers")
	}

	ctx, err := hkdfContext(suite, dealerPub, verifiers)
	if err != nil {
		return nil, err
	}

	return &Verifier{
		suite:       suite,
		longterm:    longterm,
		dealerPub:   dealerPub,
		verifiers:   verifiers,
		pub:         pub,
		index:       index,
		hkdfContext: ctx,
		Aggregator:  NewEmptyAggregator(suite, verifiers),
	}, nil
}

// ProcessEncryptedDeal decrypts e and verifies the deal against the
// dealer's commitments, returning a signed Response to broadcast. An
// AlreadyProcessed complaint never reaches here as a Response: it is
// returned directly as ErrDealAlreadyProcessed, since a second copy of a
// pinned deal has nothing new to tell the rest of the group.
func (v *Verifier) ProcessEncryptedDeal(e *EncryptedDeal) (*Response, error) {
	d, err := v.decryptDeal(e)
	if err != nil {
		return nil, err
	}
	if d.SecShare.I != v.index {
		return nil, errors.New("vss: deal's share index does not match this verifier")
	}

	sid, err := sessionID(v.suite, v.dealerPub, v.verifiers, d.Commitments, int(d.T))
	if err != nil {
		return nil, err
	}

	code := v.Aggregator.VerifyDeal(d, true)
	if code == AlreadyProcessed {
		return nil, ErrDealAlreadyProcessed
	}

	r := &Response{
		SessionID:     sid,
		Index:         uint32(v.index),
		Status:        code == NoComplaint,
		ComplaintCode: code,
	}
	sig, err := schnorr.Sign(v.suite, v.longterm, r.Hash(v.suite))
	if err != nil {
		return nil, err
	}
	r.Signature = sig

	if err := v.Aggregator.addResponse(r); err != nil {
		return nil, err
	}
	return r, nil
}

func (v *Verifier) decryptDeal(e *EncryptedDeal) (*Deal, error) {
	if err := schnorr.Verify(v.suite, v.dealerPub, e.DHKey, e.Signature); err != nil {
		return nil, err
	}

	dhKey := v.suite.Point()
	if err := dhKey.UnmarshalBinary(e.DHKey); err != nil {
		return nil, err
	}

	pre, err := dhExchange(v.suite, v.longterm, dhKey)
	if err != nil {
		return nil, err
	}
	gcm, err := newAEAD(v.suite.Hash, pre, v.hkdfContext)
	if err != nil {
		return nil, err
	}

	sealed := make([]byte, 0, len(e.Cipher)+len(e.Tag))
	sealed = append(sealed, e.Cipher...)
	sealed = append(sealed, e.Tag...)

	plain, err := gcm.Open(nil, e.Nonce, sealed, v.hkdfContext)
	if err != nil {
		return nil, err
	}
	return unmarshalDeal(v.suite, plain)
}

// ProcessResponse verifies resp and records it. The caller must have
// already received this verifier's own Deal.
func (v *Verifier) ProcessResponse(resp *Response) error {
	if v.Aggregator.deal == nil {
		return ErrNoDealBeforeResponse
	}
	return v.Aggregator.verifyResponse(resp)
}

// Commits returns the coefficient commitments of the Deal this verifier
// received.
func (v *Verifier) Commits() []group.Point {
	return v.Aggregator.deal.Commitments
}

// Deal returns the Deal this verifier received, or nil if it is not yet
// certified.
func (v *Verifier) Deal() *Deal {
	if !v.EnoughApprovals() || !v.DealCertified() {
		return nil
	}
	return v.Aggregator.deal
}

// ProcessJustification checks j against this verifier's recorded complaint
// and flips it to an approval on success.
func (v *Verifier) ProcessJustification(j *Justification) error {
	return v.Aggregator.verifyJustification(j)
}

// Key returns this verifier's own long-term key pair.
func (v *Verifier) Key() (group.Scalar, group.Point) {
	return v.longterm, v.pub
}

// Index returns this verifier's index in the verifier list.
func (v *Verifier) Index() int {
	return v.index
}

// SessionID returns the session ID of the Deal this verifier received, or
// nil if none has arrived yet.
func (v *Verifier) SessionID() []byte {
	return v.Aggregator.sid
}

// SetTimeout marks the end of the round, recording a synthetic complaint
// for every verifier that never responded.
func (v *Verifier) SetTimeout() {
	v.Aggregator.cleanVerifiers()
}

// UnsafeSetResponseDKG bypasses signature verification to record an
// approval or complaint for verifier idx directly; used by the DKG
// orchestrator, which has already authenticated the message at a higher
// layer.
func (v *Verifier) UnsafeSetResponseDKG(idx uint32, approval bool) {
	r := &Response{
		SessionID: v.Aggregator.sid,
		Index:     idx,
		Status:    approval,
	}
	_ = v.Aggregator.addResponse(r)
}

// RecoverSecret reconstructs the secret shared across deals, which must
// all carry the same session ID.
func RecoverSecret(suite group.Suite, deals []*Deal, t int) (group.Scalar, error) {
	shares := make([]*share.PriShare, len(deals))
	for i, d := range deals {
		if i > 0 && string(d.SessionID) != string(deals[0].SessionID) {
			return nil, errors.New("vss: deals do not share a common session id")
		}
		shares[i] = d.SecShare
	}
	return share.RecoverSecret(suite, shares, t)
}
