package vss

import (
	"bytes"
	"errors"

	"github.com/project-dkg/dkg-sub000/group"
	"github.com/project-dkg/dkg-sub000/share"
	"github.com/project-dkg/dkg-sub000/sign/schnorr"
)

// Aggregator collects the Responses (and, indirectly, the Deal) for one
// dealer's run of the protocol, and derives DealCertified from them. Both
// Dealer and Verifier embed one.
type Aggregator struct {
	suite     group.Suite
	dealerPub group.Point
	verifiers []group.Point
	commits   []group.Point

	responses map[uint32]*Response
	sid       []byte
	deal      *Deal
	t         int
	badDealer bool
}

func newAggregator(suite group.Suite, dealerPub group.Point, verifiers, commits []group.Point, t int, sid []byte) *Aggregator {
	return &Aggregator{
		suite:     suite,
		dealerPub: dealerPub,
		verifiers: verifiers,
		commits:   commits,
		t:         t,
		sid:       sid,
		responses: make(map[uint32]*Response),
	}
}

// NewEmptyAggregator returns an Aggregator with no deal pinned yet, for a
// Verifier that has not received its Deal.
func NewEmptyAggregator(suite group.Suite, verifiers []group.Point) *Aggregator {
	return &Aggregator{
		suite:     suite,
		verifiers: verifiers,
		responses: make(map[uint32]*Response),
	}
}

// VerifyDeal checks d and returns the ComplaintCode describing the result:
// NoComplaint on success, or the first failing check in order (duplicate
// deal, threshold range, threshold consistency, session ID, share index
// range, share-against-commitment). When inclusion is true and this
// aggregator already has a pinned deal, it short-circuits to
// AlreadyProcessed without re-checking anything else. On the first
// successful or unsuccessful-but-new call, it pins commits/sid/deal, and t
// unless SetThreshold already set it.
func (a *Aggregator) VerifyDeal(d *Deal, inclusion bool) ComplaintCode {
	if a.deal != nil && inclusion {
		return AlreadyProcessed
	}
	if a.deal == nil {
		a.commits = d.Commitments
		a.sid = d.SessionID
		a.deal = d
		if a.t == 0 {
			a.t = int(d.T)
		}
	}

	if !validT(int(d.T), a.verifiers) {
		return InvalidThreshold
	}
	if int(d.T) != a.t {
		return IncompatibleThreshold
	}
	if !bytes.Equal(a.sid, d.SessionID) {
		return SessionIdDoesNotMatch
	}

	fi := d.SecShare
	if fi.I < 0 || fi.I >= len(a.verifiers) {
		return IndexOutOfBound
	}

	fig := a.suite.Point().Mul(fi.V, nil)
	commitPoly := share.NewPubPoly(a.suite, nil, d.Commitments)
	pubShare := commitPoly.Eval(fi.I)
	if !fig.Equal(pubShare.V) {
		return ShareDoesNotVerify
	}
	return NoComplaint
}

// cleanVerifiers records a synthetic Complaint for every verifier that has
// not yet responded, so DealCertified can be evaluated after a timeout
// without waiting on stragglers forever.
func (a *Aggregator) cleanVerifiers() {
	for i := range a.verifiers {
		if _, ok := a.responses[uint32(i)]; !ok {
			a.responses[uint32(i)] = &Response{
				SessionID: a.sid,
				Index:     uint32(i),
				Status:    StatusComplaint,
			}
		}
	}
}

// SetThreshold pins the expected threshold before any Deal has arrived, so
// the first Deal received is checked against it rather than being trusted
// as ground truth.
func (a *Aggregator) SetThreshold(t int) {
	a.t = t
}

// ProcessResponse verifies r's signature and session ID against this
// aggregator's pinned state and records it.
func (a *Aggregator) ProcessResponse(r *Response) error {
	return a.verifyResponse(r)
}

func (a *Aggregator) verifyResponse(r *Response) error {
	if a.sid != nil && !bytes.Equal(r.SessionID, a.sid) {
		return errors.New("vss: receiving inconsistent session id in response")
	}

	pub, ok := findPub(a.verifiers, r.Index)
	if !ok {
		return errors.New("vss: index out of bounds in response")
	}
	if err := schnorr.Verify(a.suite, pub, r.Hash(a.suite), r.Signature); err != nil {
		return err
	}
	return a.addResponse(r)
}

func (a *Aggregator) verifyJustification(j *Justification) error {
	if _, ok := findPub(a.verifiers, j.Index); !ok {
		return errors.New("vss: index out of bounds in justification")
	}
	r, ok := a.responses[j.Index]
	if !ok {
		return errors.New("vss: no complaint recorded for this justification")
	}
	if r.Status != StatusComplaint {
		return errors.New("vss: justification received for an approval")
	}

	if code := a.VerifyDeal(j.Deal, false); code != NoComplaint {
		a.badDealer = true
		return errors.New("vss: justification failed: " + code.String())
	}
	// Record the upgrade on a copy so the caller's Response is left unchanged.
	approved := *r
	approved.Status = StatusApproval
	a.responses[j.Index] = &approved
	return nil
}

// addResponse records r. A second response from an index already on file
// is silently dropped rather than treated as an error, since the transport
// layer may redeliver the same broadcast more than once.
func (a *Aggregator) addResponse(r *Response) error {
	if _, ok := findPub(a.verifiers, r.Index); !ok {
		return errors.New("vss: index out of bounds in response")
	}
	if _, ok := a.responses[r.Index]; ok {
		return nil
	}
	a.responses[r.Index] = r
	return nil
}

// EnoughApprovals reports whether at least t verifiers have approved.
func (a *Aggregator) EnoughApprovals() bool {
	var app int
	for _, r := range a.responses {
		if r.Status == StatusApproval {
			app++
		}
	}
	return app >= a.t
}

// Responses returns the responses collected so far, keyed by verifier index.
func (a *Aggregator) Responses() map[uint32]*Response {
	return a.responses
}

// DealCertified reports whether every verifier is accounted for (approved,
// complained-and-justified, or timed out into a synthetic complaint), the
// dealer was never caught sending a bad justification, and enough approvals
// were gathered.
func (a *Aggregator) DealCertified() bool {
	var absent, complaints int
	for i := range a.verifiers {
		r, ok := a.responses[uint32(i)]
		if !ok {
			absent++
		} else if r.Status == StatusComplaint {
			complaints++
		}
	}
	tooManyComplaints := absent > 0 || a.badDealer || complaints > a.t
	return a.EnoughApprovals() && !tooManyComplaints
}

// MinimumT returns the smallest threshold proven secure for n participants.
func MinimumT(n int) int {
	return (n + 1) / 2
}
