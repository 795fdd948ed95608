// Package dkg implements a distributed key generation orchestrator on top
// of package vss/pedersen, generalized from the teacher corpus's
// share/dkg/pedersen package to also support resharing an existing
// distributed key onto a new committee and threshold, per "A threshold
// cryptosystem without a trusted party" (Pedersen).
package dkg

import (
	"errors"
	"fmt"

	"github.com/project-dkg/dkg-sub000/group"
	"github.com/project-dkg/dkg-sub000/share"
	"github.com/project-dkg/dkg-sub000/sign/schnorr"
	vss "github.com/project-dkg/dkg-sub000/vss/pedersen"
)

// DistKeyGenerator runs one round of the protocol: fresh generation when
// Config carries no old node set, resharing when it does.
type DistKeyGenerator struct {
	suite group.Suite
	long  group.Scalar
	pub   group.Point

	oldNodes []group.Point
	newNodes []group.Point
	oldT     int
	newT     int

	isResharing bool
	canIssue    bool
	canReceive  bool
	oldPresent  bool
	newPresent  bool
	oidx        int
	nidx        int

	dpub *share.PubPoly

	dealer         *vss.Dealer
	verifiers      map[uint32]*vss.Verifier
	oldAggregators map[uint32]*vss.Aggregator
}

// NewDistKeyGenerator builds a DistKeyGenerator from cfg, validating the
// fresh-vs-resharing configuration and constructing the local dealer
// and/or verifiers it is entitled to hold.
func NewDistKeyGenerator(cfg *Config) (*DistKeyGenerator, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	suite := cfg.Suite
	pub := suite.Point().Mul(cfg.LongTerm, nil)

	d := &DistKeyGenerator{
		suite:       suite,
		long:        cfg.LongTerm,
		pub:         pub,
		isResharing: cfg.isResharing(),
	}

	if !d.isResharing {
		d.oldNodes = cfg.NewNodes
		d.newNodes = cfg.NewNodes
		d.oldT = 0
		d.newT = cfg.Threshold
		if d.newT == 0 {
			d.newT = defaultThreshold(len(cfg.NewNodes))
		}
		d.canIssue = true
		d.canReceive = true
		d.oldPresent = true
		d.newPresent = true
		idx, ok := findIndex(d.newNodes, pub)
		if !ok {
			return nil, errors.New("dkg: own public key not found among new nodes")
		}
		d.oidx = idx
		d.nidx = idx
	} else {
		d.oldNodes = cfg.OldNodes
		d.newNodes = cfg.NewNodes
		d.oldT = cfg.OldThreshold
		d.newT = cfg.Threshold
		if d.newT == 0 {
			d.newT = defaultThreshold(len(cfg.NewNodes))
		}
		if oi, ok := findIndex(d.oldNodes, pub); ok {
			d.oldPresent = true
			d.oidx = oi
			d.canIssue = true
		} else {
			d.oidx = -1
		}
		if ni, ok := findIndex(d.newNodes, pub); ok {
			d.newPresent = true
			d.nidx = ni
			d.canReceive = true
		} else {
			d.nidx = -1
		}
		if !d.oldPresent && !d.newPresent {
			return nil, errors.New("dkg: node present in neither the old nor the new node set")
		}
		if d.canReceive {
			pp, err := cfg.publicPoly()
			if err != nil {
				return nil, err
			}
			d.dpub = pp
		}
	}

	if d.canIssue {
		var secret group.Scalar
		if d.isResharing {
			secret = cfg.Share.Share.V
		} else {
			secret = suite.Scalar().Pick(suite.RandomStream())
		}
		dealer, err := vss.NewDealer(suite, cfg.LongTerm, secret, d.newNodes, d.newT)
		if err != nil {
			return nil, err
		}
		d.dealer = dealer
	}

	if d.canReceive {
		d.verifiers = make(map[uint32]*vss.Verifier, len(d.oldNodes))
		for i, dealerPub := range d.oldNodes {
			v, err := vss.NewVerifier(suite, cfg.LongTerm, dealerPub, d.newNodes)
			if err != nil {
				return nil, fmt.Errorf("dkg: building verifier for dealer %d: %w", i, err)
			}
			d.verifiers[uint32(i)] = v
		}
	}

	if d.canIssue && !d.canReceive {
		d.oldAggregators = make(map[uint32]*vss.Aggregator)
	}

	return d, nil
}

func (d *DistKeyGenerator) signPayload(payload []byte) ([]byte, error) {
	return schnorr.Sign(d.suite, d.long, payload)
}

// Deals produces the signed DistDeal destined for every new-node index,
// keyed by that index. When this is a fresh DKG, the dealer's own deal is
// processed locally and omitted from the map; when resharing, it is
// included so the rest of the old committee can observe its responses.
func (d *DistKeyGenerator) Deals() (map[uint32]*DistDeal, error) {
	if !d.canIssue {
		return nil, errors.New("dkg: this node is not a dealer in this round")
	}

	encDeals, err := d.dealer.EncryptedDeals()
	if err != nil {
		return nil, err
	}

	out := make(map[uint32]*DistDeal)
	for i := range d.newNodes {
		dd := &DistDeal{Index: uint32(d.oidx), Deal: encDeals[i]}
		payload, err := dd.signedPayload()
		if err != nil {
			return nil, err
		}
		sig, err := d.signPayload(payload)
		if err != nil {
			return nil, err
		}
		dd.Signature = sig

		if !d.isResharing && i == d.nidx {
			resp, err := d.ProcessDeal(dd)
			if err != nil {
				panic("dkg: cannot process own deal: " + err.Error())
			}
			if resp.Response.Status != vss.StatusApproval {
				panic("dkg: own deal produced a complaint")
			}
			continue
		}
		out[uint32(i)] = dd
	}
	return out, nil
}

// ProcessDeal verifies dd's top-level signature, forwards it to the
// corresponding verifier, and (when resharing) checks the dealer's
// commitment against the known old public polynomial.
func (d *DistKeyGenerator) ProcessDeal(dd *DistDeal) (*DistResponse, error) {
	if !d.canReceive {
		return nil, errors.New("dkg: this node is not in the new node set")
	}

	dealerSet := d.newNodes
	if d.isResharing {
		dealerSet = d.oldNodes
	}
	dealerPub, ok := findPub(dealerSet, dd.Index)
	if !ok {
		return nil, errors.New("dkg: dist deal has out-of-bounds dealer index")
	}

	payload, err := dd.signedPayload()
	if err != nil {
		return nil, err
	}
	if err := schnorr.Verify(d.suite, dealerPub, payload, dd.Signature); err != nil {
		return nil, fmt.Errorf("dkg: dist deal signature invalid: %w", err)
	}

	v, ok := d.verifiers[dd.Index]
	if !ok {
		return nil, errors.New("dkg: no verifier for this dealer index")
	}
	resp, err := v.ProcessEncryptedDeal(dd.Deal)
	if err != nil {
		return nil, err
	}

	if d.isResharing && resp.Status == vss.StatusApproval {
		commits := v.Commits()
		expected := d.dpub.Eval(int(dd.Index)).V
		if len(commits) == 0 || !expected.Equal(commits[0]) {
			resp = &vss.Response{
				SessionID:     resp.SessionID,
				Index:         resp.Index,
				Status:        vss.StatusComplaint,
				ComplaintCode: vss.ShareDoesNotVerify,
			}
			sig, err := schnorr.Sign(d.suite, d.long, resp.Hash(d.suite))
			if err != nil {
				return nil, err
			}
			resp.Signature = sig
		}
	}

	if !d.isResharing {
		if newIdx, ok := findIndex(d.newNodes, dealerPub); ok {
			d.verifiers[uint32(newIdx)].UnsafeSetResponseDKG(dd.Index, vss.StatusApproval)
		}
	}

	return &DistResponse{Index: dd.Index, Response: resp}, nil
}

// ProcessResponse routes a response either into the local bookkeeping
// aggregator an old-only dealer keeps per dealer index, or into the
// matching verifier, producing a DistJustification whenever the response
// is a complaint against this node's own deal.
func (d *DistKeyGenerator) ProcessResponse(dr *DistResponse) (*DistJustification, error) {
	if d.canIssue && !d.canReceive {
		agg, ok := d.oldAggregators[dr.Index]
		if !ok {
			agg = vss.NewEmptyAggregator(d.suite, d.newNodes)
			d.oldAggregators[dr.Index] = agg
		}
		if err := agg.ProcessResponse(dr.Response); err != nil {
			return nil, err
		}
		if dr.Index != uint32(d.oidx) || dr.Response.Status != vss.StatusComplaint {
			return nil, nil
		}
		j, err := d.dealer.ProcessResponse(dr.Response)
		if err != nil {
			return nil, err
		}
		if j == nil {
			return nil, nil
		}
		return &DistJustification{Index: uint32(d.oidx), Justification: j}, nil
	}

	v, ok := d.verifiers[dr.Index]
	if !ok {
		return nil, errors.New("dkg: response received for a dealer we have no deal from")
	}
	if err := v.ProcessResponse(dr.Response); err != nil {
		return nil, err
	}

	if !d.canIssue || dr.Index != uint32(d.oidx) {
		return nil, nil
	}

	j, err := d.dealer.ProcessResponse(dr.Response)
	if err != nil {
		return nil, err
	}
	if j == nil {
		return nil, nil
	}
	if err := v.ProcessJustification(j); err != nil {
		return nil, err
	}
	return &DistJustification{Index: uint32(d.oidx), Justification: j}, nil
}

// ProcessJustification forwards j to the verifier tracking its dealer.
func (d *DistKeyGenerator) ProcessJustification(j *DistJustification) error {
	v, ok := d.verifiers[j.Index]
	if !ok {
		return errors.New("dkg: justification received for a dealer we have no deal from")
	}
	return v.ProcessJustification(j.Justification)
}

// SetTimeout ends the round, forcing every held verifier (and this node's
// own dealer, if any) to treat every missing response as a complaint.
func (d *DistKeyGenerator) SetTimeout() {
	for _, v := range d.verifiers {
		v.SetTimeout()
	}
	if d.dealer != nil {
		d.dealer.SetTimeout()
	}
}

// QUAL returns the old-node indices whose deal is certified.
func (d *DistKeyGenerator) QUAL() []int {
	var good []int
	for i, v := range d.verifiers {
		if v.DealCertified() {
			good = append(good, int(i))
		}
	}
	return good
}

func (d *DistKeyGenerator) isInQUAL(idx uint32) bool {
	v, ok := d.verifiers[idx]
	return ok && v.DealCertified()
}

// ThresholdCertified reports whether QUAL has reached the threshold
// required to assemble a key: newT for a fresh round, oldT for resharing.
func (d *DistKeyGenerator) ThresholdCertified() bool {
	if d.isResharing {
		return len(d.QUAL()) >= d.oldT
	}
	return len(d.QUAL()) >= d.newT
}

// Certified reports whether the round succeeded: every dealer in QUAL
// certified cleanly, which DealCertified already requires to have
// accounted for every verifier.
func (d *DistKeyGenerator) Certified() bool {
	return d.ThresholdCertified()
}

// DistKeyShare assembles this node's final share and the group's public
// polynomial: dkgKey for a fresh round, resharingKey for a resharing.
func (d *DistKeyGenerator) DistKeyShare() (*DistKeyShare, error) {
	if !d.Certified() {
		return nil, fmt.Errorf("dkg: distributed key not certified: QUAL size %d below threshold", len(d.QUAL()))
	}
	if d.isResharing {
		return d.resharingKey()
	}
	return d.dkgKey()
}

func (d *DistKeyGenerator) dkgKey() (*DistKeyShare, error) {
	sh := d.suite.Scalar().Zero()
	var pub *share.PubPoly
	var err error

	for _, i := range d.QUAL() {
		deal := d.verifiers[uint32(i)].Deal()
		sh = sh.Add(sh, deal.SecShare.V)

		poly := share.NewPubPoly(d.suite, d.suite.Point().Base(), deal.Commitments)
		if pub == nil {
			pub = poly
			continue
		}
		pub, err = pub.Add(poly)
		if err != nil {
			return nil, err
		}
	}

	_, commits := pub.Info()
	return &DistKeyShare{
		Commits:     commits,
		Share:       &share.PriShare{I: d.nidx, V: sh},
		PrivatePoly: d.dealer.PrivatePoly().Coefficients(),
	}, nil
}

func (d *DistKeyGenerator) resharingKey() (*DistKeyShare, error) {
	qual := d.QUAL()

	scalarShares := make([]*share.PriShare, 0, len(qual))
	for _, i := range qual {
		deal := d.verifiers[uint32(i)].Deal()
		scalarShares = append(scalarShares, &share.PriShare{I: i, V: deal.SecShare.V})
	}
	newShare, err := share.RecoverSecret(d.suite, scalarShares, d.oldT)
	if err != nil {
		return nil, fmt.Errorf("dkg: recovering new share: %w", err)
	}

	commits := make([]group.Point, d.newT)
	for k := 0; k < d.newT; k++ {
		pubShares := make([]*share.PubShare, 0, len(qual))
		for _, i := range qual {
			deal := d.verifiers[uint32(i)].Deal()
			pubShares = append(pubShares, &share.PubShare{I: i, V: deal.Commitments[k]})
		}
		commit, err := share.RecoverCommit(d.suite, pubShares, d.oldT)
		if err != nil {
			return nil, fmt.Errorf("dkg: recovering public coefficient %d: %w", k, err)
		}
		commits[k] = commit
	}

	pub := share.NewPubPoly(d.suite, d.suite.Point().Base(), commits)
	if !pub.Check(&share.PriShare{I: d.nidx, V: newShare}) {
		return nil, errors.New("dkg: recovered private share does not lie on recovered public polynomial")
	}

	return &DistKeyShare{
		Commits: commits,
		Share:   &share.PriShare{I: d.nidx, V: newShare},
	}, nil
}

func findPub(list []group.Point, idx uint32) (group.Point, bool) {
	if idx >= uint32(len(list)) {
		return nil, false
	}
	return list[idx], true
}
