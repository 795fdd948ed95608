package dkg_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	dkg "github.com/project-dkg/dkg-sub000/dkg/pedersen"
	"github.com/project-dkg/dkg-sub000/encrypt/elgamal"
	"github.com/project-dkg/dkg-sub000/group"
	"github.com/project-dkg/dkg-sub000/group/secp256k1"
	"github.com/project-dkg/dkg-sub000/share"
	"github.com/project-dkg/dkg-sub000/sign/schnorr"
	vss "github.com/project-dkg/dkg-sub000/vss/pedersen"
)

func genNodes(suite group.Suite, n int) ([]group.Scalar, []group.Point) {
	sec := make([]group.Scalar, n)
	pub := make([]group.Point, n)
	for i := 0; i < n; i++ {
		sec[i] = suite.Scalar().Pick(suite.RandomStream())
		pub[i] = suite.Point().Mul(sec[i], nil)
	}
	return sec, pub
}

// runFreshRound drives every DKG to Deals/ProcessDeal/ProcessResponse
// completion with no misbehavior, returning the generators ready for
// DistKeyShare.
func runFreshRound(t *testing.T, gens []*dkg.DistKeyGenerator) {
	t.Helper()
	n := len(gens)

	allDeals := make([]map[uint32]*dkg.DistDeal, n)
	for i, g := range gens {
		dd, err := g.Deals()
		require.NoError(t, err)
		allDeals[i] = dd
	}

	var allResponses []*dkg.DistResponse
	for i, dd := range allDeals {
		for destIdx, deal := range dd {
			resp, err := gens[destIdx].ProcessDeal(deal)
			require.NoError(t, err, "dealer %d -> node %d", i, destIdx)
			allResponses = append(allResponses, resp)
		}
	}

	for _, resp := range allResponses {
		for _, g := range gens {
			_, err := g.ProcessResponse(resp)
			require.NoError(t, err)
		}
	}
}

// Scenario 1: a 7-of-7 fresh round where every node behaves honestly.
func TestFreshDKGAllHonest(t *testing.T) {
	suite := secp256k1.NewSuite()
	const n = 7
	secs, pubs := genNodes(suite, n)

	gens := make([]*dkg.DistKeyGenerator, n)
	for i := 0; i < n; i++ {
		g, err := dkg.NewDistKeyGenerator(&dkg.Config{
			Suite:     suite,
			LongTerm:  secs[i],
			NewNodes:  pubs,
			Threshold: n,
		})
		require.NoError(t, err)
		gens[i] = g
	}

	runFreshRound(t, gens)

	var shares []*dkg.DistKeyShare
	for _, g := range gens {
		require.True(t, g.Certified())
		require.Equal(t, n, len(g.QUAL()))
		sh, err := g.DistKeyShare()
		require.NoError(t, err)
		shares = append(shares, sh)
	}

	groupKey := shares[0].Public()
	for _, sh := range shares[1:] {
		require.True(t, groupKey.Equal(sh.Public()))
	}
}

// Scenario 2: given the fresh round above, encrypt a message under the
// recovered group public key with ElGamal and recover it from t partial
// decryptions contributed by the DistKeyShare holders.
func TestThresholdEncryptionRoundTrip(t *testing.T) {
	suite := secp256k1.NewSuite()
	const n, thresh = 7, 4
	secs, pubs := genNodes(suite, n)

	gens := make([]*dkg.DistKeyGenerator, n)
	for i := 0; i < n; i++ {
		g, err := dkg.NewDistKeyGenerator(&dkg.Config{
			Suite: suite, LongTerm: secs[i], NewNodes: pubs, Threshold: thresh,
		})
		require.NoError(t, err)
		gens[i] = g
	}
	runFreshRound(t, gens)

	shares := make([]*dkg.DistKeyShare, n)
	for i, g := range gens {
		sh, err := g.DistKeyShare()
		require.NoError(t, err)
		shares[i] = sh
	}
	groupPub := shares[0].Public()

	msg := []byte("Hello world")
	C1, C2, err := elgamal.Encrypt(suite, groupPub, msg)
	require.NoError(t, err)

	var partials []*share.PubShare
	for _, sh := range shares[:thresh] {
		partials = append(partials, elgamal.DecryptShare(suite, sh.PriShare(), C1))
	}

	got, err := elgamal.RecoverMessage(suite, C2, partials, thresh)
	require.NoError(t, err)
	require.Equal(t, msg, got)
}

// Scenario 3: verifier 2 crashes and never broadcasts a response to any
// dealer. After SetTimeout every dealer is still certified, since one
// absence leaves approvals (6) at or above the threshold (4).
func TestSingleMisbehavingVerifier(t *testing.T) {
	suite := secp256k1.NewSuite()
	const n = 7
	const thresh = 4
	const silent = 2
	secs, pubs := genNodes(suite, n)

	gens := make([]*dkg.DistKeyGenerator, n)
	for i := 0; i < n; i++ {
		g, err := dkg.NewDistKeyGenerator(&dkg.Config{
			Suite: suite, LongTerm: secs[i], NewNodes: pubs, Threshold: thresh,
		})
		require.NoError(t, err)
		gens[i] = g
	}

	allDeals := make([]map[uint32]*dkg.DistDeal, n)
	for i, g := range gens {
		dd, err := g.Deals()
		require.NoError(t, err)
		allDeals[i] = dd
	}

	var allResponses []*dkg.DistResponse
	for i, dd := range allDeals {
		for destIdx, deal := range dd {
			resp, err := gens[destIdx].ProcessDeal(deal)
			require.NoError(t, err, "dealer %d -> node %d", i, destIdx)
			if destIdx == silent {
				// Verifier 2 computes its response locally but the
				// message never reaches the wire.
				continue
			}
			allResponses = append(allResponses, resp)
		}
	}

	for _, resp := range allResponses {
		for _, g := range gens {
			_, err := g.ProcessResponse(resp)
			require.NoError(t, err)
		}
	}

	for _, g := range gens {
		g.SetTimeout()
	}

	for i, g := range gens {
		if i == silent {
			continue
		}
		require.True(t, g.Certified(), "node %d", i)
		require.Len(t, g.QUAL(), n)
	}
}

// Scenario 4: verifiers 2 and 5 both crash, but the threshold is raised to
// 6. The two absences drop the approval count of every other dealer to 5,
// below the threshold. Dealers 2 and 5 keep 6 approvals, since each one's
// own approval is recorded locally, so QUAL is {2, 5}, ThresholdCertified
// is false, and the round aborts without a key.
func TestTwoMisbehavingVerifiers(t *testing.T) {
	suite := secp256k1.NewSuite()
	const n = 7
	const thresh = 6
	silent := map[uint32]bool{2: true, 5: true}
	secs, pubs := genNodes(suite, n)

	gens := make([]*dkg.DistKeyGenerator, n)
	for i := 0; i < n; i++ {
		g, err := dkg.NewDistKeyGenerator(&dkg.Config{
			Suite: suite, LongTerm: secs[i], NewNodes: pubs, Threshold: thresh,
		})
		require.NoError(t, err)
		gens[i] = g
	}

	allDeals := make([]map[uint32]*dkg.DistDeal, n)
	for i, g := range gens {
		dd, err := g.Deals()
		require.NoError(t, err)
		allDeals[i] = dd
	}

	var allResponses []*dkg.DistResponse
	for i, dd := range allDeals {
		for destIdx, deal := range dd {
			resp, err := gens[destIdx].ProcessDeal(deal)
			require.NoError(t, err, "dealer %d -> node %d", i, destIdx)
			if silent[destIdx] {
				continue
			}
			allResponses = append(allResponses, resp)
		}
	}

	for _, resp := range allResponses {
		for _, g := range gens {
			_, err := g.ProcessResponse(resp)
			require.NoError(t, err)
		}
	}

	for _, g := range gens {
		g.SetTimeout()
	}

	bystander := gens[1]
	require.ElementsMatch(t, []int{2, 5}, bystander.QUAL())
	require.False(t, bystander.ThresholdCertified())
	require.False(t, bystander.Certified())
	_, err := bystander.DistKeyShare()
	require.Error(t, err)
}

// Scenario 5a: resharing onto the same committee and threshold preserves
// the group key while changing every node's share.
func TestResharingSameCommittee(t *testing.T) {
	suite := secp256k1.NewSuite()
	const n = 5
	const t1 = 3
	secs, pubs := genNodes(suite, n)

	gens := make([]*dkg.DistKeyGenerator, n)
	for i := 0; i < n; i++ {
		g, err := dkg.NewDistKeyGenerator(&dkg.Config{
			Suite:     suite,
			LongTerm:  secs[i],
			NewNodes:  pubs,
			Threshold: t1,
		})
		require.NoError(t, err)
		gens[i] = g
	}
	runFreshRound(t, gens)

	shares := make([]*dkg.DistKeyShare, n)
	for i, g := range gens {
		sh, err := g.DistKeyShare()
		require.NoError(t, err)
		shares[i] = sh
	}
	groupKey := shares[0].Public()

	reshareGens := make([]*dkg.DistKeyGenerator, n)
	for i := 0; i < n; i++ {
		g, err := dkg.NewDistKeyGenerator(&dkg.Config{
			Suite:        suite,
			LongTerm:     secs[i],
			OldNodes:     pubs,
			NewNodes:     pubs,
			OldThreshold: t1,
			Threshold:    t1,
			Share:        shares[i],
		})
		require.NoError(t, err)
		reshareGens[i] = g
	}
	runFreshRound(t, reshareGens)

	for _, g := range reshareGens {
		require.True(t, g.Certified())
	}

	reshared := make([]*dkg.DistKeyShare, n)
	for i, g := range reshareGens {
		sh, err := g.DistKeyShare()
		require.NoError(t, err)
		reshared[i] = sh
	}
	require.True(t, groupKey.Equal(reshared[0].Public()))
	for _, sh := range reshared[1:] {
		require.True(t, reshared[0].Public().Equal(sh.Public()))
	}

	for _, sh := range shares {
		for _, reSh := range reshared {
			require.False(t, sh.Share.V.Equal(reSh.Share.V) && sh.Share.I == reSh.Share.I)
		}
	}
}

// Scenario 5b: resharing onto a genuinely different committee. Nodes 0,1,2
// of the original 5-node group continue; nodes 3,4 leave; two brand new
// nodes join. The old threshold was 3, the new one is 4. The group public
// key is preserved, and any newT shares recover it.
func TestResharingToDifferentCommittee(t *testing.T) {
	suite := secp256k1.NewSuite()
	const oldN, oldT = 5, 3
	oldSecs, oldPubs := genNodes(suite, oldN)

	oldGens := make([]*dkg.DistKeyGenerator, oldN)
	for i := 0; i < oldN; i++ {
		g, err := dkg.NewDistKeyGenerator(&dkg.Config{
			Suite: suite, LongTerm: oldSecs[i], NewNodes: oldPubs, Threshold: oldT,
		})
		require.NoError(t, err)
		oldGens[i] = g
	}
	runFreshRound(t, oldGens)

	oldShares := make([]*dkg.DistKeyShare, oldN)
	for i, g := range oldGens {
		sh, err := g.DistKeyShare()
		require.NoError(t, err)
		oldShares[i] = sh
	}
	groupKey := oldShares[0].Public()
	oldCommits := oldShares[0].Commits

	// The new committee keeps nodes 0,1,2 and replaces nodes 3,4 with two
	// freshly generated members.
	newSecs, newJoiners := genNodes(suite, 2)
	newPubs := append(append([]group.Point{}, oldPubs[:3]...), newJoiners...)
	const newT = 4

	continuing := make([]*dkg.DistKeyGenerator, 3)
	for i := 0; i < 3; i++ {
		g, err := dkg.NewDistKeyGenerator(&dkg.Config{
			Suite: suite, LongTerm: oldSecs[i],
			OldNodes: oldPubs, NewNodes: newPubs,
			OldThreshold: oldT, Threshold: newT,
			Share: oldShares[i],
		})
		require.NoError(t, err)
		continuing[i] = g
	}
	leaving := make([]*dkg.DistKeyGenerator, 2)
	for i := 0; i < 2; i++ {
		g, err := dkg.NewDistKeyGenerator(&dkg.Config{
			Suite: suite, LongTerm: oldSecs[3+i],
			OldNodes: oldPubs, NewNodes: newPubs,
			OldThreshold: oldT, Threshold: newT,
			Share: oldShares[3+i],
		})
		require.NoError(t, err)
		leaving[i] = g
	}
	joining := make([]*dkg.DistKeyGenerator, 2)
	for i := 0; i < 2; i++ {
		g, err := dkg.NewDistKeyGenerator(&dkg.Config{
			Suite: suite, LongTerm: newSecs[i],
			OldNodes: oldPubs, NewNodes: newPubs,
			OldThreshold: oldT, Threshold: newT,
			PublicCoeffs: oldCommits,
		})
		require.NoError(t, err)
		joining[i] = g
	}

	dealers := append(append([]*dkg.DistKeyGenerator{}, continuing...), leaving...)
	verifiers := append(append([]*dkg.DistKeyGenerator{}, continuing...), joining...)
	all := append(append([]*dkg.DistKeyGenerator{}, dealers...), joining...)

	var allResponses []*dkg.DistResponse
	for _, gd := range dealers {
		deals, err := gd.Deals()
		require.NoError(t, err)
		for destIdx, dd := range deals {
			resp, err := verifiers[int(destIdx)].ProcessDeal(dd)
			require.NoError(t, err)
			allResponses = append(allResponses, resp)
		}
	}
	for _, resp := range allResponses {
		for _, g := range all {
			_, err := g.ProcessResponse(resp)
			require.NoError(t, err)
		}
	}

	for _, g := range verifiers {
		require.True(t, g.Certified())
	}

	newShares := make([]*dkg.DistKeyShare, len(verifiers))
	for i, g := range verifiers {
		sh, err := g.DistKeyShare()
		require.NoError(t, err)
		newShares[i] = sh
	}
	for _, sh := range newShares {
		require.True(t, groupKey.Equal(sh.Public()))
	}

	var newPriShares []*share.PriShare
	for _, sh := range newShares {
		newPriShares = append(newPriShares, sh.PriShare())
	}
	recovered, err := share.RecoverSecret(suite, newPriShares, newT)
	require.NoError(t, err)
	require.True(t, suite.Point().Mul(recovered, nil).Equal(groupKey))
}

// Scenario 6: dealer 0 deals a bad share to verifier 3. Verifier 3 raises a
// ShareDoesNotVerify complaint, and dealer 0's justification answer is
// itself malformed (it carries a self-consistent but mismatched share),
// permanently marking the dealer bad from every other verifier's
// perspective. Dealer 0 is excluded from QUAL, but the remaining 6 dealers
// certify normally and the round still succeeds since 6 >= T (4).
func TestByzantineDealerInvalidShare(t *testing.T) {
	suite := secp256k1.NewSuite()
	const n = 7
	const thresh = 4
	secs, pubs := genNodes(suite, n)

	gens := make([]*dkg.DistKeyGenerator, n)
	for i := 0; i < n; i++ {
		g, err := dkg.NewDistKeyGenerator(&dkg.Config{
			Suite: suite, LongTerm: secs[i], NewNodes: pubs, Threshold: thresh,
		})
		require.NoError(t, err)
		gens[i] = g
	}

	allDeals := make([]map[uint32]*dkg.DistDeal, n)
	for i, g := range gens {
		dd, err := g.Deals()
		require.NoError(t, err)
		allDeals[i] = dd
	}

	var genuineResp3FromDealer0 *dkg.DistResponse
	var allResponses []*dkg.DistResponse
	for i, dd := range allDeals {
		for destIdx, deal := range dd {
			resp, err := gens[destIdx].ProcessDeal(deal)
			require.NoError(t, err, "dealer %d -> node %d", i, destIdx)
			if i == 0 && destIdx == 3 {
				genuineResp3FromDealer0 = resp
				continue
			}
			allResponses = append(allResponses, resp)
		}
	}
	require.NotNil(t, genuineResp3FromDealer0)

	for _, resp := range allResponses {
		for _, g := range gens {
			_, err := g.ProcessResponse(resp)
			require.NoError(t, err)
		}
	}

	// Forge the complaint verifier 3 would raise against a genuinely bad
	// share from dealer 0, and the (also bad) justification dealer 0 sends
	// in reply: a self-consistent polynomial whose commitments do not
	// match the share it carries.
	complaint := &vss.Response{
		SessionID:     genuineResp3FromDealer0.Response.SessionID,
		Index:         3,
		Status:        vss.StatusComplaint,
		ComplaintCode: vss.ShareDoesNotVerify,
	}
	complaintSig, err := schnorr.Sign(suite, secs[3], complaint.Hash(suite))
	require.NoError(t, err)
	complaint.Signature = complaintSig
	forgedComplaint := &dkg.DistResponse{Index: 0, Response: complaint}

	badPoly := share.NewPriPoly(suite, thresh, nil, suite.RandomStream())
	_, badCommits := badPoly.Commit(nil).Info()
	badShare := badPoly.Eval(3)
	badShare.V = suite.Scalar().Add(badShare.V, suite.Scalar().One())

	badDeal := &vss.Deal{
		SessionID:   complaint.SessionID,
		SecShare:    badShare,
		T:           uint32(thresh),
		Commitments: badCommits,
	}
	justification := &vss.Justification{SessionID: complaint.SessionID, Index: 3, Deal: badDeal}
	jHash, err := justification.Hash(suite)
	require.NoError(t, err)
	jSig, err := schnorr.Sign(suite, secs[0], jHash)
	require.NoError(t, err)
	justification.Signature = jSig
	forgedJustification := &dkg.DistJustification{Index: 0, Justification: justification}

	bystanders := []int{1, 2, 4, 5, 6}
	for _, i := range bystanders {
		_, err := gens[i].ProcessResponse(forgedComplaint)
		require.NoError(t, err)
	}
	for _, i := range bystanders {
		err := gens[i].ProcessJustification(forgedJustification)
		require.Error(t, err)
	}

	observer := gens[1]
	require.True(t, observer.Certified())
	qual := observer.QUAL()
	require.Len(t, qual, n-1)
	require.NotContains(t, qual, 0)

	sh, err := observer.DistKeyShare()
	require.NoError(t, err)
	require.NotNil(t, sh)
}
