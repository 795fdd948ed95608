package elgamal_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	dkg "github.com/project-dkg/dkg-sub000/dkg/pedersen"
	"github.com/project-dkg/dkg-sub000/encrypt/elgamal"
	"github.com/project-dkg/dkg-sub000/group"
	"github.com/project-dkg/dkg-sub000/group/secp256k1"
	"github.com/project-dkg/dkg-sub000/share"
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

func TestEncryptDecryptRoundTrip(t *testing.T) {
	suite := secp256k1.NewSuite()
	priv := suite.Scalar().Pick(suite.RandomStream())
	pub := suite.Point().Mul(priv, nil)

	msg := []byte("hello world")
	C1, C2, err := elgamal.Encrypt(suite, pub, msg)
	require.NoError(t, err)

	got, err := elgamal.Decrypt(suite, priv, C1, C2)
	require.NoError(t, err)
	require.Equal(t, msg, got)
}

// TestThresholdDecryption drives a real fresh DKG round to completion and
// exercises threshold ElGamal against the resulting DistKeyShares, matching
// spec.md §8 scenario 2 ("given the DKG above, encrypt...").
func TestThresholdDecryption(t *testing.T) {
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

	allDeals := make([]map[uint32]*dkg.DistDeal, n)
	for i, g := range gens {
		dd, err := g.Deals()
		require.NoError(t, err)
		allDeals[i] = dd
	}
	var allResponses []*dkg.DistResponse
	for _, dd := range allDeals {
		for destIdx, deal := range dd {
			resp, err := gens[destIdx].ProcessDeal(deal)
			require.NoError(t, err)
			allResponses = append(allResponses, resp)
		}
	}
	for _, resp := range allResponses {
		for _, g := range gens {
			_, err := g.ProcessResponse(resp)
			require.NoError(t, err)
		}
	}

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

func TestThresholdDecryptionTooFewShares(t *testing.T) {
	suite := secp256k1.NewSuite()
	const n, thresh = 7, 4

	secret := suite.Scalar().Pick(suite.RandomStream())
	groupPub := suite.Point().Mul(secret, nil)
	priPoly := share.NewPriPoly(suite, thresh, secret, suite.RandomStream())
	shares := priPoly.Shares(n)

	_, C2, err := elgamal.Encrypt(suite, groupPub, []byte("short"))
	require.NoError(t, err)

	C1 := suite.Point().Mul(suite.Scalar().One(), nil)
	var partials []*share.PubShare
	for _, s := range shares[:thresh-1] {
		partials = append(partials, elgamal.DecryptShare(suite, s, C1))
	}

	_, err = elgamal.RecoverMessage(suite, C2, partials, thresh)
	require.Error(t, err)
}
