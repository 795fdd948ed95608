package dkg

import (
	"github.com/project-dkg/dkg-sub000/group"
	"github.com/project-dkg/dkg-sub000/share"
	vss "github.com/project-dkg/dkg-sub000/vss/pedersen"
)

// DistKeyShare is one participant's share of the group's distributed
// private key, plus the public commitments needed to verify it and to
// recombine or reshare it later.
type DistKeyShare struct {
	// Commits are the coefficient commitments of the group's public
	// polynomial; Commits[0] is the group public key.
	Commits []group.Point
	// Share is this participant's share of the group secret.
	Share *share.PriShare
	// PrivatePoly holds the coefficients of the private polynomial this
	// participant dealt in a fresh round; a resharing round leaves it nil,
	// and a resharing Config reads only Share and Commits.
	PrivatePoly []group.Scalar
}

// Public returns the group's public key, the commitment to the constant
// term of the group's public polynomial.
func (d *DistKeyShare) Public() group.Point {
	return d.Commits[0]
}

// PriShare returns this participant's private share.
func (d *DistKeyShare) PriShare() *share.PriShare {
	return d.Share
}

// DistDeal wraps one dealer's encrypted VSS deal for broadcast, signed by
// the dealer's long-term key over the index and the encrypted deal's
// canonical encoding.
type DistDeal struct {
	Index     uint32
	Deal      *vss.EncryptedDeal
	Signature []byte
}

// DistResponse wraps a verifier's VSS response for broadcast, tagging it
// with the dealer index it answers.
type DistResponse struct {
	Index    uint32
	Response *vss.Response
}

// DistJustification wraps a dealer's VSS justification for broadcast,
// tagging it with the dealer's own index.
type DistJustification struct {
	Index         uint32
	Justification *vss.Justification
}
