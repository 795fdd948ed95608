package dkg

import (
	"errors"

	"github.com/project-dkg/dkg-sub000/group"
	"github.com/project-dkg/dkg-sub000/share"
)

// Config describes one node's participation in a DKG round, either a fresh
// distributed key generation or a resharing of an existing one onto a
// (possibly different) committee and threshold.
//
// Fresh mode: set LongTerm, NewNodes, and optionally Threshold (it defaults
// to the smallest secure value). OldNodes/OldThreshold/Share/PublicCoeffs
// are left zero.
//
// Resharing mode: set LongTerm, OldNodes, NewNodes, OldThreshold, and
// Threshold. A node present in OldNodes must also set Share (its existing
// DistKeyShare) so it can issue a deal for the new secret. A node present
// in NewNodes but not OldNodes must set PublicCoeffs (the old group's
// public polynomial) instead, since it holds no prior share to derive it
// from.
type Config struct {
	Suite    group.Suite
	LongTerm group.Scalar

	OldNodes []group.Point
	NewNodes []group.Point

	OldThreshold int
	Threshold    int

	Share        *DistKeyShare
	PublicCoeffs []group.Point
}

func (c *Config) isResharing() bool {
	return c.OldThreshold > 0 || len(c.OldNodes) > 0
}

func findIndex(list []group.Point, pub group.Point) (int, bool) {
	for i, p := range list {
		if p.Equal(pub) {
			return i, true
		}
	}
	return -1, false
}

func hasDuplicates(list []group.Point) bool {
	for i := range list {
		for j := i + 1; j < len(list); j++ {
			if list[i].Equal(list[j]) {
				return true
			}
		}
	}
	return false
}

func defaultThreshold(n int) int {
	t := (n + 1) / 2
	if t < 2 {
		t = 2
	}
	return t
}

func (c *Config) validate() error {
	if hasDuplicates(c.NewNodes) {
		return errors.New("dkg: duplicate public key in new node set")
	}
	if c.isResharing() {
		if c.OldThreshold <= 0 {
			return errors.New("dkg: resharing requires a positive old threshold")
		}
		if len(c.OldNodes) == 0 {
			return errors.New("dkg: resharing requires a non-empty old node set")
		}
		if hasDuplicates(c.OldNodes) {
			return errors.New("dkg: duplicate public key in old node set")
		}
	}
	return nil
}

// publicPoly returns the old group's public polynomial, from PublicCoeffs
// if set directly, or derived from Share's commitments otherwise.
func (c *Config) publicPoly() (*share.PubPoly, error) {
	if c.PublicCoeffs != nil {
		return share.NewPubPoly(c.Suite, c.Suite.Point().Base(), c.PublicCoeffs), nil
	}
	if c.Share != nil {
		return share.NewPubPoly(c.Suite, c.Suite.Point().Base(), c.Share.Commits), nil
	}
	return nil, errors.New("dkg: resharing node in the new set needs PublicCoeffs or Share")
}
