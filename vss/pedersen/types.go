// Package vss implements Pedersen's verifiable secret sharing scheme:
// "Non-Interactive and Information-Theoretic Secure Verifiable Secret
// Sharing", Torben Pryds Pedersen, CRYPTO '91. It is generalized from the
// teacher corpus's own share/vss/pedersen package (github.com/drand/kyber)
// to the group.Suite capability set and to the bit-exact canonical wire
// encodings required of this repository (see encoding.go).
package vss

import (
	"encoding/binary"

	"github.com/project-dkg/dkg-sub000/group"
	"github.com/project-dkg/dkg-sub000/share"
)

// Status values for a Response.
const (
	StatusComplaint = false
	StatusApproval  = true
)

// Deal is the verifiable secret share sent by a Dealer to one Verifier.
type Deal struct {
	SessionID   []byte
	SecShare    *share.PriShare
	T           uint32
	Commitments []group.Point
}

// EncryptedDeal is the encrypted, authenticated form of a Deal in transit:
// an ephemeral DH public key signed by the dealer's long-term key, and the
// Deal's serialization sealed under a key derived from the DH exchange.
type EncryptedDeal struct {
	DHKey     []byte
	Signature []byte
	Nonce     []byte
	Cipher    []byte
	Tag       []byte
}

// Response is broadcast by a Verifier to every participant, including the
// dealer, recording its approval or complaint about one Deal.
type Response struct {
	SessionID     []byte
	Index         uint32
	Status        bool
	ComplaintCode ComplaintCode
	Signature     []byte
}

// Justification is broadcast by a Dealer in answer to a Complaint: the
// plaintext Deal that was in dispute, so every other participant can
// recompute the aggregator's verdict for themselves.
type Justification struct {
	SessionID []byte
	Index     uint32
	Deal      *Deal
	Signature []byte
}

// Hash returns the byte string signed over for a Response: "response" ||
// sid || index || bool(status==Approval), hashed with the suite's hash.
func (r *Response) Hash(suite group.Suite) []byte {
	h := suite.Hash()
	h.Write([]byte("response"))
	h.Write(r.SessionID)
	var idxBuf [4]byte
	binary.LittleEndian.PutUint32(idxBuf[:], r.Index)
	h.Write(idxBuf[:])
	if r.Status == StatusApproval {
		h.Write([]byte{1})
	} else {
		h.Write([]byte{0})
	}
	return h.Sum(nil)
}

// Hash returns the byte string signed over for a Justification:
// "justification" || sid || index || canonical(deal).
func (j *Justification) Hash(suite group.Suite) ([]byte, error) {
	h := suite.Hash()
	h.Write([]byte("justification"))
	h.Write(j.SessionID)
	var idxBuf [4]byte
	binary.LittleEndian.PutUint32(idxBuf[:], j.Index)
	h.Write(idxBuf[:])
	buf, err := j.Deal.MarshalBinary()
	if err != nil {
		return nil, err
	}
	h.Write(buf)
	return h.Sum(nil), nil
}

// sessionID computes SHA-256(dealerPub || verifiers[*] || commitments[*] ||
// uint32_LE(t)), the binding hash of a VSS round's public parameters.
func sessionID(suite group.Suite, dealerPub group.Point, verifiers, commitments []group.Point, t int) ([]byte, error) {
	h := suite.Hash()
	buf, err := dealerPub.MarshalBinary()
	if err != nil {
		return nil, err
	}
	h.Write(buf)
	for _, v := range verifiers {
		buf, err = v.MarshalBinary()
		if err != nil {
			return nil, err
		}
		h.Write(buf)
	}
	for _, c := range commitments {
		buf, err = c.MarshalBinary()
		if err != nil {
			return nil, err
		}
		h.Write(buf)
	}
	var tBuf [4]byte
	binary.LittleEndian.PutUint32(tBuf[:], uint32(t))
	h.Write(tBuf[:])
	return h.Sum(nil), nil
}

// hkdfContext computes SHA-256("dkg-dealer" || dealerPub || "dkg-verifiers"
// || verifiers[*]), the binding context string fed into the HKDF step of
// the DH envelope so a decrypted deal can never be replayed across a
// different dealer/verifier-set pairing.
func hkdfContext(suite group.Suite, dealerPub group.Point, verifiers []group.Point) ([]byte, error) {
	h := suite.Hash()
	h.Write([]byte("dkg-dealer"))
	buf, err := dealerPub.MarshalBinary()
	if err != nil {
		return nil, err
	}
	h.Write(buf)
	h.Write([]byte("dkg-verifiers"))
	for _, v := range verifiers {
		buf, err = v.MarshalBinary()
		if err != nil {
			return nil, err
		}
		h.Write(buf)
	}
	return h.Sum(nil), nil
}

func validT(t int, verifiers []group.Point) bool {
	return t >= 2 && t <= len(verifiers)
}

func findPub(verifiers []group.Point, idx uint32) (group.Point, bool) {
	if idx >= uint32(len(verifiers)) {
		return nil, false
	}
	return verifiers[idx], true
}
