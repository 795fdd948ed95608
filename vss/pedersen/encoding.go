package vss

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/project-dkg/dkg-sub000/group"
	"github.com/project-dkg/dkg-sub000/share"
)

// Every int32 length/field prefix in this package's wire encodings is
// little-endian, matching the explicit requirement given for
// EncryptedDeal's length prefixes and for the uint32 threshold baked into
// the session ID; the rest of the fixed-width fields follow the same
// convention for consistency across the wire format.
var byteOrder = binary.LittleEndian

func putUint32(buf []byte, v uint32) {
	byteOrder.PutUint32(buf, v)
}

func getUint32(buf []byte) uint32 {
	return byteOrder.Uint32(buf)
}

// MarshalBinary encodes a Deal as:
// int32 |sid| || sid || (int32 i || Scalar v) || int32 T || int32 |commits| || Point commits[*].
func (d *Deal) MarshalBinary() ([]byte, error) {
	vBuf, err := d.SecShare.V.MarshalBinary()
	if err != nil {
		return nil, err
	}

	commitBufs := make([][]byte, len(d.Commitments))
	for i, c := range d.Commitments {
		buf, err := c.MarshalBinary()
		if err != nil {
			return nil, err
		}
		commitBufs[i] = buf
	}

	size := 4 + len(d.SessionID) + 4 + len(vBuf) + 4 + 4
	for _, c := range commitBufs {
		size += len(c)
	}
	out := make([]byte, 0, size)

	var hdr [4]byte
	putUint32(hdr[:], uint32(len(d.SessionID)))
	out = append(out, hdr[:]...)
	out = append(out, d.SessionID...)

	putUint32(hdr[:], uint32(d.SecShare.I))
	out = append(out, hdr[:]...)
	out = append(out, vBuf...)

	putUint32(hdr[:], d.T)
	out = append(out, hdr[:]...)

	putUint32(hdr[:], uint32(len(commitBufs)))
	out = append(out, hdr[:]...)
	for _, c := range commitBufs {
		out = append(out, c...)
	}
	return out, nil
}

// unmarshalDeal decodes a Deal encoded by MarshalBinary, given a suite to
// construct Scalars and Points of the right concrete type.
func unmarshalDeal(suite group.Suite, data []byte) (*Deal, error) {
	r := &reader{buf: data}

	sid, err := r.readBytes()
	if err != nil {
		return nil, fmt.Errorf("vss: decoding deal session id: %w", err)
	}

	idx, err := r.readUint32()
	if err != nil {
		return nil, fmt.Errorf("vss: decoding deal share index: %w", err)
	}
	vBuf, err := r.readFixed(suite.ScalarLen())
	if err != nil {
		return nil, fmt.Errorf("vss: decoding deal share value: %w", err)
	}
	v := suite.Scalar()
	if err := v.UnmarshalBinary(vBuf); err != nil {
		return nil, fmt.Errorf("vss: invalid deal share value: %w", err)
	}

	t, err := r.readUint32()
	if err != nil {
		return nil, fmt.Errorf("vss: decoding deal threshold: %w", err)
	}

	n, err := r.readUint32()
	if err != nil {
		return nil, fmt.Errorf("vss: decoding deal commitment count: %w", err)
	}
	commits := make([]group.Point, n)
	for i := range commits {
		pBuf, err := r.readFixed(suite.PointLen())
		if err != nil {
			return nil, fmt.Errorf("vss: decoding deal commitment %d: %w", i, err)
		}
		p := suite.Point()
		if err := p.UnmarshalBinary(pBuf); err != nil {
			return nil, fmt.Errorf("vss: invalid deal commitment %d: %w", i, err)
		}
		commits[i] = p
	}

	if !r.exhausted() {
		return nil, errors.New("vss: trailing bytes in deal encoding")
	}

	return &Deal{
		SessionID:   sid,
		SecShare:    &share.PriShare{I: int(idx), V: v},
		T:           t,
		Commitments: commits,
	}, nil
}

// MarshalBinary encodes an EncryptedDeal as five length-prefixed byte
// strings in order: DHKey, Signature, Nonce, Cipher, Tag.
func (e *EncryptedDeal) MarshalBinary() ([]byte, error) {
	fields := [][]byte{e.DHKey, e.Signature, e.Nonce, e.Cipher, e.Tag}
	size := 0
	for _, f := range fields {
		size += 4 + len(f)
	}
	out := make([]byte, 0, size)
	var hdr [4]byte
	for _, f := range fields {
		putUint32(hdr[:], uint32(len(f)))
		out = append(out, hdr[:]...)
		out = append(out, f...)
	}
	return out, nil
}

// UnmarshalBinary decodes an EncryptedDeal encoded by MarshalBinary.
func (e *EncryptedDeal) UnmarshalBinary(data []byte) error {
	r := &reader{buf: data}
	fields := make([][]byte, 5)
	for i := range fields {
		b, err := r.readBytes()
		if err != nil {
			return fmt.Errorf("vss: decoding encrypted deal field %d: %w", i, err)
		}
		fields[i] = b
	}
	if !r.exhausted() {
		return errors.New("vss: trailing bytes in encrypted deal encoding")
	}
	e.DHKey, e.Signature, e.Nonce, e.Cipher, e.Tag = fields[0], fields[1], fields[2], fields[3], fields[4]
	return nil
}

// MarshalBinary encodes a Response as: int32 |sid| || sid || int32 index ||
// int32 status || int32 complaintCode || int32 |sig| || sig.
func (r *Response) MarshalBinary() ([]byte, error) {
	status := uint32(0)
	if r.Status == StatusApproval {
		status = 1
	}
	size := 4 + len(r.SessionID) + 4 + 4 + 4 + 4 + len(r.Signature)
	out := make([]byte, 0, size)
	var hdr [4]byte

	putUint32(hdr[:], uint32(len(r.SessionID)))
	out = append(out, hdr[:]...)
	out = append(out, r.SessionID...)

	putUint32(hdr[:], r.Index)
	out = append(out, hdr[:]...)

	putUint32(hdr[:], status)
	out = append(out, hdr[:]...)

	putUint32(hdr[:], uint32(r.ComplaintCode))
	out = append(out, hdr[:]...)

	putUint32(hdr[:], uint32(len(r.Signature)))
	out = append(out, hdr[:]...)
	out = append(out, r.Signature...)

	return out, nil
}

// UnmarshalBinary decodes a Response encoded by MarshalBinary.
func (r *Response) UnmarshalBinary(data []byte) error {
	rd := &reader{buf: data}

	sid, err := rd.readBytes()
	if err != nil {
		return fmt.Errorf("vss: decoding response session id: %w", err)
	}
	idx, err := rd.readUint32()
	if err != nil {
		return fmt.Errorf("vss: decoding response index: %w", err)
	}
	status, err := rd.readUint32()
	if err != nil {
		return fmt.Errorf("vss: decoding response status: %w", err)
	}
	code, err := rd.readUint32()
	if err != nil {
		return fmt.Errorf("vss: decoding response complaint code: %w", err)
	}
	sig, err := rd.readBytes()
	if err != nil {
		return fmt.Errorf("vss: decoding response signature: %w", err)
	}
	if !rd.exhausted() {
		return errors.New("vss: trailing bytes in response encoding")
	}

	r.SessionID = sid
	r.Index = idx
	r.Status = status != 0
	r.ComplaintCode = ComplaintCode(code)
	r.Signature = sig
	return nil
}

// MarshalBinary encodes a Justification as: int32 |sid| || sid || int32
// index || int32 |deal| || deal || int32 |sig| || sig.
func (j *Justification) MarshalBinary() ([]byte, error) {
	dealBuf, err := j.Deal.MarshalBinary()
	if err != nil {
		return nil, err
	}

	size := 4 + len(j.SessionID) + 4 + 4 + len(dealBuf) + 4 + len(j.Signature)
	out := make([]byte, 0, size)
	var hdr [4]byte

	putUint32(hdr[:], uint32(len(j.SessionID)))
	out = append(out, hdr[:]...)
	out = append(out, j.SessionID...)

	putUint32(hdr[:], j.Index)
	out = append(out, hdr[:]...)

	putUint32(hdr[:], uint32(len(dealBuf)))
	out = append(out, hdr[:]...)
	out = append(out, dealBuf...)

	putUint32(hdr[:], uint32(len(j.Signature)))
	out = append(out, hdr[:]...)
	out = append(out, j.Signature...)

	return out, nil
}

// unmarshalJustification decodes a Justification encoded by MarshalBinary,
// given a suite to construct the embedded Deal's Scalars and Points.
func unmarshalJustification(suite group.Suite, data []byte) (*Justification, error) {
	r := &reader{buf: data}

	sid, err := r.readBytes()
	if err != nil {
		return nil, fmt.Errorf("vss: decoding justification session id: %w", err)
	}
	idx, err := r.readUint32()
	if err != nil {
		return nil, fmt.Errorf("vss: decoding justification index: %w", err)
	}
	dealBuf, err := r.readBytes()
	if err != nil {
		return nil, fmt.Errorf("vss: decoding justification deal: %w", err)
	}
	deal, err := unmarshalDeal(suite, dealBuf)
	if err != nil {
		return nil, fmt.Errorf("vss: decoding justification deal: %w", err)
	}
	sig, err := r.readBytes()
	if err != nil {
		return nil, fmt.Errorf("vss: decoding justification signature: %w", err)
	}
	if !r.exhausted() {
		return nil, errors.New("vss: trailing bytes in justification encoding")
	}

	return &Justification{
		SessionID: sid,
		Index:     idx,
		Deal:      deal,
		Signature: sig,
	}, nil
}

// reader is a small cursor over a byte slice used by this package's
// canonical decoders; every read fails closed on a short buffer instead of
// panicking on an attacker-supplied length prefix.
type reader struct {
	buf []byte
	pos int
}

func (r *reader) exhausted() bool { return r.pos == len(r.buf) }

func (r *reader) readFixed(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.buf) {
		return nil, errors.New("vss: buffer too short")
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *reader) readUint32() (uint32, error) {
	b, err := r.readFixed(4)
	if err != nil {
		return 0, err
	}
	return getUint32(b), nil
}

func (r *reader) readBytes() ([]byte, error) {
	n, err := r.readUint32()
	if err != nil {
		return nil, err
	}
	return r.readFixed(int(n))
}
