package dkg

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/project-dkg/dkg-sub000/group"
	vss "github.com/project-dkg/dkg-sub000/vss/pedersen"
)

var byteOrder = binary.LittleEndian

// signedPayload returns the bytes a DistDeal's top-level signature covers:
// int32 index || EncryptedDeal, i.e. everything but the signature itself.
func (d *DistDeal) signedPayload() ([]byte, error) {
	dealBuf, err := d.Deal.MarshalBinary()
	if err != nil {
		return nil, err
	}
	out := make([]byte, 4, 4+len(dealBuf))
	byteOrder.PutUint32(out, d.Index)
	return append(out, dealBuf...), nil
}

// MarshalBinary encodes a DistDeal as: int32 index || EncryptedDeal ||
// int32 |sig| || sig.
func (d *DistDeal) MarshalBinary() ([]byte, error) {
	payload, err := d.signedPayload()
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(payload)+4+len(d.Signature))
	out = append(out, payload...)
	var hdr [4]byte
	byteOrder.PutUint32(hdr[:], uint32(len(d.Signature)))
	out = append(out, hdr[:]...)
	out = append(out, d.Signature...)
	return out, nil
}

// UnmarshalDistDeal decodes a DistDeal encoded by MarshalBinary.
func UnmarshalDistDeal(suite group.Suite, data []byte) (*DistDeal, error) {
	if len(data) < 4 {
		return nil, errors.New("dkg: dist deal buffer too short")
	}
	index := byteOrder.Uint32(data[:4])
	rest := data[4:]

	e := &vss.EncryptedDeal{}
	consumed, err := decodeEncryptedDealPrefix(e, rest)
	if err != nil {
		return nil, fmt.Errorf("dkg: decoding dist deal: %w", err)
	}

	tail := rest[consumed:]
	if len(tail) < 4 {
		return nil, errors.New("dkg: dist deal signature length missing")
	}
	sigLen := int(byteOrder.Uint32(tail[:4]))
	tail = tail[4:]
	if len(tail) < sigLen {
		return nil, errors.New("dkg: dist deal signature truncated")
	}

	return &DistDeal{
		Index:     index,
		Deal:      e,
		Signature: tail[:sigLen],
	}, nil
}

// decodeEncryptedDealPrefix decodes the five-length-prefixed-field
// EncryptedDeal encoding at the head of data and returns how many bytes it
// consumed, so a caller can find the bytes that follow it (e.g. a DistDeal's
// trailing signature).
func decodeEncryptedDealPrefix(e *vss.EncryptedDeal, data []byte) (int, error) {
	pos := 0
	fields := make([][]byte, 5)
	for i := range fields {
		if len(data) < pos+4 {
			return 0, errors.New("vss: buffer too short")
		}
		n := int(byteOrder.Uint32(data[pos : pos+4]))
		pos += 4
		if len(data) < pos+n {
			return 0, errors.New("vss: buffer too short")
		}
		fields[i] = data[pos : pos+n]
		pos += n
	}
	e.DHKey, e.Signature, e.Nonce, e.Cipher, e.Tag = fields[0], fields[1], fields[2], fields[3], fields[4]
	return pos, nil
}

// MarshalBinary encodes a DistResponse as: int32 index || Response.
func (d *DistResponse) MarshalBinary() ([]byte, error) {
	respBuf, err := d.Response.MarshalBinary()
	if err != nil {
		return nil, err
	}
	out := make([]byte, 4, 4+len(respBuf))
	byteOrder.PutUint32(out, d.Index)
	return append(out, respBuf...), nil
}

// UnmarshalDistResponse decodes a DistResponse encoded by MarshalBinary.
func UnmarshalDistResponse(data []byte) (*DistResponse, error) {
	if len(data) < 4 {
		return nil, errors.New("dkg: dist response buffer too short")
	}
	index := byteOrder.Uint32(data[:4])
	resp := &vss.Response{}
	if err := resp.UnmarshalBinary(data[4:]); err != nil {
		return nil, fmt.Errorf("dkg: decoding dist response: %w", err)
	}
	return &DistResponse{Index: index, Response: resp}, nil
}
