// Package pem provides handy wrappers for dealing with PEM formatted
// key material.
package pem

import (
	"bytes"
	"encoding/pem"
	"errors"
)

var (
	errNilPEM          = errors.New("pem: data does not contain a block")
	errTrailingGarbage = errors.New("pem: data has trailing garbage")
)

// Decode decodes a PEM formatted buffer containing a single block,
// returning the block type and data.
func Decode(data []byte) (string, []byte, error) {
	blk, rest := pem.Decode(data)
	if blk == nil {
		return "", nil, errNilPEM
	}
	if len(rest) != 0 {
		return "", nil, errTrailingGarbage
	}

	return blk.Type, blk.Bytes, nil
}

// Marshal encodes a blob into a PEM formatted buffer, with the
// specified PEM type and data.
func Marshal(pemType string, data []byte) ([]byte, error) {
	blk := &pem.Block{
		Type:  pemType,
		Bytes: data,
	}

	var buf bytes.Buffer
	if err := pem.Encode(&buf, blk); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
