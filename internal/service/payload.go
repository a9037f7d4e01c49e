package service

import (
	"bytes"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"strings"

	"github.com/tjfoc/gmsm/sm3"
)

// DigestAlgorithm names the hash function applied to the compact payload.
type DigestAlgorithm string

const (
	DigestMD5    DigestAlgorithm = "md5"
	DigestSHA256 DigestAlgorithm = "sha256"
	DigestSM3    DigestAlgorithm = "sm3"
)

// ParseDigestAlgorithm parses the name of a digest algorithm. An empty name means `DigestMD5`.
func ParseDigestAlgorithm(name string) (DigestAlgorithm, error) {
	switch algorithm := DigestAlgorithm(strings.ToLower(strings.TrimSpace(name))); algorithm {
	case "":
		return DigestMD5, nil
	case DigestMD5, DigestSHA256, DigestSM3:
		return algorithm, nil
	default:
		return "", fmt.Errorf("unsupported digest algorithm '%v'", name)
	}
}

// Payload is an uploaded SBOM ready to be put on the ledger.
type Payload struct {
	Compact   string          // The JSON with insignificant whitespace removed. Key order is kept.
	Digest    string          // Lowercase hex digest of `Compact`
	Algorithm DigestAlgorithm // The algorithm of `Digest`
}

// LoadPayload reads a JSON file and prepares its compact form and digest. An unreadable file or a file that is not JSON yields an `ErrorBadRequest`.
func LoadPayload(path string, algorithm DigestAlgorithm) (*Payload, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, &ErrorBadRequest{errMsg: fmt.Sprintf("cannot read the payload file: %v", err)}
	}

	return NewPayload(data, algorithm)
}

// NewPayload prepares the compact form and digest of a JSON document. Only insignificant whitespace is removed: keys keep their order and number literals and string escapes are kept as written.
func NewPayload(data []byte, algorithm DigestAlgorithm) (*Payload, error) {
	if !json.Valid(data) {
		return nil, &ErrorBadRequest{errMsg: "the payload is not a valid JSON document"}
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return nil, &ErrorBadRequest{errMsg: fmt.Sprintf("cannot compact the payload: %v", err)}
	}

	digest, err := Digest(buf.Bytes(), algorithm)
	if err != nil {
		return nil, err
	}

	return &Payload{
		Compact:   buf.String(),
		Digest:    digest,
		Algorithm: algorithm,
	}, nil
}

// Digest hashes the data with the algorithm and encodes the sum as lowercase hex.
func Digest(data []byte, algorithm DigestAlgorithm) (string, error) {
	switch algorithm {
	case DigestMD5, "":
		sum := md5.Sum(data)
		return hex.EncodeToString(sum[:]), nil
	case DigestSHA256:
		sum := sha256.Sum256(data)
		return hex.EncodeToString(sum[:]), nil
	case DigestSM3:
		return hex.EncodeToString(sm3.Sm3Sum(data)), nil
	default:
		return "", fmt.Errorf("unsupported digest algorithm '%v'", algorithm)
	}
}
