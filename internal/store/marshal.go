package store

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/roach88/pgdict/internal/value"
)

// DomainTranslation prefixes request fingerprints. The version suffix
// allows the algorithm to change without colliding with old fingerprints.
const DomainTranslation = "pgdict/translation/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data). The null byte
// keeps domain and data from running together.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint returns the content address of a request.
func Fingerprint(request map[string]any) (string, error) {
	canonical, err := value.MarshalCanonical(request)
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}
	return hashWithDomain(DomainTranslation, canonical), nil
}

func marshalRequest(request map[string]any) (string, error) {
	if request == nil {
		return "{}", nil
	}
	data, err := value.MarshalCanonical(request)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}
	return string(data), nil
}

func marshalParams(params []any) (string, error) {
	if params == nil {
		return "[]", nil
	}
	data, err := value.MarshalCanonical(params)
	if err != nil {
		return "", fmt.Errorf("marshal params: %w", err)
	}
	return string(data), nil
}

// unmarshalRequest keeps numbers as json.Number so that a request read back
// has the same fingerprint it was written with.
func unmarshalRequest(data string) (map[string]any, error) {
	if data == "" || data == "{}" {
		return map[string]any{}, nil
	}
	var m map[string]any
	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	dec.UseNumber()
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("unmarshal request: %w", err)
	}
	return m, nil
}

func unmarshalParams(data string) ([]any, error) {
	if data == "" || data == "[]" {
		return []any{}, nil
	}
	var p []any
	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	dec.UseNumber()
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("unmarshal params: %w", err)
	}
	for i, v := range p {
		// Parameters are only ever text, integers, booleans or NULL.
		if n, ok := v.(json.Number); ok {
			if iv, err := n.Int64(); err == nil {
				p[i] = iv
			}
		}
	}
	return p, nil
}
