package domain

import (
	"bytes"
	"encoding/json"
)

// Metadata is the typed, normalized view of a post's metadata blob. All
// fields are optional; validation checks operate on these typed values, never
// on the raw blob.
type Metadata struct {
	App           string
	Developer     string
	Country       string
	Tags          []string
	Beneficiaries []Beneficiary

	// Fields is the full decoded mapping, kept for required-field checks.
	Fields map[string]any
}

// NormalizeMetadata decodes a raw metadata blob into a Metadata record. The
// blob may be a JSON object, or a JSON string containing an object that needs
// one more parse step. A missing or null blob yields an empty record; a
// malformed one returns an error.
func NormalizeMetadata(raw json.RawMessage) (*Metadata, error) {
	meta := &Metadata{Fields: map[string]any{}}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return meta, nil
	}

	// String-encoded blobs carry the object as a quoted JSON text.
	if raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return nil, err
		}
		if inner == "" {
			return meta, nil
		}
		raw = []byte(inner)
	}

	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	meta.Fields = fields

	meta.App = stringField(fields, "app")
	meta.Developer = stringField(fields, "developer")
	meta.Country = stringField(fields, "country")
	meta.Tags = stringListField(fields, "tags")
	meta.Beneficiaries = beneficiaryListField(fields, "beneficiaries")

	return meta, nil
}

func stringField(fields map[string]any, key string) string {
	s, _ := fields[key].(string)
	return s
}

func stringListField(fields map[string]any, key string) []string {
	list, _ := fields[key].([]any)
	var out []string
	for _, v := range list {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func beneficiaryListField(fields map[string]any, key string) []Beneficiary {
	list, _ := fields[key].([]any)
	var out []Beneficiary
	for _, v := range list {
		entry, ok := v.(map[string]any)
		if !ok {
			continue
		}
		account, _ := entry["account"].(string)
		weight, _ := entry["weight"].(float64)
		if account == "" {
			continue
		}
		out = append(out, Beneficiary{Account: account, Weight: int(weight)})
	}
	return out
}
