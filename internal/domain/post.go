package domain

import (
	"encoding/json"
	"time"
)

// Beneficiary designates a secondary recipient of post rewards. Weight is a
// fixed-point share out of 10000.
type Beneficiary struct {
	Account string `json:"account"`
	Weight  int    `json:"weight"`
}

// Post is a candidate post observed on the community feed. It is constructed
// once per poll cycle and never mutated afterwards.
type Post struct {
	// Author and Permlink form the post's natural key.
	Author   string
	Permlink string

	Title string

	// Body is the post text, used only for the minimum-length check.
	Body string

	// Created is when the post was published, used only for freshness
	// filtering.
	Created time.Time

	// JSONMetadata is the raw metadata blob as received from the feed. It
	// may be a JSON object or a JSON-encoded string needing one extra parse;
	// normalization happens during validation.
	JSONMetadata json.RawMessage

	// ExtraBeneficiaries holds beneficiaries found outside the metadata blob
	// (the post's direct beneficiary field and tagged extension entries),
	// merged at construction time. Beneficiaries declared inside the metadata
	// blob join these during validation.
	ExtraBeneficiaries []Beneficiary
}

// ID returns the author/permlink composite key.
func (p *Post) ID() string {
	return p.Author + "/" + p.Permlink
}
