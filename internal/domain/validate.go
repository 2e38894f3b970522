package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MinBodyLength is the minimum body length (in characters) for a post to
// count as a real introduction. Applied regardless of the requirement set.
const MinBodyLength = 100

// Requirements is the declarative requirement set a candidate post must
// satisfy. Every field is optional; a zero value means that check is skipped.
type Requirements struct {
	// App must match the metadata "app" field exactly.
	App string `json:"app"`

	// Developer must match the metadata "developer" field exactly.
	Developer string `json:"developer"`

	// Tags must all appear in the post's metadata tag list.
	Tags []string `json:"tags"`

	// Beneficiaries must each have an exact account+weight match somewhere
	// in the post's merged beneficiary list.
	Beneficiaries []Beneficiary `json:"beneficiaries"`

	// Country must match the metadata "country" field exactly.
	Country string `json:"country"`

	// RequiredFields are metadata keys that must be present and truthy.
	RequiredFields []string `json:"required_fields"`
}

// Validation is the outcome of validating one post. Valid is true iff
// Reasons is empty.
type Validation struct {
	Valid   bool
	Reasons []string
}

// Validate checks a candidate post against a requirement set. All checks run
// in a fixed order (app, developer, tags, beneficiaries, country, required
// fields, body length) and every failing reason is collected, so the result
// is a complete, reproducible diagnosis. The one exception is a metadata blob
// that fails to parse: that short-circuits with a single reason, since no
// later check can run against unparseable input.
func Validate(post *Post, req Requirements) Validation {
	meta, err := NormalizeMetadata(post.JSONMetadata)
	if err != nil {
		return Validation{Valid: false, Reasons: []string{"invalid JSON metadata"}}
	}

	var reasons []string

	if req.App != "" && meta.App != req.App {
		reasons = append(reasons, fmt.Sprintf("app mismatch: expected %q, got %q", req.App, meta.App))
	}

	if req.Developer != "" && meta.Developer != req.Developer {
		reasons = append(reasons, fmt.Sprintf("developer mismatch: expected %q, got %q", req.Developer, meta.Developer))
	}

	if missing := missingTags(req.Tags, meta.Tags); len(missing) > 0 {
		reasons = append(reasons, "missing required tags: "+strings.Join(missing, ", "))
	}

	merged := append(append([]Beneficiary{}, meta.Beneficiaries...), post.ExtraBeneficiaries...)
	for _, want := range req.Beneficiaries {
		if !hasBeneficiary(merged, want) {
			reasons = append(reasons, fmt.Sprintf("missing beneficiary: %s (weight %d)", want.Account, want.Weight))
		}
	}

	if req.Country != "" && meta.Country != req.Country {
		reasons = append(reasons, fmt.Sprintf("country mismatch: expected %q, got %q", req.Country, meta.Country))
	}

	for _, field := range req.RequiredFields {
		if !truthy(meta.Fields[field]) {
			reasons = append(reasons, "missing required field: "+field)
		}
	}

	if utf8.RuneCountInString(post.Body) < MinBodyLength {
		reasons = append(reasons, "post body too short for introduction")
	}

	return Validation{Valid: len(reasons) == 0, Reasons: reasons}
}

func missingTags(required, present []string) []string {
	var missing []string
	for _, tag := range required {
		found := false
		for _, have := range present {
			if have == tag {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, tag)
		}
	}
	return missing
}

func hasBeneficiary(list []Beneficiary, want Beneficiary) bool {
	for _, b := range list {
		if b.Account == want.Account && b.Weight == want.Weight {
			return true
		}
	}
	return false
}

// truthy reports whether a decoded metadata value counts as present: strings
// must be non-empty, numbers non-zero, bools true, lists and maps non-empty.
func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return val != ""
	case bool:
		return val
	case float64:
		return val != 0
	case []any:
		return len(val) > 0
	case map[string]any:
		return len(val) > 0
	default:
		return true
	}
}
