package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRequirements() Requirements {
	return Requirements{
		App:           "checkinecuador/1.0.0",
		Developer:     "menobass",
		Tags:          []string{"introduceyourself", "checkin"},
		Beneficiaries: []Beneficiary{{Account: "hiveecuador", Weight: 8000}},
		Country:       "Ecuador",
		RequiredFields: []string{
			"onboarder",
			"image",
		},
	}
}

func testValidPost() *Post {
	meta := map[string]any{
		"app":       "checkinecuador/1.0.0",
		"developer": "menobass",
		"country":   "Ecuador",
		"tags":      []string{"introduceyourself", "checkin", "spanish"},
		"beneficiaries": []map[string]any{
			{"account": "hiveecuador", "weight": 8000},
		},
		"onboarder": "meno",
		"image":     "https://example.com/selfie.jpg",
	}
	raw, _ := json.Marshal(meta)
	return &Post{
		Author:       "newuser",
		Permlink:     "mi-introduccion",
		Title:        "Mi introducción",
		Body:         strings.Repeat("hola mundo ", 12),
		JSONMetadata: raw,
	}
}

func TestValidatePasses(t *testing.T) {
	v := Validate(testValidPost(), testRequirements())

	assert.True(t, v.Valid)
	assert.Empty(t, v.Reasons)
}

func TestValidateMissingBeneficiary(t *testing.T) {
	post := testValidPost()
	var fields map[string]any
	require.NoError(t, json.Unmarshal(post.JSONMetadata, &fields))
	delete(fields, "beneficiaries")
	post.JSONMetadata, _ = json.Marshal(fields)

	v := Validate(post, testRequirements())

	assert.False(t, v.Valid)
	require.Len(t, v.Reasons, 1)
	assert.Equal(t, "missing beneficiary: hiveecuador (weight 8000)", v.Reasons[0])
}

func TestValidateBeneficiaryFromExtraSources(t *testing.T) {
	post := testValidPost()
	var fields map[string]any
	require.NoError(t, json.Unmarshal(post.JSONMetadata, &fields))
	delete(fields, "beneficiaries")
	post.JSONMetadata, _ = json.Marshal(fields)

	// The direct field and extension entries feed the same merged list.
	post.ExtraBeneficiaries = []Beneficiary{{Account: "hiveecuador", Weight: 8000}}

	v := Validate(post, testRequirements())

	assert.True(t, v.Valid)
}

func TestValidateWrongBeneficiaryWeight(t *testing.T) {
	post := testValidPost()
	post.ExtraBeneficiaries = []Beneficiary{{Account: "hiveecuador", Weight: 5000}}
	var fields map[string]any
	require.NoError(t, json.Unmarshal(post.JSONMetadata, &fields))
	delete(fields, "beneficiaries")
	post.JSONMetadata, _ = json.Marshal(fields)

	v := Validate(post, testRequirements())

	assert.False(t, v.Valid)
	require.Len(t, v.Reasons, 1)
	assert.Contains(t, v.Reasons[0], "missing beneficiary")
}

func TestValidateStringEncodedMetadata(t *testing.T) {
	post := testValidPost()
	// Some feed entries deliver the metadata object as a JSON-encoded string.
	encoded, _ := json.Marshal(string(post.JSONMetadata))
	post.JSONMetadata = encoded

	v := Validate(post, testRequirements())

	assert.True(t, v.Valid)
}

func TestValidateMalformedMetadataShortCircuits(t *testing.T) {
	post := testValidPost()
	post.JSONMetadata = json.RawMessage(`"{this is not json"`)
	post.Body = "short" // would also fail the body check if it ran

	v := Validate(post, testRequirements())

	assert.False(t, v.Valid)
	require.Len(t, v.Reasons, 1)
	assert.Equal(t, "invalid JSON metadata", v.Reasons[0])
}

func TestValidateCollectsAllReasonsInOrder(t *testing.T) {
	post := &Post{
		Author:       "someone",
		Permlink:     "off-topic",
		Body:         "too short",
		JSONMetadata: json.RawMessage(`{"app":"other/1.0","developer":"else","country":"Peru","tags":["random"]}`),
	}

	v := Validate(post, testRequirements())

	require.False(t, v.Valid)
	// app, developer, tags, beneficiary, country, 2 required fields, body.
	require.Len(t, v.Reasons, 8)
	assert.Contains(t, v.Reasons[0], "app mismatch")
	assert.Contains(t, v.Reasons[1], "developer mismatch")
	assert.Equal(t, "missing required tags: introduceyourself, checkin", v.Reasons[2])
	assert.Contains(t, v.Reasons[3], "missing beneficiary")
	assert.Contains(t, v.Reasons[4], "country mismatch")
	assert.Equal(t, "missing required field: onboarder", v.Reasons[5])
	assert.Equal(t, "missing required field: image", v.Reasons[6])
	assert.Equal(t, "post body too short for introduction", v.Reasons[7])
}

func TestValidateDeterministic(t *testing.T) {
	post := &Post{
		Author:       "someone",
		Permlink:     "off-topic",
		Body:         "too short",
		JSONMetadata: json.RawMessage(`{"app":"other/1.0"}`),
	}
	req := testRequirements()

	first := Validate(post, req)
	second := Validate(post, req)

	assert.Equal(t, first, second)
}

func TestValidateRequiredFieldMustBeTruthy(t *testing.T) {
	cases := []struct {
		name  string
		value any
		valid bool
	}{
		{"empty string", "", false},
		{"false", false, false},
		{"zero", 0, false},
		{"empty list", []any{}, false},
		{"non-empty string", "meno", true},
		{"true", true, true},
		{"number", 3, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			post := testValidPost()
			var fields map[string]any
			require.NoError(t, json.Unmarshal(post.JSONMetadata, &fields))
			fields["onboarder"] = tc.value
			post.JSONMetadata, _ = json.Marshal(fields)

			v := Validate(post, testRequirements())

			if tc.valid {
				assert.True(t, v.Valid)
			} else {
				require.Len(t, v.Reasons, 1)
				assert.Equal(t, "missing required field: onboarder", v.Reasons[0])
			}
		})
	}
}

func TestValidateEmptyRequirementsOnlyChecksBody(t *testing.T) {
	post := &Post{Author: "a", Permlink: "b", Body: strings.Repeat("x", MinBodyLength)}

	v := Validate(post, Requirements{})
	assert.True(t, v.Valid)

	post.Body = strings.Repeat("x", MinBodyLength-1)
	v = Validate(post, Requirements{})
	assert.False(t, v.Valid)
	require.Len(t, v.Reasons, 1)
	assert.Equal(t, "post body too short for introduction", v.Reasons[0])
}

func TestNormalizeMetadataEmptyAndNull(t *testing.T) {
	for _, raw := range []json.RawMessage{nil, json.RawMessage("null"), json.RawMessage(`""`)} {
		meta, err := NormalizeMetadata(raw)
		require.NoError(t, err)
		assert.Empty(t, meta.App)
		assert.Empty(t, meta.Tags)
	}
}
