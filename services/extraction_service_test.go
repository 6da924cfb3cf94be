package services

import (
	"context"
	"strings"
	"testing"

	"github.com/fenilmodi00/sahayak-backend/models"
	"github.com/fenilmodi00/sahayak-backend/shared"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pmKisanRaw = models.RawSchemeData{
	Title:       "PM-KISAN",
	Description: "Income support of Rs 6000 per year to all landholding farmer families.",
	URL:         "https://pmkisan.gov.in",
	ScrapedAt:   "2026-01-01T09:00:00Z",
}

func TestExtractStructuredReply(t *testing.T) {
	generator := &fakeGenerator{reply: "```json\n" + `{
		"name": "Pradhan Mantri Kisan Samman Nidhi",
		"category": "Agriculture",
		"shortDescription": "Income support for farmers.",
		"eligibility": ["Landholding farmer family", ""],
		"benefits": ["Rs 6000 per year"],
		"requiredDocuments": ["Aadhaar", "Land records"],
		"eligibleRoles": ["farmer", "Self-Employed", "astronaut", "farmer"],
		"tags": ["farmer", "income"],
		"ageRange": null,
		"incomeLimit": "null",
		"applicationProcess": "Apply online",
		"officialWebsite": "https://pmkisan.gov.in/apply"
	}` + "\n```"}
	metrics := shared.NewExtractionMetrics()
	svc := NewExtractionService(generator, metrics)

	got := svc.Extract(context.Background(), pmKisanRaw)

	require.NotNil(t, got)
	assert.Equal(t, "Pradhan Mantri Kisan Samman Nidhi", got.Name)
	assert.Equal(t, models.CategoryAgriculture, got.Category)
	assert.Equal(t, []string{"Landholding farmer family"}, got.Eligibility)
	assert.Equal(t, []models.Role{models.RoleFarmer, models.RoleSelfEmployed}, got.EligibleRoles)
	assert.Nil(t, got.AgeRange)
	assert.Nil(t, got.IncomeLimit)
	assert.Equal(t, "Apply online", got.ApplicationProcess)
	assert.Equal(t, "https://pmkisan.gov.in/apply", got.OfficialWebsite)
	assert.Equal(t, int64(1), metrics.Snapshot().Structured)

	require.Equal(t, 1, generator.calls())
	prompt := generator.prompts[0]
	assert.Contains(t, prompt, "Title: PM-KISAN")
	assert.Contains(t, prompt, "URL: https://pmkisan.gov.in")
	assert.Contains(t, prompt, "agriculture, business, pension, education, housing, general")
	assert.Contains(t, prompt, "farmer, student, self_employed, salaried, unemployed, other")
}

func TestExtractAppliesDefaultsForMissingFields(t *testing.T) {
	svc := NewExtractionService(&fakeGenerator{reply: `{"category": "space", "eligibleRoles": []}`}, nil)

	got := svc.Extract(context.Background(), pmKisanRaw)

	assert.Equal(t, "PM-KISAN", got.Name)
	assert.Equal(t, models.CategoryGeneral, got.Category)
	assert.Equal(t, TruncateRunes(pmKisanRaw.Description, 200), got.ShortDescription)
	assert.Equal(t, []models.Role{models.RoleOther}, got.EligibleRoles)
	assert.Equal(t, []string{}, got.Benefits)
	assert.Equal(t, []string{}, got.Tags)
	assert.Equal(t, pmKisanRaw.URL, got.OfficialWebsite)
}

func TestExtractDefaultsNullShortDescription(t *testing.T) {
	cases := map[string]string{
		"null":       `{"name": "X", "shortDescription": null}`,
		"non-string": `{"name": "X", "shortDescription": 42}`,
	}

	for name, reply := range cases {
		t.Run(name, func(t *testing.T) {
			got := NewExtractionService(&fakeGenerator{reply: reply}, nil).Extract(context.Background(), pmKisanRaw)

			assert.Equal(t, "X", got.Name)
			assert.Equal(t, TruncateRunes(pmKisanRaw.Description, 200), got.ShortDescription)
		})
	}
}

func TestExtractKeepsExplicitShortDescription(t *testing.T) {
	got := NewExtractionService(&fakeGenerator{reply: `{"shortDescription": "Income support for farmers."}`}, nil).
		Extract(context.Background(), pmKisanRaw)

	assert.Equal(t, "Income support for farmers.", got.ShortDescription)
}

func TestExtractFallsBack(t *testing.T) {
	cases := []struct {
		name      string
		generator *fakeGenerator
		malformed int64
		apiErrors int64
	}{
		{"api error", &fakeGenerator{err: errBoom}, 0, 1},
		{"empty reply", &fakeGenerator{reply: "   "}, 0, 0},
		{"malformed json", &fakeGenerator{reply: "not json {"}, 1, 0},
		{"json array", &fakeGenerator{reply: `["a"]`}, 1, 0},
		{"json null", &fakeGenerator{reply: `null`}, 1, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			metrics := shared.NewExtractionMetrics()
			svc := NewExtractionService(tc.generator, metrics)

			got := svc.Extract(context.Background(), pmKisanRaw)

			assert.Equal(t, FallbackScheme(pmKisanRaw), got)
			snap := metrics.Snapshot()
			assert.Equal(t, int64(1), snap.Fallbacks)
			assert.Equal(t, tc.malformed, snap.MalformedJSON)
			assert.Equal(t, tc.apiErrors, snap.APIErrors)
		})
	}
}

func TestFallbackSchemeShape(t *testing.T) {
	raw := models.RawSchemeData{Description: strings.Repeat("योजना ", 100), URL: "https://example.gov.in/x"}
	got := FallbackScheme(raw)

	assert.Equal(t, "Unknown Scheme", got.Name)
	assert.Equal(t, models.CategoryGeneral, got.Category)
	assert.Equal(t, 200, len([]rune(got.ShortDescription)))
	assert.Equal(t, []models.Role{models.RoleOther}, got.EligibleRoles)
	assert.Empty(t, got.Eligibility)
	assert.Empty(t, got.RequiredDocuments)
	assert.Nil(t, got.AgeRange)
	assert.Equal(t, raw.URL, got.OfficialWebsite)
}

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripCodeFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripCodeFences("```\n{\"a\":1}```"))
	assert.Equal(t, `{"a":1}`, StripCodeFences(`  {"a":1}  `))
}

func TestExtractionNeverFailsProperty(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("any reply yields a record with a valid category and at least one valid role", prop.ForAll(
		func(reply, title, description string) bool {
			svc := NewExtractionService(&fakeGenerator{reply: reply}, nil)
			raw := models.RawSchemeData{Title: title, Description: description, URL: "https://example.gov.in/p"}

			got := svc.Extract(context.Background(), raw)
			if got == nil || !got.Category.IsValid() || len(got.EligibleRoles) == 0 || got.Name == "" {
				return false
			}
			for _, role := range got.EligibleRoles {
				if !role.IsValid() {
					return false
				}
			}
			return got.OfficialWebsite != ""
		},
		gen.AnyString(),
		gen.AnyString(),
		gen.AnyString(),
	))

	properties.Property("fallback description never exceeds 200 characters", prop.ForAll(
		func(description string) bool {
			svc := NewExtractionService(&fakeGenerator{err: errBoom}, nil)
			got := svc.Extract(context.Background(), models.RawSchemeData{Title: "t", Description: description, URL: "u"})
			return len([]rune(got.ShortDescription)) <= 200 && strings.HasPrefix(description, got.ShortDescription)
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
