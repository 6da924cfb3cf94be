package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fenilmodi00/sahayak-backend/models"
	"github.com/fenilmodi00/sahayak-backend/shared"
	"github.com/sirupsen/logrus"
)

const (
	// fallbackDescriptionRunes bounds shortDescription when extraction falls back to raw text
	fallbackDescriptionRunes = 200

	unknownSchemeName = "Unknown Scheme"
)

// SchemeExtractor turns raw page data into a structured scheme. It never fails.
type SchemeExtractor interface {
	Extract(ctx context.Context, raw models.RawSchemeData) *models.StructuredScheme
}

// ExtractionService asks the generative model for structured scheme JSON and
// falls back to a record built from the raw page when the reply is unusable
type ExtractionService struct {
	generator TextGenerator
	metrics   *shared.ExtractionMetrics
}

func NewExtractionService(generator TextGenerator, metrics *shared.ExtractionMetrics) *ExtractionService {
	if metrics == nil {
		metrics = shared.NewExtractionMetrics()
	}
	return &ExtractionService{generator: generator, metrics: metrics}
}

func (s *ExtractionService) Extract(ctx context.Context, raw models.RawSchemeData) *models.StructuredScheme {
	logger := logrus.WithFields(logrus.Fields{
		"component": "ExtractionService",
		"operation": "Extract",
		"url":       raw.URL,
	})

	reply, err := s.generator.GenerateText(ctx, buildExtractionPrompt(raw))
	if err != nil {
		logger.WithError(err).Warn("Extraction call failed, using fallback record")
		s.metrics.RecordFallback(false, true)
		return FallbackScheme(raw)
	}

	content := StripCodeFences(reply)
	if content == "" {
		logger.Warn("Extraction returned empty reply, using fallback record")
		s.metrics.RecordFallback(false, false)
		return FallbackScheme(raw)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &fields); err != nil || fields == nil {
		logger.WithFields(logrus.Fields{
			"error":   err,
			"content": TruncateRunes(content, 300),
		}).Warn("Extraction reply was not a JSON object, using fallback record")
		s.metrics.RecordFallback(true, false)
		return FallbackScheme(raw)
	}

	s.metrics.RecordStructured()
	return structuredFromFields(fields, raw)
}

// FallbackScheme is the record stored when no structured data could be obtained
func FallbackScheme(raw models.RawSchemeData) *models.StructuredScheme {
	return &models.StructuredScheme{
		Name:               fallbackName(raw),
		Category:           models.CategoryGeneral,
		ShortDescription:   TruncateRunes(raw.Description, fallbackDescriptionRunes),
		Eligibility:        []string{},
		Benefits:           []string{},
		RequiredDocuments:  []string{},
		EligibleRoles:      []models.Role{models.RoleOther},
		Tags:               []string{},
		ApplicationProcess: "",
		OfficialWebsite:    raw.URL,
	}
}

func structuredFromFields(fields map[string]json.RawMessage, raw models.RawSchemeData) *models.StructuredScheme {
	scheme := &models.StructuredScheme{
		Name:               fallbackName(raw),
		Category:           normalizeCategory(stringField(fields, "category")),
		ShortDescription:   TruncateRunes(raw.Description, fallbackDescriptionRunes),
		Eligibility:        listField(fields, "eligibility"),
		Benefits:           listField(fields, "benefits"),
		RequiredDocuments:  listField(fields, "requiredDocuments"),
		EligibleRoles:      normalizeRoles(listField(fields, "eligibleRoles")),
		Tags:               listField(fields, "tags"),
		AgeRange:           optionalField(fields, "ageRange"),
		IncomeLimit:        optionalField(fields, "incomeLimit"),
		ApplicationProcess: stringField(fields, "applicationProcess"),
		OfficialWebsite:    raw.URL,
	}

	if name := stringField(fields, "name"); name != "" {
		scheme.Name = name
	}
	if isJSONString(fields["shortDescription"]) {
		scheme.ShortDescription = stringField(fields, "shortDescription")
	}
	if website := stringField(fields, "officialWebsite"); website != "" {
		scheme.OfficialWebsite = website
	}

	return scheme
}

func fallbackName(raw models.RawSchemeData) string {
	if title := strings.TrimSpace(raw.Title); title != "" {
		return title
	}
	return unknownSchemeName
}

// stringField reads a JSON string, treating null, absent and non-string values as empty
func stringField(fields map[string]json.RawMessage, key string) string {
	value, ok := fields[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(value, &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

// isJSONString reports whether value holds a JSON string rather than null or another type
func isJSONString(value json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(value))
	return strings.HasPrefix(trimmed, `"`)
}

// optionalField returns nil for null, absent, empty or the literal "null"
func optionalField(fields map[string]json.RawMessage, key string) *string {
	s := stringField(fields, key)
	if s == "" || strings.EqualFold(s, "null") {
		return nil
	}
	return &s
}

// listField accepts an array of strings or a single string and drops empty items
func listField(fields map[string]json.RawMessage, key string) []string {
	out := []string{}
	value, ok := fields[key]
	if !ok {
		return out
	}

	var items []interface{}
	if err := json.Unmarshal(value, &items); err != nil {
		if single := stringField(fields, key); single != "" {
			out = append(out, single)
		}
		return out
	}

	for _, item := range items {
		var text string
		switch v := item.(type) {
		case string:
			text = v
		case float64, bool:
			text = fmt.Sprint(v)
		default:
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			out = append(out, text)
		}
	}
	return out
}

func normalizeCategory(value string) models.SchemeCategory {
	category := models.SchemeCategory(strings.ToLower(strings.TrimSpace(value)))
	if category.IsValid() {
		return category
	}
	return models.CategoryGeneral
}

// normalizeRoles keeps known roles in first-seen order and defaults to [other]
func normalizeRoles(values []string) []models.Role {
	seen := make(map[models.Role]bool, len(values))
	roles := make([]models.Role, 0, len(values))
	for _, value := range values {
		normalized := strings.ToLower(strings.TrimSpace(value))
		normalized = strings.NewReplacer("-", "_", " ", "_").Replace(normalized)
		role := models.Role(normalized)
		if !role.IsValid() || seen[role] {
			continue
		}
		seen[role] = true
		roles = append(roles, role)
	}
	if len(roles) == 0 {
		return []models.Role{models.RoleOther}
	}
	return roles
}

func buildExtractionPrompt(raw models.RawSchemeData) string {
	categories := make([]string, len(models.SchemeCategories))
	for i, c := range models.SchemeCategories {
		categories[i] = string(c)
	}
	roles := make([]string, len(models.Roles))
	for i, r := range models.Roles {
		roles[i] = string(r)
	}

	return fmt.Sprintf(`You are an AI assistant that extracts government financial scheme information from web content.

Analyze the following content and extract structured information about the government scheme.

Title: %s
Content: %s
URL: %s

Extract and return ONLY a valid JSON object with these exact fields:
{
  "name": "Full scheme name",
  "category": "one of: %s",
  "shortDescription": "Clear 2-3 sentence description in English",
  "eligibility": ["list of eligibility criteria as separate items"],
  "benefits": ["list of benefits as separate items"],
  "requiredDocuments": ["list of required documents"],
  "eligibleRoles": ["applicable roles from: %s"],
  "tags": ["relevant tags for searching"],
  "ageRange": "age criteria if mentioned, else null",
  "incomeLimit": "income limit if mentioned, else null",
  "applicationProcess": "Brief description of how to apply",
  "officialWebsite": "Official website URL if available"
}

IMPORTANT: Return ONLY the JSON object, no markdown code blocks, no additional text.`,
		raw.Title, raw.Description, raw.URL,
		strings.Join(categories, ", "), strings.Join(roles, ", "))
}
