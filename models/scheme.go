package models

import (
	"encoding/json"
	"time"
)

// SchemeCategory is the fixed set of categories a scheme can be filed under
type SchemeCategory string

const (
	CategoryAgriculture SchemeCategory = "agriculture"
	CategoryBusiness    SchemeCategory = "business"
	CategoryPension     SchemeCategory = "pension"
	CategoryEducation   SchemeCategory = "education"
	CategoryHousing     SchemeCategory = "housing"
	CategoryGeneral     SchemeCategory = "general"
)

// SchemeCategories lists every valid category in prompt order
var SchemeCategories = []SchemeCategory{
	CategoryAgriculture,
	CategoryBusiness,
	CategoryPension,
	CategoryEducation,
	CategoryHousing,
	CategoryGeneral,
}

// IsValid reports whether c is one of the known categories
func (c SchemeCategory) IsValid() bool {
	for _, known := range SchemeCategories {
		if c == known {
			return true
		}
	}
	return false
}

// Scheme is a government financial-assistance program as stored in the schemes table.
// Records are append-only: created once by ingestion and never updated.
type Scheme struct {
	// Identification
	ID        string `json:"id"`
	SourceURL string `json:"source_url"`

	// Structured content produced by extraction
	Name               string         `json:"name"`
	Category           SchemeCategory `json:"category"`
	ShortDescription   string         `json:"shortDescription"`
	Eligibility        []string       `json:"eligibility"`
	Benefits           []string       `json:"benefits"`
	RequiredDocuments  []string       `json:"requiredDocuments"`
	EligibleRoles      []Role         `json:"eligibleRoles"`
	Tags               []string       `json:"tags"`
	AgeRange           *string        `json:"ageRange"`
	IncomeLimit        *string        `json:"incomeLimit"`
	ApplicationProcess *string        `json:"applicationProcess"`
	OfficialWebsite    *string        `json:"officialWebsite"`

	// Audit payloads
	RawData       json.RawMessage `json:"raw_data,omitempty"`
	ProcessedData json.RawMessage `json:"processed_data,omitempty"`

	IsNew       bool      `json:"is_new"`
	CreatedAt   time.Time `json:"created_at"`
	ProcessedAt time.Time `json:"processed_at"`
}

// RawSchemeData is the unstructured payload scraped for a single page
type RawSchemeData struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	ScrapedAt   string `json:"scraped_at"`
}

// StructuredScheme is the normalized output of extraction, before storage assigns an ID
type StructuredScheme struct {
	Name               string         `json:"name"`
	Category           SchemeCategory `json:"category"`
	ShortDescription   string         `json:"shortDescription"`
	Eligibility        []string       `json:"eligibility"`
	Benefits           []string       `json:"benefits"`
	RequiredDocuments  []string       `json:"requiredDocuments"`
	EligibleRoles      []Role         `json:"eligibleRoles"`
	Tags               []string       `json:"tags"`
	AgeRange           *string        `json:"ageRange"`
	IncomeLimit        *string        `json:"incomeLimit"`
	ApplicationProcess string         `json:"applicationProcess"`
	OfficialWebsite    string         `json:"officialWebsite"`
}

// ScrapedResult is one search hit returned by the scraping collaborator
type ScrapedResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Text    string `json:"text"`
	Summary string `json:"summary"`
}

// Content returns the full text when present, otherwise the summary
func (r ScrapedResult) Content() string {
	if r.Text != "" {
		return r.Text
	}
	return r.Summary
}

// IngestedScheme summarizes a newly stored scheme in an ingestion report
type IngestedScheme struct {
	ID       string         `json:"id"`
	Title    string         `json:"title"`
	URL      string         `json:"url"`
	Category SchemeCategory `json:"category"`
}

// IngestionSummary is the result of one ingestion run
type IngestionSummary struct {
	TotalScraped    int              `json:"total_scraped"`
	NewSchemesAdded int              `json:"new_schemes_added"`
	Schemes         []IngestedScheme `json:"schemes"`
}
