package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/fenilmodi00/sahayak-backend/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// MaxSchemeListLimit caps list reads from the schemes table
const MaxSchemeListLimit = 100

const schemeColumns = `id, name, category, short_description, eligibility, benefits, required_documents,
              eligible_roles, tags, age_range, income_limit, application_process, official_website,
              source_url, raw_data, processed_data, is_new, created_at, processed_at`

// listSchemesQuery reads oldest first so positional consumers see storage order
const listSchemesQuery = `SELECT ` + schemeColumns + ` FROM schemes ORDER BY created_at ASC LIMIT $1`

// SchemeService is the Postgres-backed SchemeRepository
type SchemeService struct {
	DB *sql.DB
}

func NewSchemeService(db *sql.DB) *SchemeService {
	return &SchemeService{DB: db}
}

// CreateScheme inserts a new scheme and fills in the database-assigned ID
func (s *SchemeService) CreateScheme(ctx context.Context, scheme *models.Scheme) error {
	query := `INSERT INTO schemes (name, category, short_description, eligibility, benefits, required_documents,
              eligible_roles, tags, age_range, income_limit, application_process, official_website,
              source_url, raw_data, processed_data, is_new, created_at, processed_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
              RETURNING id`

	err := s.DB.QueryRowContext(ctx, query,
		scheme.Name, string(scheme.Category), scheme.ShortDescription,
		pq.Array(nonNilStrings(scheme.Eligibility)), pq.Array(nonNilStrings(scheme.Benefits)),
		pq.Array(nonNilStrings(scheme.RequiredDocuments)), pq.Array(rolesToStrings(scheme.EligibleRoles)),
		pq.Array(nonNilStrings(scheme.Tags)),
		scheme.AgeRange, scheme.IncomeLimit, scheme.ApplicationProcess, scheme.OfficialWebsite,
		scheme.SourceURL, jsonbArg(scheme.RawData), jsonbArg(scheme.ProcessedData),
		scheme.IsNew, scheme.CreatedAt, scheme.ProcessedAt,
	).Scan(&scheme.ID)
	if err != nil {
		return fmt.Errorf("failed to create scheme: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"component":  "SchemeService",
		"scheme_id":  scheme.ID,
		"name":       scheme.Name,
		"source_url": scheme.SourceURL,
	}).Info("Scheme created successfully")

	return nil
}

// GetSchemeByID returns nil when the id is unknown or not a UUID
func (s *SchemeService) GetSchemeByID(ctx context.Context, id string) (*models.Scheme, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}

	query := `SELECT ` + schemeColumns + ` FROM schemes WHERE id = $1`
	return s.getOne(ctx, query, id)
}

// GetSchemeBySourceURL matches the URL exactly, case included
func (s *SchemeService) GetSchemeBySourceURL(ctx context.Context, sourceURL string) (*models.Scheme, error) {
	query := `SELECT ` + schemeColumns + ` FROM schemes WHERE source_url = $1`
	return s.getOne(ctx, query, sourceURL)
}

// ListSchemes returns up to limit schemes, oldest first
func (s *SchemeService) ListSchemes(ctx context.Context, limit int) ([]models.Scheme, error) {
	if limit <= 0 || limit > MaxSchemeListLimit {
		limit = MaxSchemeListLimit
	}

	rows, err := s.DB.QueryContext(ctx, listSchemesQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query schemes: %w", err)
	}
	defer rows.Close()

	schemes := make([]models.Scheme, 0)
	for rows.Next() {
		scheme, err := scanScheme(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scheme: %w", err)
		}
		schemes = append(schemes, *scheme)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate schemes: %w", err)
	}

	return schemes, nil
}

func (s *SchemeService) getOne(ctx context.Context, query string, arg interface{}) (*models.Scheme, error) {
	scheme, err := scanScheme(s.DB.QueryRowContext(ctx, query, arg))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan scheme: %w", err)
	}
	return scheme, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanScheme(row rowScanner) (*models.Scheme, error) {
	var scheme models.Scheme
	var category string
	var eligibility, benefits, documents, roles, tags pq.StringArray
	var rawData, processedData []byte

	err := row.Scan(
		&scheme.ID, &scheme.Name, &category, &scheme.ShortDescription,
		&eligibility, &benefits, &documents, &roles, &tags,
		&scheme.AgeRange, &scheme.IncomeLimit, &scheme.ApplicationProcess, &scheme.OfficialWebsite,
		&scheme.SourceURL, &rawData, &processedData, &scheme.IsNew, &scheme.CreatedAt, &scheme.ProcessedAt,
	)
	if err != nil {
		return nil, err
	}

	scheme.Category = models.SchemeCategory(category)
	scheme.Eligibility = nonNilStrings(eligibility)
	scheme.Benefits = nonNilStrings(benefits)
	scheme.RequiredDocuments = nonNilStrings(documents)
	scheme.EligibleRoles = stringsToRoles(roles)
	scheme.Tags = nonNilStrings(tags)
	if len(rawData) > 0 {
		scheme.RawData = json.RawMessage(rawData)
	}
	if len(processedData) > 0 {
		scheme.ProcessedData = json.RawMessage(processedData)
	}

	return &scheme, nil
}

// jsonbArg passes JSON as text so Postgres parses it into JSONB
func jsonbArg(raw json.RawMessage) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func rolesToStrings(roles []models.Role) []string {
	out := make([]string, len(roles))
	for i, role := range roles {
		out[i] = string(role)
	}
	return out
}

func stringsToRoles(values []string) []models.Role {
	out := make([]models.Role, len(values))
	for i, value := range values {
		out[i] = models.Role(value)
	}
	return out
}
