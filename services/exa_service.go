package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/fenilmodi00/sahayak-backend/models"
	"github.com/fenilmodi00/sahayak-backend/shared"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultExaSearchURL is the Exa search-and-contents endpoint
	DefaultExaSearchURL = "https://api.exa.ai/search"

	// SchemeSearchQuery is the fixed query used by every ingestion run
	SchemeSearchQuery = "government financial schemes India eligibility benefits application"

	// SchemeSearchResults is how many hits one ingestion run asks for
	SchemeSearchResults = 10
)

// SchemeSearcher returns search hits with page text for a query
type SchemeSearcher interface {
	SearchAndContents(ctx context.Context, query string, numResults int) ([]models.ScrapedResult, error)
}

// ExaService talks to the Exa search API
type ExaService struct {
	apiKey   string
	endpoint string
	client   *http.Client
	metrics  *shared.HTTPMetrics
}

type exaSearchRequest struct {
	Query      string         `json:"query"`
	NumResults int            `json:"numResults"`
	Contents   exaContentsOpt `json:"contents"`
}

type exaContentsOpt struct {
	Text bool `json:"text"`
}

type exaSearchResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Text    string `json:"text"`
		Summary string `json:"summary"`
	} `json:"results"`
}

func NewExaService(apiKey string, clientFactory *shared.HTTPClientFactory, timeout time.Duration, metrics *shared.HTTPMetrics) *ExaService {
	return &ExaService{
		apiKey:   apiKey,
		endpoint: DefaultExaSearchURL,
		client:   clientFactory.CreateOptimizedHTTPClient(timeout),
		metrics:  metrics,
	}
}

// WithEndpoint points the service at another base URL, used against test servers
func (s *ExaService) WithEndpoint(endpoint string) *ExaService {
	s.endpoint = endpoint
	return s
}

func (s *ExaService) SearchAndContents(ctx context.Context, query string, numResults int) ([]models.ScrapedResult, error) {
	if s.apiKey == "" {
		return nil, shared.NewServiceError(shared.ErrorCategoryConfiguration, "EXA_KEY_MISSING",
			"EXA_API_KEY is not configured", "ExaService", "SearchAndContents", nil)
	}

	logger := logrus.WithFields(logrus.Fields{
		"component":   "ExaService",
		"operation":   "SearchAndContents",
		"num_results": numResults,
	})

	payload := exaSearchRequest{
		Query:      query,
		NumResults: numResults,
		Contents:   exaContentsOpt{Text: true},
	}

	start := time.Now()
	var resp exaSearchResponse
	err := shared.PostJSON(ctx, s.client, s.endpoint, map[string]string{"x-api-key": s.apiKey}, payload, &resp)
	if s.metrics != nil {
		s.metrics.RecordHTTPRequest(err == nil, statusFromErr(err), time.Since(start), shared.IsTimeoutError(err))
	}
	if err != nil {
		serviceErr := shared.NewServiceError(shared.ErrorCategoryNetwork, "EXA_SEARCH_FAILED",
			"scheme search failed", "ExaService", "SearchAndContents", err).
			WithDetails(map[string]interface{}{"query": query, "num_results": numResults})
		if shared.IsTimeoutError(err) {
			serviceErr.Category = shared.ErrorCategoryTimeout
		}
		serviceErr.LogError()
		return nil, serviceErr
	}

	results := make([]models.ScrapedResult, 0, len(resp.Results))
	for _, r := range resp.Results {
		if strings.TrimSpace(r.URL) == "" {
			continue
		}
		results = append(results, models.ScrapedResult{
			Title:   strings.TrimSpace(r.Title),
			URL:     r.URL,
			Text:    r.Text,
			Summary: r.Summary,
		})
	}

	logger.WithFields(logrus.Fields{
		"returned": len(results),
		"duration": time.Since(start),
	}).Info("Exa search completed")

	return results, nil
}

// statusFromErr recovers the HTTP status from a PostJSON error, 200 on success and 0 when no reply arrived
func statusFromErr(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var statusErr *shared.HTTPStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}
