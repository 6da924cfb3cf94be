package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/fenilmodi00/sahayak-backend/models"
	"github.com/fenilmodi00/sahayak-backend/shared"
	"github.com/sirupsen/logrus"
)

// NotificationFanOutUserLimit caps how many users hear about one ingestion run
const NotificationFanOutUserLimit = 100

// CacheInvalidator drops cached scheme lists after new schemes are stored
type CacheInvalidator interface {
	Clear()
}

// IngestionDependencies groups the collaborators of IngestionService
type IngestionDependencies struct {
	Searcher      SchemeSearcher
	Extractor     SchemeExtractor
	Fetcher       ContentFetcher
	Schemes       SchemeRepository
	Users         UserRepository
	Notifications NotificationRepository
	Notifier      Notifier
	Cache         CacheInvalidator
	Metrics       *shared.ServiceMetrics
}

// IngestionService scrapes, structures, stores and announces new schemes.
// Runs are serialized: a second caller waits for the first to finish.
type IngestionService struct {
	deps  IngestionDependencies
	mutex sync.Mutex
	now   func() time.Time
}

func NewIngestionService(deps IngestionDependencies) *IngestionService {
	if deps.Metrics == nil {
		deps.Metrics = shared.NewServiceMetrics("ingestion")
	}
	return &IngestionService{
		deps: deps,
		now:  time.Now,
	}
}

// RunIngestion performs one search, stores every result whose source URL is new,
// then notifies users. Storage errors abort the run; messaging errors do not.
func (s *IngestionService) RunIngestion(ctx context.Context) (*models.IngestionSummary, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	start := time.Now()
	summary, err := s.run(ctx)
	s.deps.Metrics.RecordRequest(err == nil, time.Since(start))
	return summary, err
}

func (s *IngestionService) run(ctx context.Context) (*models.IngestionSummary, error) {
	logger := logrus.WithFields(logrus.Fields{
		"component": "IngestionService",
		"operation": "RunIngestion",
	})
	logger.Info("Starting scheme ingestion")

	results, err := s.deps.Searcher.SearchAndContents(ctx, SchemeSearchQuery, SchemeSearchResults)
	if err != nil {
		return nil, fmt.Errorf("scheme search failed: %w", err)
	}

	summary := &models.IngestionSummary{
		TotalScraped: len(results),
		Schemes:      []models.IngestedScheme{},
	}

	for _, result := range results {
		existing, err := s.deps.Schemes.GetSchemeBySourceURL(ctx, result.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to check existing scheme %s: %w", result.URL, err)
		}
		if existing != nil {
			logger.WithField("url", result.URL).Debug("Scheme already exists, skipping")
			continue
		}

		scheme, err := s.buildScheme(ctx, result)
		if err != nil {
			return nil, err
		}
		if err := s.deps.Schemes.CreateScheme(ctx, scheme); err != nil {
			return nil, shared.WrapError(err, shared.ErrorCategoryDatabase, "SCHEME_STORE_FAILED", "IngestionService", "RunIngestion")
		}

		summary.Schemes = append(summary.Schemes, models.IngestedScheme{
			ID:       scheme.ID,
			Title:    scheme.Name,
			URL:      scheme.SourceURL,
			Category: scheme.Category,
		})
	}
	summary.NewSchemesAdded = len(summary.Schemes)
	s.deps.Metrics.IncrementCounter("schemes_added", int64(summary.NewSchemesAdded))

	if summary.NewSchemesAdded > 0 {
		if s.deps.Cache != nil {
			s.deps.Cache.Clear()
		}
		if err := s.notifyUsers(ctx, summary.Schemes); err != nil {
			return nil, err
		}
	}

	logger.WithFields(logrus.Fields{
		"total_scraped":     summary.TotalScraped,
		"new_schemes_added": summary.NewSchemesAdded,
	}).Info("Scheme ingestion completed")

	return summary, nil
}

func (s *IngestionService) buildScheme(ctx context.Context, result models.ScrapedResult) (*models.Scheme, error) {
	description := result.Content()
	if description == "" && s.deps.Fetcher != nil {
		text, err := s.deps.Fetcher.FetchText(ctx, result.URL)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"component": "IngestionService",
				"url":       result.URL,
			}).WithError(err).Warn("Page text backfill failed")
		} else {
			description = text
		}
	}

	raw := models.RawSchemeData{
		Title:       result.Title,
		Description: description,
		URL:         result.URL,
		ScrapedAt:   s.now().UTC().Format(time.RFC3339),
	}

	structured := s.deps.Extractor.Extract(ctx, raw)

	rawJSON, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to encode raw data: %w", err)
	}
	processedJSON, err := json.Marshal(structured)
	if err != nil {
		return nil, fmt.Errorf("failed to encode processed data: %w", err)
	}

	now := s.now().UTC()
	scheme := &models.Scheme{
		Name:              structured.Name,
		Category:          structured.Category,
		ShortDescription:  structured.ShortDescription,
		Eligibility:       structured.Eligibility,
		Benefits:          structured.Benefits,
		RequiredDocuments: structured.RequiredDocuments,
		EligibleRoles:     structured.EligibleRoles,
		Tags:              structured.Tags,
		AgeRange:          structured.AgeRange,
		IncomeLimit:       structured.IncomeLimit,
		SourceURL:         result.URL,
		RawData:           rawJSON,
		ProcessedData:     processedJSON,
		IsNew:             true,
		CreatedAt:         now,
		ProcessedAt:       now,
	}
	process := structured.ApplicationProcess
	scheme.ApplicationProcess = &process
	website := structured.OfficialWebsite
	scheme.OfficialWebsite = &website

	return scheme, nil
}

// notifyUsers writes one notification and sends one message per (user, scheme) pair
func (s *IngestionService) notifyUsers(ctx context.Context, schemes []models.IngestedScheme) error {
	users, err := s.deps.Users.ListUsers(ctx, NotificationFanOutUserLimit)
	if err != nil {
		return fmt.Errorf("failed to list users for notifications: %w", err)
	}

	logger := logrus.WithFields(logrus.Fields{
		"component": "IngestionService",
		"operation": "notifyUsers",
	})

	var created, failedMessages int64
	for _, user := range users {
		for _, scheme := range schemes {
			schemeID := scheme.ID
			notification := &models.Notification{
				UserID:    user.ID,
				Message:   SchemeNotificationMessage(scheme),
				Type:      models.NotificationTypeSchemeUpdate,
				SchemeID:  &schemeID,
				CreatedAt: s.now().UTC(),
				IsRead:    false,
			}
			if err := s.deps.Notifications.CreateNotification(ctx, notification); err != nil {
				return fmt.Errorf("failed to create notification for user %s: %w", user.ID, err)
			}
			created++

			if s.deps.Notifier == nil {
				continue
			}
			if err := s.deps.Notifier.SendMessage(ctx, user.MobileNo, SchemeAlertMessage(scheme)); err != nil {
				failedMessages++
				logger.WithFields(logrus.Fields{
					"user_id":   user.ID,
					"scheme_id": scheme.ID,
				}).WithError(err).Warn("Failed to send scheme message")
			}
		}
	}

	s.deps.Metrics.IncrementCounter("notifications_created", created)
	s.deps.Metrics.IncrementCounter("messages_failed", failedMessages)

	logger.WithFields(logrus.Fields{
		"users":           len(users),
		"notifications":   created,
		"failed_messages": failedMessages,
	}).Info("Users notified about new schemes")

	return nil
}
