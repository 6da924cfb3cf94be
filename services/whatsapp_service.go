package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fenilmodi00/sahayak-backend/models"
	"github.com/fenilmodi00/sahayak-backend/shared"
	"github.com/sirupsen/logrus"
)

// DefaultWhatsAppBaseURL is the Graph API base used for WhatsApp Cloud messages
const DefaultWhatsAppBaseURL = "https://graph.facebook.com/v18.0"

// Notifier delivers a text message to a phone number
type Notifier interface {
	SendMessage(ctx context.Context, phoneNumber, message string) error
}

// WhatsAppService sends text messages through the WhatsApp Cloud API
type WhatsAppService struct {
	token         string
	phoneNumberID string
	baseURL       string
	client        *http.Client
	metrics       *shared.HTTPMetrics
}

type whatsAppMessage struct {
	MessagingProduct string          `json:"messaging_product"`
	To               string          `json:"to"`
	Type             string          `json:"type"`
	Text             whatsAppTextMsg `json:"text"`
}

type whatsAppTextMsg struct {
	Body string `json:"body"`
}

func NewWhatsAppService(token, phoneNumberID string, clientFactory *shared.HTTPClientFactory, timeout time.Duration, metrics *shared.HTTPMetrics) *WhatsAppService {
	return &WhatsAppService{
		token:         token,
		phoneNumberID: phoneNumberID,
		baseURL:       DefaultWhatsAppBaseURL,
		client:        clientFactory.CreateOptimizedHTTPClient(timeout),
		metrics:       metrics,
	}
}

// WithBaseURL points the service at another Graph API host, used against test servers
func (s *WhatsAppService) WithBaseURL(baseURL string) *WhatsAppService {
	s.baseURL = strings.TrimSuffix(baseURL, "/")
	return s
}

func (s *WhatsAppService) SendMessage(ctx context.Context, phoneNumber, message string) error {
	if s.token == "" || s.phoneNumberID == "" {
		return shared.NewServiceError(shared.ErrorCategoryConfiguration, "WHATSAPP_NOT_CONFIGURED",
			"WhatsApp credentials are not configured", "WhatsAppService", "SendMessage", nil)
	}
	if strings.TrimSpace(phoneNumber) == "" {
		return fmt.Errorf("empty phone number: %w", shared.ErrValidation)
	}

	payload := whatsAppMessage{
		MessagingProduct: "whatsapp",
		To:               phoneNumber,
		Type:             "text",
		Text:             whatsAppTextMsg{Body: message},
	}
	url := fmt.Sprintf("%s/%s/messages", s.baseURL, s.phoneNumberID)

	start := time.Now()
	err := shared.PostJSON(ctx, s.client, url, map[string]string{"Authorization": "Bearer " + s.token}, payload, nil)
	if s.metrics != nil {
		s.metrics.RecordHTTPRequest(err == nil, statusFromErr(err), time.Since(start), shared.IsTimeoutError(err))
	}
	if err != nil {
		return fmt.Errorf("failed to send WhatsApp message: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"component": "WhatsAppService",
		"operation": "SendMessage",
	}).Debug("WhatsApp message sent")
	return nil
}

// SchemeAlertMessage is the Hindi WhatsApp body announcing a new scheme
func SchemeAlertMessage(scheme models.IngestedScheme) string {
	return fmt.Sprintf("🎯 नई योजना: %s\nश्रेणी: %s\nविवरण देखें: %s", scheme.Title, scheme.Category, scheme.URL)
}

// SchemeNotificationMessage is the in-app notification text for a new scheme
func SchemeNotificationMessage(scheme models.IngestedScheme) string {
	return fmt.Sprintf("New %s scheme: %s - Learn more: %s", scheme.Category, scheme.Title, scheme.URL)
}
