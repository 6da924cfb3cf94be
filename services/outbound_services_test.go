package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/fenilmodi00/sahayak-backend/models"
	"github.com/fenilmodi00/sahayak-backend/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExaSearchAndContents(t *testing.T) {
	var got exaSearchRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "exa-key", r.Header.Get("x-api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[
			{"title":" PM-KISAN ","url":"https://pmkisan.gov.in","text":"Income support"},
			{"title":"No URL","url":"","text":"dropped"},
			{"title":"Mudra","url":"https://mudra.org.in","summary":"Loans up to 10 lakh"}
		]}`))
	}))
	defer server.Close()

	metrics := shared.NewHTTPMetrics()
	exa := NewExaService("exa-key", shared.NewHTTPClientFactory(5*time.Second), 5*time.Second, metrics).WithEndpoint(server.URL)

	results, err := exa.SearchAndContents(context.Background(), SchemeSearchQuery, SchemeSearchResults)
	require.NoError(t, err)

	assert.Equal(t, SchemeSearchQuery, got.Query)
	assert.Equal(t, 10, got.NumResults)
	assert.True(t, got.Contents.Text)

	require.Len(t, results, 2)
	assert.Equal(t, "PM-KISAN", results[0].Title)
	assert.Equal(t, "Income support", results[0].Content())
	assert.Equal(t, "Loans up to 10 lakh", results[1].Content())
	assert.Equal(t, int64(1), metrics.Snapshot().SuccessfulRequests)
}

func TestExaSearchFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	factory := shared.NewHTTPClientFactory(5 * time.Second)
	metrics := shared.NewHTTPMetrics()

	_, err := NewExaService("exa-key", factory, 0, metrics).WithEndpoint(server.URL).
		SearchAndContents(context.Background(), "q", 1)
	require.Error(t, err)
	var statusErr *shared.HTTPStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
	assert.Equal(t, 429, statusFromErr(err))
	assert.Equal(t, int64(1), metrics.Snapshot().FailedRequests)

	_, err = NewExaService("", factory, 0, nil).SearchAndContents(context.Background(), "q", 1)
	var serviceErr *shared.ServiceError
	require.ErrorAs(t, err, &serviceErr)
	assert.Equal(t, shared.ErrorCategoryConfiguration, serviceErr.Category)
}

func TestWhatsAppSendMessage(t *testing.T) {
	var path, auth string
	var got whatsAppMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.1"}]}`))
	}))
	defer server.Close()

	svc := NewWhatsAppService("wa-token", "12345", shared.NewHTTPClientFactory(5*time.Second), 0, nil).WithBaseURL(server.URL + "/")
	scheme := models.IngestedScheme{Title: "PM-KISAN", URL: "https://pmkisan.gov.in", Category: models.CategoryAgriculture}

	require.NoError(t, svc.SendMessage(context.Background(), "+919800000001", SchemeAlertMessage(scheme)))

	assert.Equal(t, "/12345/messages", path)
	assert.Equal(t, "Bearer wa-token", auth)
	assert.Equal(t, "whatsapp", got.MessagingProduct)
	assert.Equal(t, "text", got.Type)
	assert.Equal(t, "+919800000001", got.To)
	assert.Equal(t, "🎯 नई योजना: PM-KISAN\nश्रेणी: agriculture\nविवरण देखें: https://pmkisan.gov.in", got.Text.Body)
}

func TestWhatsAppSendMessageErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid recipient"}}`))
	}))
	defer server.Close()

	factory := shared.NewHTTPClientFactory(5 * time.Second)
	svc := NewWhatsAppService("wa-token", "12345", factory, 0, nil).WithBaseURL(server.URL)

	err := svc.SendMessage(context.Background(), "123", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid recipient")

	assert.ErrorIs(t, svc.SendMessage(context.Background(), "  ", "hi"), shared.ErrValidation)

	var serviceErr *shared.ServiceError
	require.ErrorAs(t, NewWhatsAppService("", "", factory, 0, nil).SendMessage(context.Background(), "1", "hi"), &serviceErr)
	assert.Equal(t, "WHATSAPP_NOT_CONFIGURED", serviceErr.Code)
}

func TestSchemeNotificationMessage(t *testing.T) {
	scheme := models.IngestedScheme{Title: "Mudra", URL: "https://mudra.org.in", Category: models.CategoryBusiness}
	assert.Equal(t, "New business scheme: Mudra - Learn more: https://mudra.org.in", SchemeNotificationMessage(scheme))
}

const schemePage = `<html><head><title>PM-KISAN</title><style>body{color:red}</style></head>
<body>
<nav>Home | About | Contact</nav>
<main>
  <h1>PM-KISAN</h1>
  <p>Income   support of Rs 6000
  per year.</p>
  <script>track()</script>
</main>
<footer>Copyright</footer>
</body></html>`

func TestExtractReadableText(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(schemePage))
	require.NoError(t, err)

	assert.Equal(t, "PM-KISAN Income support of Rs 6000 per year.", ExtractReadableText(doc))
}

func TestExtractReadableTextFallsBackToBody(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<html><body><div>प्रधानमंत्री किसान</div><nav>menu</nav></body></html>`))
	require.NoError(t, err)

	assert.Equal(t, "प्रधानमंत्री किसान", ExtractReadableText(doc))
}

func TestPageTextFetcher(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		assert.Equal(t, shared.BrowserUserAgent, r.UserAgent())
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(schemePage))
	}))
	defer server.Close()

	fetcher := NewPageTextFetcher(5*time.Second, 0)

	text, err := fetcher.FetchText(context.Background(), server.URL+"/scheme")
	require.NoError(t, err)
	assert.Equal(t, "PM-KISAN Income support of Rs 6000 per year.", text)

	_, err = fetcher.FetchText(context.Background(), server.URL+"/missing")
	assert.Error(t, err)
}
