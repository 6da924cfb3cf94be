package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/fenilmodi00/sahayak-backend/models"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ingestionFixture struct {
	searcher      *fakeSearcher
	generator     *fakeGenerator
	fetcher       *fakeFetcher
	schemes       *fakeSchemeRepo
	users         *fakeUserRepo
	notifications *fakeNotificationRepo
	notifier      *fakeNotifier
	cache         *SchemeCache
	service       *IngestionService
}

func newIngestionFixture(results []models.ScrapedResult, reply string) *ingestionFixture {
	f := &ingestionFixture{
		searcher:      &fakeSearcher{results: results},
		generator:     &fakeGenerator{reply: reply},
		fetcher:       &fakeFetcher{},
		schemes:       &fakeSchemeRepo{},
		users:         &fakeUserRepo{},
		notifications: &fakeNotificationRepo{},
		notifier:      &fakeNotifier{},
		cache:         NewSchemeCache(time.Hour),
	}
	f.service = NewIngestionService(IngestionDependencies{
		Searcher:      f.searcher,
		Extractor:     NewExtractionService(f.generator, nil),
		Fetcher:       f.fetcher,
		Schemes:       f.schemes,
		Users:         f.users,
		Notifications: f.notifications,
		Notifier:      f.notifier,
		Cache:         f.cache,
	})
	return f
}

const pmKisanReply = `{"name":"PM-KISAN","category":"agriculture","shortDescription":"Income support of Rs 6000 per year to farmer families.","eligibility":["Landholding farmer family"],"benefits":["Rs 6000 per year"],"requiredDocuments":["Aadhaar"],"eligibleRoles":["farmer"],"tags":["farmer"],"ageRange":null,"incomeLimit":null,"applicationProcess":"Apply on the portal","officialWebsite":"https://pmkisan.gov.in"}`

func TestRunIngestionStoresAndNotifies(t *testing.T) {
	f := newIngestionFixture([]models.ScrapedResult{
		{Title: "PM-KISAN", URL: "https://pmkisan.gov.in", Text: "Income support of Rs 6000 per year to farmer families."},
	}, pmKisanReply)
	f.users.users = []models.User{{ID: "user-1", Name: "Asha", MobileNo: "+919800000001", Role: models.RoleFarmer}}
	f.cache.Set(makeSchemes(2))

	summary, err := f.service.RunIngestion(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "government financial schemes India eligibility benefits application", f.searcher.query)
	assert.Equal(t, 10, f.searcher.num)
	assert.Equal(t, 1, summary.TotalScraped)
	assert.Equal(t, 1, summary.NewSchemesAdded)
	require.Len(t, summary.Schemes, 1)
	assert.Equal(t, "PM-KISAN", summary.Schemes[0].Title)
	assert.Equal(t, models.CategoryAgriculture, summary.Schemes[0].Category)
	assert.Equal(t, "https://pmkisan.gov.in", summary.Schemes[0].URL)

	require.Equal(t, 1, f.schemes.count())
	stored := f.schemes.schemes[0]
	assert.True(t, stored.IsNew)
	assert.Equal(t, []models.Role{models.RoleFarmer}, stored.EligibleRoles)
	assert.False(t, stored.CreatedAt.IsZero())

	var raw models.RawSchemeData
	require.NoError(t, json.Unmarshal(stored.RawData, &raw))
	assert.Equal(t, "PM-KISAN", raw.Title)
	assert.Equal(t, "https://pmkisan.gov.in", raw.URL)
	assert.NotEmpty(t, raw.ScrapedAt)
	assert.NotEmpty(t, stored.ProcessedData)

	require.Len(t, f.notifications.notifications, 1)
	n := f.notifications.notifications[0]
	assert.Equal(t, "user-1", n.UserID)
	assert.Equal(t, "scheme_update", n.Type)
	assert.False(t, n.IsRead)
	assert.Equal(t, "New agriculture scheme: PM-KISAN - Learn more: https://pmkisan.gov.in", n.Message)
	require.NotNil(t, n.SchemeID)
	assert.Equal(t, summary.Schemes[0].ID, *n.SchemeID)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, "+919800000001", f.notifier.sent[0].phone)
	assert.Contains(t, f.notifier.sent[0].message, "PM-KISAN")

	_, cached := f.cache.Get()
	assert.False(t, cached, "cache should be cleared after new schemes are stored")
	assert.Equal(t, 0, f.fetcher.calls)
}

func TestRunIngestionSkipsKnownURLs(t *testing.T) {
	results := []models.ScrapedResult{{Title: "PM-KISAN", URL: "https://pmkisan.gov.in", Text: "x"}}
	f := newIngestionFixture(results, pmKisanReply)
	f.users.users = []models.User{{ID: "user-1", MobileNo: "1"}}

	_, err := f.service.RunIngestion(context.Background())
	require.NoError(t, err)
	f.cache.Set(makeSchemes(1))

	summary, err := f.service.RunIngestion(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.TotalScraped)
	assert.Equal(t, 0, summary.NewSchemesAdded)
	assert.Empty(t, summary.Schemes)
	assert.Equal(t, 1, f.schemes.count())
	assert.Len(t, f.notifications.notifications, 1)
	assert.Equal(t, 1, f.generator.calls())

	_, cached := f.cache.Get()
	assert.True(t, cached, "a run without new schemes leaves the cache alone")
}

func TestRunIngestionDedupIsCaseSensitive(t *testing.T) {
	f := newIngestionFixture([]models.ScrapedResult{
		{Title: "A", URL: "https://example.gov.in/Scheme", Text: "a"},
		{Title: "B", URL: "https://example.gov.in/scheme", Text: "b"},
		{Title: "C", URL: "https://example.gov.in/scheme", Text: "c"},
	}, "")

	summary, err := f.service.RunIngestion(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, summary.TotalScraped)
	assert.Equal(t, 2, summary.NewSchemesAdded)
}

func TestRunIngestionFanOutCount(t *testing.T) {
	results := make([]models.ScrapedResult, 3)
	for i := range results {
		results[i] = models.ScrapedResult{Title: fmt.Sprintf("S%d", i), URL: fmt.Sprintf("https://example.gov.in/%d", i), Text: "t"}
	}
	f := newIngestionFixture(results, "")
	for i := 0; i < 4; i++ {
		f.users.users = append(f.users.users, models.User{ID: fmt.Sprintf("u%d", i), MobileNo: fmt.Sprintf("9%d", i)})
	}

	_, err := f.service.RunIngestion(context.Background())
	require.NoError(t, err)

	assert.Len(t, f.notifications.notifications, 12)
	assert.Len(t, f.notifier.sent, 12)
}

func TestRunIngestionFanOutIsCappedAtHundredUsers(t *testing.T) {
	f := newIngestionFixture([]models.ScrapedResult{{Title: "S", URL: "https://example.gov.in/s", Text: "t"}}, "")
	for i := 0; i < 130; i++ {
		f.users.users = append(f.users.users, models.User{ID: fmt.Sprintf("u%d", i)})
	}

	_, err := f.service.RunIngestion(context.Background())
	require.NoError(t, err)

	assert.Len(t, f.notifications.notifications, NotificationFanOutUserLimit)
}

func TestRunIngestionSwallowsMessagingFailures(t *testing.T) {
	f := newIngestionFixture([]models.ScrapedResult{{Title: "S", URL: "https://example.gov.in/s", Text: "t"}}, "")
	f.users.users = []models.User{{ID: "u1", MobileNo: "1"}, {ID: "u2", MobileNo: "2"}}
	f.notifier.err = errBoom

	summary, err := f.service.RunIngestion(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.NewSchemesAdded)
	assert.Len(t, f.notifications.notifications, 2)
	assert.Len(t, f.notifier.sent, 2)
}

func TestRunIngestionPropagatesStorageFailure(t *testing.T) {
	f := newIngestionFixture([]models.ScrapedResult{{Title: "S", URL: "https://example.gov.in/s", Text: "t"}}, "")
	f.schemes.createErr = errBoom

	summary, err := f.service.RunIngestion(context.Background())
	assert.Nil(t, summary)
	assert.ErrorIs(t, err, errBoom)
	assert.Empty(t, f.notifications.notifications)
}

func TestRunIngestionPropagatesSearchFailure(t *testing.T) {
	f := newIngestionFixture(nil, "")
	f.searcher.err = errBoom

	_, err := f.service.RunIngestion(context.Background())
	assert.ErrorIs(t, err, errBoom)
}

func TestRunIngestionBackfillsMissingText(t *testing.T) {
	f := newIngestionFixture([]models.ScrapedResult{{Title: "S", URL: "https://example.gov.in/s"}}, "")
	f.fetcher.text = "Fetched page body about the scheme."

	_, err := f.service.RunIngestion(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, f.fetcher.calls)
	require.Equal(t, 1, f.generator.calls())
	assert.Contains(t, f.generator.prompts[0], "Content: Fetched page body about the scheme.")
	assert.Equal(t, "Fetched page body about the scheme.", f.schemes.schemes[0].ShortDescription)
}

func TestRunIngestionBackfillFailureLeavesDescriptionEmpty(t *testing.T) {
	f := newIngestionFixture([]models.ScrapedResult{{Title: "S", URL: "https://example.gov.in/s"}}, "")
	f.fetcher.err = errBoom

	summary, err := f.service.RunIngestion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.NewSchemesAdded)
	assert.Equal(t, "", f.schemes.schemes[0].ShortDescription)
}

func TestRunIngestionSerializesConcurrentRuns(t *testing.T) {
	f := newIngestionFixture([]models.ScrapedResult{{Title: "S", URL: "https://example.gov.in/s", Text: "t"}}, "")

	var wg sync.WaitGroup
	added := make([]int, 5)
	for i := range added {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			summary, err := f.service.RunIngestion(context.Background())
			if assert.NoError(t, err) {
				added[i] = summary.NewSchemesAdded
			}
		}(i)
	}
	wg.Wait()

	total := 0
	for _, n := range added {
		total += n
	}
	assert.Equal(t, 1, total)
	assert.Equal(t, 1, f.schemes.count())
}

func TestIngestionIdempotenceProperty(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("a second run over the same results adds nothing and stores one scheme per distinct URL", prop.ForAll(
		func(ids []int) bool {
			results := make([]models.ScrapedResult, len(ids))
			distinct := map[string]bool{}
			for i, id := range ids {
				url := fmt.Sprintf("https://example.gov.in/schemes/%d", id)
				results[i] = models.ScrapedResult{Title: fmt.Sprintf("Scheme %d", id), URL: url, Text: "t"}
				distinct[url] = true
			}

			f := newIngestionFixture(results, "")
			first, err := f.service.RunIngestion(context.Background())
			if err != nil || first.NewSchemesAdded != len(distinct) {
				return false
			}
			second, err := f.service.RunIngestion(context.Background())
			if err != nil || second.NewSchemesAdded != 0 {
				return false
			}
			return f.schemes.count() == len(distinct) && second.TotalScraped == len(results)
		},
		gen.SliceOfN(10, gen.IntRange(0, 6)),
	))

	properties.TestingRun(t)
}
