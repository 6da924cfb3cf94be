package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
	"github.com/fenilmodi00/sahayak-backend/shared"
	"github.com/gocolly/colly/v2"
	"github.com/sirupsen/logrus"
)

// MaxPageTextRunes caps text taken from a single page before it reaches the extraction prompt
const MaxPageTextRunes = 20000

// ContentFetcher loads the readable text of a scheme page
type ContentFetcher interface {
	FetchText(ctx context.Context, url string) (string, error)
}

// PageTextFetcher downloads static HTML with colly and reads text with goquery
type PageTextFetcher struct {
	timeout     time.Duration
	rateLimiter *shared.HTTPRequestRateLimiter
}

func NewPageTextFetcher(timeout, politenessDelay time.Duration) *PageTextFetcher {
	return &PageTextFetcher{
		timeout:     timeout,
		rateLimiter: shared.NewHTTPRequestRateLimiter(politenessDelay),
	}
}

func (f *PageTextFetcher) FetchText(ctx context.Context, url string) (string, error) {
	if err := f.rateLimiter.Wait(ctx); err != nil {
		return "", err
	}

	logger := logrus.WithFields(logrus.Fields{
		"component": "PageTextFetcher",
		"url":       url,
	})

	c := colly.NewCollector(
		colly.UserAgent(shared.BrowserUserAgent),
		colly.StdlibContext(ctx),
	)
	c.SetRequestTimeout(f.timeout)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "text/html,application/xhtml+xml")
		r.Headers.Set("Accept-Language", "en-IN,en;q=0.9,hi;q=0.8")
	})

	var text string
	var parseErr error
	c.OnResponse(func(r *colly.Response) {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(r.Body)))
		if err != nil {
			parseErr = fmt.Errorf("failed to parse page: %w", err)
			return
		}
		text = ExtractReadableText(doc)
	})

	var fetchErr error
	c.OnError(func(r *colly.Response, err error) {
		fetchErr = fmt.Errorf("fetch failed with status %d: %w", r.StatusCode, err)
	})

	if err := c.Visit(url); err != nil && fetchErr == nil {
		fetchErr = err
	}
	c.Wait()

	if fetchErr != nil {
		logger.WithError(fetchErr).Warn("Page fetch failed")
		return "", fetchErr
	}
	if parseErr != nil {
		return "", parseErr
	}

	logger.WithField("chars", len(text)).Debug("Fetched page text")
	return text, nil
}

// ExtractReadableText prefers main or article content and drops navigation and scripts
func ExtractReadableText(doc *goquery.Document) string {
	doc.Find("script, style, noscript, nav, header, footer, iframe, svg").Remove()

	var root *goquery.Selection
	for _, selector := range []string{"main", "article", "[role=main]", "body"} {
		if sel := doc.Find(selector).First(); sel.Length() > 0 {
			root = sel
			break
		}
	}
	if root == nil {
		root = doc.Selection
	}

	return TruncateRunes(CleanScrapedText(root.Text()), MaxPageTextRunes)
}

// RenderedPageFetcher runs headless Chrome for pages that build their content with JavaScript
type RenderedPageFetcher struct {
	timeout time.Duration
}

func NewRenderedPageFetcher(timeout time.Duration) *RenderedPageFetcher {
	return &RenderedPageFetcher{timeout: timeout}
}

func (f *RenderedPageFetcher) FetchText(ctx context.Context, url string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.UserAgent(shared.BrowserUserAgent),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	browserCtx, cancel := context.WithTimeout(browserCtx, f.timeout)
	defer cancel()

	var text string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Evaluate(`document.body ? document.body.innerText : ""`, &text),
	)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"component": "RenderedPageFetcher",
			"url":       url,
		}).WithError(err).Warn("Rendered page fetch failed")
		return "", fmt.Errorf("failed to render page: %w", err)
	}

	return TruncateRunes(NormalizeTextContent(text), MaxPageTextRunes), nil
}
