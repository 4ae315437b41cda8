package dataflows

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"github.com/dyike/MoneyScope/internal/logger"
	"github.com/dyike/MoneyScope/internal/models"
)

const maxArticles = 3

// NewsAPIClient searches newsapi.org for forex coverage of a pair.
type NewsAPIClient struct {
	client   *resty.Client
	apiKey   string
	pageSize int
}

func NewNewsAPIClient(baseURL, apiKey string, pageSize int, timeout time.Duration) *NewsAPIClient {
	if baseURL == "" {
		baseURL = "https://newsapi.org"
	}
	if pageSize <= 0 || pageSize > maxArticles {
		pageSize = maxArticles
	}
	return &NewsAPIClient{
		client:   newRestyClient(baseURL, timeout),
		apiKey:   apiKey,
		pageSize: pageSize,
	}
}

func newsQuery(pair models.CurrencyPair) string {
	return fmt.Sprintf("forex %s %s exchange rate", pair.Base, pair.Target)
}

// FetchNews returns at most three articles in the order the API sent them.
func (c *NewsAPIClient) FetchNews(ctx context.Context, pair models.CurrencyPair) models.NewsResult {
	var payload everythingResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":        newsQuery(pair),
			"sortBy":   "publishedAt",
			"language": "en",
			"pageSize": strconv.Itoa(c.pageSize),
			"apiKey":   c.apiKey,
		}).
		SetResult(&payload).
		ForceContentType("application/json").
		Get("/v2/everything")
	if err != nil {
		logger.Log.WithField("pair", pair.String()).Warnf("news request failed: %v", err)
		return models.NewsFailure("%s", err.Error())
	}
	if resp.StatusCode() != http.StatusOK {
		logger.Log.WithField("pair", pair.String()).Warnf("news api status %d", resp.StatusCode())
		return models.NewsFailure("API returned status code %d", resp.StatusCode())
	}
	if msg := payload.failure(); msg != "" {
		logger.Log.WithField("pair", pair.String()).Warn(msg)
		return models.NewsFailure("%s", msg)
	}

	n := min(len(payload.Articles), maxArticles)
	articles := make([]models.Article, 0, n)
	for _, a := range payload.Articles[:n] {
		articles = append(articles, models.Article{
			Title:       a.Title,
			Source:      a.Source.Name,
			PublishedAt: a.PublishedAt,
			URL:         a.URL,
			Description: plainText(a.Description),
		})
	}
	return models.NewsSuccess(articles)
}

// plainText drops any markup NewsAPI leaves in descriptions.
func plainText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
