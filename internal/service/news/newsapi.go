package news

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"

	"IndexPulse/internal/domain/models"
	domservice "IndexPulse/internal/domain/service"
	xhttp "IndexPulse/pkg/http"
	applogger "IndexPulse/pkg/logger"
)

// Client fetches headlines from the NewsAPI everything endpoint. Without
// an API key it degrades to deterministic synthetic headlines so the
// sentiment pipeline keeps working in development.
type Client struct {
	baseURL  string
	apiKey   string
	pageSize int
	client   *xhttp.Client
	l        *applogger.Logger
	now      func() time.Time
}

type Option func(*Client)

// WithBaseURL overrides the API base URL (used in tests).
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithAPIKey sets the upstream credential. Empty enables mock mode.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithPageSize bounds the number of returned articles.
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithLogger injects a structured logger.
func WithLogger(l *applogger.Logger) Option {
	return func(c *Client) { c.l = l }
}

func NewClient(httpClient *xhttp.Client, opts ...Option) *Client {
	c := &Client{
		baseURL:  "https://newsapi.org/v2",
		pageSize: 20,
		client:   httpClient,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type newsResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Articles []struct {
		Title  string `json:"title"`
		URL    string `json:"url"`
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		PublishedAt time.Time `json:"publishedAt"`
	} `json:"articles"`
}

func (c *Client) Fetch(ctx context.Context, query string) ([]models.Article, error) {
	if c.apiKey == "" {
		if c.l != nil {
			c.l.Debug("news api key absent, serving synthetic headlines",
				applogger.String("query", query),
			)
		}
		return c.mockArticles(query), nil
	}

	var resp newsResponse
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/everything",
		Headers: map[string]string{
			"X-Api-Key": c.apiKey,
		},
		QueryParams: map[string][]string{
			"q":        {query},
			"language": {"en"},
			"sortBy":   {"publishedAt"},
			"pageSize": {fmt.Sprintf("%d", c.pageSize)},
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("news fetch %q: %w", query, err)
	}
	if resp.Status != "ok" {
		return nil, fmt.Errorf("news fetch %q: upstream status %s: %s", query, resp.Status, resp.Message)
	}

	articles := make([]models.Article, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		if a.Title == "" {
			continue
		}
		articles = append(articles, models.Article{
			Title:       a.Title,
			Source:      a.Source.Name,
			PublishedAt: a.PublishedAt,
			URL:         a.URL,
		})
	}
	return articles, nil
}

// mockTemplates rotates a mix of positive, negative and neutral headline
// shapes so aggregation over synthetic data stays plausible.
var mockTemplates = []string{
	"%s rallies as investors cheer earnings beat",
	"%s slides on rate hike concerns",
	"%s little changed ahead of economic data",
	"Analysts raise targets for %s after strong quarter",
	"%s drops amid global selloff fears",
	"%s steady as traders await central bank decision",
	"Optimism lifts %s to weekly high",
	"Profit taking drags %s lower",
}

// mockArticles derives a stable headline set from the query so repeated
// runs produce identical sentiment.
func (c *Client) mockArticles(query string) []models.Article {
	h := fnv.New32a()
	h.Write([]byte(query))
	seed := int(h.Sum32())

	n := 6
	if c.pageSize < n {
		n = c.pageSize
	}
	now := c.now()
	out := make([]models.Article, 0, n)
	for i := 0; i < n; i++ {
		tpl := mockTemplates[(seed+i)%len(mockTemplates)]
		out = append(out, models.Article{
			Title:       fmt.Sprintf(tpl, query),
			Source:      "synthetic",
			PublishedAt: now.Add(-time.Duration(i) * time.Hour),
			URL:         "",
		})
	}
	return out
}

var _ domservice.NewsSource = (*Client)(nil)
