package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// DefaultAPIURL is the public quotable endpoint the client tries first.
const DefaultAPIURL = "https://api.quotable.io/random"

const requestTimeout = 3 * time.Second

// Quote is a motivational quote served to the frontend.
type Quote struct {
	Content string `json:"content"`
	Author  string `json:"author"`
	Tag     string `json:"tag"`
	Source  string `json:"source"`
}

// Client fetches quotes from the remote API with a local fallback. A failed
// fetch never surfaces to the caller.
type Client struct {
	http   *http.Client
	apiURL string
	logger *slog.Logger
}

// New builds a quote client. An empty apiURL selects the public API.
func New(apiURL string, logger *slog.Logger) *Client {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		http:   &http.Client{Timeout: requestTimeout},
		apiURL: apiURL,
		logger: logger,
	}
}

// Random returns a quote. One bounded attempt against the API; any failure
// falls back to the local list.
func (c *Client) Random(ctx context.Context) Quote {
	q, err := c.fetch(ctx)
	if err != nil {
		c.logger.Warn("quote fetch failed, serving local quote", slog.String("error", err.Error()))
		return localQuote(time.Now())
	}
	return q
}

func (c *Client) fetch(ctx context.Context) (Quote, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL, nil)
	if err != nil {
		return Quote{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Quote{}, fmt.Errorf("fetch quote: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Quote{}, fmt.Errorf("quote api status %d", resp.StatusCode)
	}

	var payload struct {
		Content string   `json:"content"`
		Author  string   `json:"author"`
		Tags    []string `json:"tags"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Quote{}, fmt.Errorf("decode quote: %w", err)
	}
	if payload.Content == "" {
		return Quote{}, fmt.Errorf("quote api returned empty content")
	}

	tag := "inspiration"
	if len(payload.Tags) > 0 {
		tag = payload.Tags[0]
	}
	return Quote{
		Content: payload.Content,
		Author:  payload.Author,
		Tag:     tag,
		Source:  "quotable_api",
	}, nil
}

// localQuote picks from the fallback list, rotating once per hour so the
// endpoint does not look frozen when the API is unreachable.
func localQuote(now time.Time) Quote {
	q := fallbackQuotes[int(now.Unix()/3600)%len(fallbackQuotes)]
	q.Source = "local_cache"
	return q
}

var fallbackQuotes = []Quote{
	{Content: "Life is what happens when you're busy making other plans.", Author: "John Lennon", Tag: "Famous Quotes"},
	{Content: "The only way to do great work is to love what you do.", Author: "Steve Jobs", Tag: "Famous Quotes"},
	{Content: "Success is not final, failure is not fatal: it is the courage to continue that counts.", Author: "Winston Churchill", Tag: "Famous Quotes"},
	{Content: "The future belongs to those who believe in the beauty of their dreams.", Author: "Eleanor Roosevelt", Tag: "Famous Quotes"},
	{Content: "Be yourself; everyone else is already taken.", Author: "Oscar Wilde", Tag: "Famous Quotes"},
	{Content: "The greatest glory in living lies not in never falling, but in rising every time we fall.", Author: "Nelson Mandela", Tag: "Famous Quotes"},
	{Content: "The way to get started is to quit talking and begin doing.", Author: "Walt Disney", Tag: "Famous Quotes"},
	{Content: "Your time is limited, so don't waste it living someone else's life.", Author: "Steve Jobs", Tag: "Famous Quotes"},
	{Content: "The only impossible journey is the one you never begin.", Author: "Tony Robbins", Tag: "Famous Quotes"},
	{Content: "It is during our darkest moments that we must focus to see the light.", Author: "Aristotle", Tag: "Famous Quotes"},
	{Content: "The best time to plant a tree was 20 years ago. The second best time is now.", Author: "Chinese Proverb", Tag: "Famous Quotes"},
	{Content: "In the midst of winter, I found there was, within me, an invincible summer.", Author: "Albert Camus", Tag: "Famous Quotes"},
}
