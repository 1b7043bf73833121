package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/tidwall/gjson"
)

// DefaultSerperURL is the Serper search endpoint.
const DefaultSerperURL = "https://google.serper.dev/search"

const (
	defaultWebTopK    = 5
	maxWebResults     = 10
	defaultWebTimeout = 20 * time.Second
	maxResponseBytes  = 1 << 20
)

type WebSearchInput struct {
	Query string `json:"query" jsonschema_description:"Search query"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"default=5" jsonschema_description:"How many results to return (<=10 recommended)"`
}

// WebSearchItem is one flattened result from the provider.
type WebSearchItem struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
	Source  string `json:"source"`
}

var WebSearchInputSchema = GenerateSchema[WebSearchInput]()

// WebSearch queries the Serper API.
type WebSearch struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

type WebSearchOption func(*WebSearch)

// WithEndpoint overrides the Serper URL.
func WithEndpoint(url string) WebSearchOption {
	return func(w *WebSearch) {
		if url != "" {
			w.endpoint = url
		}
	}
}

// WithHTTPClient replaces the HTTP client. The client's Timeout is the only
// bound on a web_search call.
func WithHTTPClient(c *http.Client) WebSearchOption {
	return func(w *WebSearch) {
		if c != nil {
			w.client = c
		}
	}
}

// NewWebSearch returns the web_search tool. An empty apiKey is allowed; calls
// then fail with a configuration error and no network traffic.
func NewWebSearch(apiKey string, opts ...WebSearchOption) *WebSearch {
	w := &WebSearch{
		apiKey:   apiKey,
		endpoint: DefaultSerperURL,
		client:   &http.Client{Timeout: defaultWebTimeout},
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

func (w *WebSearch) Name() string { return "web_search" }

func (w *WebSearch) Description() string { return "Search the web and return top snippets." }

func (w *WebSearch) Parameters() *jsonschema.Schema { return WebSearchInputSchema }

// Invoke posts {q, num} to Serper and flattens the organic then news blocks
// into at most top_k items.
func (w *WebSearch) Invoke(ctx context.Context, args map[string]any) (Result, error) {
	if w.apiKey == "" {
		return Failf("SERPER_API_KEY missing. Get one at https://serper.dev and export it."), nil
	}
	in, err := DecodeArgs[WebSearchInput](args)
	if err != nil {
		return Failf("%v", err), nil
	}
	if in.Query == "" {
		return Failf("query is required"), nil
	}
	topK := in.TopK
	if topK <= 0 {
		topK = defaultWebTopK
	}

	body, err := json.Marshal(map[string]any{"q": in.Query, "num": clamp(topK, 1, maxWebResults)})
	if err != nil {
		return Result{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("X-API-KEY", w.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return Failf("request failed: %v", err), nil
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Failf("read response: %v", err), nil
	}
	if resp.StatusCode != http.StatusOK {
		return Failf("HTTP %d: %s", resp.StatusCode, string(data)), nil
	}
	if !gjson.ValidBytes(data) {
		return Failf("invalid JSON from search provider"), nil
	}

	items := make([]WebSearchItem, 0, topK)
	for _, block := range []string{"organic", "news"} {
		gjson.GetBytes(data, block).ForEach(func(_, item gjson.Result) bool {
			items = append(items, WebSearchItem{
				Title:   item.Get("title").String(),
				Link:    item.Get("link").String(),
				Snippet: item.Get("snippet").String(),
				Source:  block,
			})
			return true
		})
	}
	if len(items) > topK {
		items = items[:topK]
	}

	return Result{
		Success:  true,
		Output:   items,
		Metadata: map[string]any{"provider": "serper"},
	}, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
