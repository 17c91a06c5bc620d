package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/nao1215/riskbrief/internal/model"
)

const (
	// tavilyEndpoint is the public Tavily search endpoint.
	tavilyEndpoint = "https://api.tavily.com/search"

	// tavilyMaxResults is the largest max_results Tavily accepts.
	tavilyMaxResults = 20
)

// Tavily calls the Tavily search API.
type Tavily struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// NewTavily constructs a Tavily search provider. An empty endpoint selects
// the public API; a nil client selects http.DefaultClient.
func NewTavily(apiKey, endpoint string, client *http.Client) *Tavily {
	if endpoint == "" {
		endpoint = tavilyEndpoint
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Tavily{apiKey: strings.TrimSpace(apiKey), endpoint: endpoint, client: client}
}

// Name returns "tavily".
func (t *Tavily) Name() string { return "tavily" }

// tavilyRequest is the JSON body of a search call.
type tavilyRequest struct {
	Query          string   `json:"query"`
	Topic          string   `json:"topic"`
	SearchDepth    string   `json:"search_depth"`
	MaxResults     int      `json:"max_results"`
	IncludeDomains []string `json:"include_domains,omitempty"`
}

// tavilyResponse is the part of the response riskbrief reads.
type tavilyResponse struct {
	Results []struct {
		Title   string  `json:"title"`
		URL     string  `json:"url"`
		Content string  `json:"content"`
		Score   float64 `json:"score"`
	} `json:"results"`
}

// Search posts a query to Tavily.
func (t *Tavily) Search(ctx context.Context, req Request) ([]model.EvidenceItem, error) {
	payload, err := json.Marshal(tavilyRequest{
		Query:          req.Query,
		Topic:          "general",
		SearchDepth:    req.Depth.String(),
		MaxResults:     min(req.MaxResults, tavilyMaxResults),
		IncludeDomains: req.Domains,
	})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+t.apiKey)

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newStatusError(t.Name(), resp.StatusCode, body)
	}

	var decoded tavilyResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	items := make([]model.EvidenceItem, 0, len(decoded.Results))
	for _, r := range decoded.Results {
		items = append(items, model.EvidenceItem{Title: r.Title, URL: r.URL, Snippet: r.Content})
	}
	return items, nil
}
