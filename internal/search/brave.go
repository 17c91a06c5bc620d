package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/nao1215/riskbrief/internal/model"
)

const (
	// braveEndpoint is the public Brave web search endpoint.
	braveEndpoint = "https://api.search.brave.com/res/v1/web/search"

	// braveMaxCount is the largest count Brave accepts.
	braveMaxCount = 20
)

// Brave uses the Brave Search API. An API key is required via X-Subscription-Token.
type Brave struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// NewBrave constructs a Brave search provider. An empty endpoint selects
// the public API; a nil client selects http.DefaultClient.
func NewBrave(apiKey, endpoint string, client *http.Client) *Brave {
	if endpoint == "" {
		endpoint = braveEndpoint
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Brave{apiKey: strings.TrimSpace(apiKey), endpoint: endpoint, client: client}
}

// Name returns "brave".
func (b *Brave) Name() string { return "brave" }

type braveResponse struct {
	Web struct {
		Results []struct {
			Title         string   `json:"title"`
			URL           string   `json:"url"`
			Description   string   `json:"description"`
			ExtraSnippets []string `json:"extra_snippets"`
		} `json:"results"`
	} `json:"web"`
}

// BraveQuery appends site: operators for the allow-list to the query.
func BraveQuery(query string, domains []string) string {
	switch len(domains) {
	case 0:
		return query
	case 1:
		return query + " site:" + domains[0]
	}
	sites := make([]string, len(domains))
	for i, d := range domains {
		sites[i] = "site:" + d
	}
	return query + " (" + strings.Join(sites, " OR ") + ")"
}

// Search runs a Brave web search.
func (b *Brave) Search(ctx context.Context, req Request) ([]model.EvidenceItem, error) {
	endpoint, err := url.Parse(b.endpoint)
	if err != nil {
		return nil, errors.New("invalid brave search endpoint")
	}
	count := req.MaxResults
	if count > braveMaxCount {
		count = braveMaxCount
	}
	q := endpoint.Query()
	q.Set("q", BraveQuery(req.Query, req.Domains))
	q.Set("count", strconv.Itoa(count))
	if req.Depth == model.DepthAdvanced {
		q.Set("extra_snippets", "true")
	}
	endpoint.RawQuery = q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Subscription-Token", b.apiKey)

	resp, err := b.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newStatusError(b.Name(), resp.StatusCode, body)
	}

	var decoded braveResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	items := make([]model.EvidenceItem, 0, len(decoded.Web.Results))
	for _, r := range decoded.Web.Results {
		snippet := r.Description
		if len(r.ExtraSnippets) > 0 {
			snippet += " " + strings.Join(r.ExtraSnippets, " ")
		}
		items = append(items, model.EvidenceItem{Title: r.Title, URL: r.URL, Snippet: snippet})
	}
	return items, nil
}
