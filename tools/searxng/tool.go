package searxng

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/bububa/research-crew/components"
	"github.com/bububa/research-crew/schema"
	"github.com/bububa/research-crew/tools"
)

type Category = string

const (
	EmptyCategory       Category = ""
	GeneralCategory     Category = "general"
	NewsCategory        Category = "news"
	SocialMediaCategory Category = "social_media"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Input Schema for input to a tool for searching for information, news, references, and other content using SearxNG.
// Returns a list of search results with a short description or content snippet and URLs for further exploration
type Input struct {
	schema.Base
	// Queries list of search queries.
	Queries []string `json:"queries" jsonschema:"title=queries,description=List of search queries." validate:"required,min=1,dive,required"`
	// Category: Category of the search queries."
	Category Category `json:"category,omitempty" jsonschema:"title=category,enum=general,enum=news,enum=social_media,default=general,description=Category of the search queries."`
}

func NewInput(category Category, queries []string) *Input {
	return &Input{
		Queries:  queries,
		Category: category,
	}
}

// SearchResultItem represents a single search result item
type SearchResultItem struct {
	schema.Base
	// URL The URL of the search result
	URL string `json:"url" jsonschema:"title=url,description=The URL of the search result"`
	// Title The title of the search result
	Title string `json:"title" jsonschema:"title=title,description=The title of the search result"`
	// Content The content snippet of the search result
	Content string `json:"content,omitempty" jsonschema:"title=content,description=The content snippet of the search result"`
	// Query The query used to obtain this search result
	Query         string   `json:"query,omitempty" jsonschema:"title=query,description=The query used to obtain this search result"`
	Category      Category `json:"category,omitempty"`
	Metadata      string   `json:"metadata,omitempty"`
	PublishedDate string   `json:"publishedDate,omitempty"`
}

// SearchResponse represents the entire response from the search engine
type SearchResponse struct {
	Query           string             `json:"query"`
	NumberOfResults int                `json:"number_of_results"`
	Results         []SearchResultItem `json:"results"`
}

// Output represents the output of the SearxNG search tool.
type Output struct {
	schema.Base
	// Results List of search result items
	Results []SearchResultItem `json:"results,omitempty" jsonschema:"title=results,description=List of search result items"`
	// Category The category of the search results
	Category Category `json:"category,omitempty" jsonschema:"title=category,enum=general,enum=news,enum=social_media,default=general,description=Category of the search results."`
}

func (s Output) String() string {
	if len(s.Results) == 0 {
		return "No results found."
	}
	var b strings.Builder
	b.WriteString("Search results:\n")
	for _, r := range s.Results {
		fmt.Fprintf(&b, "---\nTitle: %s\nLink: %s\nSnippet: %s\n", r.Title, r.URL, r.Content)
		if r.PublishedDate != "" {
			fmt.Fprintf(&b, "Published: %s\n", r.PublishedDate)
		}
	}
	return strings.TrimSpace(b.String())
}

type Config struct {
	tools.Config
	language   string
	engines    string
	baseURL    string
	maxResults int
	httpClient *http.Client
}

// SearxngSearch is a tool for performing searches on SearxNG based on the provided queries and category.
type SearxngSearch struct {
	Config
}

var _ tools.AnonymousTool = (*SearxngSearch)(nil)

func New(opts ...Option) *SearxngSearch {
	ret := new(SearxngSearch)
	for _, opt := range opts {
		opt(&ret.Config)
	}
	if ret.Title() == "" {
		ret.SetTitle("search_the_internet")
	}
	if ret.Description() == "" {
		ret.SetDescription("Searches the internet with SearxNG and returns results with urls and content snippets.")
	}
	if ret.maxResults <= 0 {
		ret.maxResults = DefaultMaxResults
	}
	if ret.engines == "" {
		ret.engines = DefaultEngines
	}
	if ret.httpClient == nil {
		ret.httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return ret
}

func (t *SearxngSearch) Definition() components.ToolDefinition {
	return t.Config.Definition(new(Input))
}

func (t *SearxngSearch) RunAnonymous(ctx context.Context, input any) (any, error) {
	in, err := tools.DecodeInput[Input](input)
	if err != nil {
		return nil, err
	}
	return t.Run(ctx, in)
}

// Run runs every query concurrently and merges the results in query order
func (t *SearxngSearch) Run(ctx context.Context, input *Input) (*Output, error) {
	t.OnStart(ctx, t, input)
	out, err := t.run(ctx, input)
	if err != nil {
		t.OnError(ctx, t, input, err)
		return nil, err
	}
	t.OnEnd(ctx, t, input, out)
	return out, nil
}

func (t *SearxngSearch) run(ctx context.Context, input *Input) (*Output, error) {
	if err := validate.Struct(input); err != nil {
		return nil, fmt.Errorf("invalid search input: %w", err)
	}
	batches := make([][]SearchResultItem, len(input.Queries))
	g, gctx := errgroup.WithContext(ctx)
	for idx, query := range input.Queries {
		g.Go(func() error {
			items, err := t.fetchSearchResults(gctx, query, input.Category)
			if err != nil {
				return err
			}
			batches[idx] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	results := make([]SearchResultItem, 0, t.maxResults)
	for _, items := range batches {
		for _, item := range items {
			if item.URL == "" || item.Title == "" {
				continue
			}
			if _, ok := seen[item.URL]; ok {
				continue
			}
			seen[item.URL] = struct{}{}
			results = append(results, item)
		}
	}
	if len(results) > t.maxResults {
		results = results[:t.maxResults]
	}
	return &Output{Results: results, Category: input.Category}, nil
}

// fetchSearchResults queries the search engine and returns the parsed search response
func (t *SearxngSearch) fetchSearchResults(ctx context.Context, query string, category Category) ([]SearchResultItem, error) {
	values := url.Values{}
	values.Set("q", query)
	values.Set("safesearch", "0")
	values.Set("format", "json")
	values.Set("engines", t.engines)
	if t.language != "" {
		values.Set("language", t.language)
	}
	if category != "" {
		values.Set("categories", category)
	}
	searchURL := fmt.Sprintf("%s/search?%s", strings.TrimRight(t.baseURL, "/"), values.Encode())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, err
	}

	httpResp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("error querying search engine: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("non-200 response from search engine: %d", httpResp.StatusCode)
	}

	var searchResponse SearchResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&searchResponse); err != nil {
		return nil, err
	}
	for idx := range searchResponse.Results {
		if searchResponse.Results[idx].Query == "" {
			searchResponse.Results[idx].Query = query
		}
	}

	return searchResponse.Results, nil
}
