package serper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/bububa/research-crew/components"
	"github.com/bububa/research-crew/schema"
	"github.com/bububa/research-crew/tools"
)

// ErrMissingAPIKey is returned by New when no serper api key is configured
var ErrMissingAPIKey = errors.New("serper: missing api key")

var validate = validator.New(validator.WithRequiredStructEnabled())

// Input schema for a google search through serper.dev
type Input struct {
	schema.Base
	// Query is the search query
	Query string `json:"query" jsonschema:"title=query,description=The search query to look up on the internet." validate:"required"`
	// NumResults overrides the number of results to return
	NumResults int `json:"num_results,omitempty" jsonschema:"title=num_results,description=Number of results to return." validate:"gte=0,lte=100"`
}

func NewInput(query string) *Input {
	return &Input{Query: query}
}

// Result is an organic search result
type Result struct {
	Title    string `json:"title"`
	Link     string `json:"link"`
	Snippet  string `json:"snippet,omitempty"`
	Position int    `json:"position,omitempty"`
	Date     string `json:"date,omitempty"`
}

// AnswerBox is the direct answer google shows above the results
type AnswerBox struct {
	Title   string `json:"title,omitempty"`
	Answer  string `json:"answer,omitempty"`
	Snippet string `json:"snippet,omitempty"`
}

// Output of the serper search tool
type Output struct {
	schema.Base
	Query     string     `json:"query"`
	AnswerBox *AnswerBox `json:"answer_box,omitempty"`
	Results   []Result   `json:"results"`
}

// String renders the results the way the agents read them
func (s Output) String() string {
	var b strings.Builder
	if box := s.AnswerBox; box != nil {
		answer := box.Answer
		if answer == "" {
			answer = box.Snippet
		}
		if answer != "" {
			fmt.Fprintf(&b, "Answer: %s\n\n", answer)
		}
	}
	if len(s.Results) == 0 {
		b.WriteString("No results found.")
		return b.String()
	}
	b.WriteString("Search results:\n")
	for _, r := range s.Results {
		fmt.Fprintf(&b, "---\nTitle: %s\nLink: %s\nSnippet: %s\n", r.Title, r.Link, r.Snippet)
	}
	return strings.TrimSpace(b.String())
}

type searchRequest struct {
	Q   string `json:"q"`
	Num int    `json:"num,omitempty"`
	GL  string `json:"gl,omitempty"`
	HL  string `json:"hl,omitempty"`
}

type searchResponse struct {
	AnswerBox *AnswerBox `json:"answerBox,omitempty"`
	Organic   []Result   `json:"organic"`
	Message   string     `json:"message,omitempty"`
}

type Config struct {
	tools.Config
	apiKey     string
	baseURL    string
	country    string
	locale     string
	maxResults int
	httpClient *http.Client
}

// Search is the internet search tool the research and fact checking agents share
type Search struct {
	Config
}

var _ tools.AnonymousTool = (*Search)(nil)

// New returns a Search, reading SERPER_API_KEY unless WithAPIKey is given
func New(opts ...Option) (*Search, error) {
	ret := new(Search)
	ret.apiKey = os.Getenv(APIKeyEnv)
	for _, opt := range opts {
		opt(&ret.Config)
	}
	if ret.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if ret.Title() == "" {
		ret.SetTitle("search_the_internet")
	}
	if ret.Description() == "" {
		ret.SetDescription("Searches the internet with google and returns the most relevant results.")
	}
	if ret.baseURL == "" {
		ret.baseURL = DefaultBaseURL
	}
	if ret.maxResults <= 0 {
		ret.maxResults = DefaultMaxResults
	}
	if ret.httpClient == nil {
		ret.httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return ret, nil
}

func (t *Search) Definition() components.ToolDefinition {
	return t.Config.Definition(new(Input))
}

// Run searches google through serper.dev
func (t *Search) Run(ctx context.Context, input *Input) (*Output, error) {
	t.OnStart(ctx, t, input)
	out, err := t.run(ctx, input)
	if err != nil {
		t.OnError(ctx, t, input, err)
		return nil, err
	}
	t.OnEnd(ctx, t, input, out)
	return out, nil
}

func (t *Search) RunAnonymous(ctx context.Context, input any) (any, error) {
	in, err := tools.DecodeInput[Input](input)
	if err != nil {
		return nil, err
	}
	return t.Run(ctx, in)
}

func (t *Search) run(ctx context.Context, input *Input) (*Output, error) {
	if err := validate.Struct(input); err != nil {
		return nil, fmt.Errorf("invalid search input: %w", err)
	}
	num := input.NumResults
	if num <= 0 || num > t.maxResults {
		num = t.maxResults
	}
	body, err := json.Marshal(searchRequest{Q: input.Query, Num: num, GL: t.country, HL: t.locale})
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("X-API-KEY", t.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpResp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("error querying serper: %w", err)
	}
	defer httpResp.Body.Close()

	var resp searchResponse
	decodeErr := json.NewDecoder(httpResp.Body).Decode(&resp)
	if httpResp.StatusCode != http.StatusOK {
		if resp.Message != "" {
			return nil, fmt.Errorf("non-200 response from serper: %d %s", httpResp.StatusCode, resp.Message)
		}
		return nil, fmt.Errorf("non-200 response from serper: %d", httpResp.StatusCode)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode serper response: %w", decodeErr)
	}
	results := resp.Organic
	if len(results) > num {
		results = results[:num]
	}
	return &Output{Query: input.Query, AnswerBox: resp.AnswerBox, Results: results}, nil
}
