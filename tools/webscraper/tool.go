package webscraper

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-playground/validator/v10"

	"github.com/bububa/research-crew/components"
	"github.com/bububa/research-crew/schema"
	"github.com/bububa/research-crew/tools"
)

// ErrContentTooLarge is returned when a page exceeds the configured max content length
var ErrContentTooLarge = errors.New("webscraper: content length exceeds maximum")

var (
	validate        = validator.New(validator.WithRequiredStructEnabled())
	blankLinesRegex = regexp.MustCompile(`\r?\n{2,}`)
)

// Input schema for the WebpageScraperTool.
type Input struct {
	schema.Base
	// URL of the webpage to scrape.
	URL string `json:"url,omitempty" jsonschema:"title=url,description=URL of the webpage to scrape." validate:"required,http_url"`
	// IncludeLinks Whether to preserve hyperlinks in the markdown output.
	IncludeLinks bool `json:"include_links,omitempty" jsonschema:"title=include_links,description=Whether to preserve hyperlinks in the markdown output."`
}

func NewInput(link string, includeLinks bool) *Input {
	return &Input{
		URL:          link,
		IncludeLinks: includeLinks,
	}
}

// Metadata Schema for webpage metadata
type Metadata struct {
	// Title is the title of the webpage.
	Title string `json:"title,omitempty" jsonschema:"title=title,description=The title of the webpage."`
	// Author is the author of the webpage content.
	Author string `json:"author,omitempty" jsonschema:"title=author,description=The Author of the webpage."`
	// Description is the meta description of the webpage.
	Description string `json:"description,omitempty" jsonschema:"title=description,description=The meta description of the webpage."`
	// Keywords is the meta keywords of the webpage.
	Keywords string `json:"keywords,omitempty" jsonschema:"title=keywords,description=The meta keywords of the webpage."`
	// SiteName is the name of the website.
	SiteName string `json:"sitename,omitempty" jsonschema:"title=sitename,description=The name of the website."`
	// Domain is the domain name of the website.
	Domain string `json:"domain,omitempty" jsonschema:"title=domain,description=The domain name of the website."`
}

// Output Schema for the output of the WebpageScraperTool.
type Output struct {
	schema.Base
	// Content The scraped content in markdown format.
	Content string `json:"content,omitempty" jsonschema:"title=content,description=The scraped content in markdown format."`
	// Metadata is metadata about the scraped webpage.
	Metadata *Metadata `json:"metadata,omitempty" jsonschema:"title=metadata,description=Metadata about the webpage."`
}

func NewOutput(content string, metadata *Metadata) *Output {
	return &Output{
		Content:  content,
		Metadata: metadata,
	}
}

func (o Output) String() string {
	if o.Metadata == nil || o.Metadata.Title == "" {
		return o.Content
	}
	return fmt.Sprintf("# %s\n\n%s", o.Metadata.Title, o.Content)
}

type Config struct {
	tools.Config
	// userAgent User agent string to use for requests.
	userAgent string
	timeout   time.Duration
	// maxContentLength Maximum content length in bytes to process.
	maxContentLength int64
	httpClient       *http.Client
}

type Webscraper struct {
	Config
}

var _ tools.AnonymousTool = (*Webscraper)(nil)

func New(opts ...Option) *Webscraper {
	ret := new(Webscraper)
	for _, opt := range opts {
		opt(&ret.Config)
	}
	if ret.Title() == "" {
		ret.SetTitle("scrape_website")
	}
	if ret.Description() == "" {
		ret.SetDescription("Fetches a webpage and returns its main content as markdown together with its metadata.")
	}
	if ret.userAgent == "" {
		ret.userAgent = DefaultUserAgent
	}
	if ret.timeout <= 0 {
		ret.timeout = DefaultTimeout
	}
	if ret.maxContentLength <= 0 {
		ret.maxContentLength = DefaultMaxContentLength
	}
	if ret.httpClient == nil {
		ret.httpClient = &http.Client{Timeout: ret.timeout}
	}
	return ret
}

func (t *Webscraper) Definition() components.ToolDefinition {
	return t.Config.Definition(new(Input))
}

func (t *Webscraper) RunAnonymous(ctx context.Context, input any) (any, error) {
	in, err := tools.DecodeInput[Input](input)
	if err != nil {
		return nil, err
	}
	return t.Run(ctx, in)
}

func (t *Webscraper) Run(ctx context.Context, input *Input) (*Output, error) {
	t.OnStart(ctx, t, input)
	out, err := t.run(ctx, input)
	if err != nil {
		t.OnError(ctx, t, input, err)
		return nil, err
	}
	t.OnEnd(ctx, t, input, out)
	return out, nil
}

func (t *Webscraper) run(ctx context.Context, input *Input) (*Output, error) {
	if err := validate.Struct(input); err != nil {
		return nil, fmt.Errorf("invalid scrape input: %w", err)
	}
	parsedURL, err := url.ParseRequestURI(input.URL)
	if err != nil {
		return nil, err
	}
	doc, err := t.fetch(ctx, input)
	if err != nil {
		return nil, err
	}
	meta := &Metadata{Domain: parsedURL.Host}
	t.extractMetadata(doc, meta)
	if !input.IncludeLinks {
		doc.Find("a").Each(func(_ int, s *goquery.Selection) {
			s.ReplaceWithHtml(html.EscapeString(s.Text()))
		})
	}
	mainContent := t.extractMainContent(doc)
	markdown, err := htmltomarkdown.ConvertString(
		mainContent,
		converter.WithDomain(fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)),
	)
	if err != nil {
		return nil, err
	}
	return NewOutput(cleanMarkdownContent(markdown), meta), nil
}

func (t *Webscraper) fetch(ctx context.Context, input *Input) (*goquery.Document, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, input.URL, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("User-Agent", t.userAgent)
	httpReq.Header.Set("Accept", DefaultAccept)
	httpReq.Header.Set("Connection", "keep-alive")
	httpResp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()
	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("non-200 response from %s: %d", input.URL, httpResp.StatusCode)
	}
	if httpResp.ContentLength > t.maxContentLength {
		return nil, fmt.Errorf("%w of %d bytes", ErrContentTooLarge, t.maxContentLength)
	}
	body, err := io.ReadAll(io.LimitReader(httpResp.Body, t.maxContentLength+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > t.maxContentLength {
		return nil, fmt.Errorf("%w of %d bytes", ErrContentTooLarge, t.maxContentLength)
	}
	return goquery.NewDocumentFromReader(strings.NewReader(string(body)))
}

// Extracts metadata from the webpage
func (t *Webscraper) extractMetadata(doc *goquery.Document, meta *Metadata) {
	meta.Title = strings.TrimSpace(doc.Find("head title").First().Text())
	meta.Author, _ = doc.Find("meta[name='author']").Attr("content")
	meta.Description, _ = doc.Find("meta[name='description']").Attr("content")
	meta.Keywords, _ = doc.Find("meta[name='keywords']").Attr("content")
	meta.SiteName, _ = doc.Find("meta[property='og:site_name']").Attr("content")
}

// extractMainContent extracts the main content from the webpage using custom heuristics
func (t *Webscraper) extractMainContent(doc *goquery.Document) string {
	for _, tag := range []string{"script", "style", "nav", "header", "footer", "noscript", "iframe"} {
		doc.Find(tag).Remove()
	}
	contentCandidates := []string{
		"main",
		"#content, #main",
		".content, .main",
		"article",
		"body",
	}
	for _, selector := range contentCandidates {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		if txt, err := sel.Html(); err == nil && strings.TrimSpace(txt) != "" {
			return txt
		}
	}
	mainContent, _ := doc.Html()
	return mainContent
}

// cleanMarkdownContent removes excessive whitespace and normalizes formatting
func cleanMarkdownContent(content string) string {
	content = blankLinesRegex.ReplaceAllString(content, "\n\n")
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n")) + "\n"
}
