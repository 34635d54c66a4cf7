package currency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/bububa/research-crew/components"
	"github.com/bububa/research-crew/schema"
	"github.com/bububa/research-crew/tools"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Input schema for the currency converter tool
type Input struct {
	schema.Base
	// Amount is the amount to convert
	Amount float64 `json:"amount" jsonschema:"title=amount,description=The amount to convert" validate:"gt=0"`
	// FromCurrency is the source currency code
	FromCurrency string `json:"from_currency" jsonschema:"title=from_currency,description=The source currency code such as USD" validate:"required,len=3,alpha"`
	// ToCurrency is the target currency code
	ToCurrency string `json:"to_currency" jsonschema:"title=to_currency,description=The target currency code such as EUR" validate:"required,len=3,alpha"`
}

func NewInput(amount float64, from string, to string) *Input {
	return &Input{
		Amount:       amount,
		FromCurrency: from,
		ToCurrency:   to,
	}
}

func (s Input) String() string {
	bs, _ := json.Marshal(s)
	return string(bs)
}

// Output is the human readable conversion result, success or failure alike
type Output struct {
	schema.Base
	Result string `json:"result" jsonschema:"title=result,description=The conversion result or a failure message"`
}

func (s Output) String() string {
	return s.Result
}

type Config struct {
	tools.Config
	apiKey     string
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	retry      RetryPolicy
	cache      Cache
	cacheSet   bool
	cacheTTL   time.Duration
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// Tool converts an amount between currencies using exchangerate-api
type Tool struct {
	Config
	group singleflight.Group
}

var _ tools.AnonymousTool = (*Tool)(nil)

// New returns a currency converter.
// The api key is read once from EXCHANGE_RATE_API_KEY unless WithAPIKey is given,
// and a missing key fails here rather than on the first call.
func New(opts ...Option) (*Tool, error) {
	ret := new(Tool)
	ret.apiKey = os.Getenv(APIKeyEnv)
	ret.retry = DefaultRetryPolicy()
	for _, opt := range opts {
		opt(&ret.Config)
	}
	if ret.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if ret.Title() == "" {
		ret.SetTitle("currency_converter")
	}
	if ret.Description() == "" {
		ret.SetDescription("Converts an amount from one currency to another")
	}
	if ret.baseURL == "" {
		ret.baseURL = DefaultBaseURL
	}
	if ret.httpClient == nil {
		ret.httpClient = new(http.Client)
	}
	if ret.timeout <= 0 {
		ret.timeout = DefaultTimeout
	}
	if !ret.cacheSet {
		ret.cache = NewMemoryCache()
	}
	if ret.cacheTTL <= 0 {
		ret.cacheTTL = DefaultCacheTTL
	}
	if ret.limiter == nil {
		ret.limiter = rate.NewLimiter(rate.Limit(DefaultRateLimit), 1)
	}
	if ret.logger == nil {
		ret.logger = zap.NewNop()
	}
	return ret, nil
}

// Definition implements tools.AnonymousTool
func (t *Tool) Definition() components.ToolDefinition {
	return t.Config.Definition(new(Input))
}

// Convert returns "{amount} {from} is equivalent to {converted} {to}".
// Currency codes are trimmed and upper-cased before the lookup, so the
// messages echo the normalized codes. Failures are reported as messages, never as errors.
func (t *Tool) Convert(ctx context.Context, amount float64, fromCurrency string, toCurrency string) string {
	from, to := NormalizeCode(fromCurrency), NormalizeCode(toCurrency)
	converted, err := t.convert(ctx, amount, from, to)
	if errors.Is(err, ErrInvalidCurrency) {
		t.logger.Info("unknown target currency", zap.String("from", from), zap.String("to", to))
		return InvalidCurrencyMessage(to)
	} else if err != nil {
		t.logger.Warn("fetch exchange rates failed", zap.String("from", from), zap.Error(err))
		return FailedFetchMessage
	}
	return fmt.Sprintf("%s %s is equivalent to %.2f %s", strconv.FormatFloat(amount, 'f', -1, 64), from, converted, to)
}

// Run validates the input and performs the conversion.
// The returned error is only set when the input violates the schema.
func (t *Tool) Run(ctx context.Context, input *Input) (*Output, error) {
	t.OnStart(ctx, t, input)
	if err := validate.Struct(input); err != nil {
		err = fmt.Errorf("invalid currency converter input: %w", err)
		t.OnError(ctx, t, input, err)
		return nil, err
	}
	out := &Output{Result: t.Convert(ctx, input.Amount, input.FromCurrency, input.ToCurrency)}
	t.OnEnd(ctx, t, input, out)
	return out, nil
}

// RunAnonymous implements tools.AnonymousTool
func (t *Tool) RunAnonymous(ctx context.Context, input any) (any, error) {
	in, err := tools.DecodeInput[Input](input)
	if err != nil {
		return nil, err
	}
	return t.Run(ctx, in)
}

func (t *Tool) convert(ctx context.Context, amount float64, from string, to string) (float64, error) {
	table, err := t.rates(ctx, from)
	if err != nil {
		return 0, err
	}
	factor, ok := table.Rate(to)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrInvalidCurrency, to)
	}
	return amount * factor, nil
}

// rates returns the rate table for base, served from cache when possible.
// Concurrent lookups of the same base share one request.
func (t *Tool) rates(ctx context.Context, base string) (*RateTable, error) {
	if t.cache != nil {
		if table, ok, err := t.cache.Get(ctx, base); err != nil {
			t.logger.Warn("read rates cache failed", zap.String("base", base), zap.Error(err))
		} else if ok {
			return table, nil
		}
	}
	// the shared fetch outlives any single caller, t.timeout still bounds it
	fetchCtx := context.WithoutCancel(ctx)
	ch := t.group.DoChan(base, func() (any, error) {
		return t.fetch(fetchCtx, base)
	})
	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}
	table := res.Val.(*RateTable)
	if t.cache != nil && table.ConversionRates != nil {
		ttl := table.expiresIn(time.Now(), t.cacheTTL)
		if err := t.cache.Set(ctx, base, table, ttl); err != nil {
			t.logger.Warn("write rates cache failed", zap.String("base", base), zap.Error(err))
		}
	}
	return table, nil
}

func (t *Tool) fetch(ctx context.Context, base string) (*RateTable, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	var table *RateTable
	err := t.retry.do(ctx, func(ctx context.Context) error {
		if err := t.limiter.Wait(ctx); err != nil {
			return err
		}
		ret, err := t.fetchOnce(ctx, base)
		if err != nil {
			return err
		}
		table = ret
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrServiceUnavailable) {
			err = fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
		}
		return nil, err
	}
	return table, nil
}

func (t *Tool) fetchOnce(ctx context.Context, base string) (*RateTable, error) {
	// the api key is part of the path, keep it out of logs
	endpoint := fmt.Sprintf("%s/%s/latest/%s", t.baseURL, url.PathEscape(t.apiKey), url.PathEscape(base))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	httpResp, err := t.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, retryableError{err: fmt.Errorf("request exchange rates: %w", err)}
	}
	defer httpResp.Body.Close()

	table := new(RateTable)
	decodeErr := json.NewDecoder(httpResp.Body).Decode(table)
	if httpResp.StatusCode != http.StatusOK {
		statusErr := StatusError{StatusCode: httpResp.StatusCode, ErrorType: table.ErrorType}
		if statusErr.retryable() {
			return nil, retryableError{err: statusErr}
		}
		return nil, statusErr
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("%w: decode rates: %w", ErrServiceUnavailable, decodeErr)
	}
	return table, nil
}
