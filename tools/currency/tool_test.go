package currency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/atomic"

	"github.com/bububa/research-crew/tools"
)

const testAPIKey = "test-key"

func fastRetry(attempts int) RetryPolicy {
	return RetryPolicy{MaxAttempts: attempts, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
}

func newRatesServer(t *testing.T, calls *atomic.Int32, handler func(w http.ResponseWriter, r *http.Request)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			calls.Inc()
		}
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeRates(w http.ResponseWriter, base string, rates map[string]float64) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(RateTable{
		Result:          "success",
		BaseCode:        base,
		ConversionRates: rates,
	})
}

func newTestTool(t *testing.T, srv *httptest.Server, opts ...Option) *Tool {
	t.Helper()
	base := []Option{
		WithAPIKey(testAPIKey),
		WithBaseURL(srv.URL),
		WithRateLimit(0, 0),
		WithRetryPolicy(fastRetry(3)),
	}
	tool, err := New(append(base, opts...)...)
	if err != nil {
		t.Fatal(err)
	}
	return tool
}

func TestConvert(t *testing.T) {
	var path string
	srv := newRatesServer(t, nil, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		writeRates(w, "USD", map[string]float64{"USD": 1, "EUR": 0.92})
	})
	tool := newTestTool(t, srv)
	got := tool.Convert(context.Background(), 100, "USD", "EUR")
	if expect := "100 USD is equivalent to 92.00 EUR"; got != expect {
		t.Errorf("expect %q, but got %q", expect, got)
	}
	if path != "/test-key/latest/USD" {
		t.Errorf("unexpected request path %s", path)
	}
}

func TestConvertFormatting(t *testing.T) {
	cases := []struct {
		amount float64
		rate   float64
		expect string
	}{
		{amount: 12.5, rate: 1.1, expect: "12.5 USD is equivalent to 13.75 GBP"},
		{amount: 1, rate: 151.234, expect: "1 USD is equivalent to 151.23 GBP"},
		{amount: 0.333, rate: 3, expect: "0.333 USD is equivalent to 1.00 GBP"},
	}
	for _, c := range cases {
		srv := newRatesServer(t, nil, func(w http.ResponseWriter, r *http.Request) {
			writeRates(w, "USD", map[string]float64{"GBP": c.rate})
		})
		tool := newTestTool(t, srv, WithCache(nil))
		if got := tool.Convert(context.Background(), c.amount, "USD", "GBP"); got != c.expect {
			t.Errorf("expect %q, but got %q", c.expect, got)
		}
	}
}

func TestConvertServiceError(t *testing.T) {
	var calls atomic.Int32
	srv := newRatesServer(t, &calls, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"result":"error","error-type":"invalid-key"}`))
	})
	tool := newTestTool(t, srv)
	if got := tool.Convert(context.Background(), 100, "USD", "EUR"); got != FailedFetchMessage {
		t.Errorf("expect %q, but got %q", FailedFetchMessage, got)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("expect no retry on 403, got %d calls", n)
	}
	_, err := tool.convert(context.Background(), 100, "USD", "EUR")
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Errorf("expect ErrServiceUnavailable, got %v", err)
	}
	var statusErr StatusError
	if !errors.As(err, &statusErr) || statusErr.ErrorType != "invalid-key" {
		t.Errorf("expect StatusError with error type, got %v", err)
	}
}

func TestConvertInvalidCurrency(t *testing.T) {
	srv := newRatesServer(t, nil, func(w http.ResponseWriter, r *http.Request) {
		writeRates(w, "USD", map[string]float64{"EUR": 0.92})
	})
	tool := newTestTool(t, srv)
	if got, expect := tool.Convert(context.Background(), 50, "USD", "ZZZ"), "Invalid currency code: ZZZ"; got != expect {
		t.Errorf("expect %q, but got %q", expect, got)
	}
	if got, expect := tool.Convert(context.Background(), 50, " usd", "zzz "), "Invalid currency code: ZZZ"; got != expect {
		t.Errorf("expect normalized code in %q, but got %q", expect, got)
	}
	_, err := tool.convert(context.Background(), 50, "USD", "ZZZ")
	if !errors.Is(err, ErrInvalidCurrency) {
		t.Errorf("expect ErrInvalidCurrency, got %v", err)
	}
}

func TestConvertMissingConversionRates(t *testing.T) {
	var calls atomic.Int32
	srv := newRatesServer(t, &calls, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":"error","error-type":"unsupported-code"}`))
	})
	tool := newTestTool(t, srv)
	for i := 0; i < 2; i++ {
		if got, expect := tool.Convert(context.Background(), 1, "USD", "EUR"), InvalidCurrencyMessage("EUR"); got != expect {
			t.Errorf("expect %q, but got %q", expect, got)
		}
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("expect tables without rates to skip the cache, got %d calls", n)
	}
}

func TestConvertRetries(t *testing.T) {
	var calls atomic.Int32
	srv := newRatesServer(t, &calls, func(w http.ResponseWriter, r *http.Request) {
		if calls.Load() < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeRates(w, "USD", map[string]float64{"EUR": 0.5})
	})
	tool := newTestTool(t, srv)
	if got, expect := tool.Convert(context.Background(), 10, "USD", "EUR"), "10 USD is equivalent to 5.00 EUR"; got != expect {
		t.Errorf("expect %q, but got %q", expect, got)
	}
	if n := calls.Load(); n != 3 {
		t.Errorf("expect 3 attempts, got %d", n)
	}
}

func TestConvertRetriesExhausted(t *testing.T) {
	var calls atomic.Int32
	srv := newRatesServer(t, &calls, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	tool := newTestTool(t, srv, WithRetryPolicy(fastRetry(4)))
	if got := tool.Convert(context.Background(), 10, "USD", "EUR"); got != FailedFetchMessage {
		t.Errorf("expect %q, but got %q", FailedFetchMessage, got)
	}
	if n := calls.Load(); n != 4 {
		t.Errorf("expect 4 attempts, got %d", n)
	}
}

func TestConvertTimeout(t *testing.T) {
	srv := newRatesServer(t, nil, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
		writeRates(w, "USD", map[string]float64{"EUR": 0.5})
	})
	tool := newTestTool(t, srv, WithTimeout(20*time.Millisecond), WithRetryPolicy(fastRetry(1)))
	start := time.Now()
	if got := tool.Convert(context.Background(), 10, "USD", "EUR"); got != FailedFetchMessage {
		t.Errorf("expect %q, but got %q", FailedFetchMessage, got)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("expect timeout to cut the call short, took %s", elapsed)
	}
}

func TestConvertCache(t *testing.T) {
	var calls atomic.Int32
	srv := newRatesServer(t, &calls, func(w http.ResponseWriter, r *http.Request) {
		writeRates(w, "USD", map[string]float64{"EUR": 0.92, "JPY": 150})
	})
	tool := newTestTool(t, srv)
	ctx := context.Background()
	tool.Convert(ctx, 1, "USD", "EUR")
	tool.Convert(ctx, 1, "usd", "JPY")
	if n := calls.Load(); n != 1 {
		t.Errorf("expect cached rates to be reused, got %d calls", n)
	}

	calls.Store(0)
	uncached := newTestTool(t, srv, WithCache(nil))
	uncached.Convert(ctx, 1, "USD", "EUR")
	uncached.Convert(ctx, 1, "USD", "EUR")
	if n := calls.Load(); n != 2 {
		t.Errorf("expect 2 calls without cache, got %d", n)
	}
}

func TestConvertConcurrentSharesFetch(t *testing.T) {
	calls := atomic.NewInt32(0)
	srv := newRatesServer(t, calls, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(150 * time.Millisecond)
		writeRates(w, "USD", map[string]float64{"EUR": 0.92})
	})
	tool := newTestTool(t, srv, WithCache(nil))

	const workers = 8
	results := make([]string, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = tool.Convert(context.Background(), 100, "USD", "EUR")
		}(i)
	}
	wg.Wait()
	if n := calls.Load(); n != 1 {
		t.Errorf("expect 1 upstream request, got %d", n)
	}
	for i, got := range results {
		if expect := "100 USD is equivalent to 92.00 EUR"; got != expect {
			t.Errorf("worker %d: expect %q, but got %q", i, expect, got)
		}
	}
}

func TestConvertCancelledCallerKeepsSharedFetch(t *testing.T) {
	calls := atomic.NewInt32(0)
	srv := newRatesServer(t, calls, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(150 * time.Millisecond)
		writeRates(w, "USD", map[string]float64{"EUR": 0.92})
	})
	tool := newTestTool(t, srv, WithCache(nil))

	var (
		wg      sync.WaitGroup
		short   string
		patient string
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
		defer cancel()
		short = tool.Convert(ctx, 100, "USD", "EUR")
	}()
	time.Sleep(10 * time.Millisecond)
	go func() {
		defer wg.Done()
		patient = tool.Convert(context.Background(), 100, "USD", "EUR")
	}()
	wg.Wait()

	if short != FailedFetchMessage {
		t.Errorf("expect %q for the expired caller, but got %q", FailedFetchMessage, short)
	}
	if expect := "100 USD is equivalent to 92.00 EUR"; patient != expect {
		t.Errorf("expect %q, but got %q", expect, patient)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("expect 1 upstream request, got %d", n)
	}
}

func TestNewMissingAPIKey(t *testing.T) {
	t.Setenv(APIKeyEnv, "")
	if _, err := New(); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expect ErrMissingAPIKey, got %v", err)
	}
	t.Setenv(APIKeyEnv, "from-env")
	tool, err := New()
	if err != nil {
		t.Fatal(err)
	}
	if tool.apiKey != "from-env" {
		t.Errorf("expect key from env, got %s", tool.apiKey)
	}
}

func TestRun(t *testing.T) {
	srv := newRatesServer(t, nil, func(w http.ResponseWriter, r *http.Request) {
		writeRates(w, "EUR", map[string]float64{"USD": 1.25})
	})
	var started, ended int
	tool := newTestTool(t, srv)
	tool.SetStartHook(func(context.Context, tools.AnonymousTool, any) { started++ })
	tool.SetEndHook(func(context.Context, tools.AnonymousTool, any, any) { ended++ })

	ctx := context.Background()
	out, err := tool.Run(ctx, NewInput(8, "eur", "usd"))
	if err != nil {
		t.Fatal(err)
	}
	if expect := "8 EUR is equivalent to 10.00 USD"; out.Result != expect {
		t.Errorf("expect %q, but got %q", expect, out.Result)
	}
	if started != 1 || ended != 1 {
		t.Errorf("expect hooks to fire once, got start=%d end=%d", started, ended)
	}

	for _, in := range []*Input{
		NewInput(0, "USD", "EUR"),
		NewInput(-5, "USD", "EUR"),
		NewInput(5, "", "EUR"),
		NewInput(5, "USD", "EURO"),
	} {
		if _, err := tool.Run(ctx, in); err == nil {
			t.Errorf("expect validation error for %s", in)
		}
	}
}

func TestRunAnonymous(t *testing.T) {
	srv := newRatesServer(t, nil, func(w http.ResponseWriter, r *http.Request) {
		writeRates(w, "USD", map[string]float64{"EUR": 0.92})
	})
	tool := newTestTool(t, srv)
	ret, err := tool.RunAnonymous(context.Background(), `{"amount":100,"from_currency":"USD","to_currency":"EUR"}`)
	if err != nil {
		t.Fatal(err)
	}
	out, ok := ret.(*Output)
	if !ok {
		t.Fatalf("expect *Output, got %T", ret)
	}
	if !strings.Contains(out.String(), "92.00 EUR") {
		t.Errorf("unexpected result %s", out)
	}
}

func TestDefinition(t *testing.T) {
	tool, err := New(WithAPIKey(testAPIKey))
	if err != nil {
		t.Fatal(err)
	}
	def := tool.Definition()
	if def.Name != "currency_converter" {
		t.Errorf("unexpected name %s", def.Name)
	}
	bs, err := json.Marshal(def.Parameters)
	if err != nil {
		t.Fatal(err)
	}
	for _, field := range []string{"amount", "from_currency", "to_currency"} {
		if !strings.Contains(string(bs), field) {
			t.Errorf("expect %s in parameters schema %s", field, bs)
		}
	}
}

func ExampleTool_Convert() {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeRates(w, "USD", map[string]float64{"EUR": 0.92})
	}))
	defer srv.Close()
	tool, _ := New(WithAPIKey(testAPIKey), WithBaseURL(srv.URL))
	ctx := context.Background()
	fmt.Println(tool.Convert(ctx, 100, "USD", "EUR"))
	fmt.Println(tool.Convert(ctx, 50, "USD", "ZZZ"))
	// Output:
	// 100 USD is equivalent to 92.00 EUR
	// Invalid currency code: ZZZ
}
