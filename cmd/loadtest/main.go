package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/marketplace/internal/domain"
	"github.com/vladislavdragonenkov/marketplace/internal/transport/httpapi"
)

const (
	scenarioMethod     = "scenario"
	transportErrorCode = "transport_error"
	decodeErrorCode    = "decode_error"
)

type loadMode string

const (
	modeCreate     loadMode = "create"
	modeCreateRead loadMode = "create-read"
)

type config struct {
	addr        string
	total       int
	totalSet    bool
	duration    time.Duration
	concurrency int
	connections int
	timeout     time.Duration
	mode        loadMode
	products    int
	stock       int
	quantity    int
	price       decimal.Decimal
	customerTag string
	outputPath  string
}

type latencySummary struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
	P50 float64 `json:"p50"`
	P95 float64 `json:"p95"`
	P99 float64 `json:"p99"`
}

type methodReport struct {
	Calls     int64            `json:"calls"`
	Success   int64            `json:"success"`
	Failed    int64            `json:"failed"`
	ErrorRate float64          `json:"error_rate"`
	Codes     map[string]int64 `json:"codes"`
	LatencyMs latencySummary   `json:"latency_ms"`
}

type report struct {
	StartedAt         time.Time               `json:"started_at"`
	DurationSeconds   float64                 `json:"duration_seconds"`
	TotalScenarios    int64                   `json:"total_scenarios"`
	SuccessScenarios  int64                   `json:"success_scenarios"`
	FailedScenarios   int64                   `json:"failed_scenarios"`
	ErrorRate         float64                 `json:"error_rate"`
	RPS               float64                 `json:"rps"`
	ScenarioLatencyMs latencySummary          `json:"scenario_latency_ms"`
	Methods           map[string]methodReport `json:"methods"`
}

// callResult — исход одного HTTP-вызова: код ответа или категория ошибки.
type callResult struct {
	code string
	ok   bool
}

func okResult(status int) callResult {
	return callResult{code: strconv.Itoa(status), ok: true}
}

type methodStats struct {
	calls     int64
	success   int64
	failed    int64
	codes     map[string]int64
	latencies []float64
}

type collector struct {
	mu      sync.Mutex
	methods map[string]*methodStats
}

func newCollector() *collector {
	return &collector{
		methods: make(map[string]*methodStats),
	}
}

func (c *collector) record(method string, latency time.Duration, result callResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats, ok := c.methods[method]
	if !ok {
		stats = &methodStats{
			codes: make(map[string]int64),
		}
		c.methods[method] = stats
	}

	stats.calls++
	if result.ok {
		stats.success++
	} else {
		stats.failed++
	}
	stats.codes[result.code]++
	stats.latencies = append(stats.latencies, float64(latency.Microseconds())/1000.0)
}

func (s *methodStats) report() methodReport {
	codesCopy := make(map[string]int64, len(s.codes))
	for code, count := range s.codes {
		codesCopy[code] = count
	}
	return methodReport{
		Calls:     s.calls,
		Success:   s.success,
		Failed:    s.failed,
		ErrorRate: ratio(s.failed, s.calls),
		Codes:     codesCopy,
		LatencyMs: buildLatencySummary(s.latencies),
	}
}

func (c *collector) snapshot(name string) (methodReport, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats, ok := c.methods[name]
	if !ok {
		return methodReport{}, false
	}
	return stats.report(), true
}

func (c *collector) buildReport(startedAt time.Time, duration time.Duration) report {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := report{
		StartedAt:       startedAt.UTC(),
		DurationSeconds: duration.Seconds(),
		Methods:         make(map[string]methodReport, len(c.methods)),
	}

	if scenarioStats := c.methods[scenarioMethod]; scenarioStats != nil {
		result.TotalScenarios = scenarioStats.calls
		result.SuccessScenarios = scenarioStats.success
		result.FailedScenarios = scenarioStats.failed
		result.ErrorRate = ratio(scenarioStats.failed, scenarioStats.calls)
		result.ScenarioLatencyMs = buildLatencySummary(scenarioStats.latencies)
	}
	if duration > 0 {
		result.RPS = float64(result.TotalScenarios) / duration.Seconds()
	}

	for name, stats := range c.methods {
		result.Methods[name] = stats.report()
	}

	return result
}

func parseConfig() (config, error) {
	var cfg config
	var modeValue string
	var priceValue string

	flag.StringVar(&cfg.addr, "addr", "http://localhost:8080", "order-service HTTP base URL")
	flag.IntVar(&cfg.total, "total", 400, "total scenarios to execute in count mode; in duration mode only used when explicitly set")
	flag.DurationVar(&cfg.duration, "duration", 0, "optional time-based run duration (e.g. 10m, 15m)")
	flag.IntVar(&cfg.concurrency, "concurrency", 40, "number of concurrent workers")
	flag.IntVar(&cfg.connections, "connections", 20, "max HTTP connections to the service")
	flag.DurationVar(&cfg.timeout, "timeout", 5*time.Second, "per-request timeout")
	flag.StringVar(&modeValue, "mode", string(modeCreate), "load mode: create | create-read")
	flag.IntVar(&cfg.products, "products", 10, "number of catalog products seeded before the run")
	flag.IntVar(&cfg.stock, "stock", 1_000_000, "initial stock of every seeded product")
	flag.IntVar(&cfg.quantity, "quantity", 1, "quantity of every order line")
	flag.StringVar(&priceValue, "price", "10.00", "price of every seeded product")
	flag.StringVar(&cfg.customerTag, "customer-tag", "load", "prefix for seeded customer and product names")
	flag.StringVar(&cfg.outputPath, "output", "", "optional JSON report output file path")
	if err := flag.CommandLine.Parse(os.Args[1:]); err != nil {
		return cfg, err
	}

	flag.CommandLine.Visit(func(f *flag.Flag) {
		if f.Name == "total" {
			cfg.totalSet = true
		}
	})

	mode, err := parseMode(modeValue)
	if err != nil {
		return cfg, err
	}
	cfg.mode = mode

	price, err := decimal.NewFromString(strings.TrimSpace(priceValue))
	if err != nil {
		return cfg, fmt.Errorf("parse price: %w", err)
	}
	cfg.price = price
	cfg.addr = strings.TrimRight(strings.TrimSpace(cfg.addr), "/")

	switch {
	case cfg.addr == "":
		return cfg, errors.New("addr is required")
	case cfg.duration < 0:
		return cfg, errors.New("duration must be >= 0")
	case cfg.duration == 0 && cfg.total <= 0:
		return cfg, errors.New("total must be > 0 when duration is not set")
	case cfg.duration > 0 && cfg.totalSet && cfg.total <= 0:
		return cfg, errors.New("total must be > 0 when explicitly set with duration")
	case cfg.concurrency <= 0:
		return cfg, errors.New("concurrency must be > 0")
	case cfg.connections <= 0:
		return cfg, errors.New("connections must be > 0")
	case cfg.timeout <= 0:
		return cfg, errors.New("timeout must be > 0")
	case cfg.products <= 0:
		return cfg, errors.New("products must be > 0")
	case cfg.quantity <= 0:
		return cfg, errors.New("quantity must be > 0")
	case cfg.stock < cfg.quantity:
		return cfg, errors.New("stock must be >= quantity")
	case cfg.price.IsNegative():
		return cfg, errors.New("price must be >= 0")
	case strings.TrimSpace(cfg.customerTag) == "":
		return cfg, errors.New("customer-tag is required")
	}

	return cfg, nil
}

func parseMode(value string) (loadMode, error) {
	switch loadMode(strings.TrimSpace(value)) {
	case modeCreate:
		return modeCreate, nil
	case modeCreateRead:
		return modeCreateRead, nil
	default:
		return "", fmt.Errorf("unsupported mode: %s", value)
	}
}

func main() {
	cfg, err := parseConfig()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	result, err := runLoad(context.Background(), cfg, newHTTPClient(cfg))
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "load test failed: %v\n", err)
		os.Exit(1)
	}

	printReport(os.Stdout, result, cfg)
	if cfg.outputPath != "" {
		if err := writeJSONReport(cfg.outputPath, result); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "failed to write report: %v\n", err)
			os.Exit(1)
		}
	}

	if result.FailedScenarios > 0 {
		os.Exit(1)
	}
}

func newHTTPClient(cfg config) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxConnsPerHost = cfg.connections
	transport.MaxIdleConnsPerHost = cfg.connections
	return &http.Client{Transport: transport}
}

// runLoad заводит покупателя и каталог, затем гоняет сценарии заказа в cfg.concurrency воркерах.
func runLoad(ctx context.Context, cfg config, httpClient *http.Client) (report, error) {
	startedAt := time.Now()
	runID := fmt.Sprintf("%d-%d", startedAt.UnixNano(), os.Getpid())
	col := newCollector()
	api := &apiClient{baseURL: cfg.addr, http: httpClient, timeout: cfg.timeout, col: col}

	fixture, err := seedCatalog(ctx, api, cfg, runID)
	if err != nil {
		return report{}, err
	}

	jobs := make(chan int, cfg.concurrency*2)
	var failures int64
	var wg sync.WaitGroup

	for range cfg.concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				if runErr := runScenario(ctx, api, cfg, fixture, id); runErr != nil {
					atomic.AddInt64(&failures, 1)
				}
			}
		}()
	}

	dispatchJobs(jobs, cfg)
	wg.Wait()

	result := col.buildReport(startedAt, time.Since(startedAt))
	if result.FailedScenarios == 0 && failures > 0 {
		result.FailedScenarios = failures
		result.ErrorRate = ratio(result.FailedScenarios, result.TotalScenarios)
	}
	return result, nil
}

type catalogFixture struct {
	customerID string
	productIDs []string
}

func seedCatalog(ctx context.Context, api *apiClient, cfg config, runID string) (catalogFixture, error) {
	tag := fmt.Sprintf("%s-%s", cfg.customerTag, runID)

	customer, err := api.createCustomer(ctx, tag, tag+"@loadtest.local")
	if err != nil {
		return catalogFixture{}, fmt.Errorf("seed customer: %w", err)
	}

	fixture := catalogFixture{customerID: customer.ID, productIDs: make([]string, 0, cfg.products)}
	for i := range cfg.products {
		product, err := api.createProduct(ctx, fmt.Sprintf("%s-product-%d", tag, i), cfg.price, cfg.stock)
		if err != nil {
			return catalogFixture{}, fmt.Errorf("seed product %d: %w", i, err)
		}
		fixture.productIDs = append(fixture.productIDs, product.ID)
	}
	return fixture, nil
}

func dispatchJobs(jobs chan<- int, cfg config) {
	defer close(jobs)

	if cfg.duration <= 0 {
		for i := range cfg.total {
			jobs <- i
		}
		return
	}

	timer := time.NewTimer(cfg.duration)
	defer timer.Stop()

	for i := 0; ; i++ {
		if cfg.totalSet && i >= cfg.total {
			return
		}

		select {
		case <-timer.C:
			return
		case jobs <- i:
		}
	}
}

func runScenario(ctx context.Context, api *apiClient, cfg config, fixture catalogFixture, index int) (err error) {
	scenarioStart := time.Now()
	defer func() {
		result := callResult{code: "ok", ok: true}
		if err != nil {
			result = callResult{code: "failed"}
		}
		api.col.record(scenarioMethod, time.Since(scenarioStart), result)
	}()

	lines := []domain.OrderLineRequest{{
		ID:       fixture.productIDs[index%len(fixture.productIDs)],
		Quantity: cfg.quantity,
	}}
	created, err := api.createOrder(ctx, fixture.customerID, lines)
	if err != nil {
		return err
	}
	if created.ID == "" {
		return errors.New("create response returned empty order id")
	}

	if cfg.mode != modeCreateRead {
		return nil
	}

	found, err := api.getOrder(ctx, created.ID)
	if err != nil {
		return err
	}
	if found.ID != created.ID {
		return fmt.Errorf("get order returned %q, want %q", found.ID, created.ID)
	}
	return nil
}

// apiClient — JSON-клиент HTTP API order-service, пишущий каждый вызов в collector.
type apiClient struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	col     *collector
}

func (c *apiClient) createCustomer(ctx context.Context, name, email string) (httpapi.CustomerResponse, error) {
	var out httpapi.CustomerResponse
	body := map[string]string{"name": name, "email": email}
	err := c.call(ctx, "CreateCustomer", http.MethodPost, "/customers", body, http.StatusCreated, &out)
	return out, err
}

func (c *apiClient) createProduct(ctx context.Context, name string, price decimal.Decimal, quantity int) (httpapi.ProductResponse, error) {
	var out httpapi.ProductResponse
	body := map[string]any{"name": name, "price": price, "quantity": quantity}
	err := c.call(ctx, "CreateProduct", http.MethodPost, "/products", body, http.StatusCreated, &out)
	return out, err
}

func (c *apiClient) createOrder(ctx context.Context, customerID string, lines []domain.OrderLineRequest) (httpapi.OrderResponse, error) {
	var out httpapi.OrderResponse
	body := map[string]any{"customer_id": customerID, "products": lines}
	err := c.call(ctx, "CreateOrder", http.MethodPost, "/orders", body, http.StatusCreated, &out)
	return out, err
}

func (c *apiClient) getOrder(ctx context.Context, orderID string) (httpapi.OrderResponse, error) {
	var out httpapi.OrderResponse
	err := c.call(ctx, "GetOrder", http.MethodGet, "/orders/"+orderID, nil, http.StatusOK, &out)
	return out, err
}

func (c *apiClient) call(ctx context.Context, method, httpMethod, path string, in any, wantStatus int, out any) (err error) {
	start := time.Now()
	result := callResult{code: transportErrorCode}
	defer func() {
		c.col.record(method, time.Since(start), result)
	}()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", method, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, httpMethod, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		result = callResult{code: strconv.Itoa(resp.StatusCode)}
		var apiErr httpapi.ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return fmt.Errorf("%s: unexpected status %d: %s", method, resp.StatusCode, apiErr.Message)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		result = callResult{code: decodeErrorCode}
		return fmt.Errorf("%s: decode response: %w", method, err)
	}

	result = okResult(resp.StatusCode)
	return nil
}

func writeJSONReport(path string, result report) error {
	cleanPath := filepath.Clean(path)
	if cleanPath == "." || cleanPath == string(filepath.Separator) {
		return errors.New("output path must point to a file")
	}
	if cleanPath == ".." || strings.HasPrefix(cleanPath, ".."+string(filepath.Separator)) {
		return fmt.Errorf("output path must be inside current directory: %s", path)
	}

	// #nosec G304 -- path is an explicit CLI output parameter for local load-test reports.
	file, err := os.Create(cleanPath)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func printReport(w io.Writer, result report, cfg config) {
	_, _ = fmt.Fprintln(w, "Load test summary")
	_, _ = fmt.Fprintf(w, "mode=%s run=%s total=%d success=%d failed=%d error_rate=%.4f\n",
		cfg.mode,
		runTarget(cfg),
		result.TotalScenarios,
		result.SuccessScenarios,
		result.FailedScenarios,
		result.ErrorRate,
	)
	_, _ = fmt.Fprintf(w, "duration=%.2fs rps=%.2f\n", result.DurationSeconds, result.RPS)
	_, _ = fmt.Fprintf(w, "scenario latency ms: min=%.2f avg=%.2f p50=%.2f p95=%.2f p99=%.2f max=%.2f\n",
		result.ScenarioLatencyMs.Min,
		result.ScenarioLatencyMs.Avg,
		result.ScenarioLatencyMs.P50,
		result.ScenarioLatencyMs.P95,
		result.ScenarioLatencyMs.P99,
		result.ScenarioLatencyMs.Max,
	)

	methodNames := make([]string, 0, len(result.Methods))
	for name := range result.Methods {
		if name == scenarioMethod {
			continue
		}
		methodNames = append(methodNames, name)
	}
	sort.Strings(methodNames)
	for _, name := range methodNames {
		stats := result.Methods[name]
		_, _ = fmt.Fprintf(w,
			"%s: calls=%d success=%d failed=%d error_rate=%.4f p95=%.2fms\n",
			name,
			stats.Calls,
			stats.Success,
			stats.Failed,
			stats.ErrorRate,
			stats.LatencyMs.P95,
		)
	}
}

func runTarget(cfg config) string {
	if cfg.duration <= 0 {
		return fmt.Sprintf("count:%d", cfg.total)
	}
	if cfg.totalSet {
		return fmt.Sprintf("duration:%s,max-total:%d", cfg.duration, cfg.total)
	}
	return fmt.Sprintf("duration:%s", cfg.duration)
}

func buildLatencySummary(values []float64) latencySummary {
	if len(values) == 0 {
		return latencySummary{}
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	var sum float64
	for _, value := range sorted {
		sum += value
	}

	return latencySummary{
		Min: sorted[0],
		Max: sorted[len(sorted)-1],
		Avg: sum / float64(len(sorted)),
		P50: percentile(sorted, 50),
		P95: percentile(sorted, 95),
		P99: percentile(sorted, 99),
	}
}

func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}

	rank := (p / 100.0) * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}

	weight := rank - float64(lower)
	return sorted[lower] + (sorted[upper]-sorted[lower])*weight
}

func ratio(failed, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(failed) / float64(total)
}
