package vectorizer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/dmitrymomot/sharedcontext/core/logger"
)

// Voyage defaults.
const (
	VoyageEndpoint          = "https://api.voyageai.com/v1/embeddings"
	VoyageModel4Lite        = "voyage-4-lite"
	defaultDimensionsVoyage = 1024
	defaultVoyageRetries    = 2
	defaultVoyageDelay      = 2 * time.Second
	defaultVoyageTimeout    = 30 * time.Second
	providerVoyage          = "voyage"
)

// Voyage input types.
const (
	inputTypeDocument = "document"
	inputTypeQuery    = "query"
)

// Voyage implements Vectorizer against the Voyage AI embeddings API.
// Transient failures (transport errors, 429 and 5xx gateway statuses) are
// retried with linear backoff: RetryDelay, 2*RetryDelay, ...
type Voyage struct {
	apiKey     string
	endpoint   string
	model      string
	dimensions int
	maxRetries int
	retryDelay time.Duration
	timeout    time.Duration
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *slog.Logger
	observe    ObserveFunc

	client *retryablehttp.Client
}

// VoyageOption is a functional option for configuring Voyage.
type VoyageOption func(*Voyage)

// WithVoyageModel sets the model to use.
func WithVoyageModel(model string) VoyageOption {
	return func(v *Voyage) {
		if model != "" {
			v.model = model
		}
	}
}

// WithVoyageDimensions sets the output dimension. Values other than 1024 are
// sent as output_dimension.
func WithVoyageDimensions(dims int) VoyageOption {
	return func(v *Voyage) {
		if dims > 0 {
			v.dimensions = dims
		}
	}
}

// WithVoyageEndpoint overrides the API URL.
func WithVoyageEndpoint(endpoint string) VoyageOption {
	return func(v *Voyage) {
		if endpoint != "" {
			v.endpoint = endpoint
		}
	}
}

// WithVoyageMaxRetries sets how many times a transient failure is retried.
// Total attempts are maxRetries+1.
func WithVoyageMaxRetries(n int) VoyageOption {
	return func(v *Voyage) {
		if n >= 0 {
			v.maxRetries = n
		}
	}
}

// WithVoyageRetryDelay sets the base backoff unit.
func WithVoyageRetryDelay(d time.Duration) VoyageOption {
	return func(v *Voyage) {
		if d >= 0 {
			v.retryDelay = d
		}
	}
}

// WithVoyageTimeout bounds each individual attempt.
func WithVoyageTimeout(d time.Duration) VoyageOption {
	return func(v *Voyage) {
		if d > 0 {
			v.timeout = d
		}
	}
}

// WithVoyageHTTPClient sets the underlying HTTP client. Its Timeout is
// replaced by the configured per-attempt timeout.
func WithVoyageHTTPClient(client *http.Client) VoyageOption {
	return func(v *Voyage) {
		if client != nil {
			v.httpClient = client
		}
	}
}

// WithVoyageLogger sets the logger used for retry diagnostics.
func WithVoyageLogger(log *slog.Logger) VoyageOption {
	return func(v *Voyage) {
		if log != nil {
			v.log = log
		}
	}
}

// WithVoyageRateLimit throttles outgoing calls to rps requests per second.
// Zero or negative disables throttling.
func WithVoyageRateLimit(rps float64) VoyageOption {
	return func(v *Voyage) {
		if rps <= 0 {
			v.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		v.limiter = rate.NewLimiter(rate.Limit(rps), max(1, int(rps)))
	}
}

// WithVoyageObserver reports every call outcome to fn.
func WithVoyageObserver(fn ObserveFunc) VoyageOption {
	return func(v *Voyage) {
		v.observe = fn
	}
}

// NewVoyage creates a Voyage vectorizer.
func NewVoyage(apiKey string, opts ...VoyageOption) (*Voyage, error) {
	if apiKey == "" {
		return nil, ErrInvalidAPIKey
	}

	v := &Voyage{
		apiKey:     apiKey,
		endpoint:   VoyageEndpoint,
		model:      VoyageModel4Lite,
		dimensions: defaultDimensionsVoyage,
		maxRetries: defaultVoyageRetries,
		retryDelay: defaultVoyageDelay,
		timeout:    defaultVoyageTimeout,
		limiter:    rate.NewLimiter(rate.Inf, 0),
		log:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(v)
	}

	httpClient := &http.Client{}
	if v.httpClient != nil {
		c := *v.httpClient
		httpClient = &c
	}
	httpClient.Timeout = v.timeout

	client := retryablehttp.NewClient()
	client.HTTPClient = httpClient
	client.RetryMax = v.maxRetries
	client.RetryWaitMin = v.retryDelay
	client.RetryWaitMax = v.retryDelay * time.Duration(v.maxRetries+1)
	client.Backoff = linearBackoff(v.retryDelay)
	client.CheckRetry = checkRetry
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	client.Logger = nil
	client.RequestLogHook = v.onAttempt
	v.client = client

	return v, nil
}

// Embed converts a single document text to a vector embedding.
func (v *Voyage) Embed(ctx context.Context, text string) ([]float32, error) {
	out, err := v.call(ctx, []string{text}, inputTypeDocument)
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// EmbedQuery converts a search query to a vector embedding.
func (v *Voyage) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	out, err := v.call(ctx, []string{text}, inputTypeQuery)
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// EmbedBatch converts multiple document texts. An empty batch returns an
// empty result without calling the API.
func (v *Voyage) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	return v.call(ctx, texts, inputTypeDocument)
}

// Dimensions returns the vector size this implementation produces.
func (v *Voyage) Dimensions() int {
	return v.dimensions
}

type voyageRequest struct {
	Input           []string `json:"input"`
	Model           string   `json:"model"`
	InputType       string   `json:"input_type"`
	OutputDimension int      `json:"output_dimension,omitempty"`
}

type voyageResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

type attemptsKey struct{}

func (v *Voyage) call(ctx context.Context, input []string, inputType string) (out [][]float32, err error) {
	start := time.Now()
	attempts := new(atomic.Int64)
	defer func() {
		v.observe.observe(providerVoyage, int(attempts.Load()), start, err)
	}()

	body := voyageRequest{Input: input, Model: v.model, InputType: inputType}
	if v.dimensions != defaultDimensionsVoyage {
		body.OutputDimension = v.dimensions
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal voyage request: %w", err)
	}

	if err := v.limiter.Wait(ctx); err != nil {
		return nil, &Error{Provider: providerVoyage, Type: TypeNetwork, Detail: err.Error(), Err: err}
	}

	// Retries continue even if the caller goes away; each attempt is bounded
	// by the HTTP client timeout instead.
	reqCtx := context.WithValue(context.WithoutCancel(ctx), attemptsKey{}, attempts)
	req, err := retryablehttp.NewRequestWithContext(reqCtx, http.MethodPost, v.endpoint, payload)
	if err != nil {
		return nil, fmt.Errorf("build voyage request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+v.apiKey)

	resp, err := v.client.Do(req)
	n := int(attempts.Load())
	if err != nil {
		v.log.WarnContext(ctx, "embedding request failed",
			logger.Provider(providerVoyage),
			logger.Attempt(n),
			logger.Error(err))
		return nil, &Error{
			Provider:  providerVoyage,
			Type:      TypeNetwork,
			Detail:    err.Error(),
			Attempts:  n,
			Retryable: true,
			Err:       err,
		}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Provider: providerVoyage, Type: TypeNetwork, Detail: err.Error(), Attempts: n, Retryable: true, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		e := &Error{
			Provider:  providerVoyage,
			Type:      TypeHTTP,
			Status:    resp.StatusCode,
			Detail:    errorDetail(raw),
			Attempts:  n,
			Retryable: IsRetryableStatus(resp.StatusCode),
		}
		v.log.WarnContext(ctx, "embedding request rejected",
			logger.Provider(providerVoyage),
			logger.StatusCode(resp.StatusCode),
			logger.Attempt(n),
			slog.String("detail", e.Detail))
		return nil, e
	}

	var parsed voyageResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, &Error{Provider: providerVoyage, Type: TypeResponse, Detail: err.Error(), Attempts: n, Err: err}
	}

	out, err = orderByIndex(len(input), parsed.Data, func(i int) (int, []float32) {
		return parsed.Data[i].Index, parsed.Data[i].Embedding
	})
	if err != nil {
		return nil, &Error{Provider: providerVoyage, Type: TypeResponse, Detail: err.Error(), Attempts: n, Err: err}
	}
	return out, nil
}

func (v *Voyage) onAttempt(_ retryablehttp.Logger, req *http.Request, retry int) {
	if counter, ok := req.Context().Value(attemptsKey{}).(*atomic.Int64); ok {
		counter.Add(1)
	}
	if retry > 0 {
		v.log.DebugContext(req.Context(), "retrying embedding request",
			logger.Provider(providerVoyage),
			logger.Attempt(retry+1))
	}
}

// linearBackoff waits delay*n before the n-th retry.
func linearBackoff(delay time.Duration) retryablehttp.Backoff {
	return func(_, _ time.Duration, attemptNum int, _ *http.Response) time.Duration {
		return delay * time.Duration(attemptNum+1)
	}
}

// checkRetry retries transport failures and transient statuses only.
func checkRetry(_ context.Context, resp *http.Response, err error) (bool, error) {
	if err != nil {
		return true, nil
	}
	return IsRetryableStatus(resp.StatusCode), nil
}

// errorDetail extracts a human-readable reason from an error body.
func errorDetail(body []byte) string {
	for _, path := range []string{"detail", "message", "error"} {
		r := gjson.GetBytes(body, path)
		if !r.Exists() || r.Type == gjson.Null {
			continue
		}
		if r.IsObject() {
			if msg := r.Get("message"); msg.Exists() {
				return msg.String()
			}
			return r.Raw
		}
		return r.String()
	}
	return "Unknown error"
}

// orderByIndex places each embedding at its reported index.
func orderByIndex[T any](want int, items []T, at func(i int) (int, []float32)) ([][]float32, error) {
	if len(items) != want {
		return nil, fmt.Errorf("%w: expected %d embeddings, got %d", ErrEmbeddingCountMismatch, want, len(items))
	}

	idx := make([]int, len(items))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ia, _ := at(idx[a])
		ib, _ := at(idx[b])
		return ia < ib
	})

	out := make([][]float32, want)
	for pos, i := range idx {
		index, emb := at(i)
		if index != pos {
			return nil, fmt.Errorf("%w: index %d for %d inputs", ErrInvalidIndex, index, want)
		}
		if len(emb) == 0 {
			return nil, fmt.Errorf("%w at index %d", ErrEmptyEmbedding, index)
		}
		out[pos] = emb
	}
	return out, nil
}
