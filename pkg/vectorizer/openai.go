package vectorizer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAI model constants.
const (
	OpenAITextEmbedding3Small = "text-embedding-3-small"
	OpenAITextEmbedding3Large = "text-embedding-3-large"

	providerOpenAI = "openai"
)

const (
	defaultDimensionsSmall = 1536
	defaultDimensionsLarge = 3072
)

// OpenAI implements the Vectorizer interface using OpenAI's API.
type OpenAI struct {
	client     openai.Client
	model      string
	dimensions int
	maxBatch   int
	observe    ObserveFunc
	reqOpts    []option.RequestOption
}

// OpenAIOption is a functional option for configuring OpenAI.
type OpenAIOption func(*OpenAI)

// WithOpenAIModel sets the model to use.
func WithOpenAIModel(model string) OpenAIOption {
	return func(o *OpenAI) {
		o.model = model
	}
}

// WithOpenAIDimensions sets the output dimensions for the embeddings.
// Only applicable to text-embedding-3-* models.
func WithOpenAIDimensions(dims int) OpenAIOption {
	return func(o *OpenAI) {
		o.dimensions = dims
	}
}

// WithOpenAIMaxBatchSize sets the maximum batch size for batch operations.
func WithOpenAIMaxBatchSize(size int) OpenAIOption {
	return func(o *OpenAI) {
		if size > 0 && size <= 2048 { // OpenAI API limit
			o.maxBatch = size
		}
	}
}

// WithOpenAIHTTPClient sets a custom HTTP client.
func WithOpenAIHTTPClient(client *http.Client) OpenAIOption {
	return func(o *OpenAI) {
		if client != nil {
			o.reqOpts = append(o.reqOpts, option.WithHTTPClient(client))
		}
	}
}

// WithOpenAIBaseURL points the client at a compatible endpoint.
func WithOpenAIBaseURL(url string) OpenAIOption {
	return func(o *OpenAI) {
		if url != "" {
			o.reqOpts = append(o.reqOpts, option.WithBaseURL(url))
		}
	}
}

// WithOpenAIMaxRetries sets the SDK retry budget for transient failures.
func WithOpenAIMaxRetries(n int) OpenAIOption {
	return func(o *OpenAI) {
		if n >= 0 {
			o.reqOpts = append(o.reqOpts, option.WithMaxRetries(n))
		}
	}
}

// WithOpenAIObserver reports every call outcome to fn.
func WithOpenAIObserver(fn ObserveFunc) OpenAIOption {
	return func(o *OpenAI) {
		o.observe = fn
	}
}

// NewOpenAI creates a new OpenAI vectorizer.
func NewOpenAI(apiKey string, opts ...OpenAIOption) (*OpenAI, error) {
	if apiKey == "" {
		return nil, ErrInvalidAPIKey
	}

	o := &OpenAI{
		model:    OpenAITextEmbedding3Small,
		maxBatch: 100,
		reqOpts:  []option.RequestOption{option.WithAPIKey(apiKey)},
	}

	for _, opt := range opts {
		opt(o)
	}
	o.client = openai.NewClient(o.reqOpts...)

	// Set default dimensions based on model if not specified
	if o.dimensions == 0 {
		switch o.model {
		case OpenAITextEmbedding3Small:
			o.dimensions = defaultDimensionsSmall
		case OpenAITextEmbedding3Large:
			o.dimensions = defaultDimensionsLarge
		default:
			return nil, fmt.Errorf("%w: %s", ErrModelNotSupported, o.model)
		}
	}

	if err := o.validateDimensions(); err != nil {
		return nil, err
	}

	return o, nil
}

// validateDimensions validates the dimensions for the configured model.
func (o *OpenAI) validateDimensions() error {
	switch o.model {
	case OpenAITextEmbedding3Small:
		// text-embedding-3-small supports 512 or 1536
		if o.dimensions != 512 && o.dimensions != 1536 {
			return fmt.Errorf("%w: %s only supports 512 or 1536 dimensions, got %d",
				ErrInvalidDimensions, o.model, o.dimensions)
		}
	case OpenAITextEmbedding3Large:
		// text-embedding-3-large supports 256, 1024, or 3072
		if o.dimensions != 256 && o.dimensions != 1024 && o.dimensions != 3072 {
			return fmt.Errorf("%w: %s only supports 256, 1024, or 3072 dimensions, got %d",
				ErrInvalidDimensions, o.model, o.dimensions)
		}
	default:
		return fmt.Errorf("%w: %s", ErrModelNotSupported, o.model)
	}
	return nil
}

// Embed converts a single text to vector embedding.
func (o *OpenAI) Embed(ctx context.Context, text string) ([]float32, error) {
	out, err := o.call(ctx, openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)}, 1)
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// EmbedBatch converts multiple texts to vector embeddings.
// Returns embeddings in the same order as input texts.
func (o *OpenAI) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	if len(texts) > o.maxBatch {
		return nil, fmt.Errorf("%w: got %d texts, max is %d", ErrBatchTooLarge, len(texts), o.maxBatch)
	}

	return o.call(ctx, openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: slices.Clone(texts)}, len(texts))
}

// Dimensions returns the vector size this implementation produces.
func (o *OpenAI) Dimensions() int {
	return o.dimensions
}

func (o *OpenAI) call(ctx context.Context, input openai.EmbeddingNewParamsInputUnion, want int) (out [][]float32, err error) {
	start := time.Now()
	defer func() { o.observe.observe(providerOpenAI, 1, start, err) }()

	resp, err := o.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model:      openai.EmbeddingModel(o.model),
		Input:      input,
		Dimensions: openai.Int(int64(o.dimensions)),
	})
	if err != nil {
		return nil, wrapOpenAIError(err)
	}

	out, err = orderByIndex(want, resp.Data, func(i int) (int, []float32) {
		d := resp.Data[i]
		// API response is float64, callers work with float32
		emb := make([]float32, len(d.Embedding))
		for j, v := range d.Embedding {
			emb[j] = float32(v)
		}
		return int(d.Index), emb
	})
	if err != nil {
		return nil, &Error{Provider: providerOpenAI, Type: TypeResponse, Detail: err.Error(), Attempts: 1, Err: err}
	}
	return out, nil
}

func wrapOpenAIError(err error) *Error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		detail := apiErr.Message
		if detail == "" {
			detail = "Unknown error"
		}
		return &Error{
			Provider:  providerOpenAI,
			Type:      TypeHTTP,
			Status:    apiErr.StatusCode,
			Detail:    detail,
			Attempts:  1,
			Retryable: IsRetryableStatus(apiErr.StatusCode),
			Err:       err,
		}
	}
	return &Error{Provider: providerOpenAI, Type: TypeNetwork, Detail: err.Error(), Attempts: 1, Retryable: true, Err: err}
}
