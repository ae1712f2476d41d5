// Package vectorizer converts text into vector embeddings through Voyage AI,
// OpenAI or Google, behind one Vectorizer interface.
//
// Voyage is the default provider. Its client retries transport failures and
// the statuses 429, 500, 502, 503 and 504 with linear backoff (RetryDelay
// times the retry number) up to MaxRetries times. Any other status fails on
// the first attempt. Retries are detached from caller cancellation and each
// attempt is bounded by the per-attempt timeout.
//
//	v, err := vectorizer.NewVoyage(apiKey,
//		vectorizer.WithVoyageMaxRetries(2),
//		vectorizer.WithVoyageRetryDelay(2*time.Second),
//	)
//	if err != nil {
//		return err
//	}
//	doc, err := v.Embed(ctx, "claim text")
//	query, err := vectorizer.EmbedQuery(ctx, v, "search text")
//
// # Errors
//
// Every provider failure is returned as *Error. It carries the provider name,
// upstream status, extracted detail, number of attempts and whether the
// failure was retryable. It renders as a 502 EMBEDDING_ERROR response.
//
//	var embErr *vectorizer.Error
//	if errors.As(err, &embErr) && embErr.Retryable {
//		// upstream was unavailable
//	}
//
// # Providers
//
// New selects a provider from Config (EMBEDDING_PROVIDER=voyage|openai|google).
// The OpenAI and Google adapters wrap SDK errors into *Error and return batch
// results in input order.
package vectorizer
