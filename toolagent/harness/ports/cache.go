package harnessports

import "context"

// Cache memoizes byte payloads such as query embeddings. A ttlSeconds of zero
// uses the backend default.
type Cache interface {
	Get(ctx context.Context, key string) (value []byte, ok bool)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
