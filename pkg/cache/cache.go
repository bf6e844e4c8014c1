package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

var ErrCacheMiss = errors.New("cache: key not found")

// Service is a transient keyed TTL cache for perishable lookups (news
// queries, rendered responses). Values round-trip through JSON so memory
// and Redis backends behave identically.
type Service interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, keys ...string) (bool, error)
	Close() error
}

// GetTyped retrieves a key and unmarshals it to T.
func GetTyped[T any](ctx context.Context, c Service, key string) (T, bool, error) {
	var obj T
	err := c.Get(ctx, key, &obj)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return obj, false, nil
		}
		return obj, false, err
	}
	return obj, true, nil
}

func marshalValue(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return json.Marshal(value)
	}
}

func unmarshalValue(data []byte, dest interface{}) error {
	switch d := dest.(type) {
	case *[]byte:
		*d = data
		return nil
	case *string:
		*d = string(data)
		return nil
	default:
		return json.Unmarshal(data, dest)
	}
}
