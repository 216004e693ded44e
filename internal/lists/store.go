package lists

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"fantamorto/internal/services"
)

// Store reads and overwrites named lists.
type Store interface {
	ReadList(ctx context.Context, key string) ([]string, error)
	WriteList(ctx context.Context, key string, names []string) error
}

var utf8BOM = []byte("\xef\xbb\xbf")

// Decode parses a persisted list. An empty document or JSON null decodes to
// an empty list; a leading byte-order mark is ignored.
func Decode(data []byte) ([]string, error) {
	data = bytes.TrimSpace(bytes.TrimPrefix(data, utf8BOM))
	if len(data) == 0 {
		return []string{}, nil
	}
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// Encode renders names as a JSON array. A nil slice encodes as [].
func Encode(names []string) ([]byte, error) {
	if names == nil {
		names = []string{}
	}
	data, err := json.Marshal(names)
	if err != nil {
		return nil, fmt.Errorf("encode list: %w", err)
	}
	return data, nil
}

func validKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return services.Wrap(services.ErrPersistence, "lists", "validate key", "list key required", nil)
	}
	return nil
}
