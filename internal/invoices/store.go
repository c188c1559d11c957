package invoices

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/sabaipos/sabaipos/internal/platform/httpx"
)

const keyPrefix = "invoice:"

// Store keeps one JSON document per invoice in Redis. There is no query
// language; list operations scan the keyspace and filter in memory.
type Store struct {
	client *redis.Client
}

// NewStore instantiates the document store.
func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

func key(transactionID string) string {
	return keyPrefix + transactionID
}

// Put writes the whole document, replacing any previous version.
func (s *Store) Put(ctx context.Context, inv *Invoice) error {
	raw, err := json.Marshal(inv)
	if err != nil {
		return fmt.Errorf("invoices: encode document: %w", err)
	}
	if err := s.client.Set(ctx, key(inv.TransactionID), raw, 0).Err(); err != nil {
		return fmt.Errorf("invoices: write document: %w", err)
	}
	return nil
}

// Get loads one document.
func (s *Store) Get(ctx context.Context, transactionID string) (*Invoice, error) {
	raw, err := s.client.Get(ctx, key(transactionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("invoices: %s %w", transactionID, httpx.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("invoices: read document: %w", err)
	}
	var inv Invoice
	if err := json.Unmarshal(raw, &inv); err != nil {
		return nil, fmt.Errorf("invoices: decode document %s: %w", transactionID, err)
	}
	return &inv, nil
}

// Exists reports whether a document is stored for the transaction id.
func (s *Store) Exists(ctx context.Context, transactionID string) (bool, error) {
	n, err := s.client.Exists(ctx, key(transactionID)).Result()
	if err != nil {
		return false, fmt.Errorf("invoices: check document: %w", err)
	}
	return n > 0, nil
}

// List returns every stored invoice.
func (s *Store) List(ctx context.Context) ([]Invoice, error) {
	var out []Invoice
	iter := s.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		raw, err := s.client.Get(ctx, iter.Val()).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("invoices: read document: %w", err)
		}
		var inv Invoice
		if err := json.Unmarshal(raw, &inv); err != nil {
			return nil, fmt.Errorf("invoices: decode document %s: %w", iter.Val(), err)
		}
		out = append(out, inv)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("invoices: scan documents: %w", err)
	}
	return out, nil
}
