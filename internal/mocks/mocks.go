// Package mocks provides testify mocks for the ports interfaces.
package mocks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/jsamuelsen/quote-sync/internal/domain"
	"github.com/jsamuelsen/quote-sync/internal/ports"
)

var (
	_ ports.QuoteSource    = (*MockQuoteSource)(nil)
	_ ports.QuotePublisher = (*MockQuotePublisher)(nil)
	_ ports.KeyValueStore  = (*MockKeyValueStore)(nil)
)

// MockQuoteSource is a mock of ports.QuoteSource.
type MockQuoteSource struct {
	mock.Mock
}

// NewMockQuoteSource creates a mock whose expectations are asserted on cleanup.
func NewMockQuoteSource(t *testing.T) *MockQuoteSource {
	m := &MockQuoteSource{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

// FetchQuotes implements ports.QuoteSource.
func (m *MockQuoteSource) FetchQuotes(ctx context.Context, limit int) ([]domain.Quote, error) {
	args := m.Called(ctx, limit)

	quotes, _ := args.Get(0).([]domain.Quote)

	return quotes, args.Error(1)
}

// MockQuotePublisher is a mock of ports.QuotePublisher.
type MockQuotePublisher struct {
	mock.Mock
}

// NewMockQuotePublisher creates a mock whose expectations are asserted on cleanup.
func NewMockQuotePublisher(t *testing.T) *MockQuotePublisher {
	m := &MockQuotePublisher{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

// PublishQuote implements ports.QuotePublisher.
func (m *MockQuotePublisher) PublishQuote(ctx context.Context, q domain.Quote) error {
	return m.Called(ctx, q).Error(0)
}

// MockKeyValueStore is a mock of ports.KeyValueStore.
type MockKeyValueStore struct {
	mock.Mock
}

// NewMockKeyValueStore creates a mock whose expectations are asserted on cleanup.
func NewMockKeyValueStore(t *testing.T) *MockKeyValueStore {
	m := &MockKeyValueStore{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

// Get implements ports.KeyValueStore.
func (m *MockKeyValueStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	args := m.Called(ctx, key)

	value, _ := args.Get(0).([]byte)

	return value, args.Bool(1), args.Error(2)
}

// Set implements ports.KeyValueStore.
func (m *MockKeyValueStore) Set(ctx context.Context, key string, value []byte) error {
	return m.Called(ctx, key, value).Error(0)
}

// Delete implements ports.KeyValueStore.
func (m *MockKeyValueStore) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}
