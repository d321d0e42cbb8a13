package services

import (
	"context"
	"errors"

	"storefront/models"
	"storefront/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

func product(id int64, title string, price string, category string) models.Product {
	return models.Product{
		ID:       id,
		Title:    title,
		Price:    decimal.RequireFromString(price),
		Category: models.Category{Name: category},
	}
}

// failingStorage fails every write and optionally every read.
type failingStorage struct {
	repository.ClientStorage
	failReads bool
}

func (f *failingStorage) Get(ctx context.Context, key string) (string, bool, error) {
	if f.failReads {
		return "", false, errors.New("storage unavailable")
	}
	return f.ClientStorage.Get(ctx, key)
}

func (f *failingStorage) Set(context.Context, string, string) error {
	return errors.New("quota exceeded")
}

func (f *failingStorage) Remove(context.Context, string) error {
	return errors.New("storage unavailable")
}

type MockMetrics struct{ mock.Mock }

func (m *MockMetrics) RecordCount(ctx context.Context, metricName string, dimensions map[string]string) error {
	args := m.Called(metricName)
	return args.Error(0)
}
