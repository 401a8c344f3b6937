package functions

import (
	"context"

	"github.com/PrassV/Propo-Staging-sub004/internal/models"
	"github.com/stretchr/testify/mock"
)

type mockPropertyStore struct {
	mock.Mock
}

func (m *mockPropertyStore) InsertProperty(ctx context.Context, p *models.Property) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockPropertyStore) UpdatePropertyImages(ctx context.Context, id string, urls, paths []string) error {
	args := m.Called(ctx, id, urls, paths)
	return args.Error(0)
}

func (m *mockPropertyStore) DeleteProperty(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockObjectStore struct {
	mock.Mock
}

func (m *mockObjectStore) Upload(ctx context.Context, path, contentType string, data []byte) error {
	args := m.Called(ctx, path, contentType, data)
	return args.Error(0)
}

func (m *mockObjectStore) PublicURL(path string) string {
	return "https://cdn.example.com/propertyimage/" + path
}

func (m *mockObjectStore) Remove(ctx context.Context, paths ...string) error {
	args := m.Called(ctx, paths)
	return args.Error(0)
}

type mockIndexer struct {
	mock.Mock
}

func (m *mockIndexer) IndexProperty(p *models.Property) error {
	args := m.Called(p)
	return args.Error(0)
}

type mockLimiter struct {
	allow bool
}

func (m *mockLimiter) AllowRequest(string) bool {
	return m.allow
}
