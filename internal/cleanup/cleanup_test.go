package cleanup

import (
	"context"
	"errors"
	"testing"

	"github.com/PrassV/Propo-Staging-sub004/internal/database"
	"github.com/PrassV/Propo-Staging-sub004/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) GetPropertyByID(ctx context.Context, id string) (*models.Property, error) {
	args := m.Called(ctx, id)
	if p, ok := args.Get(0).(*models.Property); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) DeleteProperty(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockStore) RecordDeletion(ctx context.Context, entry *models.DeleteLog) error {
	return m.Called(ctx, entry).Error(0)
}

type mockObjects struct {
	mock.Mock
}

func (m *mockObjects) Remove(ctx context.Context, paths ...string) error {
	return m.Called(ctx, paths).Error(0)
}

type mockIndex struct {
	mock.Mock
}

func (m *mockIndex) DeleteProperty(id string) error {
	return m.Called(id).Error(0)
}

func storedProperty() *models.Property {
	return &models.Property{
		ID:           "p1",
		OwnerID:      "owner-1",
		PropertyName: "Lake View",
		ImagePaths:   models.StringList{"p1/a-front.jpg", "p1/b-back.jpg"},
	}
}

func TestRemoveProperty(t *testing.T) {
	store, objects, index := &mockStore{}, &mockObjects{}, &mockIndex{}
	store.On("GetPropertyByID", mock.Anything, "p1").Return(storedProperty(), nil)
	objects.On("Remove", mock.Anything, []string{"p1/a-front.jpg", "p1/b-back.jpg"}).Return(nil).Once()
	store.On("DeleteProperty", mock.Anything, "p1").Return(nil).Once()
	store.On("RecordDeletion", mock.Anything, mock.MatchedBy(func(l *models.DeleteLog) bool {
		return l.PropertyID == "p1" && l.OwnerID == "owner-1" && l.ImagesRemoved == 2 && l.Reason == models.DeleteReasonManual
	})).Return(nil).Once()
	index.On("DeleteProperty", "p1").Return(nil).Once()

	result, err := NewService(store, objects, index, nil).RemoveProperty(context.Background(), "p1", "")
	require.NoError(t, err)
	assert.Equal(t, 2, result.ImagesRemoved)
	assert.Equal(t, "Lake View", result.PropertyName)
	assert.Empty(t, result.Warnings)

	store.AssertExpectations(t)
	objects.AssertExpectations(t)
	index.AssertExpectations(t)
}

func TestRemoveProperty_StorageFailureKeepsRow(t *testing.T) {
	store, objects := &mockStore{}, &mockObjects{}
	store.On("GetPropertyByID", mock.Anything, "p1").Return(storedProperty(), nil)
	objects.On("Remove", mock.Anything, mock.Anything).Return(errors.New("bucket unavailable")).Once()

	_, err := NewService(store, objects, nil, nil).RemoveProperty(context.Background(), "p1", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket unavailable")
	store.AssertNotCalled(t, "DeleteProperty", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "RecordDeletion", mock.Anything, mock.Anything)
}

func TestRemoveProperty_NotFound(t *testing.T) {
	store, objects := &mockStore{}, &mockObjects{}
	store.On("GetPropertyByID", mock.Anything, "missing").Return(nil, database.ErrNotFound)

	_, err := NewService(store, objects, nil, nil).RemoveProperty(context.Background(), "missing", "")
	assert.ErrorIs(t, err, database.ErrNotFound)
	objects.AssertNotCalled(t, "Remove", mock.Anything, mock.Anything)
}

func TestRemoveProperty_WithoutImagesAndBestEffortSteps(t *testing.T) {
	store, objects, index := &mockStore{}, &mockObjects{}, &mockIndex{}
	p := storedProperty()
	p.ImagePaths = models.StringList{}
	store.On("GetPropertyByID", mock.Anything, "p1").Return(p, nil)
	store.On("DeleteProperty", mock.Anything, "p1").Return(nil).Once()
	store.On("RecordDeletion", mock.Anything, mock.Anything).Return(errors.New("log table missing")).Once()
	index.On("DeleteProperty", "p1").Return(errors.New("search down")).Once()

	result, err := NewService(store, objects, index, nil).RemoveProperty(context.Background(), "p1", "duplicate")
	require.NoError(t, err)
	assert.Equal(t, 0, result.ImagesRemoved)
	assert.Equal(t, "duplicate", result.Reason)
	assert.Len(t, result.Warnings, 2)
	objects.AssertNotCalled(t, "Remove", mock.Anything, mock.Anything)
}
