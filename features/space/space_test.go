package space

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// --- Mocks ---

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Save(ctx context.Context, sp *Space) error {
	args := m.Called(ctx, sp)
	return args.Error(0)
}

func (m *MockRepository) Get(ctx context.Context, id string) (*Space, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Space), args.Error(1)
}

func (m *MockRepository) ListByUser(ctx context.Context, userID string) ([]Space, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]Space), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, sp *Space) error {
	args := m.Called(ctx, sp)
	return args.Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockChunkStore struct {
	mock.Mock
}

func (m *MockChunkStore) DeleteChunksBySpaceID(ctx context.Context, spaceID string) error {
	args := m.Called(ctx, spaceID)
	return args.Error(0)
}

// --- Tests ---

func TestService_GetOwned(t *testing.T) {
	t.Run("Owner gets the space", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, nil)

		repo.On("Get", mock.Anything, "s-1").Return(&Space{ID: "s-1", UserID: "u-1"}, nil)

		sp, err := svc.GetOwned(context.Background(), "s-1", "u-1")
		assert.NoError(t, err)
		assert.Equal(t, "s-1", sp.ID)
	})

	t.Run("Unknown id", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, nil)

		repo.On("Get", mock.Anything, "nope").Return(nil, ErrNotFound)

		_, err := svc.GetOwned(context.Background(), "nope", "u-1")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Cross-user access is refused", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, nil)

		repo.On("Get", mock.Anything, "s-1").Return(&Space{ID: "s-1", UserID: "other"}, nil)

		_, err := svc.GetOwned(context.Background(), "s-1", "u-1")
		assert.ErrorIs(t, err, ErrNotOwner)
	})
}

func TestService_Update(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, nil)

	repo.On("Get", mock.Anything, "s-1").Return(&Space{ID: "s-1", UserID: "u-1", Name: "Old", Description: "old desc"}, nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(sp *Space) bool {
		return sp.Name == "New" && sp.Description == "new desc"
	})).Return(nil)

	sp, err := svc.Update(context.Background(), "s-1", "u-1", "New", "new desc")
	assert.NoError(t, err)
	assert.Equal(t, "New", sp.Name)
	repo.AssertExpectations(t)
}

func TestService_Update_KeepsNameWhenEmpty(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, nil)

	repo.On("Get", mock.Anything, "s-1").Return(&Space{ID: "s-1", UserID: "u-1", Name: "Keep"}, nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(sp *Space) bool {
		return sp.Name == "Keep"
	})).Return(nil)

	sp, err := svc.Update(context.Background(), "s-1", "u-1", "", "desc")
	assert.NoError(t, err)
	assert.Equal(t, "Keep", sp.Name)
}

func TestService_Delete_RemovesVectorsFirst(t *testing.T) {
	repo := new(MockRepository)
	chunks := new(MockChunkStore)
	svc := NewService(repo, chunks)

	repo.On("Get", mock.Anything, "s-1").Return(&Space{ID: "s-1", UserID: "u-1"}, nil)
	chunks.On("DeleteChunksBySpaceID", mock.Anything, "s-1").Return(nil)
	repo.On("Delete", mock.Anything, "s-1").Return(nil)

	err := svc.Delete(context.Background(), "s-1", "u-1")
	assert.NoError(t, err)
	chunks.AssertExpectations(t)
	repo.AssertExpectations(t)
}

func TestService_Delete_RefusesNonOwner(t *testing.T) {
	repo := new(MockRepository)
	chunks := new(MockChunkStore)
	svc := NewService(repo, chunks)

	repo.On("Get", mock.Anything, "s-1").Return(&Space{ID: "s-1", UserID: "other"}, nil)

	err := svc.Delete(context.Background(), "s-1", "u-1")
	assert.ErrorIs(t, err, ErrNotOwner)
	chunks.AssertNotCalled(t, "DeleteChunksBySpaceID", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
