package book

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/bookstore-api/pkg/errors"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) FindAll(ctx context.Context) ([]*Book, error) {
	args := m.Called(ctx)
	books, _ := args.Get(0).([]*Book)
	return books, args.Error(1)
}

func (m *mockRepository) FindByID(ctx context.Context, id uint) (*Book, error) {
	args := m.Called(ctx, id)
	b, _ := args.Get(0).(*Book)
	return b, args.Error(1)
}

func (m *mockRepository) Save(ctx context.Context, b *Book) (*Book, error) {
	args := m.Called(ctx, b)
	saved, _ := args.Get(0).(*Book)
	return saved, args.Error(1)
}

func (m *mockRepository) DeleteByID(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

// TestService_Delegation 每个方法都只调用一次仓储,结果原样返回
func TestService_Delegation(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepository)
	svc := NewService(repo)

	hobbit := NewBook("The Hobbit", "9780547928227", "Houghton Mifflin", 1937)
	saved := &Book{ID: 7, Title: "The Hobbit", ISBN: "9780547928227", Publisher: "Houghton Mifflin", PublishedYear: 1937}

	repo.On("Save", ctx, hobbit).Return(saved, nil).Once()
	repo.On("FindByID", ctx, uint(7)).Return(saved, nil).Once()
	repo.On("FindAll", ctx).Return([]*Book{saved}, nil).Once()
	repo.On("DeleteByID", ctx, uint(7)).Return(nil).Once()

	created, err := svc.CreateBook(ctx, hobbit)
	require.NoError(t, err)
	assert.Equal(t, uint(7), created.ID)

	got, err := svc.GetBook(ctx, 7)
	require.NoError(t, err)
	assert.Same(t, saved, got)

	list, err := svc.ListBooks(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.DeleteBook(ctx, 7))
	repo.AssertExpectations(t)
}

func TestService_ErrorsPassThrough(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		err  error
		kind func(error) bool
	}{
		{"不存在", ErrBookNotFound, apperrors.IsNotFound},
		{"冲突", ErrBookConflict, apperrors.IsConflict},
		{"存储不可用", apperrors.Unavailable(errors.New("i/o timeout"), "保存图书失败"), apperrors.IsStoreUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockRepository)
			b := &Book{ID: 3, Title: "Silmarillion"}
			repo.On("Save", ctx, b).Return(nil, tt.err).Once()

			got, err := NewService(repo).UpdateBook(ctx, b)
			assert.Nil(t, got)
			assert.Same(t, tt.err, err)
			assert.True(t, tt.kind(err))
		})
	}
}
