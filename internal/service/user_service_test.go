package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"task-manager-api/internal/model"
	"task-manager-api/internal/security"
)

type mockUserStore struct {
	mock.Mock
}

func (m *mockUserStore) FindByID(ctx context.Context, id string) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *mockUserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserStore) Create(ctx context.Context, u model.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *mockUserStore) Update(ctx context.Context, u model.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *mockUserStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockUserStore) List(ctx context.Context) ([]model.PublicUser, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.PublicUser), args.Error(1)
}

func TestRegister(t *testing.T) {
	req := model.RegisterRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Username: "alice",
		Password: "hunter2",
	}

	t.Run("creates user with verifying hash and no legacy password", func(t *testing.T) {
		store := new(mockUserStore)
		store.On("ExistsByEmail", mock.Anything, "alice@example.com").Return(false, nil)

		var created model.User
		store.On("Create", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				created = args.Get(1).(model.User)
			}).
			Return(nil)

		svc := NewUserService(store, nil)

		public, err := svc.Register(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, "alice", public.Username)
		assert.NotEmpty(t, public.ID)

		assert.Equal(t, model.CredentialModern, created.Credential.Kind())
		assert.Empty(t, created.Credential.Legacy)
		assert.True(t, security.VerifyPassword("hunter2", created.Credential.Hash, created.Credential.Salt))
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		store := new(mockUserStore)
		store.On("ExistsByEmail", mock.Anything, "alice@example.com").Return(true, nil)

		svc := NewUserService(store, nil)

		_, err := svc.Register(context.Background(), req)
		assert.ErrorIs(t, err, model.ErrEmailTaken)
		store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("missing fields are rejected", func(t *testing.T) {
		store := new(mockUserStore)
		svc := NewUserService(store, nil)

		_, err := svc.Register(context.Background(), model.RegisterRequest{Email: "x@example.com"})
		assert.Error(t, err)
		store.AssertNotCalled(t, "ExistsByEmail", mock.Anything, mock.Anything)
	})
}

func TestUserUpdate(t *testing.T) {
	existing := model.User{ID: "u1", Name: "Alice", Email: "alice@example.com", Username: "alice"}

	store := new(mockUserStore)
	store.On("FindByID", mock.Anything, "u1").Return(existing, nil)

	var updated model.User
	store.On("Update", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			updated = args.Get(1).(model.User)
		}).
		Return(nil)

	svc := NewUserService(store, nil)

	public, err := svc.Update(context.Background(), "u1", model.UpdateUserRequest{Name: "Alice B"})
	require.NoError(t, err)
	assert.Equal(t, "Alice B", public.Name)
	assert.Equal(t, "alice", updated.Username)
}

func TestUserGet_NotFound(t *testing.T) {
	store := new(mockUserStore)
	store.On("FindByID", mock.Anything, "missing").Return(model.User{}, model.ErrUserNotFound)

	svc := NewUserService(store, nil)

	_, err := svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, model.ErrUserNotFound)
}
