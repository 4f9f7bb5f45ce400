package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"task-manager-api/internal/model"
	"task-manager-api/internal/security"
	"task-manager-api/internal/token"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type mockCredentialStore struct {
	mock.Mock
}

func (m *mockCredentialStore) FindByIdentifier(ctx context.Context, identifier string) (model.User, error) {
	args := m.Called(ctx, identifier)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *mockCredentialStore) MigrateCredential(ctx context.Context, userID string, hash []byte, salt []byte) error {
	args := m.Called(ctx, userID, hash, salt)
	return args.Error(0)
}

func newTestIssuer(t *testing.T) *token.Issuer {
	t.Helper()
	issuer, err := token.NewIssuer(testSecret, "tasks-api", "tasks-web", 1)
	require.NoError(t, err)
	return issuer
}

func newTestValidator(t *testing.T) *token.Validator {
	t.Helper()
	validator, err := token.NewValidator(testSecret, "tasks-api", "tasks-web", true)
	require.NoError(t, err)
	return validator
}

func legacyUser(password string) model.User {
	return model.User{
		ID:         "user-legacy-1",
		Name:       "Alice",
		Email:      "alice@example.com",
		Username:   "alice",
		Credential: model.Credential{Legacy: password},
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
}

func modernUser(t *testing.T, password string) model.User {
	t.Helper()
	hash, salt, err := security.HashPassword(password)
	require.NoError(t, err)
	return model.User{
		ID:         "user-modern-1",
		Name:       "Bob",
		Email:      "bob@example.com",
		Username:   "bob",
		Credential: model.Credential{Hash: hash, Salt: salt},
	}
}

func TestLogin_UnknownIdentifier(t *testing.T) {
	store := new(mockCredentialStore)
	store.On("FindByIdentifier", mock.Anything, "nobody").
		Return(model.User{}, model.ErrUserNotFound)

	svc := NewAuthService(store, newTestIssuer(t), nil)

	_, err := svc.Login(context.Background(), "nobody", "whatever")
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)
	store.AssertExpectations(t)
}

func TestLogin_StorePassthroughError(t *testing.T) {
	storeErr := errors.New("connection refused")
	store := new(mockCredentialStore)
	store.On("FindByIdentifier", mock.Anything, "alice").
		Return(model.User{}, storeErr)

	svc := NewAuthService(store, newTestIssuer(t), nil)

	_, err := svc.Login(context.Background(), "alice", "hunter2")
	assert.ErrorIs(t, err, storeErr)
	assert.NotErrorIs(t, err, model.ErrInvalidCredentials)
}

func TestLogin_ModernCredential(t *testing.T) {
	t.Run("correct password succeeds without mutation", func(t *testing.T) {
		user := modernUser(t, "s3cret-pass")
		store := new(mockCredentialStore)
		store.On("FindByIdentifier", mock.Anything, "bob").Return(user, nil)

		svc := NewAuthService(store, newTestIssuer(t), nil)

		result, err := svc.Login(context.Background(), "bob", "s3cret-pass")
		require.NoError(t, err)
		assert.Equal(t, user.ID, result.User.ID)
		assert.NotEmpty(t, result.Token)

		claims, err := newTestValidator(t).Validate(result.Token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.Subject)
		assert.Equal(t, "bob", claims.Username)
		assert.Equal(t, "bob@example.com", claims.Email)

		store.AssertNotCalled(t, "MigrateCredential", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("wrong password fails", func(t *testing.T) {
		user := modernUser(t, "s3cret-pass")
		store := new(mockCredentialStore)
		store.On("FindByIdentifier", mock.Anything, "bob").Return(user, nil)

		svc := NewAuthService(store, newTestIssuer(t), nil)

		_, err := svc.Login(context.Background(), "bob", "wrong-pass")
		assert.ErrorIs(t, err, model.ErrInvalidCredentials)
		store.AssertNotCalled(t, "MigrateCredential", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestLogin_LegacyCredential(t *testing.T) {
	t.Run("correct password migrates once and succeeds", func(t *testing.T) {
		user := legacyUser("hunter2")
		store := new(mockCredentialStore)
		store.On("FindByIdentifier", mock.Anything, "alice").Return(user, nil)

		var migratedHash, migratedSalt []byte
		store.On("MigrateCredential", mock.Anything, user.ID, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				migratedHash = args.Get(2).([]byte)
				migratedSalt = args.Get(3).([]byte)
			}).
			Return(nil).
			Once()

		svc := NewAuthService(store, newTestIssuer(t), nil)

		result, err := svc.Login(context.Background(), "alice", "hunter2")
		require.NoError(t, err)
		assert.Equal(t, user.ID, result.User.ID)

		claims, err := newTestValidator(t).Validate(result.Token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.Subject)

		// The persisted hash+salt must verify the same password.
		require.Len(t, migratedHash, 32)
		require.Len(t, migratedSalt, 16)
		assert.True(t, security.VerifyPassword("hunter2", migratedHash, migratedSalt))

		store.AssertExpectations(t)
	})

	t.Run("wrong password fails and does not migrate", func(t *testing.T) {
		user := legacyUser("hunter2")
		store := new(mockCredentialStore)
		store.On("FindByIdentifier", mock.Anything, "alice").Return(user, nil)

		svc := NewAuthService(store, newTestIssuer(t), nil)

		_, err := svc.Login(context.Background(), "alice", "hunter3")
		assert.ErrorIs(t, err, model.ErrInvalidCredentials)
		store.AssertNotCalled(t, "MigrateCredential", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("migration write failure fails closed", func(t *testing.T) {
		user := legacyUser("hunter2")
		store := new(mockCredentialStore)
		store.On("FindByIdentifier", mock.Anything, "alice").Return(user, nil)
		store.On("MigrateCredential", mock.Anything, user.ID, mock.Anything, mock.Anything).
			Return(errors.New("write conflict"))

		svc := NewAuthService(store, newTestIssuer(t), nil)

		_, err := svc.Login(context.Background(), "alice", "hunter2")
		assert.ErrorIs(t, err, model.ErrInvalidCredentials)
	})
}

func TestLogin_ResetPendingAccount(t *testing.T) {
	user := model.User{
		ID:       "user-unset-1",
		Email:    "carol@example.com",
		Username: "carol",
	}
	store := new(mockCredentialStore)
	store.On("FindByIdentifier", mock.Anything, "carol").Return(user, nil)

	svc := NewAuthService(store, newTestIssuer(t), nil)

	_, err := svc.Login(context.Background(), "carol", "anything")
	assert.ErrorIs(t, err, model.ErrPasswordResetRequired)
	assert.NotErrorIs(t, err, model.ErrInvalidCredentials)
}

// TestLogin_MigrationScenario walks the documented upgrade path: a legacy
// account logs in with its plaintext password, gets migrated, and the second
// login takes the modern path with no further writes.
func TestLogin_MigrationScenario(t *testing.T) {
	user := legacyUser("hunter2")
	store := new(mockCredentialStore)

	var migratedHash, migratedSalt []byte
	store.On("MigrateCredential", mock.Anything, user.ID, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			migratedHash = args.Get(2).([]byte)
			migratedSalt = args.Get(3).([]byte)
		}).
		Return(nil).
		Once()

	store.On("FindByIdentifier", mock.Anything, "alice").Return(user, nil)

	svc := NewAuthService(store, newTestIssuer(t), nil)

	first, err := svc.Login(context.Background(), "alice", "hunter2")
	require.NoError(t, err)
	require.NotEmpty(t, first.Token)
	require.NotNil(t, migratedHash)

	migrated := user
	migrated.Credential = model.Credential{Hash: migratedHash, Salt: migratedSalt}
	require.Equal(t, model.CredentialModern, migrated.Credential.Kind())

	store2 := new(mockCredentialStore)
	store2.On("FindByIdentifier", mock.Anything, "alice").Return(migrated, nil)
	svc2 := NewAuthService(store2, newTestIssuer(t), nil)

	second, err := svc2.Login(context.Background(), "alice", "hunter2")
	require.NoError(t, err)
	assert.NotEmpty(t, second.Token)
	store2.AssertNotCalled(t, "MigrateCredential", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
