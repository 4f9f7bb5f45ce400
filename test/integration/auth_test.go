//go:build integration

package integration

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-manager-api/internal/model"
	"task-manager-api/internal/security"
)

func TestLegacyLoginMigratesAndProtectsEndpoints(t *testing.T) {
	users := newMemUserStore()
	users.seed(model.User{
		ID:         "u-legacy",
		Name:       "Alice",
		Email:      "alice@example.com",
		Username:   "alice",
		Credential: model.Credential{Legacy: "hunter2"},
		CreatedAt:  time.Now().UTC(),
	})
	audit := &memAuditStore{}
	server := newServer(t, users, newMemTaskStore(), audit)

	// First login against the stored plaintext upgrades it in place.
	result := login(t, server, "alice", "hunter2")
	assert.Equal(t, "u-legacy", result.User.ID)

	stored, ok := users.get("u-legacy")
	require.True(t, ok)
	assert.Equal(t, model.CredentialModern, stored.Credential.Kind())
	assert.Empty(t, stored.Credential.Legacy)
	assert.True(t, security.VerifyPassword("hunter2", stored.Credential.Hash, stored.Credential.Salt))
	assert.Contains(t, audit.actions(), "auth.credential_migrated")

	// Second login takes the hashed path and still works.
	second := login(t, server, "alice@example.com", "hunter2")
	require.NotEmpty(t, second.Token)

	// The issued token opens protected endpoints.
	resp, env := doJSON(t, http.MethodGet, server.URL+"/api/v2/auth/me", nil, result.Token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var me model.PublicUser
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, "alice", me.Username)

	// No token, no tasks.
	resp, _ = doJSON(t, http.MethodGet, server.URL+"/api/v2/tasks", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	users := newMemUserStore()
	users.seed(model.User{
		ID:         "u-legacy",
		Username:   "bob",
		Email:      "bob@example.com",
		Credential: model.Credential{Legacy: "correct-horse"},
	})
	server := newServer(t, users, newMemTaskStore(), &memAuditStore{})

	resp, env := doJSON(t, http.MethodPost, server.URL+"/api/v2/auth/login", map[string]string{
		"identifier": "bob",
		"password":   "battery-staple",
	}, "")

	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.NotNil(t, env.Error)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)

	// The failed attempt must not alter the stored credential.
	stored, ok := users.get("u-legacy")
	require.True(t, ok)
	assert.Equal(t, model.CredentialLegacy, stored.Credential.Kind())
}

func TestLoginRequiresResetWhenCredentialUnset(t *testing.T) {
	users := newMemUserStore()
	users.seed(model.User{ID: "u-empty", Username: "carol", Email: "carol@example.com"})
	server := newServer(t, users, newMemTaskStore(), &memAuditStore{})

	resp, env := doJSON(t, http.MethodPost, server.URL+"/api/v2/auth/login", map[string]string{
		"identifier": "carol",
		"password":   "anything",
	}, "")

	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.NotNil(t, env.Error)
	assert.Equal(t, "PASSWORD_RESET_REQUIRED", env.Error.Code)
}

func TestRegisterThenLogin(t *testing.T) {
	users := newMemUserStore()
	server := newServer(t, users, newMemTaskStore(), &memAuditStore{})

	resp, env := doJSON(t, http.MethodPost, server.URL+"/api/v2/users", map[string]string{
		"name":     "Dave",
		"email":    "dave@example.com",
		"username": "dave",
		"password": "s3cret-enough",
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created model.PublicUser
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.NotEmpty(t, created.ID)

	// Registration stores a hash from day one, never a plaintext.
	stored, ok := users.get(created.ID)
	require.True(t, ok)
	assert.Equal(t, model.CredentialModern, stored.Credential.Kind())

	result := login(t, server, "dave@example.com", "s3cret-enough")
	assert.Equal(t, created.ID, result.User.ID)
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	users := newMemUserStore()
	server := newServer(t, users, newMemTaskStore(), &memAuditStore{})

	payload := map[string]string{
		"name":     "Eve",
		"email":    "eve@example.com",
		"username": "eve",
		"password": "first-password",
	}
	resp, _ := doJSON(t, http.MethodPost, server.URL+"/api/v2/users", payload, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	payload["username"] = "eve2"
	resp, env := doJSON(t, http.MethodPost, server.URL+"/api/v2/users", payload, "")
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.NotNil(t, env.Error)
	assert.Equal(t, "ALREADY_EXISTS", env.Error.Code)
}
