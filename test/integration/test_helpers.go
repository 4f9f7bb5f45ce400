//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"task-manager-api/internal/config"
	"task-manager-api/internal/handler"
	"task-manager-api/internal/middleware"
	"task-manager-api/internal/model"
	"task-manager-api/internal/router"
	"task-manager-api/internal/service"
	"task-manager-api/internal/token"
)

const testSecret = "integration-test-secret-0123456789"

// memUserStore is an in-memory stand-in for the users table so the full
// HTTP stack can run without PostgreSQL.
type memUserStore struct {
	mu    sync.Mutex
	users map[string]model.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[string]model.User)}
}

func (s *memUserStore) seed(u model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

func (s *memUserStore) get(id string) (model.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	return u, ok
}

func (s *memUserStore) FindByID(ctx context.Context, id string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

func (s *memUserStore) FindByIdentifier(ctx context.Context, identifier string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	needle := strings.ToLower(identifier)
	for _, u := range s.users {
		if strings.ToLower(u.Email) == needle || strings.ToLower(u.Username) == needle {
			return u, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

func (s *memUserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (s *memUserStore) Create(ctx context.Context, u model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
	return nil
}

func (s *memUserStore) MigrateCredential(ctx context.Context, userID string, hash []byte, salt []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return model.ErrUserNotFound
	}
	u.Credential = model.Credential{Hash: hash, Salt: salt}
	s.users[userID] = u
	return nil
}

func (s *memUserStore) Update(ctx context.Context, u model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		return model.ErrUserNotFound
	}
	s.users[u.ID] = u
	return nil
}

func (s *memUserStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return model.ErrUserNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *memUserStore) List(ctx context.Context) ([]model.PublicUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.PublicUser, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u.Public())
	}
	return out, nil
}

type memTaskStore struct {
	mu    sync.Mutex
	tasks map[string]model.TaskItem
}

func newMemTaskStore() *memTaskStore {
	return &memTaskStore{tasks: make(map[string]model.TaskItem)}
}

func (s *memTaskStore) FindByID(ctx context.Context, id string) (model.TaskItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return model.TaskItem{}, model.ErrTaskNotFound
	}
	return t, nil
}

func (s *memTaskStore) Create(ctx context.Context, t model.TaskItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[t.ID] = t
	return nil
}

func (s *memTaskStore) Update(ctx context.Context, t model.TaskItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[t.ID]; !ok {
		return model.ErrTaskNotFound
	}
	s.tasks[t.ID] = t
	return nil
}

func (s *memTaskStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		return model.ErrTaskNotFound
	}
	delete(s.tasks, id)
	return nil
}

func (s *memTaskStore) List(ctx context.Context) ([]model.TaskItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.TaskItem, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t)
	}
	return out, nil
}

func (s *memTaskStore) ListByUser(ctx context.Context, userID string) ([]model.TaskItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.TaskItem, 0)
	for _, t := range s.tasks {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

type memAuditStore struct {
	mu      sync.Mutex
	entries []model.AuditEntry
}

func (s *memAuditStore) Log(ctx context.Context, entry model.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

func (s *memAuditStore) Query(ctx context.Context, query model.AuditQuery) ([]model.AuditEntry, model.Meta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.AuditEntry, 0, len(s.entries))
	for _, e := range s.entries {
		if query.Action != "" && e.Action != query.Action {
			continue
		}
		if query.Status != "" && e.Status != query.Status {
			continue
		}
		out = append(out, e)
	}
	return out, model.Meta{Page: 1, Limit: len(out), Total: len(out), TotalPages: 1}, nil
}

func (s *memAuditStore) actions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.Action)
	}
	return out
}

func newServer(t *testing.T, users *memUserStore, tasks *memTaskStore, audit *memAuditStore) *httptest.Server {
	t.Helper()

	cfg := &config.Config{
		Env:            config.EnvDevelopment,
		RequestTimeout: 30 * time.Second,
		CORSOrigins:    []string{"*"},
	}

	issuer, err := token.NewIssuer(testSecret, "tasks-api", "tasks-web", 1)
	require.NoError(t, err)
	validator, err := token.NewValidator(testSecret, "tasks-api", "tasks-web", true)
	require.NoError(t, err)

	auditService := service.NewAuditService(audit)
	authService := service.NewAuthService(users, issuer, auditService)
	userService := service.NewUserService(users, auditService)
	taskService := service.NewTaskService(tasks)

	appRouter := router.New(cfg, middleware.NewAuthMiddleware(validator), router.Handlers{
		Auth:  handler.NewAuthHandler(authService, userService),
		User:  handler.NewUserHandler(userService),
		Task:  handler.NewTaskHandler(taskService),
		Audit: handler.NewAuditHandler(auditService),
	})

	server := httptest.NewServer(appRouter)
	t.Cleanup(server.Close)
	return server
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *model.APIError `json:"error"`
}

func doJSON(t *testing.T, method string, url string, body any, bearer string) (*http.Response, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp, env
}

func login(t *testing.T, server *httptest.Server, identifier string, password string) model.LoginResult {
	t.Helper()

	resp, env := doJSON(t, http.MethodPost, server.URL+"/api/v2/auth/login", map[string]string{
		"identifier": identifier,
		"password":   password,
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result model.LoginResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	require.NotEmpty(t, result.Token)
	return result
}
