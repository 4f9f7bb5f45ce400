package service

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"task-manager-api/internal/model"
	"task-manager-api/internal/security"
	"task-manager-api/pkg/apierror"
)

type UserStore interface {
	FindByID(ctx context.Context, id string) (model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, u model.User) error
	Update(ctx context.Context, u model.User) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]model.PublicUser, error)
}

type UserService struct {
	store UserStore
	audit *AuditService
}

func NewUserService(store UserStore, audit *AuditService) *UserService {
	return &UserService{store: store, audit: audit}
}

// Register creates a user with a hashed credential. Accounts created here
// never carry a legacy plaintext password.
func (s *UserService) Register(ctx context.Context, req model.RegisterRequest) (model.PublicUser, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	username := strings.TrimSpace(req.Username)

	if name == "" || email == "" || username == "" || req.Password == "" {
		return model.PublicUser{}, apierror.New("BAD_REQUEST", "name, email, username and password are required", "", http.StatusBadRequest)
	}

	taken, err := s.store.ExistsByEmail(ctx, email)
	if err != nil {
		return model.PublicUser{}, err
	}
	if taken {
		return model.PublicUser{}, model.ErrEmailTaken
	}

	hash, salt, err := security.HashPassword(req.Password)
	if err != nil {
		return model.PublicUser{}, err
	}

	now := time.Now().UTC()
	user := model.User{
		ID:         uuid.NewString(),
		Name:       name,
		Email:      email,
		Username:   username,
		Credential: model.Credential{Hash: hash, Salt: salt},
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.store.Create(ctx, user); err != nil {
		return model.PublicUser{}, err
	}

	s.audit.Record(ctx, ActionUserRegistered, user.ID, user.Email, StatusSuccess, "")
	return user.Public(), nil
}

func (s *UserService) Get(ctx context.Context, id string) (model.PublicUser, error) {
	user, err := s.store.FindByID(ctx, id)
	if err != nil {
		return model.PublicUser{}, err
	}
	return user.Public(), nil
}

func (s *UserService) List(ctx context.Context) ([]model.PublicUser, error) {
	return s.store.List(ctx)
}

func (s *UserService) Update(ctx context.Context, id string, req model.UpdateUserRequest) (model.PublicUser, error) {
	user, err := s.store.FindByID(ctx, id)
	if err != nil {
		return model.PublicUser{}, err
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		user.Name = name
	}
	if username := strings.TrimSpace(req.Username); username != "" {
		user.Username = username
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.store.Update(ctx, user); err != nil {
		return model.PublicUser{}, err
	}
	return user.Public(), nil
}

func (s *UserService) Delete(ctx context.Context, id string, actorID string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	s.audit.Record(ctx, ActionUserDeleted, actorID, id, StatusSuccess, "")
	return nil
}
