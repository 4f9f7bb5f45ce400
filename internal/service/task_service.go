package service

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"task-manager-api/internal/model"
	"task-manager-api/pkg/apierror"
)

type TaskStore interface {
	FindByID(ctx context.Context, id string) (model.TaskItem, error)
	Create(ctx context.Context, t model.TaskItem) error
	Update(ctx context.Context, t model.TaskItem) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]model.TaskItem, error)
	ListByUser(ctx context.Context, userID string) ([]model.TaskItem, error)
}

type TaskService struct {
	store TaskStore
}

func NewTaskService(store TaskStore) *TaskService {
	return &TaskService{store: store}
}

// Create stores a new task. When the request does not name an owner the task
// belongs to the authenticated caller.
func (s *TaskService) Create(ctx context.Context, req model.CreateTaskRequest, actorID string) (model.TaskItem, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return model.TaskItem{}, apierror.New("BAD_REQUEST", "title is required", "title", http.StatusBadRequest)
	}

	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		userID = actorID
	}

	now := time.Now().UTC()
	task := model.TaskItem{
		ID:          uuid.NewString(),
		Title:       title,
		Description: req.Description,
		IsCompleted: req.IsCompleted,
		UserID:      userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.Create(ctx, task); err != nil {
		return model.TaskItem{}, err
	}
	return task, nil
}

func (s *TaskService) Get(ctx context.Context, id string) (model.TaskItem, error) {
	return s.store.FindByID(ctx, id)
}

func (s *TaskService) List(ctx context.Context, userID string) ([]model.TaskItem, error) {
	if strings.TrimSpace(userID) != "" {
		return s.store.ListByUser(ctx, userID)
	}
	return s.store.List(ctx)
}

func (s *TaskService) Update(ctx context.Context, id string, req model.UpdateTaskRequest) (model.TaskItem, error) {
	task, err := s.store.FindByID(ctx, id)
	if err != nil {
		return model.TaskItem{}, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return model.TaskItem{}, apierror.New("BAD_REQUEST", "title cannot be empty", "title", http.StatusBadRequest)
		}
		task.Title = title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.IsCompleted != nil {
		task.IsCompleted = *req.IsCompleted
	}
	task.UpdatedAt = time.Now().UTC()

	if err := s.store.Update(ctx, task); err != nil {
		return model.TaskItem{}, err
	}
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}
