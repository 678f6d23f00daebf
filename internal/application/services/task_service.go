package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ntask/core/internal/adapters/graphstore"
	"github.com/ntask/core/internal/domain/entities"
	"github.com/ntask/core/internal/infrastructure/logger"
	"github.com/ntask/core/internal/ports"
)

const appName = "N-TASK"

// TaskService handles task mutations, status propagation and the
// completion webhook.
type TaskService struct {
	store    *graphstore.Store
	notifier ports.Notifier
	logger   *logger.Logger
}

// NewTaskService creates a new task service.
func NewTaskService(store *graphstore.Store, notifier ports.Notifier, logger *logger.Logger) *TaskService {
	return &TaskService{store: store, notifier: notifier, logger: logger}
}

// CreateTask creates a task with a fresh session-unique id, defaulting to
// TODO. An optional parent relation is created with it; the relation type is
// upgraded to CROSS_BOARD when the parent lives on a different board. A new
// assignee gets an assignment notification.
func (s *TaskService) CreateTask(req ports.CreateTaskRequest) (*entities.Task, error) {
	now := time.Now().UTC()

	task := entities.Task{
		ID:          s.freshTaskID(now),
		BoardID:     req.BoardID,
		Title:       req.Title,
		Description: req.Description,
		Status:      entities.TaskStatusTodo,
		Assignee:    req.Assignee,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if task.Description == "" {
		task.Description = "(no description)"
	}

	var rel *entities.Relation
	if req.ParentTaskID != "" && req.RelationType != "" {
		if !req.RelationType.IsValid() {
			return nil, entities.ErrInvalidRelation
		}
		parent, err := s.store.Task(req.ParentTaskID)
		if err != nil {
			return nil, fmt.Errorf("parent task: %w", err)
		}
		rel = &entities.Relation{
			ID:         fmt.Sprintf("rel-%s-%s-%s", parent.ID, task.ID, uuid.NewString()[:8]),
			FromTaskID: parent.ID,
			ToTaskID:   task.ID,
			Type:       req.RelationType,
		}
		if parent.BoardID != task.BoardID {
			rel.Type = entities.RelationCrossBoard
			rel.FromBoardID = parent.BoardID
			rel.ToBoardID = task.BoardID
		}
	}

	if err := s.store.AddTask(task, rel); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	if task.Assignee != "" {
		s.store.AddNotifications([]entities.Notification{{
			ID:        uuid.NewString(),
			UserID:    task.Assignee,
			TaskID:    task.ID,
			Message:   fmt.Sprintf("You have been assigned %q (ID: %s)", task.Title, task.ID),
			Type:      entities.NotificationTask,
			CreatedAt: now,
		}})
	}

	s.logger.Info("Task created", "task_id", task.ID, "board_id", task.BoardID)
	return &task, nil
}

// GetTask returns a task by id.
func (s *TaskService) GetTask(id string) (*entities.Task, error) {
	return s.store.Task(id)
}

// UpdateTask edits title/description/assignee and replaces the parent
// relation. Parent replacement deletes every non-RELATED incoming edge and
// adds at most one new edge; RELATED edges survive. Reassignment to a new,
// non-empty, different assignee notifies the new assignee.
func (s *TaskService) UpdateTask(id string, req ports.UpdateTaskRequest) (*entities.Task, error) {
	task, err := s.store.Task(id)
	if err != nil {
		return nil, err
	}

	previousAssignee := task.Assignee
	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Assignee != nil {
		task.Assignee = *req.Assignee
	}
	task.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateTask(*task); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}

	if req.ParentTaskID != nil {
		var rel *entities.Relation
		if *req.ParentTaskID != "" {
			typ := entities.RelationSubtask
			if req.RelationType != nil {
				typ = *req.RelationType
			}
			if !typ.IsValid() || typ == entities.RelationRelated {
				return nil, entities.ErrInvalidRelation
			}
			parent, err := s.store.Task(*req.ParentTaskID)
			if err != nil {
				return nil, fmt.Errorf("parent task: %w", err)
			}
			rel = &entities.Relation{
				ID:         fmt.Sprintf("rel-%s-%s-%s", parent.ID, task.ID, uuid.NewString()[:8]),
				FromTaskID: parent.ID,
				ToTaskID:   task.ID,
				Type:       typ,
			}
			if parent.BoardID != task.BoardID {
				rel.Type = entities.RelationCrossBoard
				rel.FromBoardID = parent.BoardID
				rel.ToBoardID = task.BoardID
			}
		}
		if err := s.store.ReplaceParent(task.ID, rel); err != nil {
			return nil, fmt.Errorf("replace parent: %w", err)
		}
	}

	if task.Assignee != "" && task.Assignee != previousAssignee {
		s.store.AddNotifications([]entities.Notification{{
			ID:        uuid.NewString(),
			UserID:    task.Assignee,
			TaskID:    task.ID,
			Message:   fmt.Sprintf("%q (ID: %s) has been reassigned to you", task.Title, task.ID),
			Type:      entities.NotificationTask,
			CreatedAt: time.Now().UTC(),
		}})
	}

	s.logger.Info("Task updated", "task_id", task.ID)
	return task, nil
}

// DeleteTask removes the task, all relations touching it and its log
// history as one mutation.
func (s *TaskService) DeleteTask(id string) error {
	if err := s.store.DeleteTask(id); err != nil {
		return err
	}
	s.logger.Info("Task deleted", "task_id", id)
	return nil
}

// SetImportant toggles the display flag. No side effects.
func (s *TaskService) SetImportant(id string, important bool) (*entities.Task, error) {
	task, err := s.store.Task(id)
	if err != nil {
		return nil, err
	}
	task.IsImportant = important
	task.UpdatedAt = time.Now().UTC()
	if err := s.store.UpdateTask(*task); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return task, nil
}

// AddLog appends a log entry to a task, newest first.
func (s *TaskService) AddLog(taskID, text, author string) (*entities.TaskLog, error) {
	now := time.Now().UTC()
	log := entities.TaskLog{
		ID:        fmt.Sprintf("%s-%d", taskID, now.UnixMilli()),
		TaskID:    taskID,
		Text:      text,
		Author:    author,
		CreatedAt: now,
	}
	if err := s.store.AddLog(log); err != nil {
		return nil, err
	}
	return &log, nil
}

// Logs returns the task's log history, newest first.
func (s *TaskService) Logs(taskID string) ([]entities.TaskLog, error) {
	if _, err := s.store.Task(taskID); err != nil {
		return nil, err
	}
	return s.store.Logs(taskID), nil
}

// SetPosition records a manual drag override for the task's node.
func (s *TaskService) SetPosition(taskID string, pos entities.Position) error {
	return s.store.SetPosition(taskID, pos)
}

// ChangeStatus updates a task's status unconditionally; any transition is
// legal. When the new status is DONE, and only then, the committed update is
// followed by completion notifications to connected assignees and a
// best-effort webhook. Neither side effect can fail the status change.
func (s *TaskService) ChangeStatus(ctx context.Context, taskID string, status entities.TaskStatus, actor string) (*entities.Task, error) {
	if !status.IsValid() {
		return nil, entities.ErrInvalidStatus
	}

	task, err := s.store.Task(taskID)
	if err != nil {
		return nil, err
	}
	task.Status = status
	now := time.Now().UTC()
	task.UpdatedAt = now
	if err := s.store.UpdateTask(*task); err != nil {
		return nil, fmt.Errorf("change status: %w", err)
	}

	if status != entities.TaskStatusDone {
		return task, nil
	}

	relations := s.store.Relations("")
	s.fanOutCompletion(task, relations, now)
	s.emitCompletionWebhook(ctx, task, relations, actor, now)

	return task, nil
}

// fanOutCompletion notifies the assignees of the completed task's direct
// neighbors and of its parents' neighbors, once each, skipping unassigned
// tasks and the completed task itself.
func (s *TaskService) fanOutCompletion(task *entities.Task, relations []entities.Relation, now time.Time) {
	targetIDs := Neighbors(task.ID, relations)
	for _, parentID := range Parents(task.ID, relations) {
		targetIDs = append(targetIDs, Neighbors(parentID, relations)...)
	}

	seen := make(map[string]bool)
	var notifs []entities.Notification
	for _, id := range targetIDs {
		if id == task.ID || seen[id] {
			continue
		}
		seen[id] = true
		target, err := s.store.Task(id)
		if err != nil || target.Assignee == "" {
			continue
		}
		notifs = append(notifs, entities.Notification{
			ID:        fmt.Sprintf("%d-%s-%s", now.UnixMilli(), task.ID, target.ID),
			UserID:    target.Assignee,
			TaskID:    target.ID,
			Message:   fmt.Sprintf("%q (ID: %s) is done. Check related task %s (%s)", task.Title, task.ID, target.ID, target.Title),
			Type:      entities.NotificationTask,
			CreatedAt: now,
		})
	}
	s.store.AddNotifications(notifs)
}

// emitCompletionWebhook posts the completion payload: task fields, the
// acting user, the full log history and the outgoing SUBTASK/RELATED
// targets. Delivery is at-most-once; failures stay inside the notifier.
func (s *TaskService) emitCompletionWebhook(ctx context.Context, task *entities.Task, relations []entities.Relation, actor string, now time.Time) {
	logs := s.store.Logs(task.ID)
	whLogs := make([]ports.WebhookLog, 0, len(logs))
	for _, l := range logs {
		whLogs = append(whLogs, ports.WebhookLog{
			ID:        l.ID,
			Text:      l.Text,
			Author:    l.Author,
			CreatedAt: l.CreatedAt.Format(time.RFC3339),
		})
	}

	payload := ports.TaskCompletedPayload{
		TaskID:         task.ID,
		Title:          task.Title,
		Description:    task.Description,
		Status:         task.Status,
		Assignee:       task.Assignee,
		Actor:          actor,
		FinishedAt:     now.Format(time.RFC3339),
		Logs:           whLogs,
		SubTaskIDs:     OutgoingIDs(task.ID, entities.RelationSubtask, relations),
		RelatedTaskIDs: OutgoingIDs(task.ID, entities.RelationRelated, relations),
		App:            appName,
	}

	s.notifier.Notify(ctx, ports.EventTaskCompleted, payload)
}

// freshTaskID returns a time-based id unique within the running session.
func (s *TaskService) freshTaskID(now time.Time) string {
	id := fmt.Sprintf("TASK-%d", now.UnixMilli())
	for i := 1; ; i++ {
		if _, err := s.store.Task(id); err != nil {
			return id
		}
		id = fmt.Sprintf("TASK-%d-%d", now.UnixMilli(), i)
	}
}
