package services

import (
	"context"
	"strings"
	"testing"

	"github.com/ntask/core/internal/adapters/graphstore"
	"github.com/ntask/core/internal/domain/entities"
	"github.com/ntask/core/internal/infrastructure/logger"
	"github.com/ntask/core/internal/ports"
)

// recordingNotifier captures webhook events for assertions.
type recordingNotifier struct {
	events []string
	data   []any
}

func (n *recordingNotifier) Notify(ctx context.Context, event string, data any) {
	n.events = append(n.events, event)
	n.data = append(n.data, data)
}

func newTaskFixture(t *testing.T) (*TaskService, *graphstore.Store, *recordingNotifier) {
	t.Helper()
	store := graphstore.New(t.TempDir()+"/graph.json", logger.NewNop())
	notifier := &recordingNotifier{}
	return NewTaskService(store, notifier, logger.NewNop()), store, notifier
}

func TestCreateTaskDefaults(t *testing.T) {
	svc, _, _ := newTaskFixture(t)

	created, err := svc.CreateTask(ports.CreateTaskRequest{
		BoardID: "board-scrum",
		Title:   "New work",
	})
	if err != nil {
		t.Fatalf("CreateTask() error: %v", err)
	}

	if created.Status != entities.TaskStatusTodo {
		t.Errorf("status = %s, want TODO", created.Status)
	}
	if created.Description != "(no description)" {
		t.Errorf("description = %q, want default placeholder", created.Description)
	}
	if !strings.HasPrefix(created.ID, "TASK-") {
		t.Errorf("id = %q, want TASK- prefix", created.ID)
	}
}

func TestCreateTaskWithParentAcrossBoards(t *testing.T) {
	svc, store, _ := newTaskFixture(t)
	other := store.CreateBoard(entities.Board{ID: "b2", Name: "Other"})

	created, err := svc.CreateTask(ports.CreateTaskRequest{
		BoardID:      other.ID,
		Title:        "Cross-board child",
		ParentTaskID: "SCRUM-2",
		RelationType: entities.RelationSubtask,
	})
	if err != nil {
		t.Fatalf("CreateTask() error: %v", err)
	}

	rels := store.Relations(created.ID)
	if len(rels) != 1 {
		t.Fatalf("relations = %d, want 1", len(rels))
	}
	if rels[0].Type != entities.RelationCrossBoard {
		t.Errorf("relation type = %s, want CROSS_BOARD", rels[0].Type)
	}
	if rels[0].FromBoardID != "board-scrum" || rels[0].ToBoardID != other.ID {
		t.Errorf("relation boards = %s -> %s, want board-scrum -> %s", rels[0].FromBoardID, rels[0].ToBoardID, other.ID)
	}
}

func TestCreateTaskAssignmentNotification(t *testing.T) {
	svc, store, _ := newTaskFixture(t)

	created, err := svc.CreateTask(ports.CreateTaskRequest{
		BoardID:  "board-scrum",
		Title:    "Assigned work",
		Assignee: "yuna",
	})
	if err != nil {
		t.Fatalf("CreateTask() error: %v", err)
	}

	notifs := store.Notifications("yuna")
	if len(notifs) != 1 {
		t.Fatalf("notifications for yuna = %d, want 1", len(notifs))
	}
	if notifs[0].TaskID != created.ID {
		t.Errorf("notification task = %s, want %s", notifs[0].TaskID, created.ID)
	}
}

func TestChangeStatusDoneFanOut(t *testing.T) {
	svc, store, notifier := newTaskFixture(t)

	// Graph: parent -> done (SUBTASK), parent -> sibling (SUBTASK),
	// done -> child (SUBTASK), done -> unassigned (RELATED).
	mustAdd := func(task entities.Task) {
		t.Helper()
		if err := store.AddTask(task, nil); err != nil {
			t.Fatalf("AddTask(%s) error: %v", task.ID, err)
		}
	}
	mustAdd(entities.Task{ID: "parent", BoardID: "board-scrum", Title: "Parent", Status: entities.TaskStatusTodo, Assignee: "pat"})
	mustAdd(entities.Task{ID: "done", BoardID: "board-scrum", Title: "Done task", Status: entities.TaskStatusInProgress, Assignee: "dana"})
	mustAdd(entities.Task{ID: "sibling", BoardID: "board-scrum", Title: "Sibling", Status: entities.TaskStatusTodo, Assignee: "sam"})
	mustAdd(entities.Task{ID: "child", BoardID: "board-scrum", Title: "Child", Status: entities.TaskStatusTodo, Assignee: "casey"})
	mustAdd(entities.Task{ID: "loose", BoardID: "board-scrum", Title: "Unassigned", Status: entities.TaskStatusTodo})

	mustAddRelation(t, store, subtask("p-d", "parent", "done"))
	mustAddRelation(t, store, subtask("p-s", "parent", "sibling"))
	mustAddRelation(t, store, subtask("d-c", "done", "child"))
	mustAddRelation(t, store, entities.Relation{ID: "d-l", FromTaskID: "done", ToTaskID: "loose", Type: entities.RelationRelated})

	updated, err := svc.ChangeStatus(context.Background(), "done", entities.TaskStatusDone, "dana")
	if err != nil {
		t.Fatalf("ChangeStatus() error: %v", err)
	}
	if updated.Status != entities.TaskStatusDone {
		t.Fatalf("status = %s, want DONE", updated.Status)
	}

	// Direct neighbors: parent, child, loose. Parents' neighbors: sibling
	// (and done itself, skipped). Loose has no assignee.
	for _, tc := range []struct {
		user string
		want int
	}{
		{"pat", 1},
		{"casey", 1},
		{"sam", 1},
		{"dana", 0},
	} {
		if got := len(store.Notifications(tc.user)); got != tc.want {
			t.Errorf("notifications for %s = %d, want %d", tc.user, got, tc.want)
		}
	}

	if len(notifier.events) != 1 || notifier.events[0] != ports.EventTaskCompleted {
		t.Fatalf("webhook events = %v, want [task_completed]", notifier.events)
	}
	payload, ok := notifier.data[0].(ports.TaskCompletedPayload)
	if !ok {
		t.Fatalf("webhook payload type = %T, want TaskCompletedPayload", notifier.data[0])
	}
	if payload.TaskID != "done" || payload.Actor != "dana" || payload.App != "N-TASK" {
		t.Errorf("payload = %+v, want task done, actor dana, app N-TASK", payload)
	}
	if len(payload.SubTaskIDs) != 1 || payload.SubTaskIDs[0] != "child" {
		t.Errorf("payload.SubTaskIDs = %v, want [child]", payload.SubTaskIDs)
	}
	if len(payload.RelatedTaskIDs) != 1 || payload.RelatedTaskIDs[0] != "loose" {
		t.Errorf("payload.RelatedTaskIDs = %v, want [loose]", payload.RelatedTaskIDs)
	}
}

func TestChangeStatusNonDoneHasNoSideEffects(t *testing.T) {
	svc, store, notifier := newTaskFixture(t)

	if _, err := svc.ChangeStatus(context.Background(), "SCRUM-5", entities.TaskStatusInProgress, "minji"); err != nil {
		t.Fatalf("ChangeStatus() error: %v", err)
	}

	if len(notifier.events) != 0 {
		t.Errorf("webhook events = %v, want none", notifier.events)
	}
	if got := len(store.Notifications("dohyun")); got != 0 {
		t.Errorf("notifications = %d, want 0", got)
	}
}

func TestChangeStatusInvalid(t *testing.T) {
	svc, _, _ := newTaskFixture(t)

	if _, err := svc.ChangeStatus(context.Background(), "SCRUM-2", "BOGUS", ""); err != entities.ErrInvalidStatus {
		t.Fatalf("ChangeStatus(BOGUS) error = %v, want ErrInvalidStatus", err)
	}
}

func TestDeleteTaskCascades(t *testing.T) {
	svc, store, _ := newTaskFixture(t)

	if _, err := svc.AddLog("SCRUM-2", "first entry", "dohyun"); err != nil {
		t.Fatalf("AddLog() error: %v", err)
	}

	if err := svc.DeleteTask("SCRUM-2"); err != nil {
		t.Fatalf("DeleteTask() error: %v", err)
	}

	if _, err := store.Task("SCRUM-2"); err != entities.ErrTaskNotFound {
		t.Errorf("Task(SCRUM-2) error = %v, want ErrTaskNotFound", err)
	}
	if rels := store.Relations("SCRUM-2"); len(rels) != 0 {
		t.Errorf("relations touching deleted task = %d, want 0", len(rels))
	}
	if logs := store.Logs("SCRUM-2"); len(logs) != 0 {
		t.Errorf("logs for deleted task = %d, want 0", len(logs))
	}
}

func TestUpdateTaskParentReplacementKeepsRelated(t *testing.T) {
	svc, store, _ := newTaskFixture(t)

	if err := store.AddTask(entities.Task{ID: "other", BoardID: "board-scrum", Title: "Other", Status: entities.TaskStatusTodo}, nil); err != nil {
		t.Fatal(err)
	}
	mustAddRelation(t, store, entities.Relation{ID: "rel-keep", FromTaskID: "other", ToTaskID: "SCRUM-5", Type: entities.RelationRelated})

	parent := "other"
	if _, err := svc.UpdateTask("SCRUM-5", ports.UpdateTaskRequest{ParentTaskID: &parent}); err != nil {
		t.Fatalf("UpdateTask() error: %v", err)
	}

	var haveRelated, haveNewParent, haveOldParent bool
	for _, r := range store.Relations("SCRUM-5") {
		switch {
		case r.ID == "rel-keep":
			haveRelated = true
		case r.ID == "rel-2-5":
			haveOldParent = true
		case r.FromTaskID == "other" && r.Type == entities.RelationSubtask:
			haveNewParent = true
		}
	}
	if !haveRelated {
		t.Error("RELATED edge was removed by parent replacement")
	}
	if haveOldParent {
		t.Error("old SUBTASK edge survived parent replacement")
	}
	if !haveNewParent {
		t.Error("new parent edge missing")
	}
}

func TestUpdateTaskReassignmentNotifies(t *testing.T) {
	svc, store, _ := newTaskFixture(t)

	assignee := "newbie"
	if _, err := svc.UpdateTask("SCRUM-2", ports.UpdateTaskRequest{Assignee: &assignee}); err != nil {
		t.Fatalf("UpdateTask() error: %v", err)
	}

	if got := len(store.Notifications("newbie")); got != 1 {
		t.Errorf("notifications for newbie = %d, want 1", got)
	}
	// The previous assignee is not notified.
	if got := len(store.Notifications("dohyun")); got != 0 {
		t.Errorf("notifications for dohyun = %d, want 0", got)
	}
}

func TestAddLogNewestFirst(t *testing.T) {
	svc, store, _ := newTaskFixture(t)

	if _, err := svc.AddLog("SCRUM-2", "first", "dohyun"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AddLog("SCRUM-2", "second", "dohyun"); err != nil {
		t.Fatal(err)
	}

	logs := store.Logs("SCRUM-2")
	if len(logs) != 2 {
		t.Fatalf("logs = %d, want 2", len(logs))
	}
	if logs[0].Text != "second" {
		t.Errorf("logs[0].Text = %q, want newest entry first", logs[0].Text)
	}
}
