package services

import (
	"sort"
	"testing"

	"github.com/ntask/core/internal/adapters/graphstore"
	"github.com/ntask/core/internal/domain/entities"
	"github.com/ntask/core/internal/infrastructure/logger"
)

func task(id, boardID string) entities.Task {
	return entities.Task{ID: id, BoardID: boardID, Title: id, Status: entities.TaskStatusTodo}
}

func subtask(id, from, to string) entities.Relation {
	return entities.Relation{ID: id, FromTaskID: from, ToTaskID: to, Type: entities.RelationSubtask}
}

func TestLevels(t *testing.T) {
	tests := []struct {
		name      string
		tasks     []entities.Task
		relations []entities.Relation
		want      map[string]int
	}{
		{
			name:  "chain",
			tasks: []entities.Task{task("a", "b1"), task("b", "b1"), task("c", "b1")},
			relations: []entities.Relation{
				subtask("r1", "a", "b"),
				subtask("r2", "b", "c"),
			},
			want: map[string]int{"a": 0, "b": 1, "c": 2},
		},
		{
			name:  "diamond takes the longest path",
			tasks: []entities.Task{task("a", "b1"), task("b", "b1"), task("c", "b1"), task("d", "b1")},
			relations: []entities.Relation{
				subtask("r1", "a", "b"),
				subtask("r2", "a", "c"),
				subtask("r3", "b", "d"),
				subtask("r4", "c", "d"),
			},
			want: map[string]int{"a": 0, "b": 1, "c": 1, "d": 2},
		},
		{
			name:  "deep path wins over shortcut",
			tasks: []entities.Task{task("a", "b1"), task("b", "b1"), task("c", "b1")},
			relations: []entities.Relation{
				subtask("r1", "a", "c"),
				subtask("r2", "a", "b"),
				subtask("r3", "b", "c"),
			},
			want: map[string]int{"a": 0, "b": 1, "c": 2},
		},
		{
			name:  "non-subtask relations do not affect levels",
			tasks: []entities.Task{task("a", "b1"), task("b", "b1")},
			relations: []entities.Relation{
				{ID: "r1", FromTaskID: "a", ToTaskID: "b", Type: entities.RelationRelated},
			},
			want: map[string]int{"a": 0, "b": 0},
		},
		{
			name:      "isolated tasks stay at level zero",
			tasks:     []entities.Task{task("a", "b1"), task("b", "b1")},
			relations: nil,
			want:      map[string]int{"a": 0, "b": 0},
		},
		{
			name:  "edges touching unknown tasks are ignored",
			tasks: []entities.Task{task("a", "b1"), task("b", "b1")},
			relations: []entities.Relation{
				subtask("r1", "ghost", "b"),
				subtask("r2", "a", "b"),
			},
			want: map[string]int{"a": 0, "b": 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Levels(tt.tasks, tt.relations)
			if len(got) != len(tt.want) {
				t.Fatalf("Levels() returned %d entries, want %d", len(got), len(tt.want))
			}
			for id, want := range tt.want {
				if got[id] != want {
					t.Errorf("level[%s] = %d, want %d", id, got[id], want)
				}
			}
		})
	}
}

func TestLevelsCycleTerminates(t *testing.T) {
	tasks := []entities.Task{task("a", "b1"), task("b", "b1"), task("c", "b1"), task("root", "b1")}
	relations := []entities.Relation{
		subtask("r0", "root", "a"),
		subtask("r1", "a", "b"),
		subtask("r2", "b", "c"),
		subtask("r3", "c", "a"),
	}

	// The call must return; the exact levels inside the cycle are whatever
	// the capped relaxation last computed.
	got := Levels(tasks, relations)

	if got["root"] != 0 {
		t.Errorf("level[root] = %d, want 0", got["root"])
	}
	for _, id := range []string{"a", "b", "c"} {
		if got[id] < 1 {
			t.Errorf("level[%s] = %d, want >= 1", id, got[id])
		}
	}
}

func TestNeighborsAndParents(t *testing.T) {
	relations := []entities.Relation{
		subtask("r1", "a", "b"),
		subtask("r2", "c", "b"),
		{ID: "r3", FromTaskID: "b", ToTaskID: "d", Type: entities.RelationRelated},
		{ID: "r4", FromTaskID: "x", ToTaskID: "y", Type: entities.RelationSubtask},
	}

	neighbors := Neighbors("b", relations)
	sort.Strings(neighbors)
	wantNeighbors := []string{"a", "c", "d"}
	if len(neighbors) != len(wantNeighbors) {
		t.Fatalf("Neighbors(b) = %v, want %v", neighbors, wantNeighbors)
	}
	for i, id := range wantNeighbors {
		if neighbors[i] != id {
			t.Errorf("Neighbors(b)[%d] = %s, want %s", i, neighbors[i], id)
		}
	}

	parents := Parents("b", relations)
	sort.Strings(parents)
	if len(parents) != 2 || parents[0] != "a" || parents[1] != "c" {
		t.Errorf("Parents(b) = %v, want [a c]", parents)
	}

	if got := OutgoingIDs("b", entities.RelationRelated, relations); len(got) != 1 || got[0] != "d" {
		t.Errorf("OutgoingIDs(b, RELATED) = %v, want [d]", got)
	}
}

func newTestStore(t *testing.T) *graphstore.Store {
	t.Helper()
	return graphstore.New(t.TempDir()+"/graph.json", logger.NewNop())
}

func TestRenderHighlighting(t *testing.T) {
	store := newTestStore(t)
	svc := NewGraphService(store, logger.NewNop())

	board := store.CreateBoard(entities.Board{ID: "b1", Name: "Board One"})
	for _, id := range []string{"a", "b", "c", "d"} {
		if err := store.AddTask(task(id, board.ID), nil); err != nil {
			t.Fatalf("AddTask(%s) error: %v", id, err)
		}
	}
	mustAddRelation(t, store, subtask("r1", "a", "b"))
	mustAddRelation(t, store, subtask("r2", "b", "c"))

	nodes, edges, err := svc.Render(board.ID, "b")
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	wantHighlighted := map[string]bool{"a": true, "b": true, "c": true}
	for _, n := range nodes {
		if n.Highlighted != wantHighlighted[n.TaskID] {
			t.Errorf("node %s highlighted = %v, want %v", n.TaskID, n.Highlighted, wantHighlighted[n.TaskID])
		}
		if n.Dimmed == wantHighlighted[n.TaskID] {
			t.Errorf("node %s dimmed = %v, want complement of highlight", n.TaskID, n.Dimmed)
		}
	}

	for _, e := range edges {
		if !e.Highlighted {
			t.Errorf("edge %s touches selection, want highlighted", e.ID)
		}
	}
}

func TestRenderNoSelection(t *testing.T) {
	store := newTestStore(t)
	svc := NewGraphService(store, logger.NewNop())

	board := store.CreateBoard(entities.Board{ID: "b1", Name: "Board One"})
	if err := store.AddTask(task("a", board.ID), nil); err != nil {
		t.Fatalf("AddTask() error: %v", err)
	}

	nodes, _, err := svc.Render(board.ID, "")
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	for _, n := range nodes {
		if n.Highlighted || n.Dimmed {
			t.Errorf("node %s has highlight state without a selection", n.TaskID)
		}
	}
}

func TestRenderExcludesCrossBoardEdges(t *testing.T) {
	store := newTestStore(t)
	svc := NewGraphService(store, logger.NewNop())

	b1 := store.CreateBoard(entities.Board{ID: "b1", Name: "One"})
	b2 := store.CreateBoard(entities.Board{ID: "b2", Name: "Two"})
	if err := store.AddTask(task("a", b1.ID), nil); err != nil {
		t.Fatal(err)
	}
	if err := store.AddTask(task("z", b2.ID), nil); err != nil {
		t.Fatal(err)
	}
	mustAddRelation(t, store, entities.Relation{
		ID: "xb", FromTaskID: "a", ToTaskID: "z",
		Type: entities.RelationCrossBoard, FromBoardID: b1.ID, ToBoardID: b2.ID,
	})

	_, edges, err := svc.Render(b1.ID, "")
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if len(edges) != 0 {
		t.Errorf("Render() included %d cross-board edges, want 0", len(edges))
	}

	links, err := svc.CrossBoardLinks("a")
	if err != nil {
		t.Fatalf("CrossBoardLinks() error: %v", err)
	}
	if len(links) != 1 {
		t.Fatalf("CrossBoardLinks(a) = %d links, want 1", len(links))
	}
	if links[0].TaskID != "z" || links[0].BoardName != "Two" {
		t.Errorf("CrossBoardLinks(a)[0] = %+v, want task z on board Two", links[0])
	}
}

func TestRenderManualPositionOverride(t *testing.T) {
	store := newTestStore(t)
	svc := NewGraphService(store, logger.NewNop())

	board := store.CreateBoard(entities.Board{ID: "b1", Name: "One"})
	if err := store.AddTask(task("a", board.ID), nil); err != nil {
		t.Fatal(err)
	}
	if err := store.SetPosition("a", entities.Position{X: 42, Y: 99}); err != nil {
		t.Fatal(err)
	}

	nodes, _, err := svc.Render(board.ID, "")
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if len(nodes) != 1 {
		t.Fatalf("Render() = %d nodes, want 1", len(nodes))
	}
	if !nodes[0].Manual || nodes[0].Position.X != 42 || nodes[0].Position.Y != 99 {
		t.Errorf("node position = %+v (manual=%v), want manual (42, 99)", nodes[0].Position, nodes[0].Manual)
	}
}

func TestRenderUnknownBoard(t *testing.T) {
	store := newTestStore(t)
	svc := NewGraphService(store, logger.NewNop())

	if _, _, err := svc.Render("nope", ""); err != entities.ErrBoardNotFound {
		t.Fatalf("Render(unknown board) error = %v, want ErrBoardNotFound", err)
	}
}

func mustAddRelation(t *testing.T, store *graphstore.Store, r entities.Relation) {
	t.Helper()
	if err := store.AddRelation(r); err != nil {
		t.Fatalf("AddRelation(%s) error: %v", r.ID, err)
	}
}
