package graphstore

import (
	"sort"
	"sync"
	"time"

	"github.com/ntask/core/internal/domain/entities"
	"github.com/ntask/core/internal/infrastructure/logger"
)

// Store holds the whole task-graph state in memory: boards, tasks,
// relations, logs, notifications, manual node positions and the active
// board. Every mutation runs under one lock and is followed by a snapshot
// write, mirroring the write-whole-state-on-every-change persistence the
// board UI uses. Reads return copies.
type Store struct {
	mu     sync.RWMutex
	path   string
	logger *logger.Logger

	boards        []entities.Board
	tasks         []entities.Task
	relations     []entities.Relation
	logs          map[string][]entities.TaskLog
	notifications []entities.Notification
	positions     map[string]entities.Position
	activeBoardID string
}

// New creates a store backed by the snapshot file at path. A missing or
// corrupt snapshot falls back to the seeded default state.
func New(path string, log *logger.Logger) *Store {
	s := &Store{
		path:      path,
		logger:    log,
		logs:      make(map[string][]entities.TaskLog),
		positions: make(map[string]entities.Position),
	}
	s.load()
	return s
}

// Boards returns all boards.
func (s *Store) Boards() []entities.Board {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entities.Board(nil), s.boards...)
}

// Board returns a board by id.
func (s *Store) Board(id string) (*entities.Board, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.boards {
		if s.boards[i].ID == id {
			b := s.boards[i]
			return &b, nil
		}
	}
	return nil, entities.ErrBoardNotFound
}

// ActiveBoardID returns the currently selected board id.
func (s *Store) ActiveBoardID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeBoardID
}

// CreateBoard adds a board and makes it active when it is the first one.
func (s *Store) CreateBoard(b entities.Board) entities.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now
	s.boards = append(s.boards, b)
	if s.activeBoardID == "" {
		s.activeBoardID = b.ID
	}
	s.persist()
	return b
}

// SetActiveBoard selects the board the graph renders.
func (s *Store) SetActiveBoard(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findBoard(id) == nil {
		return entities.ErrBoardNotFound
	}
	s.activeBoardID = id
	s.persist()
	return nil
}

// Task returns a task by id.
func (s *Store) Task(id string) (*entities.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if t := s.findTask(id); t != nil {
		cp := *t
		return &cp, nil
	}
	return nil, entities.ErrTaskNotFound
}

// Tasks returns all tasks, optionally scoped to one board.
func (s *Store) Tasks(boardID string) []entities.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entities.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if boardID == "" || t.BoardID == boardID {
			out = append(out, t)
		}
	}
	return out
}

// AddTask inserts a task and optionally a relation created with it, as one
// committed mutation.
func (s *Store) AddTask(t entities.Task, rel *entities.Relation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findTask(t.ID) != nil {
		return entities.ErrTaskExists
	}
	if s.findBoard(t.BoardID) == nil {
		return entities.ErrBoardNotFound
	}
	s.tasks = append(s.tasks, t)
	if rel != nil {
		s.relations = append(s.relations, *rel)
	}
	s.persist()
	return nil
}

// UpdateTask replaces the stored task with the given value.
func (s *Store) UpdateTask(t entities.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID == t.ID {
			s.tasks[i] = t
			s.persist()
			return nil
		}
	}
	return entities.ErrTaskNotFound
}

// DeleteTask removes the task, every relation touching it, its log history
// and its manual position, atomically.
func (s *Store) DeleteTask(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findTask(id) == nil {
		return entities.ErrTaskNotFound
	}
	tasks := s.tasks[:0]
	for _, t := range s.tasks {
		if t.ID != id {
			tasks = append(tasks, t)
		}
	}
	s.tasks = tasks
	rels := s.relations[:0]
	for _, r := range s.relations {
		if !r.Touches(id) {
			rels = append(rels, r)
		}
	}
	s.relations = rels
	delete(s.logs, id)
	delete(s.positions, id)
	s.persist()
	return nil
}

// Relations returns all relations, or only those touching taskID when set.
func (s *Store) Relations(taskID string) []entities.Relation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entities.Relation, 0, len(s.relations))
	for _, r := range s.relations {
		if taskID == "" || r.Touches(taskID) {
			out = append(out, r)
		}
	}
	return out
}

// AddRelation appends a relation between two existing tasks.
func (s *Store) AddRelation(r entities.Relation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findTask(r.FromTaskID) == nil || s.findTask(r.ToTaskID) == nil {
		return entities.ErrTaskNotFound
	}
	s.relations = append(s.relations, r)
	s.persist()
	return nil
}

// ReplaceParent removes every non-RELATED edge pointing at taskID, then adds
// the replacement edge when one is given. RELATED edges are untouched.
func (s *Store) ReplaceParent(taskID string, rel *entities.Relation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findTask(taskID) == nil {
		return entities.ErrTaskNotFound
	}
	rels := s.relations[:0]
	for _, r := range s.relations {
		if r.ToTaskID == taskID && r.Type != entities.RelationRelated {
			continue
		}
		rels = append(rels, r)
	}
	s.relations = rels
	if rel != nil {
		s.relations = append(s.relations, *rel)
	}
	s.persist()
	return nil
}

// Logs returns the log history for a task, newest first.
func (s *Store) Logs(taskID string) []entities.TaskLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entities.TaskLog(nil), s.logs[taskID]...)
}

// AddLog prepends a log entry to the task's history.
func (s *Store) AddLog(l entities.TaskLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findTask(l.TaskID) == nil {
		return entities.ErrTaskNotFound
	}
	s.logs[l.TaskID] = append([]entities.TaskLog{l}, s.logs[l.TaskID]...)
	s.persist()
	return nil
}

// Notifications returns notifications addressed to userID, newest first.
func (s *Store) Notifications(userID string) []entities.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entities.Notification, 0)
	for _, n := range s.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// AddNotifications prepends a batch of notifications as one mutation.
func (s *Store) AddNotifications(ns []entities.Notification) {
	if len(ns) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append(append([]entities.Notification(nil), ns...), s.notifications...)
	s.persist()
}

// Position returns the manual drag position for a task, if any.
func (s *Store) Position(taskID string) (entities.Position, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.positions[taskID]
	return p, ok
}

// SetPosition records a manual drag override for a task node.
func (s *Store) SetPosition(taskID string, p entities.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findTask(taskID) == nil {
		return entities.ErrTaskNotFound
	}
	s.positions[taskID] = p
	s.persist()
	return nil
}

func (s *Store) findTask(id string) *entities.Task {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return &s.tasks[i]
		}
	}
	return nil
}

func (s *Store) findBoard(id string) *entities.Board {
	for i := range s.boards {
		if s.boards[i].ID == id {
			return &s.boards[i]
		}
	}
	return nil
}
