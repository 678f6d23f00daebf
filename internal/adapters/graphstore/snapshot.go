package graphstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/ntask/core/internal/domain/entities"
)

// snapshot is the on-disk form of the whole store, one keyed blob per
// state slice.
type snapshot struct {
	Boards        []entities.Board              `json:"boards"`
	Tasks         []entities.Task               `json:"tasks"`
	Relations     []entities.Relation           `json:"relations"`
	Logs          map[string][]entities.TaskLog `json:"logs"`
	Notifications []entities.Notification       `json:"notifications"`
	Positions     map[string]entities.Position  `json:"positions"`
	ActiveBoardID string                        `json:"active_board_id"`
}

// load reads the snapshot once at startup. Missing or unreadable data is
// not an error: the store falls back to the seeded defaults.
func (s *Store) load() {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("Graph snapshot unreadable, using defaults", "path", s.path, "error", err)
		}
		s.seed()
		return
	}

	var snap snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		s.logger.Warn("Graph snapshot corrupt, using defaults", "path", s.path, "error", err)
		s.seed()
		return
	}

	s.boards = snap.Boards
	s.tasks = snap.Tasks
	s.relations = snap.Relations
	s.logs = snap.Logs
	s.notifications = snap.Notifications
	s.positions = snap.Positions
	s.activeBoardID = snap.ActiveBoardID
	if s.logs == nil {
		s.logs = make(map[string][]entities.TaskLog)
	}
	if s.positions == nil {
		s.positions = make(map[string]entities.Position)
	}
	if len(s.boards) == 0 {
		s.seed()
	}
}

// persist writes the whole state atomically (temp file + rename). The
// caller holds the lock. Failures are logged and swallowed: persistence is
// best-effort and never fails a committed mutation.
func (s *Store) persist() {
	if s.path == "" {
		return
	}

	snap := snapshot{
		Boards:        s.boards,
		Tasks:         s.tasks,
		Relations:     s.relations,
		Logs:          s.logs,
		Notifications: s.notifications,
		Positions:     s.positions,
		ActiveBoardID: s.activeBoardID,
	}

	raw, err := json.Marshal(snap)
	if err != nil {
		s.logger.Error("Failed to encode graph snapshot", "error", err)
		return
	}

	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		s.logger.Error("Failed to create snapshot directory", "error", err)
		return
	}
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		s.logger.Error("Failed to write graph snapshot", "path", tmp, "error", err)
		return
	}
	if err := os.Rename(tmp, s.path); err != nil {
		s.logger.Error("Failed to commit graph snapshot", "path", s.path, "error", err)
	}
}

// seed installs the built-in default state: one board with a small task
// hierarchy, matching what the board ships with before any user data exists.
func (s *Store) seed() {
	now := time.Now().UTC()

	board := entities.Board{
		ID:          "board-scrum",
		Name:        "Sprint Board",
		Description: "Default workspace",
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	tasks := []entities.Task{
		{
			ID: "SCRUM-2", BoardID: board.ID,
			Title:       "Design onboarding flow",
			Description: "Draft the first-run experience",
			Status:      entities.TaskStatusTodo,
			Assignee:    "dohyun",
			CreatedAt:   now, UpdatedAt: now,
		},
		{
			ID: "SCRUM-5", BoardID: board.ID,
			Title:       "Build onboarding screens",
			Description: "Implement the flow from SCRUM-2",
			Status:      entities.TaskStatusTodo,
			Assignee:    "minji",
			CreatedAt:   now, UpdatedAt: now,
		},
	}

	relations := []entities.Relation{
		{
			ID:         "rel-2-5",
			FromTaskID: "SCRUM-2",
			ToTaskID:   "SCRUM-5",
			Type:       entities.RelationSubtask,
		},
	}

	s.boards = []entities.Board{board}
	s.tasks = tasks
	s.relations = relations
	s.logs = make(map[string][]entities.TaskLog)
	s.notifications = nil
	s.positions = make(map[string]entities.Position)
	s.activeBoardID = board.ID
}
