package services

import (
	"sort"

	"github.com/ntask/core/internal/adapters/graphstore"
	"github.com/ntask/core/internal/domain/entities"
	"github.com/ntask/core/internal/infrastructure/logger"
)

// Layout spacing between node columns and hierarchy levels.
const (
	layoutXGap = 240.0
	layoutYGap = 160.0
)

// GraphService computes the rendered view of a board: hierarchy levels over
// SUBTASK edges, node positions, and first-degree highlight state.
type GraphService struct {
	store  *graphstore.Store
	logger *logger.Logger
}

// GraphNode is a renderable task node. Highlighted and Dimmed are the
// headless form of the selection contract: when a selection exists, exactly
// the first-degree neighborhood is highlighted and the complement dimmed.
type GraphNode struct {
	TaskID      string              `json:"task_id"`
	Title       string              `json:"title"`
	Status      entities.TaskStatus `json:"status"`
	Level       int                 `json:"level"`
	Position    entities.Position   `json:"position"`
	Manual      bool                `json:"manual_position"`
	IsImportant bool                `json:"is_important"`
	Highlighted bool                `json:"highlighted"`
	Dimmed      bool                `json:"dimmed"`
}

// GraphEdge is a renderable relation.
type GraphEdge struct {
	ID          string                `json:"id"`
	FromTaskID  string                `json:"from_task_id"`
	ToTaskID    string                `json:"to_task_id"`
	Type        entities.RelationType `json:"type"`
	Highlighted bool                  `json:"highlighted"`
	Dimmed      bool                  `json:"dimmed"`
}

// CrossBoardLink describes a task in another board reachable through a
// CROSS_BOARD edge. Exposed as a side query, never rendered in the graph.
type CrossBoardLink struct {
	TaskID    string `json:"task_id"`
	Title     string `json:"title"`
	BoardID   string `json:"board_id"`
	BoardName string `json:"board_name"`
}

// NewGraphService creates a new graph service.
func NewGraphService(store *graphstore.Store, logger *logger.Logger) *GraphService {
	return &GraphService{store: store, logger: logger}
}

// Levels assigns a hierarchy depth to every task from SUBTASK edges only.
// Zero-in-degree tasks seed level 0; each SUBTASK edge relaxes the child to
// max(child, parent+1). Tasks reachable only through other relation types,
// or not at all, stay at level 0.
//
// The source of this algorithm re-enqueues a node every time its level
// grows, which never terminates on a SUBTASK cycle. A node's level can only
// grow len(tasks)-1 times in a DAG, so re-enqueueing is capped at the task
// count: a DAG never hits the cap, and a cycle stops relaxing there with
// every node keeping its last computed level.
func Levels(tasks []entities.Task, relations []entities.Relation) map[string]int {
	level := make(map[string]int, len(tasks))
	inDeg := make(map[string]int, len(tasks))
	for _, t := range tasks {
		level[t.ID] = 0
		inDeg[t.ID] = 0
	}

	children := make(map[string][]string)
	for _, r := range relations {
		if r.Type != entities.RelationSubtask {
			continue
		}
		if _, ok := level[r.FromTaskID]; !ok {
			continue
		}
		if _, ok := level[r.ToTaskID]; !ok {
			continue
		}
		inDeg[r.ToTaskID]++
		children[r.FromTaskID] = append(children[r.FromTaskID], r.ToTaskID)
	}

	queue := make([]string, 0, len(tasks))
	for _, t := range tasks {
		if inDeg[t.ID] == 0 {
			queue = append(queue, t.ID)
		}
	}

	enqueued := make(map[string]int, len(tasks))
	maxRequeue := len(tasks)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, child := range children[cur] {
			next := level[cur] + 1
			if next > level[child] && enqueued[child] < maxRequeue {
				level[child] = next
				enqueued[child]++
				queue = append(queue, child)
			}
		}
	}

	return level
}

// Neighbors returns the ids of tasks directly connected to taskID through
// any relation, in either direction.
func Neighbors(taskID string, relations []entities.Relation) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(id string) {
		if id != taskID && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	for _, r := range relations {
		if r.FromTaskID == taskID {
			add(r.ToTaskID)
		}
		if r.ToTaskID == taskID {
			add(r.FromTaskID)
		}
	}
	return out
}

// Parents returns the ids of tasks with a SUBTASK edge into taskID.
func Parents(taskID string, relations []entities.Relation) []string {
	var out []string
	for _, r := range relations {
		if r.Type == entities.RelationSubtask && r.ToTaskID == taskID {
			out = append(out, r.FromTaskID)
		}
	}
	return out
}

// OutgoingIDs returns the targets of taskID's outgoing edges of the given type.
func OutgoingIDs(taskID string, typ entities.RelationType, relations []entities.Relation) []string {
	var out []string
	for _, r := range relations {
		if r.Type == typ && r.FromTaskID == taskID {
			out = append(out, r.ToTaskID)
		}
	}
	return out
}

// Render builds the full node/edge view of a board. CROSS_BOARD relations
// are excluded from the rendered graph entirely; selectedID, when non-empty,
// drives the highlight/dim flags.
func (s *GraphService) Render(boardID, selectedID string) ([]GraphNode, []GraphEdge, error) {
	if _, err := s.store.Board(boardID); err != nil {
		return nil, nil, err
	}

	tasks := s.store.Tasks(boardID)
	onBoard := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		onBoard[t.ID] = true
	}

	var relations []entities.Relation
	for _, r := range s.store.Relations("") {
		if r.Type == entities.RelationCrossBoard {
			continue
		}
		if onBoard[r.FromTaskID] && onBoard[r.ToTaskID] {
			relations = append(relations, r)
		}
	}

	hiNodes, hiEdges := highlightSets(selectedID, relations)
	selecting := len(hiNodes) > 0

	levels := Levels(tasks, relations)
	grouped := make(map[int][]entities.Task)
	for _, t := range tasks {
		lv := levels[t.ID]
		grouped[lv] = append(grouped[lv], t)
	}
	order := make([]int, 0, len(grouped))
	for lv := range grouped {
		order = append(order, lv)
	}
	sort.Ints(order)

	var nodes []GraphNode
	for _, lv := range order {
		row := grouped[lv]
		sort.Slice(row, func(i, j int) bool { return row[i].ID < row[j].ID })
		for idx, t := range row {
			pos := entities.Position{X: float64(idx) * layoutXGap, Y: float64(lv) * layoutYGap}
			manual := false
			if p, ok := s.store.Position(t.ID); ok {
				pos = p
				manual = true
			}
			nodes = append(nodes, GraphNode{
				TaskID:      t.ID,
				Title:       t.Title,
				Status:      t.Status,
				Level:       lv,
				Position:    pos,
				Manual:      manual,
				IsImportant: t.IsImportant,
				Highlighted: hiNodes[t.ID],
				Dimmed:      selecting && !hiNodes[t.ID],
			})
		}
	}

	edges := make([]GraphEdge, 0, len(relations))
	for _, r := range relations {
		edges = append(edges, GraphEdge{
			ID:          r.ID,
			FromTaskID:  r.FromTaskID,
			ToTaskID:    r.ToTaskID,
			Type:        r.Type,
			Highlighted: hiEdges[r.ID],
			Dimmed:      selecting && !hiEdges[r.ID],
		})
	}

	return nodes, edges, nil
}

// CrossBoardLinks lists the tasks in other boards linked to taskID, with
// their owning board names.
func (s *GraphService) CrossBoardLinks(taskID string) ([]CrossBoardLink, error) {
	if _, err := s.store.Task(taskID); err != nil {
		return nil, err
	}

	links := make([]CrossBoardLink, 0)
	for _, r := range s.store.Relations(taskID) {
		if r.Type != entities.RelationCrossBoard {
			continue
		}
		otherID := r.ToTaskID
		if otherID == taskID {
			otherID = r.FromTaskID
		}
		other, err := s.store.Task(otherID)
		if err != nil {
			continue
		}
		link := CrossBoardLink{TaskID: other.ID, Title: other.Title, BoardID: other.BoardID}
		if b, err := s.store.Board(other.BoardID); err == nil {
			link.BoardName = b.Name
		}
		links = append(links, link)
	}
	return links, nil
}

// highlightSets computes the selected task's first-degree node set and the
// ids of edges touching it. Empty selection yields empty sets.
func highlightSets(selectedID string, relations []entities.Relation) (map[string]bool, map[string]bool) {
	nodes := make(map[string]bool)
	edges := make(map[string]bool)
	if selectedID == "" {
		return nodes, edges
	}
	nodes[selectedID] = true
	for _, r := range relations {
		if r.Touches(selectedID) {
			nodes[r.FromTaskID] = true
			nodes[r.ToTaskID] = true
			edges[r.ID] = true
		}
	}
	return nodes, edges
}
