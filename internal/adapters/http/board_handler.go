package http

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ntask/core/internal/adapters/graphstore"
	"github.com/ntask/core/internal/application/services"
	"github.com/ntask/core/internal/domain/entities"
	"github.com/ntask/core/internal/infrastructure/logger"
)

// BoardHandler handles board and graph-view requests
type BoardHandler struct {
	store        *graphstore.Store
	graphService *services.GraphService
	logger       *logger.Logger
}

// NewBoardHandler creates a new board handler
func NewBoardHandler(store *graphstore.Store, graphService *services.GraphService, logger *logger.Logger) *BoardHandler {
	return &BoardHandler{
		store:        store,
		graphService: graphService,
		logger:       logger,
	}
}

// CreateBoardRequest is the board creation payload
type CreateBoardRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"max=500"`
}

// SelectBoardRequest selects the active board
type SelectBoardRequest struct {
	BoardID string `json:"board_id" validate:"required"`
}

// BoardListResponse pairs the boards with the active selection
type BoardListResponse struct {
	Boards        []entities.Board `json:"boards"`
	ActiveBoardID string           `json:"active_board_id"`
}

// GraphResponse is the rendered view of one board
type GraphResponse struct {
	BoardID string                `json:"board_id"`
	Nodes   []services.GraphNode  `json:"nodes"`
	Edges   []services.GraphEdge  `json:"edges"`
}

// ListBoards handles listing boards with the active selection
func (h *BoardHandler) ListBoards(c echo.Context) error {
	return c.JSON(http.StatusOK, BoardListResponse{
		Boards:        h.store.Boards(),
		ActiveBoardID: h.store.ActiveBoardID(),
	})
}

// CreateBoard handles board creation
func (h *BoardHandler) CreateBoard(c echo.Context) error {
	var req CreateBoardRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	board := h.store.CreateBoard(entities.Board{
		ID:          "board-" + uuid.NewString()[:8],
		Name:        req.Name,
		Description: req.Description,
		CreatedAt:   time.Now().UTC(),
	})

	h.logger.Info("Board created", "board_id", board.ID, "name", board.Name)
	return c.JSON(http.StatusCreated, board)
}

// SelectBoard handles switching the active board
func (h *BoardHandler) SelectBoard(c echo.Context) error {
	var req SelectBoardRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.store.SetActiveBoard(req.BoardID); err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Active board updated"})
}

// GetGraph handles rendering one board's graph. The optional "selected"
// query parameter drives the highlight/dim flags.
func (h *BoardHandler) GetGraph(c echo.Context) error {
	boardID := c.Param("id")
	selected := c.QueryParam("selected")

	nodes, edges, err := h.graphService.Render(boardID, selected)
	if err != nil {
		h.logger.Error("Graph render failed", "error", err, "board_id", boardID)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, GraphResponse{
		BoardID: boardID,
		Nodes:   nodes,
		Edges:   edges,
	})
}

// GetNotifications handles listing notifications for an assignee name
func (h *BoardHandler) GetNotifications(c echo.Context) error {
	user := c.QueryParam("user")
	if user == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user query parameter is required")
	}

	return c.JSON(http.StatusOK, h.store.Notifications(user))
}
