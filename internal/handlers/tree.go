package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/calctree-backend/internal/calc"
	"github.com/yungbote/calctree-backend/internal/logger"
	"github.com/yungbote/calctree-backend/internal/requestdata"
	"github.com/yungbote/calctree-backend/internal/services"
	"github.com/yungbote/calctree-backend/internal/ws"
)

// TreeHandler orchestrates: validate input shape, run the operation engine,
// persist, broadcast, shape the response.
type TreeHandler struct {
	log         *logger.Logger
	treeService services.TreeService
	hub         *ws.Hub
}

func NewTreeHandler(log *logger.Logger, treeService services.TreeService, hub *ws.Hub) *TreeHandler {
	return &TreeHandler{
		log:         log.With("handler", "TreeHandler"),
		treeService: treeService,
		hub:         hub,
	}
}

// GetAllTrees is public: viewers use it to catch up before or after
// subscribing to live updates.
func (th *TreeHandler) GetAllTrees(c *gin.Context) {
	trees, err := th.treeService.GetAllTrees(c.Request.Context())
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trees": trees})
}

func (th *TreeHandler) CreateTree(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "UnauthorizedError", "Authentication required")
		return
	}

	// Pointer field distinguishes a missing value from zero; a non-numeric
	// value fails the bind.
	var req struct {
		StartingNumber *float64 `json:"startingNumber"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "ValidationError", "Starting number must be a valid number")
		return
	}
	if req.StartingNumber == nil {
		RespondError(c, http.StatusBadRequest, "ValidationError", "Starting number is required")
		return
	}

	tree, err := th.treeService.CreateTree(c.Request.Context(), *req.StartingNumber, rd.UserID)
	if err != nil {
		RespondAppError(c, err)
		return
	}

	th.hub.BroadcastTreeCreated(tree)
	c.JSON(http.StatusCreated, gin.H{"tree": tree})
}

func (th *TreeHandler) AddOperation(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "UnauthorizedError", "Authentication required")
		return
	}

	treeID, err := strconv.ParseInt(c.Param("treeId"), 10, 64)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "ValidationError", "Invalid tree ID")
		return
	}

	var req struct {
		ParentNodeID  *int64   `json:"parentNodeId"`
		Operation     *string  `json:"operation"`
		RightArgument *float64 `json:"rightArgument"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "ValidationError", "Parent node ID, operation, and right argument are required")
		return
	}
	if req.ParentNodeID == nil || req.Operation == nil || req.RightArgument == nil {
		RespondError(c, http.StatusBadRequest, "ValidationError", "Parent node ID, operation, and right argument are required")
		return
	}

	op, err := calc.ParseOperation(*req.Operation)
	if err != nil {
		RespondAppError(c, err)
		return
	}

	node, err := th.treeService.AddOperation(c.Request.Context(), treeID, *req.ParentNodeID, op, *req.RightArgument, rd.UserID)
	if err != nil {
		RespondAppError(c, err)
		return
	}

	th.hub.BroadcastOperationAdded(treeID, node)
	c.JSON(http.StatusCreated, gin.H{"node": node})
}
