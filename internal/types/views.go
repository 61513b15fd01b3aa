package types

import (
	"time"
)

// NodeView is the API projection of a CalculationNode: creator username
// resolved and children linked in creation order. Only forward
// parent-to-children links are kept, so the structure is cycle free.
type NodeView struct {
	ID            int64       `json:"id"`
	TreeID        int64       `json:"treeId"`
	ParentNodeID  *int64      `json:"parentNodeId"`
	Operation     *string     `json:"operation"`
	RightArgument *float64    `json:"rightArgument"`
	Result        float64     `json:"result"`
	UserID        int64       `json:"userId"`
	Username      string      `json:"username"`
	Children      []*NodeView `json:"children"`
	CreatedAt     time.Time   `json:"createdAt"`
}

// TreeView is the API projection of a CalculationTree with its full node
// hierarchy hung off RootNode.
type TreeView struct {
	ID             int64     `json:"id"`
	StartingNumber float64   `json:"startingNumber"`
	UserID         int64     `json:"userId"`
	Username       string    `json:"username"`
	RootNode       *NodeView `json:"rootNode"`
	CreatedAt      time.Time `json:"createdAt"`
}
