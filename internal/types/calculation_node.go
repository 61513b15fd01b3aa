package types

import (
	"time"
)

// CalculationNode rows are append-only: created once, never mutated or
// deleted. Operation, RightArgument and ParentNodeID are nil only for the
// root node of a tree.
type CalculationNode struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	TreeID        int64     `gorm:"not null;index;column:tree_id" json:"treeId"`
	ParentNodeID  *int64    `gorm:"column:parent_node_id" json:"parentNodeId"`
	Operation     *string   `gorm:"column:operation" json:"operation"`
	RightArgument *float64  `gorm:"column:right_argument" json:"rightArgument"`
	Result        float64   `gorm:"not null;column:result" json:"result"`
	UserID        int64     `gorm:"not null;column:user_id" json:"userId"`
	CreatedAt     time.Time `gorm:"not null" json:"createdAt"`
}

func (CalculationNode) TableName() string {
	return "calculation_nodes"
}
