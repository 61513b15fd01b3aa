package types

import (
	"time"
)

// CalculationTree is immutable after creation except for the growth of its
// node set. The root node is created in the same transaction as the tree.
type CalculationTree struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	StartingNumber float64   `gorm:"not null;column:starting_number" json:"startingNumber"`
	UserID         int64     `gorm:"not null;index;column:user_id" json:"userId"`
	CreatedAt      time.Time `gorm:"not null" json:"createdAt"`
}

func (CalculationTree) TableName() string {
	return "calculation_trees"
}
