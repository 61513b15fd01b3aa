package testutil

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/yungbote/calctree-backend/internal/types"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, username string) *types.User {
	tb.Helper()
	u := &types.User{
		Username:     username,
		PasswordHash: "x",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

// SeedTree creates a tree row together with its root node, matching the
// invariant the service maintains.
func SeedTree(tb testing.TB, ctx context.Context, tx *gorm.DB, userID int64, startingNumber float64) *types.CalculationTree {
	tb.Helper()
	tree := &types.CalculationTree{
		StartingNumber: startingNumber,
		UserID:         userID,
	}
	if err := tx.WithContext(ctx).Create(tree).Error; err != nil {
		tb.Fatalf("seed tree: %v", err)
	}
	root := &types.CalculationNode{
		TreeID: tree.ID,
		Result: startingNumber,
		UserID: userID,
	}
	if err := tx.WithContext(ctx).Create(root).Error; err != nil {
		tb.Fatalf("seed root node: %v", err)
	}
	return tree
}

func RootNode(tb testing.TB, ctx context.Context, tx *gorm.DB, treeID int64) *types.CalculationNode {
	tb.Helper()
	var root types.CalculationNode
	if err := tx.WithContext(ctx).
		Where("tree_id = ? AND parent_node_id IS NULL", treeID).
		First(&root).Error; err != nil {
		tb.Fatalf("load root node: %v", err)
	}
	return &root
}

func SeedNode(tb testing.TB, ctx context.Context, tx *gorm.DB, treeID, parentNodeID int64, op string, right, result float64, userID int64) *types.CalculationNode {
	tb.Helper()
	node := &types.CalculationNode{
		TreeID:        treeID,
		ParentNodeID:  &parentNodeID,
		Operation:     &op,
		RightArgument: &right,
		Result:        result,
		UserID:        userID,
	}
	if err := tx.WithContext(ctx).Create(node).Error; err != nil {
		tb.Fatalf("seed node: %v", err)
	}
	return node
}
