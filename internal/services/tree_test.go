package services

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/yungbote/calctree-backend/internal/apperrors"
	"github.com/yungbote/calctree-backend/internal/calc"
	"github.com/yungbote/calctree-backend/internal/repos"
	"github.com/yungbote/calctree-backend/internal/repos/testutil"
	"github.com/yungbote/calctree-backend/internal/types"
)

type treeServiceFixture struct {
	db       *gorm.DB
	service  TreeService
	nodeRepo repos.NodeRepo
	user     *types.User
}

func newTreeServiceFixture(t *testing.T) *treeServiceFixture {
	t.Helper()
	db := testutil.FreshDB(t)
	log := testutil.Logger(t)
	userRepo := repos.NewUserRepo(db, log)
	treeRepo := repos.NewTreeRepo(db, log)
	nodeRepo := repos.NewNodeRepo(db, log)

	user := &types.User{Username: "alice", PasswordHash: "h"}
	if err := userRepo.Create(context.Background(), nil, user); err != nil {
		t.Fatalf("create user: %v", err)
	}

	return &treeServiceFixture{
		db:       db,
		service:  NewTreeService(db, log, treeRepo, nodeRepo, userRepo),
		nodeRepo: nodeRepo,
		user:     user,
	}
}

func (f *treeServiceFixture) nodeCount(t *testing.T, treeID int64) int64 {
	t.Helper()
	count, err := f.nodeRepo.CountByTreeID(context.Background(), nil, treeID)
	if err != nil {
		t.Fatalf("count nodes: %v", err)
	}
	return count
}

func TestCreateTreeRootInvariant(t *testing.T) {
	f := newTreeServiceFixture(t)
	ctx := context.Background()

	tree, err := f.service.CreateTree(ctx, 42, f.user.ID)
	if err != nil {
		t.Fatalf("CreateTree: %v", err)
	}
	if tree.StartingNumber != 42 || tree.Username != "alice" {
		t.Fatalf("tree = %+v", tree)
	}
	root := tree.RootNode
	if root == nil {
		t.Fatal("tree has no root node")
	}
	if root.Result != 42 || root.ParentNodeID != nil || root.Operation != nil || root.RightArgument != nil {
		t.Fatalf("root = %+v", root)
	}
	if len(root.Children) != 0 {
		t.Fatalf("fresh root has children: %+v", root.Children)
	}

	got, err := f.service.GetTree(ctx, tree.ID)
	if err != nil {
		t.Fatalf("GetTree: %v", err)
	}
	if got.RootNode.Result != 42 {
		t.Fatalf("GetTree root result = %v", got.RootNode.Result)
	}
}

func TestAddOperationAppendInvariant(t *testing.T) {
	f := newTreeServiceFixture(t)
	ctx := context.Background()

	tree, err := f.service.CreateTree(ctx, 42, f.user.ID)
	if err != nil {
		t.Fatalf("CreateTree: %v", err)
	}
	root := tree.RootNode

	node, err := f.service.AddOperation(ctx, tree.ID, root.ID, calc.OperationAdd, 10, f.user.ID)
	if err != nil {
		t.Fatalf("AddOperation: %v", err)
	}
	if node.Result != 52 {
		t.Fatalf("node result = %v, want 52", node.Result)
	}
	if node.ParentNodeID == nil || *node.ParentNodeID != root.ID {
		t.Fatalf("node parent = %v, want %d", node.ParentNodeID, root.ID)
	}
	if node.Username != "alice" {
		t.Fatalf("node username = %q", node.Username)
	}

	got, err := f.service.GetTree(ctx, tree.ID)
	if err != nil {
		t.Fatalf("GetTree: %v", err)
	}
	if len(got.RootNode.Children) != 1 {
		t.Fatalf("root children = %d, want 1", len(got.RootNode.Children))
	}
	child := got.RootNode.Children[0]
	if child.ID != node.ID || child.Result != 52 {
		t.Fatalf("child = %+v", child)
	}
}

func TestReconstructionPreservesSiblingOrder(t *testing.T) {
	f := newTreeServiceFixture(t)
	ctx := context.Background()

	tree, err := f.service.CreateTree(ctx, 5, f.user.ID)
	if err != nil {
		t.Fatalf("CreateTree: %v", err)
	}
	root := tree.RootNode

	c1, err := f.service.AddOperation(ctx, tree.ID, root.ID, calc.OperationAdd, 1, f.user.ID)
	if err != nil {
		t.Fatalf("AddOperation c1: %v", err)
	}
	c2, err := f.service.AddOperation(ctx, tree.ID, root.ID, calc.OperationAdd, 2, f.user.ID)
	if err != nil {
		t.Fatalf("AddOperation c2: %v", err)
	}

	got, err := f.service.GetTree(ctx, tree.ID)
	if err != nil {
		t.Fatalf("GetTree: %v", err)
	}
	children := got.RootNode.Children
	if len(children) != 2 {
		t.Fatalf("children = %d, want 2", len(children))
	}
	if children[0].ID != c1.ID || children[1].ID != c2.ID {
		t.Fatalf("children order = [%d, %d], want [%d, %d]", children[0].ID, children[1].ID, c1.ID, c2.ID)
	}
}

func TestAddOperationParentNotFound(t *testing.T) {
	f := newTreeServiceFixture(t)
	ctx := context.Background()

	tree, err := f.service.CreateTree(ctx, 1, f.user.ID)
	if err != nil {
		t.Fatalf("CreateTree: %v", err)
	}

	before := f.nodeCount(t, tree.ID)
	_, err = f.service.AddOperation(ctx, tree.ID, tree.RootNode.ID+9999, calc.OperationAdd, 1, f.user.ID)
	if !errors.Is(err, apperrors.ErrParentNotFound) {
		t.Fatalf("AddOperation = %v, want ErrParentNotFound", err)
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("ErrParentNotFound does not map to the not-found kind: %v", err)
	}
	if after := f.nodeCount(t, tree.ID); after != before {
		t.Fatalf("node count changed: %d -> %d", before, after)
	}
}

func TestAddOperationCrossTreeMismatch(t *testing.T) {
	f := newTreeServiceFixture(t)
	ctx := context.Background()

	first, err := f.service.CreateTree(ctx, 1, f.user.ID)
	if err != nil {
		t.Fatalf("CreateTree first: %v", err)
	}
	second, err := f.service.CreateTree(ctx, 2, f.user.ID)
	if err != nil {
		t.Fatalf("CreateTree second: %v", err)
	}

	beforeFirst := f.nodeCount(t, first.ID)
	beforeSecond := f.nodeCount(t, second.ID)

	// Parent exists, but in the other tree.
	_, err = f.service.AddOperation(ctx, second.ID, first.RootNode.ID, calc.OperationAdd, 1, f.user.ID)
	if !errors.Is(err, apperrors.ErrParentTreeMismatch) {
		t.Fatalf("AddOperation = %v, want ErrParentTreeMismatch", err)
	}
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("ErrParentTreeMismatch does not map to the validation kind: %v", err)
	}

	if f.nodeCount(t, first.ID) != beforeFirst || f.nodeCount(t, second.ID) != beforeSecond {
		t.Fatal("a node was created despite the tree mismatch")
	}
}

func TestAddOperationDivideByZeroLeavesTreeUnchanged(t *testing.T) {
	f := newTreeServiceFixture(t)
	ctx := context.Background()

	tree, err := f.service.CreateTree(ctx, 7, f.user.ID)
	if err != nil {
		t.Fatalf("CreateTree: %v", err)
	}

	before := f.nodeCount(t, tree.ID)
	_, err = f.service.AddOperation(ctx, tree.ID, tree.RootNode.ID, calc.OperationDivide, 0, f.user.ID)
	if !errors.Is(err, apperrors.ErrDivisionByZero) {
		t.Fatalf("AddOperation = %v, want ErrDivisionByZero", err)
	}
	if after := f.nodeCount(t, tree.ID); after != before {
		t.Fatalf("node count changed: %d -> %d", before, after)
	}
}

func TestGetTreeNotFound(t *testing.T) {
	f := newTreeServiceFixture(t)
	if _, err := f.service.GetTree(context.Background(), 12345); !errors.Is(err, apperrors.ErrTreeNotFound) {
		t.Fatalf("GetTree = %v, want ErrTreeNotFound", err)
	}
}

// End-to-end chain: 42, +10 = 52, then *2 = 104; GetAllTrees shows the tree
// with exactly two non-root nodes linked in creation order.
func TestEndToEndChain(t *testing.T) {
	f := newTreeServiceFixture(t)
	ctx := context.Background()

	tree, err := f.service.CreateTree(ctx, 42, f.user.ID)
	if err != nil {
		t.Fatalf("CreateTree: %v", err)
	}
	if tree.RootNode.Result != 42 {
		t.Fatalf("root result = %v", tree.RootNode.Result)
	}

	added, err := f.service.AddOperation(ctx, tree.ID, tree.RootNode.ID, calc.OperationAdd, 10, f.user.ID)
	if err != nil {
		t.Fatalf("AddOperation add: %v", err)
	}
	if added.Result != 52 {
		t.Fatalf("added result = %v, want 52", added.Result)
	}

	multiplied, err := f.service.AddOperation(ctx, tree.ID, added.ID, calc.OperationMultiply, 2, f.user.ID)
	if err != nil {
		t.Fatalf("AddOperation multiply: %v", err)
	}
	if multiplied.Result != 104 {
		t.Fatalf("multiplied result = %v, want 104", multiplied.Result)
	}

	all, err := f.service.GetAllTrees(ctx)
	if err != nil {
		t.Fatalf("GetAllTrees: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("GetAllTrees len = %d, want 1", len(all))
	}
	root := all[0].RootNode
	if len(root.Children) != 1 {
		t.Fatalf("root children = %d, want 1", len(root.Children))
	}
	level1 := root.Children[0]
	if level1.ID != added.ID || len(level1.Children) != 1 {
		t.Fatalf("level1 = %+v", level1)
	}
	level2 := level1.Children[0]
	if level2.ID != multiplied.ID || level2.Result != 104 || len(level2.Children) != 0 {
		t.Fatalf("level2 = %+v", level2)
	}
}

func TestGetAllTreesNewestFirst(t *testing.T) {
	f := newTreeServiceFixture(t)
	ctx := context.Background()

	older, err := f.service.CreateTree(ctx, 1, f.user.ID)
	if err != nil {
		t.Fatalf("CreateTree older: %v", err)
	}
	newer, err := f.service.CreateTree(ctx, 2, f.user.ID)
	if err != nil {
		t.Fatalf("CreateTree newer: %v", err)
	}

	all, err := f.service.GetAllTrees(ctx)
	if err != nil {
		t.Fatalf("GetAllTrees: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("GetAllTrees len = %d, want 2", len(all))
	}
	if all[0].ID != newer.ID || all[1].ID != older.ID {
		t.Fatalf("order = [%d, %d], want [%d, %d]", all[0].ID, all[1].ID, newer.ID, older.ID)
	}
}

// A node whose declared parent is missing from the batch cannot be produced
// through the public API (AddOperation refuses unknown parents), but if such
// a row existed it is deterministically dropped from the hierarchy rather
// than crashing reconstruction.
func TestReconstructionDropsOrphanedRows(t *testing.T) {
	f := newTreeServiceFixture(t)
	ctx := context.Background()

	tree, err := f.service.CreateTree(ctx, 3, f.user.ID)
	if err != nil {
		t.Fatalf("CreateTree: %v", err)
	}

	// Forge a corrupt row behind the service's back.
	bogusParent := tree.RootNode.ID + 9999
	op := "add"
	right := 1.0
	orphan := &types.CalculationNode{
		TreeID:        tree.ID,
		ParentNodeID:  &bogusParent,
		Operation:     &op,
		RightArgument: &right,
		Result:        4,
		UserID:        f.user.ID,
	}
	if err := f.nodeRepo.Create(ctx, nil, orphan); err != nil {
		t.Fatalf("forge orphan: %v", err)
	}

	for i := 0; i < 3; i++ {
		got, err := f.service.GetTree(ctx, tree.ID)
		if err != nil {
			t.Fatalf("GetTree: %v", err)
		}
		if len(got.RootNode.Children) != 0 {
			t.Fatalf("orphan attached to root: %+v", got.RootNode.Children)
		}
	}
}
