package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/calctree-backend/internal/apperrors"
	"github.com/yungbote/calctree-backend/internal/calc"
	"github.com/yungbote/calctree-backend/internal/logger"
	"github.com/yungbote/calctree-backend/internal/repos"
	"github.com/yungbote/calctree-backend/internal/types"
)

type TreeService interface {
	CreateTree(ctx context.Context, startingNumber float64, userID int64) (*types.TreeView, error)
	AddOperation(ctx context.Context, treeID, parentNodeID int64, op calc.Operation, rightArgument float64, userID int64) (*types.NodeView, error)
	GetTree(ctx context.Context, treeID int64) (*types.TreeView, error)
	GetAllTrees(ctx context.Context) ([]*types.TreeView, error)
}

type treeService struct {
	db       *gorm.DB
	log      *logger.Logger
	treeRepo repos.TreeRepo
	nodeRepo repos.NodeRepo
	userRepo repos.UserRepo
}

func NewTreeService(db *gorm.DB, log *logger.Logger, treeRepo repos.TreeRepo, nodeRepo repos.NodeRepo, userRepo repos.UserRepo) TreeService {
	serviceLog := log.With("service", "TreeService")
	return &treeService{
		db:       db,
		log:      serviceLog,
		treeRepo: treeRepo,
		nodeRepo: nodeRepo,
		userRepo: userRepo,
	}
}

// CreateTree persists the tree row and its root node as one transaction; a
// tree is never visible without its root.
func (ts *treeService) CreateTree(ctx context.Context, startingNumber float64, userID int64) (*types.TreeView, error) {
	tree := &types.CalculationTree{
		StartingNumber: startingNumber,
		UserID:         userID,
	}
	err := ts.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ts.treeRepo.Create(ctx, tx, tree); err != nil {
			return err
		}
		root := &types.CalculationNode{
			TreeID: tree.ID,
			Result: startingNumber,
			UserID: userID,
		}
		return ts.nodeRepo.Create(ctx, tx, root)
	})
	if err != nil {
		ts.log.Error("Create tree failed", "userID", userID, "error", err)
		return nil, fmt.Errorf("%w: create tree: %v", apperrors.ErrPersistence, err)
	}
	ts.log.Info("Tree created", "treeID", tree.ID, "userID", userID)

	return ts.GetTree(ctx, tree.ID)
}

// AddOperation validates and computes before touching storage: a rejected
// operation leaves no node behind. The result is always derived from the
// parent's stored result, never reconstructed from the child side.
func (ts *treeService) AddOperation(ctx context.Context, treeID, parentNodeID int64, op calc.Operation, rightArgument float64, userID int64) (*types.NodeView, error) {
	if err := calc.Validate(op, rightArgument); err != nil {
		return nil, err
	}

	parent, err := ts.nodeRepo.GetByID(ctx, nil, parentNodeID)
	if err != nil {
		return nil, fmt.Errorf("%w: look up parent node: %v", apperrors.ErrPersistence, err)
	}
	if parent == nil {
		return nil, apperrors.ErrParentNotFound
	}
	if parent.TreeID != treeID {
		return nil, apperrors.ErrParentTreeMismatch
	}

	result, err := calc.Apply(parent.Result, op, rightArgument)
	if err != nil {
		return nil, err
	}

	opStr := string(op)
	node := &types.CalculationNode{
		TreeID:        treeID,
		ParentNodeID:  &parentNodeID,
		Operation:     &opStr,
		RightArgument: &rightArgument,
		Result:        result,
		UserID:        userID,
	}
	if err := ts.nodeRepo.Create(ctx, nil, node); err != nil {
		ts.log.Error("Create node failed", "treeID", treeID, "parentNodeID", parentNodeID, "error", err)
		return nil, fmt.Errorf("%w: create node: %v", apperrors.ErrPersistence, err)
	}
	ts.log.Info("Operation added", "treeID", treeID, "nodeID", node.ID, "operation", opStr)

	usernames, err := ts.usernamesFor(ctx, []int64{node.UserID})
	if err != nil {
		return nil, err
	}
	return nodeView(node, usernames), nil
}

func (ts *treeService) GetTree(ctx context.Context, treeID int64) (*types.TreeView, error) {
	tree, err := ts.treeRepo.GetByID(ctx, nil, treeID)
	if err != nil {
		return nil, fmt.Errorf("%w: look up tree: %v", apperrors.ErrPersistence, err)
	}
	if tree == nil {
		return nil, apperrors.ErrTreeNotFound
	}

	view, err := ts.assembleTree(ctx, tree)
	if err != nil {
		return nil, err
	}
	if view == nil {
		return nil, apperrors.ErrTreeNotFound
	}
	return view, nil
}

// GetAllTrees reconstructs every tree, newest first. Per-tree assembly is
// independent reads, so it fans out on an errgroup; slice indexing keeps the
// repo's ordering.
func (ts *treeService) GetAllTrees(ctx context.Context) ([]*types.TreeView, error) {
	trees, err := ts.treeRepo.GetAll(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: list trees: %v", apperrors.ErrPersistence, err)
	}

	assembled := make([]*types.TreeView, len(trees))
	g, gctx := errgroup.WithContext(ctx)
	for i, tree := range trees {
		i, tree := i, tree
		g.Go(func() error {
			view, err := ts.assembleTree(gctx, tree)
			if err != nil {
				return err
			}
			assembled[i] = view
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	views := make([]*types.TreeView, 0, len(assembled))
	for _, view := range assembled {
		if view != nil {
			views = append(views, view)
		}
	}
	return views, nil
}

// assembleTree loads the tree's flat node rows and links them into a
// hierarchy. Returns (nil, nil) when the tree has no nodes at all, which
// cannot happen through the public API.
func (ts *treeService) assembleTree(ctx context.Context, tree *types.CalculationTree) (*types.TreeView, error) {
	nodes, err := ts.nodeRepo.GetByTreeID(ctx, nil, tree.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: load nodes: %v", apperrors.ErrPersistence, err)
	}
	if len(nodes) == 0 {
		return nil, nil
	}

	userIDs := make([]int64, 0, len(nodes)+1)
	userIDs = append(userIDs, tree.UserID)
	for _, node := range nodes {
		userIDs = append(userIDs, node.UserID)
	}
	usernames, err := ts.usernamesFor(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	root := linkNodes(nodes, usernames)
	if root == nil {
		return nil, nil
	}

	return &types.TreeView{
		ID:             tree.ID,
		StartingNumber: tree.StartingNumber,
		UserID:         tree.UserID,
		Username:       usernames[tree.UserID],
		RootNode:       root,
		CreatedAt:      tree.CreatedAt,
	}, nil
}

// linkNodes builds the hierarchy from flat rows in creation order: one pass
// indexes every node by id with an empty children list, a second pass
// appends each non-root node to its parent's children. Because rows arrive
// in creation order, every children list ends up in creation order without a
// secondary sort. A node whose parent id is absent from the batch is a
// data-integrity fault and is deterministically dropped.
func linkNodes(nodes []*types.CalculationNode, usernames map[int64]string) *types.NodeView {
	index := make(map[int64]*types.NodeView, len(nodes))
	for _, node := range nodes {
		index[node.ID] = nodeView(node, usernames)
	}

	var root *types.NodeView
	for _, node := range nodes {
		view := index[node.ID]
		if node.ParentNodeID == nil {
			root = view
			continue
		}
		if parent, ok := index[*node.ParentNodeID]; ok {
			parent.Children = append(parent.Children, view)
		}
	}
	return root
}

func nodeView(node *types.CalculationNode, usernames map[int64]string) *types.NodeView {
	return &types.NodeView{
		ID:            node.ID,
		TreeID:        node.TreeID,
		ParentNodeID:  node.ParentNodeID,
		Operation:     node.Operation,
		RightArgument: node.RightArgument,
		Result:        node.Result,
		UserID:        node.UserID,
		Username:      usernames[node.UserID],
		Children:      []*types.NodeView{},
		CreatedAt:     node.CreatedAt,
	}
}

func (ts *treeService) usernamesFor(ctx context.Context, userIDs []int64) (map[int64]string, error) {
	users, err := ts.userRepo.GetByIDs(ctx, nil, userIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: load usernames: %v", apperrors.ErrPersistence, err)
	}
	usernames := make(map[int64]string, len(users))
	for _, user := range users {
		usernames[user.ID] = user.Username
	}
	return usernames, nil
}
