package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/yungbote/calctree-backend/internal/logger"
	"github.com/yungbote/calctree-backend/internal/types"
)

type NodeRepo interface {
	Create(ctx context.Context, tx *gorm.DB, node *types.CalculationNode) error
	GetByID(ctx context.Context, tx *gorm.DB, nodeID int64) (*types.CalculationNode, error)
	GetByTreeID(ctx context.Context, tx *gorm.DB, treeID int64) ([]*types.CalculationNode, error)
	CountByTreeID(ctx context.Context, tx *gorm.DB, treeID int64) (int64, error)
}

type nodeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewNodeRepo(db *gorm.DB, baseLog *logger.Logger) NodeRepo {
	repoLog := baseLog.With("repo", "NodeRepo")
	return &nodeRepo{db: db, log: repoLog}
}

func (nr *nodeRepo) Create(ctx context.Context, tx *gorm.DB, node *types.CalculationNode) error {
	transaction := tx
	if transaction == nil {
		transaction = nr.db
	}
	return transaction.WithContext(ctx).Create(node).Error
}

// GetByID returns (nil, nil) when no such node exists.
func (nr *nodeRepo) GetByID(ctx context.Context, tx *gorm.DB, nodeID int64) (*types.CalculationNode, error) {
	transaction := tx
	if transaction == nil {
		transaction = nr.db
	}

	var node types.CalculationNode
	err := transaction.WithContext(ctx).
		Where("id = ?", nodeID).
		First(&node).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &node, nil
}

// GetByTreeID returns the flat node rows of one tree in creation order.
// Reconstruction relies on this ordering to keep children lists in creation
// order without a secondary sort.
func (nr *nodeRepo) GetByTreeID(ctx context.Context, tx *gorm.DB, treeID int64) ([]*types.CalculationNode, error) {
	transaction := tx
	if transaction == nil {
		transaction = nr.db
	}

	var results []*types.CalculationNode
	if err := transaction.WithContext(ctx).
		Where("tree_id = ?", treeID).
		Order("created_at ASC, id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (nr *nodeRepo) CountByTreeID(ctx context.Context, tx *gorm.DB, treeID int64) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = nr.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.CalculationNode{}).
		Where("tree_id = ?", treeID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
