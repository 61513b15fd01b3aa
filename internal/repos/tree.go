package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/yungbote/calctree-backend/internal/logger"
	"github.com/yungbote/calctree-backend/internal/types"
)

type TreeRepo interface {
	Create(ctx context.Context, tx *gorm.DB, tree *types.CalculationTree) error
	GetByID(ctx context.Context, tx *gorm.DB, treeID int64) (*types.CalculationTree, error)
	GetAll(ctx context.Context, tx *gorm.DB) ([]*types.CalculationTree, error)
}

type treeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTreeRepo(db *gorm.DB, baseLog *logger.Logger) TreeRepo {
	repoLog := baseLog.With("repo", "TreeRepo")
	return &treeRepo{db: db, log: repoLog}
}

func (tr *treeRepo) Create(ctx context.Context, tx *gorm.DB, tree *types.CalculationTree) error {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}
	return transaction.WithContext(ctx).Create(tree).Error
}

// GetByID returns (nil, nil) when no such tree exists.
func (tr *treeRepo) GetByID(ctx context.Context, tx *gorm.DB, treeID int64) (*types.CalculationTree, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}

	var tree types.CalculationTree
	err := transaction.WithContext(ctx).
		Where("id = ?", treeID).
		First(&tree).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tree, nil
}

// GetAll returns every tree, newest first. Id breaks created_at ties since
// autoincrement ids follow commit order.
func (tr *treeRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.CalculationTree, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}

	var results []*types.CalculationTree
	if err := transaction.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
