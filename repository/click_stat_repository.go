package repository

import (
	"context"
	"fmt"

	"github.com/rezashm/linkdrop/models"
	"gorm.io/gorm"
)

// ClickStatRepositoryImpl implements ClickStatRepository
type ClickStatRepositoryImpl struct {
	*BaseRepository[models.ClickStat, models.ClickStatFilter]
}

func NewClickStatRepository(db *gorm.DB) ClickStatRepository {
	return &ClickStatRepositoryImpl{BaseRepository: NewBaseRepository[models.ClickStat, models.ClickStatFilter](db)}
}

func (r *ClickStatRepositoryImpl) applyFilter(db *gorm.DB, f models.ClickStatFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.LinkID != nil {
		db = db.Where("link_id = ?", *f.LinkID)
	}
	if f.IP != nil {
		db = db.Where("ip = ?", *f.IP)
	}
	if f.Browser != nil {
		db = db.Where("browser = ?", *f.Browser)
	}
	if f.OS != nil {
		db = db.Where("os = ?", *f.OS)
	}
	if f.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *f.CreatedAfter)
	}
	if f.CreatedBefore != nil {
		db = db.Where("created_at < ?", *f.CreatedBefore)
	}
	return db
}

func (r *ClickStatRepositoryImpl) ByFilter(ctx context.Context, filter models.ClickStatFilter, orderBy string, limit, offset int) ([]*models.ClickStat, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.ClickStat{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.ClickStat
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ClickStatRepositoryImpl) Count(ctx context.Context, filter models.ClickStatFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.ClickStat{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ClickStatRepositoryImpl) Exists(ctx context.Context, filter models.ClickStatFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}

// ListByLink retrieves all click stats for a link, newest first
func (r *ClickStatRepositoryImpl) ListByLink(ctx context.Context, linkID uint) ([]*models.ClickStat, error) {
	filter := models.ClickStatFilter{LinkID: &linkID}
	return r.ByFilter(ctx, filter, "created_at DESC", 0, 0)
}

// DeleteByLink removes all click stats belonging to a link
func (r *ClickStatRepositoryImpl) DeleteByLink(ctx context.Context, linkID uint) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	err = db.Where("link_id = ?", linkID).Delete(&models.ClickStat{}).Error
	if err != nil {
		err = fmt.Errorf("failed to delete click stats for link %d: %w", linkID, err)
		return err
	}
	return nil
}
