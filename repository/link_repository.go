package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rezashm/linkdrop/models"
	"github.com/rezashm/linkdrop/utils"
	"gorm.io/gorm"
)

// ErrDuplicateShortCode reports that an insert lost the race on the
// short_code unique constraint; the caller regenerates and retries
var ErrDuplicateShortCode = errors.New("short code already exists")

// uniqueViolationCode is the PostgreSQL error code for unique_violation
const uniqueViolationCode = "23505"

// LinkRepositoryImpl implements LinkRepository
type LinkRepositoryImpl struct {
	*BaseRepository[models.Link, models.LinkFilter]
}

func NewLinkRepository(db *gorm.DB) LinkRepository {
	return &LinkRepositoryImpl{BaseRepository: NewBaseRepository[models.Link, models.LinkFilter](db)}
}

func (r *LinkRepositoryImpl) applyFilter(db *gorm.DB, f models.LinkFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.UserID != nil {
		db = db.Where("user_id = ?", *f.UserID)
	}
	if f.OriginalURL != nil {
		db = db.Where("original_url = ?", *f.OriginalURL)
	}
	if f.ShortCode != nil {
		db = db.Where("short_code = ?", *f.ShortCode)
	}
	if f.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *f.CreatedAfter)
	}
	if f.CreatedBefore != nil {
		db = db.Where("created_at < ?", *f.CreatedBefore)
	}
	return db
}

func (r *LinkRepositoryImpl) ByFilter(ctx context.Context, filter models.LinkFilter, orderBy string, limit, offset int) ([]*models.Link, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Link{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.Link
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *LinkRepositoryImpl) Count(ctx context.Context, filter models.LinkFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Link{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *LinkRepositoryImpl) Exists(ctx context.Context, filter models.LinkFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}

// ByShortCode retrieves a link by its short code
func (r *LinkRepositoryImpl) ByShortCode(ctx context.Context, shortCode string) (*models.Link, error) {
	filter := models.LinkFilter{ShortCode: &shortCode}
	rows, err := r.ByFilter(ctx, filter, "id DESC", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// ByUserAndURL retrieves the link a user already created for an original URL
func (r *LinkRepositoryImpl) ByUserAndURL(ctx context.Context, userID uint, originalURL string) (*models.Link, error) {
	filter := models.LinkFilter{UserID: &userID, OriginalURL: &originalURL}
	rows, err := r.ByFilter(ctx, filter, "id DESC", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// ListByUser retrieves all links owned by a user, newest first
func (r *LinkRepositoryImpl) ListByUser(ctx context.Context, userID uint) ([]*models.Link, error) {
	filter := models.LinkFilter{UserID: &userID}
	return r.ByFilter(ctx, filter, "created_at DESC", 0, 0)
}

// ShortCodeExists checks whether a short code is already in use
func (r *LinkRepositoryImpl) ShortCodeExists(ctx context.Context, shortCode string) (bool, error) {
	filter := models.LinkFilter{ShortCode: &shortCode}
	return r.Exists(ctx, filter)
}

// Save inserts a new link, translating the unique_violation on short_code
// into ErrDuplicateShortCode so the caller can regenerate
func (r *LinkRepositoryImpl) Save(ctx context.Context, link *models.Link) error {
	err := r.BaseRepository.Save(ctx, link)
	if err != nil && isUniqueViolation(err) {
		return ErrDuplicateShortCode
	}
	return err
}

// Update persists a modified link
func (r *LinkRepositoryImpl) Update(ctx context.Context, link *models.Link) error {
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

	link.UpdatedAt = utils.UTCNow()
	err = db.Model(&models.Link{}).
		Where("id = ?", link.ID).
		Updates(map[string]any{
			"original_url": link.OriginalURL,
			"short_code":   link.ShortCode,
			"updated_at":   link.UpdatedAt,
		}).Error
	if err != nil {
		if isUniqueViolation(err) {
			err = ErrDuplicateShortCode
			return err
		}
		err = fmt.Errorf("failed to update link: %w", err)
		return err
	}
	return nil
}

// Delete removes a link by ID
func (r *LinkRepositoryImpl) Delete(ctx context.Context, id uint) error {
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

	err = db.Delete(&models.Link{}, id).Error
	if err != nil {
		err = fmt.Errorf("failed to delete link: %w", err)
		return err
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return true
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
