package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/creatorhub/backend/internal/domain/creator"
	"github.com/creatorhub/backend/internal/infrastructure/persistence/models"
)

// mediaUpdateColumns are the columns each collector refreshes when a snapshot already exists
var mediaUpdateColumns = map[creator.MediaSource][]string{
	creator.MediaSourceOwned: {
		"media_url", "thumbnail_url", "like_count", "comments_count", "reach", "saved", "shares",
		"total_interactions", "reels_avg_watch_time_ms", "reels_video_view_total_time_ms",
		"views_count", "link_url",
	},
	creator.MediaSourcePublic: {
		"media_url", "thumbnail_url", "like_count", "comments_count",
	},
	creator.MediaSourceStory: {
		"reach", "shares", "total_interactions", "views_count", "media_url",
	},
	creator.MediaSourceBackfill: {
		"like_count", "comments_count", "reach", "saved", "shares", "total_interactions",
		"reels_avg_watch_time_ms", "reels_video_view_total_time_ms", "views_count",
		"media_url", "thumbnail_url",
	},
}

// GormCreatorRepository implements creator.Repository using GORM
type GormCreatorRepository struct {
	db *gorm.DB
}

// NewGormCreatorRepository creates a new GormCreatorRepository
func NewGormCreatorRepository(db *gorm.DB) *GormCreatorRepository {
	return &GormCreatorRepository{db: db}
}

// EnsureExists inserts the creator if absent
func (r *GormCreatorRepository) EnsureExists(ctx context.Context, c creator.Creator) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: columns("id"), DoNothing: true}).
		Create(models.CreatorModelFromDomain(c)).Error
	if err != nil {
		return fmt.Errorf("ensure creator %s: %w", c.ID, err)
	}
	return nil
}

// UpdateProfile refreshes the social profile fields
func (r *GormCreatorRepository) UpdateProfile(ctx context.Context, id string, p creator.Profile) error {
	err := r.db.WithContext(ctx).
		Model(&models.CreatorModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"display_name":        p.DisplayName,
			"profile_picture_url": p.ProfilePictureURL,
			"biography":           p.Biography,
			"updated_at":          time.Now().UTC(),
		}).Error
	if err != nil {
		return fmt.Errorf("update creator profile %s: %w", id, err)
	}
	return nil
}

// SetPlatformIDs updates the non-empty affiliate identities and returns the updated creator
func (r *GormCreatorRepository) SetPlatformIDs(ctx context.Context, id string, ids creator.PlatformIDs) (*creator.Creator, error) {
	cols := ids.Columns()
	if len(cols) == 0 {
		return nil, creator.ErrNoPlatformIDs
	}
	cols["updated_at"] = time.Now().UTC()

	var updated models.CreatorModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&updated, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return creator.ErrCreatorNotFound
			}
			return err
		}
		if err := tx.Model(&models.CreatorModel{}).Where("id = ?", id).Updates(cols).Error; err != nil {
			return err
		}
		return tx.First(&updated, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return updated.ToDomain(), nil
}

// Get returns a creator or creator.ErrCreatorNotFound
func (r *GormCreatorRepository) Get(ctx context.Context, id string) (*creator.Creator, error) {
	var m models.CreatorModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, creator.ErrCreatorNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// List returns every creator ordered by id
func (r *GormCreatorRepository) List(ctx context.Context) ([]creator.Creator, error) {
	return r.list(ctx, r.db.WithContext(ctx))
}

// ListOwned returns the creators whose accounts we manage
func (r *GormCreatorRepository) ListOwned(ctx context.Context) ([]creator.Creator, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("is_owned = ?", true))
}

func (r *GormCreatorRepository) list(_ context.Context, q *gorm.DB) ([]creator.Creator, error) {
	var rows []models.CreatorModel
	if err := q.Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]creator.Creator, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// InsertSnapshotIgnore keeps the first snapshot of the day
func (r *GormCreatorRepository) InsertSnapshotIgnore(ctx context.Context, s creator.Snapshot) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: columns("creator_id", "captured_at"), DoNothing: true}).
		Create(models.CreatorSnapshotModelFromDomain(s)).Error
	if err != nil {
		return fmt.Errorf("insert creator snapshot %s: %w", s.CreatorID, err)
	}
	return nil
}

// UpsertMedia inserts media snapshots keyed by (media_ig_id, captured_at),
// refreshing the columns the source collects when the row exists.
func (r *GormCreatorRepository) UpsertMedia(ctx context.Context, source creator.MediaSource, media []creator.MediaSnapshot) error {
	if len(media) == 0 {
		return nil
	}
	update, ok := mediaUpdateColumns[source]
	if !ok {
		return fmt.Errorf("unknown media source %q", source)
	}

	byKey := make(map[string]int, len(media))
	rows := make([]*models.MediaSnapshotModel, 0, len(media))
	for _, m := range media {
		key := m.MediaIGID + "|" + m.CapturedAt.UTC().Format(time.DateOnly)
		row := models.MediaSnapshotModelFromDomain(m)
		if i, dup := byKey[key]; dup {
			rows[i] = row
			continue
		}
		byKey[key] = len(rows)
		rows = append(rows, row)
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   columns("media_ig_id", "captured_at"),
			DoUpdates: clause.AssignmentColumns(update),
		}).
		CreateInBatches(rows, upsertBatchSize).Error
	if err != nil {
		return fmt.Errorf("upsert media_snapshots (%s): %w", source, err)
	}
	return nil
}

var _ creator.Repository = (*GormCreatorRepository)(nil)
