package gormrepository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"klotto/internal/models"
	"klotto/internal/repository"
)

type Store struct {
	db *gorm.DB
}

var _ repository.Repository = (*Store)(nil)

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) InsertDrawIgnore(ctx context.Context, item *models.Draw) (bool, error) {
	if s == nil || s.db == nil || item == nil {
		return false, nil
	}
	if item.DrawNo <= 0 {
		return false, nil
	}
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "draw_no"}},
		DoNothing: true,
	}).Create(item)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *Store) GetDraw(ctx context.Context, drawNo int) (*models.Draw, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.Draw
	err := s.db.WithContext(ctx).First(&item, "draw_no = ?", drawNo).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListDraws(ctx context.Context, params repository.ListDrawsParams) ([]models.Draw, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.Draw{})
	if params.From != nil {
		query = query.Where("draw_no >= ?", *params.From)
	}
	if params.To != nil {
		query = query.Where("draw_no <= ?", *params.To)
	}
	direction := "desc"
	if params.Asc {
		direction = "asc"
	}
	query = query.Order("draw_no " + direction)
	if params.Limit > 0 {
		query = query.Limit(params.Limit)
	}
	if offset := normalizeOffset(params.Offset); offset > 0 {
		query = query.Offset(offset)
	}
	var items []models.Draw
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountDraws(ctx context.Context) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Draw{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) MaxDrawNo(ctx context.Context) (int, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var maxNo *int
	if err := s.db.WithContext(ctx).
		Model(&models.Draw{}).
		Select("MAX(draw_no)").
		Scan(&maxNo).Error; err != nil {
		return 0, err
	}
	if maxNo == nil {
		return 0, nil
	}
	return *maxNo, nil
}

func (s *Store) GetSyncState(ctx context.Context, scope string) (*models.SyncState, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var state models.SyncState
	err := s.db.WithContext(ctx).First(&state, "scope = ?", strings.TrimSpace(scope)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *Store) SaveSyncState(ctx context.Context, state *models.SyncState) error {
	if s == nil || s.db == nil || state == nil {
		return nil
	}
	if strings.TrimSpace(state.Scope) == "" {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "scope"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"last_draw_no",
			"last_run_id",
			"last_attempt_at",
			"last_success_at",
			"last_error",
			"stats_json",
		}),
	}).Create(state).Error
}

func (s *Store) ListSyncStates(ctx context.Context) ([]models.SyncState, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var states []models.SyncState
	if err := s.db.WithContext(ctx).Order("scope asc").Find(&states).Error; err != nil {
		return nil, err
	}
	return states, nil
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
