package storage

import (
	"context"

	"github.com/joshu-sajeev/queuectl/internal/config"
	"github.com/joshu-sajeev/queuectl/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingRepository persists the runtime tunables of config.Store.
type SettingRepository struct {
	db *gorm.DB
}

func NewSettingRepository(db *gorm.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

var _ config.Persister = (*SettingRepository)(nil)

func (r *SettingRepository) LoadSettings(ctx context.Context) (map[string]int, error) {
	var rows []models.Setting
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, wrapStoreErr("load settings", err)
	}

	out := make(map[string]int, len(rows))
	for _, row := range rows {
		out[row.Name] = row.Value
	}
	return out, nil
}

// SaveSetting upserts one tunable.
func (r *SettingRepository) SaveSetting(ctx context.Context, key string, value int) error {
	row := models.Setting{Name: key, Value: value}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&row).Error; err != nil {
		return wrapStoreErr("save setting", err)
	}
	return nil
}
