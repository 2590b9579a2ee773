package repository

import (
	"fmt"

	"gorm.io/gorm"

	"tunescout/db"
	"tunescout/logger"
	"tunescout/model"
)

// InteractionRepository defines the interface for interaction logging.
type InteractionRepository interface {
	Log(interaction *model.Interaction) (int64, error)
	GetAll() ([]model.Interaction, error)
	GetByParticipant(participantID string) ([]model.Interaction, error)
	StatsByCondition() ([]model.ConditionStats, error)
	ClearAll() error
}

// gormInteractionRepository implements InteractionRepository on GORM.
type gormInteractionRepository struct {
	db *gorm.DB
}

// NewGormInteractionRepository creates a new instance backed by the
// shared GORM connection.
func NewGormInteractionRepository() InteractionRepository {
	return &gormInteractionRepository{db: db.GormDB}
}

// Log persists one interaction record and returns its id.
func (r *gormInteractionRepository) Log(interaction *model.Interaction) (int64, error) {
	if err := r.db.Create(interaction).Error; err != nil {
		return 0, fmt.Errorf("failed to log interaction: %w", err)
	}

	logger.Info("interaction logged",
		logger.Int64("id", interaction.ID),
		logger.String("participant", interaction.ParticipantID),
		logger.String("condition", interaction.Condition))
	return interaction.ID, nil
}

// GetAll returns every interaction, newest first.
func (r *gormInteractionRepository) GetAll() ([]model.Interaction, error) {
	var interactions []model.Interaction
	if err := r.db.Order("created_at DESC").Find(&interactions).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch interactions: %w", err)
	}
	return interactions, nil
}

// GetByParticipant returns one participant's interactions, newest first.
func (r *gormInteractionRepository) GetByParticipant(participantID string) ([]model.Interaction, error) {
	var interactions []model.Interaction
	err := r.db.Where("participant_id = ?", participantID).
		Order("created_at DESC").
		Find(&interactions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch interactions for participant %s: %w", participantID, err)
	}
	return interactions, nil
}

// StatsByCondition aggregates interaction counts, durations and
// satisfaction per condition.
func (r *gormInteractionRepository) StatsByCondition() ([]model.ConditionStats, error) {
	var stats []model.ConditionStats
	err := r.db.Model(&model.Interaction{}).
		Select("`condition` AS `condition`, COUNT(*) AS total, AVG(duration_seconds) AS avg_duration, AVG(satisfaction_rating) AS avg_satisfaction, SUM(CASE WHEN success = 1 THEN 1 ELSE 0 END) AS success_count").
		Where("`condition` IS NOT NULL AND `condition` <> ''").
		Group("`condition`").
		Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate interaction stats: %w", err)
	}
	return stats, nil
}

// ClearAll deletes every interaction record.
func (r *gormInteractionRepository) ClearAll() error {
	if err := r.db.Where("1 = 1").Delete(&model.Interaction{}).Error; err != nil {
		return fmt.Errorf("failed to clear interactions: %w", err)
	}
	logger.Warn("all interaction records cleared")
	return nil
}
