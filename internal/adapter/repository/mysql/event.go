package mysql

import (
	"context"

	eventDomain "stokvel-backend/internal/domain/event"

	"gorm.io/gorm"
)

type EventRepository struct{ db *gorm.DB }

func NewEventRepository(db *gorm.DB) *EventRepository { return &EventRepository{db: db} }

func (r *EventRepository) Append(ctx context.Context, e *eventDomain.Event) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *EventRepository) ListAfter(ctx context.Context, seq uint64, limit int) ([]eventDomain.Event, error) {
	var out []eventDomain.Event
	err := r.db.WithContext(ctx).
		Where("seq > ?", seq).
		Order("seq ASC").
		Limit(limit).
		Find(&out).Error
	return out, err
}
