package mysql

import (
	"context"

	notifDomain "trustlend-backend/internal/domain/notification"

	"gorm.io/gorm"
)

// NotificationSink persists intents as rows for the external delivery
// component to drain.
type NotificationSink struct{ db *gorm.DB }

func NewNotificationSink(db *gorm.DB) *NotificationSink { return &NotificationSink{db: db} }

func (s *NotificationSink) Notify(ctx context.Context, in notifDomain.Intent) error {
	rec := &notifDomain.Record{
		UserID:      in.UserID,
		Type:        in.Type,
		Message:     in.Message,
		ReferenceID: in.ReferenceID,
	}
	return s.db.WithContext(ctx).Create(rec).Error
}
