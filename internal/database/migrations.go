package database

import (
	"fmt"
	"log"

	"gorm.io/gorm"
)

// AddIndexes adds composite indexes used by the inbox and feed queries.
// Single-column indexes are declared on the models.
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		{"notifications", "idx_notifications_user_unread", "user_id, is_read"},
		{"notifications", "idx_notifications_user_created", "user_id, created_at"},
		{"messages", "idx_messages_receiver_sender_unread", "receiver_id, sender_id, is_read"},
		{"activities", "idx_activities_task_created", "task_id, created_at"},
		{"tasks", "idx_tasks_archived_created", "is_archived, created_at"},
		{"sessions", "idx_sessions_user_expires", "user_id, expires_at"},
	}

	migrator := db.Migrator()
	for _, idx := range indexes {
		if migrator.HasIndex(idx.table, idx.name) {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Printf("Created index %s on %s(%s)", idx.name, idx.table, idx.columns)
	}

	return nil
}
