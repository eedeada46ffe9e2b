package model

import (
	"time"

	"github.com/google/uuid"
)

// Resume is a résumé file owned by an applicant. The content lives in cloud
// storage when a bucket is configured, otherwise it is kept in the row.
type Resume struct {
	ID     uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User   User      `gorm:"foreignKey:UserID;references:ID" json:"-"`

	FileName    string  `gorm:"not null" json:"file_name"`
	ObjectPath  *string `json:"-"`
	Content     []byte  `gorm:"type:bytea" json:"-"`
	ContentType string  `json:"content_type"`

	CreatedAt time.Time `json:"created_at"`
}
