package model

import (
	"database/sql"
	"time"
)

type MessageSource string

const (
	MessageSourceEmail  MessageSource = "email"
	MessageSourceManual MessageSource = "manual"
	MessageSourceAPI    MessageSource = "api"
)

// Message is an inbound task proposal, typically produced by an external
// mail poller. Processing a message turns it into a Task.
type Message struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	Source        MessageSource `gorm:"type:varchar(50);not null;default:email" json:"source"`
	SourceAccount string        `gorm:"type:varchar(200)" json:"source_account"`

	Subject       string `gorm:"type:varchar(500);not null" json:"subject"`
	Sender        string `gorm:"type:varchar(200)" json:"sender"`
	SenderName    string `gorm:"type:varchar(100)" json:"sender_name"`
	Organization  string `gorm:"type:varchar(200)" json:"organization"`
	ContactPerson string `gorm:"type:varchar(100)" json:"contact_person"`
	Body          string `gorm:"type:text" json:"body"`

	IsRead      bool          `gorm:"default:false" json:"is_read"`
	IsProcessed bool          `gorm:"default:false" json:"is_processed"`
	TaskID      sql.NullInt64 `json:"task_id"`

	// MessageID is the upstream identifier used for deduplication.
	MessageID string `gorm:"type:varchar(500);index" json:"message_id"`

	ReceivedAt time.Time `gorm:"autoCreateTime" json:"received_at"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Message) TableName() string {
	return "messages"
}

type GetMessagesParam struct {
	Source      *MessageSource `json:"source"`
	IsProcessed *bool          `json:"is_processed"`
	Limit       *int           `json:"limit"`
	Offset      *int           `json:"offset"`
}
