package dto

import "taskhub/internal/model"

type CreateMessageRequest struct {
	Source        model.MessageSource `json:"source" validate:"omitempty,oneof=email manual api"`
	SourceAccount string              `json:"source_account" validate:"omitempty,max=200"`
	Subject       string              `json:"subject" validate:"required,max=500"`
	Sender        string              `json:"sender" validate:"omitempty,max=200"`
	SenderName    string              `json:"sender_name" validate:"omitempty,max=100"`
	Organization  string              `json:"organization" validate:"omitempty,max=200"`
	ContactPerson string              `json:"contact_person" validate:"omitempty,max=100"`
	Body          string              `json:"body"`
	MessageID     string              `json:"message_id" validate:"omitempty,max=500"`
}

type UpdateMessageRequest struct {
	IsRead      *bool `json:"is_read"`
	IsProcessed *bool `json:"is_processed"`
}

// CreateTaskFromMessageRequest turns an ingested message into a Task. The
// task fields mirror CreateTaskRequest; the message is marked processed in
// the same transaction.
type CreateTaskFromMessageRequest struct {
	CreateTaskRequest
}
