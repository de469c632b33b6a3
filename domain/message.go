// Package domain contains core concepts of the chat system.
// This file defines Message entities and their content rules.
// Message content is immutable once stored, only the read-by set grows.
package domain

import (
	"chat-hub/errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

var validate = validator.New()

type MessageID string

type MessageType string

const (
	MessageText  MessageType = "text"
	MessageImage MessageType = "image"
	MessageAudio MessageType = "audio"
	MessageFile  MessageType = "file"
	MessageLink  MessageType = "link"
)

type Message struct {
	ID          MessageID   `json:"id"`
	ChatID      ChatID      `json:"chatId"`
	SenderID    UserID      `json:"senderId"`
	Type        MessageType `json:"messageType"`
	Text        string      `json:"text,omitempty"`
	MediaURL    string      `json:"mediaUrl,omitempty"`
	FileName    string      `json:"fileName,omitempty"`
	FileSize    int64       `json:"fileSize,omitempty"`
	LinkPreview string      `json:"linkPreview,omitempty"`
	ReadBy      []UserID    `json:"readBy"`
	CreatedAt   time.Time   `json:"createdAt"`
}

func (m *Message) IsReadBy(userID UserID) bool {
	return lo.Contains(m.ReadBy, userID)
}

// MarkReadBy adds the user to the read-by set.
// It reports false when the user had already read the message.
func (m *Message) MarkReadBy(userID UserID) bool {
	if m.IsReadBy(userID) {
		return false
	}
	m.ReadBy = append(m.ReadBy, userID)
	return true
}

// MessageDraft is what a client submits before the message exists.
type MessageDraft struct {
	ChatID      ChatID      `json:"chatId" validate:"required"`
	Type        MessageType `json:"messageType" validate:"required,oneof=text image audio file link"`
	Text        string      `json:"text,omitempty" validate:"max=4096"`
	MediaURL    string      `json:"mediaUrl,omitempty" validate:"omitempty,url"`
	FileName    string      `json:"fileName,omitempty" validate:"max=255"`
	FileSize    int64       `json:"fileSize,omitempty" validate:"gte=0"`
	LinkPreview string      `json:"linkPreview,omitempty" validate:"max=1024"`
}

// Validate checks field constraints first, then that the content
// matches the declared type.
func (d MessageDraft) Validate() error {
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrValidation, err)
	}
	if err := d.checkShape(); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrValidation, err)
	}
	return nil
}

func (d MessageDraft) checkShape() error {
	hasText := strings.TrimSpace(d.Text) != ""
	switch d.Type {
	case MessageText:
		if !hasText {
			return errors.New("text message requires text")
		}
		if d.MediaURL != "" || d.FileName != "" || d.LinkPreview != "" {
			return errors.New("text message cannot carry media")
		}
	case MessageImage, MessageAudio:
		if d.MediaURL == "" {
			return fmt.Errorf("%s message requires mediaUrl", d.Type)
		}
		if hasText || d.FileName != "" || d.LinkPreview != "" {
			return fmt.Errorf("%s message only carries media", d.Type)
		}
	case MessageFile:
		if d.MediaURL == "" || d.FileName == "" {
			return errors.New("file message requires mediaUrl and fileName")
		}
		if hasText || d.LinkPreview != "" {
			return errors.New("file message only carries a file")
		}
	case MessageLink:
		if !hasText {
			return errors.New("link message requires text")
		}
		if d.MediaURL != "" || d.FileName != "" {
			return errors.New("link message cannot carry media")
		}
	}
	return nil
}

// NewMessage builds the stored message. The sender has read it.
func NewMessage(sender UserID, draft MessageDraft, at time.Time) Message {
	return Message{
		ID:          MessageID(uuid.NewString()),
		ChatID:      draft.ChatID,
		SenderID:    sender,
		Type:        draft.Type,
		Text:        draft.Text,
		MediaURL:    draft.MediaURL,
		FileName:    draft.FileName,
		FileSize:    draft.FileSize,
		LinkPreview: draft.LinkPreview,
		ReadBy:      []UserID{sender},
		CreatedAt:   at,
	}
}
