package session

import (
	"chat-hub/domain"
	"chat-hub/domain/event"
	"chat-hub/errors"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// Older clients still send these names.
var aliases = map[event.Name]event.Name{
	"join_room": event.JoinChat,
	"mark_read": event.MessageRead,
}

// Intent is one inbound frame, payload left raw until a handler needs it.
type Intent struct {
	Name event.Name
	Data gjson.Result
}

func Decode(frame []byte) (Intent, error) {
	if !gjson.ValidBytes(frame) {
		return Intent{}, fmt.Errorf("%w: frame is not valid json", errors.ErrValidation)
	}
	name := gjson.GetBytes(frame, "event")
	if name.Type != gjson.String || name.Str == "" {
		return Intent{}, fmt.Errorf("%w: frame has no event name", errors.ErrValidation)
	}
	intent := Intent{Name: event.Name(name.Str), Data: gjson.GetBytes(frame, "data")}
	if canonical, ok := aliases[intent.Name]; ok {
		intent.Name = canonical
	}
	return intent, nil
}

// field accepts the payload itself when it is a bare string, or one of the keys.
func (i Intent) field(keys ...string) string {
	if i.Data.Type == gjson.String {
		return i.Data.Str
	}
	for _, key := range keys {
		if value := i.Data.Get(key); value.Type == gjson.String && value.Str != "" {
			return value.Str
		}
	}
	return ""
}

func (i Intent) ChatID() domain.ChatID {
	return domain.ChatID(i.field("chatId", "roomId"))
}

func (i Intent) MessageID() domain.MessageID {
	return domain.MessageID(i.field("messageId"))
}

func (i Intent) Token() string {
	return i.field("token")
}

func (i Intent) Draft() (domain.MessageDraft, error) {
	var draft domain.MessageDraft
	if !i.Data.IsObject() {
		return draft, fmt.Errorf("%w: send_message expects an object", errors.ErrValidation)
	}
	if err := json.Unmarshal([]byte(i.Data.Raw), &draft); err != nil {
		return draft, fmt.Errorf("%w: %v", errors.ErrValidation, err)
	}
	return draft, nil
}
