package repositories

import (
	"chat-hub/domain"
	pb "chat-hub/proto/storage"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"
	"google.golang.org/protobuf/proto"
)

// Conversions between the domain types and their stored protobuf records.
// Times are kept as UTC unix nanoseconds, 0 standing for the zero time.

func toUnixNano(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromUnixNano(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}

func toStrings[T ~string](ids []T) []string {
	if len(ids) == 0 {
		return nil
	}
	return lo.Map(ids, func(id T, _ int) string { return string(id) })
}

func fromStrings[T ~string](ids []string) []T {
	if len(ids) == 0 {
		return nil
	}
	return lo.Map(ids, func(id string, _ int) T { return T(id) })
}

func toUserRecord(user User) *pb.User {
	return &pb.User{
		Id:           string(user.ID),
		Name:         user.Name,
		Email:        user.Email,
		PhoneNumber:  user.PhoneNumber,
		Avatar:       user.Avatar,
		IsOnline:     user.IsOnline,
		LastSeen:     toUnixNano(user.LastSeen),
		CreatedAt:    toUnixNano(user.CreatedAt),
		PasswordHash: user.PasswordHash,
		Roles:        user.Roles,
	}
}

func fromUserRecord(record *pb.User) User {
	return User{
		User: domain.User{
			ID:          domain.UserID(record.GetId()),
			Name:        record.GetName(),
			Email:       record.GetEmail(),
			PhoneNumber: record.GetPhoneNumber(),
			Avatar:      record.GetAvatar(),
			IsOnline:    record.GetIsOnline(),
			LastSeen:    fromUnixNano(record.GetLastSeen()),
			CreatedAt:   fromUnixNano(record.GetCreatedAt()),
		},
		PasswordHash: record.GetPasswordHash(),
		Roles:        record.GetRoles(),
	}
}

func toChatRecord(chat domain.Chat) *pb.Chat {
	record := &pb.Chat{
		Id:           string(chat.ID),
		IsGroupChat:  chat.IsGroupChat,
		GroupName:    chat.GroupName,
		GroupImage:   chat.GroupImage,
		GroupAdmin:   string(chat.GroupAdmin),
		Participants: toStrings(chat.Participants),
		JoinRequests: toStrings(chat.JoinRequests),
		CreatedAt:    toUnixNano(chat.CreatedAt),
		UpdatedAt:    toUnixNano(chat.UpdatedAt),
	}
	if chat.LastMessage != nil {
		record.LastMessageId = string(*chat.LastMessage)
	}
	return record
}

func fromChatRecord(record *pb.Chat) domain.Chat {
	chat := domain.Chat{
		ID:           domain.ChatID(record.GetId()),
		IsGroupChat:  record.GetIsGroupChat(),
		GroupName:    record.GetGroupName(),
		GroupImage:   record.GetGroupImage(),
		GroupAdmin:   domain.UserID(record.GetGroupAdmin()),
		Participants: fromStrings[domain.UserID](record.GetParticipants()),
		JoinRequests: fromStrings[domain.UserID](record.GetJoinRequests()),
		CreatedAt:    fromUnixNano(record.GetCreatedAt()),
		UpdatedAt:    fromUnixNano(record.GetUpdatedAt()),
	}
	if id := record.GetLastMessageId(); id != "" {
		chat.LastMessage = lo.ToPtr(domain.MessageID(id))
	}
	return chat
}

func toMessageRecord(message domain.Message) *pb.Message {
	return &pb.Message{
		Id:          string(message.ID),
		ChatId:      string(message.ChatID),
		SenderId:    string(message.SenderID),
		MessageType: string(message.Type),
		Text:        message.Text,
		MediaUrl:    message.MediaURL,
		FileName:    message.FileName,
		FileSize:    message.FileSize,
		LinkPreview: message.LinkPreview,
		ReadBy:      toStrings(message.ReadBy),
		CreatedAt:   toUnixNano(message.CreatedAt),
	}
}

func fromMessageRecord(record *pb.Message) domain.Message {
	return domain.Message{
		ID:          domain.MessageID(record.GetId()),
		ChatID:      domain.ChatID(record.GetChatId()),
		SenderID:    domain.UserID(record.GetSenderId()),
		Type:        domain.MessageType(record.GetMessageType()),
		Text:        record.GetText(),
		MediaURL:    record.GetMediaUrl(),
		FileName:    record.GetFileName(),
		FileSize:    record.GetFileSize(),
		LinkPreview: record.GetLinkPreview(),
		ReadBy:      fromStrings[domain.UserID](record.GetReadBy()),
		CreatedAt:   fromUnixNano(record.GetCreatedAt()),
	}
}

func getUser(txn *badger.Txn, id string) (User, error) {
	var record pb.User
	if err := getProto(txn, userPrefix+id, &record); err != nil {
		return User{}, err
	}
	return fromUserRecord(&record), nil
}

func putUser(txn *badger.Txn, user User) error {
	return setProto(txn, userPrefix+string(user.ID), toUserRecord(user))
}

func getChat(txn *badger.Txn, id string) (domain.Chat, error) {
	var record pb.Chat
	if err := getProto(txn, chatPrefix+id, &record); err != nil {
		return domain.Chat{}, err
	}
	return fromChatRecord(&record), nil
}

func putChat(txn *badger.Txn, chat domain.Chat) error {
	return setProto(txn, chatPrefix+string(chat.ID), toChatRecord(chat))
}

func getMessageAt(txn *badger.Txn, key string) (domain.Message, error) {
	var record pb.Message
	if err := getProto(txn, key, &record); err != nil {
		return domain.Message{}, err
	}
	return fromMessageRecord(&record), nil
}

func putMessageAt(txn *badger.Txn, key string, message domain.Message) error {
	return setProto(txn, key, toMessageRecord(message))
}

func decodeMessage(val []byte) (domain.Message, error) {
	var record pb.Message
	if err := proto.Unmarshal(val, &record); err != nil {
		return domain.Message{}, err
	}
	return fromMessageRecord(&record), nil
}

func decodeChat(val []byte) (domain.Chat, error) {
	var record pb.Chat
	if err := proto.Unmarshal(val, &record); err != nil {
		return domain.Chat{}, err
	}
	return fromChatRecord(&record), nil
}

func decodeUser(val []byte) (User, error) {
	var record pb.User
	if err := proto.Unmarshal(val, &record); err != nil {
		return User{}, err
	}
	return fromUserRecord(&record), nil
}
