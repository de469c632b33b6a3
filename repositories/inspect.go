package repositories

import (
	"chat-hub/domain"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"
)

// InspectRow is one raw entry of the store, summarized for debugging.
type InspectRow struct {
	Key       string `json:"key"`
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
	EntityID  string `json:"entityId"`
	Detail    string `json:"detail"`
}

// Inspect scans the entries under prefix, indexes included, up to limit rows (0 for all).
func Inspect(db *badger.DB, prefix string, limit int) ([]InspectRow, error) {
	var rows []InspectRow
	err := db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
			if limit > 0 && len(rows) >= limit {
				return nil
			}
			item := it.Item()
			key := string(item.Key())
			if err := item.Value(func(val []byte) error {
				rows = append(rows, inspectRow(key, val))
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, storageError(err, nil)
	}
	return rows, nil
}

func inspectRow(key string, val []byte) InspectRow {
	row := InspectRow{
		Key:       key,
		Type:      "RAW",
		Timestamp: "--:--:--",
		EntityID:  "--------",
		Detail:    "Size: " + strconv.Itoa(len(val)) + " bytes",
	}

	switch {
	case strings.HasPrefix(key, "idx:"):
		row.Type = "INDEX"
		row.Detail = "-> " + string(val)
	case strings.HasPrefix(key, userPrefix):
		user, err := decodeUser(val)
		if err != nil {
			return row
		}
		row.Type = "USER"
		row.EntityID = shortID(string(user.ID))
		row.Timestamp = clock(user.LastSeen)
		row.Detail = fmt.Sprintf("%s <%s> online=%t", user.Name, user.Email, user.IsOnline)
	case strings.HasPrefix(key, chatPrefix):
		chat, err := decodeChat(val)
		if err != nil {
			return row
		}
		row.EntityID = shortID(string(chat.ID))
		row.Timestamp = clock(chat.UpdatedAt)
		if chat.IsGroupChat {
			row.Type = "GROUP"
			row.Detail = fmt.Sprintf("%s: %d participants, %d requests", chat.GroupName, len(chat.Participants), len(chat.JoinRequests))
		} else {
			row.Type = "DIRECT"
			row.Detail = strings.Join(lo.Map(chat.Participants, func(id domain.UserID, _ int) string { return shortID(string(id)) }), " <-> ")
		}
	case strings.HasPrefix(key, messagePrefix):
		message, err := decodeMessage(val)
		if err != nil {
			return row
		}
		row.Type = strings.ToUpper(string(message.Type))
		row.EntityID = shortID(string(message.ID))
		row.Timestamp = clock(message.CreatedAt)
		row.Detail = fmt.Sprintf("from %s, read by %d: %s", shortID(string(message.SenderID)), len(message.ReadBy), truncate(message.Text, 40))
	}
	return row
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func clock(t time.Time) string {
	if t.IsZero() {
		return "--:--:--"
	}
	return t.Format("15:04:05")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
