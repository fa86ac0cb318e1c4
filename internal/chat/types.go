package chat

// UserStatus is a user's presence as shown in rosters.
type UserStatus string

const (
	StatusOnline       UserStatus = "Online"
	StatusIdle         UserStatus = "Idle"
	StatusDoNotDisturb UserStatus = "DoNotDisturb"
	StatusOffline      UserStatus = "Offline"
)

// User is a chat participant.
type User struct {
	ID          string     `json:"id"`
	DisplayName string     `json:"display_name"`
	AvatarURL   *string    `json:"avatar_url"`
	Status      UserStatus `json:"status"`
}

// RoomType distinguishes one-on-one conversations from group and
// public rooms.
type RoomType string

const (
	RoomDirect RoomType = "Direct"
	RoomGroup  RoomType = "Group"
	RoomPublic RoomType = "Public"
)

// Room is a conversation container.
type Room struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Topic     *string  `json:"topic"`
	RoomType  RoomType `json:"room_type"`
	AvatarURL *string  `json:"avatar_url"`
}

// MessageType tags the payload kind carried by a message.
type MessageType string

const (
	MessageText  MessageType = "Text"
	MessageImage MessageType = "Image"
	MessageFile  MessageType = "File"
)

// Message is a single timeline entry. Timestamp is milliseconds since
// the Unix epoch as reported by the homeserver.
type Message struct {
	ID        string      `json:"id"`
	Sender    string      `json:"sender"`
	Content   string      `json:"content"`
	Schema    MessageType `json:"schema"`
	Timestamp uint64      `json:"timestamp"`
}
