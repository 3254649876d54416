package pubsub

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType 房间事件类型
type EventType string

const (
	EventPlayerJoined   EventType = "player_joined"
	EventPlayerLeft     EventType = "player_left"
	EventPlayerKicked   EventType = "player_kicked"
	EventPlayerReady    EventType = "player_ready"
	EventGameStarted    EventType = "game_started"
	EventIntroSkipped   EventType = "intro_skipped"
	EventVotingStarted  EventType = "voting_started"
	EventVoteCast       EventType = "vote_cast"
	EventVotingEnded    EventType = "voting_ended"
	EventRoundAdvanced  EventType = "round_advanced"
	EventGameFinished   EventType = "game_finished"
	EventCardUsed       EventType = "card_used"
	EventCharRevealed   EventType = "characteristic_revealed"
	EventChatMessage    EventType = "chat_message"
	EventRoomClosed     EventType = "room_closed"
	EventSeatsReclaimed EventType = "seats_reclaimed"
)

// Event 推送给房间内客户端的事件
type Event struct {
	ID        string      `json:"event_id"`
	Type      EventType   `json:"type"`
	RoomID    uint        `json:"room_id"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// NewEvent 创建事件
func NewEvent(t EventType, roomID uint, data interface{}) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      t,
		RoomID:    roomID,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	}
}

// Encode 序列化事件
func (e *Event) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher 事件发布者
type Publisher interface {
	Publish(ctx context.Context, evt *Event) error
	Close() error
}

// RoomBroadcaster 向房间内本地连接广播，返回送达的连接数
type RoomBroadcaster interface {
	BroadcastToRoom(roomID uint, payload []byte) int
}
