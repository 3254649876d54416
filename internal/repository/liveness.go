package repository

import (
	"fmt"
	"time"

	"github.com/wfunc/bunker-game/internal/models"
	"gorm.io/gorm"
)

// Liveness 在线判定的时间下限。
// 最后心跳不早于 SeenSince，或从未心跳且加入时间不早于 JoinedSince，即为在线。
type Liveness struct {
	SeenSince   time.Time
	JoinedSince time.Time
}

// activeSQL 在线条件，prefix 为列名前缀
func (l Liveness) activeSQL(prefix string) string {
	return fmt.Sprintf("(%[1]slast_seen_at >= ? OR (%[1]slast_seen_at IS NULL AND %[1]sjoined_at >= ?))", prefix)
}

// inactiveSQL 离线条件，与 activeSQL 互补
func (l Liveness) inactiveSQL(prefix string) string {
	return fmt.Sprintf("(%[1]slast_seen_at < ? OR (%[1]slast_seen_at IS NULL AND %[1]sjoined_at < ?))", prefix)
}

func (l Liveness) args() []interface{} {
	return []interface{}{l.SeenSince, l.JoinedSince}
}

// RoomGuard 删除房间时附加在 DELETE 语句上的条件，不成立则放弃删除
type RoomGuard struct {
	SQL  string
	Args []interface{}
}

// NoActivePlayers 房间内没有在线玩家
func NoActivePlayers(live Liveness) RoomGuard {
	return RoomGuard{
		SQL:  "NOT EXISTS (SELECT 1 FROM players WHERE players.room_id = rooms.id AND " + live.activeSQL("players.") + ")",
		Args: live.args(),
	}
}

// HostInactive 房主不在线或已不在房间
func HostInactive(live Liveness) RoomGuard {
	return RoomGuard{
		SQL: "NOT EXISTS (SELECT 1 FROM players WHERE players.room_id = rooms.id" +
			" AND (players.is_host = ? OR players.user_id = rooms.host_id) AND " + live.activeSQL("players.") + ")",
		Args: append([]interface{}{true}, live.args()...),
	}
}

// InPhase 房间处于指定阶段之一
func InPhase(phases ...models.Phase) RoomGuard {
	return RoomGuard{SQL: "rooms.phase IN ?", Args: []interface{}{phases}}
}

// NotInPhase 房间不处于指定阶段
func NotInPhase(phases ...models.Phase) RoomGuard {
	return RoomGuard{SQL: "rooms.phase NOT IN ?", Args: []interface{}{phases}}
}

func applyGuards(db *gorm.DB, guards []RoomGuard) *gorm.DB {
	for _, g := range guards {
		db = db.Where(g.SQL, g.Args...)
	}
	return db
}
