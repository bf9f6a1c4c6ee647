package messaging

import "fmt"

// Room-scoped transport subjects. Every participant in a room publishes and
// subscribes on the same pair.
func PresenceSubject(roomId string) string {
	return fmt.Sprintf("room.%s.presence", roomId)
}

func ChatSubject(roomId string) string {
	return fmt.Sprintf("room.%s.chat", roomId)
}
