package common

import "fmt"

func RedisKeyHookEvent(eventID string) string {
	return fmt.Sprintf("questhook:%s", eventID)
}
