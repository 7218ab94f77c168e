package realtime

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Envelope 广播给订阅者的事件封装
type Envelope struct {
	ID          string    `json:"id"`
	ItineraryID uint      `json:"itinerary_id"`
	Event       string    `json:"event"`
	Payload     any       `json:"payload"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// NewEnvelope 为事件分配 ID 与时间
func NewEnvelope(itineraryID uint, event string, payload any) Envelope {
	return Envelope{
		ID:          uuid.NewString(),
		ItineraryID: itineraryID,
		Event:       event,
		Payload:     payload,
		OccurredAt:  time.Now().UTC(),
	}
}

// ToJSON 序列化
func (e Envelope) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// RoomName 行程频道名
func RoomName(itineraryID uint) string {
	return fmt.Sprintf("itinerary-%d", itineraryID)
}

// RoutingKey AMQP 路由键：itinerary.<id>.<event>
func RoutingKey(itineraryID uint, event string) string {
	return fmt.Sprintf("itinerary.%d.%s", itineraryID, event)
}
