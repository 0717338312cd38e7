package licensing

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Publisher pushes serialized events onto a channel. *redis.PubSub
// satisfies this interface; a nil Publisher disables the event stream.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// ActivationEvent is the real-time record of a seat change, streamed to
// brand subscribers over the event channel.
type ActivationEvent struct {
	Type         string    `json:"type"` // "activated" or "deactivated"
	BrandID      uuid.UUID `json:"brand_id"`
	LicenseID    uuid.UUID `json:"license_id"`
	ProductSlug  string    `json:"product_slug"`
	InstanceID   string    `json:"instance_id"`
	InstanceName string    `json:"instance_name,omitempty"`
	ActiveSeats  int       `json:"active_seats"`
	Timestamp    time.Time `json:"timestamp"`
}

// publishEvent sends the event best-effort: a slow or unavailable stream
// never fails the activation that triggered it.
func publishEvent(ctx context.Context, pub Publisher, channel string, ev ActivationEvent) {
	if pub == nil {
		return
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		log.Warn().Err(err).Str("channel", channel).Msg("licensing: marshal activation event")
		return
	}

	if err := pub.Publish(ctx, channel, payload); err != nil {
		log.Warn().Err(err).Str("channel", channel).Msg("licensing: publish activation event")
	}
}
