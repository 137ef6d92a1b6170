package notify

import (
	"encoding/json"

	"github.com/AvigateGroup/avigate-app-sub000/pkg/transit"
	"github.com/adjust/rmq/v5"
	"github.com/kr/pretty"
	"github.com/rs/zerolog/log"
)

type NotifyBatchConsumer struct {
	PushManager *PushManager
}

func NewNotifyBatchConsumer(pushManager *PushManager) *NotifyBatchConsumer {
	return &NotifyBatchConsumer{PushManager: pushManager}
}

func (c *NotifyBatchConsumer) Consume(batch rmq.Deliveries) {
	payloads := batch.Payloads()

	for _, payload := range payloads {
		var notification transit.Notification
		if err := json.Unmarshal([]byte(payload), &notification); err != nil {
			log.Error().Err(err).Msg("Failed to decode notification")
			continue
		}

		switch notification.Type {
		case transit.NotificationTypePush:
			// Delivery failures are logged and swallowed - the triggering
			// state transition has already committed and a retry of the same
			// location update must not re-fire the alert
			if err := c.PushManager.SendPush(notification); err != nil {
				log.Error().Err(err).Str("target", notification.TargetUser).Msg("Failed to send push notification")
			}
		default:
			pretty.Println(string(payload))
		}
	}

	if ackErrors := batch.Ack(); len(ackErrors) > 0 {
		for _, err := range ackErrors {
			log.Fatal().Err(err).Msg("Failed to consume from queue")
		}
	}
}
