package events

import (
	"encoding/json"

	"github.com/AvigateGroup/avigate-app-sub000/pkg/redis_client"
	"github.com/AvigateGroup/avigate-app-sub000/pkg/transit"
	"github.com/adjust/rmq/v5"
	"github.com/rs/zerolog/log"
)

// EventsBatchConsumer reads raised events off the events queue, filters them
// against user subscriptions and hands notifications to the notify queue
type EventsBatchConsumer struct {
	NotifyQueue rmq.Queue
}

func NewEventsBatchConsumer() *EventsBatchConsumer {
	notifyQueue, err := redis_client.QueueConnection.OpenQueue("notify-queue")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open notify queue")
	}

	return &EventsBatchConsumer{NotifyQueue: notifyQueue}
}

func (c *EventsBatchConsumer) Consume(batch rmq.Deliveries) {
	payloads := batch.Payloads()

	for _, payload := range payloads {
		var event *transit.Event
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			log.Error().Err(err).Msg("Failed to decode event")
			continue
		}

		c.handleEvent(event)
	}

	if ackErrors := batch.Ack(); len(ackErrors) > 0 {
		for _, err := range ackErrors {
			log.Fatal().Err(err).Msg("Failed to consume event")
		}
	}
}

func (c *EventsBatchConsumer) handleEvent(event *transit.Event) {
	eventBody, ok := event.Body.(map[string]interface{})
	if !ok {
		log.Error().Str("type", string(event.Type)).Msg("Event has no usable body")
		return
	}

	targetUser, _ := eventBody["UserID"].(string)
	if targetUser == "" {
		return
	}

	if !UserWantsEvent(targetUser, event) {
		log.Debug().Str("user", targetUser).Str("type", string(event.Type)).Msg("User not subscribed to event")
		return
	}

	notificationData := GetNotificationData(event)
	if notificationData.Title == "" && notificationData.Message == "" {
		return
	}

	notification := transit.Notification{
		TargetUser: targetUser,
		Type:       transit.NotificationTypePush,

		Title:   notificationData.Title,
		Message: notificationData.Message,
	}

	notificationBytes, err := json.Marshal(notification)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal notification")
		return
	}

	if err := c.NotifyQueue.PublishBytes(notificationBytes); err != nil {
		log.Error().Err(err).Msg("Failed to publish notification")
	}
}
