package tracker

import (
	"encoding/json"

	"github.com/AvigateGroup/avigate-app-sub000/pkg/redis_client"
	"github.com/AvigateGroup/avigate-app-sub000/pkg/transit"
	"github.com/adjust/rmq/v5"
	"github.com/rs/zerolog/log"
)

// AlertPublisher hands alert events off for delivery. Fire and forget -
// delivery failure must never fail the state transition that raised it.
type AlertPublisher interface {
	PublishEvent(event transit.Event)
}

// QueueAlertPublisher publishes events onto the redis events queue where the
// events consumer turns them into notifications
type QueueAlertPublisher struct {
	EventQueue rmq.Queue
}

func NewQueueAlertPublisher() (*QueueAlertPublisher, error) {
	eventQueue, err := redis_client.QueueConnection.OpenQueue("events-queue")
	if err != nil {
		return nil, err
	}

	return &QueueAlertPublisher{EventQueue: eventQueue}, nil
}

func (p *QueueAlertPublisher) PublishEvent(event transit.Event) {
	eventBytes, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal trip event")
		return
	}

	if err := p.EventQueue.PublishBytes(eventBytes); err != nil {
		log.Error().Err(err).Msg("Failed to publish trip event")
	}
}

// NopAlertPublisher drops every event, used where no queue connection exists
type NopAlertPublisher struct{}

func (NopAlertPublisher) PublishEvent(event transit.Event) {}
