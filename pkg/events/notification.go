package events

import (
	"context"

	"github.com/AvigateGroup/avigate-app-sub000/pkg/database"
	"github.com/AvigateGroup/avigate-app-sub000/pkg/transit"
	"github.com/AvigateGroup/avigate-app-sub000/pkg/util"
	"github.com/expr-lang/expr"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
)

// GetNotificationData turns a raised event into the title and message that
// go out to the target user
func GetNotificationData(e *transit.Event) transit.EventNotificationData {
	eventNotificationData := transit.EventNotificationData{}

	eventBody, ok := e.Body.(map[string]interface{})
	if !ok {
		return eventNotificationData
	}

	switch e.Type {
	case transit.EventTypeTripAlert:
		alert, _ := eventBody["Alert"].(map[string]interface{})
		if alert == nil {
			return eventNotificationData
		}

		alertType, _ := alert["Type"].(string)
		message, _ := alert["Message"].(string)

		switch transit.ProximityAlertType(alertType) {
		case transit.ProximityAlertTypeApproaching:
			eventNotificationData.Title = "Almost there"
		case transit.ProximityAlertTypeArrived:
			eventNotificationData.Title = "Stop reached"
		case transit.ProximityAlertTypeOffRoute:
			eventNotificationData.Title = "Off route"
		default:
			eventNotificationData.Title = "Trip update"
		}

		// Push payloads get truncated by the platforms anyway
		eventNotificationData.Message = util.TrimString(message, 178)
	case transit.EventTypeTripCompleted:
		eventNotificationData.Title = "Trip completed"
		eventNotificationData.Message = "You have arrived at your destination. Thanks for riding with Avigate."
	case transit.EventTypeTripCancelled:
		eventNotificationData.Title = "Trip cancelled"
		eventNotificationData.Message = "Your trip has been cancelled."
	}

	return eventNotificationData
}

// UserWantsEvent checks the user's event subscriptions. No subscription for
// the event type means deliver everything, otherwise at least one
// subscription expression has to evaluate true against the event body.
func UserWantsEvent(userID string, e *transit.Event) bool {
	subscriptionCollection := database.GetCollection("user_event_subscription")

	cursor, err := subscriptionCollection.Find(context.Background(), bson.M{
		"userid":    userID,
		"eventtype": e.Type,
	})
	if err != nil {
		log.Error().Err(err).Str("user", userID).Msg("Failed to load event subscriptions")
		return true
	}

	var subscriptions []transit.UserEventSubscription
	if err := cursor.All(context.Background(), &subscriptions); err != nil {
		log.Error().Err(err).Str("user", userID).Msg("Failed to decode event subscriptions")
		return true
	}

	if len(subscriptions) == 0 {
		return true
	}

	eventBody, _ := e.Body.(map[string]interface{})

	for _, subscription := range subscriptions {
		if subscription.Expression == "" {
			return true
		}

		output, err := expr.Eval(subscription.Expression, eventBody)
		if err != nil {
			log.Error().Err(err).Str("expression", subscription.Expression).Msg("Failed to evaluate subscription expression")
			continue
		}

		if matched, ok := output.(bool); ok && matched {
			return true
		}
	}

	return false
}
