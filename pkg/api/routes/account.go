package routes

import (
	"context"
	"time"

	"github.com/AvigateGroup/avigate-app-sub000/pkg/database"
	"github.com/AvigateGroup/avigate-app-sub000/pkg/transit"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func AccountRouter(router fiber.Router) {
	router.Post("/notificationtoken", registerNotificationToken)
	router.Get("/subscriptions", listEventSubscriptions)
	router.Post("/subscriptions", createEventSubscription)
}

type registerNotificationTokenRequest struct {
	Token string `json:"token"`
}

func registerNotificationToken(c *fiber.Ctx) error {
	userID := c.Locals("account_userid").(string)

	var request registerNotificationTokenRequest
	if err := c.BodyParser(&request); err != nil || request.Token == "" {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "Request body must contain a push notification token",
		})
	}

	target := transit.UserPushNotificationTarget{
		UserID:                userID,
		PushNotificationToken: request.Token,
		ModificationDateTime:  time.Now(),
	}

	targetsCollection := database.GetCollection("user_push_notification_target")
	opts := options.Update().SetUpsert(true)
	_, err := targetsCollection.UpdateOne(context.Background(),
		bson.M{"userid": userID}, bson.M{"$set": target}, opts)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Failed to register push notification token",
		})
	}

	return c.JSON(fiber.Map{
		"status": "registered",
	})
}

func listEventSubscriptions(c *fiber.Ctx) error {
	userID := c.Locals("account_userid").(string)

	subscriptionsCollection := database.GetCollection("user_event_subscription")
	cursor, _ := subscriptionsCollection.Find(context.Background(), bson.M{"userid": userID})

	subscriptions := []transit.UserEventSubscription{}
	cursor.All(context.Background(), &subscriptions)

	return c.JSON(subscriptions)
}

type createEventSubscriptionRequest struct {
	EventType  transit.EventType `json:"eventtype"`
	Expression string            `json:"expression"`
}

func createEventSubscription(c *fiber.Ctx) error {
	userID := c.Locals("account_userid").(string)

	var request createEventSubscriptionRequest
	if err := c.BodyParser(&request); err != nil || request.EventType == "" {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "Request body must contain an event type",
		})
	}

	subscription := transit.UserEventSubscription{
		UserID:     userID,
		EventType:  request.EventType,
		Expression: request.Expression,

		CreationDateTime: time.Now(),
	}

	subscriptionsCollection := database.GetCollection("user_event_subscription")
	if _, err := subscriptionsCollection.InsertOne(context.Background(), subscription); err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Failed to create event subscription",
		})
	}

	c.SendStatus(fiber.StatusCreated)
	return c.JSON(subscription)
}
