package routes

import (
	"github.com/AvigateGroup/avigate-app-sub000/pkg/composer"
	"github.com/AvigateGroup/avigate-app-sub000/pkg/geofence"
	"github.com/AvigateGroup/avigate-app-sub000/pkg/tracker"
)

var routeComposer *composer.Composer
var tripStateMachine *tracker.StateMachine

// Setup wires the composition and tracking engines the route handlers call
// into. Requires database and redis connections to exist already.
func Setup() error {
	routeComposer = composer.NewCachedComposer()

	alertPublisher, err := tracker.NewQueueAlertPublisher()
	if err != nil {
		return err
	}

	tripStateMachine = tracker.NewStateMachine(
		tracker.MongoTripRepository{},
		geofence.NewEvaluator(geofence.DefaultThresholds()),
		alertPublisher,
	)

	return nil
}
