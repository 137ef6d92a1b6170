package geofence

import (
	"testing"
	"time"

	"github.com/AvigateGroup/avigate-app-sub000/pkg/transit"
	"github.com/stretchr/testify/assert"
)

// Rough positions around Port Harcourt used across the tests
var (
	choba     = transit.NewGeography(4.8970, 6.9091)
	rumuokoro = transit.NewGeography(4.8635, 6.9866)
	mile1     = transit.NewGeography(4.7870, 7.0050)
)

// offsetNorth shifts a point north by approximately the given number of
// meters, good enough at these latitudes for test geometry
func offsetNorth(point transit.Geography, meters float64) transit.Geography {
	return transit.NewGeography(point.Latitude()+meters/111320.0, point.Longitude())
}

func TestDistance(t *testing.T) {
	evaluator := NewEvaluator(DefaultThresholds())

	assert.Zero(t, evaluator.Distance(choba, choba))

	// Symmetric
	assert.Equal(t, evaluator.Distance(choba, rumuokoro), evaluator.Distance(rumuokoro, choba))

	// A point shifted ~1000m north measures ~1000m away
	assert.InDelta(t, 1000, evaluator.Distance(choba, offsetNorth(choba, 1000)), 5)
}

func TestArrivalAndApproaching(t *testing.T) {
	evaluator := NewEvaluator(DefaultThresholds())

	near := offsetNorth(rumuokoro, 50)
	closing := offsetNorth(rumuokoro, 300)
	far := offsetNorth(rumuokoro, 800)

	assert.True(t, evaluator.HasArrived(near, rumuokoro))
	assert.False(t, evaluator.IsApproaching(near, rumuokoro))

	assert.False(t, evaluator.HasArrived(closing, rumuokoro))
	assert.True(t, evaluator.IsApproaching(closing, rumuokoro))

	assert.False(t, evaluator.HasArrived(far, rumuokoro))
	assert.False(t, evaluator.IsApproaching(far, rumuokoro))
}

func TestThresholdBoundaryCountsAsArrived(t *testing.T) {
	point := offsetNorth(rumuokoro, 120)

	// Pin the arrival threshold to the exact measured distance so the
	// boundary itself is what gets tested
	thresholds := DefaultThresholds()
	thresholds.ArrivalDistanceMeters = NewEvaluator(thresholds).Distance(point, rumuokoro)

	evaluator := NewEvaluator(thresholds)

	assert.True(t, evaluator.HasArrived(point, rumuokoro))
	assert.False(t, evaluator.IsApproaching(point, rumuokoro))
}

func TestApproachingExactBoundary(t *testing.T) {
	point := offsetNorth(rumuokoro, 450)

	thresholds := DefaultThresholds()
	thresholds.ApproachingDistanceMeters = NewEvaluator(thresholds).Distance(point, rumuokoro)

	evaluator := NewEvaluator(thresholds)

	assert.True(t, evaluator.IsApproaching(point, rumuokoro))
	assert.False(t, evaluator.HasArrived(point, rumuokoro))

	// A step beyond the pinned threshold is no longer approaching
	assert.False(t, evaluator.IsApproaching(offsetNorth(rumuokoro, 470), rumuokoro))
}

func TestJustPastArrivalBecomesApproaching(t *testing.T) {
	boundary := offsetNorth(rumuokoro, 120)

	thresholds := DefaultThresholds()
	thresholds.ArrivalDistanceMeters = NewEvaluator(thresholds).Distance(boundary, rumuokoro)

	evaluator := NewEvaluator(thresholds)

	past := offsetNorth(rumuokoro, 140)

	assert.False(t, evaluator.HasArrived(past, rumuokoro))
	assert.True(t, evaluator.IsApproaching(past, rumuokoro))
}

func TestOffRouteExactBoundary(t *testing.T) {
	path := []transit.Geography{choba, rumuokoro}
	point := offsetNorth(choba, 250)

	thresholds := DefaultThresholds()
	_, _, measured := NewEvaluator(thresholds).NearestPointOnPath(point, path)
	thresholds.OffRouteDistanceMeters = measured

	evaluator := NewEvaluator(thresholds)

	// Exactly at the threshold is still on route, only past it strays
	assert.False(t, evaluator.IsOffRoute(point, path))
	assert.True(t, evaluator.IsOffRoute(offsetNorth(choba, 280), path))
}

func TestNearestPointOnPath(t *testing.T) {
	evaluator := NewEvaluator(DefaultThresholds())

	path := []transit.Geography{choba, rumuokoro, mile1}
	current := offsetNorth(rumuokoro, 40)

	nearest, index, distance := evaluator.NearestPointOnPath(current, path)

	assert.Equal(t, rumuokoro, nearest)
	assert.Equal(t, 1, index)
	assert.InDelta(t, 40, distance, 5)
}

func TestNearestPointOnPathTieBreaksEarliest(t *testing.T) {
	evaluator := NewEvaluator(DefaultThresholds())

	duplicated := []transit.Geography{rumuokoro, rumuokoro, choba}

	_, index, _ := evaluator.NearestPointOnPath(offsetNorth(rumuokoro, 10), duplicated)

	assert.Equal(t, 0, index)
}

func TestNearestPointOnEmptyPath(t *testing.T) {
	evaluator := NewEvaluator(DefaultThresholds())

	_, index, distance := evaluator.NearestPointOnPath(choba, nil)

	assert.Equal(t, -1, index)
	assert.Zero(t, distance)
}

func TestIsOffRoute(t *testing.T) {
	evaluator := NewEvaluator(DefaultThresholds())

	path := []transit.Geography{choba, rumuokoro}

	assert.False(t, evaluator.IsOffRoute(offsetNorth(choba, 50), path))
	assert.True(t, evaluator.IsOffRoute(offsetNorth(choba, 3000), path))

	// Nothing to stray from
	assert.False(t, evaluator.IsOffRoute(offsetNorth(choba, 3000), nil))
}

func TestEstimateETA(t *testing.T) {
	evaluator := NewEvaluator(DefaultThresholds())

	now := time.Now()
	target := offsetNorth(choba, 5000)

	expectedTravel := time.Duration(evaluator.Distance(choba, target) / 1000 / defaultAverageSpeedKmh * float64(time.Hour))

	eta := evaluator.EstimateETA(choba, target, now)
	assert.WithinDuration(t, now.Add(expectedTravel), eta, time.Second)

	// Already there
	assert.WithinDuration(t, now, evaluator.EstimateETA(choba, choba, now), time.Second)
}

func TestEstimateETASpeedFallback(t *testing.T) {
	zeroSpeed := NewEvaluator(Thresholds{AverageSpeedKmh: 0})
	stock := NewEvaluator(DefaultThresholds())

	now := time.Now()
	target := offsetNorth(choba, 5000)

	assert.Equal(t, stock.EstimateETA(choba, target, now), zeroSpeed.EstimateETA(choba, target, now))
}

func TestDefaultThresholdsEnvironmentOverride(t *testing.T) {
	t.Setenv("AVIGATE_GEOFENCE_ARRIVAL_METERS", "80")
	t.Setenv("AVIGATE_GEOFENCE_AVERAGE_SPEED_KMH", "not-a-number")

	thresholds := DefaultThresholds()

	assert.Equal(t, 80.0, thresholds.ArrivalDistanceMeters)
	assert.Equal(t, defaultAverageSpeedKmh, thresholds.AverageSpeedKmh)
}
