package geofence

import (
	"math"
	"strconv"
	"time"

	"github.com/AvigateGroup/avigate-app-sub000/pkg/transit"
	"github.com/AvigateGroup/avigate-app-sub000/pkg/util"
)

const earthRadiusMeters = 6371000

// Thresholds configures the geofence trigger distances and the speed used
// for ETA estimation
type Thresholds struct {
	ApproachingDistanceMeters float64
	ArrivalDistanceMeters     float64
	OffRouteDistanceMeters    float64

	AverageSpeedKmh float64
}

const defaultApproachingDistanceMeters = 500.0
const defaultArrivalDistanceMeters = 100.0
const defaultOffRouteDistanceMeters = 200.0
const defaultAverageSpeedKmh = 30.0

// DefaultThresholds returns the stock thresholds with any
// AVIGATE_GEOFENCE_* environment overrides applied
func DefaultThresholds() Thresholds {
	thresholds := Thresholds{
		ApproachingDistanceMeters: defaultApproachingDistanceMeters,
		ArrivalDistanceMeters:     defaultArrivalDistanceMeters,
		OffRouteDistanceMeters:    defaultOffRouteDistanceMeters,
		AverageSpeedKmh:           defaultAverageSpeedKmh,
	}

	env := util.GetEnvironmentVariables()

	overrides := map[string]*float64{
		"AVIGATE_GEOFENCE_APPROACHING_METERS": &thresholds.ApproachingDistanceMeters,
		"AVIGATE_GEOFENCE_ARRIVAL_METERS":     &thresholds.ArrivalDistanceMeters,
		"AVIGATE_GEOFENCE_OFFROUTE_METERS":    &thresholds.OffRouteDistanceMeters,
		"AVIGATE_GEOFENCE_AVERAGE_SPEED_KMH":  &thresholds.AverageSpeedKmh,
	}
	for key, target := range overrides {
		if env[key] == "" {
			continue
		}
		if value, err := strconv.ParseFloat(env[key], 64); err == nil && value > 0 {
			*target = value
		}
	}

	return thresholds
}

// Evaluator provides the geospatial decisions for trip tracking. Pure math,
// never errors for well formed coordinates.
type Evaluator struct {
	Thresholds Thresholds
}

func NewEvaluator(thresholds Thresholds) *Evaluator {
	return &Evaluator{Thresholds: thresholds}
}

// Distance returns the great-circle distance between two points in meters
func (e *Evaluator) Distance(a transit.Geography, b transit.Geography) float64 {
	deltaLatitude := degreesToRadians(b.Latitude() - a.Latitude())
	deltaLongitude := degreesToRadians(b.Longitude() - a.Longitude())

	sinLatitude := math.Sin(deltaLatitude / 2)
	sinLongitude := math.Sin(deltaLongitude / 2)

	h := sinLatitude*sinLatitude +
		math.Cos(degreesToRadians(a.Latitude()))*math.Cos(degreesToRadians(b.Latitude()))*sinLongitude*sinLongitude

	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}

// HasArrived is true when current is within the arrival threshold of target
func (e *Evaluator) HasArrived(current transit.Geography, target transit.Geography) bool {
	return e.Distance(current, target) <= e.Thresholds.ArrivalDistanceMeters
}

// IsApproaching is true when current is past the approaching threshold but
// not yet within the arrival threshold of target. A point at the arrival
// threshold counts as arrived, not approaching.
func (e *Evaluator) IsApproaching(current transit.Geography, target transit.Geography) bool {
	distance := e.Distance(current, target)

	return distance > e.Thresholds.ArrivalDistanceMeters &&
		distance <= e.Thresholds.ApproachingDistanceMeters
}

// IsOffRoute is true when the minimum distance from current to any point on
// the path exceeds the off-route threshold. An empty path can never be
// strayed from.
func (e *Evaluator) IsOffRoute(current transit.Geography, path []transit.Geography) bool {
	if len(path) == 0 {
		return false
	}

	_, _, distance := e.NearestPointOnPath(current, path)

	return distance > e.Thresholds.OffRouteDistanceMeters
}

// NearestPointOnPath returns the path point closest to current, its index
// and its distance in meters. Ties are broken by the earliest index.
func (e *Evaluator) NearestPointOnPath(current transit.Geography, path []transit.Geography) (transit.Geography, int, float64) {
	nearestIndex := -1
	nearestDistance := math.MaxFloat64

	for index, point := range path {
		distance := e.Distance(current, point)

		if distance < nearestDistance {
			nearestDistance = distance
			nearestIndex = index
		}
	}

	if nearestIndex == -1 {
		return transit.Geography{}, -1, 0
	}

	return path[nearestIndex], nearestIndex, nearestDistance
}

// EstimateETA projects the arrival time at target from current assuming
// straight line travel at the configured average speed
func (e *Evaluator) EstimateETA(current transit.Geography, target transit.Geography, now time.Time) time.Time {
	speed := e.Thresholds.AverageSpeedKmh
	if speed <= 0 {
		speed = defaultAverageSpeedKmh
	}

	distanceKm := e.Distance(current, target) / 1000
	travelHours := distanceKm / speed

	return now.Add(time.Duration(travelHours * float64(time.Hour)))
}

func degreesToRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
