package transit

type ProximityAlertType string

const (
	ProximityAlertTypeApproaching ProximityAlertType = "approaching"
	ProximityAlertTypeArrived     ProximityAlertType = "arrived"
	ProximityAlertTypeOffRoute    ProximityAlertType = "off_route"
)

// ProximityAlert is a transient geofence trigger result - returned to the
// caller and pushed onto the events queue, never persisted
type ProximityAlert struct {
	Type ProximityAlertType `groups:"basic"`

	Message string `groups:"basic"`

	DistanceMeters float64 `groups:"basic"`
}
