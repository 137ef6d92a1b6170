package transit

type TransportMode string

const (
	TransportModeBus        TransportMode = "Bus"
	TransportModeSharedTaxi TransportMode = "SharedTaxi"
	TransportModeKeke       TransportMode = "Keke"
	TransportModeOkada      TransportMode = "Okada"
	TransportModeWalk       TransportMode = "Walk"
	TransportModeExpressBus TransportMode = "ExpressBus"
	TransportModeShuttle    TransportMode = "Shuttle"
	TransportModeFerry      TransportMode = "Ferry"
	TransportModeUnknown    TransportMode = "UNKNOWN"
)
