// Package events connects the front desk to Kafka: it publishes the desk's
// integration events and consumes vehicle movements from the parking gate.
package events

// Topics.
const (
	TopicFrontdeskEvents = "frontdesk.events"
	TopicGateEvents      = "parking.gate.events"
)

// Source is the CloudEvents source of everything this service publishes.
const Source = "service-frontdesk"

// GateVehicleExited is emitted by a parking gate when a vehicle leaves.
const GateVehicleExited = "gate.vehicle_exited"
