package domain

import "github.com/google/uuid"

// RoleOperator is the JWT role allowed to use the operator endpoints.
const RoleOperator = "operator"

// ReprocessRequest selects a stored event by provider event id or by record id.
// EventType and ObjectID are only used when the provider event id is unknown
// and the operator supplies the event by hand.
type ReprocessRequest struct {
	ProviderEventID string
	RecordID        *uuid.UUID
	Force           bool
	EventType       string
	ObjectID        string
	Operator        string
}
