package registry

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// AddAccountRequest asks a registrar to create or overwrite an account.
type AddAccountRequest struct {
	Caller string `json:"caller"`
	Target string `json:"target"`
	Role   string `json:"role"`
}

// DisableAccountRequest asks a registrar to disable an account.
type DisableAccountRequest struct {
	Caller string `json:"caller"`
	Target string `json:"target"`
}

// MutationResponse lists the events emitted by a mutating call.
type MutationResponse struct {
	Events []*Event `json:"events,omitempty"`
}

// GetAccountRequest looks up an account. When Role is set the response
// also reports whether the account holds it.
type GetAccountRequest struct {
	Identity string `json:"identity"`
	Role     string `json:"role,omitempty"`
}

// AccountResponse describes an account.
type AccountResponse struct {
	Identity  string                 `json:"identity"`
	Role      string                 `json:"role"`
	Enabled   bool                   `json:"enabled"`
	CreatedAt *timestamppb.Timestamp `json:"created_at,omitempty"`
	Age       *durationpb.Duration   `json:"age,omitempty"`
	HasRole   bool                   `json:"has_role"`
}

// accountWire is the JSON shape of AccountResponse. The well-known types
// are rendered by protojson, so timestamps travel as RFC 3339 strings and
// durations as "1.5s".
type accountWire struct {
	Identity  string          `json:"identity"`
	Role      string          `json:"role"`
	Enabled   bool            `json:"enabled"`
	CreatedAt json.RawMessage `json:"created_at,omitempty"`
	Age       json.RawMessage `json:"age,omitempty"`
	HasRole   bool            `json:"has_role"`
}

// MarshalJSON implements json.Marshaler.
func (r *AccountResponse) MarshalJSON() ([]byte, error) {
	wire := accountWire{
		Identity: r.Identity,
		Role:     r.Role,
		Enabled:  r.Enabled,
		HasRole:  r.HasRole,
	}

	var err error

	if r.CreatedAt != nil {
		if wire.CreatedAt, err = protojson.Marshal(r.CreatedAt); err != nil {
			return nil, fmt.Errorf("marshal created_at: %w", err)
		}
	}

	if r.Age != nil {
		if wire.Age, err = protojson.Marshal(r.Age); err != nil {
			return nil, fmt.Errorf("marshal age: %w", err)
		}
	}

	return json.Marshal(wire)
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *AccountResponse) UnmarshalJSON(data []byte) error {
	var wire accountWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	*r = AccountResponse{
		Identity: wire.Identity,
		Role:     wire.Role,
		Enabled:  wire.Enabled,
		HasRole:  wire.HasRole,
	}

	if len(wire.CreatedAt) > 0 && string(wire.CreatedAt) != "null" {
		r.CreatedAt = new(timestamppb.Timestamp)
		if err := protojson.Unmarshal(wire.CreatedAt, r.CreatedAt); err != nil {
			return fmt.Errorf("unmarshal created_at: %w", err)
		}
	}

	if len(wire.Age) > 0 && string(wire.Age) != "null" {
		r.Age = new(durationpb.Duration)
		if err := protojson.Unmarshal(wire.Age, r.Age); err != nil {
			return fmt.Errorf("unmarshal age: %w", err)
		}
	}

	return nil
}

// Point is a 3D point on the city map.
type Point struct {
	X uint32 `json:"x"`
	Y uint32 `json:"y"`
	Z uint32 `json:"z"`
}

// AddZoneRequest asks a registrar to catalog a zone.
type AddZoneRequest struct {
	Caller string `json:"caller"`
	Type   string `json:"type"`
	Point1 *Point `json:"point_1"`
	Point2 *Point `json:"point_2"`
}

// AddZoneResponse carries the allocated zone id.
type AddZoneResponse struct {
	ZoneID uint32   `json:"zone_id"`
	Events []*Event `json:"events,omitempty"`
}

// GetZoneRequest looks up a zone. When Type is set the response also
// reports whether the zone has it.
type GetZoneRequest struct {
	ZoneID uint32 `json:"zone_id"`
	Type   string `json:"type,omitempty"`
}

// ZoneResponse describes a zone.
type ZoneResponse struct {
	ZoneID  uint32 `json:"zone_id"`
	Type    string `json:"type"`
	Point1  *Point `json:"point_1"`
	Point2  *Point `json:"point_2"`
	Matches bool   `json:"matches"`
}

// TotalBoxesRequest asks for the zone counter.
type TotalBoxesRequest struct{}

// TotalBoxesResponse carries the zone counter.
type TotalBoxesResponse struct {
	Total uint32 `json:"total"`
}

// TransferRequest moves funds of the caller on the ledger.
type TransferRequest struct {
	Caller string `json:"caller"`
	To     string `json:"to"`
	Amount uint64 `json:"amount"`
}

// TransferResponse reports whether the caller got reaped.
type TransferResponse struct {
	Reaped bool     `json:"reaped"`
	Events []*Event `json:"events,omitempty"`
}

// BalanceRequest asks for a ledger balance.
type BalanceRequest struct {
	Identity string `json:"identity"`
}

// BalanceResponse carries a ledger balance.
type BalanceResponse struct {
	Identity string `json:"identity"`
	Balance  uint64 `json:"balance"`
}

// EventsRequest asks for retained events newer than AfterSeq.
type EventsRequest struct {
	AfterSeq uint64 `json:"after_seq"`
}

// EventsResponse carries retained events.
type EventsResponse struct {
	Events []*Event `json:"events"`
}

// Event is the wire form of a domain event.
type Event struct {
	Seq      uint64 `json:"seq"`
	Kind     string `json:"kind"`
	Identity string `json:"identity,omitempty"`
	Role     string `json:"role,omitempty"`
	Reason   string `json:"reason,omitempty"`
	ZoneID   uint32 `json:"zone_id,omitempty"`
	Creator  string `json:"creator,omitempty"`
	ZoneType string `json:"zone_type,omitempty"`
}
