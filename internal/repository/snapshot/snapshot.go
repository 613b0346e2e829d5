package snapshot

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/ledger-registry/internal/domain/account"
	"github.com/oshokin/ledger-registry/internal/domain/zone"
)

// State is the persisted registry surface.
type State[C zone.Coord] struct {
	// Accounts are the account records ordered by identity.
	Accounts []account.Account
	// Zones are the catalogued zones ordered by id.
	Zones []zone.Zone[C]
	// TotalBoxes is the zone counter.
	TotalBoxes uint32
}

// document is the on-disk layout of State.
type document[C zone.Coord] struct {
	Version    int             `yaml:"version"`
	Accounts   []accountRecord `yaml:"accounts"`
	Zones      []zoneRecord[C] `yaml:"zones"`
	TotalBoxes uint32          `yaml:"total_boxes"`
}

type accountRecord struct {
	Identity  string `yaml:"identity"`
	Role      string `yaml:"role"`
	Enabled   bool   `yaml:"enabled"`
	CreatedAt string `yaml:"created_at"`
}

type zoneRecord[C zone.Coord] struct {
	ID     uint32 `yaml:"id"`
	Type   string `yaml:"type"`
	Point1 [3]C   `yaml:"point_1,flow"`
	Point2 [3]C   `yaml:"point_2,flow"`
}

// formatVersion is bumped whenever the document layout changes.
const formatVersion = 1

// errUnsupportedVersion is returned for documents written by a newer layout.
var errUnsupportedVersion = errors.New("unsupported snapshot version")

// Encode renders state as YAML.
func Encode[C zone.Coord](state *State[C]) ([]byte, error) {
	doc := document[C]{
		Version:    formatVersion,
		Accounts:   make([]accountRecord, 0, len(state.Accounts)),
		Zones:      make([]zoneRecord[C], 0, len(state.Zones)),
		TotalBoxes: state.TotalBoxes,
	}

	for _, a := range state.Accounts {
		doc.Accounts = append(doc.Accounts, accountRecord{
			Identity:  string(a.Identity),
			Role:      a.Role.String(),
			Enabled:   a.Enabled,
			CreatedAt: a.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
	}

	for _, z := range state.Zones {
		box := z.BoundingBox

		doc.Zones = append(doc.Zones, zoneRecord[C]{
			ID:     z.ID,
			Type:   z.Type.String(),
			Point1: [3]C{box.Point1.X, box.Point1.Y, box.Point1.Z},
			Point2: [3]C{box.Point2.X, box.Point2.Y, box.Point2.Z},
		})
	}

	var buf bytes.Buffer

	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)

	if err := encoder.Encode(&doc); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}

	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}

	return buf.Bytes(), nil
}

// Decode parses YAML produced by Encode.
func Decode[C zone.Coord](data []byte) (*State[C], error) {
	var doc document[C]
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	if doc.Version > formatVersion {
		return nil, fmt.Errorf("%w: %d", errUnsupportedVersion, doc.Version)
	}

	state := &State[C]{
		Accounts:   make([]account.Account, 0, len(doc.Accounts)),
		Zones:      make([]zone.Zone[C], 0, len(doc.Zones)),
		TotalBoxes: doc.TotalBoxes,
	}

	for _, rec := range doc.Accounts {
		createdAt, err := time.Parse(time.RFC3339Nano, rec.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("decode account %q: created_at: %w", rec.Identity, err)
		}

		state.Accounts = append(state.Accounts, account.Account{
			Identity:  account.Identity(rec.Identity),
			Role:      account.Role(rec.Role),
			Enabled:   rec.Enabled,
			CreatedAt: createdAt.UTC(),
		})
	}

	for _, rec := range doc.Zones {
		box := zone.NewBox(
			zone.NewPoint(rec.Point1[0], rec.Point1[1], rec.Point1[2]),
			zone.NewPoint(rec.Point2[0], rec.Point2[1], rec.Point2[2]),
		)

		state.Zones = append(state.Zones, zone.New(rec.ID, zone.Type(rec.Type), box))
	}

	return state, nil
}
