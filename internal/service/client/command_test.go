package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/timestamppb"

	api "github.com/oshokin/ledger-registry/internal/api/grpc/registry"
	"github.com/oshokin/ledger-registry/internal/domain/zone"
)

// TestParsePoint covers accepted and rejected point notations.
func TestParsePoint(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		input   string
		want    zone.Point3D[uint32]
		wantErr bool
	}{
		{name: "plain", input: "1,2,3", want: zone.NewPoint[uint32](1, 2, 3)},
		{name: "spaces", input: " 10, 20 ,30 ", want: zone.NewPoint[uint32](10, 20, 30)},
		{name: "max", input: "4294967295,0,0", want: zone.NewPoint[uint32](4294967295, 0, 0)},
		{name: "two coords", input: "1,2", wantErr: true},
		{name: "negative", input: "-1,2,3", wantErr: true},
		{name: "overflow", input: "4294967296,0,0", wantErr: true},
		{name: "text", input: "a,b,c", wantErr: true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParsePoint(tc.input)
			if tc.wantErr {
				require.ErrorIs(t, err, errInvalidPoint)

				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

// TestFormatAccount checks the account line with and without a role check.
func TestFormatAccount(t *testing.T) {
	t.Parallel()

	resp := &api.AccountResponse{
		Identity:  "2",
		Role:      "standard",
		Enabled:   true,
		CreatedAt: timestamppb.New(time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)),
		Age:       durationpb.New(90 * time.Second),
		HasRole:   false,
	}

	require.Equal(t, "2 standard enabled since 2024-05-06T07:08:09Z (age 1m30s)", FormatAccount(resp, ""))
	require.Equal(t,
		"2 standard enabled since 2024-05-06T07:08:09Z (age 1m30s), is registrar: false",
		FormatAccount(resp, "registrar"))
	require.Equal(t, "<nil account>", FormatAccount(nil, ""))
}

// TestFormatZone checks the zone line with and without a type check.
func TestFormatZone(t *testing.T) {
	t.Parallel()

	resp := &api.ZoneResponse{
		ZoneID:  3,
		Type:    "red",
		Point1:  &api.Point{X: 1, Y: 2, Z: 3},
		Point2:  &api.Point{X: 4, Y: 5, Z: 6},
		Matches: true,
	}

	require.Equal(t, "zone 3 red (1, 2, 3)-(4, 5, 6)", FormatZone(resp, ""))
	require.Equal(t, "zone 3 red (1, 2, 3)-(4, 5, 6), is red: true", FormatZone(resp, "red"))
}

// TestFormatEvent checks every event kind renders its relevant fields.
func TestFormatEvent(t *testing.T) {
	t.Parallel()

	require.Equal(t, "#1 account_created identity=2 role=registrar",
		FormatEvent(&api.Event{Seq: 1, Kind: "account_created", Identity: "2", Role: "registrar"}))
	require.Equal(t, "#2 account_disabled identity=2 reason=reaped",
		FormatEvent(&api.Event{Seq: 2, Kind: "account_disabled", Identity: "2", Reason: "reaped"}))
	require.Equal(t, "#3 zone_created zone=0 creator=1 type=green",
		FormatEvent(&api.Event{Seq: 3, Kind: "zone_created", ZoneID: 0, Creator: "1", ZoneType: "green"}))
	require.Equal(t, "#4 unknown", FormatEvent(&api.Event{Seq: 4, Kind: "unknown"}))
}
