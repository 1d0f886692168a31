package bincode

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTimeRoundTrip(t *testing.T) {
	testCases := []struct {
		name string
		ts   time.Time
	}{
		{"unix_epoch", time.Unix(0, 0).UTC()},
		{"recent", time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)},
		{"with_nanos", time.Date(2024, 1, 15, 10, 30, 0, 123456789, time.UTC)},
		{"beyond_u32_seconds", time.Unix(0x100000000, 500000000).UTC()},
		{"far_future", time.Date(3000, 1, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := MarshalTime[Big](tc.ts)
			require.NoError(t, err)
			require.Len(t, data, 12)

			decoded, err := UnmarshalTime[Big](data)
			require.NoError(t, err)
			require.True(t, decoded.Equal(tc.ts), "got %v, want %v", decoded, tc.ts)
			require.Equal(t, time.UTC, decoded.Location())
		})
	}
}

func TestTimeLayout(t *testing.T) {
	data, err := MarshalTime[Little](time.Unix(2, 3))
	require.NoError(t, err)
	require.Equal(t, []byte{2, 0, 0, 0, 0, 0, 0, 0, 3, 0, 0, 0}, data)
}

func TestTimeBeforeEpoch(t *testing.T) {
	_, err := MarshalTime[Little](time.Unix(-1, 0))
	k := requireKind[Custom](t, err)
	require.Equal(t, "SystemTime must be later than UNIX_EPOCH", k.Msg)
}

func TestTimeNanosCarry(t *testing.T) {
	// 1s + 1.5e9ns
	data := []byte{1, 0, 0, 0, 0, 0, 0, 0, 0x00, 0x2F, 0x68, 0x59}
	got, err := UnmarshalTime[Little](data)
	require.NoError(t, err)
	require.True(t, got.Equal(time.Unix(2, 500000000)))
}

func TestTimeOverflow(t *testing.T) {
	data := []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0, 0, 0, 0}
	_, err := UnmarshalTime[Little](data)
	k := requireKind[Custom](t, err)
	require.Equal(t, "overflow deserializing SystemTime epoch offset", k.Msg)
}
