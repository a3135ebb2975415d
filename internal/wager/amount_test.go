package wager

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckedAdd(t *testing.T) {
	tests := []struct {
		name string
		a, b Amount
		want Amount
		ok   bool
	}{
		{"zero", 0, 0, 0, true},
		{"normal", 100, 200, 300, true},
		{"boundary", MaxAmount - 1, 1, MaxAmount, true},
		{"overflow by one", MaxAmount, 1, 0, false},
		{"overflow both large", MaxAmount, MaxAmount, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CheckedAdd(tt.a, tt.b)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCheckedSub(t *testing.T) {
	tests := []struct {
		name string
		a, b Amount
		want Amount
		ok   bool
	}{
		{"equal", 100, 100, 0, true},
		{"normal", 1_000_000, 100, 999_900, true},
		{"underflow by one", 99, 100, 0, false},
		{"from zero", 0, 1, 0, false},
		{"max minus max", MaxAmount, MaxAmount, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CheckedSub(tt.a, tt.b)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAmount(t *testing.T) {
	got, err := ParseAmount("18446744073709551615")
	require.NoError(t, err)
	assert.Equal(t, MaxAmount, got)

	for _, bad := range []string{"", "-1", "1.5", "18446744073709551616", "abc"} {
		_, err := ParseAmount(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestAmount_String(t *testing.T) {
	assert.Equal(t, "0", Amount(0).String())
	assert.Equal(t, "18446744073709551615", MaxAmount.String())
}

func FuzzCheckedAdd(f *testing.F) {
	f.Add(uint64(0), uint64(0))
	f.Add(uint64(1<<63), uint64(1<<63))
	f.Add(^uint64(0), uint64(1))

	f.Fuzz(func(t *testing.T, a, b uint64) {
		sum, ok := CheckedAdd(Amount(a), Amount(b))
		if ok {
			if uint64(sum)-b != a {
				t.Fatalf("CheckedAdd(%d, %d) = %d, not invertible", a, b, sum)
			}
			return
		}
		if a <= ^uint64(0)-b {
			t.Fatalf("CheckedAdd(%d, %d) reported overflow", a, b)
		}
	})
}
