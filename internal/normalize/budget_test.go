package normalize

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      any
		want    int64
		wantNeg bool
	}{
		{name: "float", in: float64(7500.9), want: 7500},
		{name: "int", in: 300, want: 300},
		{name: "json number", in: json.Number("1200"), want: 1200},
		{name: "negative float", in: float64(-5), want: -5, wantNeg: true},
		{name: "currency string", in: "$5,000.50", want: 5000},
		{name: "no fraction", in: "10,000", want: 10000},
		{name: "suffix letters", in: "15000 USD", want: 15000},
		{name: "unparsable", in: "ask them", want: 0},
		{name: "nil", in: nil, want: 0},
		{name: "bool", in: true, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, neg := ParseAmount(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantNeg, neg)
		})
	}
}

func TestParseBudget_Shapes(t *testing.T) {
	t.Parallel()

	b, warn := parseBudget(map[string]any{"max": float64(4000)})
	assert.Equal(t, int64(4000), b.Min)
	assert.Equal(t, int64(4000), b.Max)
	assert.Empty(t, warn)

	b, warn = parseBudget("$10k to $5k")
	assert.Equal(t, int64(5), b.Min)
	assert.Equal(t, int64(10), b.Max)
	assert.Contains(t, warn, "swapped")

	b, warn = parseBudget(map[string]any{"currency": "usd"})
	assert.Nil(t, b)
	assert.Empty(t, warn)
}
