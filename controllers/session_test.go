package controllers

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
		ok   bool
	}{
		{name: "number", raw: `3`, want: 3, ok: true},
		{name: "fraction truncates", raw: `2.9`, want: 2, ok: true},
		{name: "numeric string", raw: `" 4 "`, want: 4, ok: true},
		{name: "negative", raw: `-2`, want: -2, ok: true},
		{name: "int32 max", raw: `2147483647`, want: 2147483647, ok: true},
		{name: "above int32", raw: `2147483648`},
		{name: "huge number", raw: `9e18`},
		{name: "huge string", raw: `"1e19"`},
		{name: "huge negative", raw: `-1e19`},
		{name: "text", raw: `"abc"`},
		{name: "bool", raw: `true`},
		{name: "missing", raw: ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseQuantity(json.RawMessage(tt.raw))
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
