package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateValueCanonical(t *testing.T) {
	tests := []struct {
		name string
		d    DateValue
		want string
	}{
		{"已经是规范形式", DateFromISO("2026-09-01"), "2026-09-01"},
		{"RFC3339 时间戳", DateFromISO("2026-09-01T08:30:00Z"), "2026-09-01"},
		{"RFC3339 带时区", DateFromISO("2026-09-01T23:30:00+08:00"), "2026-09-01"},
		{"无时区的时间戳", DateFromISO("2026-09-01T08:30:00"), "2026-09-01"},
		{"无法解析", DateFromISO("下周三"), ""},
		{"epoch 秒", DateFromEpochSeconds(1788480000), "2026-09-04"},
		{"零值", DateValue{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.d.Canonical())
		})
	}
}

func TestDateValueUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"字符串形式", `"2026-09-01"`, "2026-09-01"},
		{"秒对象形式", `{"seconds":1788480000,"nanoseconds":0}`, "2026-09-04"},
		{"裸数字形式", `1788480000`, "2026-09-04"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d DateValue
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &d))
			assert.Equal(t, tt.want, d.Canonical())
		})
	}
}

func TestDateValueUnmarshalNull(t *testing.T) {
	var d DateValue
	require.NoError(t, json.Unmarshal([]byte(`null`), &d))
	assert.True(t, d.IsZero())
	assert.Equal(t, "", d.Canonical())
}

func TestDateValueMarshalEmitsCanonical(t *testing.T) {
	b, err := json.Marshal(DateFromISO("2026-09-01T08:30:00Z"))
	require.NoError(t, err)
	assert.Equal(t, `"2026-09-01"`, string(b))
}

func TestCanonicalDateString(t *testing.T) {
	assert.Equal(t, "2026-09-01", CanonicalDateString("2026-09-01"))
	assert.Equal(t, "2026-09-01", CanonicalDateString("2026-09-01T12:00:00Z"))
	assert.Equal(t, "", CanonicalDateString(""))
}
