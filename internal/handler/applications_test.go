package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplicationBelongsToPosting(t *testing.T) {
	tests := []struct {
		name          string
		applicationID string
		postingID     int64
		want          bool
	}{
		{"属于当前公告", "42_7", 42, true},
		{"属于其他公告", "43_7", 42, false},
		{"申请人部分含下划线", "42_user_7", 42, true},
		{"前缀只是数字前缀相同", "421_7", 42, false},
		{"缺少分隔符", "42", 42, false},
		{"空字符串", "", 42, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, applicationBelongsToPosting(tt.applicationID, tt.postingID))
		})
	}
}
