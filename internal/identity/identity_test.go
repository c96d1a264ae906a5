package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeUserID(t *testing.T) {
	tests := []struct {
		name string
		doc  DocumentRef
		want string
	}{
		{
			name: "staffId 优先",
			doc:  DocumentRef{StaffID: "s1", ApplicantID: "a1", UserID: "u1"},
			want: "s1",
		},
		{
			name: "没有 staffId 时用 applicantId",
			doc:  DocumentRef{ApplicantID: "a1", UserID: "u1"},
			want: "a1",
		},
		{
			name: "只有 userId",
			doc:  DocumentRef{UserID: "u1"},
			want: "u1",
		},
		{
			name: "全部为空",
			doc:  DocumentRef{},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeUserID(tt.doc))
		})
	}
}

func TestNormalizeJobID(t *testing.T) {
	// eventId 是废弃的别名，即使 jobPostingId 为空也不回退到它
	assert.Equal(t, "p1", NormalizeJobID(DocumentRef{JobPostingID: "p1", EventID: "e1"}))
	assert.Equal(t, "", NormalizeJobID(DocumentRef{EventID: "e1"}))
}

func TestApplicationIDRoundTrip(t *testing.T) {
	tests := []struct {
		jobPostingID string
		applicantID  string
	}{
		{"posting1", "user1"},
		{"42", "7"},
		// applicantId 自身含下划线时也必须能还原
		{"posting1", "user_with_underscore"},
	}

	for _, tt := range tests {
		id := NewApplicationID(tt.jobPostingID, tt.applicantID)
		jobPostingID, applicantID, err := ParseApplicationID(id)
		require.NoError(t, err)
		assert.Equal(t, tt.jobPostingID, jobPostingID)
		assert.Equal(t, tt.applicantID, applicantID)
	}
}

func TestParseApplicationIDInvalid(t *testing.T) {
	for _, id := range []string{"", "no-underscore", "_user1", "posting1_"} {
		_, _, err := ParseApplicationID(id)
		assert.Error(t, err, "id: %q", id)
	}
}

func TestExtractUnifiedIDs(t *testing.T) {
	a := []DocumentRef{
		{JobPostingID: "p1"},
		{JobPostingID: "p2"},
		{EventID: "e1"}, // 只有旧别名，跳过
	}
	b := []DocumentRef{
		{JobPostingID: "p2"}, // 重复
		{JobPostingID: "p3"},
	}

	ids := ExtractUnifiedIDs(a, b)
	assert.Equal(t, []string{"p1", "p2", "p3"}, ids)
}

func TestExtractUnifiedIDsEmpty(t *testing.T) {
	assert.Empty(t, ExtractUnifiedIDs(nil, nil))
}
