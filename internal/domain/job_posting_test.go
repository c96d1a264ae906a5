package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractStartTime(t *testing.T) {
	tests := []struct {
		descriptor string
		want       string
	}{
		{"14:00", "14:00"},
		{"14:00~18:00", "14:00"},
		{"14:00-18:00", "14:00"},
		{"9:30", "09:30"},
		{"9:30 开始", "09:30"},
		{"晚上 20:15 到场", "20:15"},
		{"0:00", "00:00"},
		{"23:59", "23:59"},
		{"时间待定", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.descriptor, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractStartTime(tt.descriptor))
		})
	}
}

func TestRoleRequirementMatches(t *testing.T) {
	dealer := RoleRequirement{Role: StaffRoleDealer}
	assert.True(t, dealer.Matches("dealer"))
	assert.False(t, dealer.Matches("server"))

	guard := RoleRequirement{Role: StaffRoleOther, CustomRole: "保安"}
	assert.True(t, guard.Matches("保安"))
	assert.False(t, guard.Matches("other"))
}

func TestTimeSlotStartKey(t *testing.T) {
	slot := TimeSlot{StartTime: "14:00~18:00"}
	assert.Equal(t, "14:00", slot.StartKey())

	// 待定时段的键恒为空，即使误填了开始时间
	tba := TimeSlot{StartTime: "14:00", IsTimeToBeAnnounced: true}
	assert.Equal(t, "", tba.StartKey())
}

func TestAssignmentStartKeyMatchesSlotKey(t *testing.T) {
	// 两边写法不同但归一化后必须得到同一个键
	slot := TimeSlot{StartTime: "9:00"}
	assignment := Assignment{TimeSlot: "09:00~17:00"}
	assert.Equal(t, slot.StartKey(), assignment.StartKey())
}

func TestCountPositions(t *testing.T) {
	posting := JobPosting{
		DateSpecificRequirements: []DateSpecificRequirement{
			{
				Date: DateFromISO("2026-09-01"),
				TimeSlots: []TimeSlot{
					{
						StartTime: "09:00",
						Roles: []RoleRequirement{
							{Role: StaffRoleDealer, Headcount: 2, Filled: 1},
							{Role: StaffRoleServer, Headcount: 3, Filled: 0},
						},
					},
				},
			},
			{
				Date: DateFromISO("2026-09-02"),
				TimeSlots: []TimeSlot{
					{
						StartTime: "14:00",
						Roles: []RoleRequirement{
							{Role: StaffRoleFloor, Headcount: 1, Filled: 1},
						},
					},
				},
			},
		},
	}

	total, filled := posting.CountPositions()
	assert.Equal(t, int32(6), total)
	assert.Equal(t, int32(2), filled)
}

func TestAssignmentPrimaryRole(t *testing.T) {
	assert.Equal(t, "dealer", (&Assignment{RoleIDs: []string{"dealer", "server"}}).PrimaryRole())
	assert.Equal(t, "other", (&Assignment{}).PrimaryRole())
	assert.Equal(t, "other", (&Assignment{RoleIDs: []string{""}}).PrimaryRole())
}
