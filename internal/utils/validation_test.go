package utils

import (
	"testing"

	"github.com/staffpool-dev/staff-marketplace/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequirements() []domain.DateSpecificRequirement {
	return []domain.DateSpecificRequirement{
		{
			Date: domain.DateFromISO("2026-09-01"),
			TimeSlots: []domain.TimeSlot{
				{
					StartTime: "14:00",
					Roles: []domain.RoleRequirement{
						{Role: domain.StaffRoleDealer, Headcount: 2},
					},
				},
			},
		},
	}
}

func TestValidateRequirementTree(t *testing.T) {
	assert.NoError(t, ValidateRequirementTree(validRequirements()))
}

func TestValidateRequirementTreeErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(reqs []domain.DateSpecificRequirement) []domain.DateSpecificRequirement
	}{
		{
			name: "没有日期需求",
			mutate: func(reqs []domain.DateSpecificRequirement) []domain.DateSpecificRequirement {
				return nil
			},
		},
		{
			name: "缺少日期",
			mutate: func(reqs []domain.DateSpecificRequirement) []domain.DateSpecificRequirement {
				reqs[0].Date = domain.DateValue{}
				return reqs
			},
		},
		{
			name: "日期无法识别",
			mutate: func(reqs []domain.DateSpecificRequirement) []domain.DateSpecificRequirement {
				reqs[0].Date = domain.DateFromISO("下周三")
				return reqs
			},
		},
		{
			name: "没有时间段",
			mutate: func(reqs []domain.DateSpecificRequirement) []domain.DateSpecificRequirement {
				reqs[0].TimeSlots = nil
				return reqs
			},
		},
		{
			name: "开始时间格式错误",
			mutate: func(reqs []domain.DateSpecificRequirement) []domain.DateSpecificRequirement {
				reqs[0].TimeSlots[0].StartTime = "下午两点"
				return reqs
			},
		},
		{
			name: "待定时段缺少说明",
			mutate: func(reqs []domain.DateSpecificRequirement) []domain.DateSpecificRequirement {
				reqs[0].TimeSlots[0].StartTime = ""
				reqs[0].TimeSlots[0].IsTimeToBeAnnounced = true
				return reqs
			},
		},
		{
			name: "没有岗位",
			mutate: func(reqs []domain.DateSpecificRequirement) []domain.DateSpecificRequirement {
				reqs[0].TimeSlots[0].Roles = nil
				return reqs
			},
		},
		{
			name: "人数为零",
			mutate: func(reqs []domain.DateSpecificRequirement) []domain.DateSpecificRequirement {
				reqs[0].TimeSlots[0].Roles[0].Headcount = 0
				return reqs
			},
		},
		{
			name: "人数超出上限",
			mutate: func(reqs []domain.DateSpecificRequirement) []domain.DateSpecificRequirement {
				reqs[0].TimeSlots[0].Roles[0].Headcount = 201
				return reqs
			},
		},
		{
			name: "自定义岗位缺少名称",
			mutate: func(reqs []domain.DateSpecificRequirement) []domain.DateSpecificRequirement {
				reqs[0].TimeSlots[0].Roles[0].Role = domain.StaffRoleOther
				return reqs
			},
		},
		{
			name: "已确认人数为负",
			mutate: func(reqs []domain.DateSpecificRequirement) []domain.DateSpecificRequirement {
				reqs[0].TimeSlots[0].Roles[0].Filled = -1
				return reqs
			},
		},
		{
			name: "岗位薪资为负",
			mutate: func(reqs []domain.DateSpecificRequirement) []domain.DateSpecificRequirement {
				reqs[0].TimeSlots[0].Roles[0].Salary = &domain.SalaryInfo{Type: domain.SalaryTypeHourly, Amount: -1}
				return reqs
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reqs := tt.mutate(validRequirements())
			assert.Error(t, ValidateRequirementTree(reqs))
		})
	}
}

func TestValidateRequirementTreeTimeToBeAnnounced(t *testing.T) {
	reqs := validRequirements()
	reqs[0].TimeSlots[0].StartTime = ""
	reqs[0].TimeSlots[0].IsTimeToBeAnnounced = true
	reqs[0].TimeSlots[0].TentativeDescription = "时间另行通知"

	assert.NoError(t, ValidateRequirementTree(reqs))
}

func TestValidateAssignments(t *testing.T) {
	posting := &domain.JobPosting{DateSpecificRequirements: validRequirements()}

	assignments := []domain.Assignment{
		{Dates: []string{"2026-09-01"}, TimeSlot: "14:00", RoleIDs: []string{"dealer"}},
	}
	require.NoError(t, ValidateAssignments(posting, assignments))

	// 日期写法不同但归一化后一致
	assignments = []domain.Assignment{
		{Dates: []string{"2026-09-01T00:00:00Z"}, TimeSlot: "14:00~18:00", RoleIDs: []string{"dealer"}},
	}
	assert.NoError(t, ValidateAssignments(posting, assignments))
}

func TestValidateAssignmentsErrors(t *testing.T) {
	posting := &domain.JobPosting{DateSpecificRequirements: validRequirements()}

	assert.Error(t, ValidateAssignments(posting, nil))

	// 日期在公告中不存在
	assert.Error(t, ValidateAssignments(posting, []domain.Assignment{
		{Dates: []string{"2026-12-31"}, TimeSlot: "14:00", RoleIDs: []string{"dealer"}},
	}))

	// 岗位不匹配
	assert.Error(t, ValidateAssignments(posting, []domain.Assignment{
		{Dates: []string{"2026-09-01"}, TimeSlot: "14:00", RoleIDs: []string{"server"}},
	}))

	// 缺少日期
	assert.Error(t, ValidateAssignments(posting, []domain.Assignment{
		{TimeSlot: "14:00", RoleIDs: []string{"dealer"}},
	}))
}
