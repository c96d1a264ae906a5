package capacity

import (
	"testing"

	"github.com/staffpool-dev/staff-marketplace/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRequirements() []domain.DateSpecificRequirement {
	return []domain.DateSpecificRequirement{
		{
			Date: domain.DateFromISO("2026-09-01"),
			TimeSlots: []domain.TimeSlot{
				{
					StartTime: "14:00",
					Roles: []domain.RoleRequirement{
						{Role: domain.StaffRoleDealer, Headcount: 2, Filled: 0},
						{Role: domain.StaffRoleServer, Headcount: 3, Filled: 1},
					},
				},
			},
		},
		{
			Date: domain.DateFromISO("2026-09-02"),
			TimeSlots: []domain.TimeSlot{
				{
					StartTime: "14:00",
					Roles: []domain.RoleRequirement{
						{Role: domain.StaffRoleDealer, Headcount: 2, Filled: 0},
					},
				},
			},
		},
	}
}

func leafFilled(t *testing.T, reqs []domain.DateSpecificRequirement, date string, role domain.StaffRole) int32 {
	t.Helper()
	for _, req := range reqs {
		if req.Date.Canonical() != date {
			continue
		}
		for _, slot := range req.TimeSlots {
			for _, rr := range slot.Roles {
				if rr.Role == role {
					return rr.Filled
				}
			}
		}
	}
	t.Fatalf("叶子不存在: %s %s", date, role)
	return 0
}

func TestReconcileIncrement(t *testing.T) {
	reqs := testRequirements()
	assignments := []domain.Assignment{
		{Dates: []string{"2026-09-01", "2026-09-02"}, TimeSlot: "14:00", RoleIDs: []string{"dealer"}},
	}

	updated, outcome, err := Reconcile(reqs, assignments, Increment)
	require.NoError(t, err)
	assert.True(t, outcome.FullSuccess())
	assert.Equal(t, 2, outcome.Expected)

	assert.Equal(t, int32(1), leafFilled(t, updated, "2026-09-01", domain.StaffRoleDealer))
	assert.Equal(t, int32(1), leafFilled(t, updated, "2026-09-02", domain.StaffRoleDealer))
	// 未涉及的叶子不变
	assert.Equal(t, int32(1), leafFilled(t, updated, "2026-09-01", domain.StaffRoleServer))

	// 输入的树不被原地修改
	assert.Equal(t, int32(0), leafFilled(t, reqs, "2026-09-01", domain.StaffRoleDealer))
}

func TestReconcileIncrementThenDecrementRestores(t *testing.T) {
	reqs := testRequirements()
	assignments := []domain.Assignment{
		{Dates: []string{"2026-09-01"}, TimeSlot: "14:00", RoleIDs: []string{"server"}},
	}

	incremented, _, err := Reconcile(reqs, assignments, Increment)
	require.NoError(t, err)
	assert.Equal(t, int32(2), leafFilled(t, incremented, "2026-09-01", domain.StaffRoleServer))

	restored, _, err := Reconcile(incremented, assignments, Decrement)
	require.NoError(t, err)
	assert.Equal(t, reqs, restored)
}

func TestReconcileDecrementFloorsAtZero(t *testing.T) {
	reqs := testRequirements()
	assignments := []domain.Assignment{
		{Dates: []string{"2026-09-01"}, TimeSlot: "14:00", RoleIDs: []string{"dealer"}},
	}

	// dealer 的 filled 已经是 0，重复取消不能把它减成负数
	updated, outcome, err := Reconcile(reqs, assignments, Decrement)
	require.NoError(t, err)
	assert.Equal(t, int32(0), leafFilled(t, updated, "2026-09-01", domain.StaffRoleDealer))
	assert.True(t, outcome.FullSuccess())
}

func TestReconcileIncrementNoMatchFails(t *testing.T) {
	reqs := testRequirements()
	assignments := []domain.Assignment{
		{Dates: []string{"2026-12-31"}, TimeSlot: "14:00", RoleIDs: []string{"dealer"}},
	}

	_, outcome, err := Reconcile(reqs, assignments, Increment)
	require.ErrorIs(t, err, ErrCapacityUnverified)
	assert.Equal(t, 1, outcome.Expected)
	assert.Equal(t, 0, outcome.Succeeded)

	// 失败时原始数据不受影响
	assert.Equal(t, testRequirements(), reqs)
}

func TestReconcileDecrementNoMatchSucceeds(t *testing.T) {
	reqs := testRequirements()
	assignments := []domain.Assignment{
		{Dates: []string{"2026-12-31"}, TimeSlot: "14:00", RoleIDs: []string{"dealer"}},
	}

	// 取消方向永远不失败，即使一个名额都没核对上
	updated, outcome, err := Reconcile(reqs, assignments, Decrement)
	require.NoError(t, err)
	assert.Equal(t, 0, outcome.Succeeded)
	assert.Equal(t, testRequirements(), updated)
}

func TestReconcilePartialSuccess(t *testing.T) {
	reqs := testRequirements()
	assignments := []domain.Assignment{
		{Dates: []string{"2026-09-01", "2026-12-31"}, TimeSlot: "14:00", RoleIDs: []string{"dealer"}},
	}

	// 部分成功不报错，匹配上的叶子正常核销
	updated, outcome, err := Reconcile(reqs, assignments, Increment)
	require.NoError(t, err)
	assert.Equal(t, 2, outcome.Expected)
	assert.Equal(t, 1, outcome.Succeeded)
	assert.False(t, outcome.FullSuccess())
	assert.Equal(t, int32(1), leafFilled(t, updated, "2026-09-01", domain.StaffRoleDealer))
}

func TestReconcileDateNormalization(t *testing.T) {
	reqs := testRequirements()
	// 报名日期带时间部分，归一化后应与树上的日期匹配
	assignments := []domain.Assignment{
		{Dates: []string{"2026-09-01T08:00:00Z"}, TimeSlot: "14:00~18:00", RoleIDs: []string{"dealer"}},
	}

	updated, outcome, err := Reconcile(reqs, assignments, Increment)
	require.NoError(t, err)
	assert.True(t, outcome.FullSuccess())
	assert.Equal(t, int32(1), leafFilled(t, updated, "2026-09-01", domain.StaffRoleDealer))
}

func TestReconcileCustomRole(t *testing.T) {
	reqs := []domain.DateSpecificRequirement{
		{
			Date: domain.DateFromISO("2026-09-01"),
			TimeSlots: []domain.TimeSlot{
				{
					StartTime: "09:00",
					Roles: []domain.RoleRequirement{
						{Role: domain.StaffRoleOther, CustomRole: "保安", Headcount: 1},
					},
				},
			},
		},
	}
	assignments := []domain.Assignment{
		{Dates: []string{"2026-09-01"}, TimeSlot: "09:00", RoleIDs: []string{"保安"}},
	}

	updated, outcome, err := Reconcile(reqs, assignments, Increment)
	require.NoError(t, err)
	assert.True(t, outcome.FullSuccess())
	assert.Equal(t, int32(1), updated[0].TimeSlots[0].Roles[0].Filled)
}

func TestReconcileTimeToBeAnnouncedSlot(t *testing.T) {
	reqs := []domain.DateSpecificRequirement{
		{
			Date: domain.DateFromISO("2026-09-01"),
			TimeSlots: []domain.TimeSlot{
				{
					IsTimeToBeAnnounced:  true,
					TentativeDescription: "时间另行通知",
					Roles: []domain.RoleRequirement{
						{Role: domain.StaffRoleFloor, Headcount: 2},
					},
				},
			},
		},
	}
	// 时段待定的报名开始时间为空串，和待定时段的空键匹配
	assignments := []domain.Assignment{
		{Dates: []string{"2026-09-01"}, IsTimeToBeAnnounced: true, RoleIDs: []string{"floor"}},
	}

	updated, outcome, err := Reconcile(reqs, assignments, Increment)
	require.NoError(t, err)
	assert.True(t, outcome.FullSuccess())
	assert.Equal(t, int32(1), updated[0].TimeSlots[0].Roles[0].Filled)
}

func TestExpectedUpdates(t *testing.T) {
	assignments := []domain.Assignment{
		{Dates: []string{"2026-09-01", "2026-09-02"}, TimeSlot: "14:00", RoleIDs: []string{"dealer"}},
		{Dates: []string{"2026-09-03"}, TimeSlot: "14:00", RoleIDs: []string{"server"}},
	}

	assert.Equal(t, 3, ExpectedUpdates(assignments))
	assert.Equal(t, 0, ExpectedUpdates(nil))
}

func TestCheckHeadroom(t *testing.T) {
	twoDates := []domain.Assignment{
		{Dates: []string{"2026-09-01", "2026-09-02"}, TimeSlot: "14:00", RoleIDs: []string{"dealer"}},
	}
	oneDate := []domain.Assignment{
		{Dates: []string{"2026-09-01"}, TimeSlot: "14:00", RoleIDs: []string{"dealer"}},
	}

	// 总量 2 已确认 1：两个日期的报名会超出总名额，必须在核销前拦下
	assert.ErrorIs(t, CheckHeadroom(2, 1, twoDates), domain.ErrMaxCapacityReached)

	// 剩余名额刚好够一个日期
	assert.NoError(t, CheckHeadroom(2, 1, oneDate))

	// 刚好占满允许，超过一个都不行
	assert.NoError(t, CheckHeadroom(2, 0, twoDates))
	assert.ErrorIs(t, CheckHeadroom(1, 0, twoDates), domain.ErrMaxCapacityReached)

	// 总量为零表示公告没有可计数的名额，预检不拦截
	assert.NoError(t, CheckHeadroom(0, 0, twoDates))
}

func TestReconcileDoesNotLimitLeafHeadcount(t *testing.T) {
	// Reconcile 对单叶超过 headcount 不做限制，容量约束完全由 CheckHeadroom 承担
	reqs := []domain.DateSpecificRequirement{
		{
			Date: domain.DateFromISO("2026-09-01"),
			TimeSlots: []domain.TimeSlot{
				{
					StartTime: "14:00",
					Roles: []domain.RoleRequirement{
						{Role: domain.StaffRoleDealer, Headcount: 1, Filled: 1},
					},
				},
			},
		},
	}
	assignments := []domain.Assignment{
		{Dates: []string{"2026-09-01"}, TimeSlot: "14:00", RoleIDs: []string{"dealer"}},
	}

	updated, outcome, err := Reconcile(reqs, assignments, Increment)
	require.NoError(t, err)
	assert.True(t, outcome.FullSuccess())
	assert.Equal(t, int32(2), updated[0].TimeSlots[0].Roles[0].Filled)

	// 同样的输入在预检阶段就会被拒绝
	assert.ErrorIs(t, CheckHeadroom(1, 1, assignments), domain.ErrMaxCapacityReached)
}
