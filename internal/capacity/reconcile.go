package capacity

import (
	"errors"
	"log/slog"

	"github.com/staffpool-dev/staff-marketplace/backend/internal/domain"
)

type Operation string

const (
	Increment Operation = "increment"
	Decrement Operation = "decrement"
)

// ErrCapacityUnverified 表示确认报名时没有任何名额能在需求树中核对上
// 此时继续确认会在无法验证的名额上超卖，必须让调用方中止事务
var ErrCapacityUnverified = errors.New("无法核对任何名额，请刷新公告数据后重试")

// Outcome 记录一次核销中预期和实际成功的叶子更新数量
type Outcome struct {
	Expected  int
	Succeeded int
}

func (o Outcome) FullSuccess() bool {
	return o.Expected > 0 && o.Succeeded == o.Expected
}

// ExpectedUpdates 返回一次核销会产生的预期叶子更新数量，每个 assignment 的每个日期算一个
func ExpectedUpdates(assignments []domain.Assignment) int {
	n := 0
	for _, a := range assignments {
		n += len(a.Dates)
	}
	return n
}

// CheckHeadroom 是确认报名前的容量预检。Reconcile 本身不限制单个叶子的
// filled 超过 headcount，所以必须在核销前用总量拦住超额确认：
// 已确认人数加上本次要占用的名额数不能超过总名额
func CheckHeadroom(total, filled int32, assignments []domain.Assignment) error {
	if total <= 0 {
		return nil
	}
	if int(filled)+ExpectedUpdates(assignments) > int(total) {
		return domain.ErrMaxCapacityReached
	}
	return nil
}

// Reconcile 根据报名核销需求树上的已确认名额
//
// 每个 assignment 的每个日期算一次预期更新。匹配成功的叶子在 increment 时 +1，
// 在 decrement 时减 1 并保底为 0（重复取消不会把 filled 减成负数）。
//
// 失败策略按方向不对称：
//   - increment 且全部落空：返回 ErrCapacityUnverified，调用方不得创建工作记录；
//   - decrement 且全部落空：只记录异常日志，取消流程永远允许完成；
//   - 部分成功：两个方向都不中断，记录成功/预期数量的警告并返回部分更新后的树。
//
// 函数是纯的：输入树不会被修改，返回的是深拷贝后核销完成的新树
func Reconcile(reqs []domain.DateSpecificRequirement, assignments []domain.Assignment, op Operation) ([]domain.DateSpecificRequirement, Outcome, error) {
	updated := cloneRequirements(reqs)
	outcome := Outcome{}

	for _, assignment := range assignments {
		roleLabel := assignment.PrimaryRole()
		startKey := assignment.StartKey()

		for _, date := range assignment.Dates {
			outcome.Expected++

			leaf := findLeaf(updated, date, startKey, roleLabel)
			if leaf == nil {
				slog.Warn("名额核销未找到对应的叶子节点",
					"operation", string(op),
					"date", date,
					"startTime", startKey,
					"role", roleLabel,
				)
				continue
			}

			switch op {
			case Increment:
				leaf.Filled++
			case Decrement:
				if leaf.Filled > 0 {
					leaf.Filled--
				} else {
					slog.Warn("取消确认时名额已为零，保持不变",
						"date", date,
						"startTime", startKey,
						"role", roleLabel,
					)
				}
			}

			outcome.Succeeded++
		}
	}

	if outcome.Expected > 0 && outcome.Succeeded == 0 {
		if op == Increment {
			return nil, outcome, ErrCapacityUnverified
		}
		// 取消方向不允许被记账问题阻塞，否则求职者会卡在已确认状态
		slog.Warn("取消确认时所有名额均未核对上",
			"expected", outcome.Expected,
		)
		return updated, outcome, nil
	}

	if outcome.Succeeded < outcome.Expected {
		slog.Warn("名额核销部分成功",
			"operation", string(op),
			"expected", outcome.Expected,
			"succeeded", outcome.Succeeded,
		)
	}

	return updated, outcome, nil
}
