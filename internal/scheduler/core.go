package scheduler

import (
	"fmt"

	"github.com/google/or-tools/ortools/sat/go/cpmodel"
)

// rotaModel 持有约束模型和所有的决策变量
// vars[e][d][s] = true 表示员工 e 在第 d 天上第 s 个班次
type rotaModel struct {
	builder *cpmodel.Builder
	vars    [][][]cpmodel.BoolVar
}

// buildModel 创建所有决策变量并编码硬约束
func (s *Scheduler) buildModel() *rotaModel {
	builder := cpmodel.NewCpModelBuilder()
	numEmployees := len(s.employees)
	numDays := len(s.days)

	vars := make([][][]cpmodel.BoolVar, numEmployees)
	for e := 0; e < numEmployees; e++ {
		vars[e] = make([][]cpmodel.BoolVar, numDays)
		for d := 0; d < numDays; d++ {
			vars[e][d] = make([]cpmodel.BoolVar, numShifts)
			for sh := 0; sh < numShifts; sh++ {
				vars[e][d][sh] = builder.NewBoolVar().WithName(fmt.Sprintf("x_e%d_d%d_s%d", e, d, sh))
			}
		}
	}

	// 1) 休息日强制不排班，工作日恰好上一个班次
	for e := 0; e < numEmployees; e++ {
		for d := 0; d < numDays; d++ {
			if s.rest[e][d] {
				for sh := 0; sh < numShifts; sh++ {
					builder.AddEquality(vars[e][d][sh], cpmodel.NewConstant(0))
				}
			} else {
				builder.AddExactlyOne(vars[e][d]...)
			}
		}
	}

	// 2) 相邻两个工作日必须是同一个班次
	// 周休模式保证了每周有两个连续的休息日，换班只会发生在休息日之后
	for e := 0; e < numEmployees; e++ {
		for d := 0; d < numDays-1; d++ {
			if !s.rest[e][d] && !s.rest[e][d+1] {
				for sh := 0; sh < numShifts; sh++ {
					builder.AddEquality(vars[e][d][sh], vars[e][d+1][sh])
				}
			}
		}
	}

	// 3) 每个班次每天的人数下限
	// 员工人数相对于下限不足时，这是最容易导致无解的约束
	for d := 0; d < numDays; d++ {
		for sh := 0; sh < numShifts; sh++ {
			total := cpmodel.NewLinearExpr()
			for e := 0; e < numEmployees; e++ {
				total.Add(vars[e][d][sh])
			}
			builder.AddGreaterOrEqual(total, cpmodel.NewConstant(int64(s.parameters.MinPerShift)))
		}
	}

	// 每日休息人数上限不在这里编码：休息矩阵在求解前就已经固定，
	// 对应的校验在 New 中提前完成，见 validateRestCap

	return &rotaModel{
		builder: builder,
		vars:    vars,
	}
}

// rotationTarget 第 d 天的目标班次（0-based）
// 每过一个 28 天的轮转周期，目标班次往后顺延一个
func rotationTarget(startShift, day int) int {
	block := day / rotationBlockDays
	return (startShift + block) % numShifts
}

// composeObjective 声明三类软目标的辅助变量并组合成加权最小化目标
func (s *Scheduler) composeObjective(m *rotaModel) {
	numEmployees := len(s.employees)
	numDays := len(s.days)

	obj := cpmodel.NewLinearExpr()

	// A) 当天各班次人数尽量均衡：对每天的每一对班次取人数差的绝对值
	for d := 0; d < numDays; d++ {
		totals := make([]cpmodel.IntVar, numShifts)
		for sh := 0; sh < numShifts; sh++ {
			t := m.builder.NewIntVar(0, int64(numEmployees)).WithName(fmt.Sprintf("day_tot_d%d_s%d", d, sh))
			sum := cpmodel.NewLinearExpr()
			for e := 0; e < numEmployees; e++ {
				sum.Add(m.vars[e][d][sh])
			}
			m.builder.AddEquality(t, sum)
			totals[sh] = t
		}
		for i := 0; i < numShifts; i++ {
			for j := i + 1; j < numShifts; j++ {
				diff := m.builder.NewIntVar(0, int64(numEmployees)).WithName(fmt.Sprintf("day_diff_d%d_%d%d", d, i, j))
				m.builder.AddAbsEquality(diff, cpmodel.NewLinearExpr().Add(totals[i]).AddTerm(totals[j], -1))
				obj.AddTerm(diff, dayBalanceWeight)
			}
		}
	}

	// B) 每个员工上各班次的天数尽量均衡，避免长期固定在一个班次上
	for e := 0; e < numEmployees; e++ {
		totals := make([]cpmodel.IntVar, numShifts)
		for sh := 0; sh < numShifts; sh++ {
			t := m.builder.NewIntVar(0, int64(numDays)).WithName(fmt.Sprintf("emp_tot_e%d_s%d", e, sh))
			sum := cpmodel.NewLinearExpr()
			for d := 0; d < numDays; d++ {
				sum.Add(m.vars[e][d][sh])
			}
			m.builder.AddEquality(t, sum)
			totals[sh] = t
		}
		for i := 0; i < numShifts; i++ {
			for j := i + 1; j < numShifts; j++ {
				diff := m.builder.NewIntVar(0, int64(numDays)).WithName(fmt.Sprintf("emp_diff_e%d_%d%d", e, i, j))
				m.builder.AddAbsEquality(diff, cpmodel.NewLinearExpr().Add(totals[i]).AddTerm(totals[j], -1))
				obj.AddTerm(diff, employeeBalanceWeight)
			}
		}
	}

	// C) 28 天轮转：工作日上的班次和目标班次不一致时罚 1 分，休息日不罚
	for e := 0; e < numEmployees; e++ {
		for d := 0; d < numDays; d++ {
			target := rotationTarget(s.startShifts[e], d)

			match := m.builder.NewBoolVar().WithName(fmt.Sprintf("match_e%d_d%d", e, d))
			if s.rest[e][d] {
				m.builder.AddEquality(match, cpmodel.NewConstant(1))
			} else {
				m.builder.AddEquality(match, m.vars[e][d][target])
			}

			pen := m.builder.NewIntVar(0, 1).WithName(fmt.Sprintf("rot_pen_e%d_d%d", e, d))
			m.builder.AddEquality(pen, cpmodel.NewConstant(1).AddTerm(match, -1))
			obj.AddTerm(pen, rotationWeight)
		}
	}

	m.builder.Minimize(obj)
}
