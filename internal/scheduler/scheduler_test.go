package scheduler

import (
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sysu-ecnc-dev/rota-manager/backend/internal/domain"
)

func makeEmployees(n int) []*domain.User {
	employees := make([]*domain.User, n)
	for i := range employees {
		employees[i] = &domain.User{
			ID:       int64(i + 1),
			Username: fmt.Sprintf("emp%02d", i+1),
			FullName: fmt.Sprintf("员工%02d", i+1),
		}
	}
	return employees
}

func defaultParameters() *Parameters {
	return &Parameters{
		MinPerShift:     1,
		MaxRestFraction: 0.3,
		TimeBudget:      30,
	}
}

func TestNewValidation(t *testing.T) {
	start, end := date(2025, 6, 2), date(2025, 6, 15)

	t.Run("没有员工", func(t *testing.T) {
		_, err := New(defaultParameters(), nil, start, end)
		assert.ErrorIs(t, err, ErrNoEmployees)
	})

	t.Run("每班最少人数非法", func(t *testing.T) {
		parameters := defaultParameters()
		parameters.MinPerShift = 0
		_, err := New(parameters, makeEmployees(7), start, end)
		assert.ErrorIs(t, err, ErrInvalidParameters)
	})

	t.Run("休息比例上限非法", func(t *testing.T) {
		for _, fraction := range []float64{0, -0.1, 1.5} {
			parameters := defaultParameters()
			parameters.MaxRestFraction = fraction
			_, err := New(parameters, makeEmployees(7), start, end)
			assert.ErrorIs(t, err, ErrInvalidParameters)
		}
	})

	t.Run("结束日期早于开始日期", func(t *testing.T) {
		_, err := New(defaultParameters(), makeEmployees(7), end, start)
		assert.ErrorIs(t, err, ErrInvalidHorizon)
	})

	t.Run("固定周休超出休息人数上限", func(t *testing.T) {
		// 7 人正好覆盖 7 种周休模式，每天恰好 2 人休息，
		// 上限 ceil(0.1*7)=1 必然被突破
		parameters := defaultParameters()
		parameters.MaxRestFraction = 0.1
		_, err := New(parameters, makeEmployees(7), start, end)
		assert.ErrorIs(t, err, ErrRestCapExceeded)
	})
}

func TestResolveStartShifts(t *testing.T) {
	employees := makeEmployees(5)
	employees[0].StartingShift = 0 // 未填写，轮转补 1
	employees[1].StartingShift = 2
	employees[2].StartingShift = 0 // 未填写，轮转补 2
	employees[3].StartingShift = 5 // 非法值同样走轮转，补 3
	employees[4].StartingShift = 3

	assert.Equal(t, []int{0, 1, 1, 2, 2}, resolveStartShifts(employees))
}

func TestScheduleSmall(t *testing.T) {
	employees := makeEmployees(7)
	start, end := date(2025, 6, 2), date(2025, 6, 15)

	s, err := New(defaultParameters(), employees, start, end)
	require.NoError(t, err)

	rota, err := s.Schedule()
	require.NoError(t, err)
	require.Len(t, rota.Days, 14)
	require.Len(t, rota.Rows, 7)

	for e, row := range rota.Rows {
		assert.Equal(t, employees[e].ID, row.EmployeeID)
		assert.Equal(t, PatternLabel(e%7), row.Pattern)
		require.Len(t, row.Codes, 14)

		// 休息日必须是 W，工作日必须是 1~3
		for d := range rota.Days {
			if s.rest[e][d] {
				assert.Equal(t, domain.CodeRest, row.Codes[d])
			} else {
				assert.Contains(t, []string{"1", "2", "3"}, row.Codes[d])
			}
		}

		// 相邻工作日班次保持不变
		for d := 0; d < len(rota.Days)-1; d++ {
			if !s.rest[e][d] && !s.rest[e][d+1] {
				assert.Equal(t, row.Codes[d], row.Codes[d+1],
					"员工 %s 第 %d 天和第 %d 天班次不连续", row.FullName, d, d+1)
			}
		}
	}

	// 每天每个班次至少有 MinPerShift 人
	for d := range rota.Days {
		counts := map[string]int{}
		for _, row := range rota.Rows {
			counts[row.Codes[d]]++
		}
		for sh := 1; sh <= 3; sh++ {
			assert.GreaterOrEqual(t, counts[strconv.Itoa(sh)], 1, "第 %d 天班次 %d 人数不足", d, sh)
		}
	}
}

func TestScheduleOneWeekAllPatterns(t *testing.T) {
	// 7 人一周，每种周休模式恰好一人，每人恰好休 2 天
	employees := makeEmployees(7)

	s, err := New(defaultParameters(), employees, date(2025, 6, 2), date(2025, 6, 8))
	require.NoError(t, err)

	rota, err := s.Schedule()
	require.NoError(t, err)

	patterns := map[string]int{}
	for _, row := range rota.Rows {
		patterns[row.Pattern]++

		restDays := 0
		for _, code := range row.Codes {
			if code == domain.CodeRest {
				restDays++
			}
		}
		assert.Equal(t, 2, restDays, "员工 %s", row.FullName)
	}

	for _, label := range []string{"A", "B", "C", "D", "E", "F", "G"} {
		assert.Equal(t, 1, patterns[label])
	}
}

func TestScheduleInfeasible(t *testing.T) {
	t.Run("一个员工覆盖不了三个班次", func(t *testing.T) {
		parameters := defaultParameters()
		parameters.MaxRestFraction = 1

		s, err := New(parameters, makeEmployees(1), date(2025, 6, 2), date(2025, 6, 8))
		require.NoError(t, err)

		_, err = s.Schedule()
		assert.ErrorIs(t, err, ErrInfeasible)
	})

	t.Run("人数不足以满足每班下限", func(t *testing.T) {
		parameters := defaultParameters()
		parameters.MinPerShift = 2
		parameters.MaxRestFraction = 1

		s, err := New(parameters, makeEmployees(2), date(2025, 6, 2), date(2025, 6, 8))
		require.NoError(t, err)

		_, err = s.Schedule()
		assert.ErrorIs(t, err, ErrInfeasible)
	})
}

func TestRotationTarget(t *testing.T) {
	// 同一个周期内目标班次不变
	assert.Equal(t, 0, rotationTarget(0, 0))
	assert.Equal(t, 0, rotationTarget(0, 27))

	// 周期边界处目标班次顺延一个
	assert.Equal(t, 1, rotationTarget(0, 28))
	assert.Equal(t, 2, rotationTarget(0, 56))

	// mod 3 回绕
	assert.Equal(t, 0, rotationTarget(2, 28))
	assert.Equal(t, 1, rotationTarget(2, 56))
	assert.Equal(t, 2, rotationTarget(1, 28))
}

func TestScheduleFollowsRotationTargets(t *testing.T) {
	// 周三到周五的三天周期里每个员工只有一段连续工作日，
	// 班次安排对员工均衡没有影响；起始班次又恰好让每天的
	// 人数分布在完全遵循目标班次时达到 2/2/1 的最优均衡，
	// 所以唯一的最优解就是每人都上自己的起始班次
	employees := makeEmployees(7)
	for i, sh := range []int32{1, 2, 3, 1, 2, 1, 2} {
		employees[i].StartingShift = sh
	}

	solve := func() *domain.Rota {
		s, err := New(defaultParameters(), employees, date(2025, 6, 4), date(2025, 6, 6))
		require.NoError(t, err)

		rota, err := s.Schedule()
		require.NoError(t, err)
		require.Len(t, rota.Days, 3)

		for e, row := range rota.Rows {
			want := strconv.Itoa(int(employees[e].StartingShift))
			for d, code := range row.Codes {
				if code == domain.CodeRest {
					continue
				}
				assert.Equal(t, want, code, "员工 %s 第 %d 天", row.FullName, d)
			}
		}

		return rota
	}

	first := solve()

	// 相同输入再求解一次，最优解唯一，结果必须完全一致
	second := solve()
	for e := range first.Rows {
		assert.Equal(t, first.Rows[e].Codes, second.Rows[e].Codes)
	}
}

func TestScheduleTwoRotationBlocks(t *testing.T) {
	// 56 天横跨两个轮转周期，班次只会在休息日之后变化
	employees := makeEmployees(7)
	parameters := defaultParameters()
	parameters.TimeBudget = 60

	s, err := New(parameters, employees, date(2025, 6, 2), date(2025, 7, 27))
	require.NoError(t, err)

	rota, err := s.Schedule()
	require.NoError(t, err)
	require.Len(t, rota.Days, 56)

	for e, row := range rota.Rows {
		for d := 0; d < len(rota.Days)-1; d++ {
			if !s.rest[e][d] && !s.rest[e][d+1] {
				assert.Equal(t, row.Codes[d], row.Codes[d+1])
			}
		}
	}

	// 长周期下人数下限依然每天成立
	for d := range rota.Days {
		counts := map[string]int{}
		for _, row := range rota.Rows {
			counts[row.Codes[d]]++
		}
		for sh := 1; sh <= 3; sh++ {
			assert.GreaterOrEqual(t, counts[strconv.Itoa(sh)], 1)
		}
	}
}
