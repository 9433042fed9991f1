package scheduler

import "time"

// 排班求解参数
type Parameters struct {
	MinPerShift     int32   // 每个班次每天的最少人数
	MaxRestFraction float64 // 每天允许休息的员工比例上限，取值 (0, 1]
	TimeBudget      float64 // 求解时间预算（秒）
}

const (
	numShifts         = 3
	rotationBlockDays = 28 // 轮转周期长度，每个周期内员工有一个目标班次

	// 目标函数权重，数量级拉开以近似字典序：
	// 当天班次均衡 > 员工班次均衡 > 轮转平滑
	dayBalanceWeight      = 10
	employeeBalanceWeight = 5
	rotationWeight        = 1
)

// Days 展开闭区间 [start, end] 内的所有日期（只保留日期部分）
func Days(start, end time.Time) []time.Time {
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	end = time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)

	days := []time.Time{}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
