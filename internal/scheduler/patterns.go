package scheduler

import (
	"math"
	"time"
)

// 七种周休模式 A~G，每种模式是一对每周固定的休息日
// 星期编号采用 0=周一 ... 6=周日
var offPatterns = [7][2]int{
	{5, 6}, // A: 周六、周日
	{6, 0}, // B: 周日、周一
	{0, 1}, // C: 周一、周二
	{1, 2}, // D: 周二、周三
	{2, 3}, // E: 周三、周四
	{3, 4}, // F: 周四、周五
	{4, 5}, // G: 周五、周六
}

var patternLabels = [7]string{"A", "B", "C", "D", "E", "F", "G"}

// PatternLabel 返回第 team 种周休模式的标签（A~G）
func PatternLabel(team int) string {
	return patternLabels[team]
}

// weekdayIndex 把 time.Weekday（周日为 0）换算成周一为 0 的编号
func weekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// assignPatterns 按 员工下标 mod 7 把员工均匀分配到七种周休模式上
// 这一步是确定性的预计算，不属于求解器的决策
func assignPatterns(numEmployees int) []int {
	teams := make([]int, numEmployees)
	for i := range teams {
		teams[i] = i % len(offPatterns)
	}
	return teams
}

// buildRestMatrix 展开周休模式：rest[e][d] = true 表示员工 e 在第 d 天休息
func buildRestMatrix(teams []int, days []time.Time) [][]bool {
	rest := make([][]bool, len(teams))
	for e := range teams {
		off1, off2 := offPatterns[teams[e]][0], offPatterns[teams[e]][1]
		rest[e] = make([]bool, len(days))
		for d, day := range days {
			wd := weekdayIndex(day)
			rest[e][d] = wd == off1 || wd == off2
		}
	}
	return rest
}

// maxRestAllowed 每天允许休息的人数上限 ceil(fraction * E)
func maxRestAllowed(fraction float64, numEmployees int) int {
	return int(math.Ceil(fraction * float64(numEmployees)))
}
