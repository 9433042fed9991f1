package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWeekdayIndex(t *testing.T) {
	// 2025-06-02 是周一
	assert.Equal(t, 0, weekdayIndex(date(2025, 6, 2)))
	assert.Equal(t, 3, weekdayIndex(date(2025, 6, 5)))
	assert.Equal(t, 5, weekdayIndex(date(2025, 6, 7)))
	assert.Equal(t, 6, weekdayIndex(date(2025, 6, 8)))
}

func TestAssignPatterns(t *testing.T) {
	teams := assignPatterns(10)
	require.Len(t, teams, 10)

	for i, team := range teams {
		assert.Equal(t, i%7, team)
	}
}

func TestPatternLabel(t *testing.T) {
	assert.Equal(t, "A", PatternLabel(0))
	assert.Equal(t, "G", PatternLabel(6))
}

func TestBuildRestMatrix(t *testing.T) {
	// 两周，从周一开始
	days := Days(date(2025, 6, 2), date(2025, 6, 15))
	require.Len(t, days, 14)

	// 模式 A（周六日休）和模式 C（周一二休）各一人
	rest := buildRestMatrix([]int{0, 2}, days)
	require.Len(t, rest, 2)

	for d, day := range days {
		wd := weekdayIndex(day)
		assert.Equal(t, wd == 5 || wd == 6, rest[0][d], "模式 A 第 %d 天", d)
		assert.Equal(t, wd == 0 || wd == 1, rest[1][d], "模式 C 第 %d 天", d)
	}

	// 每人每周休息两天
	for e := range rest {
		cnt := 0
		for d := range rest[e] {
			if rest[e][d] {
				cnt++
			}
		}
		assert.Equal(t, 4, cnt)
	}
}

func TestMaxRestAllowed(t *testing.T) {
	assert.Equal(t, 3, maxRestAllowed(0.3, 7))
	assert.Equal(t, 3, maxRestAllowed(0.3, 10))
	assert.Equal(t, 2, maxRestAllowed(0.5, 3))
	assert.Equal(t, 7, maxRestAllowed(1, 7))
}

func TestDays(t *testing.T) {
	days := Days(date(2025, 6, 2), date(2025, 6, 2))
	require.Len(t, days, 1)

	days = Days(date(2025, 6, 2), date(2025, 6, 8))
	require.Len(t, days, 7)
	assert.Equal(t, date(2025, 6, 2), days[0])
	assert.Equal(t, date(2025, 6, 8), days[6])

	// 时间部分会被归一化掉
	days = Days(
		time.Date(2025, 6, 2, 15, 30, 0, 0, time.UTC),
		time.Date(2025, 6, 3, 1, 0, 0, 0, time.UTC),
	)
	require.Len(t, days, 2)
	assert.Equal(t, date(2025, 6, 2), days[0])

	assert.Empty(t, Days(date(2025, 6, 2), date(2025, 6, 1)))
}
