package export

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/sysu-ecnc-dev/rota-manager/backend/internal/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sampleRota() (*domain.RotaPlan, *domain.Rota) {
	plan := &domain.RotaPlan{
		ID:        1,
		Name:      "六月排班",
		StartDate: date(2025, 6, 30),
		EndDate:   date(2025, 7, 2),
	}

	days := []time.Time{date(2025, 6, 30), date(2025, 7, 1), date(2025, 7, 2)}
	rota := &domain.Rota{
		PlanID: 1,
		Days:   days,
		Rows: []domain.RotaRow{
			{EmployeeID: 1, FullName: "张三", Pattern: "A", Codes: []string{"1", "1", "1"}},
			{EmployeeID: 2, FullName: "李四", Pattern: "B", Codes: []string{"W", "2", "2"}},
			{EmployeeID: 3, FullName: "王五", Pattern: "C", Codes: []string{"3", "W", "W"}},
		},
		GeneratedAt: time.Now(),
	}

	return plan, rota
}

func TestRotaEmpty(t *testing.T) {
	plan, rota := sampleRota()
	rota.Rows = nil

	_, _, err := Rota(plan, rota)
	assert.ErrorIs(t, err, ErrEmptyRota)
}

func TestRota(t *testing.T) {
	plan, rota := sampleRota()

	buf, filename, err := Rota(plan, rota)
	require.NoError(t, err)
	assert.Equal(t, "六月排班_20250630_20250702.xlsx", filename)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	// 跨月的周期按月分 Sheet，默认的 Sheet1 被删除
	assert.ElementsMatch(t, []string{"2025-06", "2025-07"}, f.GetSheetList())

	// 六月 Sheet 只有 6 月 30 日一列
	name, err := f.GetCellValue("2025-06", "A1")
	require.NoError(t, err)
	assert.Equal(t, "姓名", name)

	day, err := f.GetCellValue("2025-06", "B1")
	require.NoError(t, err)
	assert.Equal(t, "30", day)

	code, err := f.GetCellValue("2025-06", "B3")
	require.NoError(t, err)
	assert.Equal(t, "W", code)

	// 七月 Sheet 有两列，取李四 7 月 1 日的班次
	day, err = f.GetCellValue("2025-07", "B1")
	require.NoError(t, err)
	assert.Equal(t, "1", day)

	code, err = f.GetCellValue("2025-07", "B3")
	require.NoError(t, err)
	assert.Equal(t, "2", code)

	// 统计行在员工行之后空一行的位置
	label, err := f.GetCellValue("2025-07", "A6")
	require.NoError(t, err)
	assert.Equal(t, "一班人数", label)

	count, err := f.GetCellValue("2025-07", "B6")
	require.NoError(t, err)
	assert.Equal(t, "1", count)

	restLabel, err := f.GetCellValue("2025-07", "A9")
	require.NoError(t, err)
	assert.Equal(t, "休息人数", restLabel)

	restCount, err := f.GetCellValue("2025-07", "B9")
	require.NoError(t, err)
	assert.Equal(t, "1", restCount)
}
