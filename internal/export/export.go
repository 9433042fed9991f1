package export

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/sysu-ecnc-dev/rota-manager/backend/internal/domain"
)

var ErrEmptyRota = errors.New("排班表为空，无法导出")

// 不同代码的底色，方便一眼看出班次分布
var codeColors = map[string]string{
	domain.CodeShift1: "CCFFCC", // 浅绿
	domain.CodeShift2: "CCE5FF", // 浅蓝
	domain.CodeShift3: "FFCCCC", // 浅红
	domain.CodeRest:   "FFF2CC", // 浅黄
}

var totalRows = []struct {
	Label string
	Code  string
}{
	{"一班人数", domain.CodeShift1},
	{"二班人数", domain.CodeShift2},
	{"三班人数", domain.CodeShift3},
	{"休息人数", domain.CodeRest},
}

// Rota 把排班表渲染成 xlsx：按月分 Sheet，每行一个员工，
// 底部追加每天各班次和休息的人数统计
// 返回文件内容和建议的文件名
func Rota(plan *domain.RotaPlan, rota *domain.Rota) (*bytes.Buffer, string, error) {
	if len(rota.Rows) == 0 || len(rota.Days) == 0 {
		return nil, "", ErrEmptyRota
	}

	f := excelize.NewFile()
	defer f.Close()

	// 按 (年, 月) 分组，记录每天在整个周期中的下标
	type monthDay struct {
		day    time.Time
		global int
	}
	monthMap := make(map[string][]monthDay)
	monthKeys := []string{}
	for idx, day := range rota.Days {
		key := day.Format("2006-01")
		if _, exists := monthMap[key]; !exists {
			monthKeys = append(monthKeys, key)
		}
		monthMap[key] = append(monthMap[key], monthDay{day: day, global: idx})
	}
	sort.Strings(monthKeys)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, "", err
	}

	codeStyles := make(map[string]int, len(codeColors))
	for code, color := range codeColors {
		styleID, err := f.NewStyle(&excelize.Style{
			Fill:      excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		})
		if err != nil {
			return nil, "", err
		}
		codeStyles[code] = styleID
	}

	for _, key := range monthKeys {
		dayList := monthMap[key]

		if _, err := f.NewSheet(key); err != nil {
			return nil, "", err
		}

		// 表头：姓名 + 每天的日
		if err := f.SetCellValue(key, "A1", "姓名"); err != nil {
			return nil, "", err
		}
		for c, md := range dayList {
			cell, err := excelize.CoordinatesToCellName(c+2, 1)
			if err != nil {
				return nil, "", err
			}
			if err := f.SetCellValue(key, cell, md.day.Day()); err != nil {
				return nil, "", err
			}
		}
		lastCol, err := excelize.ColumnNumberToName(len(dayList) + 1)
		if err != nil {
			return nil, "", err
		}
		if err := f.SetCellStyle(key, "A1", fmt.Sprintf("%s1", lastCol), headerStyle); err != nil {
			return nil, "", err
		}

		// 员工行
		for r, row := range rota.Rows {
			nameCell, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return nil, "", err
			}
			if err := f.SetCellValue(key, nameCell, row.FullName); err != nil {
				return nil, "", err
			}

			for c, md := range dayList {
				cell, err := excelize.CoordinatesToCellName(c+2, r+2)
				if err != nil {
					return nil, "", err
				}
				code := row.Codes[md.global]
				if err := f.SetCellValue(key, cell, code); err != nil {
					return nil, "", err
				}
				if styleID, exists := codeStyles[code]; exists {
					if err := f.SetCellStyle(key, cell, cell, styleID); err != nil {
						return nil, "", err
					}
				}
			}
		}

		// 统计行：每天各班次与休息的人数
		baseRow := len(rota.Rows) + 3
		for i, tr := range totalRows {
			labelCell, err := excelize.CoordinatesToCellName(1, baseRow+i)
			if err != nil {
				return nil, "", err
			}
			if err := f.SetCellValue(key, labelCell, tr.Label); err != nil {
				return nil, "", err
			}
			if err := f.SetCellStyle(key, labelCell, labelCell, headerStyle); err != nil {
				return nil, "", err
			}

			for c, md := range dayList {
				count := 0
				for _, row := range rota.Rows {
					if row.Codes[md.global] == tr.Code {
						count++
					}
				}
				cell, err := excelize.CoordinatesToCellName(c+2, baseRow+i)
				if err != nil {
					return nil, "", err
				}
				if err := f.SetCellValue(key, cell, count); err != nil {
					return nil, "", err
				}
			}
		}

		// 列宽：姓名列加宽，日期列收窄
		if err := f.SetColWidth(key, "A", "A", 24); err != nil {
			return nil, "", err
		}
		secondCol, err := excelize.ColumnNumberToName(2)
		if err != nil {
			return nil, "", err
		}
		if err := f.SetColWidth(key, secondCol, lastCol, 4); err != nil {
			return nil, "", err
		}
	}

	// 删除默认的 Sheet1，只保留月份 Sheet
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, "", err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("%s_%s_%s.xlsx",
		plan.Name, plan.StartDate.Format("20060102"), plan.EndDate.Format("20060102"))

	return buf, filename, nil
}
