package domain

import "time"

// 单元格代码："1"、"2"、"3" 表示班次，"W" 表示休息
const (
	CodeShift1 = "1"
	CodeShift2 = "2"
	CodeShift3 = "3"
	CodeRest   = "W"
)

type RotaRow struct {
	EmployeeID int64    `json:"employeeID"`
	FullName   string   `json:"fullName"`
	Pattern    string   `json:"pattern"` // 周休模式标签 A~G
	Codes      []string `json:"codes"`   // 每天一个代码，顺序和 Days 一致
}

type Rota struct {
	PlanID      int64       `json:"planID"`
	Days        []time.Time `json:"days"`
	Rows        []RotaRow   `json:"rows"`
	Objective   int64       `json:"objective"` // 求解器的目标函数值，仅作参考
	GeneratedAt time.Time   `json:"generatedAt"`
}
