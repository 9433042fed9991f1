package domain

import "time"

type RotaPlan struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	// 排班周期为 [StartDate, EndDate] 的闭区间，只取日期部分
	StartDate       time.Time `json:"startDate"`
	EndDate         time.Time `json:"endDate"`
	MinPerShift     int32     `json:"minPerShift"`
	MaxRestFraction float64   `json:"maxRestFraction"`
	CreatedAt       time.Time `json:"createdAt"`
	Version         int32     `json:"-"`
}
