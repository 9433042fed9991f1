package domain

import (
	"time"
)

type Role string

const (
	RoleEmployee Role = "普通员工"
	RoleAdmin    Role = "管理员"
)

type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	FullName     string `json:"fullName"`
	Email        string `json:"email"`
	Role         Role   `json:"role"`
	// 起始班次偏好，取值 1~3，0 表示未填写（排班时会按轮转顺序补齐）
	StartingShift int32     `json:"startingShift"`
	IsActive      bool      `json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
	Version       int32     `json:"-"`
}
