package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sysu-ecnc-dev/rota-manager/backend/internal/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func validPlan() *domain.RotaPlan {
	return &domain.RotaPlan{
		ID:              1,
		Name:            "测试计划",
		StartDate:       date(2025, 6, 2),
		EndDate:         date(2025, 6, 15),
		MinPerShift:     1,
		MaxRestFraction: 0.3,
	}
}

func TestValidateRotaPlan(t *testing.T) {
	require.NoError(t, ValidateRotaPlan(validPlan()))

	plan := validPlan()
	plan.EndDate = date(2025, 6, 1)
	assert.Error(t, ValidateRotaPlan(plan))

	plan = validPlan()
	plan.MinPerShift = 0
	assert.Error(t, ValidateRotaPlan(plan))

	plan = validPlan()
	plan.MaxRestFraction = 0
	assert.Error(t, ValidateRotaPlan(plan))

	plan = validPlan()
	plan.MaxRestFraction = 1.2
	assert.Error(t, ValidateRotaPlan(plan))
}

func TestValidateRotaAgainstPlan(t *testing.T) {
	plan := validPlan()

	days := []time.Time{}
	for d := plan.StartDate; !d.After(plan.EndDate); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}

	rota := &domain.Rota{
		PlanID: plan.ID,
		Days:   days,
		Rows: []domain.RotaRow{
			{EmployeeID: 1, FullName: "张三", Pattern: "A", Codes: make([]string, len(days))},
		},
	}

	require.NoError(t, ValidateRotaAgainstPlan(rota, plan))

	t.Run("计划不一致", func(t *testing.T) {
		other := validPlan()
		other.ID = 2
		assert.Error(t, ValidateRotaAgainstPlan(rota, other))
	})

	t.Run("日期范围被修改", func(t *testing.T) {
		other := validPlan()
		other.EndDate = date(2025, 6, 22)
		assert.Error(t, ValidateRotaAgainstPlan(rota, other))
	})

	t.Run("代码数量不一致", func(t *testing.T) {
		broken := *rota
		broken.Rows = []domain.RotaRow{
			{EmployeeID: 1, FullName: "张三", Pattern: "A", Codes: []string{"1"}},
		}
		assert.Error(t, ValidateRotaAgainstPlan(&broken, plan))
	})
}
