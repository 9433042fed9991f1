package utils

import (
	"fmt"

	"github.com/sysu-ecnc-dev/rota-manager/backend/internal/domain"
)

func ValidateRotaPlan(plan *domain.RotaPlan) error {
	if plan.EndDate.Before(plan.StartDate) {
		return fmt.Errorf("结束日期不能早于开始日期")
	}

	if plan.MinPerShift < 1 {
		return fmt.Errorf("每班最少人数必须大于等于 1")
	}

	if plan.MaxRestFraction <= 0 || plan.MaxRestFraction > 1 {
		return fmt.Errorf("休息比例上限必须在 (0, 1] 之间")
	}

	return nil
}

// ValidateRotaAgainstPlan 校验排班表和计划是否匹配
// 主要用于从缓存中取出的排班表，防止计划被修改后还在用旧的结果
func ValidateRotaAgainstPlan(rota *domain.Rota, plan *domain.RotaPlan) error {
	if rota.PlanID != plan.ID {
		return fmt.Errorf("排班表所属的计划 %d 和当前计划 %d 不一致", rota.PlanID, plan.ID)
	}

	if len(rota.Days) == 0 {
		return fmt.Errorf("排班表中没有任何日期")
	}

	if !rota.Days[0].Equal(plan.StartDate) || !rota.Days[len(rota.Days)-1].Equal(plan.EndDate) {
		return fmt.Errorf("排班表的日期范围和计划不一致，请重新生成")
	}

	for i, row := range rota.Rows {
		if len(row.Codes) != len(rota.Days) {
			return fmt.Errorf("第 %d 行的代码数量和日期数量不一致", i+1)
		}
	}

	return nil
}
