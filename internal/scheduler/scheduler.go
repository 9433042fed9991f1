package scheduler

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/or-tools/ortools/sat/go/cpmodel"
	cmpb "github.com/google/or-tools/ortools/sat/proto/cpmodel"
	sppb "github.com/google/or-tools/ortools/sat/proto/satparameters"
	"google.golang.org/protobuf/proto"

	"github.com/sysu-ecnc-dev/rota-manager/backend/internal/domain"
)

var (
	ErrNoEmployees       = errors.New("员工列表为空")
	ErrInvalidHorizon    = errors.New("结束日期不能早于开始日期")
	ErrInvalidParameters = errors.New("排班参数非法")
	ErrRestCapExceeded   = errors.New("固定周休安排超出了每日休息人数上限")
	// 两种失败要区分开：前者说明约束本身无解（需要放宽参数），
	// 后者只是在预算内没有找到解（可以提高时间预算再试）
	ErrInfeasible         = errors.New("不存在可行的排班方案，请降低每班最少人数或增加员工")
	ErrNoSolutionInBudget = errors.New("在时间预算内没有找到可行的排班方案，可以提高时间预算后重试")
)

type Scheduler struct {
	parameters  *Parameters
	employees   []*domain.User
	days        []time.Time
	startShifts []int    // 每个员工的起始班次（内部用 0-based）
	teams       []int    // 每个员工的周休模式编号
	rest        [][]bool // rest[e][d] = true 表示员工 e 在第 d 天休息
}

func New(parameters *Parameters, employees []*domain.User, startDate, endDate time.Time) (*Scheduler, error) {
	if len(employees) == 0 {
		return nil, ErrNoEmployees
	}
	if parameters.MinPerShift < 1 {
		return nil, fmt.Errorf("%w：每班最少人数必须大于等于 1", ErrInvalidParameters)
	}
	if parameters.MaxRestFraction <= 0 || parameters.MaxRestFraction > 1 {
		return nil, fmt.Errorf("%w：休息比例上限必须在 (0, 1] 之间", ErrInvalidParameters)
	}

	days := Days(startDate, endDate)
	if len(days) == 0 {
		return nil, ErrInvalidHorizon
	}

	s := &Scheduler{
		parameters:  parameters,
		employees:   employees,
		days:        days,
		startShifts: resolveStartShifts(employees),
		teams:       assignPatterns(len(employees)),
	}
	s.rest = buildRestMatrix(s.teams, s.days)

	// 休息矩阵在求解前就已经固定，上限在这里就能校验，
	// 避免把一个注定无解的模型交给求解器白跑一次
	if err := s.validateRestCap(); err != nil {
		return nil, err
	}

	return s, nil
}

// resolveStartShifts 解析每个员工的起始班次偏好
// 没有填写或超出 1~3 范围的，按 1,2,3,1,2,3... 的顺序轮转补齐
func resolveStartShifts(employees []*domain.User) []int {
	shifts := make([]int, len(employees))
	cur := int32(1)
	for i, emp := range employees {
		sh := emp.StartingShift
		if sh < 1 || sh > numShifts {
			sh = cur
			cur = 1 + cur%numShifts
		}
		shifts[i] = int(sh - 1)
	}
	return shifts
}

func (s *Scheduler) validateRestCap() error {
	maxRest := maxRestAllowed(s.parameters.MaxRestFraction, len(s.employees))
	for d := range s.days {
		cnt := 0
		for e := range s.employees {
			if s.rest[e][d] {
				cnt++
			}
		}
		if cnt > maxRest {
			return fmt.Errorf("%w：%s 有 %d 人休息，上限为 %d",
				ErrRestCapExceeded, s.days[d].Format("2006-01-02"), cnt, maxRest)
		}
	}
	return nil
}

// Schedule 构建约束模型并求解，返回整个周期的排班表
// 这是一个同步阻塞调用，最长会运行 Parameters.TimeBudget 秒
func (s *Scheduler) Schedule() (*domain.Rota, error) {
	m := s.buildModel()
	s.composeObjective(m)

	modelProto, err := m.builder.Model()
	if err != nil {
		return nil, fmt.Errorf("无法构建约束模型: %w", err)
	}

	params := &sppb.SatParameters{
		MaxTimeInSeconds: proto.Float64(s.parameters.TimeBudget),
	}

	response, err := cpmodel.SolveCpModelWithParameters(modelProto, params)
	if err != nil {
		return nil, fmt.Errorf("求解器执行失败: %w", err)
	}

	switch response.GetStatus() {
	case cmpb.CpSolverStatus_OPTIMAL, cmpb.CpSolverStatus_FEASIBLE:
		// 没有证明最优的可行解也可以接受
	case cmpb.CpSolverStatus_INFEASIBLE:
		return nil, ErrInfeasible
	default:
		// UNKNOWN：预算耗尽时既没有可行解也没有不可行证明
		return nil, ErrNoSolutionInBudget
	}

	return s.extract(m, response), nil
}

// extract 把求得的变量取值还原成每人每天一个代码的排班表
func (s *Scheduler) extract(m *rotaModel, response *cmpb.CpSolverResponse) *domain.Rota {
	rows := make([]domain.RotaRow, len(s.employees))
	for e, emp := range s.employees {
		codes := make([]string, len(s.days))
		for d := range s.days {
			if s.rest[e][d] {
				codes[d] = domain.CodeRest
				continue
			}

			code := ""
			for sh := 0; sh < numShifts; sh++ {
				if cpmodel.SolutionBooleanValue(response, m.vars[e][d][sh]) {
					code = strconv.Itoa(sh + 1)
					break
				}
			}
			if code == "" {
				// 正确求解的模型不会走到这里，兜底按休息处理并告警，
				// 出现这条日志说明模型构建存在问题
				slog.Warn("工作日没有任何班次被选中，按休息处理",
					"employee", emp.Username, "day", s.days[d].Format("2006-01-02"))
				code = domain.CodeRest
			}
			codes[d] = code
		}

		rows[e] = domain.RotaRow{
			EmployeeID: emp.ID,
			FullName:   emp.FullName,
			Pattern:    PatternLabel(s.teams[e]),
			Codes:      codes,
		}
	}

	return &domain.Rota{
		Days:        s.days,
		Rows:        rows,
		Objective:   int64(response.GetObjectiveValue()),
		GeneratedAt: time.Now(),
	}
}
