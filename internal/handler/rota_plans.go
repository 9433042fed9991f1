package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/rota-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/rota-manager/backend/internal/export"
	"github.com/sysu-ecnc-dev/rota-manager/backend/internal/scheduler"
	"github.com/sysu-ecnc-dev/rota-manager/backend/internal/utils"
)

func (h *Handler) GetAllRotaPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.repository.GetAllRotaPlans()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取排班计划列表成功", plans)
}

func (h *Handler) CreateRotaPlan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name            string   `json:"name" validate:"required"`
		Description     string   `json:"description"`
		StartDate       string   `json:"startDate" validate:"required,datetime=2006-01-02"`
		EndDate         string   `json:"endDate" validate:"required,datetime=2006-01-02"`
		MinPerShift     *int32   `json:"minPerShift"`
		MaxRestFraction *float64 `json:"maxRestFraction"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 日期校验已由 validator 完成，这里不会出错
	startDate, _ := time.Parse("2006-01-02", req.StartDate)
	endDate, _ := time.Parse("2006-01-02", req.EndDate)

	plan := &domain.RotaPlan{
		Name:            req.Name,
		Description:     req.Description,
		StartDate:       startDate,
		EndDate:         endDate,
		MinPerShift:     h.config.Scheduler.MinPerShift,
		MaxRestFraction: h.config.Scheduler.MaxRestFraction,
	}
	if req.MinPerShift != nil {
		plan.MinPerShift = *req.MinPerShift
	}
	if req.MaxRestFraction != nil {
		plan.MaxRestFraction = *req.MaxRestFraction
	}

	if err := utils.ValidateRotaPlan(plan); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	if err := h.repository.CreateRotaPlan(plan); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "rota_plans_name_key":
			h.badRequest(w, r, errors.New("排班计划名称已存在"))
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "创建排班计划成功", plan)
}

func (h *Handler) GetRotaPlanByID(w http.ResponseWriter, r *http.Request) {
	plan := r.Context().Value(RotaPlanCtx).(*domain.RotaPlan)
	h.successResponse(w, r, "获取排班计划成功", plan)
}

func (h *Handler) UpdateRotaPlan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name            *string  `json:"name"`
		Description     *string  `json:"description"`
		StartDate       *string  `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
		EndDate         *string  `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
		MinPerShift     *int32   `json:"minPerShift"`
		MaxRestFraction *float64 `json:"maxRestFraction"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	plan := r.Context().Value(RotaPlanCtx).(*domain.RotaPlan)

	if req.Name != nil {
		plan.Name = *req.Name
	}
	if req.Description != nil {
		plan.Description = *req.Description
	}
	if req.StartDate != nil {
		startDate, _ := time.Parse("2006-01-02", *req.StartDate)
		plan.StartDate = startDate
	}
	if req.EndDate != nil {
		endDate, _ := time.Parse("2006-01-02", *req.EndDate)
		plan.EndDate = endDate
	}
	if req.MinPerShift != nil {
		plan.MinPerShift = *req.MinPerShift
	}
	if req.MaxRestFraction != nil {
		plan.MaxRestFraction = *req.MaxRestFraction
	}

	if err := utils.ValidateRotaPlan(plan); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	if err := h.repository.UpdateRotaPlan(plan); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "rota_plans_name_key":
			h.badRequest(w, r, errors.New("排班计划名称已存在"))
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "更新排班计划失败，请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新排班计划成功", plan)
}

func (h *Handler) DeleteRotaPlan(w http.ResponseWriter, r *http.Request) {
	plan := r.Context().Value(RotaPlanCtx).(*domain.RotaPlan)

	if err := h.repository.DeleteRotaPlan(plan.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 删除缓存的排班表，失败也不影响删除计划本身
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.Redis.OperationExpiration)*time.Minute)
	defer cancel()

	if err := h.redisClient.Del(ctx, rotaCacheKey(plan.ID)).Err(); err != nil {
		h.logInternalServerError(r, err)
	}

	h.successResponse(w, r, "删除排班计划成功", nil)
}

func rotaCacheKey(planID int64) string {
	return fmt.Sprintf("rota_plan_%d_result", planID)
}

func (h *Handler) GenerateRota(w http.ResponseWriter, r *http.Request) {
	plan := r.Context().Value(RotaPlanCtx).(*domain.RotaPlan)
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	// 请求体可以为空，此时使用配置中的时间预算
	var req struct {
		TimeBudget *float64 `json:"timeBudget" validate:"omitempty,gt=0"`
	}

	if err := h.readJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	parameters := &scheduler.Parameters{
		MinPerShift:     plan.MinPerShift,
		MaxRestFraction: plan.MaxRestFraction,
		TimeBudget:      h.config.Scheduler.TimeBudget,
	}
	if req.TimeBudget != nil {
		parameters.TimeBudget = *req.TimeBudget
	}

	employees, err := h.repository.GetAllActiveUsers()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	sched, err := scheduler.New(parameters, employees, plan.StartDate, plan.EndDate)
	if err != nil {
		switch {
		case errors.Is(err, scheduler.ErrNoEmployees),
			errors.Is(err, scheduler.ErrInvalidHorizon),
			errors.Is(err, scheduler.ErrInvalidParameters),
			errors.Is(err, scheduler.ErrRestCapExceeded):
			h.errorResponse(w, r, err.Error())
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	rota, err := sched.Schedule()
	if err != nil {
		switch {
		case errors.Is(err, scheduler.ErrInfeasible), errors.Is(err, scheduler.ErrNoSolutionInBudget):
			h.errorResponse(w, r, err.Error())
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	rota.PlanID = plan.ID

	// 排班表不落库，只在 redis 中缓存一段时间
	rotaData, err := json.Marshal(rota)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.Redis.OperationExpiration)*time.Minute)
	defer cancel()

	if err := h.redisClient.Set(ctx, rotaCacheKey(plan.ID), rotaData, time.Duration(h.config.Redis.RotaExpiration)*time.Second).Err(); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 通知发起人排班表已生成
	mailMessage := domain.MailMessage{
		Type: "rota_ready",
		To:   myInfo.Email,
		Data: domain.RotaReadyMailData{
			FullName:  myInfo.FullName,
			PlanName:  plan.Name,
			StartDate: plan.StartDate.Format("2006-01-02"),
			EndDate:   plan.EndDate.Format("2006-01-02"),
		},
	}

	mailData, err := json.Marshal(mailMessage)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	ctx, cancel = context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	if err := h.mailChannel.PublishWithContext(
		ctx,
		"",
		"email_queue",
		true,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        mailData,
		},
	); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "排班表生成成功", rota)
}

func (h *Handler) getCachedRota(r *http.Request, plan *domain.RotaPlan) (*domain.Rota, error) {
	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(h.config.Redis.OperationExpiration)*time.Minute)
	defer cancel()

	rotaData, err := h.redisClient.Get(ctx, rotaCacheKey(plan.ID)).Bytes()
	if err != nil {
		return nil, err
	}

	var rota domain.Rota
	if err := json.Unmarshal(rotaData, &rota); err != nil {
		return nil, err
	}

	return &rota, nil
}

func (h *Handler) GetRota(w http.ResponseWriter, r *http.Request) {
	plan := r.Context().Value(RotaPlanCtx).(*domain.RotaPlan)

	rota, err := h.getCachedRota(r, plan)
	if err != nil {
		switch {
		case errors.Is(err, redis.Nil):
			h.errorResponse(w, r, "该排班计划还没有生成排班表")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	// 计划被修改后旧的排班表不再有效
	if err := utils.ValidateRotaAgainstPlan(rota, plan); err != nil {
		h.errorResponse(w, r, "排班表已失效，请重新生成")
		return
	}

	h.successResponse(w, r, "获取排班表成功", rota)
}

func (h *Handler) ExportRota(w http.ResponseWriter, r *http.Request) {
	plan := r.Context().Value(RotaPlanCtx).(*domain.RotaPlan)

	rota, err := h.getCachedRota(r, plan)
	if err != nil {
		switch {
		case errors.Is(err, redis.Nil):
			h.errorResponse(w, r, "该排班计划还没有生成排班表")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if err := utils.ValidateRotaAgainstPlan(rota, plan); err != nil {
		h.errorResponse(w, r, "排班表已失效，请重新生成")
		return
	}

	buf, filename, err := export.Rota(plan, rota)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.writeXLSX(w, r, buf, filename)
}
