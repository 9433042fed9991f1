package seed

import (
	"database/sql"
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/sysu-ecnc-dev/rota-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/rota-manager/backend/internal/repository"
)

// 员工名单 csv 的列
var employeeHeaders = []string{"用户名", "姓名", "邮箱", "角色", "起始班次"}

func SeedRealData(r *repository.Repository) {
	file, err := os.Open("./internal/seed/data/employees.csv")
	if err != nil {
		slog.Error("打开文件失败", "error", err)
		return
	}
	defer file.Close()

	reader := csv.NewReader(file)

	// 读取表头
	headers, err := reader.Read()
	if err != nil {
		slog.Error("读取表头失败", "error", err)
		return
	}

	headerIndex := make(map[string]int)
	for i, header := range headers {
		headerIndex[header] = i
	}
	for _, header := range employeeHeaders {
		if _, ok := headerIndex[header]; !ok {
			slog.Error("没有找到需要的列", "header", header)
			return
		}
	}

	// 读取数据
	var records []map[string]string
	for {
		row, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			slog.Error("读取文件失败", "error", err)
			return
		}

		record := make(map[string]string)
		for i, value := range row {
			record[headers[i]] = value
		}
		records = append(records, record)
	}

	// 插入员工到数据库中
	cnt := 0
	for _, record := range records {
		username := record["用户名"]
		if username == "" {
			slog.Error("没有找到用户名", "record", record)
			continue
		}

		if _, err := r.GetUserByUsername(username); err == nil {
			// 员工已存在，跳过
			continue
		} else if !errors.Is(err, sql.ErrNoRows) {
			slog.Error("获取员工失败", "error", err)
			continue
		}

		// 起始班次可以不填，不填时生成排班表会按轮转规则补齐
		var startingShift int32
		if record["起始班次"] != "" {
			shift, err := strconv.Atoi(record["起始班次"])
			if err != nil || shift < 1 || shift > 3 {
				slog.Error("起始班次非法", "username", username, "startingShift", record["起始班次"])
				continue
			}
			startingShift = int32(shift)
		}

		user := &domain.User{
			Username:      username,
			PasswordHash:  "$2a$10$aUTaWl3vmXuQFocBkb9Qx.YJPAzNoaAcj2VC5tI45l1Roh24meCgO", // ecnc@test8403
			FullName:      record["姓名"],
			Email:         record["邮箱"],
			Role:          domain.Role(record["角色"]),
			StartingShift: startingShift,
		}

		if err := r.CreateUser(user); err != nil {
			slog.Error("插入员工失败", "error", err)
			continue
		}

		cnt++
	}

	slog.Info("插入数据完成", "count", cnt)
}
