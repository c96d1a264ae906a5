package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/staffpool-dev/staff-marketplace/backend/internal/config"
	"github.com/staffpool-dev/staff-marketplace/backend/internal/domain"
	"github.com/staffpool-dev/staff-marketplace/backend/internal/repository"
	"github.com/staffpool-dev/staff-marketplace/backend/internal/seed"
	"github.com/staffpool-dev/staff-marketplace/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var postingID int64

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机用户, 2: 插入随机招聘公告, 3: 为指定公告插入随机报名, 4: 生成完整演示数据)")
	flag.IntVar(&n, "n", 5, "要插入的记录数量")
	flag.Int64Var(&postingID, "posting-id", 0, "随机插入报名记录的公告 ID")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	// 创建 repository
	repo := repository.NewRepository(cfg, dbpool)

	// 执行操作
	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if n <= 0 {
			slog.Error("请输入合法的用户数量")
		} else {
			cnt := n
			for i := 0; i < n; i++ {
				user, err := utils.GenerateRandomUser(cfg.Seed.User.Password, cfg.Email.UserDomain)
				if err != nil {
					slog.Error("无法生成随机用户", slog.String("error", err.Error()))
					continue
				}

				if err := repo.CreateUser(user); err != nil {
					slog.Error("无法插入用户", slog.String("error", err.Error()))
					continue
				}

				cnt--
			}

			slog.Info("插入用户成功", slog.Int("count", n-cnt))
		}
	case 2:
		if n <= 0 {
			slog.Error("请输入合法的公告数量")
		} else {
			// 公告挂在随机的雇主名下
			users, err := repo.GetUsersByRole(domain.RoleEmployer)
			if err != nil {
				slog.Error("无法获取用户列表", slog.String("error", err.Error()))
				return
			}
			if len(users) == 0 {
				slog.Error("数据库中没有雇主用户，请先插入用户")
				return
			}

			cnt := n
			for i := 0; i < n; i++ {
				owner := users[rand.Intn(len(users))]
				posting := utils.GenerateRandomJobPosting(owner.ID)
				if err := repo.CreateJobPosting(posting); err != nil {
					slog.Error("无法插入招聘公告", slog.String("error", err.Error()))
					continue
				}

				cnt--
			}

			slog.Info("插入招聘公告成功", slog.Int("count", n-cnt))
		}
	case 3:
		if postingID <= 0 {
			slog.Error("请输入合法的公告 ID")
			return
		}

		posting, err := repo.GetJobPostingByID(postingID)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				slog.Error("指定的公告不存在", slog.Int64("posting_id", postingID))
			default:
				slog.Error("无法获取公告", slog.String("error", err.Error()))
			}
			return
		}

		users, err := repo.GetUsersByRole(domain.RoleStaff)
		if err != nil {
			slog.Error("无法获取用户列表", slog.String("error", err.Error()))
			return
		}

		seed.SeedApplications(repo, posting, users)
	case 4:
		seed.SeedDemoMarketplace(repo, cfg.Seed.User.Password, cfg.Email.UserDomain)
	default:
		slog.Error("指定的操作非法")
	}
}
