// Package seed 向数据库写入演示用的市场数据
package seed

import (
	"log/slog"
	"math/rand"
	"strconv"

	"github.com/staffpool-dev/staff-marketplace/backend/internal/domain"
	"github.com/staffpool-dev/staff-marketplace/backend/internal/identity"
	"github.com/staffpool-dev/staff-marketplace/backend/internal/repository"
	"github.com/staffpool-dev/staff-marketplace/backend/internal/utils"
)

// SeedDemoMarketplace 生成一个可以直接演示的完整市场：
// 雇主和员工账号、发布中的公告、各种状态的报名和工作记录
func SeedDemoMarketplace(r *repository.Repository, password string, emailDomain string) {
	employers := seedUsers(r, 3, domain.RoleEmployer, password, emailDomain)
	staff := seedUsers(r, 12, domain.RoleStaff, password, emailDomain)

	if len(employers) == 0 || len(staff) == 0 {
		slog.Error("演示数据生成失败，缺少用户")
		return
	}

	postings := make([]*domain.JobPosting, 0)
	for _, employer := range employers {
		for i := 0; i < rand.Intn(2)+1; i++ {
			posting := utils.GenerateRandomJobPosting(employer.ID)
			if err := r.CreateJobPosting(posting); err != nil {
				slog.Error("无法插入招聘公告", "error", err)
				continue
			}
			postings = append(postings, posting)
		}
	}
	slog.Info("插入招聘公告成功", "count", len(postings))

	applied, confirmed := 0, 0
	for _, posting := range postings {
		// 每个公告随机抽几个员工报名
		for _, applicant := range pickStaff(staff, rand.Intn(4)+2) {
			assignment := utils.GenerateRandomAssignment(posting)
			app := &domain.Application{
				ID:            identity.NewApplicationID(strconv.FormatInt(posting.ID, 10), strconv.FormatInt(applicant.ID, 10)),
				JobPostingID:  posting.ID,
				ApplicantID:   applicant.ID,
				ApplicantName: applicant.FullName,
				Status:        domain.ApplicationStatusApplied,
				Assignments:   []domain.Assignment{assignment},
			}
			if err := r.CreateApplication(app); err != nil {
				slog.Error("无法插入报名记录", "error", err)
				continue
			}
			applied++

			// 一部分报名直接由雇主确认，产生工作记录
			if rand.Intn(2) == 0 {
				if _, _, err := r.ConfirmApplication(app.ID, posting.OwnerID); err != nil {
					slog.Warn("演示确认报名失败", "applicationID", app.ID, "error", err)
					continue
				}
				confirmed++
			}
		}
	}

	slog.Info("插入报名记录成功", "applied", applied, "confirmed", confirmed)
}

// SeedApplications 让一批用户随机报名指定的公告
func SeedApplications(r *repository.Repository, posting *domain.JobPosting, users []*domain.User) {
	cnt := 0
	for _, applicant := range pickStaff(users, rand.Intn(4)+2) {
		if applicant.ID == posting.OwnerID {
			continue
		}

		assignment := utils.GenerateRandomAssignment(posting)
		app := &domain.Application{
			ID:            identity.NewApplicationID(strconv.FormatInt(posting.ID, 10), strconv.FormatInt(applicant.ID, 10)),
			JobPostingID:  posting.ID,
			ApplicantID:   applicant.ID,
			ApplicantName: applicant.FullName,
			Status:        domain.ApplicationStatusApplied,
			Assignments:   []domain.Assignment{assignment},
		}
		if err := r.CreateApplication(app); err != nil {
			slog.Error("无法插入报名记录", "error", err)
			continue
		}
		cnt++
	}

	slog.Info("插入报名记录成功", "postingID", posting.ID, "count", cnt)
}

func seedUsers(r *repository.Repository, n int, role domain.Role, password string, emailDomain string) []*domain.User {
	users := make([]*domain.User, 0, n)
	for i := 0; i < n; i++ {
		user, err := utils.GenerateRandomUser(password, emailDomain)
		if err != nil {
			slog.Error("无法生成随机用户", "error", err)
			continue
		}
		user.Role = role

		if err := r.CreateUser(user); err != nil {
			slog.Error("无法插入用户", "error", err)
			continue
		}
		users = append(users, user)
	}

	slog.Info("插入用户成功", "role", role, "count", len(users))
	return users
}

func pickStaff(staff []*domain.User, n int) []*domain.User {
	if n > len(staff) {
		n = len(staff)
	}

	shuffled := append([]*domain.User{}, staff...)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	return shuffled[:n]
}
