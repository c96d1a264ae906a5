package utils

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/mozillazg/go-pinyin"
	"github.com/staffpool-dev/staff-marketplace/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "勇", "霞", "飞", "玲",
	"超", "华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌",
	"庆", "建", "丹", "彬", "凤", "旭", "宁", "乐", "成", "欣",
}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

var roles = []domain.Role{
	domain.RoleStaff,
	domain.RoleEmployer,
}

func GenerateRandomRole() domain.Role {
	return roles[rand.Intn(len(roles))]
}

var digits = "0123456789"

func GenerateUsernameFromChineseName(chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	username := ""

	for _, pinyin := range pinyinArray {
		length := rand.Intn(len(pinyin)) + 1
		username += pinyin[:length]
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

func GenerateRandomUser(password string, emailDomainName string) (*domain.User, error) {
	fullName := GenerateRandomChineseName()
	username := GenerateUsernameFromChineseName(fullName)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: string(passwordHash),
		FullName:     fullName,
		Email:        username + "@" + emailDomainName,
		Role:         GenerateRandomRole(),
	}

	return user, nil
}

func GenerateRandomOTP() string {
	return fmt.Sprintf("%06d", rand.Intn(1000000))
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	random_password := make([]rune, length)
	for i := range random_password {
		random_password[i] = letters[rand.Intn(len(letters))]
	}
	return string(random_password)
}

func GenerateRandomID(letterLength int, digitLength int) string {
	random_id := make([]rune, letterLength+digitLength)
	for i := range random_id {
		if i < letterLength {
			random_id[i] = letters[rand.Intn(len(letters))]
		} else {
			random_id[i] = rune(digits[rand.Intn(len(digits))])
		}
	}
	return string(random_id)
}

var staffRoles = []domain.StaffRole{
	domain.StaffRoleDealer,
	domain.StaffRoleFloor,
	domain.StaffRoleServer,
}

var slotStartTimes = []string{"09:00", "12:00", "14:00", "18:00", "20:00"}

// 随机生成一个公告的需求树，日期从明天开始连续排布
func GenerateRandomRequirements(days int) []domain.DateSpecificRequirement {
	reqs := make([]domain.DateSpecificRequirement, days)

	for i := range reqs {
		date := time.Now().AddDate(0, 0, i+1).Format("2006-01-02")

		slotsNum := rand.Intn(2) + 1
		slots := make([]domain.TimeSlot, slotsNum)
		for j := range slots {
			rolesNum := rand.Intn(2) + 1
			slotRoles := make([]domain.RoleRequirement, rolesNum)
			for k := range slotRoles {
				slotRoles[k] = domain.RoleRequirement{
					Role:      staffRoles[rand.Intn(len(staffRoles))],
					Headcount: int32(rand.Intn(5) + 1),
				}
				if rand.Intn(3) == 0 {
					slotRoles[k].Salary = &domain.SalaryInfo{
						Type:   domain.SalaryTypeHourly,
						Amount: int64(rand.Intn(30)+30) * 1000,
					}
				}
			}

			slots[j] = domain.TimeSlot{
				StartTime: slotStartTimes[rand.Intn(len(slotStartTimes))],
				Roles:     slotRoles,
			}
		}

		reqs[i] = domain.DateSpecificRequirement{
			Date:      domain.DateFromISO(date),
			TimeSlots: slots,
		}
	}

	return reqs
}

// 随机生成一个招聘公告
func GenerateRandomJobPosting(ownerID int64) *domain.JobPosting {
	posting := &domain.JobPosting{
		OwnerID:                  ownerID,
		Title:                    "招聘公告" + GenerateRandomID(3, 3),
		Description:              "招聘公告描述" + GenerateRandomID(20, 10),
		Status:                   domain.PostingStatusActive,
		DateSpecificRequirements: GenerateRandomRequirements(rand.Intn(4) + 1),
		DefaultSalary: &domain.SalaryInfo{
			Type:   domain.SalaryTypeHourly,
			Amount: int64(rand.Intn(30)+20) * 1000,
		},
		ShiftHours: int32(rand.Intn(4) + 6),
	}

	if rand.Intn(2) == 0 {
		meal := int64(rand.Intn(10)+5) * 1000
		posting.Allowances = &domain.AllowanceConfig{Meal: &meal}
	}
	if rand.Intn(3) == 0 {
		posting.TaxSettings = &domain.TaxSettings{Type: domain.TaxTypeRate, Rate: 0.033}
	}

	total, filled := posting.CountPositions()
	posting.TotalPositions = total
	posting.FilledPositions = filled

	return posting
}

// 从公告的需求树中随机挑选一个叶子，生成对应的排班选择
func GenerateRandomAssignment(posting *domain.JobPosting) domain.Assignment {
	req := posting.DateSpecificRequirements[rand.Intn(len(posting.DateSpecificRequirements))]
	slot := req.TimeSlots[rand.Intn(len(req.TimeSlots))]
	role := slot.Roles[rand.Intn(len(slot.Roles))]

	roleLabel := string(role.Role)
	if role.Role == domain.StaffRoleOther {
		roleLabel = role.CustomRole
	}

	return domain.Assignment{
		Dates:    []string{req.Date.Canonical()},
		TimeSlot: slot.StartTime,
		RoleIDs:  []string{roleLabel},
	}
}
