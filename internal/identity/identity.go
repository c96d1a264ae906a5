// Package identity 把历史遗留的多种标识字段归一化为每个实体唯一的规范 ID，
// 并负责报名记录复合键的生成和解析
package identity

import (
	"fmt"
	"strings"
)

// DocumentRef 描述一个可能携带多种标识字段的历史文档
// eventId 是 jobPostingId 的旧别名，staffId/applicantId/userId 是同一个人的三代字段名
type DocumentRef struct {
	JobPostingID string `json:"jobPostingId,omitempty"`
	EventID      string `json:"eventId,omitempty"`
	StaffID      string `json:"staffId,omitempty"`
	ApplicantID  string `json:"applicantId,omitempty"`
	UserID       string `json:"userId,omitempty"`
}

// NormalizeJobID 返回规范的公告 ID，旧别名 eventId 一律忽略
func NormalizeJobID(doc DocumentRef) string {
	return doc.JobPostingID
}

// NormalizeUserID 按 staffId > applicantId > userId 的优先级返回规范的用户 ID
func NormalizeUserID(doc DocumentRef) string {
	if doc.StaffID != "" {
		return doc.StaffID
	}
	if doc.ApplicantID != "" {
		return doc.ApplicantID
	}
	return doc.UserID
}

// NewApplicationID 生成报名记录的复合键
func NewApplicationID(jobPostingID, applicantID string) string {
	return fmt.Sprintf("%s_%s", jobPostingID, applicantID)
}

// ParseApplicationID 解析报名记录的复合键
// 只在第一个下划线处切分：applicantId 本身可能含有下划线，剩余部分整体归给 applicantId
func ParseApplicationID(id string) (jobPostingID, applicantID string, err error) {
	parts := strings.SplitN(id, "_", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("无效的报名记录 ID: %q", id)
	}
	return parts[0], parts[1], nil
}

// ExtractUnifiedIDs 从两组异构文档中收集去重后的规范公告 ID，空 ID 被跳过
func ExtractUnifiedIDs(a []DocumentRef, b []DocumentRef) []string {
	seen := make(map[string]bool)
	ids := []string{}

	collect := func(docs []DocumentRef) {
		for _, doc := range docs {
			id := NormalizeJobID(doc)
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
		}
	}

	collect(a)
	collect(b)

	return ids
}
