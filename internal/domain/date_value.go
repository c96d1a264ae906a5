package domain

import (
	"encoding/json"
	"regexp"
	"time"
)

type dateKind int

const (
	dateKindISO dateKind = iota + 1
	dateKindEpochSeconds
	dateKindNative
)

var isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// DateValue 表示招工需求中的日期字段
// 历史数据中同一个字段存在三种序列化形式：日期字符串、{seconds} 对象、完整时间戳，
// 因此这里用封闭的标签联合来表示，统一通过 Canonical 归一化为 YYYY-MM-DD
type DateValue struct {
	kind  dateKind
	iso   string
	epoch int64
	t     time.Time
}

func DateFromISO(s string) DateValue {
	return DateValue{kind: dateKindISO, iso: s}
}

func DateFromEpochSeconds(sec int64) DateValue {
	return DateValue{kind: dateKindEpochSeconds, epoch: sec}
}

func DateFromTime(t time.Time) DateValue {
	return DateValue{kind: dateKindNative, t: t}
}

func (d DateValue) IsZero() bool {
	return d.kind == 0
}

// Canonical 将日期归一化为 YYYY-MM-DD，无法解析时返回空字符串
func (d DateValue) Canonical() string {
	switch d.kind {
	case dateKindISO:
		if isoDatePattern.MatchString(d.iso) {
			return d.iso
		}
		if t, err := time.Parse(time.RFC3339, d.iso); err == nil {
			return t.UTC().Format("2006-01-02")
		}
		if t, err := time.Parse("2006-01-02T15:04:05", d.iso); err == nil {
			return t.Format("2006-01-02")
		}
		return ""
	case dateKindEpochSeconds:
		return time.Unix(d.epoch, 0).UTC().Format("2006-01-02")
	case dateKindNative:
		return d.t.UTC().Format("2006-01-02")
	default:
		return ""
	}
}

// CanonicalDateString 把任意日期字符串归一化为 YYYY-MM-DD
// 报名和工作记录中的日期都经过这个函数，和需求树的日期比较时必须使用同一种归一化
func CanonicalDateString(s string) string {
	return DateFromISO(s).Canonical()
}

type epochSecondsDoc struct {
	Seconds     *int64 `json:"seconds"`
	Nanoseconds int64  `json:"nanoseconds"`
}

func (d *DateValue) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if s == "" {
			*d = DateValue{}
			return nil
		}
		*d = DateFromISO(s)
		return nil
	}

	var doc epochSecondsDoc
	if err := json.Unmarshal(b, &doc); err == nil && doc.Seconds != nil {
		*d = DateFromEpochSeconds(*doc.Seconds)
		return nil
	}

	var sec int64
	if err := json.Unmarshal(b, &sec); err == nil {
		*d = DateFromEpochSeconds(sec)
		return nil
	}

	// null 或者无法识别的形式按零值处理，匹配时自然落空
	*d = DateValue{}
	return nil
}

func (d DateValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Canonical())
}
