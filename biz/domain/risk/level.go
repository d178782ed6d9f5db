package risk

import "github.com/Mar-cere/Anto-sub003/biz/infrastructure/consts"

// Level 是风险等级的封闭枚举, 数值保持严格递增以支持比较
type Level int

const (
	Low Level = iota
	Warning
	Medium
	High
)

func (l Level) String() string {
	switch l {
	case Low:
		return "LOW"
	case Warning:
		return "WARNING"
	case Medium:
		return "MEDIUM"
	case High:
		return "HIGH"
	default:
		return "LOW"
	}
}

// ParseLevel 解析风险等级字符串
func ParseLevel(s string) (Level, error) {
	switch s {
	case "LOW":
		return Low, nil
	case "WARNING":
		return Warning, nil
	case "MEDIUM":
		return Medium, nil
	case "HIGH":
		return High, nil
	default:
		return Low, consts.ErrInvalidRiskLevel
	}
}
