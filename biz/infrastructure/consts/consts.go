package consts

// 数据库相关
const (
	ID         = "_id"
	UserId     = "user_id"
	Role       = "role"
	Emotion    = "emotion"
	CreateTime = "create_time"
	DetectedAt = "detected_at"
	ResolvedAt = "resolved_at"
	RiskLevel  = "risk_level"
	Outcome    = "outcome"
	SentAt     = "sent_at"
	Enabled    = "enabled"
	Priority   = "priority"

	FollowUpScheduled   = "follow_up.scheduled"
	FollowUpScheduledAt = "follow_up.scheduled_at"
	FollowUpCompleted   = "follow_up.completed"
	FollowUpCompletedAt = "follow_up.completed_at"
	FollowUpMessages    = "follow_up.follow_up_messages"
	AlertsField         = "alerts"
)

// 对话角色
const (
	RoleUser = "user"
	RoleAi   = "ai"
)

// Post http
const (
	Post = "POST"
)

// 情绪相关默认值
const (
	// HighIntensity 视为高强度情绪的下限
	HighIntensity = 7
	// MaxPreviewLen 危机事件中消息预览的最大字符数, 不允许存储完整内容
	MaxPreviewLen = 200
)

// 语言偏好
const (
	LangEs = "es"
	LangEn = "en"
)
