package crisisevent

import "time"
import "go.mongodb.org/mongo-driver/bson/primitive"

// 危机结局
const (
	OutcomeResolved      = "resolved"
	OutcomeOngoing       = "ongoing"
	OutcomeEscalated     = "escalated"
	OutcomeFalsePositive = "false_positive"
	OutcomeUnknown       = "unknown"
)

// TriggerMessage 触发消息快照, 只保留预览, 不存完整内容
type TriggerMessage struct {
	MessageId      string  `bson:"message_id" json:"message_id"`
	ContentPreview string  `bson:"content_preview" json:"content_preview"`
	Emotion        string  `bson:"emotion" json:"emotion"`
	Intensity      float64 `bson:"intensity" json:"intensity"`
}

// TrendSnapshot 检测时的趋势标记快照
type TrendSnapshot struct {
	IntensityTrend string `bson:"intensity_trend" json:"intensity_trend"`
	EmotionTrend   string `bson:"emotion_trend" json:"emotion_trend"`
	FrequencyTrend string `bson:"frequency_trend" json:"frequency_trend"`
	Volatility     string `bson:"volatility" json:"volatility"`
	RapidDecline   bool   `bson:"rapid_decline" json:"rapid_decline"`
	SustainedLow   bool   `bson:"sustained_low" json:"sustained_low"`
	Isolation      bool   `bson:"isolation" json:"isolation"`
	Escalation     bool   `bson:"escalation" json:"escalation"`
}

// HistorySnapshot 检测时的危机历史快照
type HistorySnapshot struct {
	TotalCrises  int64 `bson:"total_crises" json:"total_crises"`
	RecentCrises int64 `bson:"recent_crises" json:"recent_crises"`
}

// AlertChannels 各通道是否至少送达一次
type AlertChannels struct {
	Email     bool `bson:"email" json:"email"`
	Messaging bool `bson:"messaging" json:"messaging"`
}

// Alerts 本事件的告警状态
type Alerts struct {
	Sent             bool          `bson:"sent" json:"sent"`
	SentAt           *time.Time    `bson:"sent_at,omitempty" json:"sent_at,omitempty"`
	ContactsNotified int           `bson:"contacts_notified" json:"contacts_notified"`
	Channels         AlertChannels `bson:"channels" json:"channels"`
}

// FollowUpMessage 一次跟进消息的记录
type FollowUpMessage struct {
	SentAt           time.Time  `bson:"sent_at" json:"sent_at"`
	ResponseReceived bool       `bson:"response_received" json:"response_received"`
	ResponseAt       *time.Time `bson:"response_at,omitempty" json:"response_at,omitempty"`
}

// FollowUp 跟进状态
type FollowUp struct {
	Scheduled   bool               `bson:"scheduled" json:"scheduled"`
	ScheduledAt *time.Time         `bson:"scheduled_at,omitempty" json:"scheduled_at,omitempty"`
	Completed   bool               `bson:"completed" json:"completed"`
	CompletedAt *time.Time         `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
	Messages    []*FollowUpMessage `bson:"follow_up_messages" json:"follow_up_messages"`
}

// Metadata 评分细节
type Metadata struct {
	RiskScore         float64  `bson:"risk_score" json:"risk_score"`
	Factors           []string `bson:"factors" json:"factors"`
	ProtectiveFactors []string `bson:"protective_factors" json:"protective_factors"`
}

// CrisisEvent 一次MEDIUM/HIGH风险检测的完整记录, 只追加不删除
type CrisisEvent struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserId         string             `bson:"user_id" json:"user_id"`
	RiskLevel      string             `bson:"risk_level" json:"risk_level"`
	DetectedAt     time.Time          `bson:"detected_at" json:"detected_at"`
	ResolvedAt     *time.Time         `bson:"resolved_at,omitempty" json:"resolved_at,omitempty"`
	TriggerMessage TriggerMessage     `bson:"trigger_message" json:"trigger_message"`
	TrendAnalysis  TrendSnapshot      `bson:"trend_analysis" json:"trend_analysis"`
	CrisisHistory  HistorySnapshot    `bson:"crisis_history" json:"crisis_history"`
	Alerts         Alerts             `bson:"alerts" json:"alerts"`
	FollowUp       FollowUp           `bson:"follow_up" json:"follow_up"`
	Outcome        string             `bson:"outcome" json:"outcome"`
	Metadata       Metadata           `bson:"metadata" json:"metadata"`
}
