package emergencyalert

import "time"
import "go.mongodb.org/mongo-driver/bson/primitive"

// 告警状态: 所有尝试通道成功为sent, 部分成功为partial, 全部失败为failed
const (
	StatusSent    = "sent"
	StatusPartial = "partial"
	StatusFailed  = "failed"
)

// Contact 通知时的联系人快照
type Contact struct {
	ContactId    string `bson:"contact_id" json:"contact_id"`
	Name         string `bson:"name" json:"name"`
	Email        string `bson:"email" json:"email"`
	Phone        string `bson:"phone,omitempty" json:"phone,omitempty"`
	Relationship string `bson:"relationship,omitempty" json:"relationship,omitempty"`
}

// Channel 单个通道的尝试结果
type Channel struct {
	Attempted bool       `bson:"attempted" json:"attempted"`
	Sent      bool       `bson:"sent" json:"sent"`
	SentAt    *time.Time `bson:"sent_at,omitempty" json:"sent_at,omitempty"`
	Error     string     `bson:"error,omitempty" json:"error,omitempty"`
}

// Channels 各通道结果
type Channels struct {
	Email     Channel `bson:"email" json:"email"`
	Messaging Channel `bson:"messaging" json:"messaging"`
}

// EmergencyAlert 每个联系人每次分发一条, 落库后不再修改
type EmergencyAlert struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	AlertId       string             `bson:"alert_id" json:"alert_id"`
	UserId        string             `bson:"user_id" json:"user_id"`
	CrisisEventId string             `bson:"crisis_event_id,omitempty" json:"crisis_event_id,omitempty"`
	RiskLevel     string             `bson:"risk_level" json:"risk_level"`
	Contact       Contact            `bson:"contact" json:"contact"`
	Channels      Channels           `bson:"channels" json:"channels"`
	IsTest        bool               `bson:"is_test" json:"is_test"`
	Status        string             `bson:"status" json:"status"`
	SentAt        time.Time          `bson:"sent_at" json:"sent_at"`
	Metadata      map[string]string  `bson:"metadata,omitempty" json:"metadata,omitempty"`
}
