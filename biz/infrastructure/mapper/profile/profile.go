package profile

import "time"
import "go.mongodb.org/mongo-driver/bson/primitive"

// Profile 用户的通知档案: 推送token/语言偏好/危机计数
type Profile struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserId       string             `bson:"user_id" json:"user_id"`
	PushToken    string             `bson:"push_token,omitempty" json:"push_token,omitempty"`
	Language     string             `bson:"language,omitempty" json:"language,omitempty"`
	TotalCrises  int64              `bson:"total_crises" json:"total_crises"`
	LastCrisisAt *time.Time         `bson:"last_crisis_at,omitempty" json:"last_crisis_at,omitempty"`
}
