package message

import "time"
import "go.mongodb.org/mongo-driver/bson/primitive"

// Message 一条带情绪标注的对话消息
type Message struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserId     string             `bson:"user_id" json:"user_id"`
	Role       string             `bson:"role" json:"role"`
	Content    string             `bson:"content" json:"content"`
	Emotion    string             `bson:"emotion,omitempty" json:"emotion,omitempty"`
	Intensity  float64            `bson:"intensity,omitempty" json:"intensity,omitempty"`
	CreateTime time.Time          `bson:"create_time" json:"create_time"`
}
