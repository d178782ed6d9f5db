package contact

import "time"
import "go.mongodb.org/mongo-driver/bson/primitive"

// EmergencyContact 用户指定的紧急联系人
type EmergencyContact struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserId       string             `bson:"user_id" json:"user_id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	Phone        string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Relationship string             `bson:"relationship,omitempty" json:"relationship,omitempty"`
	Enabled      bool               `bson:"enabled" json:"enabled"`
	Priority     int                `bson:"priority" json:"priority"`
	CreateTime   time.Time          `bson:"create_time" json:"create_time"`
}
