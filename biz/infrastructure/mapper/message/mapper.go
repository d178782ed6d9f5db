package message

import (
	"time"

	"github.com/Mar-cere/Anto-sub003/biz/infrastructure/config"
	"github.com/Mar-cere/Anto-sub003/biz/infrastructure/consts"
	"github.com/zeromicro/go-zero/core/stores/monc"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/net/context"
	"sync"
)

const (
	prefixMessageCacheKey = "cache:message"
	CollectionName        = "messages"
)

var Mapper *MongoMapper
var once sync.Once

type IMongoMapper interface {
	Insert(ctx context.Context, msg *Message) error
	FindAnnotatedSince(ctx context.Context, userId string, since time.Time) ([]*Message, error)
}

type MongoMapper struct {
	conn *monc.Model
}

func NewMongoMapper(config *config.Config) *MongoMapper {
	conn := monc.MustNewModel(config.Mongo.URL, config.Mongo.DB, CollectionName, config.Cache)
	return &MongoMapper{conn: conn}
}

func GetMongoMapper() *MongoMapper {
	once.Do(func() {
		c := config.GetConfig()
		conn := monc.MustNewModel(c.Mongo.URL, c.Mongo.DB, CollectionName, c.Cache)
		Mapper = &MongoMapper{
			conn: conn,
		}
	})
	return Mapper
}

func (m *MongoMapper) Insert(ctx context.Context, msg *Message) error {
	if msg.ID.IsZero() {
		msg.ID = primitive.NewObjectID()
	}
	if msg.CreateTime.IsZero() {
		msg.CreateTime = time.Now()
	}
	_, err := m.conn.InsertOneNoCache(ctx, msg)
	return err
}

// FindAnnotatedSince 获取since之后用户发出且带情绪标注的消息, 按时间升序
func (m *MongoMapper) FindAnnotatedSince(ctx context.Context, userId string, since time.Time) ([]*Message, error) {
	data := make([]*Message, 0)
	err := m.conn.Find(ctx, &data,
		bson.M{
			consts.UserId:     userId,
			consts.Role:       consts.RoleUser,
			consts.Emotion:    bson.M{"$exists": true, "$ne": ""},
			consts.CreateTime: bson.M{"$gte": since},
		}, &options.FindOptions{
			Sort: bson.M{consts.CreateTime: 1},
		})
	if err != nil {
		return nil, err
	}
	return data, nil
}
