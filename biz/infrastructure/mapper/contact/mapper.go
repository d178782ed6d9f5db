package contact

import (
	"github.com/Mar-cere/Anto-sub003/biz/infrastructure/config"
	"github.com/Mar-cere/Anto-sub003/biz/infrastructure/consts"
	"github.com/zeromicro/go-zero/core/stores/monc"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/net/context"
	"sync"
)

const (
	prefixContactCacheKey = "cache:emergency_contact"
	CollectionName        = "emergency_contacts"
)

var Mapper *MongoMapper
var once sync.Once

type IMongoMapper interface {
	FindActiveByUser(ctx context.Context, userId string) ([]*EmergencyContact, error)
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

// FindActiveByUser 获取启用的紧急联系人, 按优先级降序
func (m *MongoMapper) FindActiveByUser(ctx context.Context, userId string) ([]*EmergencyContact, error) {
	data := make([]*EmergencyContact, 0)
	err := m.conn.Find(ctx, &data,
		bson.M{
			consts.UserId:  userId,
			consts.Enabled: true,
		}, &options.FindOptions{
			Sort: bson.M{consts.Priority: -1},
		})
	if err != nil {
		return nil, err
	}
	return data, nil
}
