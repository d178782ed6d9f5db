package profile

import (
	"time"

	"github.com/Mar-cere/Anto-sub003/biz/infrastructure/config"
	"github.com/Mar-cere/Anto-sub003/biz/infrastructure/consts"
	"github.com/zeromicro/go-zero/core/stores/monc"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/net/context"
	"sync"

	"errors"
)

const (
	prefixProfileCacheKey = "cache:profile"
	CollectionName        = "profiles"
)

var Mapper *MongoMapper
var once sync.Once

type IMongoMapper interface {
	GetByUser(ctx context.Context, userId string) (*Profile, error)
	IncrementCrisis(ctx context.Context, userId string, at time.Time) error
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

// GetByUser 获取用户通知档案, 不存在时返回nil而非错误
func (m *MongoMapper) GetByUser(ctx context.Context, userId string) (*Profile, error) {
	var p Profile
	err := m.conn.FindOneNoCache(ctx, &p, bson.M{consts.UserId: userId})
	if err != nil {
		if errors.Is(err, monc.ErrNotFound) || errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// IncrementCrisis 危机计数+1并更新最近危机时间, 档案不存在时创建
func (m *MongoMapper) IncrementCrisis(ctx context.Context, userId string, at time.Time) error {
	_, err := m.conn.UpdateOneNoCache(ctx,
		bson.M{consts.UserId: userId},
		bson.M{
			"$inc": bson.M{"total_crises": 1},
			"$set": bson.M{"last_crisis_at": at},
		}, options.Update().SetUpsert(true))
	return err
}
