package emergencyalert

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
	prefixAlertCacheKey = "cache:emergency_alert"
	CollectionName      = "emergency_alerts"
)

var Mapper *MongoMapper
var once sync.Once

type IMongoMapper interface {
	Insert(ctx context.Context, alert *EmergencyAlert) error
	FindRecent(ctx context.Context, userId string, days int) ([]*EmergencyAlert, error)
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

// Insert 追加一条告警审计记录, 记录一旦写入不再修改
func (m *MongoMapper) Insert(ctx context.Context, alert *EmergencyAlert) error {
	if alert.ID.IsZero() {
		alert.ID = primitive.NewObjectID()
	}
	if alert.SentAt.IsZero() {
		alert.SentAt = time.Now()
	}
	_, err := m.conn.InsertOneNoCache(ctx, alert)
	return err
}

// FindRecent 获取回溯窗口内的告警记录
func (m *MongoMapper) FindRecent(ctx context.Context, userId string, days int) ([]*EmergencyAlert, error) {
	since := time.Now().AddDate(0, 0, -days)
	data := make([]*EmergencyAlert, 0)
	err := m.conn.Find(ctx, &data,
		bson.M{
			consts.UserId: userId,
			consts.SentAt: bson.M{"$gte": since},
		}, &options.FindOptions{
			Sort: bson.M{consts.SentAt: -1},
		})
	if err != nil {
		return nil, err
	}
	return data, nil
}
