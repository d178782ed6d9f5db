package crisisevent

import (
	"time"

	"github.com/Mar-cere/Anto-sub003/biz/application/dto"
	"github.com/Mar-cere/Anto-sub003/biz/infrastructure/config"
	"github.com/Mar-cere/Anto-sub003/biz/infrastructure/consts"
	"github.com/Mar-cere/Anto-sub003/biz/infrastructure/util"
	"github.com/zeromicro/go-zero/core/stores/monc"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/net/context"
	"sync"
)

const (
	prefixCrisisCacheKey = "cache:crisis_event"
	CollectionName       = "crisis_events"
)

var Mapper *MongoMapper
var once sync.Once

type IMongoMapper interface {
	Insert(ctx context.Context, ev *CrisisEvent) error
	FindRecent(ctx context.Context, userId string, days int) ([]*CrisisEvent, error)
	FindMany(ctx context.Context, userId string, p *dto.Paging) ([]*CrisisEvent, int64, error)
	CountByUser(ctx context.Context, userId string) (int64, error)
	FindPendingFollowUps(ctx context.Context, now time.Time) ([]*CrisisEvent, error)
	ScheduleFollowUp(ctx context.Context, id primitive.ObjectID, hours int64, now time.Time) error
	MarkAsResolved(ctx context.Context, id primitive.ObjectID, outcome string, now time.Time) error
	AppendFollowUpMessage(ctx context.Context, id primitive.ObjectID, msg *FollowUpMessage) error
	UpdateAlerts(ctx context.Context, id primitive.ObjectID, alerts *Alerts) error
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

// Insert 落库一条危机事件, 补齐默认生命周期字段
func (m *MongoMapper) Insert(ctx context.Context, ev *CrisisEvent) error {
	if ev.ID.IsZero() {
		ev.ID = primitive.NewObjectID()
	}
	if ev.DetectedAt.IsZero() {
		ev.DetectedAt = time.Now()
	}
	if ev.Outcome == "" {
		ev.Outcome = OutcomeUnknown
	}
	if ev.FollowUp.Messages == nil {
		ev.FollowUp.Messages = make([]*FollowUpMessage, 0)
	}
	_, err := m.conn.InsertOneNoCache(ctx, ev)
	return err
}

// FindRecent 获取回溯窗口内的事件, 按检测时间倒序
func (m *MongoMapper) FindRecent(ctx context.Context, userId string, days int) ([]*CrisisEvent, error) {
	since := time.Now().AddDate(0, 0, -days)
	data := make([]*CrisisEvent, 0)
	err := m.conn.Find(ctx, &data,
		bson.M{
			consts.UserId:     userId,
			consts.DetectedAt: bson.M{"$gte": since},
		}, &options.FindOptions{
			Sort: bson.M{consts.DetectedAt: -1},
		})
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (m *MongoMapper) FindMany(ctx context.Context, userId string, p *dto.Paging) ([]*CrisisEvent, int64, error) {
	skip, limit := util.ParsePaging(p)
	filter := bson.M{consts.UserId: userId}
	data := make([]*CrisisEvent, 0, limit)
	err := m.conn.Find(ctx, &data, filter, &options.FindOptions{
		Skip:  &skip,
		Limit: &limit,
		Sort:  bson.M{consts.DetectedAt: -1},
	})
	if err != nil {
		return nil, 0, err
	}
	total, err := m.conn.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return data, total, nil
}

func (m *MongoMapper) CountByUser(ctx context.Context, userId string) (int64, error) {
	return m.conn.CountDocuments(ctx, bson.M{consts.UserId: userId})
}

// FindPendingFollowUps 获取已排期/未完成且已到期的事件
func (m *MongoMapper) FindPendingFollowUps(ctx context.Context, now time.Time) ([]*CrisisEvent, error) {
	data := make([]*CrisisEvent, 0)
	err := m.conn.Find(ctx, &data,
		bson.M{
			consts.FollowUpScheduled:   true,
			consts.FollowUpCompleted:   false,
			consts.FollowUpScheduledAt: bson.M{"$lte": now},
		}, &options.FindOptions{
			Sort: bson.M{consts.FollowUpScheduledAt: 1},
		})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// ScheduleFollowUp 排期跟进, 重复调用只覆盖排期时间不产生重复项
func (m *MongoMapper) ScheduleFollowUp(ctx context.Context, id primitive.ObjectID, hours int64, now time.Time) error {
	res, err := m.conn.UpdateOneNoCache(ctx,
		bson.M{consts.ID: id},
		scheduleUpdate(now.Add(time.Duration(hours)*time.Hour)))
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return consts.ErrEventNotFound
	}
	return nil
}

// scheduleUpdate 只用$set覆写排期字段, 保证重复排期幂等
func scheduleUpdate(at time.Time) bson.M {
	return bson.M{
		"$set": bson.M{
			consts.FollowUpScheduled:   true,
			consts.FollowUpScheduledAt: at,
		},
	}
}

// MarkAsResolved 结束跟进并记录结局, resolved才视作已解除
func (m *MongoMapper) MarkAsResolved(ctx context.Context, id primitive.ObjectID, outcome string, now time.Time) error {
	res, err := m.conn.UpdateOneNoCache(ctx,
		bson.M{consts.ID: id},
		resolveUpdate(outcome, now))
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return consts.ErrEventNotFound
	}
	return nil
}

func resolveUpdate(outcome string, now time.Time) bson.M {
	set := bson.M{
		consts.Outcome:             outcome,
		consts.FollowUpCompleted:   true,
		consts.FollowUpCompletedAt: now,
	}
	if outcome == OutcomeResolved {
		set[consts.ResolvedAt] = now
	}
	return bson.M{"$set": set}
}

// AppendFollowUpMessage 追加一条跟进消息记录
func (m *MongoMapper) AppendFollowUpMessage(ctx context.Context, id primitive.ObjectID, msg *FollowUpMessage) error {
	_, err := m.conn.UpdateOneNoCache(ctx,
		bson.M{consts.ID: id},
		bson.M{"$push": bson.M{consts.FollowUpMessages: msg}})
	return err
}

// UpdateAlerts 回写告警分发结果
func (m *MongoMapper) UpdateAlerts(ctx context.Context, id primitive.ObjectID, alerts *Alerts) error {
	_, err := m.conn.UpdateOneNoCache(ctx,
		bson.M{consts.ID: id},
		bson.M{"$set": bson.M{consts.AlertsField: alerts}})
	return err
}
