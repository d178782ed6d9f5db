package followup

import (
	"time"

	"github.com/bytedance/gopkg/util/gopool"
	"github.com/montanaflynn/stats"
	"github.com/xh-polaris/gopkg/util/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/net/context"

	"github.com/Mar-cere/Anto-sub003/biz/domain/risk"
	"github.com/Mar-cere/Anto-sub003/biz/infrastructure/config"
	"github.com/Mar-cere/Anto-sub003/biz/infrastructure/consts"
	"github.com/Mar-cere/Anto-sub003/biz/infrastructure/mapper/crisisevent"
	"github.com/Mar-cere/Anto-sub003/biz/infrastructure/mapper/message"
	"github.com/Mar-cere/Anto-sub003/biz/infrastructure/mapper/profile"
)

// 情绪状态分类阈值: 平均强度<5好转, >7恶化, 其余平稳
const (
	improvedBelow = 5.0
	worsenedAbove = 7.0
	activityHours = 24
)

// EventStore 跟进调度需要的账本操作
type EventStore interface {
	FindPendingFollowUps(ctx context.Context, now time.Time) ([]*crisisevent.CrisisEvent, error)
	ScheduleFollowUp(ctx context.Context, id primitive.ObjectID, hours int64, now time.Time) error
	MarkAsResolved(ctx context.Context, id primitive.ObjectID, outcome string, now time.Time) error
	AppendFollowUpMessage(ctx context.Context, id primitive.ObjectID, msg *crisisevent.FollowUpMessage) error
}

// MessageStore 最近活动检查
type MessageStore interface {
	FindAnnotatedSince(ctx context.Context, userId string, since time.Time) ([]*message.Message, error)
}

// ProfileStore 用于取推送token和语言
type ProfileStore interface {
	GetByUser(ctx context.Context, userId string) (*profile.Profile, error)
}

// PushSender 跟进问候通道
type PushSender interface {
	Send(ctx context.Context, token, title, body string, data map[string]string) error
}

// Scheduler 周期扫描到期的跟进并推进状态机
// 状态流转: 未排期 -> 已排期 -> 到期 -> 完成, 到期由墙钟隐式触发
type Scheduler struct {
	events   EventStore
	messages MessageStore
	profiles ProfileStore
	push     PushSender

	highDelayHours   int64
	mediumDelayHours int64
	interval         time.Duration
	clock            func() time.Time
}

func NewScheduler(c *config.Config, events EventStore, messages MessageStore, profiles ProfileStore, push PushSender) *Scheduler {
	high, medium := c.Crisis.FollowUpHighHours, c.Crisis.FollowUpMediumHours
	if high <= 0 {
		high = 12
	}
	if medium <= 0 {
		medium = 24
	}
	hours := c.Crisis.SweepIntervalHours
	if hours <= 0 {
		hours = 1
	}
	return &Scheduler{
		events:           events,
		messages:         messages,
		profiles:         profiles,
		push:             push,
		highDelayHours:   high,
		mediumDelayHours: medium,
		interval:         time.Duration(hours) * time.Hour,
		clock:            time.Now,
	}
}

// ScheduleInitial 危机创建后按等级排期首次跟进, 重复调用只覆盖排期
func (s *Scheduler) ScheduleInitial(ctx context.Context, id primitive.ObjectID, level risk.Level) error {
	hours := s.mediumDelayHours
	if level == risk.High {
		hours = s.highDelayHours
	}
	return s.events.ScheduleFollowUp(ctx, id, hours, s.clock())
}

// Start 启动周期扫描, 进程启动时先立即执行一次
func (s *Scheduler) Start(ctx context.Context) {
	gopool.CtxGo(ctx, func() {
		s.RunOnce(ctx)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.RunOnce(ctx)
			}
		}
	})
}

// RunOnce 处理所有到期跟进, 可重入且只作用于已落库事件
func (s *Scheduler) RunOnce(ctx context.Context) {
	now := s.clock()
	due, err := s.events.FindPendingFollowUps(ctx, now)
	if err != nil {
		log.CtxError(ctx, "[followup] query pending failed, err=%v", err)
		return
	}
	for _, ev := range due {
		if err := s.process(ctx, ev, now); err != nil {
			log.CtxError(ctx, "[followup] process event=%s failed, err=%v", ev.ID.Hex(), err)
		}
	}
}

// process 单个到期事件: 有近期活动则分类收尾, 否则发一条问候保持待跟进
func (s *Scheduler) process(ctx context.Context, ev *crisisevent.CrisisEvent, now time.Time) error {
	recent, err := s.messages.FindAnnotatedSince(ctx, ev.UserId, now.Add(-activityHours*time.Hour))
	if err != nil {
		return err
	}

	if len(recent) == 0 {
		return s.sendCheckIn(ctx, ev, now)
	}

	outcome := crisisevent.OutcomeOngoing
	if classify(recent) == "improved" {
		outcome = crisisevent.OutcomeResolved
	}
	return s.events.MarkAsResolved(ctx, ev.ID, outcome, now)
}

// classify 按近期平均强度分类情绪状态
func classify(msgs []*message.Message) string {
	intensities := make([]float64, 0, len(msgs))
	for _, m := range msgs {
		intensities = append(intensities, m.Intensity)
	}
	avg, err := stats.Mean(intensities)
	if err != nil {
		return "stable"
	}
	switch {
	case avg < improvedBelow:
		return "improved"
	case avg > worsenedAbove:
		return "worsened"
	default:
		return "stable"
	}
}

// sendCheckIn 推送跟进问候并在事件上留痕, 事件保持到期状态等待用户回应
func (s *Scheduler) sendCheckIn(ctx context.Context, ev *crisisevent.CrisisEvent, now time.Time) error {
	lang := consts.LangEs
	p, err := s.profiles.GetByUser(ctx, ev.UserId)
	if err == nil && p != nil && p.Language != "" {
		lang = p.Language
	}
	if err == nil && p != nil && p.PushToken != "" {
		title, body := checkInContent(lang)
		if pushErr := s.push.Send(ctx, p.PushToken, title, body, map[string]string{
			"type":     "follow_up",
			"event_id": ev.ID.Hex(),
		}); pushErr != nil {
			log.CtxError(ctx, "[followup] check-in push failed, event=%s, err=%v", ev.ID.Hex(), pushErr)
		}
	}
	return s.events.AppendFollowUpMessage(ctx, ev.ID, &crisisevent.FollowUpMessage{
		SentAt: now,
	})
}

func checkInContent(lang string) (title, body string) {
	if lang == consts.LangEn {
		return "Checking in", "How are you feeling today? Take a moment to tell us."
	}
	return "¿Cómo estás?", "¿Cómo te sientes hoy? Tómate un momento para contarnos."
}
