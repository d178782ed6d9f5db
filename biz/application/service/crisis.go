package service

import (
	"time"

	"github.com/bytedance/gopkg/util/gopool"
	"github.com/google/wire"
	"github.com/jinzhu/copier"
	"github.com/xh-polaris/gopkg/util/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/net/context"

	"github.com/Mar-cere/Anto-sub003/biz/application/dto"
	"github.com/Mar-cere/Anto-sub003/biz/domain/alert"
	"github.com/Mar-cere/Anto-sub003/biz/domain/risk"
	"github.com/Mar-cere/Anto-sub003/biz/domain/trend"
	"github.com/Mar-cere/Anto-sub003/biz/infrastructure/consts"
	"github.com/Mar-cere/Anto-sub003/biz/infrastructure/mapper/crisisevent"
	"github.com/Mar-cere/Anto-sub003/biz/infrastructure/mapper/message"
	"github.com/Mar-cere/Anto-sub003/biz/infrastructure/util"
)

// recentCrisisDays 危机历史快照的回溯窗口
const recentCrisisDays = 30

// TrendAnalyzer 趋势分析器
type TrendAnalyzer interface {
	Analyze(ctx context.Context, userId string) *trend.Result
}

// RiskEvaluator 风险评估器
type RiskEvaluator interface {
	Evaluate(in *risk.Input) *risk.Assessment
}

// AlertDispatcher 告警分发器
type AlertDispatcher interface {
	SendEmergencyAlerts(ctx context.Context, userId string, level risk.Level, msgContext string, opts *alert.Options) *alert.Result
	NotifyUser(ctx context.Context, userId string, level risk.Level)
}

// FollowUpScheduler 跟进排期
type FollowUpScheduler interface {
	ScheduleInitial(ctx context.Context, id primitive.ObjectID, level risk.Level) error
}

// CrisisEventStore 危机事件账本
type CrisisEventStore interface {
	Insert(ctx context.Context, ev *crisisevent.CrisisEvent) error
	CountByUser(ctx context.Context, userId string) (int64, error)
	FindRecent(ctx context.Context, userId string, days int) ([]*crisisevent.CrisisEvent, error)
	UpdateAlerts(ctx context.Context, id primitive.ObjectID, alerts *crisisevent.Alerts) error
}

// MessageWriter 消息入库
type MessageWriter interface {
	Insert(ctx context.Context, msg *message.Message) error
}

// CrisisProducer 危机记录消息的生产者
type CrisisProducer interface {
	ProduceCrisisRecorded(ctx context.Context, userId, eventId, riskLevel string, detectedAt time.Time) error
}

type ICrisisService interface {
	HandleIncomingMessage(ctx context.Context, req *dto.HandleMessageReq) (*dto.HandleMessageResp, error)
	SendTestAlert(ctx context.Context, req *dto.TestAlertReq) (*dto.TestAlertResp, error)
}

// CrisisService 按消息驱动整条危机流水线:
// 趋势 -> 评估 -> (MEDIUM/HIGH) 账本 -> 告警 -> 跟进排期
type CrisisService struct {
	Analyzer   TrendAnalyzer
	Evaluator  RiskEvaluator
	Dispatcher AlertDispatcher
	Scheduler  FollowUpScheduler
	Events     CrisisEventStore
	Messages   MessageWriter
	Producer   CrisisProducer
}

var CrisisServiceSet = wire.NewSet(
	wire.Struct(new(CrisisService), "*"),
	wire.Bind(new(ICrisisService), new(*CrisisService)),
)

// HandleIncomingMessage 处理一条新用户消息
// 告警链路的任何失败都不允许影响对话响应, 只折叠进结果和日志
func (s *CrisisService) HandleIncomingMessage(ctx context.Context, req *dto.HandleMessageReq) (*dto.HandleMessageResp, error) {
	// 先落消息, 让趋势分析覆盖当前消息
	s.storeMessage(ctx, req)

	trends := s.Analyzer.Analyze(ctx, req.UserId)
	total, recent := s.crisisHistory(ctx, req.UserId)

	assessment := s.Evaluator.Evaluate(&risk.Input{
		Emotion:          req.Emotion,
		Intensity:        req.Intensity,
		IntentType:       req.IntentType,
		IntentConfidence: req.IntentConfidence,
		Trends:           trends.Trends,
		TrendAdjustment:  trends.RiskAdjustment,
		TotalCrises:      total,
		RecentCrises:     recent,
	})

	resp := &dto.HandleMessageResp{
		Code:      0,
		Msg:       "success",
		IsCrisis:  assessment.IsCrisis,
		RiskLevel: assessment.Level.String(),
	}

	switch assessment.Level {
	case risk.Low:
		// 无动作
	case risk.Warning:
		// WARNING只推送给用户本人, 不建事件也不打扰联系人
		s.Dispatcher.NotifyUser(ctx, req.UserId, risk.Warning)
	case risk.Medium, risk.High:
		resp.CrisisEventId = s.handleCrisis(ctx, req, assessment, trends, total, recent)
	}
	return resp, nil
}

// handleCrisis 危机路径: 账本 -> 分发 -> 回写 -> 排期 -> 异步簿记
func (s *CrisisService) handleCrisis(ctx context.Context, req *dto.HandleMessageReq,
	assessment *risk.Assessment, trends *trend.Result, total, recent int64) string {
	now := time.Now()
	ev := &crisisevent.CrisisEvent{
		UserId:     req.UserId,
		RiskLevel:  assessment.Level.String(),
		DetectedAt: now,
		TriggerMessage: crisisevent.TriggerMessage{
			MessageId: req.MessageId,
			// 隐私约束: 只存预览
			ContentPreview: util.TruncateRunes(req.Content, consts.MaxPreviewLen),
			Emotion:        req.Emotion,
			Intensity:      req.Intensity,
		},
		TrendAnalysis: trendSnapshot(trends.Trends),
		CrisisHistory: crisisevent.HistorySnapshot{
			TotalCrises:  total,
			RecentCrises: recent,
		},
		Outcome: crisisevent.OutcomeUnknown,
		Metadata: crisisevent.Metadata{
			RiskScore:         assessment.Score,
			Factors:           assessment.Factors,
			ProtectiveFactors: assessment.ProtectiveFactors,
		},
	}

	eventId := ""
	if err := s.Events.Insert(ctx, ev); err != nil {
		// 账本失败不阻断告警
		log.CtxError(ctx, "[crisis] ledger insert failed, user=%s, err=%v", req.UserId, err)
	} else {
		eventId = ev.ID.Hex()
	}

	result := s.Dispatcher.SendEmergencyAlerts(ctx, req.UserId, assessment.Level,
		util.TruncateRunes(req.Content, consts.MaxPreviewLen), &alert.Options{CrisisEventId: eventId})

	if eventId != "" {
		s.recordDispatch(ctx, ev, result, now)
		if err := s.Scheduler.ScheduleInitial(ctx, ev.ID, assessment.Level); err != nil {
			log.CtxError(ctx, "[crisis] schedule follow-up failed, event=%s, err=%v", eventId, err)
		}
		// 档案计数走后台消息, 不阻塞响应
		gopool.CtxGo(ctx, func() {
			if err := s.Producer.ProduceCrisisRecorded(context.Background(), req.UserId, eventId, assessment.Level.String(), now); err != nil {
				log.Error("[crisis] produce crisis recorded failed:", err)
			}
		})
	}
	return eventId
}

// recordDispatch 把分发结果回写到事件
func (s *CrisisService) recordDispatch(ctx context.Context, ev *crisisevent.CrisisEvent, result *alert.Result, now time.Time) {
	alerts := &crisisevent.Alerts{
		Sent:             result.Sent,
		ContactsNotified: result.SuccessfulSends,
		Channels: crisisevent.AlertChannels{
			Email:     result.SuccessfulEmails > 0,
			Messaging: result.SuccessfulMessaging > 0,
		},
	}
	if result.Sent {
		at := now
		alerts.SentAt = &at
	}
	if err := s.Events.UpdateAlerts(ctx, ev.ID, alerts); err != nil {
		log.CtxError(ctx, "[crisis] update alerts failed, event=%s, err=%v", ev.ID.Hex(), err)
	}
}

// SendTestAlert 发送一次测试告警校验联系人配置
func (s *CrisisService) SendTestAlert(ctx context.Context, req *dto.TestAlertReq) (*dto.TestAlertResp, error) {
	result := s.Dispatcher.SendEmergencyAlerts(ctx, req.UserId, risk.Medium, "", &alert.Options{IsTest: true})
	return &dto.TestAlertResp{
		Code:   0,
		Msg:    "success",
		Result: toAlertResult(result),
	}, nil
}

// storeMessage 消息入库失败只记日志
func (s *CrisisService) storeMessage(ctx context.Context, req *dto.HandleMessageReq) {
	created := time.Now()
	if req.Timestamp > 0 {
		created = time.Unix(req.Timestamp, 0)
	}
	err := s.Messages.Insert(ctx, &message.Message{
		UserId:     req.UserId,
		Role:       consts.RoleUser,
		Content:    req.Content,
		Emotion:    req.Emotion,
		Intensity:  req.Intensity,
		CreateTime: created,
	})
	if err != nil {
		log.CtxError(ctx, "[crisis] store message failed, user=%s, err=%v", req.UserId, err)
	}
}

// crisisHistory 历史快照, 读取失败按零处理
func (s *CrisisService) crisisHistory(ctx context.Context, userId string) (total, recent int64) {
	total, err := s.Events.CountByUser(ctx, userId)
	if err != nil {
		log.CtxInfo(ctx, "[crisis] count history failed, user=%s, err=%v", userId, err)
		total = 0
	}
	events, err := s.Events.FindRecent(ctx, userId, recentCrisisDays)
	if err != nil {
		log.CtxInfo(ctx, "[crisis] recent history failed, user=%s, err=%v", userId, err)
		return total, 0
	}
	return total, int64(len(events))
}

func trendSnapshot(f trend.Flags) crisisevent.TrendSnapshot {
	var snap crisisevent.TrendSnapshot
	_ = copier.Copy(&snap, &f)
	return snap
}

// toAlertResult 把分发结果转成对外DTO
func toAlertResult(r *alert.Result) *dto.AlertResult {
	out := &dto.AlertResult{
		Sent:                r.Sent,
		Reason:              r.Reason,
		TotalContacts:       r.TotalContacts,
		SuccessfulSends:     r.SuccessfulSends,
		SuccessfulEmails:    r.SuccessfulEmails,
		SuccessfulMessaging: r.SuccessfulMessaging,
		Contacts:            make([]*dto.ContactResult, 0, len(r.Contacts)),
	}
	for _, c := range r.Contacts {
		out.Contacts = append(out.Contacts, &dto.ContactResult{
			ContactId: c.ContactId,
			Name:      c.Name,
			Status:    c.Status,
			Email:     channelSummary(c.Email),
			Messaging: channelSummary(c.Messaging),
		})
	}
	return out
}

func channelSummary(ch alert.ChannelResult) string {
	switch {
	case !ch.Attempted && ch.Error != "":
		return "skipped: " + ch.Error
	case !ch.Attempted:
		return ""
	case ch.Sent:
		return "sent"
	default:
		return "failed: " + ch.Error
	}
}
