package alert

import (
	"time"

	"github.com/bytedance/gopkg/util/gopool"
	"github.com/google/uuid"
	"github.com/xh-polaris/gopkg/util/log"
	"golang.org/x/net/context"

	"github.com/Mar-cere/Anto-sub003/biz/application/dto"
	"github.com/Mar-cere/Anto-sub003/biz/domain/live"
	"github.com/Mar-cere/Anto-sub003/biz/domain/model"
	"github.com/Mar-cere/Anto-sub003/biz/domain/risk"
	"github.com/Mar-cere/Anto-sub003/biz/infrastructure/config"
	"github.com/Mar-cere/Anto-sub003/biz/infrastructure/consts"
	"github.com/Mar-cere/Anto-sub003/biz/infrastructure/mapper/contact"
	"github.com/Mar-cere/Anto-sub003/biz/infrastructure/mapper/emergencyalert"
	"github.com/Mar-cere/Anto-sub003/biz/infrastructure/mapper/profile"
)

// 拒绝原因, 属于正常业务结果而非错误
const (
	ReasonRiskTooLow     = "risk too low"
	ReasonCooldownActive = "cooldown active"
	ReasonNoContacts     = "no contacts"
	ReasonInternal       = "internal error"
)

// ContactStore 联系人读取
type ContactStore interface {
	FindActiveByUser(ctx context.Context, userId string) ([]*contact.EmergencyContact, error)
}

// ProfileStore 用户通知档案读取
type ProfileStore interface {
	GetByUser(ctx context.Context, userId string) (*profile.Profile, error)
}

// AlertStore 告警审计记录写入
type AlertStore interface {
	Insert(ctx context.Context, alert *emergencyalert.EmergencyAlert) error
}

// ChannelResult 单通道尝试结果
type ChannelResult struct {
	Attempted bool
	Sent      bool
	Error     string
}

// ContactResult 单联系人分发结果
type ContactResult struct {
	ContactId string
	Name      string
	Status    string
	Email     ChannelResult
	Messaging ChannelResult
}

// Result 一次分发的整体结果, 分发永不抛错, 失败折叠进结果
type Result struct {
	Sent                bool
	Reason              string
	TotalContacts       int
	SuccessfulSends     int
	SuccessfulEmails    int
	SuccessfulMessaging int
	Contacts            []*ContactResult
}

// Options 分发选项
type Options struct {
	// CrisisEventId 关联的危机事件, 测试告警时为空
	CrisisEventId string

	// IsTest 测试分发: 不检查冷却也不写入冷却, 不排期跟进
	IsTest bool
}

// Dispatcher 向紧急联系人多通道分发告警
// 邮件和短信互相隔离, 单通道失败只记录不回滚
type Dispatcher struct {
	contacts   ContactStore
	profiles   ProfileStore
	alerts     AlertStore
	email      model.EmailSender
	messengers []model.MessagingSender
	push       model.PushSender
	hub        *live.Hub
	cooldown   CooldownCache
	window     time.Duration
	clock      func() time.Time
}

func NewDispatcher(
	c *config.Config,
	contacts ContactStore,
	profiles ProfileStore,
	alerts AlertStore,
	email model.EmailSender,
	messengers []model.MessagingSender,
	push model.PushSender,
	hub *live.Hub,
	cooldown CooldownCache,
) *Dispatcher {
	minutes := c.Crisis.CooldownMinutes
	if minutes <= 0 {
		minutes = 60
	}
	return &Dispatcher{
		contacts:   contacts,
		profiles:   profiles,
		alerts:     alerts,
		email:      email,
		messengers: messengers,
		push:       push,
		hub:        hub,
		cooldown:   cooldown,
		window:     time.Duration(minutes) * time.Minute,
		clock:      time.Now,
	}
}

// SendEmergencyAlerts 执行一次完整分发
// 守卫 -> 冷却 -> 联系人 -> 逐联系人双通道 -> 审计落库 -> 冷却与用户通知
func (d *Dispatcher) SendEmergencyAlerts(ctx context.Context, userId string, level risk.Level, msgContext string, opts *Options) *Result {
	if opts == nil {
		opts = &Options{}
	}
	now := d.clock()

	// 风险太低直接拒绝
	if level == risk.Low {
		return &Result{Sent: false, Reason: ReasonRiskTooLow, Contacts: []*ContactResult{}}
	}

	// 冷却窗口内不重复打扰联系人
	if !opts.IsTest {
		if last, ok := d.cooldown.Get(ctx, userId); ok && now.Sub(last) < d.window {
			log.CtxInfo(ctx, "[alert] cooldown active for user=%s, last=%s", userId, last.Format(time.RFC3339))
			return &Result{Sent: false, Reason: ReasonCooldownActive, Contacts: []*ContactResult{}}
		}
	}

	contacts, err := d.contacts.FindActiveByUser(ctx, userId)
	if err != nil {
		log.CtxError(ctx, "[alert] load contacts failed, user=%s, err=%v", userId, err)
		return &Result{Sent: false, Reason: ReasonInternal, Contacts: []*ContactResult{}}
	}
	if len(contacts) == 0 {
		return &Result{Sent: false, Reason: ReasonNoContacts, Contacts: []*ContactResult{}}
	}

	lang := d.language(ctx, userId)

	result := &Result{
		TotalContacts: len(contacts),
		Contacts:      make([]*ContactResult, 0, len(contacts)),
	}
	for _, ct := range contacts {
		cr := d.dispatchToContact(ctx, userId, level, lang, msgContext, ct, opts, now)
		result.Contacts = append(result.Contacts, cr)
		if cr.Email.Sent {
			result.SuccessfulEmails++
		}
		if cr.Messaging.Sent {
			result.SuccessfulMessaging++
		}
		if cr.Email.Sent || cr.Messaging.Sent {
			result.SuccessfulSends++
		}
	}
	result.Sent = result.SuccessfulSends > 0

	// 至少一个通道成功才算本次告警生效
	if result.Sent && !opts.IsTest {
		d.cooldown.Set(ctx, userId, now)
		d.notifyUserAsync(ctx, userId, level, lang)
	}
	return result
}

// dispatchToContact 对单个联系人独立尝试邮件和短信
func (d *Dispatcher) dispatchToContact(ctx context.Context, userId string, level risk.Level, lang, msgContext string,
	ct *contact.EmergencyContact, opts *Options, now time.Time) *ContactResult {
	cr := &ContactResult{
		ContactId: ct.ID.Hex(),
		Name:      ct.Name,
	}
	region := regionFromPhone(ct.Phone)

	// 邮件通道
	if ct.Email != "" {
		cr.Email.Attempted = true
		subject := emailSubject(level, lang, opts.IsTest)
		body := emailBody(ct.Name, ct.Relationship, level, lang, region, msgContext)
		if err := d.email.Send(ctx, ct.Email, subject, body); err != nil {
			cr.Email.Error = err.Error()
			log.CtxError(ctx, "[alert] email to contact=%s failed, err=%v", cr.ContactId, err)
		} else {
			cr.Email.Sent = true
		}
	}

	// 短信通道, 无手机号则不尝试, 按优先级找第一个已配置的通道
	// 通道未配置属于配置缺失而非失败, 记录为未尝试
	if ct.Phone != "" {
		body := messagingBody(ct.Name, level, lang, opts.IsTest)
		sender := d.pickMessenger()
		if sender == nil {
			cr.Messaging.Error = "not configured"
		} else {
			cr.Messaging.Attempted = true
			if err := sender.Send(ctx, ct.Phone, body); err != nil {
				cr.Messaging.Error = err.Error()
				log.CtxError(ctx, "[alert] messaging via %s to contact=%s failed, err=%v", sender.Name(), cr.ContactId, err)
			} else {
				cr.Messaging.Sent = true
			}
		}
	}

	cr.Status = deriveStatus(cr)

	// 审计记录写入不阻塞响应
	record := d.buildRecord(userId, level, ct, cr, opts, now)
	gopool.CtxGo(ctx, func() {
		if err := d.alerts.Insert(context.Background(), record); err != nil {
			log.Error("[alert] persist alert record failed:", err)
		}
	})
	return cr
}

// pickMessenger 主通道未配置时回退到备用通道
func (d *Dispatcher) pickMessenger() model.MessagingSender {
	for _, m := range d.messengers {
		if m != nil && m.Configured() {
			return m
		}
	}
	return nil
}

// deriveStatus 全部尝试通道成功为sent, 部分为partial, 全失败为failed
func deriveStatus(cr *ContactResult) string {
	attempted, sent := 0, 0
	for _, ch := range []ChannelResult{cr.Email, cr.Messaging} {
		if !ch.Attempted {
			continue
		}
		attempted++
		if ch.Sent {
			sent++
		}
	}
	switch {
	case attempted == 0 || sent == 0:
		return emergencyalert.StatusFailed
	case sent == attempted:
		return emergencyalert.StatusSent
	default:
		return emergencyalert.StatusPartial
	}
}

// buildRecord 构造不可变的审计记录
func (d *Dispatcher) buildRecord(userId string, level risk.Level, ct *contact.EmergencyContact,
	cr *ContactResult, opts *Options, now time.Time) *emergencyalert.EmergencyAlert {
	record := &emergencyalert.EmergencyAlert{
		AlertId:       uuid.NewString(),
		UserId:        userId,
		CrisisEventId: opts.CrisisEventId,
		RiskLevel:     level.String(),
		Contact: emergencyalert.Contact{
			ContactId:    cr.ContactId,
			Name:         ct.Name,
			Email:        ct.Email,
			Phone:        ct.Phone,
			Relationship: ct.Relationship,
		},
		IsTest: opts.IsTest,
		Status: cr.Status,
		SentAt: now,
	}
	record.Channels.Email = toChannel(cr.Email, now)
	record.Channels.Messaging = toChannel(cr.Messaging, now)
	return record
}

func toChannel(cr ChannelResult, now time.Time) emergencyalert.Channel {
	ch := emergencyalert.Channel{
		Attempted: cr.Attempted,
		Sent:      cr.Sent,
		Error:     cr.Error,
	}
	if cr.Sent {
		at := now
		ch.SentAt = &at
	}
	return ch
}

// language 读取用户语言偏好, 默认西语
func (d *Dispatcher) language(ctx context.Context, userId string) string {
	p, err := d.profiles.GetByUser(ctx, userId)
	if err != nil || p == nil || p.Language == "" {
		return consts.LangEs
	}
	return p.Language
}

// notifyUserAsync 推送给用户本人并通知在线通道, 尽力而为
func (d *Dispatcher) notifyUserAsync(ctx context.Context, userId string, level risk.Level, lang string) {
	gopool.CtxGo(ctx, func() {
		bg := context.Background()
		if p, err := d.profiles.GetByUser(bg, userId); err == nil && p != nil && p.PushToken != "" {
			title, body := userPushContent(level, lang)
			if err := d.push.Send(bg, p.PushToken, title, body, map[string]string{"type": "crisis_support"}); err != nil {
				log.Error("[alert] user push failed:", err)
			}
		}
		if d.hub != nil {
			err := d.hub.Notify(userId, &dto.LiveNotice{
				Type:      "crisis_alert",
				RiskLevel: level.String(),
				Timestamp: d.clock().Unix(),
			})
			if err != nil {
				log.Error("[alert] live notify failed:", err)
			}
		}
	})
}

// NotifyUser 仅通知用户本人, WARNING等级走这条路径
func (d *Dispatcher) NotifyUser(ctx context.Context, userId string, level risk.Level) {
	d.notifyUserAsync(ctx, userId, level, d.language(ctx, userId))
}
