package provider

import (
	"github.com/google/wire"

	"github.com/Mar-cere/Anto-sub003/biz/application/service"
	"github.com/Mar-cere/Anto-sub003/biz/domain/alert"
	"github.com/Mar-cere/Anto-sub003/biz/domain/followup"
	"github.com/Mar-cere/Anto-sub003/biz/domain/live"
	"github.com/Mar-cere/Anto-sub003/biz/domain/model"
	"github.com/Mar-cere/Anto-sub003/biz/domain/model/gateway"
	"github.com/Mar-cere/Anto-sub003/biz/domain/model/smtp"
	"github.com/Mar-cere/Anto-sub003/biz/domain/risk"
	"github.com/Mar-cere/Anto-sub003/biz/domain/trend"
	"github.com/Mar-cere/Anto-sub003/biz/infrastructure/config"
	"github.com/Mar-cere/Anto-sub003/biz/infrastructure/mapper/contact"
	"github.com/Mar-cere/Anto-sub003/biz/infrastructure/mapper/crisisevent"
	"github.com/Mar-cere/Anto-sub003/biz/infrastructure/mapper/emergencyalert"
	"github.com/Mar-cere/Anto-sub003/biz/infrastructure/mapper/message"
	"github.com/Mar-cere/Anto-sub003/biz/infrastructure/mapper/profile"
	"github.com/Mar-cere/Anto-sub003/biz/infrastructure/mq"
)

var provider *Provider

func Init() {
	var err error
	provider, err = NewProvider()
	if err != nil {
		panic(err)
	}
}

// Provider 提供controller和main依赖的对象
type Provider struct {
	Config        *config.Config
	CrisisService service.ICrisisService
	ReportService service.IReportService
	Hub           *live.Hub
	Scheduler     *followup.Scheduler
	Cooldown      alert.CooldownCache
}

func Get() *Provider {
	return provider
}

// NewMessagingSenders 按主备顺序构造短信通道, 未配置的通道保留但标记不可用
func NewMessagingSenders(c *config.Config) []model.MessagingSender {
	return []model.MessagingSender{
		gateway.NewMessagingSender(c.Messaging.Primary),
		gateway.NewMessagingSender(c.Messaging.Secondary),
	}
}

var ApplicationSet = wire.NewSet(
	service.CrisisServiceSet,
	service.ReportServiceSet,
)

var DomainSet = wire.NewSet(
	trend.NewAnalyzer,
	wire.Bind(new(service.TrendAnalyzer), new(*trend.Analyzer)),
	risk.NewEvaluator,
	wire.Bind(new(service.RiskEvaluator), new(*risk.Evaluator)),
	alert.NewDispatcher,
	wire.Bind(new(service.AlertDispatcher), new(*alert.Dispatcher)),
	alert.NewCooldownCache,
	followup.NewScheduler,
	wire.Bind(new(service.FollowUpScheduler), new(*followup.Scheduler)),
	live.NewHub,
	smtp.NewSender,
	wire.Bind(new(model.EmailSender), new(*smtp.Sender)),
	gateway.NewPushSender,
	wire.Bind(new(model.PushSender), new(*gateway.PushSender)),
	wire.Bind(new(followup.PushSender), new(*gateway.PushSender)),
	NewMessagingSenders,
)

var InfrastructureSet = wire.NewSet(
	config.NewConfig,
	message.NewMongoMapper,
	wire.Bind(new(trend.MessageStore), new(*message.MongoMapper)),
	wire.Bind(new(followup.MessageStore), new(*message.MongoMapper)),
	wire.Bind(new(service.MessageWriter), new(*message.MongoMapper)),
	crisisevent.NewMongoMapper,
	wire.Bind(new(service.CrisisEventStore), new(*crisisevent.MongoMapper)),
	wire.Bind(new(service.EventReader), new(*crisisevent.MongoMapper)),
	wire.Bind(new(followup.EventStore), new(*crisisevent.MongoMapper)),
	emergencyalert.NewMongoMapper,
	wire.Bind(new(alert.AlertStore), new(*emergencyalert.MongoMapper)),
	wire.Bind(new(service.AlertReader), new(*emergencyalert.MongoMapper)),
	contact.NewMongoMapper,
	wire.Bind(new(alert.ContactStore), new(*contact.MongoMapper)),
	profile.NewMongoMapper,
	wire.Bind(new(alert.ProfileStore), new(*profile.MongoMapper)),
	wire.Bind(new(followup.ProfileStore), new(*profile.MongoMapper)),
	mq.GetCrisisProducer,
	wire.Bind(new(service.CrisisProducer), new(*mq.CrisisProducer)),
)

var AllProvider = wire.NewSet(
	ApplicationSet,
	DomainSet,
	InfrastructureSet,
)
