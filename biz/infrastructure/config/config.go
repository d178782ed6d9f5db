package config

import (
	"github.com/zeromicro/go-zero/core/stores/cache"
	"github.com/zeromicro/go-zero/core/stores/redis"
	"os"

	"github.com/zeromicro/go-zero/core/service"

	"github.com/zeromicro/go-zero/core/conf"
)

var config *Config

type SMTP struct {
	Username string
	Password string
	Host     string
	Port     int
	From     string
}

// MessagingProvider 短信通道配置, Url为空视为未配置
type MessagingProvider struct {
	Name   string `json:",optional"`
	Url    string `json:",optional"`
	ApiKey string `json:",optional"`
	From   string `json:",optional"`
}

type Messaging struct {
	Primary   MessagingProvider `json:",optional"`
	Secondary MessagingProvider `json:",optional"`
}

type Push struct {
	Url    string `json:",optional"`
	ApiKey string `json:",optional"`
}

// Crisis 风险检测的可调参数, 评分阈值保持 LOW < WARNING < MEDIUM < HIGH 的顺序
type Crisis struct {
	CooldownMinutes     int64   `json:",default=60"`
	FollowUpHighHours   int64   `json:",default=12"`
	FollowUpMediumHours int64   `json:",default=24"`
	SweepIntervalHours  int64   `json:",default=1"`
	WarningScore        float64 `json:",default=3"`
	MediumScore         float64 `json:",default=5"`
	HighScore           float64 `json:",default=7"`
}

type Config struct {
	service.ServiceConf
	ListenOn string
	State    string
	Mongo    struct {
		URL string
		DB  string
	}
	Cache     cache.CacheConf  `json:",optional"`
	Redis     *redis.RedisConf `json:",optional"`
	RabbitMQ  RabbitMQ
	SMTP      SMTP
	Messaging Messaging `json:",optional"`
	Push      Push      `json:",optional"`
	Crisis    Crisis    `json:",optional"`
}

type RabbitMQ struct {
	Url string
}

func NewConfig() (*Config, error) {
	c := new(Config)
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "etc/config.yaml"
	}
	err := conf.Load(path, c)
	if err != nil {
		return nil, err
	}
	err = c.SetUp()
	if err != nil {
		return nil, err
	}
	config = c
	return c, nil
}

func GetConfig() *Config {
	return config
}
