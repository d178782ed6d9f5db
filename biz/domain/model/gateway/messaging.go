package gateway

import (
	"fmt"
	"net/http"

	"golang.org/x/net/context"

	"github.com/Mar-cere/Anto-sub003/biz/infrastructure/config"
	"github.com/Mar-cere/Anto-sub003/biz/infrastructure/consts"
	"github.com/Mar-cere/Anto-sub003/biz/infrastructure/util"
)

// MessagingSender 调用HTTP短信网关, Url为空视为未配置
type MessagingSender struct {
	conf   config.MessagingProvider
	client *util.HttpClient
}

func NewMessagingSender(conf config.MessagingProvider) *MessagingSender {
	return &MessagingSender{
		conf:   conf,
		client: util.GetHttpClient(),
	}
}

// Configured 通道是否可用
func (s *MessagingSender) Configured() bool {
	return s.conf.Url != ""
}

// Name 通道名
func (s *MessagingSender) Name() string {
	if s.conf.Name != "" {
		return s.conf.Name
	}
	return "messaging"
}

// Send 向手机号发送一条消息
func (s *MessagingSender) Send(_ context.Context, phone, body string) error {
	if !s.Configured() {
		return fmt.Errorf("messaging provider not configured")
	}
	headers := http.Header{}
	headers.Set("Authorization", "Bearer "+s.conf.ApiKey)
	resp, err := s.client.Req(consts.Post, s.conf.Url, headers, map[string]interface{}{
		"to":   phone,
		"from": s.conf.From,
		"body": body,
	})
	if err != nil {
		return err
	}
	if ok, exist := resp["success"].(bool); exist && !ok {
		return fmt.Errorf("gateway rejected message: %v", resp["error"])
	}
	return nil
}
