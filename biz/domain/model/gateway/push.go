package gateway

import (
	"fmt"
	"net/http"

	"golang.org/x/net/context"

	"github.com/Mar-cere/Anto-sub003/biz/infrastructure/config"
	"github.com/Mar-cere/Anto-sub003/biz/infrastructure/consts"
	"github.com/Mar-cere/Anto-sub003/biz/infrastructure/util"
)

// PushSender 调用HTTP推送网关向用户设备发送应用内通知
type PushSender struct {
	conf   config.Push
	client *util.HttpClient
}

func NewPushSender(c *config.Config) *PushSender {
	return &PushSender{
		conf:   c.Push,
		client: util.GetHttpClient(),
	}
}

// Send 发送一条推送, 无token或未配置时由调用方跳过
func (s *PushSender) Send(_ context.Context, token, title, body string, data map[string]string) error {
	if s.conf.Url == "" {
		return fmt.Errorf("push provider not configured")
	}
	headers := http.Header{}
	headers.Set("Authorization", "key="+s.conf.ApiKey)
	resp, err := s.client.Req(consts.Post, s.conf.Url, headers, map[string]interface{}{
		"to":    token,
		"title": title,
		"body":  body,
		"data":  data,
	})
	if err != nil {
		return err
	}
	if ok, exist := resp["success"].(bool); exist && !ok {
		return fmt.Errorf("push rejected: %v", resp["error"])
	}
	return nil
}
