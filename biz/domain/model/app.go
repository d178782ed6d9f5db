package model

import (
	"golang.org/x/net/context"
)

// EmailSender 是邮件通道的抽象
type EmailSender interface {
	// Send 发送一封HTML邮件
	Send(ctx context.Context, to, subject, html string) error
}

// MessagingSender 是短信/即时消息通道的抽象, 可配置多个按优先级尝试
type MessagingSender interface {
	// Configured 通道是否可用, 未配置时跳过而非报错
	Configured() bool

	// Name 通道名, 用于记录
	Name() string

	// Send 向手机号发送一条消息
	Send(ctx context.Context, phone, body string) error
}

// PushSender 是应用内推送通道的抽象
type PushSender interface {
	Send(ctx context.Context, token, title, body string, data map[string]string) error
}
