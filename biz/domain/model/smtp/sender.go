package smtp

import (
	"fmt"
	"net/smtp"
	"strconv"

	"golang.org/x/net/context"

	"github.com/Mar-cere/Anto-sub003/biz/infrastructure/config"
)

// Sender 通过SMTP发送告警邮件
type Sender struct {
	conf config.SMTP
}

func NewSender(c *config.Config) *Sender {
	return &Sender{conf: c.SMTP}
}

// Send 发送一封HTML邮件
func (s *Sender) Send(_ context.Context, to, subject, html string) error {
	c := s.conf
	from := c.From
	if from == "" {
		from = c.Username
	}
	auth := smtp.PlainAuth("", c.Username, c.Password, c.Host)
	return smtp.SendMail(c.Host+":"+strconv.Itoa(c.Port), auth, c.Username, []string{to}, []byte(fmt.Sprintf(
		"To: %s\r\n"+
			"From: %s\r\n"+
			"Content-Type: text/html"+"; charset=UTF-8\r\n"+
			"Subject: %s\r\n\r\n"+
			"%s\r\n", to, from, subject, html)))
}
