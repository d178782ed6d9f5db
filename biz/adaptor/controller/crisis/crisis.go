package crisis

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/hertz-contrib/websocket"
	"github.com/xh-polaris/gopkg/util/log"

	"github.com/Mar-cere/Anto-sub003/biz/adaptor"
	"github.com/Mar-cere/Anto-sub003/biz/application/dto"
	"github.com/Mar-cere/Anto-sub003/provider"
)

// HandleMessage 处理一条新用户消息并执行风险流水线
// @router /message/handle [POST]
func HandleMessage(ctx context.Context, c *app.RequestContext) {
	var err error
	var req dto.HandleMessageReq
	err = c.BindAndValidate(&req)
	if err != nil {
		c.String(consts.StatusBadRequest, err.Error())
		return
	}

	p := provider.Get()
	resp, err := p.CrisisService.HandleIncomingMessage(ctx, &req)
	adaptor.PostProcess(ctx, c, &req, resp, err)
}

// TestAlert 向紧急联系人发送测试告警, 校验配置
// @router /alert/test [POST]
func TestAlert(ctx context.Context, c *app.RequestContext) {
	var err error
	var req dto.TestAlertReq
	err = c.BindAndValidate(&req)
	if err != nil {
		c.String(consts.StatusBadRequest, err.Error())
		return
	}

	p := provider.Get()
	resp, err := p.CrisisService.SendTestAlert(ctx, &req)
	adaptor.PostProcess(ctx, c, &req, resp, err)
}

// Live 建立在线通知通道
// @router /live [GET]
func Live(ctx context.Context, c *app.RequestContext) {
	userId := c.Query("user_id")
	if userId == "" {
		c.String(consts.StatusBadRequest, "user_id required")
		return
	}

	hub := provider.Get().Hub
	// 升级协议后连接交给hub托管, 读循环只用于感知断开
	err := adaptor.UpgradeWs(ctx, c, func(ctx context.Context, conn *websocket.Conn) {
		hub.Register(userId, conn)
		defer hub.Unregister(userId, conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
	if err != nil {
		log.Error(err.Error())
	}
}
