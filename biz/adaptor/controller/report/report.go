package report

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/Mar-cere/Anto-sub003/biz/adaptor"
	"github.com/Mar-cere/Anto-sub003/biz/application/dto"
	"github.com/Mar-cere/Anto-sub003/provider"
)

// Summary .
// @router /report/summary [GET]
func Summary(ctx context.Context, c *app.RequestContext) {
	var err error
	var req dto.ReportReq
	err = c.BindAndValidate(&req)
	if err != nil {
		c.String(consts.StatusBadRequest, err.Error())
		return
	}

	p := provider.Get()
	resp, err := p.ReportService.Summary(ctx, &req)
	adaptor.PostProcess(ctx, c, &req, resp, err)
}

// Trends .
// @router /report/trends [GET]
func Trends(ctx context.Context, c *app.RequestContext) {
	var err error
	var req dto.ReportReq
	err = c.BindAndValidate(&req)
	if err != nil {
		c.String(consts.StatusBadRequest, err.Error())
		return
	}

	p := provider.Get()
	resp, err := p.ReportService.Trends(ctx, &req)
	adaptor.PostProcess(ctx, c, &req, resp, err)
}

// AlertStats .
// @router /report/alerts [GET]
func AlertStats(ctx context.Context, c *app.RequestContext) {
	var err error
	var req dto.ReportReq
	err = c.BindAndValidate(&req)
	if err != nil {
		c.String(consts.StatusBadRequest, err.Error())
		return
	}

	p := provider.Get()
	resp, err := p.ReportService.AlertStats(ctx, &req)
	adaptor.PostProcess(ctx, c, &req, resp, err)
}

// ListEvents .
// @router /report/events [GET]
func ListEvents(ctx context.Context, c *app.RequestContext) {
	var err error
	var req dto.ListEventsReq
	err = c.BindAndValidate(&req)
	if err != nil {
		c.String(consts.StatusBadRequest, err.Error())
		return
	}

	p := provider.Get()
	resp, err := p.ReportService.ListEvents(ctx, &req)
	adaptor.PostProcess(ctx, c, &req, resp, err)
}
