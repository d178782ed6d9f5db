package router

import (
	"github.com/cloudwego/hertz/pkg/app/server"

	"github.com/Mar-cere/Anto-sub003/biz/adaptor/controller/crisis"
	"github.com/Mar-cere/Anto-sub003/biz/adaptor/controller/report"
)

func Register(r *server.Hertz) {
	root := r.Group("/", _rootMw()...)
	{
		_message := root.Group("/message")
		_message.POST("/handle", append(_handlemessageMw(), crisis.HandleMessage)...)
	}
	{
		_alert := root.Group("/alert")
		_alert.POST("/test", crisis.TestAlert)
	}
	root.GET("/live", append(_liveMw(), crisis.Live)...)
	{
		_report := root.Group("/report")
		_report.GET("/summary", report.Summary)
		_report.GET("/trends", report.Trends)
		_report.GET("/alerts", report.AlertStats)
		_report.GET("/events", report.ListEvents)
	}
}
