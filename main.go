package main

import (
	"context"
	"flag"
	"time"

	"github.com/bytedance/gopkg/util/gopool"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/golang/glog"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"

	"github.com/Mar-cere/Anto-sub003/biz/adaptor/router"
	"github.com/Mar-cere/Anto-sub003/biz/domain/alert"
	"github.com/Mar-cere/Anto-sub003/biz/infrastructure/mq"
	"github.com/Mar-cere/Anto-sub003/provider"
)

func main() {
	flag.Parse()
	defer glog.Flush()

	provider.Init()
	p := provider.Get()

	ctx := context.Background()
	// 后台: 档案簿记消费者, 跟进扫描, 冷却清理
	gopool.Go(mq.Consume)
	p.Scheduler.Start(ctx)
	cooldown := time.Duration(p.Config.Crisis.CooldownMinutes) * time.Minute
	alert.StartCooldownSweeper(ctx, p.Cooldown, cooldown, cooldown)

	tracer, cfg := hertztracing.NewServerTracer()
	h := server.Default(server.WithHostPorts(p.Config.ListenOn), tracer)
	h.Use(hertztracing.ServerMiddleware(cfg))
	router.Register(h)
	h.Spin()
}
