package service

import (
	"fmt"
	"sort"

	"github.com/google/wire"
	"github.com/xh-polaris/gopkg/util/log"
	"golang.org/x/net/context"

	"github.com/Mar-cere/Anto-sub003/biz/application/dto"
	"github.com/Mar-cere/Anto-sub003/biz/infrastructure/mapper/crisisevent"
	"github.com/Mar-cere/Anto-sub003/biz/infrastructure/mapper/emergencyalert"
)

// defaultReportDays 未指定窗口时默认回溯30天
const defaultReportDays = 30

// EventReader 报表只读账本
type EventReader interface {
	FindRecent(ctx context.Context, userId string, days int) ([]*crisisevent.CrisisEvent, error)
	FindMany(ctx context.Context, userId string, p *dto.Paging) ([]*crisisevent.CrisisEvent, int64, error)
}

// AlertReader 报表只读告警审计
type AlertReader interface {
	FindRecent(ctx context.Context, userId string, days int) ([]*emergencyalert.EmergencyAlert, error)
}

type IReportService interface {
	Summary(ctx context.Context, req *dto.ReportReq) (*dto.SummaryResp, error)
	Trends(ctx context.Context, req *dto.ReportReq) (*dto.TrendsResp, error)
	AlertStats(ctx context.Context, req *dto.ReportReq) (*dto.AlertStatsResp, error)
	ListEvents(ctx context.Context, req *dto.ListEventsReq) (*dto.ListEventsResp, error)
}

// ReportService 危机面板的聚合统计, 无数据返回零值结构而不是错误
type ReportService struct {
	Events EventReader
	Alerts AlertReader
}

var ReportServiceSet = wire.NewSet(
	wire.Struct(new(ReportService), "*"),
	wire.Bind(new(IReportService), new(*ReportService)),
)

// Summary 窗口内的危机概览
func (s *ReportService) Summary(ctx context.Context, req *dto.ReportReq) (*dto.SummaryResp, error) {
	days := reportDays(req.Days)
	resp := &dto.SummaryResp{
		Code:                0,
		Msg:                 "success",
		Period:              periodLabel(days),
		ByLevel:             map[string]int{},
		EmotionDistribution: map[string]float64{},
	}

	events, err := s.Events.FindRecent(ctx, req.UserId, days)
	if err != nil {
		log.CtxError(ctx, "[report] read events failed, user=%s, err=%v", req.UserId, err)
		return resp, nil
	}

	resp.TotalCrises = len(events)
	resolved, scheduled, completed := 0, 0, 0
	emotions := map[string]int{}
	for _, ev := range events {
		resp.ByLevel[ev.RiskLevel]++
		if ev.Outcome == crisisevent.OutcomeResolved {
			resolved++
		}
		if ev.Alerts.Sent {
			resp.AlertsSent++
		}
		if ev.FollowUp.Scheduled {
			scheduled++
			if ev.FollowUp.Completed {
				completed++
			}
		}
		if ev.TriggerMessage.Emotion != "" {
			emotions[ev.TriggerMessage.Emotion]++
		}
	}
	if len(events) > 0 {
		resp.ResolutionRate = float64(resolved) / float64(len(events))
	}
	if scheduled > 0 {
		resp.FollowUpCompletionRate = float64(completed) / float64(scheduled)
	}
	for emotion, n := range emotions {
		resp.EmotionDistribution[emotion] = float64(n) / float64(len(events))
	}
	return resp, nil
}

// Trends 按月聚合的危机趋势
func (s *ReportService) Trends(ctx context.Context, req *dto.ReportReq) (*dto.TrendsResp, error) {
	days := reportDays(req.Days)
	resp := &dto.TrendsResp{
		Code:    0,
		Msg:     "success",
		Period:  periodLabel(days),
		Months:  make([]*dto.MonthBucket, 0),
		ByLevel: map[string]int{},
	}

	events, err := s.Events.FindRecent(ctx, req.UserId, days)
	if err != nil {
		log.CtxError(ctx, "[report] read events failed, user=%s, err=%v", req.UserId, err)
		return resp, nil
	}

	buckets := map[string]int{}
	for _, ev := range events {
		buckets[ev.DetectedAt.Format("2006-01")]++
		resp.ByLevel[ev.RiskLevel]++
	}
	months := make([]string, 0, len(buckets))
	for month := range buckets {
		months = append(months, month)
	}
	sort.Strings(months)
	for _, month := range months {
		resp.Months = append(resp.Months, &dto.MonthBucket{Month: month, Count: buckets[month]})
	}
	return resp, nil
}

// AlertStats 告警送达统计和联系人可靠性
func (s *ReportService) AlertStats(ctx context.Context, req *dto.ReportReq) (*dto.AlertStatsResp, error) {
	days := reportDays(req.Days)
	resp := &dto.AlertStatsResp{
		Code:       0,
		Msg:        "success",
		Period:     periodLabel(days),
		PerContact: make([]*dto.ContactReliability, 0),
	}

	alerts, err := s.Alerts.FindRecent(ctx, req.UserId, days)
	if err != nil {
		log.CtxError(ctx, "[report] read alerts failed, user=%s, err=%v", req.UserId, err)
		return resp, nil
	}

	perContact := map[string]*dto.ContactReliability{}
	order := make([]string, 0)
	for _, a := range alerts {
		resp.TotalAlerts++
		switch a.Status {
		case emergencyalert.StatusSent:
			resp.Sent++
		case emergencyalert.StatusPartial:
			resp.Partial++
		default:
			resp.Failed++
		}

		cr, ok := perContact[a.Contact.ContactId]
		if !ok {
			cr = &dto.ContactReliability{ContactId: a.Contact.ContactId, Name: a.Contact.Name}
			perContact[a.Contact.ContactId] = cr
			order = append(order, a.Contact.ContactId)
		}
		if a.Status == emergencyalert.StatusFailed {
			cr.Failed++
		} else {
			cr.Successful++
		}
	}
	for _, id := range order {
		resp.PerContact = append(resp.PerContact, perContact[id])
	}
	return resp, nil
}

// ListEvents 分页列出危机事件
func (s *ReportService) ListEvents(ctx context.Context, req *dto.ListEventsReq) (*dto.ListEventsResp, error) {
	events, total, err := s.Events.FindMany(ctx, req.UserId, &req.Paging)
	if err != nil {
		log.CtxError(ctx, "[report] list events failed, user=%s, err=%v", req.UserId, err)
		return &dto.ListEventsResp{Code: 0, Msg: "success", Events: make([]*dto.CrisisEventView, 0)}, nil
	}

	views := make([]*dto.CrisisEventView, 0, len(events))
	for _, ev := range events {
		views = append(views, toEventView(ev))
	}
	return &dto.ListEventsResp{
		Code:   0,
		Msg:    "success",
		Events: views,
		Total:  total,
	}, nil
}

func toEventView(ev *crisisevent.CrisisEvent) *dto.CrisisEventView {
	view := &dto.CrisisEventView{
		ID:             ev.ID.Hex(),
		RiskLevel:      ev.RiskLevel,
		DetectedAt:     ev.DetectedAt.Unix(),
		Outcome:        ev.Outcome,
		ContentPreview: ev.TriggerMessage.ContentPreview,
		Emotion:        ev.TriggerMessage.Emotion,
		RiskScore:      ev.Metadata.RiskScore,
		Factors:        ev.Metadata.Factors,
	}
	if ev.ResolvedAt != nil {
		view.ResolvedAt = ev.ResolvedAt.Unix()
	}
	return view
}

func reportDays(days int) int {
	if days <= 0 {
		return defaultReportDays
	}
	return days
}

func periodLabel(days int) string {
	return fmt.Sprintf("%dd", days)
}
