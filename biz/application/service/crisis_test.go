package service

import (
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/net/context"

	"github.com/Mar-cere/Anto-sub003/biz/application/dto"
	"github.com/Mar-cere/Anto-sub003/biz/domain/alert"
	"github.com/Mar-cere/Anto-sub003/biz/domain/risk"
	"github.com/Mar-cere/Anto-sub003/biz/domain/trend"
	"github.com/Mar-cere/Anto-sub003/biz/infrastructure/mapper/crisisevent"
	"github.com/Mar-cere/Anto-sub003/biz/infrastructure/mapper/message"
)

type stubAnalyzer struct{}

func (stubAnalyzer) Analyze(context.Context, string) *trend.Result {
	return &trend.Result{Trends: trend.Flags{}}
}

type stubEvaluator struct {
	assessment *risk.Assessment
}

func (s *stubEvaluator) Evaluate(*risk.Input) *risk.Assessment {
	return s.assessment
}

type recordingDispatcher struct {
	sendCalls   int
	lastOpts    *alert.Options
	notifyCalls int
	result      *alert.Result
}

func (d *recordingDispatcher) SendEmergencyAlerts(_ context.Context, _ string, _ risk.Level, _ string, opts *alert.Options) *alert.Result {
	d.sendCalls++
	d.lastOpts = opts
	return d.result
}

func (d *recordingDispatcher) NotifyUser(context.Context, string, risk.Level) {
	d.notifyCalls++
}

type recordingScheduler struct {
	calls  int
	lastId primitive.ObjectID
}

func (s *recordingScheduler) ScheduleInitial(_ context.Context, id primitive.ObjectID, _ risk.Level) error {
	s.calls++
	s.lastId = id
	return nil
}

type recordingEventStore struct {
	inserted     []*crisisevent.CrisisEvent
	alertUpdates int
}

func (s *recordingEventStore) Insert(_ context.Context, ev *crisisevent.CrisisEvent) error {
	ev.ID = primitive.NewObjectID()
	s.inserted = append(s.inserted, ev)
	return nil
}

func (s *recordingEventStore) CountByUser(context.Context, string) (int64, error) { return 0, nil }

func (s *recordingEventStore) FindRecent(context.Context, string, int) ([]*crisisevent.CrisisEvent, error) {
	return nil, nil
}

func (s *recordingEventStore) UpdateAlerts(context.Context, primitive.ObjectID, *crisisevent.Alerts) error {
	s.alertUpdates++
	return nil
}

type recordingMessages struct {
	inserted []*message.Message
}

func (s *recordingMessages) Insert(_ context.Context, m *message.Message) error {
	s.inserted = append(s.inserted, m)
	return nil
}

type recordingProducer struct {
	mu    sync.Mutex
	calls int
}

func (p *recordingProducer) ProduceCrisisRecorded(context.Context, string, string, string, time.Time) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return nil
}

func (p *recordingProducer) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func testCrisisService(level risk.Level, isCrisis bool) (*CrisisService, *recordingDispatcher, *recordingScheduler, *recordingEventStore, *recordingMessages, *recordingProducer) {
	dispatcher := &recordingDispatcher{result: &alert.Result{Sent: true, SuccessfulSends: 1, SuccessfulEmails: 1, Contacts: []*alert.ContactResult{}}}
	scheduler := &recordingScheduler{}
	events := &recordingEventStore{}
	messages := &recordingMessages{}
	producer := &recordingProducer{}
	svc := &CrisisService{
		Analyzer:   stubAnalyzer{},
		Evaluator:  &stubEvaluator{assessment: &risk.Assessment{Level: level, IsCrisis: isCrisis, Score: 6}},
		Dispatcher: dispatcher,
		Scheduler:  scheduler,
		Events:     events,
		Messages:   messages,
		Producer:   producer,
	}
	return svc, dispatcher, scheduler, events, messages, producer
}

func TestHandleLowDoesNothing(t *testing.T) {
	svc, dispatcher, scheduler, events, messages, _ := testCrisisService(risk.Low, false)
	resp, err := svc.HandleIncomingMessage(context.Background(), &dto.HandleMessageReq{UserId: "u1", Content: "hola"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.IsCrisis || resp.CrisisEventId != "" {
		t.Fatalf("LOW response should be quiet: %+v", resp)
	}
	if dispatcher.sendCalls != 0 || dispatcher.notifyCalls != 0 || scheduler.calls != 0 {
		t.Fatal("LOW must not dispatch, notify, or schedule")
	}
	if len(events.inserted) != 0 {
		t.Fatal("LOW must not create a crisis event")
	}
	if len(messages.inserted) != 1 {
		t.Fatal("the message itself must still be stored")
	}
}

// WARNING只通知用户本人: 不建事件, 不打扰联系人
func TestHandleWarningNotifiesUserOnly(t *testing.T) {
	svc, dispatcher, scheduler, events, _, _ := testCrisisService(risk.Warning, false)
	resp, err := svc.HandleIncomingMessage(context.Background(), &dto.HandleMessageReq{UserId: "u1", Content: "no sé"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.RiskLevel != "WARNING" || resp.CrisisEventId != "" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if dispatcher.notifyCalls != 1 {
		t.Fatalf("notify calls = %d, want 1", dispatcher.notifyCalls)
	}
	if dispatcher.sendCalls != 0 || scheduler.calls != 0 || len(events.inserted) != 0 {
		t.Fatal("WARNING must not create events or alert contacts")
	}
}

func TestHandleMediumRunsFullPipeline(t *testing.T) {
	svc, dispatcher, scheduler, events, _, producer := testCrisisService(risk.Medium, true)
	resp, err := svc.HandleIncomingMessage(context.Background(), &dto.HandleMessageReq{
		UserId:    "u1",
		MessageId: "m1",
		Content:   "ya no puedo más",
		Emotion:   "sadness",
		Intensity: 8,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !resp.IsCrisis || resp.CrisisEventId == "" {
		t.Fatalf("expected crisis response with event id: %+v", resp)
	}
	if len(events.inserted) != 1 {
		t.Fatalf("events inserted = %d, want 1", len(events.inserted))
	}
	if dispatcher.sendCalls != 1 {
		t.Fatalf("dispatch calls = %d, want 1", dispatcher.sendCalls)
	}
	if events.alertUpdates != 1 {
		t.Fatalf("alert writebacks = %d, want 1", events.alertUpdates)
	}
	if scheduler.calls != 1 || scheduler.lastId != events.inserted[0].ID {
		t.Fatal("follow-up must be scheduled for the new event")
	}

	deadline := time.Now().Add(2 * time.Second)
	for producer.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if producer.count() != 1 {
		t.Fatalf("producer calls = %d, want 1", producer.count())
	}
}

// 事件里只允许保存预览, 长消息必须被截断
func TestHandleCrisisTruncatesPreview(t *testing.T) {
	svc, _, _, events, _, _ := testCrisisService(risk.High, true)
	long := strings.Repeat("añoranza ", 60)
	_, err := svc.HandleIncomingMessage(context.Background(), &dto.HandleMessageReq{UserId: "u1", Content: long})
	if err != nil {
		t.Fatal(err)
	}
	preview := events.inserted[0].TriggerMessage.ContentPreview
	if utf8.RuneCountInString(preview) > 200 {
		t.Fatalf("preview runes = %d, want <= 200", utf8.RuneCountInString(preview))
	}
	if preview == long {
		t.Fatal("full content must not be stored")
	}
}

func TestSendTestAlertMarksTest(t *testing.T) {
	svc, dispatcher, _, _, _, _ := testCrisisService(risk.Low, false)
	resp, err := svc.SendTestAlert(context.Background(), &dto.TestAlertReq{UserId: "u1"})
	if err != nil {
		t.Fatal(err)
	}
	if dispatcher.lastOpts == nil || !dispatcher.lastOpts.IsTest {
		t.Fatal("test alert must set the test option")
	}
	if resp.Result == nil || !resp.Result.Sent {
		t.Fatalf("unexpected result: %+v", resp.Result)
	}
}

func TestChannelSummary(t *testing.T) {
	cases := []struct {
		ch   alert.ChannelResult
		want string
	}{
		{alert.ChannelResult{}, ""},
		{alert.ChannelResult{Error: "not configured"}, "skipped: not configured"},
		{alert.ChannelResult{Attempted: true, Sent: true}, "sent"},
		{alert.ChannelResult{Attempted: true, Error: "smtp down"}, "failed: smtp down"},
	}
	for _, tc := range cases {
		if got := channelSummary(tc.ch); got != tc.want {
			t.Fatalf("summary(%+v) = %q, want %q", tc.ch, got, tc.want)
		}
	}
}
