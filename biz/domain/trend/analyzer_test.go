package trend

import (
	"errors"
	"testing"
	"time"

	"golang.org/x/net/context"

	"github.com/Mar-cere/Anto-sub003/biz/infrastructure/mapper/message"
)

type fakeMessageStore struct {
	msgs []*message.Message
	err  error
}

func (f *fakeMessageStore) FindAnnotatedSince(_ context.Context, _ string, since time.Time) ([]*message.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*message.Message, 0, len(f.msgs))
	for _, m := range f.msgs {
		if m.CreateTime.After(since) {
			out = append(out, m)
		}
	}
	return out, nil
}

func testAnalyzer(store MessageStore, now time.Time) *Analyzer {
	return &Analyzer{
		messages: store,
		clock:    func() time.Time { return now },
	}
}

func msgAt(now time.Time, daysAgo int, emotion string, intensity float64) *message.Message {
	return &message.Message{
		UserId:     "u1",
		Role:       "user",
		Emotion:    emotion,
		Intensity:  intensity,
		CreateTime: now.AddDate(0, 0, -daysAgo),
	}
}

func TestAnalyzeEscalation(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeMessageStore{}
	// 中期基线: 强度5, 最近几天跳到9
	for i := 0; i < 10; i++ {
		store.msgs = append(store.msgs, msgAt(now, 20, "sadness", 5))
	}
	for i := 0; i < 4; i++ {
		store.msgs = append(store.msgs, msgAt(now, 2, "sadness", 9))
	}

	r := testAnalyzer(store, now).Analyze(context.Background(), "u1")

	if r.Trends.IntensityTrend != TrendIncreasing {
		t.Fatalf("intensity trend = %s, want %s", r.Trends.IntensityTrend, TrendIncreasing)
	}
	if !r.Trends.Escalation {
		t.Fatal("expected escalation flag")
	}
	if r.RiskAdjustment <= 0 {
		t.Fatalf("risk adjustment = %f, want positive", r.RiskAdjustment)
	}
	if len(r.Warnings) == 0 {
		t.Fatal("expected at least one warning")
	}
}

func TestAnalyzeIsolation(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeMessageStore{}
	// 前三周密集, 最近一周几乎沉默
	for day := 10; day <= 25; day++ {
		store.msgs = append(store.msgs, msgAt(now, day, "neutral", 5))
	}
	store.msgs = append(store.msgs, msgAt(now, 3, "neutral", 5))

	r := testAnalyzer(store, now).Analyze(context.Background(), "u1")

	if r.Trends.FrequencyTrend != TrendDecreasing {
		t.Fatalf("frequency trend = %s, want %s", r.Trends.FrequencyTrend, TrendDecreasing)
	}
	if !r.Trends.Isolation {
		t.Fatal("expected isolation flag")
	}
	if r.RiskAdjustment <= 0 {
		t.Fatalf("risk adjustment = %f, want positive", r.RiskAdjustment)
	}
}

func TestAnalyzeSustainedLow(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeMessageStore{}
	for day := 1; day <= 20; day++ {
		store.msgs = append(store.msgs, msgAt(now, day, "sadness", 3))
	}

	r := testAnalyzer(store, now).Analyze(context.Background(), "u1")

	if !r.Trends.SustainedLow {
		t.Fatal("expected sustained low flag")
	}
	if r.RiskAdjustment <= 0 {
		t.Fatalf("risk adjustment = %f, want positive", r.RiskAdjustment)
	}
}

func TestAnalyzeEmptyHistory(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r := testAnalyzer(&fakeMessageStore{}, now).Analyze(context.Background(), "u1")

	if r.Trends != defaultFlags() {
		t.Fatalf("flags = %+v, want neutral defaults", r.Trends)
	}
	if r.RiskAdjustment != 0 {
		t.Fatalf("risk adjustment = %f, want 0", r.RiskAdjustment)
	}
	if r.Short.MessageCount != 0 {
		t.Fatalf("short count = %d, want 0", r.Short.MessageCount)
	}
}

func TestAnalyzeStoreFailureIsNeutral(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeMessageStore{err: errors.New("mongo down")}

	r := testAnalyzer(store, now).Analyze(context.Background(), "u1")

	if r.Trends != defaultFlags() || r.RiskAdjustment != 0 {
		t.Fatalf("failure should degrade to neutral, got %+v adj=%f", r.Trends, r.RiskAdjustment)
	}
}

func TestVolatilityBuckets(t *testing.T) {
	now := time.Now()
	flat := []*message.Message{msgAt(now, 1, "sadness", 5), msgAt(now, 2, "sadness", 5)}
	if v := volatility(flat); v != VolatilityLow {
		t.Fatalf("flat volatility = %s, want %s", v, VolatilityLow)
	}
	wild := []*message.Message{
		msgAt(now, 1, "sadness", 1),
		msgAt(now, 2, "sadness", 9),
		msgAt(now, 3, "sadness", 2),
		msgAt(now, 4, "sadness", 8),
	}
	if v := volatility(wild); v != VolatilityHigh {
		t.Fatalf("wild volatility = %s, want %s", v, VolatilityHigh)
	}
}
