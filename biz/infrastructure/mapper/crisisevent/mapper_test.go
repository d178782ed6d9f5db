package crisisevent

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/Mar-cere/Anto-sub003/biz/infrastructure/consts"
)

// 重复排期必须幂等: 更新只做$set覆写, 不追加任何数组
func TestScheduleUpdateIsSetOnly(t *testing.T) {
	at := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	update := scheduleUpdate(at)

	if len(update) != 1 {
		t.Fatalf("update has %d operators, want only $set", len(update))
	}
	set, ok := update["$set"].(bson.M)
	if !ok {
		t.Fatal("expected a $set document")
	}
	if set[consts.FollowUpScheduled] != true {
		t.Fatal("scheduled flag must be set")
	}
	if set[consts.FollowUpScheduledAt] != at {
		t.Fatalf("scheduled_at = %v, want %v", set[consts.FollowUpScheduledAt], at)
	}
}

func TestResolveUpdateSetsResolvedAtOnlyForResolved(t *testing.T) {
	now := time.Now()

	resolved := resolveUpdate(OutcomeResolved, now)["$set"].(bson.M)
	if _, ok := resolved[consts.ResolvedAt]; !ok {
		t.Fatal("resolved outcome must set resolved_at")
	}

	ongoing := resolveUpdate(OutcomeOngoing, now)["$set"].(bson.M)
	if _, ok := ongoing[consts.ResolvedAt]; ok {
		t.Fatal("ongoing outcome must not set resolved_at")
	}
	if ongoing[consts.FollowUpCompleted] != true {
		t.Fatal("follow-up must be marked completed either way")
	}
}
