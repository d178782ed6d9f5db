package alert

import (
	"strings"
	"testing"
	"time"

	"golang.org/x/net/context"

	"github.com/Mar-cere/Anto-sub003/biz/domain/risk"
	"github.com/Mar-cere/Anto-sub003/biz/infrastructure/consts"
)

func TestMemoryCooldownRoundTrip(t *testing.T) {
	c := NewMemoryCooldown()
	ctx := context.Background()

	if _, ok := c.Get(ctx, "u1"); ok {
		t.Fatal("empty cache should miss")
	}
	now := time.Now()
	c.Set(ctx, "u1", now)
	got, ok := c.Get(ctx, "u1")
	if !ok || !got.Equal(now) {
		t.Fatalf("get = %v/%v, want %v/true", got, ok, now)
	}
}

func TestMemoryCooldownSweep(t *testing.T) {
	c := NewMemoryCooldown()
	ctx := context.Background()
	c.Set(ctx, "old", time.Now().Add(-2*time.Hour))
	c.Set(ctx, "fresh", time.Now())

	c.Sweep(time.Hour)

	if _, ok := c.Get(ctx, "old"); ok {
		t.Fatal("expired entry should be swept")
	}
	if _, ok := c.Get(ctx, "fresh"); !ok {
		t.Fatal("fresh entry should survive the sweep")
	}
}

func TestRegionFromPhone(t *testing.T) {
	cases := map[string]string{
		"+5215512345678": "MX",
		"+34600000000":   "ES",
		"+14155550123":   "US",
		"":               "",
		"garbage":        "",
	}
	for phone, want := range cases {
		if got := regionFromPhone(phone); got != want {
			t.Fatalf("region(%q) = %q, want %q", phone, got, want)
		}
	}
}

func TestEmailBodyCarriesHotline(t *testing.T) {
	body := emailBody("Ana", "hermana", risk.High, consts.LangEs, "MX", "")
	if !strings.Contains(body, hotlines["MX"]) {
		t.Fatal("email body should include the regional hotline")
	}
	if !strings.Contains(body, "Ana") {
		t.Fatal("email body should address the contact by name")
	}
}

func TestEmailSubjectMarksTestAlerts(t *testing.T) {
	normal := emailSubject(risk.High, consts.LangEn, false)
	test := emailSubject(risk.High, consts.LangEn, true)
	if normal == test {
		t.Fatal("test alerts must be labelled differently")
	}
	if !strings.Contains(strings.ToLower(test), "test") {
		t.Fatalf("test subject %q should say it is a test", test)
	}
}
