package alert

import (
	"errors"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/net/context"

	"github.com/Mar-cere/Anto-sub003/biz/domain/model"
	"github.com/Mar-cere/Anto-sub003/biz/domain/risk"
	"github.com/Mar-cere/Anto-sub003/biz/infrastructure/consts"
	"github.com/Mar-cere/Anto-sub003/biz/infrastructure/mapper/contact"
	"github.com/Mar-cere/Anto-sub003/biz/infrastructure/mapper/emergencyalert"
	"github.com/Mar-cere/Anto-sub003/biz/infrastructure/mapper/profile"
)

type fakeContactStore struct {
	contacts []*contact.EmergencyContact
	err      error
}

func (f *fakeContactStore) FindActiveByUser(context.Context, string) ([]*contact.EmergencyContact, error) {
	return f.contacts, f.err
}

type fakeProfileStore struct {
	profile *profile.Profile
}

func (f *fakeProfileStore) GetByUser(context.Context, string) (*profile.Profile, error) {
	return f.profile, nil
}

type fakeAlertStore struct {
	mu      sync.Mutex
	records []*emergencyalert.EmergencyAlert
}

func (f *fakeAlertStore) Insert(_ context.Context, a *emergencyalert.EmergencyAlert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, a)
	return nil
}

func (f *fakeAlertStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

type fakeEmail struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (f *fakeEmail) Send(_ context.Context, to, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, to)
	return nil
}

type fakeMessaging struct {
	configured bool
	err        error
	mu         sync.Mutex
	sent       []string
}

func (f *fakeMessaging) Configured() bool { return f.configured }
func (f *fakeMessaging) Name() string     { return "fake" }
func (f *fakeMessaging) Send(_ context.Context, phone, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, phone)
	return nil
}

type fakePush struct{}

func (fakePush) Send(context.Context, string, string, string, map[string]string) error { return nil }

func testContact(name, email, phone string) *contact.EmergencyContact {
	return &contact.EmergencyContact{
		ID:           primitive.NewObjectID(),
		UserId:       "u1",
		Name:         name,
		Email:        email,
		Phone:        phone,
		Relationship: "familiar",
		Enabled:      true,
	}
}

func testDispatcher(contacts ContactStore, email model.EmailSender, messengers []model.MessagingSender, store AlertStore) *Dispatcher {
	return &Dispatcher{
		contacts:   contacts,
		profiles:   &fakeProfileStore{},
		alerts:     store,
		email:      email,
		messengers: messengers,
		push:       fakePush{},
		cooldown:   NewMemoryCooldown(),
		window:     time.Hour,
		clock:      time.Now,
	}
}

func TestSendRefusesLowRisk(t *testing.T) {
	d := testDispatcher(&fakeContactStore{}, &fakeEmail{}, nil, &fakeAlertStore{})
	r := d.SendEmergencyAlerts(context.Background(), "u1", risk.Low, "", nil)
	if r.Sent {
		t.Fatal("LOW risk must never dispatch")
	}
	if r.Reason != ReasonRiskTooLow {
		t.Fatalf("reason = %q, want %q", r.Reason, ReasonRiskTooLow)
	}
}

func TestSendNoContacts(t *testing.T) {
	d := testDispatcher(&fakeContactStore{}, &fakeEmail{}, nil, &fakeAlertStore{})
	r := d.SendEmergencyAlerts(context.Background(), "u1", risk.High, "", nil)
	if r.Sent || r.Reason != ReasonNoContacts {
		t.Fatalf("got sent=%v reason=%q, want no-contacts refusal", r.Sent, r.Reason)
	}
}

func TestSendContactLoadFailure(t *testing.T) {
	d := testDispatcher(&fakeContactStore{err: errors.New("down")}, &fakeEmail{}, nil, &fakeAlertStore{})
	r := d.SendEmergencyAlerts(context.Background(), "u1", risk.High, "", nil)
	if r.Sent || r.Reason != ReasonInternal {
		t.Fatalf("got sent=%v reason=%q, want internal refusal", r.Sent, r.Reason)
	}
}

// 成功分发后冷却窗口内的第二次分发被拒绝
func TestSendCooldown(t *testing.T) {
	store := &fakeContactStore{contacts: []*contact.EmergencyContact{testContact("Ana", "ana@example.com", "")}}
	d := testDispatcher(store, &fakeEmail{}, nil, &fakeAlertStore{})

	first := d.SendEmergencyAlerts(context.Background(), "u1", risk.High, "", nil)
	if !first.Sent {
		t.Fatalf("first dispatch should succeed: %+v", first)
	}
	second := d.SendEmergencyAlerts(context.Background(), "u1", risk.High, "", nil)
	if second.Sent {
		t.Fatal("second dispatch within cooldown must be refused")
	}
	if second.Reason != ReasonCooldownActive {
		t.Fatalf("reason = %q, want %q", second.Reason, ReasonCooldownActive)
	}
}

// 测试告警绕过冷却检查也不写入冷却
func TestSendTestBypassesCooldown(t *testing.T) {
	store := &fakeContactStore{contacts: []*contact.EmergencyContact{testContact("Ana", "ana@example.com", "")}}
	d := testDispatcher(store, &fakeEmail{}, nil, &fakeAlertStore{})

	r := d.SendEmergencyAlerts(context.Background(), "u1", risk.Medium, "", &Options{IsTest: true})
	if !r.Sent {
		t.Fatalf("test dispatch should succeed: %+v", r)
	}
	if _, ok := d.cooldown.Get(context.Background(), "u1"); ok {
		t.Fatal("test dispatch must not arm the cooldown")
	}
}

// 只有邮箱且无短信通道配置时, 短信记为未尝试, 状态仍为sent
func TestSendUnconfiguredMessagingIsSkipped(t *testing.T) {
	store := &fakeContactStore{contacts: []*contact.EmergencyContact{testContact("Ana", "ana@example.com", "+5215512345678")}}
	d := testDispatcher(store, &fakeEmail{}, []model.MessagingSender{&fakeMessaging{configured: false}}, &fakeAlertStore{})

	r := d.SendEmergencyAlerts(context.Background(), "u1", risk.High, "", nil)
	if !r.Sent {
		t.Fatalf("dispatch should succeed: %+v", r)
	}
	cr := r.Contacts[0]
	if cr.Messaging.Attempted {
		t.Fatal("unconfigured messaging must not count as attempted")
	}
	if cr.Status != emergencyalert.StatusSent {
		t.Fatalf("status = %q, want %q", cr.Status, emergencyalert.StatusSent)
	}
}

// 邮件成功短信失败 => partial, 通道互相隔离
func TestSendPartialStatus(t *testing.T) {
	store := &fakeContactStore{contacts: []*contact.EmergencyContact{testContact("Ana", "ana@example.com", "+5215512345678")}}
	msg := &fakeMessaging{configured: true, err: errors.New("gateway timeout")}
	d := testDispatcher(store, &fakeEmail{}, []model.MessagingSender{msg}, &fakeAlertStore{})

	r := d.SendEmergencyAlerts(context.Background(), "u1", risk.High, "", nil)
	if !r.Sent {
		t.Fatalf("dispatch should succeed via email: %+v", r)
	}
	cr := r.Contacts[0]
	if cr.Status != emergencyalert.StatusPartial {
		t.Fatalf("status = %q, want %q", cr.Status, emergencyalert.StatusPartial)
	}
	if !cr.Email.Sent || cr.Messaging.Sent {
		t.Fatalf("expected email sent and messaging failed, got %+v", cr)
	}
}

// 全通道失败 => failed, 整体不算已发送
func TestSendAllChannelsFail(t *testing.T) {
	store := &fakeContactStore{contacts: []*contact.EmergencyContact{testContact("Ana", "ana@example.com", "+5215512345678")}}
	msg := &fakeMessaging{configured: true, err: errors.New("gateway timeout")}
	d := testDispatcher(store, &fakeEmail{err: errors.New("smtp down")}, []model.MessagingSender{msg}, &fakeAlertStore{})

	r := d.SendEmergencyAlerts(context.Background(), "u1", risk.High, "", nil)
	if r.Sent {
		t.Fatal("dispatch with all channels failing must not count as sent")
	}
	if r.Contacts[0].Status != emergencyalert.StatusFailed {
		t.Fatalf("status = %q, want %q", r.Contacts[0].Status, emergencyalert.StatusFailed)
	}
	if _, ok := d.cooldown.Get(context.Background(), "u1"); ok {
		t.Fatal("failed dispatch must not arm the cooldown")
	}
}

// 一个联系人失败不影响其余联系人
func TestSendContactIsolation(t *testing.T) {
	store := &fakeContactStore{contacts: []*contact.EmergencyContact{
		testContact("Ana", "ana@example.com", ""),
		testContact("Luis", "", "+5215512345678"),
	}}
	msg := &fakeMessaging{configured: true, err: errors.New("gateway timeout")}
	d := testDispatcher(store, &fakeEmail{}, []model.MessagingSender{msg}, &fakeAlertStore{})

	r := d.SendEmergencyAlerts(context.Background(), "u1", risk.High, "", nil)
	if !r.Sent {
		t.Fatalf("dispatch should succeed for first contact: %+v", r)
	}
	if r.SuccessfulSends != 1 || r.TotalContacts != 2 {
		t.Fatalf("sends = %d/%d, want 1/2", r.SuccessfulSends, r.TotalContacts)
	}
}

// 主通道未配置时回退到备用通道
func TestMessengerFallback(t *testing.T) {
	primary := &fakeMessaging{configured: false}
	secondary := &fakeMessaging{configured: true}
	store := &fakeContactStore{contacts: []*contact.EmergencyContact{testContact("Luis", "", "+5215512345678")}}
	d := testDispatcher(store, &fakeEmail{}, []model.MessagingSender{primary, secondary}, &fakeAlertStore{})

	r := d.SendEmergencyAlerts(context.Background(), "u1", risk.High, "", nil)
	if !r.Sent {
		t.Fatalf("dispatch should succeed via secondary: %+v", r)
	}
	secondary.mu.Lock()
	defer secondary.mu.Unlock()
	if len(secondary.sent) != 1 {
		t.Fatalf("secondary sends = %d, want 1", len(secondary.sent))
	}
}

// 每个联系人每次分发都会写一条审计记录
func TestSendPersistsAuditRecords(t *testing.T) {
	audit := &fakeAlertStore{}
	store := &fakeContactStore{contacts: []*contact.EmergencyContact{
		testContact("Ana", "ana@example.com", ""),
		testContact("Luis", "luis@example.com", ""),
	}}
	d := testDispatcher(store, &fakeEmail{}, nil, audit)

	d.SendEmergencyAlerts(context.Background(), "u1", risk.High, "", nil)

	deadline := time.Now().Add(2 * time.Second)
	for audit.count() < 2 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if audit.count() != 2 {
		t.Fatalf("audit records = %d, want 2", audit.count())
	}
}

func TestDeriveStatus(t *testing.T) {
	cases := []struct {
		name string
		cr   *ContactResult
		want string
	}{
		{"both sent", &ContactResult{Email: ChannelResult{Attempted: true, Sent: true}, Messaging: ChannelResult{Attempted: true, Sent: true}}, emergencyalert.StatusSent},
		{"email only attempted and sent", &ContactResult{Email: ChannelResult{Attempted: true, Sent: true}}, emergencyalert.StatusSent},
		{"one of two failed", &ContactResult{Email: ChannelResult{Attempted: true, Sent: true}, Messaging: ChannelResult{Attempted: true}}, emergencyalert.StatusPartial},
		{"all failed", &ContactResult{Email: ChannelResult{Attempted: true}}, emergencyalert.StatusFailed},
		{"nothing attempted", &ContactResult{}, emergencyalert.StatusFailed},
	}
	for _, tc := range cases {
		if got := deriveStatus(tc.cr); got != tc.want {
			t.Fatalf("%s: status = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestLanguageDefaultsToSpanish(t *testing.T) {
	d := testDispatcher(&fakeContactStore{}, &fakeEmail{}, nil, &fakeAlertStore{})
	if lang := d.language(context.Background(), "u1"); lang != consts.LangEs {
		t.Fatalf("lang = %q, want %q", lang, consts.LangEs)
	}
}
