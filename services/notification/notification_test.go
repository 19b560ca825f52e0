package notification

import (
	"context"
	"errors"
	"testing"
)

type fakeLookup struct {
	prefs map[string]bool
	err   error
}

func (f fakeLookup) AllowedPreferences(context.Context, string, string) (map[string]bool, error) {
	return f.prefs, f.err
}

type fakePublisher struct {
	keys []string
}

func (f *fakePublisher) Publish(_ context.Context, key string, _ interface{}) error {
	f.keys = append(f.keys, key)
	return nil
}

func TestBrokerServiceRespectsPreference(t *testing.T) {
	to := Recipient{UserID: "u1", Role: "seller"}

	pub := &fakePublisher{}
	svc := NewBrokerService(fakeLookup{prefs: map[string]bool{"discount_notification": true}}, pub)
	if err := svc.Notify(context.Background(), to, "discount_notification", Notification{}); err != nil {
		t.Fatal(err)
	}
	if len(pub.keys) != 1 || pub.keys[0] != "u1" {
		t.Fatalf("expected one publish keyed by user, got %v", pub.keys)
	}

	pub = &fakePublisher{}
	svc = NewBrokerService(fakeLookup{prefs: map[string]bool{"discount_notification": false}}, pub)
	_ = svc.Notify(context.Background(), to, "discount_notification", Notification{})
	if len(pub.keys) != 0 {
		t.Fatal("disabled preference must not publish")
	}

	pub = &fakePublisher{}
	svc = NewBrokerService(fakeLookup{err: errors.New("timeout")}, pub)
	if err := svc.Notify(context.Background(), to, "discount_notification", Notification{}); err == nil {
		t.Fatal("lookup failure must be reported to the caller")
	}
	if len(pub.keys) != 0 {
		t.Fatal("lookup failure must not publish")
	}
}
