package auth

import "testing"

func TestServiceBasic(t *testing.T) {
	svc := New([]int64{10, 20})

	if !svc.IsAllowed(10) || !svc.IsAllowed(20) {
		t.Fatalf("initial list not applied")
	}
	if svc.IsAllowed(30) {
		t.Fatalf("unknown user should be denied")
	}
}

func TestEmptyAllowlistDeniesEveryone(t *testing.T) {
	if New(nil).IsAllowed(1) {
		t.Fatalf("empty allowlist must deny")
	}
}
