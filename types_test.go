package authcore

import (
	"testing"
	"time"
)

func TestAccountCanLogin(t *testing.T) {
	deletedAt := time.Now()
	statuses := []AccountStatus{StatusPending, StatusActive, StatusLocked, StatusDeactivated, StatusDeleted}

	for _, status := range statuses {
		for _, verified := range []bool{true, false} {
			for _, deleted := range []bool{true, false} {
				acct := &Account{ID: "acct-1", Status: status, EmailVerified: verified}
				if deleted {
					acct.DeletedAt = &deletedAt
				}

				want := verified && !deleted && (status == StatusActive || status == StatusPending)
				if got := acct.CanLogin(); got != want {
					t.Errorf("CanLogin(status=%v, verified=%v, deleted=%v) = %v, want %v",
						status, verified, deleted, got, want)
				}
			}
		}
	}

	var nilAccount *Account
	if nilAccount.CanLogin() {
		t.Fatal("nil account can log in")
	}
}

// The engine gates sessions through gateError; with verification
// required it must admit exactly the accounts CanLogin admits.
func TestCanLoginAgreesWithSessionGate(t *testing.T) {
	engine, _ := newTestEngine(t)
	if !engine.config.Account.RequireVerified {
		t.Fatal("test config must require verification")
	}

	deletedAt := time.Now()
	statuses := []AccountStatus{StatusPending, StatusActive, StatusLocked, StatusDeactivated, StatusDeleted}

	for _, status := range statuses {
		for _, verified := range []bool{true, false} {
			for _, deleted := range []bool{true, false} {
				acct := &Account{ID: "acct-1", Status: status, EmailVerified: verified}
				if deleted {
					acct.DeletedAt = &deletedAt
				}

				gateAdmits := engine.gateError(accountRecord(acct)) == nil
				if gateAdmits != acct.CanLogin() {
					t.Errorf("gate admits = %v, CanLogin = %v (status=%v, verified=%v, deleted=%v)",
						gateAdmits, acct.CanLogin(), status, verified, deleted)
				}
			}
		}
	}
}
