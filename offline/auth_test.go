////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 ClassHub                                                  //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package offline

import (
	"testing"

	"gitlab.com/classhub/learndk-wasm/cache"
	"gitlab.com/classhub/learndk-wasm/docstore"
	"gitlab.com/classhub/learndk-wasm/storage"
)

// newTestManager builds an offline Manager over in-memory storage.
func newTestManager() (*Manager, *cache.Manager, *Status) {
	kv := storage.NewMemStorage()
	c := cache.NewManager(
		docstore.NewWithEngine(docstore.NewMemoryEngine(), false), kv)
	status := NewStatus(true)
	return NewManager(status, kv, c), c, status
}

// Tests that offline authentication succeeds if and only if a cached
// identity with the same email (case-insensitive) exists, regardless of
// password.
func TestManager_AuthenticateOffline_EmailMatch(t *testing.T) {
	m, c, _ := newTestManager()

	user := cache.User{ID: "u1", Name: "Ada", Email: "a@x.com",
		Role: "student", Verified: true}
	if err := c.CacheUser(user); err != nil {
		t.Fatalf("Failed to cache user: %+v", err)
	}

	result, err := m.AuthenticateOffline("A@X.com", "any password at all")
	if err != nil {
		t.Fatalf("Offline authentication errored: %+v", err)
	}
	if !result.Success {
		t.Fatalf("Offline authentication failed: %s", result.Message)
	}
	if result.User == nil || result.User.ID != "u1" {
		t.Errorf("Unexpected authenticated user.\nexpected: %v\nreceived: %v",
			user, result.User)
	}

	// Different email must fail
	result, err = m.AuthenticateOffline("other@x.com", "password")
	if err != nil {
		t.Fatalf("Offline authentication errored: %+v", err)
	}
	if result.Success {
		t.Error("Offline authentication succeeded for a different email.")
	}
}

// Tests that authentication with no cached user returns a structured
// failure, never an error.
func TestManager_AuthenticateOffline_NoCachedUser(t *testing.T) {
	m, _, _ := newTestManager()

	result, err := m.AuthenticateOffline("a@x.com", "password")
	if err != nil {
		t.Fatalf("Legitimate absence raised an error: %+v", err)
	}
	if result.Success {
		t.Error("Offline authentication succeeded with no cached user.")
	}
	if result.Message != "no cached user" {
		t.Errorf("Unexpected failure message.\nexpected: %s\nreceived: %s",
			"no cached user", result.Message)
	}
}

// Tests that authentication falls back to the flat identity shadow when
// the structured store has no user document.
func TestManager_AuthenticateOffline_ShadowFallback(t *testing.T) {
	kv := storage.NewMemStorage()
	c := cache.NewManager(
		docstore.NewWithEngine(docstore.NewMemoryEngine(), false), kv)
	m := NewManager(NewStatus(false), kv, c)

	// Only the shadow subset exists (e.g. the document store was rebuilt)
	for keyName, value := range map[string]string{
		cache.CurrentUserIDKey: "u1",
		cache.UserNameKey:      "Ada",
		cache.UserEmailKey:     "a@x.com",
		cache.UserRoleKey:      "student",
	} {
		if err := kv.Set(keyName, []byte(value)); err != nil {
			t.Fatalf("Failed to seed shadow key %q: %+v", keyName, err)
		}
	}

	result, err := m.AuthenticateOffline("a@x.com", "password")
	if err != nil {
		t.Fatalf("Offline authentication errored: %+v", err)
	}
	if !result.Success {
		t.Fatalf("Shadow fallback authentication failed: %s", result.Message)
	}
	if result.User.Name != "Ada" || result.User.Role != "student" {
		t.Errorf("Shadow identity fields lost: %v", result.User)
	}
}

// Tests ValidateOfflineData across the identity/course combinations.
func TestManager_ValidateOfflineData(t *testing.T) {
	m, c, _ := newTestManager()

	// Nothing cached: invalid and cannot proceed
	report, err := m.ValidateOfflineData()
	if err != nil {
		t.Fatalf("Validation errored: %+v", err)
	}
	if report.IsValid || report.CanProceed {
		t.Errorf("Empty cache reported usable: %+v", report)
	}
	if len(report.Issues) != 2 {
		t.Errorf("Unexpected issue count.\nexpected: %d\nreceived: %d",
			2, len(report.Issues))
	}

	// Course only: degraded but can proceed
	if err = c.CacheCourse(cache.Course{ID: "c1", Title: "Go"}); err != nil {
		t.Fatalf("Failed to cache course: %+v", err)
	}
	report, err = m.ValidateOfflineData()
	if err != nil {
		t.Fatalf("Validation errored: %+v", err)
	}
	if report.IsValid {
		t.Error("Course-only cache reported fully valid.")
	}
	if !report.CanProceed {
		t.Error("Course-only cache cannot proceed; expected degraded mode.")
	}

	// Identity and course: fully valid
	if err = c.CacheUser(cache.User{ID: "u1", Email: "a@x.com"}); err != nil {
		t.Fatalf("Failed to cache user: %+v", err)
	}
	report, err = m.ValidateOfflineData()
	if err != nil {
		t.Fatalf("Validation errored: %+v", err)
	}
	if !report.IsValid || !report.CanProceed {
		t.Errorf("Full cache not reported valid: %+v", report)
	}
	if len(report.Issues) != 0 {
		t.Errorf("Unexpected issues for full cache: %v", report.Issues)
	}
}

// Tests that Status notifies listeners on transitions only.
func TestStatus_OnChange(t *testing.T) {
	status := NewStatus(false)

	var transitions []bool
	status.OnChange(func(online bool) {
		transitions = append(transitions, online)
	})

	status.Set(false) // no transition
	status.Set(true)
	status.Set(true) // no transition
	status.Set(false)

	if len(transitions) != 2 || !transitions[0] || transitions[1] {
		t.Errorf("Unexpected transitions.\nexpected: %v\nreceived: %v",
			[]bool{true, false}, transitions)
	}

	if status.IsOnline() {
		t.Error("Status reports online after final offline transition.")
	}
}
