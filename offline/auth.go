////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 ClassHub                                                  //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package offline

import (
	"strings"

	jww "github.com/spf13/jwalterweatherman"

	"gitlab.com/classhub/learndk-wasm/cache"
	"gitlab.com/classhub/learndk-wasm/storage"
)

// Manager answers whether the session can run offline and performs the
// degraded login over cached identity.
type Manager struct {
	conn  Connectivity
	kv    storage.KeyValue
	cache *cache.Manager
}

// NewManager creates a Manager over the connectivity signal, the flat
// store, and the entity cache.
func NewManager(
	conn Connectivity, kv storage.KeyValue, c *cache.Manager) *Manager {
	return &Manager{conn: conn, kv: kv, cache: c}
}

// IsOnline reports the platform connectivity signal. Advisory only.
func (m *Manager) IsOnline() bool {
	return m.conn.IsOnline()
}

// AuthResult is the structured outcome of an offline authentication
// attempt. A legitimate absence of cached identity is a failed result, not
// an error.
type AuthResult struct {
	Success bool        `json:"success"`
	User    *cache.User `json:"user,omitempty"`
	Message string      `json:"message,omitempty"`
}

// AuthenticateOffline authenticates against the cached identity from the
// last successful online login. It matches on email only,
// case-insensitively; the password is NOT verified. This is acceptable
// solely because offline mode is scoped to a previously-authenticated
// device, and it must never substitute for a real credential check.
func (m *Manager) AuthenticateOffline(email, _ string) (AuthResult, error) {
	user, err := m.cachedIdentity()
	if err != nil {
		return AuthResult{}, err
	}
	if user == nil {
		return AuthResult{Message: "no cached user"}, nil
	}

	if !strings.EqualFold(user.Email, email) {
		return AuthResult{Message: "email does not match cached user"}, nil
	}

	jww.INFO.Printf("Offline authentication succeeded for user %s", user.ID)
	return AuthResult{Success: true, User: user}, nil
}

// ValidationReport is the outcome of an offline readiness check. CanProceed
// may be true even when IsValid is false; offline mode degrades gracefully
// rather than refusing outright.
type ValidationReport struct {
	IsValid    bool     `json:"isValid"`
	Issues     []string `json:"issues"`
	CanProceed bool     `json:"canProceed"`
}

// ValidateOfflineData checks that a cached identity and at least one cached
// course exist. Both are required for a fully valid offline session; either
// one alone is enough to proceed degraded.
func (m *Manager) ValidateOfflineData() (ValidationReport, error) {
	report := ValidationReport{Issues: []string{}}

	user, err := m.cachedIdentity()
	if err != nil {
		return report, err
	}
	hasIdentity := user != nil
	if !hasIdentity {
		report.Issues = append(report.Issues, "no cached user identity")
	}

	courses, err := m.cache.GetAllCachedCourses()
	if err != nil {
		return report, err
	}
	hasCourses := len(courses) > 0
	if !hasCourses {
		report.Issues = append(report.Issues, "no cached courses")
	}

	report.IsValid = hasIdentity && hasCourses
	report.CanProceed = hasIdentity || hasCourses

	return report, nil
}

// cachedIdentity loads the signed-in identity, preferring the structured
// store and falling back to the flat identity shadow. Returns nil when no
// identity is cached anywhere.
func (m *Manager) cachedIdentity() (*cache.User, error) {
	userID, err := m.kv.Get(cache.CurrentUserIDKey)
	if err != nil {
		// No shadow at all means no identity was ever cached
		return nil, nil
	}

	user, err := m.cache.GetCachedUser(string(userID))
	if err != nil {
		jww.WARN.Printf("Cached user read failed; falling back to flat "+
			"identity shadow: %+v", err)
	} else if user != nil {
		return user, nil
	}

	// Last-resort identity from the shadow subset
	shadow := &cache.User{ID: string(userID)}
	if v, err := m.kv.Get(cache.UserNameKey); err == nil {
		shadow.Name = string(v)
	}
	if v, err := m.kv.Get(cache.UserEmailKey); err == nil {
		shadow.Email = string(v)
	}
	if v, err := m.kv.Get(cache.UserRoleKey); err == nil {
		shadow.Role = string(v)
	}
	if v, err := m.kv.Get(cache.UserAvatarKey); err == nil {
		shadow.Avatar = string(v)
	}
	if v, err := m.kv.Get(cache.UserVerifiedKey); err == nil {
		shadow.Verified = string(v) == "true"
	}

	if shadow.Email == "" {
		return nil, nil
	}
	return shadow, nil
}
