////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 ClassHub                                                  //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package cache

import (
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
)

// Flat identity shadow keys. The shadow carries identity fields only; it is
// never authoritative for full entity state, only a last-resort fallback for
// authentication when the document store is unavailable.
const (
	CurrentUserIDKey = "currentUserId"
	UserNameKey      = "userName"
	UserEmailKey     = "userEmail"
	UserRoleKey      = "userRole"
	UserAvatarKey    = "userAvatar"
	UserVerifiedKey  = "userVerified"
)

// User is the cached identity of the signed-in learner.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Avatar   string `json:"avatar,omitempty"`
	Verified bool   `json:"verified"`
}

// UserKey returns the document key for the user ID.
func UserKey(userID string) string { return userKeyPrefix + userID }

// CacheUser stores the user and mirrors its identity fields into the flat
// shadow so basic identity survives even if the structured store is
// unavailable. Shadow mirror failures are logged, not returned; the shadow
// is best effort.
func (m *Manager) CacheUser(user User) error {
	if err := m.upsertEntity(UserKey(user.ID), user); err != nil {
		return err
	}

	m.mirrorIdentity(user)
	return nil
}

// UpdateCachedUser updates an already cached user. Same write path as
// CacheUser; the revision carry happens inside the document store.
func (m *Manager) UpdateCachedUser(user User) error {
	return m.CacheUser(user)
}

// GetCachedUser returns the cached user, or nil when none is cached.
func (m *Manager) GetCachedUser(userID string) (*User, error) {
	var user User
	found, err := m.getEntity(UserKey(userID), &user)
	if err != nil || !found {
		return nil, err
	}
	return &user, nil
}

// RemoveCachedUser removes the cached user. A missing user is not an error.
func (m *Manager) RemoveCachedUser(userID string) error {
	return m.docs.RemoveIfPresent(UserKey(userID))
}

// GetAllCachedUsers returns every cached user.
func (m *Manager) GetAllCachedUsers() ([]User, error) {
	docs, err := m.docs.GetPrefix(userKeyPrefix)
	if err != nil {
		return nil, err
	}

	users := make([]User, 0, len(docs))
	for _, doc := range docs {
		var user User
		if err = json.Unmarshal(doc.Payload, &user); err != nil {
			return nil, errors.Wrapf(err,
				"failed to unmarshal user at %q", doc.Key)
		}
		users = append(users, user)
	}
	return users, nil
}

// ClearAllCachedUsers removes every cached user and the identity shadow.
func (m *Manager) ClearAllCachedUsers() error {
	for _, keyName := range []string{CurrentUserIDKey, UserNameKey,
		UserEmailKey, UserRoleKey, UserAvatarKey, UserVerifiedKey} {
		m.kv.Remove(keyName)
	}

	return m.clearEntities(userKeyPrefix)
}

// mirrorIdentity writes the identity fields to the flat shadow.
func (m *Manager) mirrorIdentity(user User) {
	shadow := map[string]string{
		CurrentUserIDKey: user.ID,
		UserNameKey:      user.Name,
		UserEmailKey:     user.Email,
		UserRoleKey:      user.Role,
		UserAvatarKey:    user.Avatar,
		UserVerifiedKey:  strconv.FormatBool(user.Verified),
	}
	for keyName, value := range shadow {
		if err := m.kv.Set(keyName, []byte(value)); err != nil {
			jww.WARN.Printf(
				"Failed to mirror identity field %q: %+v", keyName, err)
		}
	}
}
