////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 ClassHub                                                  //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package creds

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"

	"gitlab.com/classhub/learndk-wasm/storage"
)

// Tests that Save followed by Load with the same password returns the same
// credentials.
func TestStore_Save_Load(t *testing.T) {
	s := NewStore(storage.NewMemStorage())

	saved := Credentials{UserID: "u1", Token: "tok-abc",
		Expires: time.Now().Add(time.Hour)}
	if err := s.Save("myPassword", saved); err != nil {
		t.Fatalf("Failed to save credentials: %+v", err)
	}

	loaded, err := s.Load("myPassword")
	if err != nil {
		t.Fatalf("Failed to load credentials: %+v", err)
	}

	if loaded.UserID != saved.UserID || loaded.Token != saved.Token {
		t.Errorf("Credentials from storage do not match original."+
			"\nexpected: %+v\nreceived: %+v", saved, loaded)
	}
}

// Tests that Load with the wrong password fails to decrypt.
func TestStore_Load_WrongPassword(t *testing.T) {
	s := NewStore(storage.NewMemStorage())

	err := s.Save("myPassword", Credentials{UserID: "u1", Token: "tok"})
	if err != nil {
		t.Fatalf("Failed to save credentials: %+v", err)
	}

	_, err = s.Load("hunter2")
	expectedErr := strings.Split(decryptWithPasswordErr, "%")[0]
	if err == nil || !strings.Contains(err.Error(), expectedErr) {
		t.Errorf("Unexpected error when loading with the wrong password."+
			"\nexpected: %s\nreceived: %+v", expectedErr, err)
	}
}

// Tests that Load reports os.ErrNotExist when nothing is stored.
func TestStore_Load_Empty(t *testing.T) {
	s := NewStore(storage.NewMemStorage())

	_, err := s.Load("myPassword")
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Unexpected error for empty store."+
			"\nexpected: %v\nreceived: %+v", os.ErrNotExist, err)
	}
}

// Tests that an expired token loads as ErrExpired.
func TestStore_Load_Expired(t *testing.T) {
	s := NewStore(storage.NewMemStorage())

	err := s.Save("myPassword", Credentials{UserID: "u1", Token: "tok",
		Expires: time.Now().Add(-time.Minute)})
	if err != nil {
		t.Fatalf("Failed to save credentials: %+v", err)
	}

	if _, err = s.Load("myPassword"); !errors.Is(err, ErrExpired) {
		t.Errorf("Unexpected error for expired token."+
			"\nexpected: %v\nreceived: %+v", ErrExpired, err)
	}
}

// Tests that ChangePassword keeps the credentials readable only under the
// new password.
func TestStore_ChangePassword(t *testing.T) {
	s := NewStore(storage.NewMemStorage())

	saved := Credentials{UserID: "u1", Token: "tok-abc",
		Expires: time.Now().Add(time.Hour)}
	if err := s.Save("myPassword", saved); err != nil {
		t.Fatalf("Failed to save credentials: %+v", err)
	}

	if err := s.ChangePassword("myPassword", "hunter2"); err != nil {
		t.Fatalf("Failed to change password: %+v", err)
	}

	loaded, err := s.Load("hunter2")
	if err != nil {
		t.Fatalf("Failed to load with the new password: %+v", err)
	}
	if loaded.Token != saved.Token {
		t.Errorf("Token lost across password change."+
			"\nexpected: %s\nreceived: %s", saved.Token, loaded.Token)
	}

	_, err = s.Load("myPassword")
	expectedErr := strings.Split(decryptWithPasswordErr, "%")[0]
	if err == nil || !strings.Contains(err.Error(), expectedErr) {
		t.Errorf("Unexpected error when loading with the old password."+
			"\nexpected: %s\nreceived: %+v", expectedErr, err)
	}
}

// Tests that Clear removes all credential material.
func TestStore_Clear(t *testing.T) {
	kv := storage.NewMemStorage()
	s := NewStore(kv)

	if err := s.Save("myPassword", Credentials{Token: "tok"}); err != nil {
		t.Fatalf("Failed to save credentials: %+v", err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("Failed to clear credentials: %+v", err)
	}

	if _, err := s.Load("myPassword"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Credentials survived clear: %+v", err)
	}
	for _, keyName := range []string{saltKey, credentialsKey, argonParamsKey} {
		if _, err := kv.Get(keyName); err == nil {
			t.Errorf("Key %q survived clear.", keyName)
		}
	}
}
