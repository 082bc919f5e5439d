////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 ClassHub                                                  //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

//go:build js && wasm

package storage

import (
	"bytes"
	"os"
	"testing"

	"github.com/pkg/errors"
)

// Tests that a value set with LocalStorage.Set and retrieved with
// LocalStorage.Get matches the original.
func TestLocalStorage_Get_Set(t *testing.T) {
	values := map[string][]byte{
		"key1": []byte("key value"),
		"key2": {0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
		"key3": {0, 49, 0, 0, 0, 38, 249, 93, 242, 189, 222, 32, 138, 248,
			121, 151, 42, 108, 82, 199, 163, 61, 4, 200, 140, 231, 225, 20},
	}

	for keyName, keyValue := range values {
		if err := jsStorage.Set(keyName, keyValue); err != nil {
			t.Errorf("Failed to set %q: %+v", keyName, err)
		}

		loadedValue, err := jsStorage.Get(keyName)
		if err != nil {
			t.Errorf("Failed to load %q: %+v", keyName, err)
		}

		if !bytes.Equal(keyValue, loadedValue) {
			t.Errorf("Loaded value does not match original for %q"+
				"\nexpected: %q\nreceived: %q", keyName, keyValue, loadedValue)
		}
	}
}

// Tests that LocalStorage.Get returns the error os.ErrNotExist when the key
// does not exist in storage.
func TestLocalStorage_Get_NotExistError(t *testing.T) {
	_, err := jsStorage.Get("someKey")
	if err == nil || !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Incorrect error for nonexistent key."+
			"\nexpected: %v\nreceived: %v", os.ErrNotExist, err)
	}
}

// Tests that LocalStorage.Remove deletes a key from storage and that
// LocalStorage.Get returns os.ErrNotExist afterward.
func TestLocalStorage_Remove(t *testing.T) {
	if err := jsStorage.Set("someKey", []byte("value")); err != nil {
		t.Fatalf("Failed to set key: %+v", err)
	}

	jsStorage.Remove("someKey")

	_, err := jsStorage.Get("someKey")
	if err == nil || !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Failed to remove key.\nexpected: %v\nreceived: %v",
			os.ErrNotExist, err)
	}
}

// Tests that LocalStorage.ClearPrefix removes only the keys with the given
// prefix.
func TestLocalStorage_ClearPrefix(t *testing.T) {
	s := newLocalStorage("testClearPrefix/")
	for _, keyName := range []string{"pre_a", "pre_b", "keep_c"} {
		if err := s.Set(keyName, []byte("v")); err != nil {
			t.Fatalf("Failed to set %q: %+v", keyName, err)
		}
	}

	s.ClearPrefix("pre_")

	for _, keyName := range []string{"pre_a", "pre_b"} {
		if _, err := s.Get(keyName); err == nil {
			t.Errorf("Key %q not removed by ClearPrefix.", keyName)
		}
	}
	if _, err := s.Get("keep_c"); err != nil {
		t.Errorf("Key %q should not have been removed: %+v", "keep_c", err)
	}
}
