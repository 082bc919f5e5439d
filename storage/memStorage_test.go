////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 ClassHub                                                  //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package storage

import (
	"bytes"
	"os"
	"reflect"
	"testing"

	"github.com/pkg/errors"
)

// Tests that a value set with MemStorage.Set and retrieved with
// MemStorage.Get matches the original.
func TestMemStorage_Get_Set(t *testing.T) {
	values := map[string][]byte{
		"key1": []byte("key value"),
		"key2": {0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
		"key3": {},
	}

	m := NewMemStorage()
	for keyName, keyValue := range values {
		if err := m.Set(keyName, keyValue); err != nil {
			t.Errorf("Failed to set %q: %+v", keyName, err)
		}

		loadedValue, err := m.Get(keyName)
		if err != nil {
			t.Errorf("Failed to load %q: %+v", keyName, err)
		}

		if !bytes.Equal(keyValue, loadedValue) {
			t.Errorf("Loaded value does not match original for %q"+
				"\nexpected: %q\nreceived: %q", keyName, keyValue, loadedValue)
		}
	}
}

// Tests that MemStorage.Get returns the error os.ErrNotExist when the key
// does not exist in storage.
func TestMemStorage_Get_NotExistError(t *testing.T) {
	m := NewMemStorage()
	_, err := m.Get("someKey")
	if err == nil || !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Incorrect error for nonexistent key."+
			"\nexpected: %v\nreceived: %v", os.ErrNotExist, err)
	}
}

// Tests that MemStorage.Remove deletes a key from the store and that
// MemStorage.Get returns os.ErrNotExist afterward.
func TestMemStorage_Remove(t *testing.T) {
	m := NewMemStorage()
	if err := m.Set("someKey", []byte("value")); err != nil {
		t.Fatalf("Failed to set key: %+v", err)
	}

	m.Remove("someKey")

	_, err := m.Get("someKey")
	if err == nil || !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Failed to remove key.\nexpected: %v\nreceived: %v",
			os.ErrNotExist, err)
	}
}

// Tests that MemStorage.Keys returns all stored key names sorted and that
// MemStorage.ClearPrefix removes only the keys with the prefix.
func TestMemStorage_Keys_ClearPrefix(t *testing.T) {
	m := NewMemStorage()
	for _, keyName := range []string{
		"progress_u1_c1_l1", "progress_u1_c1_l2", "course_c1"} {
		if err := m.Set(keyName, []byte("v")); err != nil {
			t.Fatalf("Failed to set %q: %+v", keyName, err)
		}
	}

	expected := []string{"course_c1", "progress_u1_c1_l1", "progress_u1_c1_l2"}
	if keys := m.Keys(); !reflect.DeepEqual(keys, expected) {
		t.Errorf("Unexpected key list.\nexpected: %v\nreceived: %v",
			expected, keys)
	}

	m.ClearPrefix("progress_u1_")

	expected = []string{"course_c1"}
	if keys := m.Keys(); !reflect.DeepEqual(keys, expected) {
		t.Errorf("Unexpected key list after ClearPrefix."+
			"\nexpected: %v\nreceived: %v", expected, keys)
	}
}

// Tests that MemStorage.Clear empties the store.
func TestMemStorage_Clear(t *testing.T) {
	m := NewMemStorage()
	if err := m.Set("someKey", []byte("value")); err != nil {
		t.Fatalf("Failed to set key: %+v", err)
	}

	m.Clear()

	if n := m.Length(); n != 0 {
		t.Errorf("Store not empty after Clear."+
			"\nexpected: %d\nreceived: %d", 0, n)
	}
}
