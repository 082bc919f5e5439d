////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 ClassHub                                                  //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package storage

import "testing"

// Tests that StoreIndexedDb records names exactly once and GetIndexedDbList
// starts empty.
func TestStoreIndexedDb(t *testing.T) {
	kv := NewMemStorage()

	list, err := GetIndexedDbList(kv)
	if err != nil {
		t.Fatalf("Failed to get empty list: %+v", err)
	}
	if len(list) != 0 {
		t.Errorf("Fresh store has recorded databases: %v", list)
	}

	for _, name := range []string{"db_a", "db_b", "db_a"} {
		if err = StoreIndexedDb(kv, name); err != nil {
			t.Fatalf("Failed to store database name %q: %+v", name, err)
		}
	}

	list, err = GetIndexedDbList(kv)
	if err != nil {
		t.Fatalf("Failed to get list: %+v", err)
	}
	if len(list) != 2 {
		t.Errorf("Unexpected list size.\nexpected: %d\nreceived: %d",
			2, len(list))
	}
	for _, name := range []string{"db_a", "db_b"} {
		if _, exists := list[name]; !exists {
			t.Errorf("Database %q not recorded.", name)
		}
	}
}
