////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 ClassHub                                                  //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package storage

import (
	"testing"
)

// Tests that CheckAndStoreVersion stores the current version on first run.
func TestCheckAndStoreVersion_FirstRun(t *testing.T) {
	kv := NewMemStorage()

	if err := CheckAndStoreVersion(kv); err != nil {
		t.Fatalf("Failed to check version on first run: %+v", err)
	}

	stored, err := kv.Get(versionKey)
	if err != nil {
		t.Fatalf("Failed to load stored version: %+v", err)
	}
	if string(stored) != SEMVER {
		t.Errorf("Unexpected stored version.\nexpected: %s\nreceived: %s",
			SEMVER, stored)
	}
}

// Tests that CheckAndStoreVersion runs the registered migration when the
// stored version does not match the current version and then updates the
// marker.
func TestCheckAndStoreVersion_Migration(t *testing.T) {
	const previousVersion = "0.1.0"

	kv := NewMemStorage()
	if err := kv.Set(versionKey, []byte(previousVersion)); err != nil {
		t.Fatalf("Failed to seed stored version: %+v", err)
	}

	migrated := false
	migrations[previousVersion] = func(KeyValue) error {
		migrated = true
		return nil
	}
	defer delete(migrations, previousVersion)

	if err := CheckAndStoreVersion(kv); err != nil {
		t.Fatalf("Failed to check version: %+v", err)
	}

	if !migrated {
		t.Errorf("Migration for v%s did not run.", previousVersion)
	}

	if old := GetOldVersion(); old != previousVersion {
		t.Errorf("Unexpected old version.\nexpected: %s\nreceived: %s",
			previousVersion, old)
	}

	stored, err := kv.Get(versionKey)
	if err != nil {
		t.Fatalf("Failed to load stored version: %+v", err)
	}
	if string(stored) != SEMVER {
		t.Errorf("Version marker not updated.\nexpected: %s\nreceived: %s",
			SEMVER, stored)
	}
}
