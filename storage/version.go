////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 ClassHub                                                  //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package storage

import (
	"os"
	"sync"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
)

// SEMVER is the current semantic version of learnDK WASM.
const SEMVER = "0.2.0"

// versionKey is the storage key holding the cache version marker. It is
// checked at startup before any other offline operation is permitted.
const versionKey = "learndkSemanticVersion"

// Migration upgrades stored data written by the named older version so the
// current code can read it.
type Migration func(kv KeyValue) error

// migrations maps an old stored version to the routine that upgrades its
// data. Versions absent from the map require no data changes.
var migrations = map[string]Migration{}

// CheckAndStoreVersion checks that the stored cache version matches the
// current version and, if not, runs the registered migration before updating
// the marker. It must be called before any other offline operation.
//
// On first load, only the current version is stored.
func CheckAndStoreVersion(kv KeyValue) error {
	storedVersion, err := initOrLoadStoredSemver(versionKey, SEMVER, kv)
	if err != nil {
		return err
	}

	// Store the old version to memory for diagnostics
	setOldVersion(storedVersion)

	if storedVersion != SEMVER {
		jww.INFO.Printf("learnDK cache out of date; upgrading version: "+
			"v%s → v%s", storedVersion, SEMVER)

		if migrate, exists := migrations[storedVersion]; exists {
			if err = migrate(kv); err != nil {
				return errors.Wrapf(err,
					"failed to migrate cache from v%s", storedVersion)
			}
		}
	} else {
		jww.INFO.Printf("learnDK cache version is current: v%s", storedVersion)
	}

	// Save the current version
	if err = kv.Set(versionKey, []byte(SEMVER)); err != nil {
		return errors.Wrapf(err, "failed to set %q", versionKey)
	}

	return nil
}

// initOrLoadStoredSemver returns the semantic version stored at the key in
// the flat store. If no version is stored, then the current version is
// stored and returned.
func initOrLoadStoredSemver(
	key, currentVersion string, kv KeyValue) (string, error) {
	storedVersion, err := kv.Get(key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// Save the current version if this is the first run
			jww.INFO.Printf("Initialising %s to v%s", key, currentVersion)
			if err = kv.Set(key, []byte(currentVersion)); err != nil {
				return "", errors.Wrapf(err, "failed to set %q", key)
			}
			return currentVersion, nil
		}

		// If the item exists but cannot be loaded, return an error
		return "", errors.Errorf(
			"could not load %s from storage: %+v", key, err)
	}

	// Return the stored version
	return string(storedVersion), nil
}

// oldVersion contains the version of learnDK WASM that was stored in the
// flat store before being overwritten on update.
var oldVersion struct {
	version string
	sync.Mutex
}

// GetOldVersion returns the cache version found in storage at startup,
// before being updated.
func GetOldVersion() string {
	oldVersion.Lock()
	defer oldVersion.Unlock()
	return oldVersion.version
}

// setOldVersion sets the old cache version. This should be called before it
// is updated.
func setOldVersion(v string) {
	oldVersion.Lock()
	defer oldVersion.Unlock()
	oldVersion.version = v
}
