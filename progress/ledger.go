////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 ClassHub                                                  //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package progress persists fine-grained learning progress and answers
// per-course aggregation queries by prefix-scanning the stored entries.
// Course-level aggregates are always derived, never stored.
//
// Every entry is also mirrored best effort into the flat store under the
// identical key string, so a document store outage does not erase progress
// already in flight; reads fall back to the mirror transparently.
package progress

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"

	"gitlab.com/classhub/learndk-wasm/docstore"
	"gitlab.com/classhub/learndk-wasm/storage"
)

const progressKeyPrefix = "progress_"

// OverallLesson is the lesson slot holding course-level progress written by
// the caller (distinct from the derived aggregates).
const OverallLesson = "overall"

// Entry is one progress record for a lesson (or the overall slot) of a
// course.
type Entry struct {
	UserID      string    `json:"userId"`
	CourseID    string    `json:"courseId"`
	LessonID    string    `json:"lessonId"`
	Percentage  int       `json:"percentage"`
	TimeSpent   int64     `json:"timeSpent"` // seconds
	IsCompleted bool      `json:"isCompleted"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// CourseProgress is the derived per-course aggregate.
type CourseProgress struct {
	UserID            string           `json:"userId"`
	CourseID          string           `json:"courseId"`
	TotalLessons      int              `json:"totalLessons"`
	CompletedLessons  int              `json:"completedLessons"`
	OverallPercentage int              `json:"overallPercentage"`
	TotalTimeSpent    int64            `json:"totalTimeSpent"`
	LastActivity      time.Time        `json:"lastActivity"`
	Lessons           map[string]Entry `json:"lessons"`
}

// Ledger reads and writes progress entries. It is constructed with the
// document store and the flat store.
type Ledger struct {
	docs *docstore.DocumentStore
	kv   storage.KeyValue
}

// NewLedger creates a Ledger over the given document store and flat store.
func NewLedger(docs *docstore.DocumentStore, kv storage.KeyValue) *Ledger {
	return &Ledger{docs: docs, kv: kv}
}

// Key returns the progress document key for the user, course, and lesson.
// An empty lessonID addresses the overall slot.
func Key(userID, courseID, lessonID string) string {
	if lessonID == "" {
		lessonID = OverallLesson
	}
	return progressKeyPrefix + userID + "_" + courseID + "_" + lessonID
}

// coursePrefix returns the key prefix shared by all progress entries of one
// course.
func coursePrefix(userID, courseID string) string {
	return progressKeyPrefix + userID + "_" + courseID + "_"
}

// userPrefix returns the key prefix shared by all progress entries of one
// user.
func userPrefix(userID string) string {
	return progressKeyPrefix + userID + "_"
}

// SaveProgress writes the entry through the document store's audited
// read-modify-write path, stamping LastUpdated to now on every call. The
// entry is also mirrored into the flat store under the identical key; a
// mirror failure is logged, not returned.
func (l *Ledger) SaveProgress(entry Entry) error {
	if entry.LessonID == "" {
		entry.LessonID = OverallLesson
	}
	entry.LastUpdated = time.Now()

	payload, err := json.Marshal(entry)
	if err != nil {
		return errors.Wrap(err, "failed to marshal progress entry")
	}

	key := Key(entry.UserID, entry.CourseID, entry.LessonID)
	_, err = l.docs.Upsert(key,
		func(json.RawMessage, bool) (json.RawMessage, error) {
			return payload, nil
		})
	if err != nil {
		// The mirror below may still land; do not lose the primary error
		if mirrorErr := l.kv.Set(key, payload); mirrorErr != nil {
			jww.WARN.Printf(
				"Failed to mirror progress %q: %+v", key, mirrorErr)
		}
		return err
	}

	if mirrorErr := l.kv.Set(key, payload); mirrorErr != nil {
		jww.WARN.Printf("Failed to mirror progress %q: %+v", key, mirrorErr)
	}

	return nil
}

// GetLessonProgress returns the stored entry for the lesson, or nil when no
// progress has been recorded. When the document store is unavailable the
// flat mirror is read instead.
func (l *Ledger) GetLessonProgress(
	userID, courseID, lessonID string) (*Entry, error) {
	key := Key(userID, courseID, lessonID)

	doc, err := l.docs.Get(key)
	if err == nil {
		var entry Entry
		if err = json.Unmarshal(doc.Payload, &entry); err != nil {
			return nil, errors.Wrapf(err,
				"failed to unmarshal progress at %q", key)
		}
		return &entry, nil
	} else if errors.Is(err, docstore.ErrNotFound) {
		return nil, nil
	}

	jww.WARN.Printf("Document store read failed for %q; falling back to "+
		"flat mirror: %+v", key, err)
	return l.mirrorEntry(key)
}

// GetCourseProgress scans all progress entries of the course and derives
// the aggregate. Returns nil when the scan yields zero entries; "no
// progress yet" is a valid, non-error state.
func (l *Ledger) GetCourseProgress(
	userID, courseID string) (*CourseProgress, error) {
	prefix := coursePrefix(userID, courseID)

	entries, err := l.scan(prefix)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}

	aggregate := &CourseProgress{
		UserID:   userID,
		CourseID: courseID,
		Lessons:  make(map[string]Entry, len(entries)),
	}

	for _, entry := range entries {
		if entry.LastUpdated.After(aggregate.LastActivity) {
			aggregate.LastActivity = entry.LastUpdated
		}
		aggregate.TotalTimeSpent += entry.TimeSpent

		// The overall slot is caller-written course-level state, not a
		// lesson; keep it out of the lesson counts.
		if entry.LessonID == OverallLesson {
			continue
		}

		aggregate.Lessons[entry.LessonID] = entry
		aggregate.TotalLessons++
		if entry.IsCompleted {
			aggregate.CompletedLessons++
		}
	}

	if aggregate.TotalLessons > 0 {
		aggregate.OverallPercentage = int(math.Round(100 *
			float64(aggregate.CompletedLessons) /
			float64(aggregate.TotalLessons)))
	}

	return aggregate, nil
}

// ClearAllProgress deletes every progress entry of the user from both
// representations. If any deletion errors, the overall call reports failure
// even when most deletions succeeded.
func (l *Ledger) ClearAllProgress(userID string) error {
	prefix := userPrefix(userID)

	l.kv.ClearPrefix(prefix)

	docs, err := l.docs.GetPrefix(prefix)
	if err != nil {
		return err
	}

	var failed int
	var lastErr error
	for _, doc := range docs {
		if err = l.docs.Delete(doc.Key, doc.Revision); err != nil {
			jww.ERROR.Printf("Failed to delete %q: %+v", doc.Key, err)
			failed++
			lastErr = err
		}
	}
	if failed > 0 {
		return errors.WithMessagef(lastErr,
			"failed to delete %d of %d progress entries", failed, len(docs))
	}

	return nil
}

// scan returns all entries under the prefix, reading the flat mirror when
// the document store is unavailable so callers never special-case storage
// health.
func (l *Ledger) scan(prefix string) ([]Entry, error) {
	docs, err := l.docs.GetPrefix(prefix)
	if err != nil {
		jww.WARN.Printf("Document store scan failed for %q; falling back "+
			"to flat mirror: %+v", prefix, err)
		return l.mirrorScan(prefix)
	}

	entries := make([]Entry, 0, len(docs))
	for _, doc := range docs {
		var entry Entry
		if err = json.Unmarshal(doc.Payload, &entry); err != nil {
			return nil, errors.Wrapf(err,
				"failed to unmarshal progress at %q", doc.Key)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// mirrorEntry reads one entry from the flat mirror. Returns nil when the
// mirror has no record either.
func (l *Ledger) mirrorEntry(key string) (*Entry, error) {
	data, err := l.kv.Get(key)
	if err != nil {
		return nil, nil
	}

	var entry Entry
	if err = json.Unmarshal(data, &entry); err != nil {
		return nil, errors.Wrapf(err,
			"failed to unmarshal mirrored progress at %q", key)
	}
	return &entry, nil
}

// mirrorScan reads all entries under the prefix from the flat mirror.
func (l *Ledger) mirrorScan(prefix string) ([]Entry, error) {
	var entries []Entry
	for _, keyName := range l.kv.Keys() {
		if !strings.HasPrefix(keyName, prefix) {
			continue
		}
		entry, err := l.mirrorEntry(keyName)
		if err != nil {
			return nil, err
		}
		if entry != nil {
			entries = append(entries, *entry)
		}
	}
	return entries, nil
}
