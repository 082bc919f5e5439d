////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 ClassHub                                                  //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package progress

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"

	"gitlab.com/classhub/learndk-wasm/docstore"
	"gitlab.com/classhub/learndk-wasm/storage"
)

// newTestLedger builds a Ledger over in-memory storage.
func newTestLedger() (*Ledger, *storage.MemStorage) {
	kv := storage.NewMemStorage()
	docs := docstore.NewWithEngine(docstore.NewMemoryEngine(), false)
	return NewLedger(docs, kv), kv
}

// Tests that SaveProgress stamps LastUpdated and that repeated saves for
// the same lesson never conflict.
func TestLedger_SaveProgress(t *testing.T) {
	l, kv := newTestLedger()

	entry := Entry{UserID: "u1", CourseID: "c1", LessonID: "l1",
		Percentage: 50, TimeSpent: 120}
	if err := l.SaveProgress(entry); err != nil {
		t.Fatalf("Failed to save progress: %+v", err)
	}

	entry.Percentage = 100
	entry.IsCompleted = true
	if err := l.SaveProgress(entry); err != nil {
		t.Fatalf("Second save of the same lesson conflicted: %+v", err)
	}

	loaded, err := l.GetLessonProgress("u1", "c1", "l1")
	if err != nil {
		t.Fatalf("Failed to get lesson progress: %+v", err)
	}
	if loaded == nil || loaded.Percentage != 100 || !loaded.IsCompleted {
		t.Errorf("Unexpected lesson progress.\nexpected: %v\nreceived: %v",
			entry, loaded)
	}
	if loaded.LastUpdated.IsZero() {
		t.Error("SaveProgress did not stamp LastUpdated.")
	}

	// The identical key string lands in the flat mirror
	if _, err = kv.Get(Key("u1", "c1", "l1")); err != nil {
		t.Errorf("Progress not mirrored to flat storage: %+v", err)
	}
}

// Tests that GetCourseProgress derives the aggregate from exactly the
// entries under the (userId, courseId) prefix: N entries yield N lessons
// and an overall percentage of 100*completed/N, rounded.
func TestLedger_GetCourseProgress(t *testing.T) {
	l, _ := newTestLedger()

	for i := 1; i <= 3; i++ {
		entry := Entry{UserID: "u1", CourseID: "c1",
			LessonID: fmt.Sprintf("l%d", i), TimeSpent: 60,
			IsCompleted: i <= 2}
		if err := l.SaveProgress(entry); err != nil {
			t.Fatalf("Failed to save progress %d: %+v", i, err)
		}
	}

	// Entries outside the prefix must not leak into the aggregate
	for _, entry := range []Entry{
		{UserID: "u1", CourseID: "c2", LessonID: "l1", IsCompleted: true},
		{UserID: "u2", CourseID: "c1", LessonID: "l1", IsCompleted: true},
	} {
		if err := l.SaveProgress(entry); err != nil {
			t.Fatalf("Failed to save unrelated progress: %+v", err)
		}
	}

	aggregate, err := l.GetCourseProgress("u1", "c1")
	if err != nil {
		t.Fatalf("Failed to get course progress: %+v", err)
	}
	if aggregate == nil {
		t.Fatal("Aggregate is nil despite stored entries.")
	}

	if aggregate.TotalLessons != 3 {
		t.Errorf("Unexpected total lessons.\nexpected: %d\nreceived: %d",
			3, aggregate.TotalLessons)
	}
	if aggregate.CompletedLessons != 2 {
		t.Errorf("Unexpected completed lessons.\nexpected: %d\nreceived: %d",
			2, aggregate.CompletedLessons)
	}
	if aggregate.OverallPercentage != 67 {
		t.Errorf("Unexpected overall percentage."+
			"\nexpected: %d\nreceived: %d", 67, aggregate.OverallPercentage)
	}
	if aggregate.TotalTimeSpent != 180 {
		t.Errorf("Unexpected total time spent."+
			"\nexpected: %d\nreceived: %d", 180, aggregate.TotalTimeSpent)
	}
	if len(aggregate.Lessons) != 3 {
		t.Errorf("Unexpected lesson map size.\nexpected: %d\nreceived: %d",
			3, len(aggregate.Lessons))
	}
	if aggregate.LastActivity.IsZero() {
		t.Error("Aggregate has no last activity.")
	}
}

// Tests that the overall slot contributes time but is excluded from lesson
// counts.
func TestLedger_GetCourseProgress_OverallSlot(t *testing.T) {
	l, _ := newTestLedger()

	entries := []Entry{
		{UserID: "u1", CourseID: "c1", LessonID: "l1", TimeSpent: 60,
			IsCompleted: true},
		{UserID: "u1", CourseID: "c1", LessonID: OverallLesson,
			TimeSpent: 30, Percentage: 50},
	}
	for _, entry := range entries {
		if err := l.SaveProgress(entry); err != nil {
			t.Fatalf("Failed to save progress: %+v", err)
		}
	}

	aggregate, err := l.GetCourseProgress("u1", "c1")
	if err != nil {
		t.Fatalf("Failed to get course progress: %+v", err)
	}

	if aggregate.TotalLessons != 1 || aggregate.CompletedLessons != 1 {
		t.Errorf("Overall slot leaked into lesson counts: %d/%d",
			aggregate.CompletedLessons, aggregate.TotalLessons)
	}
	if aggregate.OverallPercentage != 100 {
		t.Errorf("Unexpected overall percentage."+
			"\nexpected: %d\nreceived: %d", 100, aggregate.OverallPercentage)
	}
	if aggregate.TotalTimeSpent != 90 {
		t.Errorf("Overall slot time not counted."+
			"\nexpected: %d\nreceived: %d", 90, aggregate.TotalTimeSpent)
	}
}

// Tests that GetCourseProgress returns nil (not an error) when no progress
// exists.
func TestLedger_GetCourseProgress_NoProgress(t *testing.T) {
	l, _ := newTestLedger()

	aggregate, err := l.GetCourseProgress("u1", "c1")
	if err != nil {
		t.Fatalf("No-progress state returned an error: %+v", err)
	}
	if aggregate != nil {
		t.Errorf("No-progress state returned a value: %v", aggregate)
	}
}

// Tests that reads fall back to the flat mirror when the document store is
// unavailable.
func TestLedger_MirrorFallback(t *testing.T) {
	l, kv := newTestLedger()

	for i := 1; i <= 2; i++ {
		entry := Entry{UserID: "u1", CourseID: "c1",
			LessonID: fmt.Sprintf("l%d", i), IsCompleted: true}
		if err := l.SaveProgress(entry); err != nil {
			t.Fatalf("Failed to save progress: %+v", err)
		}
	}

	// Swap the document store for one whose engine always fails
	broken := NewLedger(
		docstore.NewWithEngine(&failingEngine{}, false), kv)

	aggregate, err := broken.GetCourseProgress("u1", "c1")
	if err != nil {
		t.Fatalf("Mirror fallback failed: %+v", err)
	}
	if aggregate == nil || aggregate.TotalLessons != 2 {
		t.Fatalf("Mirror fallback lost entries: %v", aggregate)
	}
	if aggregate.OverallPercentage != 100 {
		t.Errorf("Unexpected percentage from mirror."+
			"\nexpected: %d\nreceived: %d", 100, aggregate.OverallPercentage)
	}

	entry, err := broken.GetLessonProgress("u1", "c1", "l1")
	if err != nil || entry == nil {
		t.Errorf("Mirror fallback for single lesson failed "+
			"(entry: %v, err: %v).", entry, err)
	}
}

// Tests that ClearAllProgress removes the user's entries from both
// representations and leaves other users' entries alone.
func TestLedger_ClearAllProgress(t *testing.T) {
	l, kv := newTestLedger()

	for _, entry := range []Entry{
		{UserID: "u1", CourseID: "c1", LessonID: "l1"},
		{UserID: "u1", CourseID: "c2", LessonID: "l1"},
		{UserID: "u2", CourseID: "c1", LessonID: "l1"},
	} {
		if err := l.SaveProgress(entry); err != nil {
			t.Fatalf("Failed to save progress: %+v", err)
		}
	}

	if err := l.ClearAllProgress("u1"); err != nil {
		t.Fatalf("Failed to clear progress: %+v", err)
	}

	for _, courseID := range []string{"c1", "c2"} {
		aggregate, err := l.GetCourseProgress("u1", courseID)
		if err != nil || aggregate != nil {
			t.Errorf("Progress for u1/%s survived clear "+
				"(aggregate: %v, err: %v).", courseID, aggregate, err)
		}
	}
	if _, err := kv.Get(Key("u1", "c1", "l1")); err == nil {
		t.Error("Mirrored progress survived clear.")
	}

	// Other user untouched
	aggregate, err := l.GetCourseProgress("u2", "c1")
	if err != nil || aggregate == nil {
		t.Errorf("Progress for u2 lost by u1 clear "+
			"(aggregate: %v, err: %v).", aggregate, err)
	}
}

// failingEngine fails every operation, simulating a storage engine that
// became unavailable after initialization.
type failingEngine struct{}

var errEngineDown = errors.New("engine unavailable")

func (e *failingEngine) Put(docstore.Document) (docstore.Document, error) {
	return docstore.Document{}, errEngineDown
}
func (e *failingEngine) Get(string) (docstore.Document, error) {
	return docstore.Document{}, errEngineDown
}
func (e *failingEngine) GetRange(string, string) ([]docstore.Document, error) {
	return nil, errEngineDown
}
func (e *failingEngine) Delete(string, string) error { return errEngineDown }
func (e *failingEngine) Info() (docstore.Info, error) {
	return docstore.Info{}, errEngineDown
}
