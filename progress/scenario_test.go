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

	"gitlab.com/classhub/learndk-wasm/cache"
	"gitlab.com/classhub/learndk-wasm/docstore"
	"gitlab.com/classhub/learndk-wasm/storage"
)

// Walks the offline study flow end to end: cache a course with three
// modules, complete two of them, and check the derived aggregate; then
// lose the document store and check which reads survive on the mirror.
func TestLedger_OfflineStudyFlow(t *testing.T) {
	kv := storage.NewMemStorage()
	docs := docstore.NewWithEngine(docstore.NewMemoryEngine(), false)
	entities := cache.NewManager(docs, kv)
	ledger := NewLedger(docs, kv)

	course := cache.Course{ID: "c1", Title: "Go Basics",
		Category: "programming", Level: "beginner"}
	if err := entities.CacheCourse(course); err != nil {
		t.Fatalf("Failed to cache course: %+v", err)
	}
	for i := 1; i <= 3; i++ {
		module := cache.Module{ID: fmt.Sprintf("m%d", i), CourseID: "c1",
			Title: fmt.Sprintf("Lesson %d", i), Duration: 300}
		if err := entities.CacheModule(module); err != nil {
			t.Fatalf("Failed to cache module %d: %+v", i, err)
		}
	}

	// Study sessions: two modules finished, one started
	for i, entry := range []Entry{
		{UserID: "u1", CourseID: "c1", LessonID: "m1", Percentage: 100,
			TimeSpent: 300, IsCompleted: true},
		{UserID: "u1", CourseID: "c1", LessonID: "m2", Percentage: 100,
			TimeSpent: 280, IsCompleted: true},
		{UserID: "u1", CourseID: "c1", LessonID: "m3", Percentage: 40,
			TimeSpent: 120},
	} {
		if err := ledger.SaveProgress(entry); err != nil {
			t.Fatalf("Failed to save progress %d: %+v", i, err)
		}
	}

	modules, err := entities.GetCachedCourseModules("c1")
	if err != nil {
		t.Fatalf("Failed to get course modules: %+v", err)
	}
	if len(modules) != 3 {
		t.Fatalf("Unexpected module count.\nexpected: %d\nreceived: %d",
			3, len(modules))
	}

	aggregate, err := ledger.GetCourseProgress("u1", "c1")
	if err != nil {
		t.Fatalf("Failed to get course progress: %+v", err)
	}
	if aggregate.CompletedLessons != 2 || aggregate.TotalLessons != 3 {
		t.Errorf("Unexpected completion.\nexpected: %d/%d\nreceived: %d/%d",
			2, 3, aggregate.CompletedLessons, aggregate.TotalLessons)
	}
	if aggregate.OverallPercentage != 67 {
		t.Errorf("Unexpected overall percentage."+
			"\nexpected: %d\nreceived: %d", 67, aggregate.OverallPercentage)
	}

	// The document store dies mid-session; progress reads survive on the
	// flat mirror, entity reads do not (they have no mirror).
	brokenDocs := docstore.NewWithEngine(&failingEngine{}, false)
	brokenLedger := NewLedger(brokenDocs, kv)

	aggregate, err = brokenLedger.GetCourseProgress("u1", "c1")
	if err != nil {
		t.Fatalf("Mirror fallback failed: %+v", err)
	}
	if aggregate == nil || aggregate.OverallPercentage != 67 {
		t.Errorf("Progress lost with the document store: %v", aggregate)
	}

	brokenEntities := cache.NewManager(brokenDocs, kv)
	if _, err = brokenEntities.GetCachedCourse("c1"); err == nil {
		t.Error("Entity read succeeded without the document store.")
	}
}
