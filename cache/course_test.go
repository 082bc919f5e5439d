////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 ClassHub                                                  //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package cache

import (
	"testing"
)

// Tests that caching a course normalizes missing fields to defaults and
// stamps it offline accessible.
func TestManager_CacheCourse_Defaults(t *testing.T) {
	m, _ := newTestManager()

	if err := m.CacheCourse(Course{ID: "c1"}); err != nil {
		t.Fatalf("Failed to cache course: %+v", err)
	}

	course, err := m.GetCachedCourse("c1")
	if err != nil {
		t.Fatalf("Failed to get cached course: %+v", err)
	}
	if course == nil {
		t.Fatal("Cached course not found.")
	}

	if course.Title != defaultCourseTitle {
		t.Errorf("Unexpected default title.\nexpected: %s\nreceived: %s",
			defaultCourseTitle, course.Title)
	}
	if course.Category != defaultCourseCategory {
		t.Errorf("Unexpected default category.\nexpected: %s\nreceived: %s",
			defaultCourseCategory, course.Category)
	}
	if course.Level != defaultCourseLevel {
		t.Errorf("Unexpected default level.\nexpected: %s\nreceived: %s",
			defaultCourseLevel, course.Level)
	}
	if !course.OfflineAccessible {
		t.Error("Cached course not stamped offline accessible.")
	}
}

// Tests that caching the same course twice leaves exactly one document and
// that a subsequent get returns the fields unchanged (idempotent caching).
func TestManager_CacheCourse_Idempotent(t *testing.T) {
	m, _ := newTestManager()

	course := Course{ID: "c1", Title: "Intro to Go", Category: "programming",
		Level: "beginner", Sections: []Section{
			{ID: "s1", Title: "Basics", ModuleIDs: []string{"m1", "m2"}}}}

	if err := m.CacheCourse(course); err != nil {
		t.Fatalf("Failed to cache course: %+v", err)
	}
	if err := m.CacheCourse(course); err != nil {
		t.Fatalf("Failed to cache course a second time: %+v", err)
	}

	courses, err := m.GetAllCachedCourses()
	if err != nil {
		t.Fatalf("Failed to list cached courses: %+v", err)
	}
	if len(courses) != 1 {
		t.Fatalf("Unexpected course count.\nexpected: %d\nreceived: %d",
			1, len(courses))
	}

	loaded := courses[0]
	if loaded.Title != course.Title || loaded.Category != course.Category ||
		loaded.Level != course.Level || len(loaded.Sections) != 1 {
		t.Errorf("Cached course fields changed.\nexpected: %v\nreceived: %v",
			course, loaded)
	}
}

// Tests that a lookup of a course that was never cached returns nil, never
// an error.
func TestManager_GetCachedCourse_Absent(t *testing.T) {
	m, _ := newTestManager()

	course, err := m.GetCachedCourse("nonexistent")
	if err != nil {
		t.Fatalf("Lookup of absent course returned an error: %+v", err)
	}
	if course != nil {
		t.Errorf("Lookup of absent course returned a value: %v", course)
	}
}

// Tests that ClearAllCachedCourses removes every course and nothing else.
func TestManager_ClearAllCachedCourses(t *testing.T) {
	m, _ := newTestManager()

	for _, id := range []string{"c1", "c2"} {
		if err := m.CacheCourse(Course{ID: id, Title: id}); err != nil {
			t.Fatalf("Failed to cache course %q: %+v", id, err)
		}
	}
	if err := m.CacheModule(Module{ID: "m1", CourseID: "c1"}); err != nil {
		t.Fatalf("Failed to cache module: %+v", err)
	}

	if err := m.ClearAllCachedCourses(); err != nil {
		t.Fatalf("Failed to clear courses: %+v", err)
	}

	courses, err := m.GetAllCachedCourses()
	if err != nil {
		t.Fatalf("Failed to list cached courses: %+v", err)
	}
	if len(courses) != 0 {
		t.Errorf("Courses survived clear: %v", courses)
	}

	// Module with a disjoint prefix is untouched
	module, err := m.GetCachedModule("m1")
	if err != nil || module == nil {
		t.Errorf("Module lost by course clear (module: %v, err: %v).",
			module, err)
	}
}
