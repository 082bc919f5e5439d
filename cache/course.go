////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 ClassHub                                                  //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package cache

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Defaults applied when a course is cached with missing fields.
const (
	defaultCourseTitle    = "Untitled course"
	defaultCourseCategory = "general"
	defaultCourseLevel    = "beginner"
)

// Course is a cached course: metadata, enrollment/progress summary, and the
// section/module layout. OfflineAccessible is stamped true only once the
// course has been explicitly cached.
type Course struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category"`
	Level       string `json:"level"`
	Instructor  string `json:"instructor,omitempty"`

	Enrolled bool `json:"enrolled"`
	Progress int  `json:"progress"`

	Sections []Section `json:"sections,omitempty"`

	OfflineAccessible bool `json:"offlineAccessible"`
}

// Section is one section of a course's layout. ModuleIDs reference cached
// modules by key suffix; they are not a foreign-key join.
type Section struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	ModuleIDs []string `json:"moduleIds,omitempty"`
}

// CourseKey returns the document key for the course ID.
func CourseKey(courseID string) string { return courseKeyPrefix + courseID }

// CacheCourse stores the course, normalizing missing fields to defaults and
// stamping OfflineAccessible. The stamp lands in the stored payload, so it
// is true exactly when the write succeeded.
func (m *Manager) CacheCourse(course Course) error {
	if course.Title == "" {
		course.Title = defaultCourseTitle
	}
	if course.Category == "" {
		course.Category = defaultCourseCategory
	}
	if course.Level == "" {
		course.Level = defaultCourseLevel
	}
	course.OfflineAccessible = true

	return m.upsertEntity(CourseKey(course.ID), course)
}

// UpdateCachedCourse updates an already cached course. Same write path as
// CacheCourse.
func (m *Manager) UpdateCachedCourse(course Course) error {
	return m.CacheCourse(course)
}

// GetCachedCourse returns the cached course, or nil when none is cached.
func (m *Manager) GetCachedCourse(courseID string) (*Course, error) {
	var course Course
	found, err := m.getEntity(CourseKey(courseID), &course)
	if err != nil || !found {
		return nil, err
	}
	return &course, nil
}

// RemoveCachedCourse removes the cached course. A missing course is not an
// error.
func (m *Manager) RemoveCachedCourse(courseID string) error {
	return m.docs.RemoveIfPresent(CourseKey(courseID))
}

// GetAllCachedCourses returns every cached course.
func (m *Manager) GetAllCachedCourses() ([]Course, error) {
	docs, err := m.docs.GetPrefix(courseKeyPrefix)
	if err != nil {
		return nil, err
	}

	courses := make([]Course, 0, len(docs))
	for _, doc := range docs {
		var course Course
		if err = json.Unmarshal(doc.Payload, &course); err != nil {
			return nil, errors.Wrapf(err,
				"failed to unmarshal course at %q", doc.Key)
		}
		courses = append(courses, course)
	}
	return courses, nil
}

// ClearAllCachedCourses removes every cached course.
func (m *Manager) ClearAllCachedCourses() error {
	return m.clearEntities(courseKeyPrefix)
}
