////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 ClassHub                                                  //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package main

import (
	"encoding/json"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
)

// Defaults applied to catalog entries missing the fields the offline
// client requires. These mirror the entity cache defaults so seeded and
// live-cached courses look the same.
const (
	defaultTitle    = "Untitled course"
	defaultCategory = "general"
	defaultLevel    = "beginner"
)

// Catalog is the course catalog export served by the platform API.
type Catalog struct {
	Courses []CatalogCourse `json:"courses"`
}

// CatalogCourse is one course in the catalog with its modules embedded.
type CatalogCourse struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category"`
	Level       string          `json:"level"`
	Instructor  string          `json:"instructor,omitempty"`
	Modules     []CatalogModule `json:"modules"`

	// OfflineAccessible is stamped true on every sanitized entry.
	OfflineAccessible bool `json:"offlineAccessible"`
}

// CatalogModule is one module of a catalog course.
type CatalogModule struct {
	ID       string `json:"id"`
	CourseID string `json:"courseId"`
	Title    string `json:"title"`
	Duration int    `json:"duration"`
	VideoURL string `json:"videoUrl,omitempty"`
}

// Report summarizes a sanitization pass.
type Report struct {
	Total   int
	Kept    int
	Dropped int
}

// SanitizeCatalog parses the raw catalog JSON and rewrites it into the
// shape the offline client seeds from. Courses without an ID or without
// any usable module are dropped; missing display fields get the entity
// cache defaults; every kept entry is marked offline accessible.
func SanitizeCatalog(raw []byte) ([]byte, Report, error) {
	var catalog Catalog
	if err := json.Unmarshal(raw, &catalog); err != nil {
		return nil, Report{}, errors.Wrap(
			err, "failed to unmarshal course catalog")
	}

	report := Report{Total: len(catalog.Courses)}
	kept := make([]CatalogCourse, 0, len(catalog.Courses))
	for _, course := range catalog.Courses {
		sanitized, ok := sanitizeCourse(course)
		if !ok {
			report.Dropped++
			continue
		}
		kept = append(kept, sanitized)
	}
	report.Kept = len(kept)

	out, err := json.MarshalIndent(Catalog{Courses: kept}, "", "  ")
	if err != nil {
		return nil, Report{}, errors.Wrap(
			err, "failed to marshal sanitized catalog")
	}
	return out, report, nil
}

// sanitizeCourse normalizes one course. Returns false when the course
// cannot be used offline.
func sanitizeCourse(course CatalogCourse) (CatalogCourse, bool) {
	if course.ID == "" {
		jww.WARN.Printf("Dropping course with no ID (title %q).", course.Title)
		return CatalogCourse{}, false
	}

	modules := make([]CatalogModule, 0, len(course.Modules))
	for _, module := range course.Modules {
		if module.ID == "" {
			jww.WARN.Printf("Dropping module with no ID in course %s.",
				course.ID)
			continue
		}
		module.CourseID = course.ID
		if module.Duration < 0 {
			module.Duration = 0
		}
		modules = append(modules, module)
	}
	if len(modules) == 0 {
		jww.WARN.Printf("Dropping course %s with no usable modules.", course.ID)
		return CatalogCourse{}, false
	}
	course.Modules = modules

	if course.Title == "" {
		course.Title = defaultTitle
	}
	if course.Category == "" {
		course.Category = defaultCategory
	}
	if course.Level == "" {
		course.Level = defaultLevel
	}
	course.OfflineAccessible = true

	return course, true
}
