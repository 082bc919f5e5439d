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

// Module is a cached lesson: metadata, completion flag, and the owning
// course ID. CourseID supports prefix-filtered queries over the module set;
// it is not a foreign-key join.
type Module struct {
	ID       string `json:"id"`
	CourseID string `json:"courseId"`
	Title    string `json:"title"`

	// Duration is the lesson length in seconds.
	Duration int `json:"duration,omitempty"`

	VideoURL  string `json:"videoUrl,omitempty"`
	Completed bool   `json:"completed"`
}

// ModuleKey returns the document key for the module ID.
func ModuleKey(moduleID string) string { return moduleKeyPrefix + moduleID }

// CacheModule stores the module.
func (m *Manager) CacheModule(module Module) error {
	return m.upsertEntity(ModuleKey(module.ID), module)
}

// UpdateCachedModule updates an already cached module. Same write path as
// CacheModule.
func (m *Manager) UpdateCachedModule(module Module) error {
	return m.CacheModule(module)
}

// GetCachedModule returns the cached module, or nil when none is cached.
func (m *Manager) GetCachedModule(moduleID string) (*Module, error) {
	var module Module
	found, err := m.getEntity(ModuleKey(moduleID), &module)
	if err != nil || !found {
		return nil, err
	}
	return &module, nil
}

// RemoveCachedModule removes the cached module. A missing module is not an
// error.
func (m *Manager) RemoveCachedModule(moduleID string) error {
	return m.docs.RemoveIfPresent(ModuleKey(moduleID))
}

// GetAllCachedModules returns every cached module.
func (m *Manager) GetAllCachedModules() ([]Module, error) {
	docs, err := m.docs.GetPrefix(moduleKeyPrefix)
	if err != nil {
		return nil, err
	}

	modules := make([]Module, 0, len(docs))
	for _, doc := range docs {
		var module Module
		if err = json.Unmarshal(doc.Payload, &module); err != nil {
			return nil, errors.Wrapf(err,
				"failed to unmarshal module at %q", doc.Key)
		}
		modules = append(modules, module)
	}
	return modules, nil
}

// GetCachedCourseModules returns every cached module owned by the course.
func (m *Manager) GetCachedCourseModules(courseID string) ([]Module, error) {
	modules, err := m.GetAllCachedModules()
	if err != nil {
		return nil, err
	}

	owned := make([]Module, 0, len(modules))
	for _, module := range modules {
		if module.CourseID == courseID {
			owned = append(owned, module)
		}
	}
	return owned, nil
}

// ClearAllCachedModules removes every cached module.
func (m *Manager) ClearAllCachedModules() error {
	return m.clearEntities(moduleKeyPrefix)
}
