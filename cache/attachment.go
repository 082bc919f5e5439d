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

// Attachment is a cached lesson attachment. Data holds the file body for
// small attachments cached for offline use; large files stay online-only
// and keep Data empty.
type Attachment struct {
	ID       string `json:"id"`
	ModuleID string `json:"moduleId"`
	Name     string `json:"name"`
	MimeType string `json:"mimeType,omitempty"`
	Size     int64  `json:"size"`
	Data     []byte `json:"data,omitempty"`
}

// AttachmentKey returns the document key for the attachment ID.
func AttachmentKey(attachmentID string) string {
	return attachmentKeyPrefix + attachmentID
}

// CacheAttachment stores the attachment.
func (m *Manager) CacheAttachment(attachment Attachment) error {
	return m.upsertEntity(AttachmentKey(attachment.ID), attachment)
}

// UpdateCachedAttachment updates an already cached attachment. Same write
// path as CacheAttachment.
func (m *Manager) UpdateCachedAttachment(attachment Attachment) error {
	return m.CacheAttachment(attachment)
}

// GetCachedAttachment returns the cached attachment, or nil when none is
// cached.
func (m *Manager) GetCachedAttachment(attachmentID string) (*Attachment, error) {
	var attachment Attachment
	found, err := m.getEntity(AttachmentKey(attachmentID), &attachment)
	if err != nil || !found {
		return nil, err
	}
	return &attachment, nil
}

// RemoveCachedAttachment removes the cached attachment. A missing
// attachment is not an error.
func (m *Manager) RemoveCachedAttachment(attachmentID string) error {
	return m.docs.RemoveIfPresent(AttachmentKey(attachmentID))
}

// GetAllCachedAttachments returns every cached attachment.
func (m *Manager) GetAllCachedAttachments() ([]Attachment, error) {
	docs, err := m.docs.GetPrefix(attachmentKeyPrefix)
	if err != nil {
		return nil, err
	}

	attachments := make([]Attachment, 0, len(docs))
	for _, doc := range docs {
		var attachment Attachment
		if err = json.Unmarshal(doc.Payload, &attachment); err != nil {
			return nil, errors.Wrapf(err,
				"failed to unmarshal attachment at %q", doc.Key)
		}
		attachments = append(attachments, attachment)
	}
	return attachments, nil
}

// ClearAllCachedAttachments removes every cached attachment.
func (m *Manager) ClearAllCachedAttachments() error {
	return m.clearEntities(attachmentKeyPrefix)
}
