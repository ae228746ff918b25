// Fieldhub - IoT Project and Device Registry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldhub

package models

import "time"

// Area view type constants.
const (
	AreaViewTypeImage = "IMAGE"
	AreaViewTypeMap   = "MAP"
)

// Area is a child of a project grouping devices by physical location.
// Deleting an area never cascades upward to its project.
type Area struct {
	ID            int64     `json:"id"`
	ProjectID     int64     `json:"project_id"`
	Name          string    `json:"name" validate:"required,max=255,nomarkup" label:"area-name"`
	Description   string    `json:"description,omitempty" validate:"omitempty,max=3000,nomarkup" label:"area-description"`
	AreaViewType  string    `json:"area_view_type,omitempty" validate:"omitempty,oneof=IMAGE MAP" label:"area-viewtype"`
	EntityVersion int64     `json:"entity_version"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// AreaDevice links an area to a device. Both must belong to the same
// project; the database layer enforces this before insert. Deleting an
// area removes its links but leaves the referenced devices intact.
type AreaDevice struct {
	ID       int64     `json:"id"`
	AreaID   int64     `json:"area_id"`
	DeviceID int64     `json:"device_id"`
	AddedAt  time.Time `json:"added_at"`
}
