// Fieldhub - IoT Project and Device Registry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldhub

package models

import "time"

// SharedEntity is one sharing-registry grant. It extends find/update/
// delete rights on a specific resource instance to a non-owner user.
// A grant never confers ownership transfer through the generic update
// path and never confers re-sharing rights.
type SharedEntity struct {
	ID           int64     `json:"id"`
	ResourceName string    `json:"entity_resource_name" validate:"required" label:"sharedentity-entityresourcename"`
	EntityID     int64     `json:"entity_id" validate:"required,gt=0" label:"sharedentity-entityid"`
	UserID       int64     `json:"user_id" validate:"required,gt=0" label:"sharedentity-userid"`
	GrantedBy    int64     `json:"granted_by"`
	GrantedAt    time.Time `json:"granted_at"`
}
