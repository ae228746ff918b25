// Fieldhub - IoT Project and Device Registry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldhub

/*
actions.go - Action and Resource Definitions

This file defines the action bitmask and resource name constants used by
the permission resolver. A Permission row grants a set of actions (stored
as a bitmask) on a resource type, optionally scoped to a single instance.

Base CRUD actions (save, update, remove, find, find-all) exist for every
resource type. Custom management actions extend specific types:
  - hproject: areas management, device list, share
  - hdevice:  packets management
  - hpacket:  fields management
  - area:     area device manager
*/

package models

// Action is a single grantable operation, represented as one bit so that
// permissions can store a union of actions in a single integer column.
type Action int64

const (
	// ActionSave grants creating new instances of a resource type.
	ActionSave Action = 1 << iota

	// ActionUpdate grants modifying existing instances.
	ActionUpdate

	// ActionRemove grants deleting instances.
	ActionRemove

	// ActionFind grants reading a single instance.
	ActionFind

	// ActionFindAll grants listing instances.
	ActionFindAll

	// ActionShare grants creating sharing-registry entries for owned instances.
	ActionShare

	// ActionAreasManagement grants area operations scoped to a project.
	ActionAreasManagement

	// ActionDeviceList grants listing the devices of a project.
	ActionDeviceList

	// ActionPacketsManagement grants packet operations scoped to a device.
	ActionPacketsManagement

	// ActionFieldsManagement grants packet field operations scoped to a packet.
	ActionFieldsManagement

	// ActionAreaDeviceManager grants attaching and detaching devices on an area.
	ActionAreaDeviceManager
)

// ActionsCRUD is the baseline grant carried by the default role for
// commonly used resource types.
const ActionsCRUD = ActionSave | ActionUpdate | ActionRemove | ActionFind | ActionFindAll

// ActionsAll is every defined action. Used for admin-equivalent role grants
// in tests and seeds.
const ActionsAll = ActionsCRUD | ActionShare | ActionAreasManagement |
	ActionDeviceList | ActionPacketsManagement | ActionFieldsManagement |
	ActionAreaDeviceManager

// actionNames maps single-bit actions to their wire names.
var actionNames = map[Action]string{
	ActionSave:              "save",
	ActionUpdate:            "update",
	ActionRemove:            "remove",
	ActionFind:              "find",
	ActionFindAll:           "find-all",
	ActionShare:             "share",
	ActionAreasManagement:   "areas_management",
	ActionDeviceList:        "device_list",
	ActionPacketsManagement: "packets_management",
	ActionFieldsManagement:  "fields_management",
	ActionAreaDeviceManager: "area_device_manager",
}

// String returns the wire name for a single-bit action, or "unknown" for
// composite or undefined values.
func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "unknown"
}

// Resource name constants identify resource types in permissions and the
// sharing registry.
const (
	ResourceProject      = "hproject"
	ResourceDevice       = "hdevice"
	ResourcePacket       = "hpacket"
	ResourcePacketField  = "hpacketfield"
	ResourceArea         = "area"
	ResourceAreaDevice   = "areadevice"
	ResourceSharedEntity = "shared-entity"
)

// ownedResources lists the resource types whose instance visibility is
// gated on ownership or a sharing-registry grant. Children of a project
// inherit the project owner.
var ownedResources = map[string]bool{
	ResourceProject:     true,
	ResourceDevice:      true,
	ResourcePacket:      true,
	ResourcePacketField: true,
	ResourceArea:        true,
	ResourceAreaDevice:  true,
}

// IsOwnedResource reports whether instance-scoped operations on the given
// resource type require ownership or a share grant in addition to an
// action permission.
func IsOwnedResource(resourceName string) bool {
	return ownedResources[resourceName]
}

// shareableResources lists the resource types that may appear in the
// sharing registry. Only project roots are shareable; children inherit
// visibility through their owning project.
var shareableResources = map[string]bool{
	ResourceProject: true,
}

// IsShareableResource reports whether the sharing registry accepts grants
// for the given resource type.
func IsShareableResource(resourceName string) bool {
	return shareableResources[resourceName]
}
