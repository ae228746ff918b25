// Fieldhub - IoT Project and Device Registry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldhub

/*
project.go - Project Resource Graph Entities

The ownership tree is rooted at Project:

	Project -> Device -> Packet -> PacketField
	Project -> Area   -> AreaDevice (link to a Device of the same project)

Children carry no independent ownership; all authorization flows through
the root project's owner, permission and share state.

Every mutable entity carries EntityVersion, an optimistic-lock counter
incremented by exactly 1 on each successful update. Updates supplying a
stale version are rejected by the database layer.
*/

package models

import "time"

// Project is the root owned entity. UserID is the owner and is never
// zero after a successful save; it defaults to the requester when unset.
type Project struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name" validate:"required,max=255,nomarkup" label:"hproject-name"`
	Description   string    `json:"description,omitempty" validate:"omitempty,max=3000,nomarkup" label:"hproject-description"`
	UserID        int64     `json:"user_id"`
	EntityVersion int64     `json:"entity_version"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Device belongs to a project. DeviceName is unique within its project.
type Device struct {
	ID              int64     `json:"id"`
	ProjectID       int64     `json:"project_id"`
	DeviceName      string    `json:"device_name" validate:"required,max=255,nomarkup" label:"hdevice-devicename"`
	Brand           string    `json:"brand,omitempty" validate:"omitempty,max=255,nomarkup" label:"hdevice-brand"`
	Model           string    `json:"model,omitempty" validate:"omitempty,max=255,nomarkup" label:"hdevice-model"`
	FirmwareVersion string    `json:"firmware_version,omitempty" validate:"omitempty,max=255,nomarkup" label:"hdevice-firmwareversion"`
	SoftwareVersion string    `json:"software_version,omitempty" validate:"omitempty,max=255,nomarkup" label:"hdevice-softwareversion"`
	PasswordHash    string    `json:"-"`
	EntityVersion   int64     `json:"entity_version"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Packet type constants.
const (
	PacketTypeInput  = "INPUT"
	PacketTypeOutput = "OUTPUT"
	PacketTypeIO     = "IO"
)

// Packet format constants.
const (
	PacketFormatJSON = "JSON"
	PacketFormatXML  = "XML"
	PacketFormatCSV  = "CSV"
)

// Packet belongs to a device and describes one telemetry stream.
type Packet struct {
	ID              int64     `json:"id"`
	DeviceID        int64     `json:"device_id"`
	Name            string    `json:"name" validate:"required,max=255,nomarkup" label:"hpacket-name"`
	Type            string    `json:"type" validate:"required,oneof=INPUT OUTPUT IO" label:"hpacket-type"`
	Format          string    `json:"format" validate:"required,oneof=JSON XML CSV" label:"hpacket-format"`
	Serialization   string    `json:"serialization,omitempty" validate:"omitempty,max=255" label:"hpacket-serialization"`
	Version         string    `json:"version,omitempty" validate:"omitempty,max=255" label:"hpacket-version"`
	TimestampField  string    `json:"timestamp_field,omitempty" validate:"omitempty,max=255" label:"hpacket-timestampfield"`
	TimestampFormat string    `json:"timestamp_format,omitempty" validate:"omitempty,max=255" label:"hpacket-timestampformat"`
	TrafficPlan     string    `json:"traffic_plan,omitempty" validate:"omitempty,max=255" label:"hpacket-trafficplan"`
	EntityVersion   int64     `json:"entity_version"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// PacketField describes one field of a packet payload.
type PacketField struct {
	ID            int64  `json:"id"`
	PacketID      int64  `json:"packet_id"`
	Name          string `json:"name" validate:"required,max=255,nomarkup" label:"hpacketfield-name"`
	Type          string `json:"type" validate:"required,max=255" label:"hpacketfield-type"`
	Multiplicity  string `json:"multiplicity,omitempty" validate:"omitempty,max=255" label:"hpacketfield-multiplicity"`
	Description   string `json:"description,omitempty" validate:"omitempty,max=3000,nomarkup" label:"hpacketfield-description"`
	EntityVersion int64  `json:"entity_version"`
}
