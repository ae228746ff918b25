// Fieldhub - IoT Project and Device Registry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldhub

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/tomtom215/fieldhub/internal/authz"
	"github.com/tomtom215/fieldhub/internal/models"
	"golang.org/x/crypto/bcrypt"
)

func TestDeviceSave(t *testing.T) {
	services, _ := setupTestServices(t)
	ctx := context.Background()
	alice := registerUser(t, services, "alice")
	bob := registerUser(t, services, "bob")
	project := saveProject(t, services, alice, "greenhouse")

	t.Run("password stored hashed", func(t *testing.T) {
		device, err := services.Devices.Save(ctx, alice, &models.Device{
			ProjectID: project.ID, DeviceName: "sensor-1",
		}, "devicepass")
		if err != nil {
			t.Fatalf("Failed to save device: %v", err)
		}
		if device.PasswordHash == "devicepass" || device.PasswordHash == "" {
			t.Error("Expected password to be hashed")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(device.PasswordHash), []byte("devicepass")); err != nil {
			t.Errorf("Expected hash to verify: %v", err)
		}
	})

	t.Run("foreign project hidden", func(t *testing.T) {
		_, err := services.Devices.Save(ctx, bob, &models.Device{
			ProjectID: project.ID, DeviceName: "intruder",
		}, "x")
		if !errors.Is(err, authz.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})
}

func TestDevicePacketFlow(t *testing.T) {
	services, _ := setupTestServices(t)
	ctx := context.Background()
	alice := registerUser(t, services, "alice")
	bob := registerUser(t, services, "bob")
	project := saveProject(t, services, alice, "greenhouse")

	device, err := services.Devices.Save(ctx, alice, &models.Device{
		ProjectID: project.ID, DeviceName: "sensor-1",
	}, "devicepass")
	if err != nil {
		t.Fatalf("Failed to save device: %v", err)
	}

	packet, err := services.Packets.Save(ctx, alice, &models.Packet{
		DeviceID: device.ID, Name: "temperature", Type: models.PacketTypeInput, Format: models.PacketFormatJSON,
	})
	if err != nil {
		t.Fatalf("Failed to save packet: %v", err)
	}

	t.Run("invalid packet type rejected", func(t *testing.T) {
		_, err := services.Packets.Save(ctx, alice, &models.Packet{
			DeviceID: device.ID, Name: "bad", Type: "STREAM", Format: models.PacketFormatJSON,
		})
		if err == nil {
			t.Error("Expected validation error for unknown packet type")
		}
	})

	t.Run("packet hidden from strangers", func(t *testing.T) {
		_, err := services.Packets.Find(ctx, bob, packet.ID)
		if !errors.Is(err, authz.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("field management", func(t *testing.T) {
		field, err := services.Packets.AddField(ctx, alice, &models.PacketField{
			PacketID: packet.ID, Name: "celsius", Type: "DOUBLE",
		})
		if err != nil {
			t.Fatalf("Failed to add field: %v", err)
		}

		fields, err := services.Packets.ListFields(ctx, alice, packet.ID)
		if err != nil {
			t.Fatalf("Failed to list fields: %v", err)
		}
		if len(fields) != 1 {
			t.Errorf("Expected one field, got %d", len(fields))
		}

		if err := services.Packets.RemoveField(ctx, alice, field.ID); err != nil {
			t.Fatalf("Failed to remove field: %v", err)
		}
	})

	t.Run("share grant extends to nested resources", func(t *testing.T) {
		if _, err := services.Sharing.Share(ctx, alice, models.ResourceProject, project.ID, bob.ID); err != nil {
			t.Fatalf("Failed to share project: %v", err)
		}
		if _, err := services.Packets.Find(ctx, bob, packet.ID); err != nil {
			t.Errorf("Expected grant holder to reach packet, got %v", err)
		}
		if _, err := services.Devices.Find(ctx, bob, device.ID); err != nil {
			t.Errorf("Expected grant holder to reach device, got %v", err)
		}
	})
}

func TestAreaDeviceFlow(t *testing.T) {
	services, _ := setupTestServices(t)
	ctx := context.Background()
	alice := registerUser(t, services, "alice")
	project := saveProject(t, services, alice, "greenhouse")
	otherProject := saveProject(t, services, alice, "warehouse")

	area, err := services.Areas.Save(ctx, alice, &models.Area{
		ProjectID: project.ID, Name: "north-wing", AreaViewType: "MAP",
	})
	if err != nil {
		t.Fatalf("Failed to save area: %v", err)
	}
	device, err := services.Devices.Save(ctx, alice, &models.Device{
		ProjectID: project.ID, DeviceName: "sensor-1",
	}, "x")
	if err != nil {
		t.Fatalf("Failed to save device: %v", err)
	}
	foreign, err := services.Devices.Save(ctx, alice, &models.Device{
		ProjectID: otherProject.ID, DeviceName: "sensor-2",
	}, "x")
	if err != nil {
		t.Fatalf("Failed to save foreign device: %v", err)
	}

	t.Run("invalid view type rejected", func(t *testing.T) {
		_, err := services.Areas.Save(ctx, alice, &models.Area{
			ProjectID: project.ID, Name: "bad", AreaViewType: "HOLOGRAM",
		})
		if err == nil {
			t.Error("Expected validation error for unknown view type")
		}
	})

	t.Run("cross project link rejected", func(t *testing.T) {
		_, err := services.Areas.AddDevice(ctx, alice, area.ID, foreign.ID)
		if err == nil {
			t.Fatal("Expected cross-project link to fail")
		}
	})

	t.Run("link and list", func(t *testing.T) {
		link, err := services.Areas.AddDevice(ctx, alice, area.ID, device.ID)
		if err != nil {
			t.Fatalf("Failed to link device: %v", err)
		}

		links, err := services.Areas.ListDevices(ctx, alice, area.ID)
		if err != nil {
			t.Fatalf("Failed to list links: %v", err)
		}
		if len(links) != 1 {
			t.Errorf("Expected one link, got %d", len(links))
		}

		if err := services.Areas.RemoveDevice(ctx, alice, link.ID); err != nil {
			t.Fatalf("Failed to unlink device: %v", err)
		}
	})

	t.Run("project area listing", func(t *testing.T) {
		areas, err := services.Projects.GetAreaList(ctx, alice, project.ID)
		if err != nil {
			t.Fatalf("Failed to list areas: %v", err)
		}
		if len(areas) != 1 {
			t.Errorf("Expected one area, got %d", len(areas))
		}
	})
}
