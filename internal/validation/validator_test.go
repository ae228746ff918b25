// Fieldhub - IoT Project and Device Registry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldhub

package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/tomtom215/fieldhub/internal/models"
)

func TestValidateProjectName(t *testing.T) {
	t.Run("valid project passes", func(t *testing.T) {
		p := &models.Project{Name: "Greenhouse Sensors", Description: "rooftop deployment"}
		if err := ValidateEntity(p); err != nil {
			t.Errorf("expected valid, got %v", err)
		}
	})

	t.Run("empty name fails on hproject-name", func(t *testing.T) {
		p := &models.Project{Name: ""}
		err := ValidateEntity(p)

		var ve *EntityValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("expected EntityValidationError, got %v", err)
		}
		if len(ve.Violations()) != 1 {
			t.Fatalf("expected 1 violation, got %d", len(ve.Violations()))
		}
		if got := ve.Violations()[0].Field; got != "hproject-name" {
			t.Errorf("field = %q, want hproject-name", got)
		}
	})

	t.Run("name over 255 chars fails", func(t *testing.T) {
		p := &models.Project{Name: strings.Repeat("a", 256)}
		if err := ValidateEntity(p); err == nil {
			t.Error("expected violation for 256-char name")
		}
	})

	t.Run("name of exactly 255 chars passes", func(t *testing.T) {
		p := &models.Project{Name: strings.Repeat("a", 255)}
		if err := ValidateEntity(p); err != nil {
			t.Errorf("expected valid, got %v", err)
		}
	})

	t.Run("markup in name is rejected", func(t *testing.T) {
		for _, name := range []string{
			"<script>alert('x')</script>",
			"evil<img src=x onerror=alert(1)>",
			"javascript:alert(1)",
			"<b>bold</b>",
		} {
			p := &models.Project{Name: name}
			if err := ValidateEntity(p); err == nil {
				t.Errorf("expected markup rejection for %q", name)
			}
		}
	})
}

func TestValidateProjectDescriptionBoundary(t *testing.T) {
	t.Run("3000 chars passes", func(t *testing.T) {
		p := &models.Project{Name: "ok", Description: strings.Repeat("d", 3000)}
		if err := ValidateEntity(p); err != nil {
			t.Errorf("expected valid at boundary, got %v", err)
		}
	})

	t.Run("3001 chars fails with invalid value echoed", func(t *testing.T) {
		desc := strings.Repeat("d", 3001)
		p := &models.Project{Name: "ok", Description: desc}
		err := ValidateEntity(p)

		var ve *EntityValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("expected EntityValidationError, got %v", err)
		}

		v := ve.Violations()[0]
		if v.Field != "hproject-description" {
			t.Errorf("field = %q, want hproject-description", v.Field)
		}
		got, ok := v.InvalidValue.(string)
		if !ok {
			t.Fatalf("invalid value is %T, want string", v.InvalidValue)
		}
		if len(got) != 3001 {
			t.Errorf("invalid value length = %d, want 3001", len(got))
		}
	})
}

func TestValidateCollectsAllViolations(t *testing.T) {
	p := &models.Project{
		Name:        "",
		Description: strings.Repeat("d", 3001),
	}
	err := ValidateEntity(p)

	var ve *EntityValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected EntityValidationError, got %v", err)
	}
	if len(ve.Violations()) != 2 {
		t.Fatalf("expected both violations reported, got %d", len(ve.Violations()))
	}
}

func TestValidatePacketEnums(t *testing.T) {
	pkt := &models.Packet{Name: "temps", Type: "SIDEWAYS", Format: "JSON"}
	err := ValidateEntity(pkt)

	var ve *EntityValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected EntityValidationError, got %v", err)
	}
	if got := ve.Violations()[0].Field; got != "hpacket-type" {
		t.Errorf("field = %q, want hpacket-type", got)
	}
}

func TestContainsMarkup(t *testing.T) {
	safe := []string{"plain name", "temp > 30", "a & b", "100% done"}
	for _, s := range safe {
		if ContainsMarkup(s) {
			t.Errorf("false positive for %q", s)
		}
	}

	unsafe := []string{"<div>", "</p>", "onclick=go()", "&#x3c;script", "expression(alert(1))"}
	for _, s := range unsafe {
		if !ContainsMarkup(s) {
			t.Errorf("missed injection pattern %q", s)
		}
	}
}
