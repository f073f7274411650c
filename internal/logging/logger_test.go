//-------------------------------------------------------------------------
//
// pgEdge Brokerage Admin
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "info", Format: FormatJSON, Output: &buf})

	log.Info().Str("client_code", "AB12CD3").Msg("Account created")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected a JSON line, got %q: %v", buf.String(), err)
	}
	if entry["message"] != "Account created" {
		t.Errorf("Expected message 'Account created', got %v", entry["message"])
	}
	if entry["client_code"] != "AB12CD3" {
		t.Errorf("Expected client_code field, got %v", entry["client_code"])
	}
	if _, ok := entry["time"]; !ok {
		t.Error("Expected a timestamp field")
	}
}

func TestNewLevels(t *testing.T) {
	tests := []struct {
		level     string
		wantDebug bool
		wantInfo  bool
	}{
		{"debug", true, true},
		{"info", false, true},
		{"warn", false, false},
		{"", false, true},
		{"chatty", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			log := New(Config{Level: tt.level, Format: FormatJSON, Output: &buf})

			log.Debug().Msg("debug line")
			if got := strings.Contains(buf.String(), "debug line"); got != tt.wantDebug {
				t.Errorf("Expected debug logged=%v, got %v", tt.wantDebug, got)
			}
			log.Info().Msg("info line")
			if got := strings.Contains(buf.String(), "info line"); got != tt.wantInfo {
				t.Errorf("Expected info logged=%v, got %v", tt.wantInfo, got)
			}
		})
	}
}

func TestNewConsole(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "info", Format: FormatConsole, Output: &buf})
	log.Info().Msg("Starting HTTP server")

	out := buf.String()
	if !strings.Contains(out, "Starting HTTP server") {
		t.Errorf("Expected console output to contain the message, got %q", out)
	}
	if strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Errorf("Expected console output, got JSON %q", out)
	}
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	saved := Logger
	defer func() { Logger = saved }()

	Init(Config{Level: "info", Format: FormatJSON, Output: &buf})
	log := Component("seed")
	log.Info().Msg("Generating brokerage data")

	if !strings.Contains(buf.String(), `"component":"seed"`) {
		t.Errorf("Expected component field, got %q", buf.String())
	}
}
