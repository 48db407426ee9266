package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8081" {
		t.Errorf("Port = %q, want 8081", cfg.Port)
	}
	if cfg.ReminderInterval != 5*time.Minute {
		t.Errorf("ReminderInterval = %v, want 5m", cfg.ReminderInterval)
	}
	if cfg.SheetsExportEnabled() {
		t.Error("SheetsExportEnabled() = true with no spreadsheet id")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := Load()
	cfg.Port = "not-a-port"
	cfg.SQLiteDBPath = ""
	cfg.AMQPURL = "http://wrong-scheme"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() = nil, want error")
	}
	for _, want := range []string{"port", "database path", "scheme"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err, want)
		}
	}
}

func TestValidateSheetsExportNeedsCredentials(t *testing.T) {
	cfg := Load()
	cfg.GoogleSpreadsheetID = "sheet-id"

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "CREDENTIALS") {
		t.Errorf("Validate() = %v, want missing-credentials error", err)
	}

	cfg.GoogleCredentialsJSON = `{"type":"service_account"}`
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() with inline credentials = %v, want nil", err)
	}
}
