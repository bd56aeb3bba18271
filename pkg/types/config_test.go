package types

import (
	"errors"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:    "empty backend returns ErrBackendEmpty",
			config:  Config{Backend: "", DataDir: "/tmp/data"},
			wantErr: ErrBackendEmpty,
		},
		{
			name:    "unknown backend returns ErrBackendUnknown",
			config:  Config{Backend: "postgres", DataDir: "/tmp/data"},
			wantErr: ErrBackendUnknown,
		},
		{
			name:    "valid jsonfile config",
			config:  Config{Backend: BackendJSONFile, DataDir: "/tmp/data"},
			wantErr: nil,
		},
		{
			name:    "valid sqlite config",
			config:  Config{Backend: BackendSQLite, DataDir: "/tmp/data"},
			wantErr: nil,
		},
		{
			name:    "redis without address returns ErrRedisAddrEmpty",
			config:  Config{Backend: BackendRedis},
			wantErr: ErrRedisAddrEmpty,
		},
		{
			name:    "redis with address is valid",
			config:  Config{Backend: BackendRedis, Redis: RedisConfig{Addr: "localhost:6379"}},
			wantErr: nil,
		},
		{
			name:    "negative page size returns ErrPageSizeInvalid",
			config:  Config{Backend: BackendJSONFile, PageSize: -1},
			wantErr: ErrPageSizeInvalid,
		},
		{
			name:    "empty DataDir is valid at config level",
			config:  Config{Backend: BackendJSONFile, DataDir: ""},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected nil error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error %v, got nil", tt.wantErr)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestConfigDefaults(t *testing.T) {
	var c Config
	if got := c.EffectivePageSize(); got != DefaultPageSize {
		t.Errorf("EffectivePageSize() = %d, want %d", got, DefaultPageSize)
	}
	if got := c.EffectiveLocale(); got != DefaultLocale {
		t.Errorf("EffectiveLocale() = %q, want %q", got, DefaultLocale)
	}
	c = Config{PageSize: 10, Locale: "fr"}
	if got := c.EffectivePageSize(); got != 10 {
		t.Errorf("EffectivePageSize() = %d, want 10", got)
	}
	if got := c.EffectiveLocale(); got != "fr" {
		t.Errorf("EffectiveLocale() = %q, want fr", got)
	}
}
