package core

import "testing"

func TestConfigApplyDefaults(t *testing.T) {
	cfg := &Config{}
	if err := cfg.applyDefaults(); err != nil {
		t.Fatalf("applyDefaults: %v", err)
	}
	if cfg.StreamTimeout != DefaultStreamTimeout {
		t.Errorf("expected default stream timeout, got %s", cfg.StreamTimeout)
	}
	if cfg.PermissiveUnknownProtocol {
		t.Error("PermissiveUnknownProtocol zero value must be false (strict by default)")
	}
}

func TestConfigValidateRatio(t *testing.T) {
	cases := []struct {
		name    string
		bye     string
		stream  string
		wantErr bool
	}{
		{"exact 2x", "6s", "12s", false},
		{"exact 3x", "6s", "18s", false},
		{"below 2x", "6s", "8s", true},
		{"non-multiple", "6s", "13s", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{}
			mustParse(t, tc.bye, &cfg.LiveStreamByeTimeout)
			mustParse(t, tc.stream, &cfg.StreamTimeout)
			err := cfg.validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
