package baileys

import (
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v, want nil", err)
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name      string
		mutate    func(*Config)
		wantValid bool
	}{
		{
			name:      "defaults",
			mutate:    func(*Config) {},
			wantValid: true,
		},
		{
			name: "pairing enabled with phone",
			mutate: func(c *Config) {
				c.Pairing.Enabled = true
				c.Pairing.PhoneNumber = "15551234567"
			},
			wantValid: true,
		},
		{
			name: "pairing enabled without phone",
			mutate: func(c *Config) {
				c.Pairing.Enabled = true
				c.Pairing.PhoneNumber = "   "
			},
			wantValid: false,
		},
		{
			name: "pairing with zero ttl",
			mutate: func(c *Config) {
				c.Pairing.Enabled = true
				c.Pairing.PhoneNumber = "15551234567"
				c.Pairing.CodeTTL = 0
			},
			wantValid: false,
		},
		{
			name: "pairing with empty prefix",
			mutate: func(c *Config) {
				c.Pairing.Enabled = true
				c.Pairing.PhoneNumber = "15551234567"
				c.Pairing.KeyPrefix = ""
			},
			wantValid: false,
		},
		{
			name: "auto-reply enabled without text",
			mutate: func(c *Config) {
				c.AutoReply.Enabled = true
				c.AutoReply.Text = ""
			},
			wantValid: false,
		},
		{
			name: "negative composing delay",
			mutate: func(c *Config) {
				c.AutoReply.ComposingDelay = -time.Second
			},
			wantValid: false,
		},
		{
			name: "negative restart delay",
			mutate: func(c *Config) {
				c.Supervisor.RestartDelay = -time.Second
			},
			wantValid: false,
		},
		{
			name: "negative max restarts",
			mutate: func(c *Config) {
				c.Supervisor.MaxRestarts = -1
			},
			wantValid: false,
		},
		{
			name: "negative cache retries",
			mutate: func(c *Config) {
				c.Cache.MaxRetries = -1
			},
			wantValid: false,
		},
		{
			name: "negative retry cache age",
			mutate: func(c *Config) {
				c.Retry.MaxAge = -time.Hour
			},
			wantValid: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)

			err := cfg.Validate()
			if tc.wantValid && err != nil {
				t.Fatalf("Validate() = %v, want nil", err)
			}
			if !tc.wantValid && err == nil {
				t.Fatal("Validate() = nil, want error")
			}
		})
	}
}
