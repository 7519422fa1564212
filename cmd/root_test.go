package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tantalor93/dnsrank/pkg/dnsbench"
)

func Test_options_modes(t *testing.T) {
	tests := []struct {
		name        string
		opts        options
		wantCurrent bool
		wantPublic  bool
		wantNote    bool
	}{
		{
			name:        "default",
			wantCurrent: true,
			wantPublic:  true,
		},
		{
			name:        "current only",
			opts:        options{currentOnly: true},
			wantCurrent: true,
		},
		{
			name:       "public only",
			opts:       options{publicOnly: true},
			wantPublic: true,
		},
		{
			name:        "top3",
			opts:        options{top3: true},
			wantCurrent: true,
			wantPublic:  true,
		},
		{
			name:        "top3 takes precedence over public only",
			opts:        options{top3: true, publicOnly: true},
			wantCurrent: true,
			wantPublic:  true,
			wantNote:    true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := bytes.Buffer{}

			testCurrent, testPublic := tt.opts.modes(&buf)

			assert.Equal(t, tt.wantCurrent, testCurrent)
			assert.Equal(t, tt.wantPublic, testPublic)
			if tt.wantNote {
				assert.Contains(t, buf.String(), "--top3 takes precedence over --public-only")
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func Test_options_newExecutor(t *testing.T) {
	onlyNslookup := func(name string) (string, error) {
		if name == "nslookup" {
			return "/usr/bin/nslookup", nil
		}
		return "", errors.New("not found")
	}
	tests := []struct {
		name     string
		opts     options
		wantName string
		wantNil  bool
		wantErr  bool
	}{
		{
			name:    "auto is resolved later",
			opts:    options{executor: executorAuto},
			wantNil: true,
		},
		{
			name:     "native",
			opts:     options{executor: executorNative, protocol: dnsbench.ProtocolTCP},
			wantName: "native/tcp",
		},
		{
			name:     "nslookup",
			opts:     options{executor: executorNslookup},
			wantName: "nslookup",
		},
		{
			name:    "dig not installed",
			opts:    options{executor: executorDig},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := tt.opts.newExecutor(onlyNslookup)

			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, e)
				return
			}
			require.NotNil(t, e)
			assert.Equal(t, tt.wantName, e.Name())
		})
	}
}

func Test_loadDomains(t *testing.T) {
	path := filepath.Join(t.TempDir(), "domains.txt")
	require.NoError(t, os.WriteFile(path, []byte("# popular\ngoogle.com\n\n  github.com  \n"), 0o600))

	got, err := loadDomains([]string{"example.org", "@" + path})

	require.NoError(t, err)
	assert.Equal(t, []string{"example.org", "google.com", "github.com"}, got)
}

func Test_loadDomains_missingFile(t *testing.T) {
	_, err := loadDomains([]string{"@" + filepath.Join(t.TempDir(), "missing.txt")})

	require.Error(t, err)
}

func Test_loadDomains_none(t *testing.T) {
	got, err := loadDomains(nil)

	require.NoError(t, err)
	assert.Nil(t, got)
}
