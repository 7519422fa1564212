package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		verbose   bool
		wantDebug bool
	}{
		{name: "verbose", verbose: true, wantDebug: true},
		{name: "quiet", verbose: false, wantDebug: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := bytes.Buffer{}
			l := New(tt.verbose, &buf)

			l.Debug("discovery source failed", "source", "nmcli dev show")
			l.Warn("failed to benchmark server, skipping", "server", "Google")

			assert.Equal(t, tt.wantDebug, bytes.Contains(buf.Bytes(), []byte("discovery source failed")))
			assert.Contains(t, buf.String(), "server=Google")
		})
	}
}
