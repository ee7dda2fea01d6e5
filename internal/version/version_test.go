package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	tests := []struct {
		name string
		info Info
		want string
	}{
		{"bare", Info{Version: "dev"}, "crowdlog dev"},
		{"commit", Info{Version: "1.2.0", Commit: "0123456789abcdef", GoVersion: "go1.24.0"}, "crowdlog 1.2.0 (01234567), go1.24.0"},
		{"dirty", Info{Version: "1.2.0", Commit: "abc", Dirty: true}, "crowdlog 1.2.0 (abc+dirty)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.info.String())
		})
	}
}

func TestWarning(t *testing.T) {
	assert.NotEmpty(t, Info{Version: "dev"}.Warning())
	assert.NotEmpty(t, Info{Version: "1.0", Commit: "abc", Dirty: true}.Warning())
	assert.Empty(t, Info{Version: "1.0", Commit: "abc"}.Warning())
}

func TestGet(t *testing.T) {
	info := Get()
	assert.Equal(t, Version, info.Version)
	assert.Equal(t, BuildTime, info.BuildTime)
}
