package buildinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ctx  *Context
		want string
	}{
		{name: "nil context", ctx: nil, want: UnknownValue},
		{name: "empty version", ctx: NewContext("", "2024-01-01"), want: UnknownValue},
		{name: "valid version", ctx: NewContext("1.2.0", "2024-01-01"), want: "1.2.0"},
		{name: "pre-release", ctx: NewContext("1.2.0-rc.1", ""), want: "1.2.0-rc.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.ctx.GetVersion())
		})
	}
}

func TestContextBuildDate(t *testing.T) {
	t.Parallel()
	assert.Equal(t, UnknownValue, (*Context)(nil).GetBuildDate())
	assert.Equal(t, UnknownValue, NewContext("1.0.0", "").GetBuildDate())
	assert.Equal(t, "2024-01-01", NewContext("1.0.0", "2024-01-01").GetBuildDate())
}

func TestRelease(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "tmseg@1.0.0", Release(NewContext("1.0.0", "")))
	assert.Equal(t, "tmseg@unknown", Release(NewContext("", "")))
}
