package cli

import (
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want config
	}{
		{
			name: "flat",
			doc:  "log-level: debug\nlog-pretty: false\n",
			want: config{"log-level": "debug", "log-pretty": false},
		},
		{
			name: "nested",
			doc:  "log:\n  level: warn\n  time_layout: Kitchen\n",
			want: config{"log-level": "warn", "log-time-layout": "Kitchen"},
		},
		{
			name: "numbers_and_lists",
			doc:  "indent: 4\nratio: 0.5\ninclude:\n  - a\n  - b\n",
			want: config{"indent": "4", "ratio": "0.5", "include": "a,b"},
		},
		{
			name: "null_values_dropped",
			doc:  "where: ~\noutput: json\n",
			want: config{"output": "json"},
		},
		{name: "empty", doc: "", want: config{}},
		{name: "invalid", doc: "log-level: [unclosed\n", want: config{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := loadConfig(strings.NewReader(tt.doc))
			require.NoError(t, err)
			assert.Equal(t, tt.want, r)
		})
	}
}

func TestConfig_Resolve(t *testing.T) {
	cfg := config{"log-level": "debug"}

	v, err := cfg.Resolve(nil, nil, &kong.Flag{Value: &kong.Value{Name: "log-level"}})
	require.NoError(t, err)
	assert.Equal(t, "debug", v)

	v, err = cfg.Resolve(nil, nil, &kong.Flag{Value: &kong.Value{Name: "log-format"}})
	require.NoError(t, err)
	assert.Nil(t, v)

	assert.NoError(t, cfg.Validate(nil))
}
