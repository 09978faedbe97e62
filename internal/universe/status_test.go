package universe

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/newhook/swecheck/internal/logparser"
)

func TestResolve(t *testing.T) {
	p := &logparser.ParsedLog{
		Passed:  logparser.Set{"p": {}, "both": {}},
		Failed:  logparser.Set{"f": {}, "both": {}},
		Ignored: logparser.Set{"i": {}},
	}

	tests := []struct {
		name string
		want Status
	}{
		{"p", StatusPassed},
		{"f", StatusFailed},
		{"i", StatusIgnored},
		{"both", StatusFailed},
		{"absent", StatusMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(p, tt.name))
		})
	}
}

func TestResolve_FailureNeverShadowed(t *testing.T) {
	for _, input := range []string{
		"test t ... ok\ntest t ... FAILED\n",
		"test t ... FAILED\ntest t ... ok\n",
	} {
		assert.Equal(t, StatusFailed, Resolve(logparser.Parse(input), "t"), input)
	}
}

func TestResolveAll_NilLog(t *testing.T) {
	got := ResolveAll(nil, []string{"a", "b"})
	assert.Equal(t, Statuses{"a": StatusMissing, "b": StatusMissing}, got)
}

func TestStatuses_Get(t *testing.T) {
	s := Statuses{"a": StatusPassed}
	assert.Equal(t, StatusPassed, s.Get("a"))
	assert.Equal(t, StatusMissing, s.Get("b"))
}
