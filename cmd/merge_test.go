package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeHelpDescribesPrecedence(t *testing.T) {
	assert.Contains(t, mergeCmd.Long, "later chunk")
	assert.NotContains(t, mergeCmd.Long, "pass over a skip")
}
