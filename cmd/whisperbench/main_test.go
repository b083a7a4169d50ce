package main

import (
	"errors"
	"testing"

	"github.com/fmueller/whisperbench/internal/cli"
	"github.com/stretchr/testify/require"
)

func TestShouldPrintUsageHint(t *testing.T) {
	t.Parallel()

	require.True(t, shouldPrintUsageHint(errors.New("unknown command \"bad\" for \"whisperbench\"")))
	require.True(t, shouldPrintUsageHint(errors.New("unknown flag: --oops")))
	require.True(t, shouldPrintUsageHint(errors.New("accepts 1 arg(s), received 0")))
	require.False(t, shouldPrintUsageHint(errors.New("download model \"small\": context deadline exceeded")))
	require.False(t, shouldPrintUsageHint(errors.New("reference transcript talk_reference.txt not found")))
	require.False(t, shouldPrintUsageHint(nil))
}

func TestHelpHintTarget(t *testing.T) {
	t.Parallel()

	root := cli.NewRootCmd()
	require.Equal(t, "whisperbench", helpHintTarget(nil, nil))
	require.Equal(t, "whisperbench", helpHintTarget(root, []string{"--badflag"}))
	require.Equal(t, "whisperbench", helpHintTarget(root, []string{"badcmd"}))
	require.Equal(t, "whisperbench evaluate", helpHintTarget(root, []string{"evaluate"}))
	require.Equal(t, "whisperbench evaluate", helpHintTarget(root, []string{"evaluate", "--models", "tiny"}))
	require.Equal(t, "whisperbench compare", helpHintTarget(root, []string{"compare", "a.txt"}))
}
