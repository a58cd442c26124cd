package main

import (
	"bytes"
	"context"
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRun(t *testing.T) {
	t.Run("Help", func(t *testing.T) {
		assert.Equal(t, flag.ErrHelp, run(context.Background(), []string{"help"}))
		assert.Equal(t, flag.ErrHelp, run(context.Background(), nil))
	})
	t.Run("ErrUnknownCommand", func(t *testing.T) {
		assert.EqualError(t, run(context.Background(), []string{"bogus"}), "glee bogus: unknown command")
	})
}

func TestUsage(t *testing.T) {
	var buf bytes.Buffer
	usage(&buf)
	assert.Contains(t, buf.String(), "glee <command> [arguments]")
	assert.Contains(t, buf.String(), "eval        evaluate package initializers")
	assert.Contains(t, buf.String(), "-bind NAME=HEX")
}
