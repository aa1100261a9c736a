package main

import (
	"errors"
	"testing"

	"github.com/mezonai/token/cmd"
	"github.com/stretchr/testify/assert"
)

func TestCrashMessageNamesNodeVersion(t *testing.T) {
	msg := crashMessage(errors.New("store closed"))
	assert.Contains(t, msg, cmd.Version)
	assert.Contains(t, msg, "store closed")
	assert.Equal(t, "TOKEN NODE 1.0.0 CRASHED: boom", crashMessage("boom"))
}
