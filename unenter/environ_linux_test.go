package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseEnvironSplitsNulDelimitedRecords(t *testing.T) {
	data := []byte("USERNS_NAME=foo\x00PATH=/usr/bin\x00")
	records := parseEnviron(data)

	assert.Equal(t, []string{"USERNS_NAME=foo", "PATH=/usr/bin"}, records)
}

func TestParseEnvironEmptyInput(t *testing.T) {
	assert.Nil(t, parseEnviron(nil))
}

func TestParseEnvironSkipsTrailingEmptyRecord(t *testing.T) {
	data := []byte("A=1\x00")
	assert.Equal(t, []string{"A=1"}, parseEnviron(data))
}
