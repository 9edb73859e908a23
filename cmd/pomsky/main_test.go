package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCompilesPatternFromArgument(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run([]string{"pomsky", "-f", "pcre", "'foo' | 'bar'"}, nil, &stdout, &stderr)
	require.NoError(t, err)
	assert.Equal(t, "foo|bar\n", stdout.String())
	assert.Empty(t, stderr.String())
}

func TestRunCompilesPatternFromStdin(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run([]string{"pomsky", "-f", "re2"}, strings.NewReader(" 'x'+ \n"), &stdout, &stderr)
	require.NoError(t, err)
	assert.Equal(t, "x+\n", stdout.String())
}

func TestRunReportsUnknownFlavor(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run([]string{"pomsky", "-f", "cobol-regex", "'x'"}, nil, &stdout, &stderr)
	require.Error(t, err)
	assert.Contains(t, stderr.String(), "unknown flavor")
}

func TestRunReportsDiagnosticsOnCompileError(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run([]string{"pomsky", "-f", "pcre", "nonexistent"}, nil, &stdout, &stderr)
	require.Error(t, err)
	assert.Contains(t, stderr.String(), "ERROR")
	assert.Empty(t, stdout.String())
}

func TestRunVersionFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run([]string{"pomsky", "--version"}, nil, &stdout, &stderr)
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), version)
}

func TestRunDenyFlagRestrictsFeatures(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run([]string{"pomsky", "-f", "pcre", "--deny", "recursion", "recursion"}, nil, &stdout, &stderr)
	require.Error(t, err)
	assert.Contains(t, stderr.String(), "ERROR")
	_ = stdout
}

func TestRunNoInputReportsError(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run([]string{"pomsky", "-f", "pcre"}, nil, &stdout, &stderr)
	require.Error(t, err)
	assert.Contains(t, stderr.String(), "no pattern")
}
