package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Price(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"-price", "500"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	out := stdout.String()
	assert.Contains(t, out, "Profit per unit")
	assert.Contains(t, out, "150.98 ₽")
	assert.Contains(t, out, "0.691 l")
}

func TestRun_ItemFromDataset(t *testing.T) {
	dataPath := filepath.Join(t.TempDir(), "orders.csv")
	require.NoError(t, os.WriteFile(dataPath, []byte("ID;Date;Amount;SumS\nA;2025-02-01;2;1 000,00\nA;2025-02-02;1;500\n"), 0o600))

	var stdout, stderr bytes.Buffer
	code := run([]string{"-data", dataPath, "-item", "A", "-unit-cost", "0"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), "Unit economics for A")
	assert.Contains(t, stdout.String(), "250.98 ₽")

	stdout.Reset()
	code = run([]string{"-data", dataPath, "-item", "Z"}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), `item "Z" not found`)
}

func TestRun_Loss(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"-price", "100"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), "Loss per unit")
}

func TestRun_Errors(t *testing.T) {
	cases := map[string]struct {
		args []string
		code int
	}{
		"no price source": {[]string{}, 2},
		"item only":       {[]string{"-item", "A"}, 2},
		"bad flag":        {[]string{"-nope"}, 2},
		"bad dimensions":  {[]string{"-price", "500", "-dims", "1x2"}, 1},
		"undefined vat":   {[]string{"-price", "500", "-vat", "-100"}, 1},
		"missing dataset": {[]string{"-data", filepath.Join(t.TempDir(), "none.csv"), "-item", "A"}, 1},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			assert.Equal(t, tc.code, run(tc.args, &stdout, &stderr))
			assert.Empty(t, stdout.String())
			assert.NotEmpty(t, stderr.String())
		})
	}
}
