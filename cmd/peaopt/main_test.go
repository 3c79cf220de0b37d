package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleProgram = `
type 1 opaque attrs=int,int
block bb0
  %r1:obj = fastcreate type=1
  bindattr_i %r1, %r2:int attr=0
  %r3:int = getattr_i %r1 attr=0
  return_i %r3
`

func TestRun_PrintsRewrittenProgram(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.asm")
	require.NoError(t, os.WriteFile(path, []byte(sampleProgram), 0o644))

	require.NoError(t, run(path, "", false))
}

func TestRun_DumpModeCFG(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.asm")
	require.NoError(t, os.WriteFile(path, []byte(sampleProgram), 0o644))

	require.NoError(t, run(path, "cfg", false))
}

func TestRun_UnknownDumpModeErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.asm")
	require.NoError(t, os.WriteFile(path, []byte(sampleProgram), 0o644))

	require.Error(t, run(path, "bogus", false))
}

func TestRun_MissingFileErrors(t *testing.T) {
	require.Error(t, run(filepath.Join(t.TempDir(), "missing.asm"), "", false))
}
