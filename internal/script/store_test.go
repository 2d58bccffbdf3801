package script

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "scripts"), nil)
	require.NoError(t, err)
	return s
}

func TestCleanName(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "deploy", want: "deploy"},
		{in: "deploy.sh", want: "deploy"},
		{in: "  spaced  ", want: "spaced"},
		{in: "", wantErr: true},
		{in: ".sh", wantErr: true},
		{in: "..", wantErr: true},
		{in: "a/b", wantErr: true},
		{in: `a\b`, wantErr: true},
	}
	for _, tt := range tests {
		got, err := CleanName(tt.in)
		if tt.wantErr {
			require.ErrorIs(t, err, ErrInvalidName, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		require.Equal(t, tt.want, got)
	}
}

func TestSaveLoadAddsShebangAndExecBit(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Save("demo", "echo hi\n"))

	text, err := s.Load("demo")
	require.NoError(t, err)
	require.Equal(t, "#!/usr/bin/env bash\nset -e\necho hi\n", text)

	p, err := s.Path("demo")
	require.NoError(t, err)
	info, err := os.Stat(p)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o755), info.Mode().Perm())
	require.True(t, s.Exists("demo.sh"))
}

func TestSavedScriptStopsAtFirstFailure(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save("halt", "false\necho unreachable\n"))
	p, err := s.Path("halt")
	require.NoError(t, err)

	var out bytes.Buffer
	err = Run(context.Background(), "sh", p, nil, IO{Out: &out, Err: &out})
	require.Error(t, err)
	require.NotContains(t, out.String(), "unreachable")
}

func TestSaveKeepsExistingShebang(t *testing.T) {
	s := newTestStore(t)
	body := "#!/bin/sh\necho hi\n"
	require.NoError(t, s.Save("demo", body))
	text, err := s.Load("demo")
	require.NoError(t, err)
	require.Equal(t, body, text)
}

func TestSaveReplaces(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save("demo", "echo one\n"))
	require.NoError(t, s.Save("demo", "echo two\n"))
	text, err := s.Load("demo")
	require.NoError(t, err)
	require.Contains(t, text, "echo two")
	require.NotContains(t, text, "echo one")
}

func TestListSortedAndFiltered(t *testing.T) {
	s := newTestStore(t)
	for _, n := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, s.Save(n, "true\n"))
	}
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir, ".script-123.tmp"), []byte("x"), 0o644))

	names, err := s.List()
	require.NoError(t, err)
	require.Equal(t, []string{"alpha", "mid", "zeta"}, names)
}

func TestDeleteAndNotFound(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save("demo", "true\n"))
	require.NoError(t, s.Delete("demo"))
	require.False(t, s.Exists("demo"))

	require.ErrorIs(t, s.Delete("demo"), ErrNotFound)
	_, err := s.Load("demo")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRunScript(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save("greet", "#!/bin/sh\necho \"hello $1\"\n"))
	p, err := s.Path("greet")
	require.NoError(t, err)

	var out bytes.Buffer
	err = Run(context.Background(), "sh", p, []string{"there"}, IO{Out: &out, Err: &out})
	require.NoError(t, err)
	require.Equal(t, "hello there\n", out.String())
}

func TestRunFailingScript(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save("fail", "#!/bin/sh\nexit 3\n"))
	p, err := s.Path("fail")
	require.NoError(t, err)

	err = Run(context.Background(), "sh", p, nil, IO{})
	require.Error(t, err)
	var exitErr interface{ ExitCode() int }
	require.True(t, errors.As(err, &exitErr))
	require.Equal(t, 3, exitErr.ExitCode())
}

func TestRunMissingScript(t *testing.T) {
	err := Run(context.Background(), "sh", filepath.Join(t.TempDir(), "nope.sh"), nil, IO{})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestEditorPreferenceChain(t *testing.T) {
	t.Setenv("VISUAL", "")
	t.Setenv("EDITOR", "")
	require.Equal(t, []string{"vi"}, Editor{}.Command())

	t.Setenv("EDITOR", "nano")
	require.Equal(t, []string{"nano"}, Editor{}.Command())

	t.Setenv("VISUAL", "code --wait")
	require.Equal(t, []string{"code", "--wait"}, Editor{}.Command())

	require.Equal(t, []string{"hx"}, Editor{Override: "hx"}.Command())
}

func TestEditRunsEditor(t *testing.T) {
	// "touch" stands in for an editor that writes the file and exits.
	target := filepath.Join(t.TempDir(), "script.sh")
	ed := Editor{Override: "touch"}
	require.NoError(t, ed.Edit(context.Background(), target, IO{}))
	_, err := os.Stat(target)
	require.NoError(t, err)
}
