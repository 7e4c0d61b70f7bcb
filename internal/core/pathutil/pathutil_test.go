package pathutil

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`C:\Users\dev\projects`, "C:/Users/dev/projects"},
		{"C:/Users//dev///projects", "C:/Users/dev/projects"},
		{"/home/dev/projects/", "/home/dev/projects"},
		{`\\wsl$\Ubuntu\home\dev`, "//wsl$/Ubuntu/home/dev"},
		{"//server/share//data", "//server/share/data"},
		{"C:/", "C:/"},
		{"/", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestIsWSLPath(t *testing.T) {
	assert.True(t, IsWSLPath(`\\wsl$\Ubuntu\home`))
	assert.True(t, IsWSLPath("//wsl.localhost/Ubuntu/home"))
	assert.True(t, IsWSLPath("/mnt/c/Users"))
	assert.True(t, IsWSLPath("/home/dev"))
	assert.False(t, IsWSLPath(`C:\Users`))
	assert.False(t, IsWSLPath("//server/share"))
}

func TestToWindowsPath(t *testing.T) {
	assert.Equal(t, "D:/Projects/app", ToWindowsPath("/mnt/d/Projects/app"))
	assert.Equal(t, "C:/", ToWindowsPath("/mnt/c"))
	assert.Equal(t, "/home/dev/app", ToWindowsPath("/home/dev/app"))
	assert.Equal(t, "C:/already/windows", ToWindowsPath(`C:\already\windows`))
}

func TestSameVolume(t *testing.T) {
	assert.True(t, SameVolume("C:/a", "C:/b"))
	assert.True(t, SameVolume("c:/a", "C:/b"))
	assert.False(t, SameVolume("C:/a", "D:/b"))
	assert.False(t, SameVolume("/home/a", "C:/b"))
	// POSIX paths are never same-volume, even with each other; the mover
	// must take the copy path when the volume is unknown.
	assert.False(t, SameVolume("/home/a", "/home/b"))
}

func TestIsInsideRoot(t *testing.T) {
	assert.True(t, IsInsideRoot("C:/org/web/app", "C:/org"))
	assert.True(t, IsInsideRoot("c:/ORG", "C:/org"))
	assert.False(t, IsInsideRoot("C:/other/app", "C:/org"))
	assert.False(t, IsInsideRoot("C:/orgfoo/app", "C:/org"))
	// Traversal must be resolved before comparison.
	assert.False(t, IsInsideRoot("C:/org/../escape", "C:/org"))
	assert.True(t, IsInsideRoot("C:/org/a/../b", "C:/org"))
}

func TestIsSystemPath(t *testing.T) {
	assert.True(t, IsSystemPath(`C:\Windows\System32`))
	assert.True(t, IsSystemPath("c:/program files (x86)/thing"))
	assert.True(t, IsSystemPath("/etc"))
	assert.True(t, IsSystemPath("/usr/local/bin"))
	assert.False(t, IsSystemPath("C:/Users/dev/projects"))
	assert.False(t, IsSystemPath("/home/dev"))
	assert.False(t, IsSystemPath("/etcetera"))
}

func TestResolveConflict(t *testing.T) {
	t.Run("no collision", func(t *testing.T) {
		got, err := ResolveConflict("C:/org/web/app", []string{"C:/org/web/other"})
		require.NoError(t, err)
		assert.Equal(t, "C:/org/web/app", got)
	})

	t.Run("case-insensitive collision", func(t *testing.T) {
		got, err := ResolveConflict("X", []string{"x"})
		require.NoError(t, err)
		assert.Equal(t, "X-2", got)
	})

	t.Run("skips taken suffixes", func(t *testing.T) {
		got, err := ResolveConflict("X", []string{"x", "x-2", "x-3"})
		require.NoError(t, err)
		assert.Equal(t, "X-4", got)
	})

	t.Run("exhaustion", func(t *testing.T) {
		existing := []string{"x"}
		for i := 2; i <= 102; i++ {
			existing = append(existing, fmt.Sprintf("x-%d", i))
		}
		_, err := ResolveConflict("X", existing)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exhausted")
	})
}

func TestParentAndLastSegment(t *testing.T) {
	assert.Equal(t, "C:/a", Parent("C:/a/b"))
	assert.Equal(t, "C:/", Parent("C:/a"))
	assert.Equal(t, "/", Parent("/a"))
	assert.Equal(t, "b", LastSegment("C:/a/b"))
	assert.Equal(t, "app", LastSegment("/home/dev/app/"))
	assert.Equal(t, UnknownSegment, LastSegment(""))
	assert.Equal(t, UnknownSegment, LastSegment("C:/"))
	assert.Equal(t, UnknownSegment, LastSegment("/"))
}

func TestJoinPreservesUNC(t *testing.T) {
	assert.Equal(t, "//wsl$/Ubuntu/home/dev", Join(`\\wsl$\Ubuntu`, "home", "dev"))
	assert.Equal(t, "C:/a/b", Join("C:/a", "b"))
	assert.Equal(t, "/home/dev/app", Join("/home/dev", "app"))
}
