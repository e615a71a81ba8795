package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"ember/internal/compiler"
	"ember/internal/semantic"
)

func TestOutputPath(t *testing.T) {
	assert.Equal(t, "dir/prog.ll", outputPath("dir/prog.em", ""))
	assert.Equal(t, "noext.ll", outputPath("noext", ""))
	assert.Equal(t, "-", outputPath("prog.em", "-"))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "1.50s", formatDuration(1500*time.Millisecond))
	assert.Equal(t, "2.5ms", formatDuration(2500*time.Microsecond))
	assert.Equal(t, "12ns", formatDuration(12))
}

func TestWatchedFiles(t *testing.T) {
	assert.Equal(t, map[string]bool{"/src/main.em": true}, watchedFiles("/src/main.em", nil))

	r := &compiler.Result{Modules: []semantic.Module{
		{Path: "std::io"},
		{Path: "/src/lib/../util.em"},
		{Path: "/src/main.em"},
	}}
	assert.Equal(t, map[string]bool{"/src/main.em": true, "/src/util.em": true}, watchedFiles("/src/main.em", r))
}
