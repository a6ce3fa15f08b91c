package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfo(t *testing.T) {
	v, commit, date := Info()
	assert.Equal(t, Version, v)
	assert.Equal(t, GitCommit, commit)
	assert.Equal(t, BuildDate, date)
}

func TestString(t *testing.T) {
	old := [3]string{Version, GitCommit, BuildDate}
	t.Cleanup(func() { Version, GitCommit, BuildDate = old[0], old[1], old[2] })

	Version, GitCommit, BuildDate = "1.2.0", "abc123", "2024-01-02"
	assert.Equal(t, "1.2.0 (commit abc123, built 2024-01-02, "+runtime.Version()+")", String())
}
