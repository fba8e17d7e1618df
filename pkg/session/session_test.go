package session

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestCreateAndContinue(t *testing.T) {
	dataDir := t.TempDir()
	workDir := t.TempDir()

	created, err := Create(dataDir, workDir)
	require.NoError(t, err)
	require.NoError(t, uuid.Validate(created.ID))
	require.DirExists(t, filepath.Dir(created.WireFile))

	continued, err := Continue(dataDir, workDir)
	require.NoError(t, err)
	require.NotNil(t, continued)
	require.Equal(t, created.ID, continued.ID)
	require.Equal(t, created.WireFile, continued.WireFile)
}

func TestContinueWithoutHistory(t *testing.T) {
	s, err := Continue(t.TempDir(), t.TempDir())
	require.NoError(t, err)
	require.Nil(t, s)
}

func TestCreateSupersedesPreviousSession(t *testing.T) {
	dataDir := t.TempDir()
	workDir := t.TempDir()

	first, err := Create(dataDir, workDir)
	require.NoError(t, err)
	second, err := Create(dataDir, workDir)
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)

	continued, err := Continue(dataDir, workDir)
	require.NoError(t, err)
	require.Equal(t, second.ID, continued.ID)
}

func TestSessionsArePerWorkDir(t *testing.T) {
	dataDir := t.TempDir()
	workA := t.TempDir()
	workB := t.TempDir()

	a, err := Create(dataDir, workA)
	require.NoError(t, err)
	b, err := Create(dataDir, workB)
	require.NoError(t, err)
	require.NotEqual(t, a.WireFile, b.WireFile)

	continued, err := Continue(dataDir, workA)
	require.NoError(t, err)
	require.Equal(t, a.ID, continued.ID)
}

func TestMetadataSurvivesReload(t *testing.T) {
	dataDir := t.TempDir()
	workDir := t.TempDir()

	created, err := Create(dataDir, workDir)
	require.NoError(t, err)

	meta, err := loadMetadata(dataDir)
	require.NoError(t, err)
	canonicalWorkDir, err := canonical(workDir)
	require.NoError(t, err)
	require.Equal(t, created.ID, meta.lastSession(canonicalWorkDir))
}
