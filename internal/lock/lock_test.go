package lock

import (
	"os"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// deadPID is above the Linux pid_max ceiling, so no live process can own it.
const deadPID = 1 << 30

func newTestLocker(t *testing.T) *Locker {
	t.Helper()
	t.Setenv("TMPDIR", t.TempDir())
	l := New("contentbot-test")
	t.Cleanup(l.Release)
	return l
}

func TestAcquireWritesOwnPid(t *testing.T) {
	l := newTestLocker(t)

	require.True(t, l.Acquire())
	require.True(t, l.Acquired())

	data, err := os.ReadFile(l.Path())
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(os.Getpid()), string(data))
}

func TestAcquireIsIdempotent(t *testing.T) {
	l := newTestLocker(t)

	require.True(t, l.Acquire())
	assert.True(t, l.Acquire())
}

func TestSecondInstanceIsRefused(t *testing.T) {
	first := newTestLocker(t)
	require.True(t, first.Acquire())

	second := New("contentbot-test")
	assert.False(t, second.Acquire())
	assert.False(t, second.Acquired())

	first.Release()
	assert.True(t, second.Acquire())
	second.Release()
}

func TestStaleLockIsReclaimed(t *testing.T) {
	l := newTestLocker(t)
	require.NoError(t, os.WriteFile(l.Path(), []byte(strconv.Itoa(deadPID)), 0o644))

	require.True(t, l.Acquire())

	data, err := os.ReadFile(l.Path())
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(os.Getpid()), string(data))
}

func TestGarbageRecordIsReclaimed(t *testing.T) {
	l := newTestLocker(t)
	require.NoError(t, os.WriteFile(l.Path(), []byte("not-a-pid"), 0o644))

	require.True(t, l.Acquire())

	data, err := os.ReadFile(l.Path())
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(os.Getpid()), string(data))
}

func TestReleaseByNonOwnerKeepsRecord(t *testing.T) {
	l := newTestLocker(t)
	foreign := strconv.Itoa(os.Getpid() + 1)
	require.NoError(t, os.WriteFile(l.Path(), []byte(foreign), 0o644))

	l.Release()

	data, err := os.ReadFile(l.Path())
	require.NoError(t, err)
	assert.Equal(t, foreign, string(data))
}

func TestReleaseRemovesRecordAndIsRepeatable(t *testing.T) {
	l := newTestLocker(t)
	require.True(t, l.Acquire())

	l.Release()
	_, err := os.Stat(l.Path())
	assert.True(t, os.IsNotExist(err))

	l.Release()
}

// Mirrors the crash-recovery sequence: a second instance is refused while
// the owner lives, and a third acquires after the owner dies without
// releasing.
func TestCrashedOwnerIsReplaced(t *testing.T) {
	p1 := newTestLocker(t)
	require.True(t, p1.Acquire())

	p2 := New("contentbot-test")
	require.False(t, p2.Acquire())

	// Simulate the owner dying hard: the OS lock vanishes with the
	// process, the record stays behind naming a pid that is gone.
	p1.unlockQuietly()
	p1.acquired = false
	require.NoError(t, os.WriteFile(p1.Path(), []byte(strconv.Itoa(deadPID)), 0o644))

	p3 := New("contentbot-test")
	require.True(t, p3.Acquire())

	data, err := os.ReadFile(p3.Path())
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(os.Getpid()), string(data))
	p3.Release()
}

func TestProcessAlive(t *testing.T) {
	assert.True(t, processAlive(os.Getpid()))
	assert.False(t, processAlive(deadPID))
}
