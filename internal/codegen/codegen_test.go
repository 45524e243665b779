package codegen

import (
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

var threeLetters = regexp.MustCompile(`^[A-Z]{3}$`)
var fallbackShape = regexp.MustCompile(`^[A-Z]{3}[0-9]$`)

func TestCodeShape(t *testing.T) {
	for i := 0; i < 200; i++ {
		require.Regexp(t, threeLetters, Code(3))
	}
	require.Len(t, Code(5), 5)
}

func TestUniqueCodeFirstTry(t *testing.T) {
	probes := 0
	code, err := UniqueCode(3, 10, func(string) (bool, error) {
		probes++
		return true, nil
	})
	require.NoError(t, err)
	require.Regexp(t, threeLetters, code)
	require.Equal(t, 1, probes)
}

func TestUniqueCodeRetriesUntilAvailable(t *testing.T) {
	probes := 0
	code, err := UniqueCode(3, 10, func(string) (bool, error) {
		probes++
		return probes >= 4, nil
	})
	require.NoError(t, err)
	require.Regexp(t, threeLetters, code)
	require.Equal(t, 4, probes)
}

func TestUniqueCodeFallbackAfterExhaustion(t *testing.T) {
	probes := 0
	code, err := UniqueCode(3, 1000, func(string) (bool, error) {
		probes++
		return false, nil
	})
	require.NoError(t, err)
	// Exactly maxAttempts probes, then the 4-character fallback which is
	// returned without another probe.
	require.Equal(t, 1000, probes)
	require.Regexp(t, fallbackShape, code)
}

func TestUniqueCodeProbeErrorAborts(t *testing.T) {
	boom := errors.New("store down")
	probes := 0
	_, err := UniqueCode(3, 10, func(string) (bool, error) {
		probes++
		return false, boom
	})
	require.ErrorIs(t, err, boom)
	require.Equal(t, 1, probes)
}

func TestUniqueCodeDefaults(t *testing.T) {
	// Non-positive length and attempts fall back to the defaults.
	code, err := UniqueCode(0, 0, func(string) (bool, error) { return true, nil })
	require.NoError(t, err)
	require.Regexp(t, threeLetters, code)
}
