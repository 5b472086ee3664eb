package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultIsUsableWithoutAFile(t *testing.T) {
	cfg := Default()
	require.Positive(t, cfg.Analyzer.MaxCaptureSize)
	require.Contains(t, []int{8, 16, 32}, cfg.Analyzer.WordBits)
	require.Equal(t, TransportSerial, cfg.Transport.Kind)
	require.Equal(t, "sim", cfg.Analyzer.PinSource)
}

func TestLoadFallsBackToDefaultWhenNoFileExists(t *testing.T) {
	cfg, found := Load()
	require.False(t, found)
	require.Equal(t, Default(), cfg)
}
