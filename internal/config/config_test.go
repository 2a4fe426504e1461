package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const testProgramID = "BPFLoaderUpgradeab1e11111111111111111111111"

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("PROGRAM_ID", testProgramID)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, 7311, cfg.APIPort)
	require.Equal(t, "https://api.devnet.solana.com", cfg.RPCURL)
	require.Equal(t, "confirmed", cfg.Commitment)
	require.False(t, cfg.Development)
	require.Empty(t, cfg.KeypairPath)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("PROGRAM_ID", testProgramID)
	t.Setenv("RPC_URL", "https://api.mainnet-beta.solana.com")
	t.Setenv("API_PORT", "9000")
	t.Setenv("COMMITMENT", "finalized")
	t.Setenv("DEVELOPMENT", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "https://api.mainnet-beta.solana.com", cfg.RPCURL)
	require.Equal(t, 9000, cfg.APIPort)
	require.Equal(t, "finalized", cfg.Commitment)
	require.True(t, cfg.Development)
}

func TestValidateRequiresProgramID(t *testing.T) {
	cfg := &Config{RPCURL: "http://localhost:8899", Commitment: "confirmed"}
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsMalformedProgramID(t *testing.T) {
	cfg := &Config{
		RPCURL:     "http://localhost:8899",
		ProgramID:  "not-a-key",
		Commitment: "confirmed",
	}
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsUnknownCommitment(t *testing.T) {
	cfg := &Config{
		RPCURL:     "http://localhost:8899",
		ProgramID:  testProgramID,
		Commitment: "eventually",
	}
	require.Error(t, cfg.Validate())
}

func TestProgramReturnsParsedKey(t *testing.T) {
	cfg := &Config{
		RPCURL:     "http://localhost:8899",
		ProgramID:  testProgramID,
		Commitment: "processed",
	}
	require.NoError(t, cfg.Validate())
	require.Equal(t, testProgramID, cfg.Program().String())
}
