package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefaultFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "./gig-data", cfg.DataDir)
	require.NoError(t, cfg.Params.Validate())

	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestLoadParsesParamsOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	contents := fmt.Sprintf(`ListenAddress = ":7001"
RPCAddress = ":9090"
DataDir = "%s"

[Params]
MaxUrlLength = 512
MaxAssignments = 4
MaxVerifierSubmissions = 7
VerificationTimeout = 50
TotalReward = 2000
FeeSplitTreasuryPercent = 75
MinerRewardPercentage = 55
VerifierRewardPercentage = 45
MinerDeposit = 200
VerifierDeposit = 200
DevAccount = "gig1qqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqnh6v9h"
`, dir)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 512, cfg.Params.MaxUrlLength)
	require.Equal(t, uint64(7), uint64(cfg.Params.MaxVerifierSubmissions))
	require.Equal(t, uint64(75), cfg.Params.FeeSplitTreasuryPercent)
}

func TestLoadRejectsBadRewardSplit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	contents := `ListenAddress = ":7001"

[Params]
MaxUrlLength = 256
MaxAssignments = 8
MaxVerifierSubmissions = 5
VerificationTimeout = 100
TotalReward = 1000
FeeSplitTreasuryPercent = 80
MinerRewardPercentage = 70
VerifierRewardPercentage = 40
MinerDeposit = 100
VerifierDeposit = 100
DevAccount = "gig1qqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqnh6v9h"
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}
