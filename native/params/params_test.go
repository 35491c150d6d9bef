package params

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultValidates(t *testing.T) {
	p := Default()
	p.DevAccount = "gig1qqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqnh6v9h"
	require.NoError(t, p.Validate())
}

func TestValidateRejectsBadRewardSplit(t *testing.T) {
	p := Default()
	p.DevAccount = "gig1qqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqnh6v9h"
	p.VerifierRewardPercentage = 50
	require.Error(t, p.Validate())
}

func TestValidateRejectsMissingDevAccount(t *testing.T) {
	p := Default()
	require.Error(t, p.Validate())
}
