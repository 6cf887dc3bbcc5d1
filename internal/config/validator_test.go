package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/zkprivacy/pkg/types"
)

func TestValidateAppConfig_AcceptsDefaults(t *testing.T) {
	assert.NoError(t, ValidateAppConfig(nil))
	assert.NoError(t, ValidateAppConfig(&types.AppConfig{}))

	cfg := &types.AppConfig{
		Log:     &types.UserLogConfig{Level: types.StringPtr("DEBUG")},
		API:     &types.UserAPIConfig{Port: types.IntPtr(8090)},
		Custody: &types.UserCustodyConfig{Backend: types.StringPtr(" Badger ")},
		ZKProof: &types.UserZKProofConfig{
			Curve:          types.StringPtr("BLS12-377"),
			VerifyCacheTTL: types.StringPtr("5m"),
		},
	}
	assert.NoError(t, ValidateAppConfig(cfg))
}

func TestValidateAppConfig_CollectsAllErrors(t *testing.T) {
	cfg := &types.AppConfig{
		Log:     &types.UserLogConfig{Level: types.StringPtr("verbose")},
		API:     &types.UserAPIConfig{Port: types.IntPtr(70000)},
		Custody: &types.UserCustodyConfig{Backend: types.StringPtr("etcd")},
		ZKProof: &types.UserZKProofConfig{
			Curve:          types.StringPtr("bn254"),
			VerifyCacheTTL: types.StringPtr("soon"),
		},
	}

	err := ValidateAppConfig(cfg)
	require.Error(t, err)

	var verrs *ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs.Errors, 5)

	fields := make([]string, 0, len(verrs.Errors))
	for _, e := range verrs.Errors {
		var ve *ValidationError
		require.ErrorAs(t, e, &ve)
		fields = append(fields, ve.Field)
	}
	assert.Equal(t, []string{
		"log.level", "api.port", "custody.backend", "zkproof.curve", "zkproof.verify_cache_ttl",
	}, fields)
}

func TestProvideConfigServices_RejectsInvalidConfig(t *testing.T) {
	bad := &types.AppConfig{API: &types.UserAPIConfig{Port: types.IntPtr(0)}}
	_, err := ProvideConfigServices(ConfigParams{AppOptions: staticAppOptions{cfg: bad}})
	assert.Error(t, err)

	out, err := ProvideConfigServices(ConfigParams{AppOptions: staticAppOptions{cfg: &types.AppConfig{}}})
	require.NoError(t, err)
	assert.Equal(t, "zkprivacy", out.Provider.GetAppName())
}

type staticAppOptions struct {
	cfg *types.AppConfig
}

func (s staticAppOptions) GetAppConfig() *types.AppConfig { return s.cfg }
