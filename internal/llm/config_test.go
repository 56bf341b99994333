package llm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, ProviderGemini, config.Provider)
	assert.Equal(t, "gemini-2.5-flash-lite", config.GetModel(TierLite))
	assert.Equal(t, "gemini-2.5-flash", config.GetModel(TierStandard))
	assert.Equal(t, "gemini-2.5-pro", config.GetModel(TierAdvanced))

	// Throttle defaults ship enabled so a misconfigured deploy cannot hammer
	// the provider.
	assert.Greater(t, config.RequestsPerSecond, 0.0)
	assert.Greater(t, config.Burst, 0)
	assert.Equal(t, 90*time.Second, config.CallTimeout)
}

func TestGetModel_FallbackChain(t *testing.T) {
	tests := []struct {
		name   string
		models map[ModelTier]string
		tier   ModelTier
		want   string
	}{
		{"exact tier", map[ModelTier]string{TierAdvanced: "pro"}, TierAdvanced, "pro"},
		{"unknown tier falls to standard", map[ModelTier]string{TierStandard: "std", TierLite: "lite"}, "unknown", "std"},
		{"then to lite", map[ModelTier]string{TierLite: "lite"}, "unknown", "lite"},
		{"nothing configured", map[ModelTier]string{}, TierAdvanced, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{Provider: ProviderGemini, Models: tt.models}
			assert.Equal(t, tt.want, config.GetModel(tt.tier))
		})
	}
}

func TestWithModel(t *testing.T) {
	config := DefaultConfig()
	custom := config.WithModel(TierAdvanced, "custom-model")

	assert.Equal(t, "gemini-2.5-pro", config.GetModel(TierAdvanced), "original must not change")
	assert.Equal(t, "custom-model", custom.GetModel(TierAdvanced))
	assert.Equal(t, "gemini-2.5-flash-lite", custom.GetModel(TierLite), "other tiers copied")
	assert.Equal(t, config.CallTimeout, custom.CallTimeout, "throttle settings copied")
}
