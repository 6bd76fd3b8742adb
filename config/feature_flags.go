package config

import (
	"hash/fnv"
	"os"
	"strconv"
	"strings"
	"sync"
)

// FeatureFlags manages feature toggles. Supports gradual rollout by
// username hash and per-flag environment overrides.
type FeatureFlags struct {
	mu       sync.RWMutex
	features map[string]*Feature
}

// Feature represents a single feature flag.
type Feature struct {
	Name        string
	Description string
	Enabled     bool

	// Rollout percentage (0-100). Profiles are assigned based on a hash
	// of their username.
	RolloutPercent int
}

// Predefined feature flag names.
const (
	// FeatureRealtimeBroadcast pushes notifications over Redis pub/sub in
	// addition to storing them.
	FeatureRealtimeBroadcast = "realtime.broadcast"

	// FeatureTokenTrading enables the buy/sell token endpoints.
	FeatureTokenTrading = "billing.token_trading"

	// FeatureCommentReports enables flagging comments for moderation.
	FeatureCommentReports = "comments.reports"

	// FeatureDirectMessages enables the profile-to-profile inbox.
	FeatureDirectMessages = "messages.inbox"
)

// LoadFeatureFlags loads feature flags from environment variables.
func LoadFeatureFlags() *FeatureFlags {
	ff := &FeatureFlags{
		features: make(map[string]*Feature),
	}

	ff.initializeDefaults()
	ff.loadFromEnvironment()

	return ff
}

// initializeDefaults sets up all features with default values.
func (ff *FeatureFlags) initializeDefaults() {
	ff.features[FeatureRealtimeBroadcast] = &Feature{
		Name:           FeatureRealtimeBroadcast,
		Description:    "Broadcast notifications over Redis pub/sub",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureTokenTrading] = &Feature{
		Name:           FeatureTokenTrading,
		Description:    "Buy and sell platform tokens",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureCommentReports] = &Feature{
		Name:           FeatureCommentReports,
		Description:    "Report comments for moderation",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureDirectMessages] = &Feature{
		Name:           FeatureDirectMessages,
		Description:    "Direct messages between profiles",
		Enabled:        true,
		RolloutPercent: 100,
	}
}

// loadFromEnvironment applies per-flag overrides of the form
// FEATURE_REALTIME_BROADCAST=false or FEATURE_MESSAGES_INBOX_PERCENT=25.
func (ff *FeatureFlags) loadFromEnvironment() {
	for name, f := range ff.features {
		envName := "FEATURE_" + strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(name))

		if val := os.Getenv(envName); val != "" {
			if b, err := strconv.ParseBool(val); err == nil {
				f.Enabled = b
			}
		}
		if val := os.Getenv(envName + "_PERCENT"); val != "" {
			if p, err := strconv.Atoi(val); err == nil && p >= 0 && p <= 100 {
				f.RolloutPercent = p
			}
		}
	}
}

// IsEnabled reports whether the feature is on globally.
func (ff *FeatureFlags) IsEnabled(name string) bool {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	f, ok := ff.features[name]
	return ok && f.Enabled && f.RolloutPercent > 0
}

// IsEnabledFor reports whether the feature is on for a specific profile,
// honoring the rollout percentage.
func (ff *FeatureFlags) IsEnabledFor(name, username string) bool {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	f, ok := ff.features[name]
	if !ok || !f.Enabled {
		return false
	}
	if f.RolloutPercent >= 100 {
		return true
	}
	if f.RolloutPercent <= 0 {
		return false
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(name + ":" + username))
	return int(h.Sum32()%100) < f.RolloutPercent
}

// Set enables or disables a feature at runtime.
func (ff *FeatureFlags) Set(name string, enabled bool) {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	if f, ok := ff.features[name]; ok {
		f.Enabled = enabled
	}
}

// List returns a snapshot of all features.
func (ff *FeatureFlags) List() []Feature {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	out := make([]Feature, 0, len(ff.features))
	for _, f := range ff.features {
		out = append(out, *f)
	}
	return out
}
