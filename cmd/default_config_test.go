package cmd

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/disksched-sim/disksched-sim/sim"
)

// repoDefaultsFile locates the checked-in defaults.yaml from the cmd/ test directory.
func repoDefaultsFile(t *testing.T) string {
	t.Helper()
	path := "defaults.yaml"
	if _, err := os.Stat(path); os.IsNotExist(err) {
		path = "../defaults.yaml"
		if _, err := os.Stat(path); os.IsNotExist(err) {
			t.Skip("defaults.yaml not found, skipping integration test")
		}
	}
	return path
}

func TestRepoDefaults_EveryPresetIsValid(t *testing.T) {
	p, err := loadPresets(repoDefaultsFile(t))
	require.NoError(t, err)
	require.NotEmpty(t, p.Names())

	for _, name := range p.Names() {
		t.Run(name, func(t *testing.T) {
			cfg, err := p.Apply(name, sim.DefaultConfig())
			require.NoError(t, err)
			assert.NoError(t, cfg.Validate())
		})
	}
}

func TestRepoDefaults_ReferenceIsDefaultConfig(t *testing.T) {
	p, err := loadPresets(repoDefaultsFile(t))
	require.NoError(t, err)

	cfg, err := p.Apply("reference", sim.DefaultConfig())

	require.NoError(t, err)
	assert.Equal(t, sim.DefaultConfig(), cfg)
}

func TestPresets_Apply_LayersOverBase(t *testing.T) {
	path := writeFile(t, "defaults.yaml", `
version: "1"
presets:
  capped:
    scheduler:
      max_requests_per_second: 25
`)
	p, err := loadPresets(path)
	require.NoError(t, err)
	base := sim.DefaultConfig()
	base.Policy.Name = sim.PolicySSTF

	cfg, err := p.Apply("capped", base)

	require.NoError(t, err)
	assert.Equal(t, 25, cfg.Scheduler.MaxRequestsPerSecond)
	assert.Equal(t, sim.PolicySSTF, cfg.Policy.Name)
}

func TestPresets_UnknownPreset_ListsAvailable(t *testing.T) {
	path := writeFile(t, "defaults.yaml", "presets:\n  b: {}\n  a: {}\n")
	p, err := loadPresets(path)
	require.NoError(t, err)

	_, err = p.Apply("c", sim.DefaultConfig())

	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown preset "c" (available: a, b)`)
}

func TestPresets_UnknownKeyInPreset_Rejected(t *testing.T) {
	path := writeFile(t, "defaults.yaml", "presets:\n  bad:\n    drive:\n      heads: 2\n")
	p, err := loadPresets(path)
	require.NoError(t, err)

	_, err = p.Apply("bad", sim.DefaultConfig())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config")
}

func TestLoadPresets_UnknownTopLevelKey_Rejected(t *testing.T) {
	path := writeFile(t, "defaults.yaml", "version: \"1\"\nmodels: []\n")

	_, err := loadPresets(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing defaults file")
}
