package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/k3y5tr0k3/sysmonify/internal/errors"
)

// fileHeader documents the file for people reading it later. Every key
// is optional, so a freshly written config is also a reference card.
const fileHeader = `# sysmonify configuration
# 'sysmonify serve' publishes this host's metrics; 'sysmonify watch' views them.
# Every key is optional. Delete any line to fall back to the built-in default.
#
#   listen                  address the serve command binds to
#   sample.interval         tick period for every resource kind
#   sample.timeout          per-pass collection deadline
#   sample.gpu_retry_ticks  passes between GPU probes when none is present
#   history.points          rolling window length for per-second series
#   history.core_points     rolling window length for per-core frequency
#   hub.queue               per-viewer queue depth before old frames drop
#   process.limit           top-N processes by CPU (0 = all)

`

// Write renders cfg as commented YAML at path. Used by `sysmonify init`;
// refuses to touch the file unless overwrite is set.
func Write(path string, cfg *Config, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Config file already exists: %s", path),
				"Re-run with --force to replace it.")
		}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to generate config",
			"This shouldn't happen - please report this bug")
	}

	content := fileHeader + string(data)

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Failed to write config file: %s", path),
			"Check directory permissions")
	}

	return nil
}
