package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/k3y5tr0k3/sysmonify/internal/collector"
	"github.com/k3y5tr0k3/sysmonify/internal/config"
	"github.com/k3y5tr0k3/sysmonify/internal/errors"
	"github.com/k3y5tr0k3/sysmonify/internal/logger"
	"github.com/k3y5tr0k3/sysmonify/internal/util"
	"github.com/k3y5tr0k3/sysmonify/pkg/payload"
)

// snapshotCommand collects the requested kinds once and prints a single
// JSON document keyed by kind.
func snapshotCommand(args []string, raw bool) error {
	cfg, err := config.LoadOrDefault(configFlag)
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	wanted, err := parseKinds(args)
	if err != nil {
		return err
	}

	log := logger.Default()
	collectors := collector.All(collector.Options{
		ProcessLimit:  cfg.Process.Limit,
		GPURetryTicks: cfg.Sample.GPURetryTicks,
		Logger:        log,
	})

	doc := make(map[string]payload.Message, len(wanted))
	for _, col := range collectors {
		if !wanted[col.Kind()] {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Sample.Timeout)
		msg, err := col.Collect(ctx)
		cancel()
		if err != nil {
			// Absent hardware is not worth failing a scripted
			// snapshot over; the kind just goes missing.
			if errors.IsUnavailable(err) {
				log.Debug("[snapshot] %s: %v", col.Kind(), err)
				continue
			}
			return err
		}
		doc[col.Kind().String()] = msg
	}

	var out []byte
	if raw {
		out, err = json.Marshal(doc)
	} else {
		out, err = json.MarshalIndent(doc, "", "  ")
	}
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrCollect,
			"Failed to encode snapshot",
			"This shouldn't happen - please report this bug")
	}

	fmt.Println(string(out))
	return nil
}

// parseKinds maps positional args to resource kinds. No args selects
// every kind.
func parseKinds(args []string) (map[payload.Kind]bool, error) {
	wanted := make(map[payload.Kind]bool, len(args))
	if len(args) == 0 {
		for _, k := range payload.Kinds() {
			wanted[k] = true
		}
		return wanted, nil
	}

	for _, arg := range args {
		k, err := payload.ParseKind(strings.ToLower(strings.TrimSpace(arg)))
		if err != nil {
			suggestion := "Valid kinds: " + util.JoinOrNone(kindNames())
			if similar := util.SuggestSimilar(strings.TrimSpace(arg), kindNames(), 3); len(similar) > 0 {
				suggestion = "Did you mean: " + strings.Join(similar, ", ") + "?"
			}
			return nil, errors.New(errors.ErrConfig,
				fmt.Sprintf("Unknown kind '%s'", arg),
				suggestion)
		}
		wanted[k] = true
	}
	return wanted, nil
}

// kindNames returns every kind's wire name for help text.
func kindNames() []string {
	kinds := payload.Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	return names
}
