package cli

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k3y5tr0k3/sysmonify/pkg/payload"
)

func TestRootRegistersCommands(t *testing.T) {
	want := []string{"serve", "watch", "snapshot", "init", "version", "completion"}

	names := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}

	for _, name := range want {
		assert.True(t, names[name], "root should register %q", name)
	}
}

func TestRootSilencesCobraNoise(t *testing.T) {
	assert.True(t, rootCmd.SilenceErrors, "errors are rendered once in Execute")
	assert.True(t, rootCmd.SilenceUsage, "runtime failures should not dump usage")
}

func TestRootHasConfigFlag(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("config")
	require.NotNil(t, flag)
	assert.Equal(t, "string", flag.Value.Type())
	assert.Equal(t, "", flag.DefValue)
}

func TestCommandFlags(t *testing.T) {
	tests := []struct {
		cmd      *cobra.Command
		flag     string
		flagType string
	}{
		{serveCmd, "listen", "string"},
		{watchCmd, "host", "string"},
		{snapshotCmd, "raw", "bool"},
		{initCmd, "force", "bool"},
		{initCmd, "non-interactive", "bool"},
	}

	for _, tt := range tests {
		t.Run(tt.cmd.Name()+"/"+tt.flag, func(t *testing.T) {
			flag := tt.cmd.Flags().Lookup(tt.flag)
			require.NotNil(t, flag, "%s should have --%s", tt.cmd.Name(), tt.flag)
			assert.Equal(t, tt.flagType, flag.Value.Type())
		})
	}
}

func TestParseKinds(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    []payload.Kind
		wantErr string
	}{
		{
			name: "no args selects everything",
			args: nil,
			want: payload.Kinds(),
		},
		{
			name: "single kind",
			args: []string{"cpu"},
			want: []payload.Kind{payload.KindCPU},
		},
		{
			name: "several kinds, case and whitespace forgiven",
			args: []string{" CPU", "Memory "},
			want: []payload.Kind{payload.KindCPU, payload.KindMemory},
		},
		{
			name: "plural wire name for processes",
			args: []string{"processes"},
			want: []payload.Kind{payload.KindProcess},
		},
		{
			name:    "unknown kind",
			args:    []string{"quantum"},
			wantErr: "Unknown kind 'quantum'",
		},
		{
			name:    "near miss suggests the kind",
			args:    []string{"memor"},
			wantErr: "Did you mean: memory?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseKinds(tt.args)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, got, len(tt.want))
			for _, k := range tt.want {
				assert.True(t, got[k], "expected %s selected", k)
			}
		})
	}
}

func TestCompletionGeneration(t *testing.T) {
	shells := []string{"bash", "zsh", "fish", "powershell"}

	for _, shell := range shells {
		t.Run(shell, func(t *testing.T) {
			cmd := &cobra.Command{Use: "sysmonify", Short: "Live host resource monitoring"}

			var buf bytes.Buffer
			var err error
			switch shell {
			case "bash":
				err = cmd.GenBashCompletion(&buf)
			case "zsh":
				err = cmd.GenZshCompletion(&buf)
			case "fish":
				err = cmd.GenFishCompletion(&buf, true)
			case "powershell":
				err = cmd.GenPowerShellCompletion(&buf)
			}

			require.NoError(t, err)
			assert.NotEmpty(t, buf.String())
			assert.Contains(t, buf.String(), "sysmonify")
		})
	}
}
