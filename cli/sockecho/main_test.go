//go:build linux || darwin || freebsd

package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func newTestCommand(f *flags) *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().StringVarP(&f.Port, "port", "p", "7007", "")
	cmd.Flags().DurationVarP(&f.IdleTimeout, "idle", "t", time.Second, "")
	cmd.Flags().StringVarP(&f.Address, "address", "a", "127.0.0.1", "")
	cmd.Flags().StringVarP(&f.ConfigFile, "config", "c", "", "")
	cmd.Flags().IntVar(&f.RoutingMark, "routing-mark", 0, "")
	cmd.Flags().BoolVar(&f.ReusePort, "reuse-port", false, "")
	cmd.Flags().DurationVar(&f.KeepAlive, "keep-alive", 0, "")
	return cmd
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"port":"9000","idle_timeout":"250ms","address":"10.0.0.1","verbose":true}`), 0o644))

	f := new(flags)
	cmd := newTestCommand(f)
	require.NoError(t, cmd.Flags().Parse([]string{"--config", path, "--address", "192.0.2.1"}))
	require.NoError(t, loadConfig(cmd, f))

	require.Equal(t, "9000", f.Port)
	require.Equal(t, 250*time.Millisecond, f.IdleTimeout)
	require.Equal(t, "192.0.2.1", f.Address, "command line wins over the file")
	require.True(t, f.Verbose)
}

func TestLoadConfigSocketOptions(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"routing_mark":255,"reuse_port":true,"keep_alive":"45s"}`), 0o644))

	f := new(flags)
	cmd := newTestCommand(f)
	require.NoError(t, cmd.Flags().Parse([]string{"--config", path, "--routing-mark", "7"}))
	require.NoError(t, loadConfig(cmd, f))

	require.Equal(t, 7, f.RoutingMark)
	require.True(t, f.ReusePort)
	require.Equal(t, 45*time.Second, f.KeepAlive)
}

func TestControlsWithoutOptions(t *testing.T) {
	t.Parallel()
	listenerControl, connectControl := controls(&flags{})
	require.NotNil(t, listenerControl)
	require.Nil(t, connectControl)
}

func TestLoadConfigInvalid(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"idle_timeout":"soon"}`), 0o644))

	f := new(flags)
	cmd := newTestCommand(f)
	require.NoError(t, cmd.Flags().Parse([]string{"--config", path}))
	require.Error(t, loadConfig(cmd, f))
}
