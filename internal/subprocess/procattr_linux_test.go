//go:build linux

package subprocess

import (
	"context"
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/botwright/sidecar/internal/config"
)

func TestStart_SetsParentDeathSignal(t *testing.T) {
	ctx := context.Background()
	transport := startTransport(t, ctx, &config.Options{WorkerPath: catPath(t)})

	defer func() { _ = transport.Close() }()

	require.NotNil(t, transport.cmd.SysProcAttr)
	require.Equal(t, syscall.SIGKILL, transport.cmd.SysProcAttr.Pdeathsig)
}
