package sidecar

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// issue runs one command wrapper and returns the request line it produced.
// Replies are irrelevant here, so calls are left to time out quickly.
func issue(t *testing.T, call func(s *Supervisor) error) map[string]any {
	t.Helper()

	s, transport := startedSupervisor(t, WithCallTimeout(10*time.Millisecond))
	defer shutdownNow(s)

	err := call(s)
	require.ErrorIs(t, err, ErrRequestTimeout)

	reqs := transport.sentRequests(t)
	require.Len(t, reqs, 1)

	return reqs[0]
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func boolPtr(b bool) *bool { return &b }

func TestStartBot_WithoutURL(t *testing.T) {
	req := issue(t, func(s *Supervisor) error {
		_, err := s.StartBot(context.Background(), "srv-a", nil)

		return err
	})

	require.Equal(t, "startBot", req["method"])
	require.Equal(t, map[string]any{"serverKey": "srv-a"}, req["params"])
}

func TestStartBot_WithURL(t *testing.T) {
	req := issue(t, func(s *Supervisor) error {
		_, err := s.StartBot(context.Background(), "srv-a", strPtr("https://ts1.example"))

		return err
	})

	require.Equal(t, map[string]any{
		"serverKey": "srv-a",
		"url":       "https://ts1.example",
	}, req["params"])
}

func TestEmergencyStop_NullableParams(t *testing.T) {
	req := issue(t, func(s *Supervisor) error {
		_, err := s.EmergencyStop(context.Background(), nil, nil)

		return err
	})

	// Both fields are sent, as nulls, matching the worker's contract.
	require.Equal(t, "emergencyStop", req["method"])
	require.Equal(t, map[string]any{"serverKey": nil, "reason": nil}, req["params"])
}

func TestGetLogs_Params(t *testing.T) {
	req := issue(t, func(s *Supervisor) error {
		_, err := s.GetLogs(context.Background(), strPtr("error"), intPtr(50))

		return err
	})

	require.Equal(t, "getLogs", req["method"])
	require.Equal(t, map[string]any{"level": "error", "limit": float64(50)}, req["params"])
}

func TestToggleBrowser_Params(t *testing.T) {
	req := issue(t, func(s *Supervisor) error {
		_, err := s.ToggleBrowser(context.Background(), boolPtr(true))

		return err
	})

	require.Equal(t, "toggleBrowser", req["method"])
	require.Equal(t, map[string]any{"headless": true}, req["params"])
}

func TestSaveConfig_Params(t *testing.T) {
	req := issue(t, func(s *Supervisor) error {
		_, err := s.SaveConfig(context.Background(), strPtr("srv-a"), map[string]any{"speed": float64(2)})

		return err
	})

	require.Equal(t, "saveConfig", req["method"])
	require.Equal(t, map[string]any{
		"serverKey": "srv-a",
		"config":    map[string]any{"speed": float64(2)},
	}, req["params"])
}

func TestSimpleServerKeyCommands(t *testing.T) {
	cases := []struct {
		method string
		call   func(ctx context.Context, s *Supervisor) error
	}{
		{"stopBot", func(ctx context.Context, s *Supervisor) error {
			_, err := s.StopBot(ctx, "srv-a")

			return err
		}},
		{"pauseBot", func(ctx context.Context, s *Supervisor) error {
			_, err := s.PauseBot(ctx, "srv-a")

			return err
		}},
		{"getStatus", func(ctx context.Context, s *Supervisor) error {
			_, err := s.GetStatus(ctx, "srv-a")

			return err
		}},
		{"getQueue", func(ctx context.Context, s *Supervisor) error {
			_, err := s.GetQueue(ctx, "srv-a")

			return err
		}},
		{"clearQueue", func(ctx context.Context, s *Supervisor) error {
			_, err := s.ClearQueue(ctx, "srv-a")

			return err
		}},
		{"getStrategy", func(ctx context.Context, s *Supervisor) error {
			_, err := s.GetStrategy(ctx, "srv-a")

			return err
		}},
		{"requestScan", func(ctx context.Context, s *Supervisor) error {
			_, err := s.RequestScan(ctx, "srv-a")

			return err
		}},
		{"closePage", func(ctx context.Context, s *Supervisor) error {
			_, err := s.ClosePage(ctx, "srv-a")

			return err
		}},
	}

	for _, tc := range cases {
		t.Run(tc.method, func(t *testing.T) {
			req := issue(t, func(s *Supervisor) error {
				return tc.call(context.Background(), s)
			})

			require.Equal(t, tc.method, req["method"])
			require.Equal(t, map[string]any{"serverKey": "srv-a"}, req["params"])
		})
	}
}

func TestEmptyParamCommands(t *testing.T) {
	cases := []struct {
		method string
		call   func(ctx context.Context, s *Supervisor) error
	}{
		{"getServers", func(ctx context.Context, s *Supervisor) error {
			_, err := s.GetServers(ctx)

			return err
		}},
		{"clearLogs", func(ctx context.Context, s *Supervisor) error {
			_, err := s.ClearLogs(ctx)

			return err
		}},
		{"getBrowserStatus", func(ctx context.Context, s *Supervisor) error {
			_, err := s.GetBrowserStatus(ctx)

			return err
		}},
	}

	for _, tc := range cases {
		t.Run(tc.method, func(t *testing.T) {
			req := issue(t, func(s *Supervisor) error {
				return tc.call(context.Background(), s)
			})

			require.Equal(t, tc.method, req["method"])
			require.Equal(t, map[string]any{}, req["params"])
		})
	}
}

func TestImportChromeCookies_Params(t *testing.T) {
	req := issue(t, func(s *Supervisor) error {
		_, err := s.ImportChromeCookies(context.Background(), strPtr("travian"))

		return err
	})

	require.Equal(t, "importChromeCookies", req["method"])
	require.Equal(t, map[string]any{"hostLike": "travian"}, req["params"])
}
