package sidecar

import "context"

// Typed command wrappers - thin, mechanical forwarding to Call. Each builds
// the params object for one worker method and returns the raw result value.

// StartBot starts the bot for a server. The url overrides the server's
// configured address when non-nil.
func (s *Supervisor) StartBot(ctx context.Context, serverKey string, url *string) (any, error) {
	params := map[string]any{"serverKey": serverKey}
	if url != nil {
		params["url"] = *url
	}

	return s.Call(ctx, "startBot", params)
}

// StopBot stops the bot for a server.
func (s *Supervisor) StopBot(ctx context.Context, serverKey string) (any, error) {
	return s.Call(ctx, "stopBot", map[string]any{"serverKey": serverKey})
}

// PauseBot pauses the bot for a server.
func (s *Supervisor) PauseBot(ctx context.Context, serverKey string) (any, error) {
	return s.Call(ctx, "pauseBot", map[string]any{"serverKey": serverKey})
}

// EmergencyStop halts activity immediately. With a nil serverKey every
// server is stopped.
func (s *Supervisor) EmergencyStop(ctx context.Context, serverKey, reason *string) (any, error) {
	return s.Call(ctx, "emergencyStop", map[string]any{
		"serverKey": serverKey,
		"reason":    reason,
	})
}

// GetStatus reports the bot status for a server.
func (s *Supervisor) GetStatus(ctx context.Context, serverKey string) (any, error) {
	return s.Call(ctx, "getStatus", map[string]any{"serverKey": serverKey})
}

// GetServers lists the configured servers.
func (s *Supervisor) GetServers(ctx context.Context) (any, error) {
	return s.Call(ctx, "getServers", map[string]any{})
}

// SaveConfig stores configuration, per server when serverKey is non-nil.
func (s *Supervisor) SaveConfig(ctx context.Context, serverKey *string, cfg any) (any, error) {
	return s.Call(ctx, "saveConfig", map[string]any{
		"serverKey": serverKey,
		"config":    cfg,
	})
}

// GetConfig fetches configuration, per server when serverKey is non-nil.
func (s *Supervisor) GetConfig(ctx context.Context, serverKey *string) (any, error) {
	return s.Call(ctx, "getConfig", map[string]any{"serverKey": serverKey})
}

// GetLogs fetches recent log entries, optionally filtered by level and
// capped at limit.
func (s *Supervisor) GetLogs(ctx context.Context, level *string, limit *int) (any, error) {
	return s.Call(ctx, "getLogs", map[string]any{
		"level": level,
		"limit": limit,
	})
}

// ClearLogs discards the worker's stored log entries.
func (s *Supervisor) ClearLogs(ctx context.Context) (any, error) {
	return s.Call(ctx, "clearLogs", map[string]any{})
}

// GetQueue reports the task queue for a server.
func (s *Supervisor) GetQueue(ctx context.Context, serverKey string) (any, error) {
	return s.Call(ctx, "getQueue", map[string]any{"serverKey": serverKey})
}

// ClearQueue empties the task queue for a server.
func (s *Supervisor) ClearQueue(ctx context.Context, serverKey string) (any, error) {
	return s.Call(ctx, "clearQueue", map[string]any{"serverKey": serverKey})
}

// GetStrategy reports the active strategy for a server.
func (s *Supervisor) GetStrategy(ctx context.Context, serverKey string) (any, error) {
	return s.Call(ctx, "getStrategy", map[string]any{"serverKey": serverKey})
}

// RequestScan asks the worker to scan a server's state.
func (s *Supervisor) RequestScan(ctx context.Context, serverKey string) (any, error) {
	return s.Call(ctx, "requestScan", map[string]any{"serverKey": serverKey})
}

// ToggleBrowser switches the worker's browser between headless and headed.
func (s *Supervisor) ToggleBrowser(ctx context.Context, headless *bool) (any, error) {
	return s.Call(ctx, "toggleBrowser", map[string]any{"headless": headless})
}

// GetBrowserStatus reports the worker's browser state.
func (s *Supervisor) GetBrowserStatus(ctx context.Context) (any, error) {
	return s.Call(ctx, "getBrowserStatus", map[string]any{})
}

// OpenPage opens a page for a server. The url overrides the server's
// configured address when non-nil.
func (s *Supervisor) OpenPage(ctx context.Context, serverKey string, url *string) (any, error) {
	params := map[string]any{"serverKey": serverKey}
	if url != nil {
		params["url"] = *url
	}

	return s.Call(ctx, "openPage", params)
}

// ClosePage closes the page for a server.
func (s *Supervisor) ClosePage(ctx context.Context, serverKey string) (any, error) {
	return s.Call(ctx, "closePage", map[string]any{"serverKey": serverKey})
}

// SetCookies installs session cookies for a server.
func (s *Supervisor) SetCookies(ctx context.Context, serverKey string, cookies any) (any, error) {
	return s.Call(ctx, "setCookies", map[string]any{
		"serverKey": serverKey,
		"cookies":   cookies,
	})
}

// ImportChromeCookies imports cookies from a local Chrome profile,
// optionally filtered to hosts matching hostLike.
func (s *Supervisor) ImportChromeCookies(ctx context.Context, hostLike *string) (any, error) {
	return s.Call(ctx, "importChromeCookies", map[string]any{"hostLike": hostLike})
}
