// Package config loads battlewatch's TOML configuration.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/battlewatch/config.toml (default)
//  3. If the config file doesn't exist, fall back to hardcoded defaults
//  4. If the file exists but fields are missing/empty, use defaults
//
// # Default Values
//
//   - Log glob: ~/Windower/logs/*.log
//   - Watchlist: ~/.config/battlewatch/watchlist.txt
//   - Poll interval: 100ms (backoff 2s while no log file matches)
//   - Combat timeout: 20s
//   - Alert reset: 4s
//   - Terminal bell: on, no external audio command
//   - Diagnostic log: ~/.local/state/battlewatch/battlewatch.log at info level
//
// # TOML Format
//
//	log_glob = "~/Windower/logs/*.log"
//	watchlist = "~/.config/battlewatch/watchlist.yaml"
//	poll_interval = "100ms"
//	backoff_interval = "2s"
//	combat_timeout = "20s"
//	alert_reset = "4s"
//	audio_command = ["paplay", "/usr/share/sounds/freedesktop/stereo/alarm-clock-elapsed.oga"]
//	bell = true
//	log_file = "~/.local/state/battlewatch/battlewatch.log"
//	log_level = "info"
//
// Every field is optional. Durations use time.ParseDuration syntax and must
// be positive. Paths get tilde expansion and are made absolute; glob
// metacharacters in log_glob are kept as-is.
//
// # Error Handling
//
// Load returns errors for:
//   - Path expansion failures (e.g., cannot determine home directory)
//   - File read errors (except os.ErrNotExist, which triggers defaults)
//   - TOML parsing errors
//   - Durations that do not parse or are not positive
//
// Missing config files are NOT an error. battlewatch works out of the box
// against a default Windower install.
package config
