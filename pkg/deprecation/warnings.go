package deprecation

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// WarningConfig contains user preferences for notices.
type WarningConfig struct {
	// Enabled toggles all notices.
	Enabled bool `yaml:"enabled"`
	// ShowInCI shows notices when a CI environment is detected.
	ShowInCI bool `yaml:"show_in_ci"`
	// InfoCooldown is the minimum delay between two info notices for the
	// same command.
	InfoCooldown time.Duration `yaml:"info_cooldown"`
}

// WarningTracking is persisted between runs.
type WarningTracking struct {
	LastShown  map[string]time.Time `yaml:"last_shown"`
	Suppressed []string             `yaml:"suppressed,omitempty"`
}

// WarningManager decides which notices to show and remembers when they were
// shown.
type WarningManager struct {
	mu           sync.Mutex
	config       *WarningConfig
	fs           afero.Fs
	trackingPath string
	tracking     *WarningTracking
	now          func() time.Time
}

// NewWarningManager loads tracking data from the XDG data directory of
// appName on fs. A nil fs uses the OS filesystem.
func NewWarningManager(appName string, fs afero.Fs) (*WarningManager, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	wm := &WarningManager{
		config: &WarningConfig{
			Enabled:      true,
			InfoCooldown: 7 * 24 * time.Hour,
		},
		fs:           fs,
		trackingPath: filepath.Join(xdg.DataHome, appName, "deprecation-tracking.yaml"),
		tracking:     &WarningTracking{LastShown: make(map[string]time.Time)},
		now:          time.Now,
	}

	data, err := afero.ReadFile(fs, wm.trackingPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, wm.tracking); err != nil {
			return nil, fmt.Errorf("failed to parse tracking data: %w", err)
		}
		if wm.tracking.LastShown == nil {
			wm.tracking.LastShown = make(map[string]time.Time)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("failed to read tracking data: %w", err)
	}
	return wm, nil
}

// SetConfig replaces the preferences.
func (wm *WarningManager) SetConfig(config *WarningConfig) {
	wm.mu.Lock()
	defer wm.mu.Unlock()
	wm.config = config
}

// ShouldShow reports whether n should be shown now.
func (wm *WarningManager) ShouldShow(n *Notice) bool {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	if n == nil || !wm.config.Enabled {
		return false
	}
	if isCI() && !wm.config.ShowInCI {
		return false
	}
	if slices.Contains(wm.tracking.Suppressed, n.Command) {
		return false
	}
	if n.Level == WarningLevelInfo {
		last, ok := wm.tracking.LastShown[n.Command]
		return !ok || wm.now().Sub(last) >= wm.config.InfoCooldown
	}
	return true
}

// MarkShown records that n was shown and persists the tracking data.
func (wm *WarningManager) MarkShown(n *Notice) error {
	wm.mu.Lock()
	defer wm.mu.Unlock()
	wm.tracking.LastShown[n.Command] = wm.now()
	return wm.save()
}

// Notify writes every notice that should be shown to w and marks it shown.
func (wm *WarningManager) Notify(w io.Writer, notices ...*Notice) error {
	for _, n := range notices {
		if !wm.ShouldShow(n) {
			continue
		}
		if _, err := fmt.Fprintln(w, Styled(n)); err != nil {
			return err
		}
		if err := wm.MarkShown(n); err != nil {
			return err
		}
	}
	return nil
}

// Suppress silences notices for a command.
func (wm *WarningManager) Suppress(name string) error {
	wm.mu.Lock()
	defer wm.mu.Unlock()
	if !slices.Contains(wm.tracking.Suppressed, name) {
		wm.tracking.Suppressed = append(wm.tracking.Suppressed, name)
	}
	return wm.save()
}

// Unsuppress re-enables notices for a command.
func (wm *WarningManager) Unsuppress(name string) error {
	wm.mu.Lock()
	defer wm.mu.Unlock()
	wm.tracking.Suppressed = slices.DeleteFunc(wm.tracking.Suppressed, func(s string) bool { return s == name })
	return wm.save()
}

// save must be called with mu held.
func (wm *WarningManager) save() error {
	if err := wm.fs.MkdirAll(filepath.Dir(wm.trackingPath), 0755); err != nil {
		return fmt.Errorf("failed to create tracking directory: %w", err)
	}
	data, err := yaml.Marshal(wm.tracking)
	if err != nil {
		return fmt.Errorf("failed to marshal tracking data: %w", err)
	}
	if err := afero.WriteFile(wm.fs, wm.trackingPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write tracking data: %w", err)
	}
	return nil
}

// isCI checks whether running in a CI environment.
func isCI() bool {
	for _, v := range []string{"CI", "CONTINUOUS_INTEGRATION", "GITHUB_ACTIONS", "GITLAB_CI", "BUILDKITE", "JENKINS_URL"} {
		if os.Getenv(v) != "" {
			return true
		}
	}
	return false
}
