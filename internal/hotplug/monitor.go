// Package hotplug watches udev netlink events for sound-card removal while
// a recording runs. A yanked USB interface silently turns the capture into
// dead air; surfacing the removal in the status view is the best the
// recorder can do without terminating the session.
package hotplug

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/pilebones/go-udev/netlink"

	"rcrd/internal/logging"
)

// Monitor listens for udev sound-subsystem events and emits advisory
// warnings. It never fails a session: when the netlink socket cannot be
// opened the monitor stays inert.
type Monitor struct {
	logger   *slog.Logger
	warnings chan string

	mu      sync.Mutex
	conn    *netlink.UEventConn
	quit    chan struct{}
	running bool
}

// NewMonitor creates a sound-device monitor.
func NewMonitor(logger *slog.Logger) *Monitor {
	return &Monitor{
		logger:   logging.NewComponentLogger(logger, "hotplug-monitor"),
		warnings: make(chan string, 8),
	}
}

// Warnings delivers one line per detected device removal.
func (m *Monitor) Warnings() <-chan string {
	if m == nil {
		return nil
	}
	return m.warnings
}

// Start begins listening for udev netlink events. Connection failures are
// logged and swallowed; recording proceeds without hotplug warnings.
func (m *Monitor) Start(ctx context.Context) error {
	if m == nil {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return nil
	}

	conn := new(netlink.UEventConn)
	if err := conn.Connect(netlink.UdevEvent); err != nil {
		logging.WarnWithContext(m.logger, "failed to connect to netlink socket", "netlink_connect_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "ensure the process may open netlink sockets"),
			logging.String(logging.FieldImpact, "device removal warnings unavailable"),
		)
		return nil
	}

	m.conn = conn
	m.quit = make(chan struct{})
	m.running = true

	quit := m.quit
	go m.monitorLoop(ctx, quit)

	m.logger.Info("hotplug monitor started",
		logging.String(logging.FieldEventType, "hotplug_monitor_started"),
	)
	return nil
}

// Stop shuts down the monitor.
func (m *Monitor) Stop() {
	if m == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	if m.quit != nil {
		close(m.quit)
		m.quit = nil
	}
	if m.conn != nil {
		_ = m.conn.Close()
		m.conn = nil
	}
	m.running = false

	m.logger.Info("hotplug monitor stopped",
		logging.String(logging.FieldEventType, "hotplug_monitor_stopped"),
	)
}

// Running reports whether the monitor is active.
func (m *Monitor) Running() bool {
	if m == nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *Monitor) monitorLoop(ctx context.Context, quit <-chan struct{}) {
	queue := make(chan netlink.UEvent)
	errs := make(chan error)

	m.mu.Lock()
	conn := m.conn
	m.mu.Unlock()
	if conn == nil {
		return
	}

	monitorQuit := conn.Monitor(queue, errs, soundRemovalMatcher())

	for {
		select {
		case <-ctx.Done():
			close(monitorQuit)
			return
		case <-quit:
			close(monitorQuit)
			return
		case uevent := <-queue:
			m.handleEvent(uevent)
		case err := <-errs:
			logging.WarnWithContext(m.logger, "netlink monitor error", "hotplug_monitor_error",
				logging.Error(err),
				logging.String(logging.FieldImpact, "device removal warnings may be missed"),
			)
		}
	}
}

// soundRemovalMatcher matches SUBSYSTEM=sound ACTION=remove events.
func soundRemovalMatcher() netlink.Matcher {
	action := "remove"
	rules := &netlink.RuleDefinitions{}
	rules.AddRule(netlink.RuleDefinition{
		Action: &action,
		Env: map[string]string{
			"SUBSYSTEM": "sound",
		},
	})
	return rules
}

func (m *Monitor) handleEvent(uevent netlink.UEvent) {
	name := deviceLabel(uevent)
	if name == "" {
		return
	}

	m.logger.Info("audio device removed",
		logging.String(logging.FieldEventType, "audio_device_removed"),
		logging.String("device", name),
	)

	select {
	case m.warnings <- "audio device removed: " + name:
	default:
		// Session loop not draining; one dropped warning is acceptable.
	}
}

// deviceLabel picks a readable identifier from the uevent environment.
func deviceLabel(uevent netlink.UEvent) string {
	if devname := uevent.Env["DEVNAME"]; devname != "" {
		return devname
	}
	devpath := uevent.Env["DEVPATH"]
	if devpath == "" {
		return ""
	}
	parts := strings.Split(devpath, "/")
	last := parts[len(parts)-1]
	// Card-level nodes (card0, controlC0) are worth reporting; per-stream
	// pcm nodes would duplicate them.
	if strings.HasPrefix(last, "pcm") {
		return ""
	}
	return last
}
