package hotplug

import (
	"context"
	"testing"

	"github.com/pilebones/go-udev/netlink"

	"rcrd/internal/logging"
)

func TestNilMonitorIsSafe(t *testing.T) {
	var m *Monitor
	if m.Running() {
		t.Error("nil monitor reports running")
	}
	m.Stop()
	if m.Warnings() != nil {
		t.Error("nil monitor should have nil warnings channel")
	}
	if err := m.Start(context.Background()); err != nil {
		t.Errorf("Start on nil monitor: %v", err)
	}
}

func TestUnstartedMonitor(t *testing.T) {
	m := NewMonitor(logging.NewNop())
	if m.Running() {
		t.Error("unstarted monitor reports running")
	}
	m.Stop()
	if m.Running() {
		t.Error("monitor running after Stop")
	}
}

func TestHandleEventEmitsWarning(t *testing.T) {
	m := NewMonitor(logging.NewNop())

	m.handleEvent(netlink.UEvent{
		Action: netlink.REMOVE,
		Env: map[string]string{
			"SUBSYSTEM": "sound",
			"DEVPATH":   "/devices/pci0000:00/usb1/1-2/sound/card1",
		},
	})

	select {
	case warning := <-m.Warnings():
		if warning != "audio device removed: card1" {
			t.Fatalf("warning = %q", warning)
		}
	default:
		t.Fatal("no warning emitted")
	}
}

func TestHandleEventIgnoresPCMNodes(t *testing.T) {
	m := NewMonitor(logging.NewNop())

	m.handleEvent(netlink.UEvent{
		Action: netlink.REMOVE,
		Env: map[string]string{
			"SUBSYSTEM": "sound",
			"DEVPATH":   "/devices/pci0000:00/usb1/1-2/sound/card1/pcmC1D0c",
		},
	})

	select {
	case warning := <-m.Warnings():
		t.Fatalf("unexpected warning %q", warning)
	default:
	}
}

func TestHandleEventPrefersDevname(t *testing.T) {
	m := NewMonitor(logging.NewNop())

	m.handleEvent(netlink.UEvent{
		Action: netlink.REMOVE,
		Env: map[string]string{
			"SUBSYSTEM": "sound",
			"DEVNAME":   "/dev/snd/controlC1",
			"DEVPATH":   "/devices/pci0000:00/usb1/1-2/sound/card1/controlC1",
		},
	})

	select {
	case warning := <-m.Warnings():
		if warning != "audio device removed: /dev/snd/controlC1" {
			t.Fatalf("warning = %q", warning)
		}
	default:
		t.Fatal("no warning emitted")
	}
}
