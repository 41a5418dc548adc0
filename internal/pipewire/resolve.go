package pipewire

import (
	"context"
	"encoding/json"
	"strings"

	"rcrd/internal/services"
)

// MonitorSuffix is the fixed suffix PipeWire appends to a sink name to form
// its monitor node.
const MonitorSuffix = ".monitor"

// Role tags an endpoint with its position in the recording graph.
type Role string

const (
	RoleSinkMonitor Role = "sink-monitor"
	RoleSource      Role = "source"
)

// Endpoint is a resolved audio-server node name plus its role.
type Endpoint struct {
	Name string
	Role Role
}

// Endpoints holds the resolved capture endpoints for one session. Source is
// nil when the microphone is excluded.
type Endpoints struct {
	Monitor Endpoint
	Source  *Endpoint
}

// Defaults reports the default sink and source names the audio server
// currently advertises. Either may be empty.
type Defaults struct {
	Sink   string
	Source string
}

// ResolveOptions carries user overrides into endpoint resolution.
type ResolveOptions struct {
	Sink       string
	Source     string
	IncludeMic bool
}

// MonitorName derives the monitor node name from a sink name.
func MonitorName(sink string) string {
	return sink + MonitorSuffix
}

// Resolve determines the monitor and source endpoints for a session.
// Explicit overrides bypass introspection for the endpoint they name; a
// missing default is a fatal precondition, never guessed around.
func Resolve(ctx context.Context, lister Lister, opts ResolveOptions) (Endpoints, error) {
	sink := strings.TrimSpace(opts.Sink)
	source := strings.TrimSpace(opts.Source)

	needDefaults := sink == "" || (opts.IncludeMic && source == "")
	var defaults Defaults
	if needDefaults {
		var err error
		defaults, err = DetectDefaults(ctx, lister)
		if err != nil {
			return Endpoints{}, err
		}
	}

	if sink == "" {
		sink = defaults.Sink
	}
	if sink == "" {
		return Endpoints{}, services.Wrap(services.ErrResolution, "resolver", "select sink", "no default sink reported", nil)
	}

	resolved := Endpoints{
		Monitor: Endpoint{Name: MonitorName(sink), Role: RoleSinkMonitor},
	}

	if opts.IncludeMic {
		if source == "" {
			source = defaults.Source
		}
		if source == "" {
			return Endpoints{}, services.Wrap(services.ErrResolution, "resolver", "select source", "no default source reported", nil)
		}
		resolved.Source = &Endpoint{Name: source, Role: RoleSource}
	}

	return resolved, nil
}

// DetectDefaults queries the introspection tool and extracts the default
// sink and source names from the metadata objects.
func DetectDefaults(ctx context.Context, lister Lister) (Defaults, error) {
	raw, err := lister.Dump(ctx)
	if err != nil {
		return Defaults{}, services.Wrap(services.ErrResolution, "resolver", "introspect", "", err)
	}

	var root []json.RawMessage
	if err := json.Unmarshal(raw, &root); err != nil {
		return Defaults{}, services.Wrap(services.ErrResolution, "resolver", "introspect", "introspection tool returned invalid JSON", err)
	}
	return defaultsFromDump(root), nil
}

type metadataObject struct {
	Type     string         `json:"type"`
	Metadata []metadataItem `json:"metadata"`
	Info     struct {
		Items []metadataItem `json:"items"`
	} `json:"info"`
}

// items tolerates both dump layouts: newer pw-dump nests metadata under
// info.items, older builds expose a top-level metadata array.
func (o metadataObject) items() []metadataItem {
	if len(o.Metadata) > 0 {
		return o.Metadata
	}
	return o.Info.Items
}

type metadataItem struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

func extractName(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var direct string
	if err := json.Unmarshal(raw, &direct); err == nil {
		return direct
	}
	var obj struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		if obj.Name != "" {
			return obj.Name
		}
		return obj.Value
	}
	return ""
}
