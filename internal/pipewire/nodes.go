package pipewire

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"rcrd/internal/services"
)

// Node describes an audio sink or source advertised by the server.
type Node struct {
	Name        string
	Description string
	MediaClass  string
	Default     bool
}

// ListNodes returns all audio sink and source nodes from one introspection
// pass, with the current defaults flagged. Results are sorted by media class
// then name so repeated listings render stably.
func ListNodes(ctx context.Context, lister Lister) ([]Node, error) {
	raw, err := lister.Dump(ctx)
	if err != nil {
		return nil, services.Wrap(services.ErrResolution, "resolver", "list nodes", "", err)
	}

	var root []json.RawMessage
	if err := json.Unmarshal(raw, &root); err != nil {
		return nil, services.Wrap(services.ErrResolution, "resolver", "list nodes", "introspection tool returned invalid JSON", err)
	}

	defaults := defaultsFromDump(root)

	var nodes []Node
	for _, entry := range root {
		var obj nodeObject
		if err := json.Unmarshal(entry, &obj); err != nil {
			continue
		}
		if obj.Type != "PipeWire:Interface:Node" {
			continue
		}
		props := obj.Info.Props
		class := strings.TrimSpace(props.MediaClass)
		if class != "Audio/Sink" && class != "Audio/Source" {
			continue
		}
		name := strings.TrimSpace(props.NodeName)
		if name == "" {
			continue
		}
		nodes = append(nodes, Node{
			Name:        name,
			Description: strings.TrimSpace(props.NodeDescription),
			MediaClass:  class,
			Default:     name == defaults.Sink || name == defaults.Source,
		})
	}

	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].MediaClass != nodes[j].MediaClass {
			return nodes[i].MediaClass < nodes[j].MediaClass
		}
		return nodes[i].Name < nodes[j].Name
	})
	return nodes, nil
}

func defaultsFromDump(root []json.RawMessage) Defaults {
	var defaults Defaults
	for _, entry := range root {
		var obj metadataObject
		if err := json.Unmarshal(entry, &obj); err != nil {
			continue
		}
		if obj.Type != "PipeWire:Interface:Metadata" {
			continue
		}
		for _, item := range obj.items() {
			switch item.Key {
			case "default.audio.sink", "default.configured.audio.sink":
				if defaults.Sink == "" {
					defaults.Sink = extractName(item.Value)
				}
			case "default.audio.source", "default.configured.audio.source":
				if defaults.Source == "" {
					defaults.Source = extractName(item.Value)
				}
			}
		}
	}
	return defaults
}

type nodeObject struct {
	Type string `json:"type"`
	Info struct {
		Props struct {
			NodeName        string `json:"node.name"`
			NodeDescription string `json:"node.description"`
			MediaClass      string `json:"media.class"`
		} `json:"props"`
	} `json:"info"`
}
