package crew

import (
	"embed"
	"fmt"
	"io/fs"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	AgentsFile = "agents.yaml"
	TasksFile  = "tasks.yaml"
)

//go:embed config/*.yaml
var defaultConfig embed.FS

var validate = validator.New(validator.WithRequiredStructEnabled())

// DefaultSpecs returns the embedded research crew definitions
func DefaultSpecs() (*Specs, error) {
	sub, err := fs.Sub(defaultConfig, "config")
	if err != nil {
		return nil, err
	}
	return LoadSpecs(sub)
}

// LoadSpecsFromDir reads agents.yaml and tasks.yaml from dir
func LoadSpecsFromDir(dir string) (*Specs, error) {
	return LoadSpecs(os.DirFS(dir))
}

// LoadSpecs reads agents.yaml and tasks.yaml from fsys.
// Every record is validated and every task must reference a declared agent.
func LoadSpecs(fsys fs.FS) (*Specs, error) {
	ret := new(Specs)
	var err error
	if ret.agentKeys, ret.agents, err = loadOrdered[AgentSpec](fsys, AgentsFile); err != nil {
		return nil, err
	}
	if ret.taskKeys, ret.tasks, err = loadOrdered[TaskSpec](fsys, TasksFile); err != nil {
		return nil, err
	}
	for _, key := range ret.taskKeys {
		agent := ret.tasks[key].Agent
		if _, ok := ret.agents[agent]; !ok {
			return nil, fmt.Errorf("%s: task %s: %w %s", TasksFile, key, ErrUnknownAgent, agent)
		}
	}
	return ret, nil
}

// loadOrdered decodes a top level yaml mapping keeping the key order
func loadOrdered[T any](fsys fs.FS, name string) ([]string, map[string]T, error) {
	bs, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, nil, err
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(bs, &doc); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", name, err)
	}
	if len(doc.Content) == 0 {
		return nil, nil, fmt.Errorf("%s: empty document", name)
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, nil, fmt.Errorf("%s: line %d: expect a mapping of names to definitions", name, root.Line)
	}
	keys := make([]string, 0, len(root.Content)/2)
	records := make(map[string]T, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		keyNode, valueNode := root.Content[i], root.Content[i+1]
		key := keyNode.Value
		if _, dup := records[key]; dup {
			return nil, nil, fmt.Errorf("%s: line %d: duplicated key %s", name, keyNode.Line, key)
		}
		var v T
		if err := valueNode.Decode(&v); err != nil {
			return nil, nil, fmt.Errorf("%s: %s: %w", name, key, err)
		}
		if err := validate.Struct(v); err != nil {
			return nil, nil, fmt.Errorf("%s: %s: %w", name, key, err)
		}
		keys = append(keys, key)
		records[key] = v
	}
	return keys, records, nil
}
