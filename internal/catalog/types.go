package catalog

import "gopkg.in/yaml.v3"

// Stage is the pipeline step a model is recommended for.
type Stage string

const (
	StageContent  Stage = "content"
	StageHumanize Stage = "humanize"
	StagePersona  Stage = "persona"
	StageAny      Stage = "any"
)

// Model is one selectable model.
type Model struct {
	// Model identifier within its provider (set during YAML unmarshaling)
	ID string `yaml:"-" json:"id"`

	// Provider and Ref are filled by the registry; Ref is the value accepted by DEFAULT_MODEL
	Provider string `yaml:"-" json:"provider"`
	Ref      string `yaml:"-" json:"ref"`

	DisplayName string `yaml:"display_name" json:"display_name"`
	Description string `yaml:"description" json:"description"`
	Stage       Stage  `yaml:"stage" json:"stage"`
	Recommended bool   `yaml:"recommended" json:"recommended"`

	// Limits
	ContextWindow int `yaml:"context_window" json:"context_window"`
	MaxOutput     int `yaml:"max_output" json:"max_output"`
}

// ProviderModels is the content of one provider file.
type ProviderModels struct {
	Provider string  `yaml:"provider" json:"provider"`
	Models   []Model `yaml:"-" json:"models"` // Ordered slice, populated by custom unmarshaler
}

// UnmarshalYAML keeps the model order of the YAML file.
func (p *ProviderModels) UnmarshalYAML(node *yaml.Node) error {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == "provider" {
			p.Provider = node.Content[i+1].Value
			break
		}
	}

	type modelsOnly struct {
		Models map[string]Model `yaml:"models"`
	}
	var m modelsOnly
	if err := node.Decode(&m); err != nil {
		return err
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value != "models" {
			continue
		}
		modelsNode := node.Content[i+1]
		// key, value, key, value...
		for j := 0; j+1 < len(modelsNode.Content); j += 2 {
			modelID := modelsNode.Content[j].Value
			if model, ok := m.Models[modelID]; ok {
				model.ID = modelID
				p.Models = append(p.Models, model)
			}
		}
		break
	}

	return nil
}
