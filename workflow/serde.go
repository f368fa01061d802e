package workflow

import "gopkg.in/yaml.v3"

// DefinitionToYAML serializes a Definition to YAML, the authoring format
// for workflow files.
func DefinitionToYAML(d *Definition) ([]byte, error) {
	return yaml.Marshal(d)
}

// ParseDefinitionYAML decodes a workflow definition from YAML bytes.
func ParseDefinitionYAML(data []byte) (*Definition, error) {
	var d Definition
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	return &d, nil
}
