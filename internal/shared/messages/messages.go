package messages

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type MessageText struct {
	Title string `yaml:"title"`
	Body  string `yaml:"body"`
}

// Messages holds the user-facing notification texts.
type Messages struct {
	AccountsLinked MessageText `yaml:"accounts_linked"`
}

// Load reads the notifications YAML file.
func Load(path string) (*Messages, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read messages file: %w", err)
	}

	var m Messages
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse messages file: %w", err)
	}
	return &m, nil
}
