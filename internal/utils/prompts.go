package utils

import (
	"embed"
	"fmt"
	"path"
)

//go:embed prompts/*.md
var promptFS embed.FS

// LoadPrompt returns the embedded template prompts/<name>.md.
func LoadPrompt(name string) (string, error) {
	b, err := promptFS.ReadFile(path.Join("prompts", name+".md"))
	if err != nil {
		return "", fmt.Errorf("prompt %q: %w", name, err)
	}
	return string(b), nil
}

// MustLoadPrompt panics when name is not embedded; agents only ask for
// prompts that ship with the binary.
func MustLoadPrompt(name string) string {
	s, err := LoadPrompt(name)
	if err != nil {
		panic(err)
	}
	return s
}
