package cli

import (
	"bytes"
	_ "embed"
)

// default_config.yaml mirrors bootstrap.DefaultConfiguration so users can copy it as a starting point.
//
//go:embed default_config.yaml
var embeddedDefaultConfigurationContent []byte

// EmbeddedDefaultConfiguration returns a copy of the embedded defaults and their format.
func EmbeddedDefaultConfiguration() ([]byte, string) {
	return bytes.Clone(embeddedDefaultConfigurationContent), configurationTypeConstant
}
