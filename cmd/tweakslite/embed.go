package main

import _ "embed"

// embeddedConfig holds the YAML configuration embedded at build time.
// Packagers overwrite embed_config.yaml to ship distribution defaults, for
// example a different host command inside their sandbox.
//
//go:embed embed_config.yaml
var embeddedConfig []byte
