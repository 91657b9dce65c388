package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

const starterDescriptor = `name: my-server
command: node
args: ["server.js"]
env: {}
readyPattern: "listening"
`

const starterSuite = `description: starter suite
tests:
  - it: lists available tools
    request:
      method: tools/list
    expect:
      response:
        result:
          tools: "match:type:array"
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Scaffold a starter descriptor and suite file",
	Long:  "Writes server.yaml and suite.yaml into the current directory, ready to edit.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return scaffold(".")
	},
}

func scaffold(dir string) error {
	files := map[string]string{
		"server.yaml": starterDescriptor,
		"suite.yaml":  starterSuite,
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists, refusing to overwrite", path)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		fmt.Printf("wrote %s\n", path)
	}
	return nil
}
