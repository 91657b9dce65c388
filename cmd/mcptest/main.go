// Command mcptest drives an MCP server over stdio (or an attached Docker
// container) through declarative YAML/JSONC test suites.
package main

func main() {
	Execute()
}
