// Command schema-gen writes the versioned JSON Schemas to schema/.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/smykla-skalski/realms-launcher/internal/schema"
)

func main() {
	outDir := "schema"
	if len(os.Args) > 1 {
		outDir = os.Args[1]
	}

	const filePerms = 0o644

	for _, kind := range schema.Kinds() {
		data, err := schema.GenerateJSON(kind, true)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}

		outPath := filepath.Clean(filepath.Join(outDir, schema.Filename(kind)))

		//nolint:gosec // dev tool, outDir from CLI arg
		if err := os.WriteFile(outPath, data, filePerms); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}

		fmt.Println(outPath)
	}
}
