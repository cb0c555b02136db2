package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smykla-skalski/realms-launcher/internal/schema"
)

var schemaCompact bool

var schemaCmd = &cobra.Command{
	Use:   "schema [config|metadata|record]",
	Short: "Print a JSON Schema",
	Long: `Print the JSON Schema of the launcher configuration, the release
metadata document or the install record. The default is config.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{string(schema.KindConfig), string(schema.KindMetadata), string(schema.KindRecord)},
	RunE:      runSchema,
}

func init() {
	rootCmd.AddCommand(schemaCmd)

	schemaCmd.Flags().BoolVar(&schemaCompact, "compact", false, "Print without indentation")
}

func runSchema(cmd *cobra.Command, args []string) error {
	kind := schema.KindConfig

	if len(args) == 1 {
		parsed, err := schema.ParseKind(args[0])
		if err != nil {
			return err
		}

		kind = parsed
	}

	data, err := schema.GenerateJSON(kind, !schemaCompact)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(data))

	return nil
}
