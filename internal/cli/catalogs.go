package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// catalogsCommand creates the catalog listing command.
func (c *CLI) catalogsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "catalogs",
		Short: "List the configured survey catalogs",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := c.loadRegistry()
			if err != nil {
				return err
			}
			for _, def := range registry.All() {
				fmt.Println(StyleTitle.Render(def.ID))
				printKeyValue("name", def.Name)
				printKeyValue("table", def.Table)
				printKeyValue("columns", fmt.Sprintf("%s / %s", def.RACol(), def.DecCol()))
				if def.Description != "" {
					printDetail("%s", def.Description)
				}
			}
			return nil
		},
	}
}
