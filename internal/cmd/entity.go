package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/xonecas/annotator/internal/annotation"
	"github.com/xonecas/annotator/internal/config"
	"github.com/xonecas/annotator/internal/store"
)

// EntityCmd returns the `annotator entity` command group.
func EntityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entity",
		Short: "Manage tag highlight schemas",
	}
	cmd.AddCommand(entityAddCmd())
	cmd.AddCommand(entityListCmd())
	cmd.AddCommand(entityRemoveCmd())
	return cmd
}

func entityAddCmd() *cobra.Command {
	var ec config.EntityConfig
	cmd := &cobra.Command{
		Use:   "add <tag>",
		Short: "Add or replace the highlight schema of a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ec.ID = args[0]
			if err := (&config.Config{Entities: []config.EntityConfig{ec}}).Validate(); err != nil {
				return err
			}
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			err = e.st.PutEntity(store.Entity{
				ID:      ec.ID,
				Label:   ec.Label,
				Mode:    annotation.ParseMode(ec.Mode),
				Color:   ec.Color,
				Opacity: ec.Opacity,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved entity %s\n", ec.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&ec.Label, "label", "", "human readable name")
	cmd.Flags().StringVar(&ec.Mode, "mode", "", "background, underline or focus")
	cmd.Flags().StringVar(&ec.Color, "color", "", "highlight color, e.g. #ffd700")
	cmd.Flags().Float64Var(&ec.Opacity, "opacity", 0, "fill opacity between 0 and 1")
	return cmd
}

// entityYAML is the YAML shape of `annotator entity list`.
type entityYAML struct {
	ID      string  `yaml:"id"`
	Label   string  `yaml:"label,omitempty"`
	Mode    string  `yaml:"mode"`
	Color   string  `yaml:"color,omitempty"`
	Opacity float64 `yaml:"opacity,omitempty"`
}

func entityListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tag highlight schemas as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			ents, err := e.st.Entities()
			if err != nil {
				return fmt.Errorf("list entities: %w", err)
			}
			out := make([]entityYAML, 0, len(ents))
			for _, en := range ents {
				out = append(out, entityYAML{
					ID:      en.ID,
					Label:   en.Label,
					Mode:    string(en.Mode),
					Color:   en.Color,
					Opacity: en.Opacity,
				})
			}
			b, err := yaml.Marshal(out)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		},
	}
}

func entityRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <tag>",
		Short: "Delete the highlight schema of a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			if err := e.st.DeleteEntity(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted entity %s\n", args[0])
			return nil
		},
	}
}
