package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-specviz/pkg/orchestrator"
	"github.com/goliatone/go-specviz/pkg/render"
)

func newRenderCmd(flags *rootFlags) *cobra.Command {
	var (
		output     string
		preset     string
		themeName  string
		variant    string
		fragment   bool
		withDraft  bool
		rendererID string
	)
	cmd := &cobra.Command{
		Use:   "render <name>",
		Short: "Render a spec's form as static HTML",
		Long: `Renders the form for <name> once, without a server. The page is standalone
(stylesheet inlined) unless --fragment is given. A preset file can relabel,
hide or reorder fields before rendering.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(flags)
			if err != nil {
				return err
			}
			defer a.close()
			ctx := cmd.Context()

			orch := a.orch
			if preset != "" {
				raw, err := os.ReadFile(preset)
				if err != nil {
					return fmt.Errorf("read preset: %w", err)
				}
				transformer, err := orchestrator.NewPresetTransformer(raw)
				if err != nil {
					return err
				}
				if orch, err = a.orchestrator(orchestrator.WithSchemaTransformer(transformer)); err != nil {
					return err
				}
			}

			req := orchestrator.Request{
				Name:          args[0],
				Renderer:      rendererID,
				ThemeName:     firstNonEmpty(themeName, a.cfg.Theme.Name),
				ThemeVariant:  firstNonEmpty(variant, a.cfg.Theme.Variant),
				RenderOptions: render.RenderOptions{Standalone: !fragment},
			}
			if withDraft {
				store, err := a.openStore(ctx)
				if err != nil {
					return err
				}
				defer store.Close()
				value, ok, err := store.Load(ctx, args[0])
				if err != nil {
					return fmt.Errorf("load draft: %w", err)
				}
				if state, isMap := value.(map[string]any); ok && isMap {
					req.RenderOptions.Values = state
				}
			}

			out, err := orch.Generate(ctx, req)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), output, out)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of stdout")
	cmd.Flags().StringVar(&preset, "preset", "", "YAML/JSON preset applied to the form model before rendering")
	cmd.Flags().StringVar(&themeName, "theme", "", "theme name (overrides config)")
	cmd.Flags().StringVar(&variant, "variant", "", "theme variant (overrides config)")
	cmd.Flags().BoolVar(&fragment, "fragment", false, "emit the form markup only")
	cmd.Flags().BoolVar(&withDraft, "draft", false, "prefill the form from the saved draft")
	cmd.Flags().StringVar(&rendererID, "renderer", "vanilla", "renderer name")
	return cmd
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
