package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-specviz/pkg/preview"
	"github.com/goliatone/go-specviz/pkg/render"
	"github.com/goliatone/go-specviz/pkg/renderers/tui"
	"github.com/goliatone/go-specviz/pkg/validation"
)

func newFillCmd(flags *rootFlags) *cobra.Command {
	var (
		format string
		save   bool
		resume bool
		output string
	)
	cmd := &cobra.Command{
		Use:   "fill <name>",
		Short: "Fill a spec's form interactively in the terminal",
		Long: `Prompts for every visible field of <name> and prints the resulting
document. --resume seeds the prompts from the saved draft; --save writes the
result back to the draft store.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(flags)
			if err != nil {
				return err
			}
			defer a.close()
			return runFill(cmd, a, args[0], fillOptions{
				format: preview.ParseFormat(format),
				save:   save,
				resume: resume,
				output: output,
				driver: tui.NewSurveyDriver(),
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "output format: yaml or json")
	cmd.Flags().BoolVar(&save, "save", false, "save the result as the spec's draft")
	cmd.Flags().BoolVar(&resume, "resume", false, "start from the saved draft")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of stdout")
	return cmd
}

type fillOptions struct {
	format preview.Format
	save   bool
	resume bool
	output string
	driver tui.PromptDriver
}

func runFill(cmd *cobra.Command, a *app, name string, opts fillOptions) error {
	ctx := cmd.Context()
	spec, err := a.loader.Load(ctx, name)
	if err != nil {
		return err
	}
	form, err := a.orch.Form(ctx, spec)
	if err != nil {
		return err
	}

	renderOpts := render.RenderOptions{}
	if opts.resume || opts.save {
		store, err := a.openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()
		if opts.resume {
			value, ok, err := store.Load(ctx, spec.Name)
			if err != nil {
				return fmt.Errorf("load draft: %w", err)
			}
			if state, isMap := value.(map[string]any); ok && isMap {
				renderOpts.Values = state
			}
		}
		defer func() {
			if !opts.save || renderOpts.Values == nil {
				return
			}
			if err := store.Save(ctx, spec.Name, renderOpts.Values); err != nil {
				a.log.Error("save draft", "spec", spec.Name, "error", err)
				return
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Draft saved for %s\n", spec.Name)
		}()
	}

	filler, err := tui.New(tui.WithPromptDriver(opts.driver), tui.WithOutputFormat(opts.format), tui.WithLogger(a.log))
	if err != nil {
		return err
	}
	state, err := filler.Fill(ctx, form, renderOpts)
	if err != nil {
		return err
	}
	renderOpts.Values = state

	if validator, err := validation.Compile(spec.Name, spec.Value); err != nil {
		a.log.Warn("validator unavailable", "spec", spec.Name, "error", err)
	} else {
		for _, issue := range validator.Validate(state) {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s: %s\n", displayPath(issue.Path), issue.Message)
		}
	}

	return writeOutput(cmd.OutOrStdout(), opts.output, []byte(preview.Render(state, opts.format, spec.Schema)+"\n"))
}

func displayPath(path string) string {
	if path == "" {
		return "(root)"
	}
	return path
}
