package main

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-specviz/pkg/draft"
	"github.com/goliatone/go-specviz/pkg/validation"
)

var errCheckFailed = errors.New("check failed")

type violation struct {
	spec     string
	location string
	message  string
}

func newCheckCmd(flags *rootFlags) *cobra.Command {
	var drafts bool
	cmd := &cobra.Command{
		Use:   "check [name...]",
		Short: "Check registered specs, their UI hints and saved drafts",
		Long: `Loads every named spec (all of them by default), builds its form and
compiles its validator. UI hints that target paths the document does not
declare are reported. With --drafts each saved draft is validated too.
Exits non-zero when anything is reported.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(flags)
			if err != nil {
				return err
			}
			defer a.close()
			ctx := cmd.Context()

			names := args
			if len(names) == 0 {
				for _, desc := range a.reg.List() {
					names = append(names, desc.Name)
				}
			}

			var store draft.Store
			if drafts {
				if store, err = a.openStore(ctx); err != nil {
					return err
				}
				defer store.Close()
			}

			var violations []violation
			for _, name := range names {
				found := checkSpec(ctx, a, store, name)
				if len(found) == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "OK: %s\n", name)
				}
				violations = append(violations, found...)
			}
			if len(violations) == 0 {
				return nil
			}

			sort.SliceStable(violations, func(i, j int) bool {
				if violations[i].spec == violations[j].spec {
					return violations[i].location < violations[j].location
				}
				return violations[i].spec < violations[j].spec
			})
			for _, v := range violations {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s -> %s\n", v.spec, v.location, v.message)
			}
			return fmt.Errorf("%w: %d problem(s)", errCheckFailed, len(violations))
		},
	}
	cmd.Flags().BoolVar(&drafts, "drafts", false, "validate saved drafts against their spec")
	return cmd
}

func checkSpec(ctx context.Context, a *app, store draft.Store, name string) []violation {
	spec, err := a.loader.Load(ctx, name)
	if err != nil {
		return []violation{{spec: name, location: "document", message: err.Error()}}
	}

	var out []violation
	if _, err := a.orch.Form(ctx, spec); err != nil {
		out = append(out, violation{spec: name, location: "form", message: err.Error()})
	}
	for path := range spec.Hints.Fields {
		if spec.Schema.At(path) == nil {
			out = append(out, violation{spec: name, location: "ui:" + path, message: "hint targets a path the document does not declare"})
		}
	}

	validator, err := validation.Compile(spec.Name, spec.Value)
	if err != nil {
		return append(out, violation{spec: name, location: "schema", message: err.Error()})
	}
	if store == nil {
		return out
	}
	value, ok, err := store.Load(ctx, spec.Name)
	if err != nil {
		return append(out, violation{spec: name, location: "draft", message: err.Error()})
	}
	if !ok {
		return out
	}
	for _, issue := range validator.Validate(value) {
		out = append(out, violation{spec: name, location: "draft:" + displayPath(issue.Path), message: issue.Message})
	}
	return out
}
