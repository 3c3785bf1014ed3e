package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	specviz "github.com/goliatone/go-specviz"
	"github.com/goliatone/go-specviz/pkg/model"
	"github.com/goliatone/go-specviz/pkg/orchestrator"
	"github.com/goliatone/go-specviz/pkg/render"
	"github.com/goliatone/go-specviz/pkg/schema"
)

const snapshotRendererName = "form-model-snapshot"

// snapshotRenderer writes the decorated form model as JSON instead of markup.
type snapshotRenderer struct {
	path string
}

func (r *snapshotRenderer) Name() string {
	return snapshotRendererName
}

func (r *snapshotRenderer) ContentType() string {
	return "application/json"
}

func (r *snapshotRenderer) Render(_ context.Context, form model.FormModel, _ render.RenderOptions) ([]byte, error) {
	payload, err := json.MarshalIndent(form, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(r.path, append(payload, '\n'), 0o644); err != nil {
		return nil, err
	}
	return payload, nil
}

func main() {
	var (
		specPath   = flag.String("spec", "examples/specs/workflow.spec.yaml", "spec document (YAML or JSON)")
		hintsPath  = flag.String("uischema", "examples/specs/workflow.ui.schema.yaml", "UI hint document, empty for none")
		outputPath = flag.String("output", "form_model.json", "output path for the serialized form model")
	)
	flag.Parse()

	if err := run(*specPath, *hintsPath, *outputPath); err != nil {
		fmt.Fprintf(os.Stderr, "failed to snapshot form model: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote form model snapshot to %s\n", *outputPath)
}

func run(specPath, hintsPath, outputPath string) error {
	doc, err := os.ReadFile(specPath)
	if err != nil {
		return fmt.Errorf("read spec: %w", err)
	}
	var hints []byte
	if hintsPath != "" {
		if hints, err = os.ReadFile(hintsPath); err != nil {
			return fmt.Errorf("read ui schema: %w", err)
		}
	}

	parsed, err := schema.NewDocument(schema.SourceFromFile(specPath), doc)
	if err != nil {
		return err
	}
	name := strings.TrimSuffix(filepath.Base(specPath), filepath.Ext(specPath))
	spec, err := specviz.ParseSpec(name, doc, hints, parsed.Format())
	if err != nil {
		return err
	}

	registry, err := render.NewRegistry(&snapshotRenderer{path: outputPath})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	_, err = specviz.GenerateHTMLFromSpec(context.Background(), spec, snapshotRendererName, specviz.RenderOptions{},
		orchestrator.WithRegistry(registry),
		orchestrator.WithDefaultRenderer(snapshotRendererName),
	)
	return err
}
