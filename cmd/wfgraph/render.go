package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/rendis/wfgraph/internal/diagram"
	"github.com/rendis/wfgraph/internal/expressions"
	"github.com/rendis/wfgraph/internal/graphview"
	"github.com/rendis/wfgraph/internal/layout"
	"github.com/rendis/wfgraph/pkg/schema"
)

var imageFormats = map[string]graphviz.Format{
	"svg": graphviz.SVG,
	"png": graphviz.PNG,
}

// renderFiles are the outputs of one render.
type renderFiles struct {
	Mermaid string
	ASCII   string
	Image   string
}

// runRender loads a workflow, binds the optional run files and writes the
// Mermaid, ASCII and image renditions of the drawn graph.
func runRender(ctx context.Context, args []string, cfg Config, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.SetOutput(stderr)
	runsPath := fs.String("runs", "", "JSON file with the run jobs")
	runPath := fs.String("run", "", "JSON file with the workflow run")
	outDir := fs.String("out", cfg.OutDir, "output directory")
	format := fs.String("format", "svg", "image format: svg, png, none")
	direction := fs.String("direction", cfg.Direction, "rank direction: horizontal, vertical")
	title := fs.String("title", "", "diagram title (default: workflow name)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("render: expected one workflow file")
	}
	cfg.Direction = *direction

	files, err := render(ctx, cfg, renderRequest{
		Workflow: fs.Arg(0),
		Runs:     *runsPath,
		Run:      *runPath,
		OutDir:   *outDir,
		Format:   *format,
		Title:    *title,
	}, stderr)
	if err != nil {
		return err
	}
	for _, f := range []string{files.Mermaid, files.ASCII, files.Image} {
		if f != "" {
			fmt.Fprintf(stdout, "Written: %s\n", f)
		}
	}
	return nil
}

type renderRequest struct {
	Workflow string
	Runs     string
	Run      string
	OutDir   string
	Format   string
	Title    string
}

func render(ctx context.Context, cfg Config, req renderRequest, logw io.Writer) (renderFiles, error) {
	var files renderFiles

	imgFormat, ok := imageFormats[req.Format]
	if !ok && req.Format != "none" {
		return files, fmt.Errorf("render: unknown image format %q", req.Format)
	}
	lc, err := cfg.layoutConfig()
	if err != nil {
		return files, err
	}
	gates, err := expressions.New(cfg.GateEngine)
	if err != nil {
		return files, fmt.Errorf("render: %w", err)
	}

	view, err := graphview.New(graphview.Options{
		Config:             lc,
		GateEngine:         gates,
		Logger:             newLogger(logw, cfg.LogLevel),
		NavigationDisabled: true,
	})
	if err != nil {
		return files, err
	}

	text, err := os.ReadFile(req.Workflow)
	if err != nil {
		return files, fmt.Errorf("render: %w", err)
	}
	if err := view.LoadWorkflow(ctx, text); err != nil {
		return files, err
	}
	if req.Runs != "" {
		var runs []schema.RunJob
		if err := readJSON(req.Runs, &runs); err != nil {
			return files, err
		}
		if err := view.SetRunJobs(ctx, runs); err != nil {
			return files, err
		}
	}
	if req.Run != "" {
		var run schema.WorkflowRun
		if err := readJSON(req.Run, &run); err != nil {
			return files, err
		}
		if err := view.SetWorkflowRun(ctx, &run); err != nil {
			return files, err
		}
	}

	title := req.Title
	if title == "" {
		title = view.Workflow().Name
	}
	base := strings.TrimSuffix(filepath.Base(req.Workflow), filepath.Ext(req.Workflow))
	if err := os.MkdirAll(req.OutDir, 0o755); err != nil {
		return files, fmt.Errorf("render: %w", err)
	}

	g := view.Graph()
	mermaid := diagram.RenderMermaid(g, diagram.MermaidOptions{Title: title, Vertical: view.Direction() == layout.Vertical})
	files.Mermaid = filepath.Join(req.OutDir, base+".mmd")
	if err := os.WriteFile(files.Mermaid, []byte(mermaid), 0o644); err != nil {
		return files, fmt.Errorf("render: %w", err)
	}

	files.ASCII = filepath.Join(req.OutDir, base+".txt")
	if err := os.WriteFile(files.ASCII, []byte(diagram.RenderASCII(g, title)), 0o644); err != nil {
		return files, fmt.Errorf("render: %w", err)
	}

	if req.Format == "none" {
		return files, nil
	}
	gv, ok := view.Driver().Engine().(*layout.GraphvizEngine)
	if !ok {
		return files, nil
	}
	stages := make(map[string]*layout.GraphvizEngine)
	for _, v := range g.Vertices {
		if v.Sub == nil {
			continue
		}
		if sd, ok := view.Driver().Stage(v.Key); ok {
			if sg, ok := sd.Engine().(*layout.GraphvizEngine); ok {
				stages[v.Key] = sg
			}
		}
	}
	var buf bytes.Buffer
	if err := gv.RenderWithStages(ctx, imgFormat, &buf, stages); err != nil {
		return files, fmt.Errorf("render image: %w", err)
	}
	files.Image = filepath.Join(req.OutDir, base+"."+req.Format)
	if err := os.WriteFile(files.Image, buf.Bytes(), 0o644); err != nil {
		return files, fmt.Errorf("render: %w", err)
	}
	return files, nil
}

func readJSON(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
