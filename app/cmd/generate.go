package main

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"uistudio/app/config"
	"uistudio/internal/domain/entity"
	"uistudio/internal/stream"
)

type generateOptions struct {
	stack       string
	prompt      string
	imagePath   string
	palette     string
	interaction string
	sections    []string
	features    []string
	outDir      string
}

func newGenerateCmd(root *rootOptions) *cobra.Command {
	opts := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Run one generation locally and write its files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(root.configPath)
			if err != nil {
				return err
			}
			req, err := opts.request()
			if err != nil {
				return err
			}
			return runGenerate(cmd.Context(), cfg, root, req, opts.outDir, cmd.ErrOrStderr(), cmd.OutOrStdout())
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.stack, "stack", "s", string(entity.StackHTML), "target stack: html, react, nextjs, vue, svelte")
	f.StringVarP(&opts.prompt, "prompt", "p", "", "text description of the UI")
	f.StringVarP(&opts.imagePath, "image", "i", "", "path to a sketch or screenshot")
	f.StringVar(&opts.palette, "palette", "", "palette id, e.g. bw")
	f.StringVar(&opts.interaction, "interaction", string(entity.InteractionMicro), "static, micro or full")
	f.StringSliceVar(&opts.sections, "sections", nil, "explicit section list")
	f.StringSliceVar(&opts.features, "features", nil, "feature flags to request")
	f.StringVarP(&opts.outDir, "out", "o", "", "directory to write generated files and preview.html to")
	return cmd
}

func (o *generateOptions) request() (entity.Request, error) {
	stack, err := entity.ParseTechStack(o.stack)
	if err != nil {
		return entity.Request{}, err
	}
	req := entity.Request{
		Config: entity.GenerationConfig{
			TechStack:        stack,
			ColorPalette:     entity.ColorPalette{ID: o.palette},
			InteractionLevel: entity.InteractionLevel(o.interaction),
			Features:         o.features,
			Page:             entity.PageMeta{Sections: o.sections},
		},
		Prompt: o.prompt,
	}
	if o.imagePath != "" {
		data, err := os.ReadFile(o.imagePath)
		if err != nil {
			return entity.Request{}, fmt.Errorf("read image: %w", err)
		}
		mt := mime.TypeByExtension(filepath.Ext(o.imagePath))
		if mt == "" {
			mt = http.DetectContentType(data)
		}
		req.Image = &entity.Image{Data: data, MimeType: mt}
	}
	return req, req.Validate()
}

func runGenerate(ctx context.Context, cfg *config.Config, root *rootOptions, req entity.Request, outDir string, progress, out io.Writer) error {
	ctx, stop := signalContext(ctx)
	defer stop()

	a, err := buildApp(ctx, cfg, root.logger(), false)
	if err != nil {
		return err
	}

	var last entity.PipelineStage
	sink := stream.SinkFunc(func(stage entity.PipelineStage) error {
		if ctx.Err() != nil {
			return stream.ErrClosed
		}
		fmt.Fprintf(progress, "[%3d%%] %-9s %s\n", stage.Progress, stage.Stage, stage.Message)
		last = stage
		return nil
	})
	if _, err := a.generation.Generate(ctx, req, sink); err != nil {
		return err
	}
	if last.Failed() {
		return fmt.Errorf("generation failed: %s", last.Error)
	}
	if !last.Terminal() {
		return ctx.Err()
	}

	if outDir == "" {
		_, err := io.WriteString(out, last.Code+"\n")
		return err
	}
	for _, f := range append(last.Files, entity.GeneratedFile{Path: "preview.html", Content: last.Preview}) {
		target := filepath.Join(outDir, filepath.FromSlash(f.Path))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
		if err := os.WriteFile(target, []byte(f.Content), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", f.Path, err)
		}
		fmt.Fprintf(progress, "wrote %s\n", target)
	}
	return nil
}
