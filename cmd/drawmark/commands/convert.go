package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/drawmark/drawmark/cmd/drawmark/ui"
	"github.com/drawmark/drawmark/internal/config"
	"github.com/drawmark/drawmark/internal/observability"
	"github.com/drawmark/drawmark/internal/pipeline"
)

var (
	cleanTemp    bool
	skipAnalysis bool
	skipOptimize bool
	outputDir    string
	tempDir      string
)

var convertCmd = &cobra.Command{
	Use:   "convert <pdf>...",
	Short: "Convert one or more PDF files to markdown",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runConvert,
}

func init() {
	convertCmd.Flags().BoolVar(&cleanTemp, "clean", false, "clean the temp directory before converting")
	convertCmd.Flags().BoolVar(&skipAnalysis, "skip-analysis", false, "render drawing images without model analysis")
	convertCmd.Flags().BoolVar(&skipOptimize, "skip-optimize", false, "keep the assembled draft without the optimization pass")
	convertCmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory (overrides config)")
	convertCmd.Flags().StringVar(&tempDir, "temp", "", "temp directory (overrides config)")
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if outputDir != "" {
		cfg.Paths.OutputDir = outputDir
	}
	if tempDir != "" {
		cfg.Paths.TempDir = tempDir
	}
	if verbose {
		cfg.Observability.LogLevel = "debug"
	}

	log := observability.NewLogger(observability.LogConfig{
		Level:       cfg.Observability.LogLevel,
		Format:      cfg.Observability.LogFormat,
		ServiceName: "drawmark",
	})

	service, err := pipeline.NewService(cfg, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := pipeline.Options{
		CleanTemp:    cleanTemp,
		SkipAnalysis: skipAnalysis,
		SkipOptimize: skipOptimize,
	}

	failed := 0
	for _, pdfPath := range args {
		if err := convertOne(ctx, service, pdfPath, opts); err != nil {
			ui.Error("%s: %v", pdfPath, err)
			failed++
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d conversions failed", failed, len(args))
	}
	return nil
}

func convertOne(ctx context.Context, service *pipeline.Service, pdfPath string, opts pipeline.Options) error {
	ui.Section(pdfPath)

	var bar *ui.ProgressBar
	var spin *ui.Spinner
	stage := ""
	service.Progress = func(name string, done, total int) {
		if name == "optimize" {
			if bar != nil {
				bar.Finish()
				bar = nil
			}
			if done == 0 {
				spin = ui.NewSpinner("optimizing markdown")
				spin.Start()
			} else if spin != nil {
				spin.Stop()
				spin = nil
			}
			return
		}
		if bar == nil {
			bar = ui.NewProgressBar(int64(total), stageLabel(name))
		}
		if name != stage {
			stage = name
			bar.Describe(stageLabel(name))
			bar.SetTotal(int64(total))
		}
		bar.Set(int64(done))
	}

	doc, err := service.Run(ctx, pdfPath, opts)
	if bar != nil {
		bar.Finish()
	}
	if spin != nil {
		spin.Stop()
	}
	service.Progress = nil
	if err != nil {
		return err
	}

	ui.Success("wrote %s", doc.OutputPath)
	if n := len(doc.Images); n > 0 {
		ui.Info("%d drawing image(s) published", n)
	}
	return nil
}

func stageLabel(stage string) string {
	switch stage {
	case "classify":
		return "classifying pages"
	case "analyze":
		return "analyzing drawings"
	default:
		return stage
	}
}
