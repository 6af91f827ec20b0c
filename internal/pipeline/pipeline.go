// Package pipeline orchestrates the four conversion stages: classify,
// render, analyze/extract, assemble, optimize. Execution is strictly
// sequential, one page at a time; each stage consumes the previous stage's
// immutable output.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/drawmark/drawmark/internal/config"
	"github.com/drawmark/drawmark/internal/domain"
	"github.com/drawmark/drawmark/internal/llm"
	"github.com/drawmark/drawmark/internal/observability"
	"github.com/drawmark/drawmark/internal/pdf"
)

// Classifier labels a page preview as drawing or not.
type Classifier interface {
	IsDrawing(ctx context.Context, imagePath, pageText string) (bool, error)
}

// Analyzer extracts a structured finding from a drawing image.
type Analyzer interface {
	Analyze(ctx context.Context, imagePath, pageContext string) (domain.DrawingFinding, error)
}

// Optimizer restructures the assembled draft.
type Optimizer interface {
	Optimize(ctx context.Context, docName, markdown string) (string, error)
}

// inputValidator checks a PDF before the pipeline opens it.
type inputValidator interface {
	ValidatePDFPath(path string) (int, error)
}

// PageRenderer rasterizes and reads pages of one open document.
type PageRenderer interface {
	PageCount() int
	PageText(pageIndex int) (string, error)
	RenderPreview(ctx context.Context, pageIndex int, dir string) (string, error)
	RenderDrawing(ctx context.Context, pageIndex int, dir string) (string, int, error)
	Close() error
}

// Options are the per-run switches.
type Options struct {
	CleanTemp    bool
	SkipAnalysis bool
	SkipOptimize bool
}

// Service runs the conversion pipeline.
type Service struct {
	cfg        *config.Config
	validator  inputValidator
	classifier Classifier
	analyzer   Analyzer
	optimizer  Optimizer
	open       func(path string) (PageRenderer, error)
	assembler  Assembler
	log        *observability.Logger

	// Progress, when set, is called after each page of the classify and
	// analyze stages.
	Progress func(stage string, done, total int)
}

// NewService wires a Service from configuration: model-backed classifier,
// analyzer and optimizer over one shared client, go-fitz rendering, pdfcpu
// validation.
func NewService(cfg *config.Config, log *observability.Logger) (*Service, error) {
	if cfg.Classifier.Mode == config.ClassifierModel && cfg.Service.APIKey == "" {
		return nil, domain.ConfigError("API key is required (set DRAWMARK_API_KEY)", nil)
	}
	if log == nil {
		log = observability.Nop()
	}

	client := llm.NewClient(llm.ClientOptions{
		APIKey:     cfg.Service.APIKey,
		BaseURL:    cfg.Service.BaseURL,
		MaxRetries: cfg.Service.MaxRetries,
		BaseWait:   cfg.Service.BaseWait,
		Timeout:    cfg.Service.Timeout,
		Logger:     log,
	})

	var classifier Classifier
	if cfg.Classifier.Mode == config.ClassifierHeuristic {
		classifier = llm.NewHeuristicClassifier(cfg.Classifier.TextThreshold)
	} else {
		classifier = llm.NewPageClassifier(client, cfg.Models.Classify)
	}

	return &Service{
		cfg:        cfg,
		validator:  pdf.NewValidator(),
		classifier: classifier,
		analyzer:   llm.NewDrawingAnalyzer(client, cfg.Models.Analyze, cfg.Models.MaxTokens),
		optimizer: llm.NewMarkdownOptimizer(client, llm.OptimizerOptions{
			Model:          cfg.Models.Optimize,
			ChunkSize:      cfg.Optimizer.ChunkSize,
			SingleChunkMax: cfg.Optimizer.SingleChunkMax,
			MaxTokens:      cfg.Optimizer.MaxOutputTokens,
			Logger:         log,
		}),
		open: func(path string) (PageRenderer, error) {
			return pdf.OpenRenderer(path, pdf.RendererOptions{
				PreviewDPI:  cfg.Images.PreviewDPI,
				DrawingDPI:  cfg.Images.DrawingDPI,
				JPEGQuality: cfg.Images.JPEGQuality,
			})
		},
		log: log,
	}, nil
}

// NewServiceWith wires a Service from explicit dependencies. Tests use it
// to substitute deterministic fakes for the model-backed stages.
func NewServiceWith(cfg *config.Config, log *observability.Logger,
	classifier Classifier, analyzer Analyzer, optimizer Optimizer,
	open func(string) (PageRenderer, error)) *Service {
	if log == nil {
		log = observability.Nop()
	}
	return &Service{
		cfg:        cfg,
		validator:  pdf.NewValidator(),
		classifier: classifier,
		analyzer:   analyzer,
		optimizer:  optimizer,
		open:       open,
		log:        log,
	}
}

// Run converts one PDF. File-level failures abort with an error; page-level
// failures are recorded on the page and the run continues.
func (s *Service) Run(ctx context.Context, pdfPath string, opts Options) (*domain.FinalDocument, error) {
	stem := domain.Stem(pdfPath)
	log := s.log

	pageCount, err := s.validator.ValidatePDFPath(pdfPath)
	if err != nil {
		return nil, err
	}

	ws, err := NewWorkspace(s.cfg.Paths.TempDir, s.cfg.Paths.OutputDir)
	if err != nil {
		return nil, err
	}
	if opts.CleanTemp {
		if err := ws.CleanTemp(); err != nil {
			return nil, err
		}
	}

	renderer, err := s.open(pdfPath)
	if err != nil {
		return nil, err
	}
	defer renderer.Close()

	if n := renderer.PageCount(); n != pageCount {
		// pdfcpu and MuPDF rarely disagree; trust the open document.
		log.Warn().Int("validated", pageCount).Int("opened", n).Msg("page count mismatch")
		pageCount = n
	}

	log.Info().Str("pdf", pdfPath).Int("pages", pageCount).Msg("starting conversion")

	pages := s.classifyPages(ctx, renderer, ws, pageCount)

	findings := s.analyzeDrawings(ctx, renderer, ws, pages, opts)

	report := domain.AnalysisReport{
		RunID:    uuid.NewString(),
		Source:   pdfPath,
		Findings: findings,
	}
	if _, err := ws.WriteReport(stem, report); err != nil {
		log.Warn().Err(err).Msg("failed to write analysis report")
	}

	// Published copies must exist before the draft references them.
	for i := range pages {
		if pages[i].ImagePath == "" {
			continue
		}
		ref, err := ws.PublishImage(pages[i].ImagePath)
		if err != nil {
			log.WithPage(pages[i].Index).Warn().Err(err).Msg("failed to publish drawing image")
			pages[i].ImagePath = ""
			pages[i].Warnings = append(pages[i].Warnings, "image publish failed")
			continue
		}
		pages[i].ImagePath = ref
		for j := range findings {
			if findings[j].PageIndex == pages[i].Index {
				findings[j].ImagePath = ref
			}
		}
	}

	draft := s.assembler.BuildDraft(stem, pages, findings)
	markdown := s.assembler.RenderDraft(draft)

	final := markdown
	if opts.SkipOptimize {
		log.Info().Msg("markdown optimization skipped")
	} else {
		s.progress("optimize", 0, 1)
		optimized, err := s.optimizer.Optimize(ctx, stem, markdown)
		s.progress("optimize", 1, 1)
		if err != nil || strings.TrimSpace(optimized) == "" {
			log.Warn().Err(err).Msg("markdown optimization failed, keeping draft")
		} else {
			final = optimized
		}
	}

	outPath, err := ws.WriteDocument(stem, final)
	if err != nil {
		return nil, err
	}

	if missing := VerifyImageRefs(final, ws.OutputDir); len(missing) > 0 {
		log.Warn().Strs("missing", missing).Msg("markdown references images that were not published")
	}

	if err := ws.CleanTemp(); err != nil {
		log.Warn().Err(err).Msg("failed to clean temp directory")
	}

	log.Info().Str("output", outPath).Msg("conversion complete")

	return &domain.FinalDocument{
		Markdown:   final,
		OutputPath: outPath,
		Images:     CollectImageRefs(final),
	}, nil
}

// classifyPages renders a low-resolution preview of every page and labels
// it. Classification failures degrade to the text-extraction path: the page
// is never dropped.
func (s *Service) classifyPages(ctx context.Context, renderer PageRenderer, ws *Workspace, pageCount int) []domain.Page {
	log := s.log.WithStage("classify")
	pages := make([]domain.Page, 0, pageCount)

	for i := 0; i < pageCount; i++ {
		page := domain.Page{Index: i}

		text, err := renderer.PageText(i)
		if err != nil {
			log.WithPage(i).Warn().Err(err).Msg("text extraction failed")
			page.Warnings = append(page.Warnings, "text extraction failed")
		}

		preview, err := renderer.RenderPreview(ctx, i, ws.TempDir)
		if err != nil {
			log.WithPage(i).Warn().Err(err).Msg("preview render failed, treating page as text")
			page.Warnings = append(page.Warnings, "preview render failed")
		} else {
			isDrawing, err := s.classifier.IsDrawing(ctx, preview, text)
			if err != nil {
				// Fail safe to the cheaper extraction path.
				log.WithPage(i).Warn().Err(err).Msg("classification failed, treating page as text")
				page.Warnings = append(page.Warnings, "classification failed")
			} else {
				page.IsDrawing = isDrawing
			}
		}

		if !page.IsDrawing {
			page.Text, page.Tables = pdf.ExtractContent(text)
		} else {
			page.Text = text
		}

		pages = append(pages, page)
		s.progress("classify", i+1, pageCount)
	}

	drawings := 0
	for _, p := range pages {
		if p.IsDrawing {
			drawings++
		}
	}
	log.Info().Int("drawings", drawings).Int("pages", pageCount).Msg("classification finished")

	return pages
}

// analyzeDrawings renders each drawing page at high resolution, corrects
// rotation, and runs the vision analysis. Every drawing page yields exactly
// one finding; failures yield an empty finding with the error recorded.
func (s *Service) analyzeDrawings(ctx context.Context, renderer PageRenderer, ws *Workspace, pages []domain.Page, opts Options) []domain.DrawingFinding {
	log := s.log.WithStage("analyze")

	var drawingIdx []int
	for i, p := range pages {
		if p.IsDrawing {
			drawingIdx = append(drawingIdx, i)
		}
	}
	if len(drawingIdx) == 0 {
		log.Info().Msg("no drawing pages")
		return nil
	}

	var findings []domain.DrawingFinding
	for n, i := range drawingIdx {
		page := &pages[i]

		imagePath, rotation, err := renderer.RenderDrawing(ctx, page.Index, ws.TempDir)
		if err != nil {
			// Unreadable page: record and move on, the section still appears.
			log.WithPage(page.Index).Warn().Err(err).Msg("drawing render failed")
			page.Warnings = append(page.Warnings, "drawing render failed")
			findings = append(findings, domain.DrawingFinding{
				PageIndex: page.Index,
				Error:     fmt.Sprintf("render failed: %v", err),
			})
			s.progress("analyze", n+1, len(drawingIdx))
			continue
		}
		page.ImagePath = imagePath
		page.Rotation = rotation
		if rotation != domain.RotationNone {
			log.WithPage(page.Index).Info().Int("rotation", rotation).Msg("corrected rotated drawing")
		}

		if opts.SkipAnalysis {
			s.progress("analyze", n+1, len(drawingIdx))
			continue
		}

		finding, err := s.analyzer.Analyze(ctx, imagePath, s.neighbourContext(pages, i))
		if err != nil {
			log.WithPage(page.Index).Warn().Err(err).Msg("drawing analysis failed")
			finding = domain.DrawingFinding{
				PageIndex: page.Index,
				ImagePath: imagePath,
				Error:     err.Error(),
			}
		} else {
			finding.PageIndex = page.Index
		}
		findings = append(findings, finding)
		s.progress("analyze", n+1, len(drawingIdx))
	}

	if opts.SkipAnalysis {
		log.Info().Int("drawings", len(drawingIdx)).Msg("drawing analysis skipped")
	} else {
		log.Info().Int("findings", len(findings)).Msg("drawing analysis finished")
	}
	return findings
}

// neighbourContext gathers the extracted text of the pages surrounding a
// drawing, giving the vision model the prose that usually names what the
// drawing shows.
func (s *Service) neighbourContext(pages []domain.Page, i int) string {
	var b strings.Builder
	if i > 0 && !pages[i-1].IsDrawing {
		if text := strings.TrimSpace(pages[i-1].Text); text != "" {
			b.WriteString("Previous page content:\n")
			b.WriteString(text)
			b.WriteString("\n\n")
		}
	}
	if i+1 < len(pages) && !pages[i+1].IsDrawing {
		if text := strings.TrimSpace(pages[i+1].Text); text != "" {
			b.WriteString("Next page content:\n")
			b.WriteString(text)
		}
	}
	return strings.TrimSpace(b.String())
}

func (s *Service) progress(stage string, done, total int) {
	if s.Progress != nil {
		s.Progress(stage, done, total)
	}
}
