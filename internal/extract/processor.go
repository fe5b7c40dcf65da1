package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ctleads/harvester/internal/config"
	"github.com/ctleads/harvester/internal/ledger"
	"github.com/ctleads/harvester/internal/pipeline"
	"github.com/ctleads/harvester/pkg/logger"
)

// Processor runs the document sweep: for every downloaded document not yet
// in the ledger, find its parties page, extract defendants and reconcile
// them into the case store. No failure inside one document stops the sweep.
type Processor struct {
	cfg        *config.Config
	classifier *Classifier
	extractor  *Extractor
	reconciler *pipeline.Reconciler
	ledger     *ledger.Ledger
	audit      *pipeline.AuditWriter
	logger     *logger.Logger
}

// NewProcessor wires the second-stage pipeline. audit may be nil.
func NewProcessor(
	cfg *config.Config,
	classifier *Classifier,
	extractor *Extractor,
	reconciler *pipeline.Reconciler,
	led *ledger.Ledger,
	audit *pipeline.AuditWriter,
	log *logger.Logger,
) *Processor {
	return &Processor{
		cfg:        cfg,
		classifier: classifier,
		extractor:  extractor,
		reconciler: reconciler,
		ledger:     led,
		audit:      audit,
		logger:     log,
	}
}

// Run sweeps the document directory in sorted order. wanted, when
// non-empty, restricts the sweep to those dockets; limit > 0 caps how many
// documents are processed.
func (p *Processor) Run(ctx context.Context, wanted []string, limit int) error {
	entries, err := os.ReadDir(p.cfg.DocumentDir)
	if err != nil {
		return fmt.Errorf("failed to read document directory: %w", err)
	}

	wantedSet := make(map[string]bool)
	for _, w := range wanted {
		if trimmed := strings.TrimSpace(w); trimmed != "" {
			wantedSet[strings.ToUpper(trimmed)] = true
		}
	}

	processed, err := p.ledger.Processed()
	if err != nil {
		return err
	}

	var paths []string
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, ".pdf") {
			continue
		}
		docket := strings.TrimSuffix(name, ".pdf")
		if processed[docket] {
			continue
		}
		if len(wantedSet) > 0 && !wantedSet[strings.ToUpper(docket)] {
			continue
		}
		paths = append(paths, filepath.Join(p.cfg.DocumentDir, name))
	}
	sort.Strings(paths)
	if limit > 0 && len(paths) > limit {
		paths = paths[:limit]
	}

	if len(paths) == 0 {
		p.logger.Info("No unprocessed documents", "dir", p.cfg.DocumentDir)
		return nil
	}
	p.logger.Info("Starting extraction sweep", "documents", len(paths))

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.ProcessDocument(ctx, path); err != nil {
			p.logger.Error("Document processing failed", "path", path, "error", err)
		}
	}
	return nil
}

// ProcessDocument classifies every page of one document, extracts
// defendants from the best positive page, reconciles them and records the
// outcome in the ledger either way.
func (p *Processor) ProcessDocument(ctx context.Context, path string) error {
	docket := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	p.logger.Info("Processing document", "docket", docket)

	var pick bestPick
	err := forEachPage(path, p.cfg.RenderDPI, func(index int, image []byte) error {
		outcome := p.classifier.DetectPartiesPage(ctx, docket, index, image)
		p.logger.Debug("Page classified",
			"docket", docket,
			"page", index,
			"is_parties_page", outcome.IsPartiesPage,
			"confidence", outcome.Confidence,
		)
		pick.consider(outcome, image)
		return nil
	})
	if err != nil {
		return err
	}

	if !pick.found {
		p.logger.Warn("No parties page found", "docket", docket)
		return p.ledger.WriteNotFound(docket, "no parties page detected")
	}
	p.logger.Info("Parties page detected",
		"docket", docket,
		"page", pick.best.PageIndex,
		"confidence", pick.best.Confidence,
	)

	returnedDocket, defendants := p.extractor.ExtractDefendants(ctx, docket, pick.image)
	p.logger.Info("Defendant rows extracted", "docket", returnedDocket, "count", len(defendants))

	outcomes, err := p.reconciler.Apply(returnedDocket, defendants)
	if err != nil {
		p.logger.Error("Reconciliation aborted", "docket", returnedDocket, "error", err)
		p.writeAudit(returnedDocket, []pipeline.Outcome{{
			Status: "error:" + err.Error(),
		}})
	} else {
		p.writeAudit(returnedDocket, outcomes)
	}

	// The artifact is written regardless of extraction results so the
	// docket is not revisited.
	return p.ledger.WriteFound(docket, pick.image)
}

// bestPick tracks the highest-confidence positive detection seen so far,
// along with the page image it was made on.
type bestPick struct {
	best  Detection
	image []byte
	found bool
}

func (b *bestPick) consider(d Detection, image []byte) {
	if !d.IsPartiesPage {
		return
	}
	if !b.found || d.Confidence > b.best.Confidence {
		b.best = d
		b.image = append(b.image[:0], image...)
		b.found = true
	}
}

func (p *Processor) writeAudit(docket string, outcomes []pipeline.Outcome) {
	if p.audit == nil || len(outcomes) == 0 {
		return
	}
	if err := p.audit.WriteOutcomes(docket, outcomes); err != nil {
		p.logger.Warn("Failed to write audit rows", "docket", docket, "error", err)
	}
}
