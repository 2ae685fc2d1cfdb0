package processor

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"pcbwatch/internal/config"
	"pcbwatch/internal/extract"
	"pcbwatch/internal/fileutil"
	"pcbwatch/internal/history"
	"pcbwatch/internal/identset"
	"pcbwatch/internal/logging"
	"pcbwatch/internal/textenc"
)

// Report summarizes one completed pass. It mirrors what gets logged and
// what the history ledger records.
type Report struct {
	Outcome          string
	Encoding         string
	Lossy            bool
	UsedFallback     bool
	Matches          int
	NewIdentifiers   int
	TotalIdentifiers int
	DiagnosticLines  int
	Digest           string
	StartedAt        time.Time
	FinishedAt       time.Time
}

// Processor owns the identifier set and turns source-log snapshots into
// updated artifacts. It is not safe for concurrent use; the trigger
// delivers invocations serially.
type Processor struct {
	cfg       *config.Config
	logger    *slog.Logger
	extractor *extract.Extractor
	ledger    *history.Store
	set       identset.Set

	currentDate string
	now         func() time.Time
}

// New constructs a processor, loading the persisted identifier set. The
// ledger may be nil to disable pass-history recording.
func New(cfg *config.Config, logger *slog.Logger, ledger *history.Store) (*Processor, error) {
	if cfg == nil {
		return nil, errors.New("processor requires config")
	}

	extractor, err := extract.New(cfg.Processing.PrimaryPattern, cfg.Processing.FallbackPattern)
	if err != nil {
		return nil, err
	}

	procLogger := logging.NewComponentLogger(logger, "processor")

	set, loadErr := identset.Load(cfg.IdentifierStorePath())
	if loadErr != nil {
		// Tolerated: processing starts from an empty set and the store
		// is rewritten on the next growth.
		procLogger.Error("load identifier store", logging.Args(logging.Error(loadErr))...)
	}
	procLogger.Info("identifier store loaded",
		logging.Args(logging.Int("identifiers", set.Len()), logging.String("path", cfg.IdentifierStorePath()))...)

	now := time.Now
	return &Processor{
		cfg:         cfg,
		logger:      procLogger,
		extractor:   extractor,
		ledger:      ledger,
		set:         set,
		currentDate: now().Format(time.DateOnly),
		now:         now,
	}, nil
}

// Total returns the current identifier-set cardinality.
func (p *Processor) Total() int {
	return p.set.Len()
}

// RefreshCount rewrites the count artifact with the current cardinality.
// Exposed so the daemon can probe write permissions at startup.
func (p *Processor) RefreshCount() {
	p.refreshCount()
}

// Process runs one pass. It never returns an error; failures are logged
// and reflected in the report's outcome.
func (p *Processor) Process(ctx context.Context) Report {
	report := Report{StartedAt: p.now()}

	p.checkDayBoundary()

	sourcePath := p.cfg.Paths.SourceLog
	snapshotPath := p.cfg.SnapshotPath()

	if _, err := os.Stat(sourcePath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			p.logger.Warn("source log does not exist", logging.Args(logging.String("path", sourcePath))...)
		} else {
			p.logger.Error("stat source log", logging.Args(logging.String("path", sourcePath), logging.Error(err))...)
		}
		return p.finish(ctx, report, history.OutcomeSourceMissing)
	}

	if err := fileutil.CopyFilePreserve(sourcePath, snapshotPath); err != nil {
		p.logger.Error("snapshot source log",
			logging.Args(logging.String("source", sourcePath), logging.String("snapshot", snapshotPath), logging.Error(err))...)
		return p.finish(ctx, report, history.OutcomeCopyFailed)
	}
	p.logger.Info("snapshot taken",
		logging.Args(logging.String("source", sourcePath), logging.String("snapshot", snapshotPath))...)

	data, err := os.ReadFile(snapshotPath)
	if err != nil {
		p.logger.Error("read snapshot", logging.Args(logging.String("path", snapshotPath), logging.Error(err))...)
		return p.finish(ctx, report, history.OutcomeReadFailed)
	}
	if len(data) == 0 {
		p.logger.Warn("snapshot is empty, skipping extraction")
		return p.finish(ctx, report, history.OutcomeEmptySnapshot)
	}

	decoded := textenc.Decode(data)
	report.Encoding = decoded.Encoding
	report.Lossy = decoded.Lossy
	report.Digest = digest(decoded.Text)
	if decoded.Lossy {
		p.logger.Warn("all candidate encodings rejected input, decoded lossily",
			logging.Args(logging.Int("bytes", len(data)))...)
	}
	p.logger.Info("snapshot decoded",
		logging.Args(
			logging.String("encoding", decoded.Encoding),
			logging.Int("chars", len(decoded.Text)),
			logging.String("sha256", report.Digest),
		)...)

	ids, usedFallback := p.extractor.Identifiers(decoded.Text)
	report.UsedFallback = usedFallback
	report.Matches = len(ids)
	if usedFallback && len(ids) > 0 {
		p.logger.Warn("primary pattern found nothing, fallback pattern matched",
			logging.Args(logging.Int("matches", len(ids)))...)
	}

	diagLines := extract.Lines(decoded.Text)
	report.DiagnosticLines = len(diagLines)
	if err := p.writeDiagnostics(diagLines); err != nil {
		p.logger.Error("write diagnostic lines", logging.Args(logging.Error(err))...)
	} else {
		p.logger.Info("diagnostic lines written",
			logging.Args(logging.Int("lines", len(diagLines)), logging.String("path", p.cfg.DiagnosticLinesPath()))...)
	}

	if len(ids) == 0 {
		p.logger.Warn("no identifiers found in snapshot",
			logging.Args(logging.Int("diagnostic_lines", len(diagLines)))...)
	}

	added := p.set.AddAll(ids)
	report.NewIdentifiers = added
	if added > 0 {
		if err := identset.Save(p.set, p.cfg.IdentifierStorePath()); err != nil {
			p.logger.Error("persist identifier store", logging.Args(logging.Error(err))...)
		} else {
			p.logger.Info("identifier store updated",
				logging.Args(logging.Int("added", added), logging.Int("total", p.set.Len()))...)
		}
	} else {
		p.logger.Debug("no new identifiers")
	}

	return p.finish(ctx, report, history.OutcomeProcessed)
}

// checkDayBoundary records date rollovers. The identifier set is never
// reset; the marker only gates an extra count refresh for operators
// watching daily totals.
func (p *Processor) checkDayBoundary() {
	today := p.now().Format(time.DateOnly)
	if today == p.currentDate {
		return
	}
	p.logger.Info("new day detected", logging.Args(logging.String("date", today))...)
	p.currentDate = today
	p.refreshCount()
}

func (p *Processor) finish(ctx context.Context, report Report, outcome string) Report {
	report.Outcome = outcome
	report.TotalIdentifiers = p.set.Len()
	report.FinishedAt = p.now()

	p.refreshCount()
	p.record(ctx, report)
	return report
}

func (p *Processor) refreshCount() {
	path := p.cfg.CountFilePath()
	body := strconv.Itoa(p.set.Len()) + "\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		if errors.Is(err, fs.ErrPermission) {
			p.logger.Error("permission denied writing count file",
				logging.Args(logging.String("path", path), logging.Error(err))...)
		} else {
			p.logger.Error("write count file", logging.Args(logging.String("path", path), logging.Error(err))...)
		}
		return
	}
	p.logger.Info("count file updated", logging.Args(logging.Int("total", p.set.Len()))...)
}

func (p *Processor) writeDiagnostics(lines []string) error {
	var builder strings.Builder
	fmt.Fprintf(&builder, "Date: %s\n", p.now().Format(time.RFC3339))
	fmt.Fprintf(&builder, "PCB-related lines (%d):\n", len(lines))
	for _, line := range lines {
		builder.WriteString(line)
		builder.WriteByte('\n')
	}
	return os.WriteFile(p.cfg.DiagnosticLinesPath(), []byte(builder.String()), 0o644)
}

func (p *Processor) record(ctx context.Context, report Report) {
	if p.ledger == nil {
		return
	}
	_, err := p.ledger.Record(ctx, history.PassRecord{
		StartedAt:        report.StartedAt,
		FinishedAt:       report.FinishedAt,
		Outcome:          report.Outcome,
		Encoding:         report.Encoding,
		Lossy:            report.Lossy,
		UsedFallback:     report.UsedFallback,
		Matches:          report.Matches,
		NewIdentifiers:   report.NewIdentifiers,
		TotalIdentifiers: report.TotalIdentifiers,
		DiagnosticLines:  report.DiagnosticLines,
		Digest:           report.Digest,
	})
	if err != nil {
		p.logger.Error("record pass history", logging.Args(logging.Error(err))...)
	}
}

func digest(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
