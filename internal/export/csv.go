package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/upprop/internal/app"
	"github.com/shrimpsizemoose/upprop/internal/metrics"
	"github.com/shrimpsizemoose/upprop/internal/roster"
)

const defaultSchedule = "0 6 * * *"

// CSVExporter periodically dumps the full standings table to a CSV file so
// coordinators can pull it into their spreadsheets without hitting the API.
type CSVExporter struct {
	config    *app.Config
	roster    *roster.Service
	scheduler *gocron.Scheduler
}

func NewCSVExporter(config *app.Config, svc *roster.Service) (*CSVExporter, error) {
	scheduler := gocron.NewScheduler(time.UTC)

	exporter := &CSVExporter{
		config:    config,
		roster:    svc,
		scheduler: scheduler,
	}

	schedule := config.Export.Cron
	if schedule == "" {
		schedule = defaultSchedule
	}
	if _, err := scheduler.Cron(schedule).Do(func() {
		if err := exporter.Export(); err != nil {
			logger.Error.Printf("standings export failed: %v", err)
		}
	}); err != nil {
		return nil, fmt.Errorf("failed to schedule export: %w", err)
	}

	scheduler.StartAsync()
	return exporter, nil
}

func (e *CSVExporter) Stop() {
	e.scheduler.Stop()
}

// Export recomputes standings for every student and writes them out. The
// file is written next to a dated copy so the latest snapshot has a stable
// name.
func (e *CSVExporter) Export() error {
	summaries, err := e.roster.Summarize(roster.SummaryScope{})
	if err != nil {
		return fmt.Errorf("failed to compute standings: %w", err)
	}

	outDir := e.config.Export.OutputDir
	if outDir == "" {
		outDir = "."
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	path := filepath.Join(outDir, "standings.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"external_id", "last_name", "first_name", "module", "section",
		"group", "absences", "participations", "marks", "standing", "severity",
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, s := range summaries {
		metrics.AbsenceHistogram.WithLabelValues(s.Student.Module).Observe(float64(s.Absences))
		marks := make([]string, len(s.Marks))
		for i, m := range s.Marks {
			if m == "" {
				m = "."
			}
			marks[i] = m
		}
		row := []string{
			s.Student.ExternalID,
			s.Student.LastName,
			s.Student.FirstName,
			s.Student.Module,
			s.Student.Section,
			s.Student.Group,
			strconv.Itoa(s.Absences),
			strconv.Itoa(s.Participations),
			strings.Join(marks, ""),
			s.Standing.Message,
			s.Standing.Severity,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}

	dated := filepath.Join(outDir, fmt.Sprintf("standings_%s.csv", time.Now().UTC().Format("20060102")))
	if data, err := os.ReadFile(path); err == nil {
		if err := os.WriteFile(dated, data, 0o644); err != nil {
			logger.Debug.Printf("failed to write dated snapshot: %v", err)
		}
	}

	logger.Info.Printf("exported %d standings to %s", len(summaries), path)
	return nil
}
