package ingest

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/crwntec/mensaLog/extract"
	"github.com/crwntec/mensaLog/intelligence"
	"github.com/crwntec/mensaLog/plan"
)

// PlanStore is the slice of the record store the importer needs.
type PlanStore interface {
	HasMealplan(year, week int) (bool, error)
	CreateMealplan(p plan.ResolvedPlan) error
}

// Importer parses documents, resolves dish identity and stores the result.
type Importer struct {
	store    PlanStore
	resolver *intelligence.Resolver
	logger   *log.Logger
}

// NewImporter wires an importer. logger may be nil.
func NewImporter(store PlanStore, resolver *intelligence.Resolver, logger *log.Logger) *Importer {
	return &Importer{store: store, resolver: resolver, logger: logger}
}

// Stats counts the outcome of an archive run.
type Stats struct {
	Files    int
	Imported int
	Skipped  int
	Errors   int
}

// ImportFile parses one document by extension and stores every week
// fragment that is not already present. Returns the number of fragments
// imported.
func (im *Importer) ImportFile(path string) (int, error) {
	fragments, err := im.parse(path)
	if err != nil {
		return 0, err
	}
	imported := 0
	for _, fragment := range fragments {
		if len(fragment.Days) == 0 {
			im.logf("%s: week %d/%d has no data", filepath.Base(path), fragment.Week, fragment.Year)
			continue
		}
		exists, err := im.store.HasMealplan(fragment.Year, fragment.Week)
		if err != nil {
			return imported, err
		}
		if exists {
			im.logf("week %d/%d already exists, skipping %s", fragment.Week, fragment.Year, filepath.Base(path))
			continue
		}
		resolved, err := im.resolve(fragment)
		if err != nil {
			return imported, err
		}
		if err := im.store.CreateMealplan(resolved); err != nil {
			return imported, err
		}
		im.logf("week %d/%d imported from %s (%d days)", fragment.Week, fragment.Year, filepath.Base(path), len(fragment.Days))
		imported++
	}
	// One cache write per document keeps the embedding cache consistent
	// with the meals just registered.
	if err := im.resolver.Store().Persist(); err != nil {
		return imported, err
	}
	return imported, nil
}

func (im *Importer) parse(path string) ([]plan.Mealplan, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xls":
		g, err := extract.LoadXLS(path)
		if err != nil {
			return nil, err
		}
		p, err := AssembleSpreadsheet(path, g, extract.ExtractLegacy(g))
		if err != nil {
			return nil, err
		}
		return []plan.Mealplan{p}, nil
	case ".xlsx":
		g, err := extract.LoadXLSX(path)
		if err != nil {
			return nil, err
		}
		p, err := AssembleSpreadsheet(path, g, extract.ExtractModern(g))
		if err != nil {
			return nil, err
		}
		return []plan.Mealplan{p}, nil
	case ".pdf":
		pages, err := extract.LoadPDF(path)
		if err != nil {
			return nil, err
		}
		return AssemblePDF(pages, filepath.Base(path), time.Now())
	}
	return nil, fmt.Errorf("unsupported file format: %s", path)
}

// resolve maps every dish text of a fragment to its stable meal id. Order is
// significant: dates ascending, categories in canonical order, so a dish can
// match the embedding created for an earlier cell of the same document.
func (im *Importer) resolve(p plan.Mealplan) (plan.ResolvedPlan, error) {
	out := plan.ResolvedPlan{Year: p.Year, Week: p.Week, Days: map[string]plan.ResolvedDay{}}

	dates := make([]string, 0, len(p.Days))
	for date := range p.Days {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	for _, date := range dates {
		day := p.Days[date]
		resolved := plan.ResolvedDay{Weekday: day.Weekday, Meals: map[string]int64{}}
		for _, category := range plan.Categories {
			text, ok := day.Meals[category]
			if !ok || text == "" {
				continue
			}
			id, isNew, err := im.resolver.ResolveOrCreate(text)
			if err != nil {
				return out, err
			}
			if isNew {
				im.logf("new meal %d: %s", id, text)
			}
			resolved.Meals[category] = id
		}
		out.Days[date] = resolved
	}
	return out, nil
}

// ImportArchive walks <dir>/<year>/ subdirectories and imports every
// spreadsheet and PDF found. One bad document never aborts the batch.
func (im *Importer) ImportArchive(dir string) Stats {
	var stats Stats
	years, err := os.ReadDir(dir)
	if err != nil {
		im.logf("archive %s: %v", dir, err)
		return stats
	}
	for _, yearEntry := range years {
		if !yearEntry.IsDir() {
			continue
		}
		yearDir := filepath.Join(dir, yearEntry.Name())
		files, err := os.ReadDir(yearDir)
		if err != nil {
			im.logf("archive %s: %v", yearDir, err)
			continue
		}
		for _, f := range files {
			switch strings.ToLower(filepath.Ext(f.Name())) {
			case ".xls", ".xlsx", ".pdf":
			default:
				continue
			}
			stats.Files++
			imported, err := im.ImportFile(filepath.Join(yearDir, f.Name()))
			if err != nil {
				im.logf("error processing %s: %v", f.Name(), err)
				stats.Errors++
				continue
			}
			if imported > 0 {
				stats.Imported += imported
			} else {
				stats.Skipped++
			}
		}
	}
	im.logf("archive import: %d files, %d imported, %d skipped, %d errors",
		stats.Files, stats.Imported, stats.Skipped, stats.Errors)
	return stats
}

func (im *Importer) logf(format string, args ...any) {
	if im.logger != nil {
		im.logger.Printf(format, args...)
	}
}
