// Package data holds the reference data of the MyMedic API: the medication
// catalog and the interaction index. Both are built once at startup by Load
// and shared read-only afterwards.
package data

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/giygas/mymedic-api/catalog"
	"github.com/giygas/mymedic-api/interactions"
	"github.com/giygas/mymedic-api/interfaces"
	"github.com/giygas/mymedic-api/logging"
	"github.com/giygas/mymedic-api/validation"
)

// Compile-time check to ensure DataContainer implements DataStore
var _ interfaces.DataStore = (*DataContainer)(nil)

// DataContainer holds the catalog and index built at startup.
type DataContainer struct {
	catalog         atomic.Pointer[catalog.Catalog]
	index           atomic.Pointer[interactions.Index]
	loadedAt        atomic.Value // time.Time
	stats           atomic.Value // interfaces.LoadStats
	serverStartTime atomic.Value // time.Time
}

// NewDataContainer wraps already built reference data.
func NewDataContainer(cat *catalog.Catalog, idx *interactions.Index, stats interfaces.LoadStats) *DataContainer {
	dc := &DataContainer{}
	dc.catalog.Store(cat)
	dc.index.Store(idx)
	dc.stats.Store(stats)
	dc.loadedAt.Store(time.Now())
	dc.serverStartTime.Store(time.Time{})
	return dc
}

// Load builds the catalog, parses the corpus at corpusPath (the embedded
// corpus when empty) and builds the interaction index. Corpus rows that
// cannot be used are counted and logged, never fatal.
func Load(corpusPath string) (*DataContainer, error) {
	start := time.Now()

	cat, err := catalog.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	text, err := interactions.LoadCorpus(corpusPath)
	if err != nil {
		return nil, err
	}

	rows, parseStats := interactions.ParseCorpus(text)
	if parseStats.Malformed > 0 {
		logging.Warn("Skipped malformed corpus rows", "count", parseStats.Malformed)
	}

	names := interactions.NewNameResolver(cat.All())
	idx, buildStats := interactions.BuildIndex(rows, names)
	if buildStats.Unresolved > 0 || buildStats.SelfPairs > 0 {
		logging.Info("Skipped corpus rows outside the catalog",
			"unresolved", buildStats.Unresolved,
			"self_pairs", buildStats.SelfPairs)
	}
	if buildStats.Overwritten > 0 {
		logging.Warn("Corpus contains repeated pairs, last row kept", "count", buildStats.Overwritten)
	}

	stats := interfaces.LoadStats{
		Medications:  cat.Len(),
		Parse:        parseStats,
		Build:        buildStats,
		Pairs:        idx.Len(),
		LoadDuration: time.Since(start),
	}

	report := validation.NewDataValidator().ReportDataQuality(cat.All(), rows, idx)
	logging.Info("Data quality report",
		"medications_without_interactions", report.MedicationsWithoutInteractions,
		"unresolved_corpus_names", report.UnresolvedCorpusNames,
		"declared_not_indexed", report.DeclaredNotIndexed,
		"medications_without_uses", report.MedicationsWithoutUses)

	logging.Info("Reference data loaded",
		"medications", stats.Medications,
		"corpus_rows", parseStats.Rows,
		"pairs", stats.Pairs,
		"duration_ms", stats.LoadDuration.Milliseconds())

	return NewDataContainer(cat, idx, stats), nil
}

// Catalog returns the medication catalog.
func (dc *DataContainer) Catalog() *catalog.Catalog {
	if c := dc.catalog.Load(); c != nil {
		return c
	}

	logging.Warn("Catalog is empty or invalid")
	empty, _ := catalog.New(nil)
	return empty
}

// Index returns the interaction index. A nil index answers every lookup
// with no interaction.
func (dc *DataContainer) Index() *interactions.Index {
	return dc.index.Load()
}

// LoadedAt returns when the reference data was built.
func (dc *DataContainer) LoadedAt() time.Time {
	if v := dc.loadedAt.Load(); v != nil {
		if t, ok := v.(time.Time); ok {
			return t
		}
	}
	return time.Time{}
}

func (dc *DataContainer) Stats() interfaces.LoadStats {
	if v := dc.stats.Load(); v != nil {
		if s, ok := v.(interfaces.LoadStats); ok {
			return s
		}
	}
	return interfaces.LoadStats{}
}

// SetServerStartTime sets the server start time
func (dc *DataContainer) SetServerStartTime(startTime time.Time) {
	dc.serverStartTime.Store(startTime)
}

// GetServerStartTime returns the server start time
func (dc *DataContainer) GetServerStartTime() time.Time {
	if v := dc.serverStartTime.Load(); v != nil {
		if startTime, ok := v.(time.Time); ok {
			return startTime
		}
	}

	logging.Warn("Could not get the server start time value")
	return time.Time{}
}
