package interactions

import "strings"

// minCorpusFields is the number of fields a row needs to be usable
// (Drug1, Drug2, Effect, Mechanism, Recommendations). Source is optional.
const minCorpusFields = 5

// CorpusRow is one parsed interaction statement. It only lives until the
// index is built.
type CorpusRow struct {
	Drug1           string
	Drug2           string
	Effect          string
	Mechanism       string
	Recommendations string
	Source          string
}

// ParseStats counts what happened to each corpus line.
type ParseStats struct {
	TotalLines int `json:"total_lines"`
	EmptyLines int `json:"empty_lines"`
	Malformed  int `json:"malformed"`
	Rows       int `json:"rows"`
}

// ParseCSVLine splits one corpus line on commas that are outside double
// quotes. Quote characters toggle the quoted state and are not kept.
// Escaped quotes ("") are not supported by the corpus format.
func ParseCSVLine(line string) []string {
	var fields []string
	var current strings.Builder
	inQuote := false

	for _, ch := range line {
		switch {
		case ch == '"':
			inQuote = !inQuote
		case ch == ',' && !inQuote:
			fields = append(fields, cleanField(current.String()))
			current.Reset()
		default:
			current.WriteRune(ch)
		}
	}
	fields = append(fields, cleanField(current.String()))

	return fields
}

// cleanField trims whitespace and any leading or trailing quote left over.
func cleanField(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, `"`)
	s = strings.TrimSuffix(s, `"`)
	return s
}

// ParseCorpus turns corpus text into rows. The first line is the header and
// is always skipped. Rows with too few fields are dropped, never reported
// as errors.
func ParseCorpus(text string) ([]CorpusRow, ParseStats) {
	var stats ParseStats
	lines := strings.Split(text, "\n")
	if len(lines) <= 1 {
		return nil, stats
	}

	rows := make([]CorpusRow, 0, len(lines)-1)
	for _, line := range lines[1:] {
		stats.TotalLines++

		if strings.TrimSpace(line) == "" {
			stats.EmptyLines++
			continue
		}

		fields := ParseCSVLine(line)
		if len(fields) < minCorpusFields {
			stats.Malformed++
			continue
		}

		row := CorpusRow{
			Drug1:           fields[0],
			Drug2:           fields[1],
			Effect:          fields[2],
			Mechanism:       fields[3],
			Recommendations: fields[4],
		}
		if len(fields) > 5 {
			row.Source = fields[5]
		}
		rows = append(rows, row)
	}
	stats.Rows = len(rows)

	return rows, stats
}
