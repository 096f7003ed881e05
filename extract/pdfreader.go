package extract

import (
	"fmt"
	"log"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Horizontal gap (in PDF points) that separates two text spans in one row.
const cellGap = 14.0

// LoadPDF reads every page of a menu PDF into the extractor's input shape:
// plain page text plus one cell table reconstructed from text-row geometry.
// Unreadable pages are skipped; the library can panic on malformed content
// streams, so page processing is recovered.
func LoadPDF(path string) ([]PDFPage, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var pages []PDFPage
	for i := 1; i <= r.NumPage(); i++ {
		page, err := loadPage(r.Page(i))
		if err != nil {
			log.Printf("pdf %s: page %d skipped: %v", path, i, err)
			continue
		}
		pages = append(pages, page)
	}
	return pages, nil
}

func loadPage(p pdf.Page) (page PDFPage, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic reading page: %v", rec)
		}
	}()
	if p.V.IsNull() {
		return page, fmt.Errorf("empty page")
	}

	text, err := p.GetPlainText(nil)
	if err != nil {
		return page, fmt.Errorf("plain text: %w", err)
	}
	page.Text = text

	rows, err := p.GetTextByRow()
	if err != nil {
		return page, fmt.Errorf("text rows: %w", err)
	}
	if table := rowsToTable(rows); len(table) > 0 {
		page.Tables = [][][]string{table}
	}
	return page, nil
}

// span is one gap-delimited run of text within a row.
type span struct {
	x0, x1 float64
	text   string
}

// column is the x-range a table column occupies. Row fragments are bound to
// columns by center position, never by their order within the row, so empty
// cells cannot shift their neighbors.
type column struct {
	lo, hi float64
}

// rowsToTable rebuilds the page's cell table. The weekday header row defines
// the column grid: one column per header span plus a leading label column.
// Every row is then emitted with exactly one cell per column, empty where no
// text falls into the column's x-range. Rows come back bottom-up from the
// library and are emitted top-down. Pages without a weekday header yield no
// table.
func rowsToTable(rows pdf.Rows) [][]string {
	sorted := make(pdf.Rows, len(rows))
	copy(sorted, rows)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Position > sorted[j].Position
	})

	var cols []column
	for _, row := range sorted {
		if cols = headerColumns(row.Content); cols != nil {
			break
		}
	}
	if cols == nil {
		return nil
	}

	var table [][]string
	for _, row := range sorted {
		cells := binRow(row.Content, cols)
		empty := true
		for _, c := range cells {
			if c != "" {
				empty = false
				break
			}
		}
		if !empty {
			table = append(table, cells)
		}
	}
	return table
}

// clusterRow groups a row's positioned fragments into spans wherever the
// horizontal gap between fragments exceeds cellGap.
func clusterRow(content pdf.TextHorizontal) []span {
	if len(content) == 0 {
		return nil
	}
	frags := make([]pdf.Text, len(content))
	copy(frags, content)
	sort.Slice(frags, func(i, j int) bool { return frags[i].X < frags[j].X })

	var spans []span
	current := span{x0: frags[0].X, x1: frags[0].X}
	var text strings.Builder
	flush := func() {
		if s := strings.TrimSpace(text.String()); s != "" {
			current.text = s
			spans = append(spans, current)
		}
		text.Reset()
	}
	for i, t := range frags {
		if i > 0 && t.X-current.x1 > cellGap {
			flush()
			current = span{x0: t.X, x1: t.X}
		}
		text.WriteString(t.S)
		if end := t.X + t.W; end > current.x1 {
			current.x1 = end
		}
	}
	flush()
	return spans
}

// headerColumns derives the column grid from a candidate header row: every
// span naming a weekday anchors one column, boundaries sit in the middle of
// the gaps between anchors, and the label column covers everything left of
// the first weekday.
func headerColumns(content pdf.TextHorizontal) []column {
	var anchors []span
	for _, s := range clusterRow(content) {
		if weekdayRe.MatchString(s.text) {
			anchors = append(anchors, s)
		}
	}
	if len(anchors) == 0 {
		return nil
	}

	cols := make([]column, 0, len(anchors)+1)
	cols = append(cols, column{lo: math.Inf(-1), hi: anchors[0].x0 - cellGap/2})
	for i, a := range anchors {
		c := column{lo: cols[len(cols)-1].hi, hi: math.Inf(1)}
		if i+1 < len(anchors) {
			c.hi = (a.x1 + anchors[i+1].x0) / 2
		}
		cols = append(cols, c)
	}
	return cols
}

// binRow distributes a row's fragments over the column grid by center
// position and returns one string per column, empty where nothing landed.
// Fragments within a column keep their x order; a gap wider than cellGap
// becomes a space so separate words do not fuse.
func binRow(content pdf.TextHorizontal, cols []column) []string {
	frags := make([]pdf.Text, len(content))
	copy(frags, content)
	sort.Slice(frags, func(i, j int) bool { return frags[i].X < frags[j].X })

	builders := make([]strings.Builder, len(cols))
	prevEnd := make([]float64, len(cols))
	for _, t := range frags {
		center := t.X + t.W/2
		idx := -1
		for i, c := range cols {
			if center >= c.lo && center < c.hi {
				idx = i
				break
			}
		}
		if idx < 0 {
			continue
		}
		if builders[idx].Len() > 0 && t.X-prevEnd[idx] > cellGap {
			builders[idx].WriteString(" ")
		}
		builders[idx].WriteString(t.S)
		prevEnd[idx] = t.X + t.W
	}

	cells := make([]string, len(cols))
	for i := range builders {
		cells[i] = strings.TrimSpace(builders[i].String())
	}
	return cells
}
