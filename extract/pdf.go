package extract

import (
	"regexp"
	"strings"

	"github.com/crwntec/mensaLog/plan"
)

// PDFPage is one page's extracted plain text plus zero or more cell tables,
// the input shape produced by the PDF reader adapter.
type PDFPage struct {
	Text   string
	Tables [][][]string
}

var (
	weekdayRe    = regexp.MustCompile(`(Montag|Dienstag|Mittwoch|Donnerstag|Freitag)`)
	headerDateRe = regexp.MustCompile(`(\d{2}\.\d{2}\.\d{2,4})`)
)

// The PDF source has never printed a Wok section; its category table
// deliberately carries only the other three.
var pdfCategories = []string{
	plan.CategoryTagesgericht,
	plan.CategoryVegetarisch,
	plan.CategoryPizzaPasta,
}

// headerDay is one (weekday, date) pair pulled from the table header.
type headerDay struct {
	date    string
	weekday string
}

// dayBuilder accumulates dish text per weekday column for the category
// currently being read. It commits on the next category boundary or at the
// end of the table.
type dayBuilder struct {
	days     []headerDay
	result   Days
	category string
	parts    [][]string
}

func newDayBuilder(days []headerDay) *dayBuilder {
	result := Days{}
	for _, d := range days {
		result[d.date] = plan.Day{Weekday: d.weekday, Meals: map[string]string{}}
	}
	return &dayBuilder{days: days, result: result}
}

// accumulating reports whether a category section is open.
func (b *dayBuilder) accumulating() bool { return b.category != "" }

// begin commits any open section and starts a new one for category.
func (b *dayBuilder) begin(category string) {
	b.commit()
	b.category = category
	b.parts = make([][]string, len(b.days))
}

// add appends a row's cells to the open section, column-aligned to the
// header days.
func (b *dayBuilder) add(cells []string) {
	if !b.accumulating() {
		return
	}
	for idx, cell := range cells {
		if idx >= len(b.days) {
			break
		}
		if text := strings.TrimSpace(cell); text != "" {
			b.parts[idx] = append(b.parts[idx], text)
		}
	}
}

// commit writes the accumulated text of the open section into each day and
// returns the builder to the awaiting-category state.
func (b *dayBuilder) commit() {
	if !b.accumulating() {
		return
	}
	for idx, parts := range b.parts {
		if len(parts) == 0 {
			continue
		}
		meal := plan.CleanMealText(strings.Join(parts, " "))
		if meal == "" {
			continue
		}
		b.result[b.days[idx].date].Meals[b.category] = meal
	}
	b.category = ""
	b.parts = nil
}

// finish commits the trailing section and drops days without meals.
func (b *dayBuilder) finish() Days {
	b.commit()
	for date, day := range b.result {
		if len(day.Meals) == 0 {
			delete(b.result, date)
		}
	}
	return b.result
}

// ExtractPDFTable parses one extracted table: locate the weekday header row,
// read its (weekday, date) pairs, then walk the rows below through the
// category/continuation state machine.
func ExtractPDFTable(table [][]string) Days {
	if len(table) < 2 {
		return Days{}
	}
	headerRow := -1
	for i, row := range table {
		for _, cell := range row {
			if weekdayRe.MatchString(cell) {
				headerRow = i
				break
			}
		}
		if headerRow >= 0 {
			break
		}
	}
	if headerRow < 0 {
		return Days{}
	}

	var days []headerDay
	for _, cell := range table[headerRow] {
		cell = strings.ReplaceAll(cell, "\n", " ")
		dayMatch := weekdayRe.FindStringSubmatch(cell)
		dateMatch := headerDateRe.FindStringSubmatch(cell)
		if dayMatch == nil || dateMatch == nil {
			continue
		}
		date, ok := parseDottedDate(dateMatch[1])
		if !ok {
			continue
		}
		days = append(days, headerDay{date: isoDate(date), weekday: dayMatch[1]})
	}
	if len(days) == 0 {
		return Days{}
	}

	builder := newDayBuilder(days)
	for _, row := range table[headerRow+1:] {
		if len(row) == 0 {
			continue
		}
		if category, ok := pdfCategory(row[0]); ok {
			builder.begin(category)
			builder.add(row[1:])
			continue
		}
		builder.add(row[1:])
	}
	return builder.finish()
}

// pdfCategory matches a first-column label against the PDF category list.
func pdfCategory(label string) (string, bool) {
	for _, cat := range pdfCategories {
		if strings.Contains(label, cat) {
			return cat, true
		}
	}
	return "", false
}

// ExtractPDFPage unions the schedules of all tables on one page.
func ExtractPDFPage(p PDFPage) Days {
	days := Days{}
	for _, table := range p.Tables {
		days.merge(ExtractPDFTable(table))
	}
	return days
}
