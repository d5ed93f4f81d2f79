package dataset

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Options controls how tabular inputs are read and how numeric cells are parsed.
type Options struct {
	// MaxRows limits rows loaded; 0 means unlimited.
	MaxRows int
	// Delimiter for CSV. If 0, picks by extension (',' or '\t').
	Delimiter rune
	// Numeric parsing locale. If DecimalSeparator is 0, auto-detect per value.
	DecimalSeparator   rune
	ThousandsSeparator rune // optional; if 0, auto-detect common separators (',' '.' space)
}

// DefaultOptions returns reasonable defaults for loading survey tables.
func DefaultOptions() Options {
	return Options{MaxRows: 1000000}
}

// Kind is the inferred type of a column.
type Kind string

const (
	KindNumeric     Kind = "numeric"
	KindDatetime    Kind = "datetime"
	KindCategorical Kind = "categorical"
	KindText        Kind = "text"
	KindEmpty       Kind = "empty"
)

// Table is an in-memory, row-major view of a loaded dataset. Cells are kept as
// raw strings; typed access goes through Floats and Strings.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]string
	// Truncated reports that MaxRows stopped the loader early.
	Truncated bool

	opt   Options
	index map[string]int
}

// NewTable builds a table from a header and rows. Rows shorter than the header are padded.
func NewTable(name string, header []string, rows [][]string, opt Options) *Table {
	t := &Table{Name: name, opt: opt, index: make(map[string]int, len(header))}
	t.Columns = make([]string, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		t.Columns[i] = h
		if _, dup := t.index[h]; !dup {
			t.index[h] = i
		}
	}
	t.Rows = make([][]string, 0, len(rows))
	for _, r := range rows {
		t.Rows = append(t.Rows, padRow(r, len(header)))
	}
	return t
}

func padRow(rec []string, ncol int) []string {
	row := make([]string, ncol)
	copy(row, rec)
	return row
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.Rows) }

// Has reports whether the named column exists.
func (t *Table) Has(col string) bool {
	_, ok := t.index[col]
	return ok
}

// ColumnIndex returns the position of col or a MissingColumnError.
func (t *Table) ColumnIndex(col string) (int, error) {
	idx, ok := t.index[col]
	if !ok {
		return -1, &MissingColumnError{Column: col, Available: t.Columns}
	}
	return idx, nil
}

// Require fails with MissingColumnError on the first absent column.
func (t *Table) Require(cols ...string) error {
	for _, c := range cols {
		if _, err := t.ColumnIndex(c); err != nil {
			return err
		}
	}
	return nil
}

// Strings returns the trimmed cells of col. Missing cells are returned as "".
func (t *Table) Strings(col string) ([]string, error) {
	idx, err := t.ColumnIndex(col)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		v := strings.TrimSpace(r[idx])
		if IsMissing(v) {
			v = ""
		}
		out[i] = v
	}
	return out, nil
}

// Floats returns one value per row for col, NaN where the cell is missing.
// A present cell that does not parse as a number yields a NonNumericFeatureError;
// values are never coerced.
func (t *Table) Floats(col string) ([]float64, error) {
	idx, err := t.ColumnIndex(col)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(t.Rows))
	for i, r := range t.Rows {
		v := strings.TrimSpace(r[idx])
		if IsMissing(v) {
			out[i] = math.NaN()
			continue
		}
		x, ok := ParseNumeric(v, t.opt)
		if !ok {
			return nil, &NonNumericFeatureError{Column: col, Row: i + 1, Value: v}
		}
		out[i] = x
	}
	return out, nil
}

// Kind infers the column type by the predominant parse result of its non-missing cells.
func (t *Table) Kind(col string) Kind {
	idx, ok := t.index[col]
	if !ok {
		return KindEmpty
	}
	var numCnt, dtCnt, txtCnt int
	cats := map[string]int{}
	for _, r := range t.Rows {
		v := strings.TrimSpace(r[idx])
		if IsMissing(v) {
			continue
		}
		if _, ok := ParseNumeric(v, t.opt); ok {
			numCnt++
			continue
		}
		if _, ok := parseTimeMaybe(v); ok {
			dtCnt++
			continue
		}
		txtCnt++
		if len(v) <= 64 {
			cats[v]++
		}
	}
	switch {
	case numCnt > 0 && numCnt >= dtCnt && numCnt >= txtCnt:
		// A single stray label among numbers still fails Floats; only a fully
		// numeric column is offered for auto-selection.
		if dtCnt == 0 && txtCnt == 0 {
			return KindNumeric
		}
		return KindText
	case dtCnt > 0 && dtCnt >= txtCnt:
		return KindDatetime
	case len(cats) > 0 && len(cats) < txtCnt:
		return KindCategorical
	case txtCnt > 0:
		return KindText
	}
	return KindEmpty
}

// NumericColumns lists fully numeric columns in header order.
func (t *Table) NumericColumns() []string {
	var out []string
	for _, c := range t.Columns {
		if t.Kind(c) == KindNumeric {
			out = append(out, c)
		}
	}
	return out
}

// Documents builds a corpus from an identifier column and a text column.
// Missing text degrades to the empty string.
func (t *Table) Documents(idCol, textCol string) ([]Document, error) {
	if err := t.Require(idCol, textCol); err != nil {
		return nil, err
	}
	ids, _ := t.Strings(idCol)
	texts, _ := t.Strings(textCol)
	docs := make([]Document, len(ids))
	for i := range ids {
		docs[i] = Document{ID: ids[i], Text: texts[i]}
	}
	return docs, nil
}

// IsMissing reports whether a trimmed cell counts as a missing value.
func IsMissing(v string) bool {
	switch strings.ToLower(v) {
	case "", "na", "n/a", "nan", "null", "none":
		return true
	}
	return false
}

func parseTimeMaybe(s string) (time.Time, bool) {
	layouts := []string{
		time.RFC3339, "2006-01-02", "2006/01/02", "02/01/2006", "01/02/2006",
		"2006-01-02 15:04", "2006-01-02 15:04:05", "1/2/2006 15:04", "1/2/2006 15:04:05",
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseNumeric parses a number honoring the configured or auto-detected locale.
// A trailing percent sign is dropped, so "12%" reads as 12. Cells are limited to
// digits, a leading sign, an exponent and separators; a thousands separator is
// only accepted between groups of three digits. Non-finite results are rejected.
func ParseNumeric(s string, opt Options) (float64, bool) {
	raw := strings.TrimSpace(strings.ReplaceAll(s, "\u00A0", " "))
	raw = strings.TrimSpace(strings.TrimSuffix(raw, "%"))
	if raw == "" {
		return 0, false
	}
	sign := ""
	if raw[0] == '-' || raw[0] == '+' {
		sign, raw = raw[:1], raw[1:]
	}
	mant, exp := raw, ""
	if i := strings.IndexAny(raw, "eE"); i >= 0 {
		mant, exp = raw[:i], raw[i+1:]
		if !validExponent(exp) {
			return 0, false
		}
		exp = "e" + exp
	}
	for _, r := range mant {
		if !(r >= '0' && r <= '9') && r != ',' && r != '.' && r != ' ' {
			return 0, false
		}
	}

	dec := opt.DecimalSeparator
	thou := opt.ThousandsSeparator
	if dec == 0 {
		cpos := strings.LastIndex(mant, ",")
		dpos := strings.LastIndex(mant, ".")
		switch {
		case cpos >= 0 && dpos >= 0 && cpos > dpos:
			dec, thou = ',', '.'
		case cpos >= 0 && dpos >= 0:
			dec, thou = '.', ','
		case cpos >= 0:
			dec = ','
		default:
			dec = '.'
		}
	}
	if thou == dec {
		thou = 0
	}

	intPart, frac := mant, ""
	if i := strings.IndexRune(mant, dec); i >= 0 {
		intPart, frac = mant[:i], mant[i+1:]
		if !allDigits(frac) {
			return 0, false
		}
	}
	intPart, ok := ungroup(intPart, dec, thou)
	if !ok || intPart == "" && frac == "" {
		return 0, false
	}
	if intPart == "" {
		intPart = "0"
	}
	num := sign + intPart
	if frac != "" {
		num += "." + frac
	}
	f, err := strconv.ParseFloat(num+exp, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// ungroup removes thousands separators from the integer part. With thou unset
// any one of ',', '.' or ' ' other than dec may group digits. Every group after
// the first must be exactly three digits.
func ungroup(s string, dec, thou rune) (string, bool) {
	sep := thou
	if sep == 0 {
		for _, c := range []rune{',', '.', ' '} {
			if c != dec && strings.ContainsRune(s, c) {
				sep = c
				break
			}
		}
	}
	if sep == 0 {
		return s, allDigits(s)
	}
	groups := strings.Split(s, string(sep))
	if len(groups) == 1 {
		return s, allDigits(s)
	}
	if n := len(groups[0]); n < 1 || n > 3 || !allDigits(groups[0]) {
		return "", false
	}
	for _, g := range groups[1:] {
		if len(g) != 3 || !allDigits(g) {
			return "", false
		}
	}
	return strings.Join(groups, ""), true
}

func validExponent(s string) bool {
	if s != "" && (s[0] == '-' || s[0] == '+') {
		s = s[1:]
	}
	return s != "" && allDigits(s)
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
