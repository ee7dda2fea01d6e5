package dataloader

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"crowdlog/internal/models"
	"crowdlog/internal/services/classifier"
	"crowdlog/internal/services/collation"
)

var (
	// ErrUnsupportedFormat is returned for files that are not CSV
	ErrUnsupportedFormat = errors.New("unsupported file format: only .csv files can be imported")

	// ErrInsufficientRows is returned when there is no data row below the header
	ErrInsufficientRows = errors.New("the file needs a header row and at least one data row")

	// ErrNoMonthColumns is returned when neither month nor total columns exist
	ErrNoMonthColumns = errors.New("no month columns (YYYY/M/D) or total column found")

	// ErrNoRecords is returned when every data row was skipped
	ErrNoRecords = errors.New("no valid records found")
)

var (
	codePrefixPattern = regexp.MustCompile(`^[A-Za-z0-9_\-]+[\s\x{3000}]+(.+)$`)
	leadingNumber     = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
)

// DataLoader turns uploaded timesheet exports into datasets
type DataLoader struct {
	aliases ColumnAliases
}

// New creates a new DataLoader
func New(aliases ColumnAliases) *DataLoader {
	return &DataLoader{aliases: aliases}
}

// ParseReport describes what happened to the rows of one import
type ParseReport struct {
	Encoding           string         `json:"encoding"`
	DataRows           int            `json:"data_rows"`
	Records            int            `json:"records"`
	SkippedNoEmployee  int            `json:"skipped_no_employee"`
	SkippedUnknownType int            `json:"skipped_unknown_type"`
	UnknownUnits       map[string]int `json:"unknown_units,omitempty"`
	UsedTotalColumn    bool           `json:"used_total_column"`
}

// Result is a parsed file ready to replace the current dataset
type Result struct {
	Dataset *models.Dataset
	Report  ParseReport
	File    models.FileMeta
}

// CheckFormat rejects files that are not CSV before any parsing happens
func CheckFormat(filename string) error {
	if !strings.EqualFold(filepath.Ext(filename), ".csv") {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(filename))
	}
	return nil
}

// Load decodes and parses an uploaded file
func (dl *DataLoader) Load(filename string, data []byte, pref Preference) (*Result, error) {
	if err := CheckFormat(filename); err != nil {
		return nil, err
	}

	decoded := Decode(data, pref)
	log.Printf("Decoded %s as %s (%d bytes)", filename, decoded.Encoding, len(data))

	dataset, report, err := dl.Parse(decoded.Text)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filename, err)
	}
	report.Encoding = decoded.Encoding

	meta := models.FileMeta{
		Name:     filepath.Base(filename),
		Encoding: decoded.Encoding,
	}
	if ts := ExtractTimestamp(filename); ts != nil {
		meta.Timestamp = ts.String()
	}

	return &Result{Dataset: dataset, Report: *report, File: meta}, nil
}

// Parse builds a dataset from decoded CSV text
func (dl *DataLoader) Parse(text string) (*models.Dataset, *ParseReport, error) {
	rows := NonBlankRows(Tokenize(text))
	if len(rows) < 2 {
		return nil, nil, ErrInsufficientRows
	}

	schema, err := ResolveSchema(rows[0], dl.aliases)
	if err != nil {
		return nil, nil, err
	}

	report := &ParseReport{
		DataRows:        len(rows) - 1,
		UsedTotalColumn: schema.UsesTotal,
	}
	if schema.UsesTotal {
		log.Printf("Warning: no month columns found, using total column %q", schema.Months[0].Key)
	}

	projects := make(map[string]bool)
	departments := make(map[string]bool)
	employees := make(map[string]bool)

	ds := models.NewDataset()
	for _, row := range rows[1:] {
		rec, ok := dl.normalizeRow(row, schema, report)
		if !ok {
			continue
		}
		ds.Records = append(ds.Records, rec)
		projects[rec.Project] = true
		departments[rec.Department] = true
		employees[rec.Employee] = true
	}

	if report.SkippedNoEmployee > 0 || report.SkippedUnknownType > 0 {
		log.Printf("Warning: skipped %d rows without employee and %d rows with unknown plan/actual type",
			report.SkippedNoEmployee, report.SkippedUnknownType)
	}
	for unit, n := range report.UnknownUnits {
		log.Printf("Warning: unrecognized unit %q on %d rows, treating values as hours", unit, n)
	}

	if len(ds.Records) == 0 {
		return nil, nil, fmt.Errorf("%w: check that the file has an employee column (%s) and a plan/actual column (%s)",
			ErrNoRecords, strings.Join(dl.aliases.Employee, "/"), strings.Join(dl.aliases.Type, "/"))
	}

	ds.Months = schema.MonthKeys()
	ds.Projects = sortedKeys(projects)
	ds.Departments = sortedKeys(departments)
	ds.Employees = sortedKeys(employees)
	report.Records = len(ds.Records)

	return ds, report, nil
}

// normalizeRow converts one data row into a record
func (dl *DataLoader) normalizeRow(row []string, s Schema, report *ParseReport) (models.Record, bool) {
	employee := cell(row, s.Employee)
	if employee == "" {
		report.SkippedNoEmployee++
		return models.Record{}, false
	}

	recordType, ok := classifier.ClassifyType(cell(row, s.Type))
	if !ok {
		report.SkippedUnknownType++
		return models.Record{}, false
	}

	unit := cell(row, s.Unit)
	multiplier, known := classifier.UnitMultiplier(unit)
	if !known {
		if report.UnknownUnits == nil {
			report.UnknownUnits = make(map[string]int)
		}
		report.UnknownUnits[unit]++
	}

	rec := models.Record{
		Employee:     employee,
		Project:      orUnset(StripCodePrefix(cell(row, s.Project))),
		Department:   orUnset(StripCodePrefix(cell(row, s.Department))),
		Type:         recordType,
		MonthlyHours: make(models.MonthlyHours, len(s.Months)),
	}
	for _, m := range s.Months {
		rec.MonthlyHours.Add(m.Key, ParseHours(cell(row, m.Index))*multiplier)
	}

	return rec, true
}

// StripCodePrefix removes a leading code token such as "P001 " or "100001 "
func StripCodePrefix(s string) string {
	if m := codePrefixPattern.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return s
}

// ParseHours reads the leading number of a cell. Anything unparseable,
// negative or out of range counts as zero.
func ParseHours(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	num := leadingNumber.FindString(s)
	if num == "" {
		return 0
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func orUnset(s string) string {
	if s == "" {
		return models.UnsetLabel
	}
	return s
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	collation.Sort(keys)
	return keys
}
