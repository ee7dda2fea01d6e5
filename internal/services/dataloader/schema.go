package dataloader

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v2"

	"crowdlog/internal/models"
)

// ColumnAliases lists the header names recognised for each semantic column.
// A header matches when it contains one of the names.
type ColumnAliases struct {
	Employee   []string `yaml:"employee"`
	Project    []string `yaml:"project"`
	Department []string `yaml:"department"`
	Type       []string `yaml:"type"`
	Unit       []string `yaml:"unit"`
	Total      []string `yaml:"total"`
	Exclude    []string `yaml:"exclude"`
}

// DefaultColumnAliases returns the header names used by CrowdLog exports
func DefaultColumnAliases() ColumnAliases {
	return ColumnAliases{
		Employee:   []string{"社員名", "担当者名", "従業員名", "メンバー名"},
		Project:    []string{"プロジェクト名", "プロジェクト", "PJ名"},
		Department: []string{"部署名", "メンバー部署", "部署", "所属"},
		Type:       []string{"メンバー種類", "予実フラグ", "予実", "種類", "区分"},
		Unit:       []string{"工数単位", "単位", "unit"},
		Total:      []string{"合計", "計", "Total"},
		Exclude:    []string{"コード", "code", "Code", "ID"},
	}
}

// LoadColumnAliases reads alias overrides from a YAML file. Lists missing
// from the file keep their defaults; an empty path returns the defaults.
func LoadColumnAliases(path string) (ColumnAliases, error) {
	aliases := DefaultColumnAliases()
	if path == "" {
		return aliases, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return aliases, fmt.Errorf("reading column aliases: %w", err)
	}

	var overrides ColumnAliases
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return aliases, fmt.Errorf("parsing column aliases %s: %w", path, err)
	}

	merge := func(dst *[]string, src []string) {
		if len(src) > 0 {
			*dst = src
		}
	}
	merge(&aliases.Employee, overrides.Employee)
	merge(&aliases.Project, overrides.Project)
	merge(&aliases.Department, overrides.Department)
	merge(&aliases.Type, overrides.Type)
	merge(&aliases.Unit, overrides.Unit)
	merge(&aliases.Total, overrides.Total)
	merge(&aliases.Exclude, overrides.Exclude)

	return aliases, nil
}

// MonthColumn is a header column that feeds one month bucket
type MonthColumn struct {
	Index int
	Key   string
}

// Schema maps semantic columns to header positions; -1 means absent
type Schema struct {
	Employee   int
	Project    int
	Department int
	Type       int
	Unit       int
	Total      int
	Months     []MonthColumn

	// UsesTotal is set when no month columns exist and the total column
	// stands in as the only bucket
	UsesTotal bool
}

// FindColumnIndex returns the first header containing one of names and none
// of exclude. When nothing qualifies the exclusions are dropped and the scan
// repeats. It returns -1 if no header matches.
func FindColumnIndex(headers, names, exclude []string) int {
	for i, h := range headers {
		if containsAny(h, names) && !containsAny(h, exclude) {
			return i
		}
	}
	for i, h := range headers {
		if containsAny(h, names) {
			return i
		}
	}
	return -1
}

// ResolveSchema locates the semantic columns of a header row
func ResolveSchema(header []string, aliases ColumnAliases) (Schema, error) {
	headers := make([]string, len(header))
	for i, h := range header {
		headers[i] = strings.TrimSpace(h)
	}

	s := Schema{
		Employee:   FindColumnIndex(headers, aliases.Employee, aliases.Exclude),
		Project:    FindColumnIndex(headers, aliases.Project, aliases.Exclude),
		Department: FindColumnIndex(headers, aliases.Department, aliases.Exclude),
		Type:       FindColumnIndex(headers, aliases.Type, aliases.Exclude),
		Unit:       FindColumnIndex(headers, aliases.Unit, aliases.Exclude),
		Total:      FindColumnIndex(headers, aliases.Total, aliases.Exclude),
	}

	for i, h := range headers {
		if key, ok := models.CanonicalMonthKey(h); ok {
			s.Months = append(s.Months, MonthColumn{Index: i, Key: key})
		}
	}

	if len(s.Months) == 0 {
		if s.Total < 0 {
			return s, ErrNoMonthColumns
		}
		s.Months = []MonthColumn{{Index: s.Total, Key: headers[s.Total]}}
		s.UsesTotal = true
	}

	return s, nil
}

// MonthKeys returns the distinct bucket keys in chronological order
func (s Schema) MonthKeys() []string {
	seen := make(map[string]bool, len(s.Months))
	keys := make([]string, 0, len(s.Months))
	for _, m := range s.Months {
		if !seen[m.Key] {
			seen[m.Key] = true
			keys = append(keys, m.Key)
		}
	}
	sort.Strings(keys)
	return keys
}

func containsAny(text string, parts []string) bool {
	for _, p := range parts {
		if p != "" && strings.Contains(text, p) {
			return true
		}
	}
	return false
}
