package dataloader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindColumnIndex(t *testing.T) {
	exclude := []string{"コード", "ID"}
	names := []string{"プロジェクト名", "プロジェクト"}

	tests := []struct {
		name    string
		headers []string
		want    int
	}{
		{"exact", []string{"社員名", "プロジェクト名"}, 1},
		{"substring", []string{"社員名", "担当プロジェクト"}, 1},
		{"first match wins", []string{"プロジェクト", "プロジェクト名"}, 0},
		{"exclusion skips code column", []string{"プロジェクトコード", "プロジェクト名"}, 1},
		{"exclusion dropped on retry", []string{"社員名", "プロジェクトコード"}, 1},
		{"not found", []string{"社員名", "部署名"}, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FindColumnIndex(tt.headers, names, exclude))
		})
	}
}

func TestResolveSchema(t *testing.T) {
	header := []string{"社員名", "社員ID", "プロジェクト名", "部署名", "予実フラグ", "工数単位", "2024/4/1", "2024/5/1", "合計"}

	s, err := ResolveSchema(header, DefaultColumnAliases())
	require.NoError(t, err)

	assert.Equal(t, 0, s.Employee)
	assert.Equal(t, 2, s.Project)
	assert.Equal(t, 3, s.Department)
	assert.Equal(t, 4, s.Type)
	assert.Equal(t, 5, s.Unit)
	assert.Equal(t, 8, s.Total)
	assert.False(t, s.UsesTotal)
	assert.Equal(t, []MonthColumn{{Index: 6, Key: "2024-04"}, {Index: 7, Key: "2024-05"}}, s.Months)
	assert.Equal(t, []string{"2024-04", "2024-05"}, s.MonthKeys())
}

func TestResolveSchemaTotalFallback(t *testing.T) {
	s, err := ResolveSchema([]string{"社員名", "予実", " 合計 "}, DefaultColumnAliases())
	require.NoError(t, err)

	assert.True(t, s.UsesTotal)
	assert.Equal(t, []MonthColumn{{Index: 2, Key: "合計"}}, s.Months)
}

func TestResolveSchemaNoMonths(t *testing.T) {
	_, err := ResolveSchema([]string{"社員名", "予実"}, DefaultColumnAliases())
	assert.ErrorIs(t, err, ErrNoMonthColumns)
}

func TestResolveSchemaIgnoresLooseDates(t *testing.T) {
	s, err := ResolveSchema([]string{"社員名", "予実", "2024-04-01", "24/4/1", "2024/4/1"}, DefaultColumnAliases())
	require.NoError(t, err)
	assert.Equal(t, []MonthColumn{{Index: 4, Key: "2024-04"}}, s.Months)
}

func TestLoadColumnAliases(t *testing.T) {
	aliases, err := LoadColumnAliases("")
	require.NoError(t, err)
	assert.Equal(t, DefaultColumnAliases(), aliases)

	path := filepath.Join(t.TempDir(), "columns.yaml")
	yamlDoc := "employee:\n  - Member\nexclude:\n  - No.\n"
	require.NoError(t, os.WriteFile(path, []byte(yamlDoc), 0644))

	aliases, err = LoadColumnAliases(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Member"}, aliases.Employee)
	assert.Equal(t, []string{"No."}, aliases.Exclude)
	assert.Equal(t, DefaultColumnAliases().Project, aliases.Project)

	_, err = LoadColumnAliases(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
