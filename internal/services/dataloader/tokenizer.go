package dataloader

import "strings"

// Tokenize splits CSV text into rows of fields.
//
// Quoted fields may contain commas and line breaks, "" inside quotes is a
// literal quote, and any other quote toggles the quoted state. \r\n, \r and
// \n all end a row. A quote left open at the end of input is treated as
// closed.
func Tokenize(text string) [][]string {
	var rows [][]string
	var row []string
	var field strings.Builder
	inQuotes := false

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '"':
			if inQuotes && i+1 < len(text) && text[i+1] == '"' {
				field.WriteByte('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case c == ',' && !inQuotes:
			row = append(row, field.String())
			field.Reset()
		case (c == '\n' || c == '\r') && !inQuotes:
			if c == '\r' && i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			row = append(row, field.String())
			field.Reset()
			rows = append(rows, row)
			row = nil
		default:
			field.WriteByte(c)
		}
	}

	if field.Len() > 0 || len(row) > 0 {
		row = append(row, field.String())
		rows = append(rows, row)
	}
	return rows
}

// NonBlankRows drops rows whose fields are all empty or whitespace
func NonBlankRows(rows [][]string) [][]string {
	kept := make([][]string, 0, len(rows))
	for _, row := range rows {
		for _, f := range row {
			if strings.TrimSpace(f) != "" {
				kept = append(kept, row)
				break
			}
		}
	}
	return kept
}
