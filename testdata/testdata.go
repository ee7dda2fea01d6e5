// Package testdata embeds a sample timesheet export used for demos and tests.
package testdata

import _ "embed"

// SampleName is the file name the embedded export is imported under
const SampleName = "crowdlog_20240701_090000.csv"

// SampleTimesheet is a small UTF-8 export with four employees over three months
//
//go:embed sample_timesheet.csv
var SampleTimesheet []byte
