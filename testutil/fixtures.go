package testutil

import (
	"testing"
)

// SampleCSV is a small numeric dataset: col1 = 1,2,3 and col2 = 5,6,7
const SampleCSV = "col1,col2\n1,5\n2,6\n3,7\n"

// MixedCSV has one numeric column, one text column and a gap
const MixedCSV = "city,population,note\nOslo,700,north\nLima,,coast\nPune,300,west\nRome,1000,\n"

// SampleTSV is SampleCSV with tab separators
const SampleTSV = "col1\tcol2\n1\t5\n2\t6\n3\t7\n"

// CreateCSVFixture writes SampleCSV to name inside dir and returns its path
func CreateCSVFixture(t *testing.T, dir, name string) string {
	t.Helper()
	return WriteFile(t, dir, name, []byte(SampleCSV))
}

// CreateDatasetFixture writes content to a fresh temp directory and returns its path
func CreateDatasetFixture(t *testing.T, name, content string) string {
	t.Helper()
	return WriteFile(t, CreateTempDir(t), name, []byte(content))
}
