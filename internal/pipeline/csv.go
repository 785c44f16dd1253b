package pipeline

import "strconv"

// resultHeader is the column layout shared by the per-group and master CSVs.
var resultHeader = []string{
	"operation", "image", "device", "model", "serial", "manufacturer", "doc_url", "status", "error",
}

// ResultRows serializes results into CSV rows with a header. Failure rows
// leave the field and doc_url columns empty; success rows leave error empty.
func ResultRows(results []ProcessResult) [][]string {
	rows := make([][]string, 0, len(results)+1)
	rows = append(rows, resultHeader)

	for _, r := range results {
		row := []string{
			strconv.Itoa(r.Operation),
			r.Image,
			"", "", "", "", "",
			r.Status,
			r.Err,
		}
		if r.Fields != nil {
			row[2] = r.Fields.Device
			row[3] = r.Fields.Model
			row[4] = r.Fields.Serial
			row[5] = r.Fields.Manufacturer
			row[6] = r.DocURL
		}
		rows = append(rows, row)
	}
	return rows
}
