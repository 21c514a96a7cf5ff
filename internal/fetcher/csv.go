package fetcher

import (
	"encoding/csv"
	"io"
	"time"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/zagros-analytics/suitability-cli/internal/model"
)

// DecodeMeasurements reads measurement rows from a headered CSV stream.
// Column order does not matter; names do. Dates must be ISO (YYYY-MM-DD) so
// the store's lexical ordering stays chronological.
func DecodeMeasurements(r io.Reader) ([]model.Measurement, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	dec, err := csvutil.NewDecoder(reader)
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: csv header")
	}

	var rows []model.Measurement
	for {
		var m model.Measurement
		if err := dec.Decode(&m); err == io.EOF {
			break
		} else if err != nil {
			return nil, eris.Wrap(err, "fetcher: csv decode row")
		}
		if _, err := time.Parse("2006-01-02", m.Date); err != nil {
			return nil, eris.Errorf("fetcher: row %d: date %q is not YYYY-MM-DD", len(rows)+1, m.Date)
		}
		rows = append(rows, m)
	}
	if len(rows) == 0 {
		return nil, eris.New("fetcher: csv contains no measurement rows")
	}
	return rows, nil
}

// EncodeMeasurements writes measurement rows as headered CSV.
func EncodeMeasurements(w io.Writer, rows []model.Measurement) error {
	writer := csv.NewWriter(w)
	enc := csvutil.NewEncoder(writer)
	for i := range rows {
		if err := enc.Encode(rows[i]); err != nil {
			return eris.Wrap(err, "fetcher: csv encode row")
		}
	}
	writer.Flush()
	return eris.Wrap(writer.Error(), "fetcher: csv flush")
}
