package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/vkoshel/solarfeed/internal/telemetry"
)

// header is written once when the file is created. A pre-populated seed file
// with the same columns is accepted as-is.
var header = []string{"timestamp", "temperature_c", "power_w"}

// CSVStore persists the reading stream as an append-only CSV file. Each
// append writes one whole record and flushes before returning, so readers in
// other processes never observe a partially written row at record
// granularity. A malformed trailing record (interrupted append) is skipped on
// read, never fatal.
type CSVStore struct {
	path string
	mu   sync.Mutex
}

// NewCSVStore opens (or creates) the store at path, writing the column header
// when the file does not exist yet.
func NewCSVStore(path string) (*CSVStore, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}

	s := &CSVStore{path: path}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := s.writeHeader(); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, fmt.Errorf("stat store file: %w", err)
	}

	return s, nil
}

// Path returns the location of the underlying file.
func (s *CSVStore) Path() string {
	return s.path
}

// Append persists one reading at the end of the stream.
func (s *CSVStore) Append(r telemetry.Reading) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open store file: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	record := []string{
		r.Timestamp.UTC().Format(time.RFC3339),
		strconv.FormatFloat(r.TemperatureC, 'f', 2, 64),
		strconv.FormatFloat(r.PowerW, 'f', 1, 64),
	}
	if err := w.Write(record); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush record: %w", err)
	}

	return nil
}

// LoadAll returns every well-formed reading in append order. A missing or
// empty file yields an empty slice; malformed rows are skipped and a read
// error mid-file ends the stream at the last good record.
func (s *CSVStore) LoadAll() ([]telemetry.Reading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []telemetry.Reading{}, nil
		}
		return nil, fmt.Errorf("open store file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // tolerate short rows; validated below

	// Header row. An empty file is a valid empty stream.
	if _, err := reader.Read(); err != nil {
		if err == io.EOF {
			return []telemetry.Reading{}, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	var readings []telemetry.Reading
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("store: truncating read at malformed record: %v", err)
			break
		}

		r, ok := parseRow(row)
		if !ok {
			log.Printf("store: skipping malformed record %q", row)
			continue
		}
		readings = append(readings, r)
	}

	return readings, nil
}

// LoadTail returns up to n of the most recent readings, oldest first.
func (s *CSVStore) LoadTail(n int) ([]telemetry.Reading, error) {
	readings, err := s.LoadAll()
	if err != nil {
		return nil, err
	}
	if n > 0 && len(readings) > n {
		readings = readings[len(readings)-n:]
	}
	return readings, nil
}

func (s *CSVStore) writeHeader() error {
	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create store file: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	w.Flush()
	return w.Error()
}

func parseRow(row []string) (telemetry.Reading, bool) {
	if len(row) < 3 {
		return telemetry.Reading{}, false
	}

	ts, err := time.Parse(time.RFC3339, row[0])
	if err != nil {
		return telemetry.Reading{}, false
	}
	temp, err := strconv.ParseFloat(row[1], 64)
	if err != nil {
		return telemetry.Reading{}, false
	}
	power, err := strconv.ParseFloat(row[2], 64)
	if err != nil {
		return telemetry.Reading{}, false
	}

	return telemetry.Reading{
		Timestamp:    ts.UTC(),
		TemperatureC: temp,
		PowerW:       power,
	}, true
}
