package db

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// personalTables fixes the set of personal-data relations and their CSV
// sources, in the order they are loaded and described.
var personalTables = []struct {
	Table   string
	CSVFile string
}{
	{"user_info", "user_info.csv"},
	{"orders", "orders.csv"},
	{"order_items", "order_items.csv"},
	{"transactions", "transactions.csv"},
	{"cart", "cart.csv"},
	{"addresses", "addresses.csv"},
	{"returns", "returns.csv"},
}

// PersonalTableNames returns the fixed table names in load order.
func PersonalTableNames() []string {
	names := make([]string, len(personalTables))
	for i, t := range personalTables {
		names[i] = t.Table
	}
	return names
}

// LoadPersonalData ingests the personal-data CSVs into their tables. A table
// that already holds rows is skipped, so repeated calls across queries never
// duplicate data. All columns are created as TEXT.
func (s *Store) LoadPersonalData(ctx context.Context, dataDir string) error {
	if _, err := os.Stat(dataDir); err != nil {
		return fmt.Errorf("personal data directory not found at %s: %w", dataDir, err)
	}

	loaded, skipped := 0, 0
	for _, entry := range personalTables {
		csvPath := filepath.Join(dataDir, entry.CSVFile)
		if _, err := os.Stat(csvPath); err != nil {
			s.logger.Warn("CSV file not found", "file", entry.CSVFile)
			continue
		}

		exists, err := s.tableExists(ctx, entry.Table)
		if err != nil {
			return fmt.Errorf("error checking table %s: %w", entry.Table, err)
		}
		if exists {
			var count int
			row := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", entry.Table))
			if err := row.Scan(&count); err != nil {
				return fmt.Errorf("error counting rows of %s: %w", entry.Table, err)
			}
			if count > 0 {
				s.logger.Info("Skipping table, already populated",
					"table", entry.Table, "rows", count)
				skipped++
				continue
			}
		}

		inserted, err := s.loadCSVTable(ctx, entry.Table, csvPath)
		if err != nil {
			return fmt.Errorf("error loading %s from %s: %w", entry.Table, entry.CSVFile, err)
		}

		s.logger.Info("Loaded table from CSV",
			"table", entry.Table, "file", entry.CSVFile, "rows", inserted)
		loaded++
	}

	s.logger.Info("CSV data ingestion complete", "loaded", loaded, "skipped", skipped)
	return nil
}

func (s *Store) loadCSVTable(ctx context.Context, table, csvPath string) (int, error) {
	f, err := os.Open(csvPath)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	headers, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("CSV has no header row: %w", err)
	}

	// Drop and recreate so a partially created empty table gets fresh data.
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", table)); err != nil {
		return 0, err
	}

	columnDefs := make([]string, len(headers))
	for i, col := range headers {
		columnDefs[i] = fmt.Sprintf("%q TEXT", col)
	}
	createStmt := fmt.Sprintf("CREATE TABLE %s (%s)", table, strings.Join(columnDefs, ", "))
	if _, err := s.db.ExecContext(ctx, createStmt); err != nil {
		return 0, err
	}

	placeholders := make([]string, len(headers))
	for i := range placeholders {
		placeholders[i] = "?"
	}
	insertStmt := s.bind(fmt.Sprintf("INSERT INTO %s VALUES (%s)", table, strings.Join(placeholders, ", ")))

	inserted := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return inserted, fmt.Errorf("error reading CSV record: %w", err)
		}

		values := make([]interface{}, len(headers))
		for i := range headers {
			if i < len(record) {
				values[i] = record[i]
			} else {
				values[i] = ""
			}
		}
		if _, err := s.db.ExecContext(ctx, insertStmt, values...); err != nil {
			return inserted, fmt.Errorf("error inserting row: %w", err)
		}
		inserted++
	}

	return inserted, nil
}

// DescribePersonalSchema builds the "table: columns" description handed to
// the model for SQL generation. Columns come from the CSV header rows, not
// the tables, so the description works even before ingestion ran.
func DescribePersonalSchema(dataDir string) (string, error) {
	var b strings.Builder
	for _, entry := range personalTables {
		f, err := os.Open(filepath.Join(dataDir, entry.CSVFile))
		if err != nil {
			return "", fmt.Errorf("error opening %s: %w", entry.CSVFile, err)
		}

		headers, err := csv.NewReader(f).Read()
		f.Close()
		if err != nil {
			return "", fmt.Errorf("error reading header of %s: %w", entry.CSVFile, err)
		}

		fmt.Fprintf(&b, "Table %s: %s\n", entry.Table, strings.Join(headers, ", "))
	}
	return b.String(), nil
}
