package worker

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const utf8BOM = "\ufeff"

// ReadFileList reads the files named by a list file. Text lists carry one
// path per line; CSV lists carry the path in the first column. Blank entries
// are skipped.
func ReadFileList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file list %s: %w", path, err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return readCSVList(f)
	}
	return readTextList(f)
}

func readTextList(r io.Reader) ([]string, error) {
	var files []string
	scanner := bufio.NewScanner(r)
	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if first {
			line = strings.TrimPrefix(line, utf8BOM)
			first = false
		}
		if entry := strings.TrimSpace(line); entry != "" {
			files = append(files, entry)
		}
	}
	if err := scanner.Err(); err != nil {
		return files, fmt.Errorf("failed to read file list: %w", err)
	}
	return files, nil
}

func readCSVList(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var files []string
	first := true
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return files, nil
		}
		if err != nil {
			return files, fmt.Errorf("failed to read file list: %w", err)
		}
		if len(record) == 0 {
			continue
		}
		entry := record[0]
		if first {
			entry = strings.TrimPrefix(entry, utf8BOM)
			first = false
		}
		if entry = strings.TrimSpace(entry); entry != "" {
			files = append(files, entry)
		}
	}
}
