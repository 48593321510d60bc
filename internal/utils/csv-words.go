package utils

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/scythe504/undercover-backend/internal"
)

// ReadCsvFile loads categories from rows of category_id,category_name,word.
// A leading header row is skipped. Categories keep first-seen order.
func ReadCsvFile(filePath string) ([]internal.Category, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("unable to read input file %s: %w", filePath, err)
	}
	defer f.Close()

	categories, err := ParseWordsCSV(f)
	if err != nil {
		return nil, fmt.Errorf("unable to parse %s as CSV: %w", filePath, err)
	}
	return categories, nil
}

func ParseWordsCSV(r io.Reader) ([]internal.Category, error) {
	csvReader := csv.NewReader(r)
	csvReader.FieldsPerRecord = 3
	csvReader.TrimLeadingSpace = true

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, err
	}

	var categories []internal.Category
	index := make(map[string]int)

	for i, record := range records {
		id := strings.TrimSpace(record[0])
		name := strings.TrimSpace(record[1])
		word := strings.TrimSpace(record[2])

		if i == 0 && strings.EqualFold(id, "category_id") {
			continue
		}
		if id == "" || word == "" {
			continue
		}
		if id == internal.CustomCategory {
			return nil, fmt.Errorf("line %d: category id %q is reserved", i+1, id)
		}

		pos, ok := index[id]
		if !ok {
			if name == "" {
				name = id
			}
			pos = len(categories)
			index[id] = pos
			categories = append(categories, internal.Category{ID: id, Name: name})
		}
		categories[pos].Words = append(categories[pos].Words, word)
	}

	for i := range categories {
		categories[i].Words = SanitizeWords(categories[i].Words)
	}

	return categories, nil
}
