package parser

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/KaramelBytes/mortstat/internal/dataset"
)

type jsonLoader struct{}

func (jsonLoader) CanLoad(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".json")
}

// Load reads a JSON array of objects, such as the output of `mortstat clean`.
func (jsonLoader) Load(path string, _ Options) ([]dataset.RawRow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	var rows []dataset.RawRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decode json rows: %w", err)
	}
	return rows, nil
}
