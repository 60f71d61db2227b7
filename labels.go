package playertrack

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// LoadLabels reads the class labels a detection Model was trained on from
// the given text file.  It should contain one label per line, blank lines
// are kept so line numbers match class indexes.
func LoadLabels(file string) ([]string, error) {

	f, err := os.Open(file)

	if err != nil {
		return nil, fmt.Errorf("error opening labels file: %w", err)
	}

	defer f.Close()

	scanner := bufio.NewScanner(f)

	var labels []string

	for scanner.Scan() {
		labels = append(labels, strings.TrimSpace(scanner.Text()))
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading labels file: %w", err)
	}

	return labels, nil
}

// ClassIndexes resolves a comma delimited list of label names, eg:
// "person,sports ball", to their class indexes.  Names not found in labels
// are returned separately.
func ClassIndexes(labels []string, list string) (found []int, missing []string) {

	index := make(map[string]int, len(labels))

	for i, l := range labels {
		if _, dup := index[l]; !dup {
			index[l] = i
		}
	}

	for _, word := range strings.Split(list, ",") {

		name := strings.TrimSpace(word)

		if name == "" {
			continue
		}

		if i, ok := index[name]; ok {
			found = append(found, i)
		} else {
			missing = append(missing, name)
		}
	}

	return found, missing
}
