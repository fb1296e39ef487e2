package game

import (
	"bufio"
	"fmt"
	"go-pairs/internal/state"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var separatorRe = regexp.MustCompile(`^-{3,}[ \t]*$`)

// LoadSymbols loads symbol sets from a list of paths (files or directories).
// Each line holds a glyph optionally followed by a name; blank lines, "#"
// comments and "---" separators are skipped. Symbols repeating an earlier
// name are dropped.
func LoadSymbols(paths []string) ([]state.Symbol, error) {
	var symbols []state.Symbol
	seen := map[string]bool{}

	add := func(found []state.Symbol) {
		for _, sym := range found {
			if !seen[sym.Name] {
				seen[sym.Name] = true
				symbols = append(symbols, sym)
			}
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to access path %s: %w", path, err)
		}

		if info.IsDir() {
			files, err := os.ReadDir(path)
			if err != nil {
				return nil, fmt.Errorf("failed to read dir %s: %w", path, err)
			}
			for _, entry := range files {
				if entry.IsDir() {
					continue
				}
				found, err := loadFile(filepath.Join(path, entry.Name()))
				if err != nil {
					return nil, err
				}
				add(found)
			}
			continue
		}

		found, err := loadFile(path)
		if err != nil {
			return nil, err
		}
		add(found)
	}

	if len(symbols) == 0 {
		return nil, fmt.Errorf("no symbols found in %s", strings.Join(paths, ", "))
	}
	return symbols, nil
}

func loadFile(path string) ([]state.Symbol, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer file.Close()

	var symbols []state.Symbol
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || separatorRe.MatchString(line) {
			continue
		}

		fields := strings.Fields(line)
		sym := state.Symbol{Glyph: fields[0], Name: fields[0]}
		if len(fields) > 1 {
			sym.Name = strings.ToLower(strings.Join(fields[1:], " "))
		}
		symbols = append(symbols, sym)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan file %s: %w", path, err)
	}

	return symbols, nil
}
