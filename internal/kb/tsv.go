package kb

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// TSVResolver serves lookups from an in-memory table loaded from a file of
// "name<TAB>type" lines
type TSVResolver struct {
	types map[string]EntityType
}

// LoadTSV reads a name/type table; blank lines and # comments are skipped
func LoadTSV(path string) (*TSVResolver, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open kb file: %w", err)
	}
	defer func() { _ = file.Close() }()

	r := &TSVResolver{types: make(map[string]EntityType)}
	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, typ, ok := strings.Cut(line, "\t")
		if !ok {
			return nil, fmt.Errorf("%s:%d: expected name<TAB>type", path, lineNo)
		}
		t, ok := ParseEntityType(typ)
		if !ok {
			return nil, fmt.Errorf("%s:%d: unknown entity type %q", path, lineNo, typ)
		}
		r.types[strings.TrimSpace(name)] = t
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan kb file: %w", err)
	}
	return r, nil
}

// Resolve returns the stored type of name
func (r *TSVResolver) Resolve(name string) (EntityType, bool, error) {
	t, ok := r.types[name]
	return t, ok, nil
}

// Len returns the number of entities loaded
func (r *TSVResolver) Len() int {
	return len(r.types)
}
