// Package shard splits a record file into smaller files at entity
// boundaries so they can be processed in parallel.
package shard

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

const maxLineSize = 4 * 1024 * 1024

// Plan describes where a file will be split
type Plan struct {
	Entities int   // distinct entity names
	Snippets int   // snippet lines, info lines excluded
	PerShard int   // target snippets per shard
	Breaks   []int // 1-based line numbers that end a shard
}

type firstSeen struct {
	line     int // header line number
	snippets int // snippet lines before this header
}

// PlanFile scans path and picks break points so every shard holds about
// snippets/shards snippet lines. A shard always starts at the first
// header of an entity, so all blocks of an entity before the break stay
// together. hasInfoLine is true for version 1 files, whose first body
// line is not a snippet.
func PlanFile(path string, shards int, hasInfoLine bool) (*Plan, error) {
	if shards <= 0 {
		return nil, fmt.Errorf("number of shards must be positive, got %d", shards)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer func() { _ = f.Close() }()

	seen := make(map[string]bool)
	var points []firstSeen
	lineNo, snippets := 0, 0
	inBlock, first := false, false

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			inBlock = false
		case !inBlock:
			inBlock, first = true, true
			fields := strings.Split(line, "\t")
			if len(fields) < 2 {
				return nil, fmt.Errorf("%s:%d: header has %d fields", path, lineNo, len(fields))
			}
			if !seen[fields[1]] {
				seen[fields[1]] = true
				points = append(points, firstSeen{line: lineNo, snippets: snippets})
			}
		default:
			if first && hasInfoLine {
				first = false
				continue
			}
			first = false
			snippets++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	plan := &Plan{Entities: len(seen), Snippets: snippets, PerShard: snippets / shards}
	if plan.PerShard == 0 {
		plan.PerShard = 1
	}
	saved := 0
	for _, p := range points[min(1, len(points)):] {
		if len(plan.Breaks) == shards-1 {
			break
		}
		if p.snippets >= saved+plan.PerShard {
			plan.Breaks = append(plan.Breaks, p.line-1)
			saved = p.snippets
		}
	}
	return plan, nil
}

// Split writes the shards of path as path.1, path.2, ... following plan
// and returns the file names
func Split(path string, plan *Plan) (names []string, err error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer func() { _ = in.Close() }()

	var out *os.File
	var w *bufio.Writer
	closeShard := func() error {
		if out == nil {
			return nil
		}
		err := errors.Join(w.Flush(), out.Close())
		out = nil
		return err
	}
	openShard := func() error {
		name := fmt.Sprintf("%s.%d", path, len(names)+1)
		f, err := os.Create(name)
		if err != nil {
			return fmt.Errorf("create shard: %w", err)
		}
		out, w = f, bufio.NewWriter(f)
		names = append(names, name)
		return nil
	}
	defer func() {
		if cerr := closeShard(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close shard: %w", cerr))
		}
	}()

	if err := openShard(); err != nil {
		return nil, err
	}

	breaks := plan.Breaks
	lineNo := 0
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	for scanner.Scan() {
		lineNo++
		if _, err := w.WriteString(scanner.Text() + "\n"); err != nil {
			return names, fmt.Errorf("write shard: %w", err)
		}
		if len(breaks) > 0 && lineNo == breaks[0] {
			breaks = breaks[1:]
			if err := closeShard(); err != nil {
				return names, fmt.Errorf("close shard: %w", err)
			}
			if err := openShard(); err != nil {
				return names, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return names, fmt.Errorf("read %s: %w", path, err)
	}
	return names, nil
}
