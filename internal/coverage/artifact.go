// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package coverage

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// MaxArtifactSize bounds the coverage artifacts this reader will parse.
const MaxArtifactSize = 50 * 1024 * 1024 // 50MB

// ReadArtifact loads a coverage artifact produced by the (out of scope)
// instrumentation driver and returns the set of source paths with at
// least one hit, in the form InstrumentedRun results expect. Format is
// detected from the file extension (.info for lcov, .xml for Cobertura)
// and falls back to content sniffing.
func ReadArtifact(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("coverage: stat artifact: %w", err)
	}
	if info.Size() > MaxArtifactSize {
		return nil, fmt.Errorf("coverage: artifact %s is %d bytes, exceeds %d byte limit", path, info.Size(), MaxArtifactSize)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("coverage: open artifact: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".info":
		return parseLcov(f)
	case ".xml":
		return parseCobertura(io.LimitReader(f, MaxArtifactSize))
	default:
		return parseAuto(f)
	}
}

// parseLcov reads lcov (.info) format and returns every SF: file whose
// DA: records include at least one line with a positive hit count.
func parseLcov(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	var (
		out     []string
		current string
		hit     bool
	)

	flush := func() {
		if current != "" && hit {
			out = append(out, current)
		}
	}

	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "SF:"):
			flush()
			current = strings.TrimPrefix(line, "SF:")
			hit = false
		case strings.HasPrefix(line, "DA:"):
			parts := strings.Split(strings.TrimPrefix(line, "DA:"), ",")
			if len(parts) >= 2 {
				if n, _ := strconv.Atoi(parts[1]); n > 0 {
					hit = true
				}
			}
		case line == "end_of_record":
			flush()
			current, hit = "", false
		}
	}
	flush()
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("coverage: parse lcov: %w", err)
	}
	return out, nil
}

// parseCobertura reads Cobertura XML and returns every class filename
// with at least one line hit.
func parseCobertura(r io.Reader) ([]string, error) {
	type line struct {
		Hits int `xml:"hits,attr"`
	}
	type class struct {
		Filename string `xml:"filename,attr"`
		Lines    []line `xml:"lines>line"`
	}
	type pkg struct {
		Classes []class `xml:"classes>class"`
	}
	type coverageXML struct {
		Packages []pkg `xml:"packages>package"`
	}

	var cov coverageXML
	if err := xml.NewDecoder(r).Decode(&cov); err != nil {
		return nil, fmt.Errorf("coverage: decode cobertura xml: %w", err)
	}

	var out []string
	for _, p := range cov.Packages {
		for _, c := range p.Classes {
			for _, l := range c.Lines {
				if l.Hits > 0 {
					out = append(out, c.Filename)
					break
				}
			}
		}
	}
	return out, nil
}

// parseAuto sniffs the artifact's leading bytes to pick a format when
// the extension is absent or unrecognized.
func parseAuto(f *os.File) ([]string, error) {
	header := make([]byte, 256)
	n, err := f.Read(header)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("coverage: sniff artifact: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("coverage: rewind artifact: %w", err)
	}

	if strings.Contains(string(header[:n]), "<?xml") {
		return parseCobertura(io.LimitReader(f, MaxArtifactSize))
	}
	return parseLcov(f)
}
