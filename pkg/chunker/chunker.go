// Package chunker splits extracted text into embedding-sized pieces.
package chunker

import (
	"strings"
	"unicode/utf8"
)

type Options struct {
	ChunkSize    int // target chunk size in characters
	ChunkOverlap int // overlap between consecutive fixed chunks
	Strategy     string
}

const (
	StrategyFixed     = "fixed"
	StrategyRecursive = "recursive"
)

type Chunk struct {
	Content string
	Index   int
}

func DefaultOptions() Options {
	return Options{
		ChunkSize:    1000,
		ChunkOverlap: 200,
		Strategy:     StrategyRecursive,
	}
}

// Split chunks text according to opts. Whitespace-only chunks are dropped;
// indexes are contiguous from zero.
func Split(text string, opts Options) []Chunk {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = 1000
	}
	if opts.ChunkOverlap < 0 {
		opts.ChunkOverlap = 0
	}

	var parts []string
	switch opts.Strategy {
	case StrategyFixed:
		parts = splitFixed(text, opts.ChunkSize, opts.ChunkOverlap)
	default:
		parts = splitRecursive(text, []string{"\n\n", "\n", ". ", " "}, opts.ChunkSize)
	}

	chunks := make([]Chunk, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		chunks = append(chunks, Chunk{Content: part, Index: len(chunks)})
	}
	return chunks
}

func splitFixed(text string, size, overlap int) []string {
	var parts []string
	runes := []rune(text)

	step := size - overlap
	if step <= 0 {
		step = size
	}

	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		parts = append(parts, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return parts
}

// splitRecursive splits on the coarsest separator that keeps pieces under
// size, descending to finer separators for oversized pieces.
func splitRecursive(text string, separators []string, size int) []string {
	if utf8.RuneCountInString(text) <= size {
		return []string{text}
	}

	if len(separators) == 0 {
		return splitFixed(text, size, 0)
	}

	sep := separators[0]
	var result []string
	var current strings.Builder

	for _, part := range strings.Split(text, sep) {
		if current.Len() > 0 && utf8.RuneCountInString(current.String()+sep+part) > size {
			result = append(result, splitRecursive(current.String(), separators[1:], size)...)
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(sep)
		}
		current.WriteString(part)
	}

	if current.Len() > 0 {
		result = append(result, splitRecursive(current.String(), separators[1:], size)...)
	}

	return result
}
