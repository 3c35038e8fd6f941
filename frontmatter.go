package mdfmt

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/naoina/toml"
	"gopkg.in/yaml.v3"
)

// ErrUnknownFrontMatter reports a front matter delimiter Decode cannot
// handle.
var ErrUnknownFrontMatter = errors.New("unknown front matter format")

// Front matter delimiters: YAML, TOML and JSON.
const (
	FrontMatterYAML = "---"
	FrontMatterTOML = "+++"
	FrontMatterJSON = ";;;"
)

const utf8BOM = "\uFEFF"

// FrontMatter is a metadata block at the very start of a document. It is
// rendered back exactly as read.
type FrontMatter struct {
	// Delimiter is one of FrontMatterYAML, FrontMatterTOML or
	// FrontMatterJSON.
	Delimiter string
	// Raw holds every source line of the block, delimiters included.
	Raw string
}

// Body returns the text between the delimiter lines.
func (f *FrontMatter) Body() string {
	lines := SplitLines(f.Raw)
	if len(lines) < 2 {
		return ""
	}
	return strings.Join(lines[1:len(lines)-1], "")
}

// Decode unmarshals the body into v according to the delimiter.
func (f *FrontMatter) Decode(v any) error {
	body := f.Body()
	switch f.Delimiter {
	case FrontMatterYAML:
		if err := yaml.Unmarshal([]byte(body), v); err != nil {
			return fmt.Errorf("front matter: yaml: %w", err)
		}
	case FrontMatterTOML:
		if err := toml.NewDecoder(strings.NewReader(body)).Decode(v); err != nil {
			return fmt.Errorf("front matter: toml: %w", err)
		}
	case FrontMatterJSON:
		dec := json.NewDecoder(strings.NewReader(body))
		if err := dec.Decode(v); err != nil {
			return fmt.Errorf("front matter: json: %w", err)
		}
	default:
		return fmt.Errorf("front matter %q: %w", f.Delimiter, ErrUnknownFrontMatter)
	}
	return nil
}

// detectFrontMatter recognizes a front matter block at the start of lines
// and reports how many lines it spans. The first inner line must look like
// metadata and a closing delimiter must exist.
func detectFrontMatter(lines []string) (*FrontMatter, int) {
	if len(lines) < 3 {
		return nil, 0
	}
	delim, ok := parseOpeningFrontMatterDelimiter(lines[0])
	if !ok || !frontMatterMetadataLikely(lines[1]) {
		return nil, 0
	}
	end, ok := findClosingFrontMatterDelimiter(lines, 1, delim)
	if !ok {
		return nil, 0
	}
	return &FrontMatter{
		Delimiter: delim,
		Raw:       strings.Join(lines[:end+1], ""),
	}, end + 1
}

func parseOpeningFrontMatterDelimiter(line string) (string, bool) {
	switch trimmed := strings.TrimSpace(strings.TrimPrefix(line, utf8BOM)); trimmed {
	case FrontMatterYAML, FrontMatterTOML, FrontMatterJSON:
		return trimmed, true
	default:
		return "", false
	}
}

func frontMatterMetadataLikely(line string) bool {
	trimmed := []byte(strings.TrimSpace(line))
	if len(trimmed) == 0 {
		return false
	}
	if bytes.HasPrefix(trimmed, []byte("{")) || bytes.HasPrefix(trimmed, []byte("[")) {
		return true
	}
	return bytes.ContainsAny(trimmed, ":=")
}

func findClosingFrontMatterDelimiter(lines []string, start int, delim string) (int, bool) {
	for i := start; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == delim {
			return i, true
		}
	}
	return 0, false
}
