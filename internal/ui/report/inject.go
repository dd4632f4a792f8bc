package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Markers delimit the region of a Markdown file that an artifact owns:
//
//	<!-- projectdocs:tree:start -->
//	...replaced on every run...
//	<!-- projectdocs:tree:end -->
func Markers(kind Kind) (start, end string) {
	return fmt.Sprintf("<!-- projectdocs:%s:start -->", kind), fmt.Sprintf("<!-- projectdocs:%s:end -->", kind)
}

// Fenced wraps an artifact the way it is embedded in Markdown. The function
// catalogue is Markdown already and goes in as is.
func Fenced(art Artifact) string {
	body := strings.TrimRight(art.Content, "\r\n")
	switch art.Kind {
	case KindUML:
		return "```plantuml\n" + body + "\n```"
	case KindTree:
		return "```text\n" + body + "\n```"
	}
	return body
}

// InjectArtifacts rewrites every marker region in filePath that belongs to
// one of arts and reports the kinds it replaced. Kinds without markers are
// left alone; a file with no matching markers is not rewritten.
func InjectArtifacts(filePath string, arts []Artifact) ([]Kind, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read markdown file %q: %w", filePath, err)
	}

	next := string(content)
	var injected []Kind
	for _, art := range arts {
		start, _ := Markers(art.Kind)
		if !strings.Contains(next, start) {
			continue
		}
		next, err = ReplaceBetweenMarkers(next, art.Kind, Fenced(art))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filePath, err)
		}
		injected = append(injected, art.Kind)
	}
	if len(injected) == 0 || next == string(content) {
		return injected, nil
	}
	return injected, replaceFile(filePath, next)
}

func ReplaceBetweenMarkers(content string, kind Kind, replacement string) (string, error) {
	newline := "\n"
	if strings.Contains(content, "\r\n") {
		newline = "\r\n"
	}

	start, end := Markers(kind)
	if strings.Count(content, start) != 1 || strings.Count(content, end) != 1 {
		return "", fmt.Errorf("markers for %q must appear exactly once", kind)
	}
	startIdx := strings.Index(content, start)
	endIdx := strings.Index(content, end)
	if endIdx < startIdx {
		return "", fmt.Errorf("end marker for %q precedes its start marker", kind)
	}

	body := strings.TrimRight(replacement, "\r\n")
	if newline != "\n" {
		body = strings.ReplaceAll(body, "\n", newline)
	}
	return content[:startIdx+len(start)] + newline + body + newline + content[endIdx:], nil
}

// replaceFile swaps the file in through a sibling temp file, so readers never
// see a half-written document.
func replaceFile(filePath, content string) error {
	tmp, err := os.CreateTemp(filepath.Dir(filePath), ".projectdocs-inject-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for %q: %w", filePath, err)
	}
	tmpName := tmp.Name()

	writeErr := error(nil)
	if _, err := tmp.WriteString(content); err != nil {
		writeErr = fmt.Errorf("write temp markdown file %q: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil && writeErr == nil {
		writeErr = fmt.Errorf("close temp markdown file %q: %w", tmpName, err)
	}
	if writeErr != nil {
		_ = os.Remove(tmpName)
		return writeErr
	}
	if info, err := os.Stat(filePath); err == nil {
		_ = os.Chmod(tmpName, info.Mode().Perm())
	}
	if err := os.Rename(tmpName, filePath); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace markdown file %q: %w", filePath, err)
	}
	return nil
}
