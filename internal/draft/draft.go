// Package draft seeds a journal draft from a file on disk.
package draft

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

var extraneousWhitespace = regexp.MustCompile(`[ \t\f\v]+`)

// Load returns the text of path. PDFs are flattened to plain text; anything
// else is read as UTF-8.
func Load(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("draft path is empty")
	}
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return loadPDF(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read draft: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

func loadPDF(path string) (string, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}
	defer file.Close()

	content, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract pdf text: %w", err)
	}

	var builder strings.Builder
	if _, err := io.Copy(&builder, content); err != nil {
		return "", err
	}

	text := extraneousWhitespace.ReplaceAllString(builder.String(), " ")
	return strings.TrimSpace(text), nil
}
