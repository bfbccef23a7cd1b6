package memory

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

// FileSignature computes a deterministic digest of a file's structural shape
// from its ordered column names. Identical column sets in identical order
// always produce the same signature, which the retriever uses for
// exact-match boosting.
func FileSignature(columns []string) string {
	h := sha256.New()
	for _, col := range columns {
		h.Write([]byte(strings.TrimSpace(strings.ToLower(col))))
		h.Write([]byte{0x1f})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// ClusterKey identifies a consolidation cluster: one namespace, one file
// shape, one destination table. It doubles as the reflection record id so
// that a re-consolidation supersedes the previous reflection.
func ClusterKey(namespace, fileSignature, targetTable string) string {
	h := sha256.Sum256([]byte(namespace + "\x1f" + fileSignature + "\x1f" + targetTable))
	return hex.EncodeToString(h[:16])
}

var (
	isoDateRe   = regexp.MustCompile(`\d{4}[-_.]?\d{2}[-_.]?\d{2}`)
	timeRe      = regexp.MustCompile(`\d{2}[:h]\d{2}(?::\d{2})?`)
	digitRunRe  = regexp.MustCompile(`\d{3,}`)
	whitespaceR = regexp.MustCompile(`\s+`)
)

// NormalizeFilename reduces a filename to its stable shape: volatile tokens
// (dates, times, run numbers) become placeholders so that
// "inventory_2025-08-12.xlsx" and "inventory_2025-08-19.xlsx" share one
// pattern.
func NormalizeFilename(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))

	ext := ""
	if idx := strings.LastIndex(s, "."); idx > 0 {
		ext = s[idx:]
		s = s[:idx]
	}

	s = isoDateRe.ReplaceAllString(s, "{date}")
	s = timeRe.ReplaceAllString(s, "{time}")
	s = digitRunRe.ReplaceAllString(s, "{n}")
	s = whitespaceR.ReplaceAllString(s, "_")

	return s + ext
}

// DescribeColumns turns a column list into the free-text description that
// similarity scoring runs against.
func DescribeColumns(targetTable string, columns []string) string {
	parts := make([]string, 0, len(columns))
	for _, col := range columns {
		parts = append(parts, strings.TrimSpace(col))
	}
	desc := "columns: " + strings.Join(parts, ", ")
	if targetTable != "" {
		desc = "import into " + targetTable + "; " + desc
	}
	return desc
}
