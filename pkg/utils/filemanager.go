// =============================================================================
// Docx Mail Merge - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for the generator:
//   - Output directory management
//   - Output file naming from a row value
//   - Collision handling within one run
//   - Zip bundles of a run's documents
//   - Run summary logs
//
// NAMING:
//   The default file name is "{prefix} {value} {date}" where value comes from
//   the primary column, or the secondary column when the primary is empty.
//   Characters that are invalid in file names become underscores, and all
//   underscores in the final name are shown as spaces.
//
// =============================================================================

package utils

import (
	"archive/zip"
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/ginjaninja78/docx-mail-merge/internal/coerce"
)

// DefaultFileNameFormat is used when no format is configured.
const DefaultFileNameFormat = "{prefix} {value} {date}"

// MaxValueLength caps the row value part of a file name.
const MaxValueLength = 80

var (
	unsafeChars = regexp.MustCompile(`[\\/*?:"<>|]`)
	multiSpace  = regexp.MustCompile(` {2,}`)
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager places the files of one generation run.
type FileManager struct {
	// OutputDir is the directory where documents are written.
	OutputDir string

	mu    sync.Mutex
	used  map[string]int
	first map[string]string
}

// NewFileManager creates a FileManager for outputDir.
func NewFileManager(outputDir string) *FileManager {
	return &FileManager{
		OutputDir: outputDir,
		used:      make(map[string]int),
		first:     make(map[string]string),
	}
}

// EnsureDirectories creates the output directory if it doesn't exist.
func (fm *FileManager) EnsureDirectories() error {
	if err := os.MkdirAll(fm.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", fm.OutputDir, err)
	}
	return nil
}

// Reserve returns the output path for fileName. When the name was already
// handed out in this run, " (2)", " (3)", ... is appended before the
// extension. Names are compared case-insensitively and numbered copies keep
// the spelling of the first reservation. Files left by earlier runs are
// overwritten.
//
// PARAMETERS:
//   - fileName: A base file name including its extension.
//
// RETURNS:
//   - The full path inside OutputDir.
func (fm *FileManager) Reserve(fileName string) string {
	fm.mu.Lock()
	defer fm.mu.Unlock()

	key := strings.ToLower(fileName)
	n := fm.used[key]
	fm.used[key] = n + 1
	if n == 0 {
		fm.first[key] = fileName
		return filepath.Join(fm.OutputDir, fileName)
	}
	if original, ok := fm.first[key]; ok {
		fileName = original
	}

	ext := filepath.Ext(fileName)
	stem := strings.TrimSuffix(fileName, ext)
	for {
		n++
		candidate := fmt.Sprintf("%s (%d)%s", stem, n, ext)
		ckey := strings.ToLower(candidate)
		if fm.used[ckey] == 0 {
			fm.used[ckey] = 1
			fm.first[ckey] = candidate
			fm.used[key] = n
			return filepath.Join(fm.OutputDir, candidate)
		}
	}
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// SafeValue picks the value used in a file name: primary when it has text,
// otherwise secondary. Invalid file name characters become underscores and
// the result is trimmed and capped at MaxValueLength characters.
func SafeValue(primary, secondary any) string {
	value := ""
	if !coerce.IsMissing(primary) {
		value = strings.TrimSpace(coerce.StringOf(primary))
	}
	if value == "" && !coerce.IsMissing(secondary) {
		value = coerce.StringOf(secondary)
	}

	safe := strings.TrimSpace(unsafeChars.ReplaceAllString(value, "_"))
	if runes := []rune(safe); len(runes) > MaxValueLength {
		safe = string(runes[:MaxValueLength])
	}
	return safe
}

// NameParams holds the values substituted into a file name format.
type NameParams struct {
	Prefix    string
	Value     string
	Index     int
	Extension string
	Now       time.Time
}

// OutputFileName generates an output file name.
//
// PARAMETERS:
//   - format: The format string for the file name.
//             Placeholders:
//               {prefix} - The configured file prefix
//               {value}  - The safe row value
//               {date}   - Current date (YYYY-MM-DD)
//               {uuid}   - A random UUID
//               {index}  - 1-based row number
//   - params: The placeholder values.
//
// RETURNS:
//   - The generated file name with underscores shown as spaces and the
//     extension appended.
//
// EXAMPLE:
//   format: "{prefix} {value} {date}"
//   params: {Prefix: "Brief", Value: "Jan_Jansen", Extension: ".docx"}
//   output: "Brief Jan Jansen 2024-01-15.docx"
func OutputFileName(format string, params NameParams) string {
	if format == "" {
		format = DefaultFileNameFormat
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}

	name := strings.NewReplacer(
		"{prefix}", params.Prefix,
		"{value}", params.Value,
		"{date}", now.Format("2006-01-02"),
		"{uuid}", uuid.New().String(),
		"{index}", strconv.Itoa(params.Index),
	).Replace(format)

	name = unsafeChars.ReplaceAllString(name, "_")
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.TrimSpace(multiSpace.ReplaceAllString(name, " "))
	if name == "" {
		name = uuid.New().String()
	}

	ext := params.Extension
	if ext != "" && !strings.HasSuffix(strings.ToLower(name), strings.ToLower(ext)) {
		name += ext
	}
	return name
}

// =============================================================================
// ZIP BUNDLE
// =============================================================================

// BundleFileName returns the name of a run's zip bundle, e.g.
// "Brief_documents_20240115_1430.zip".
func BundleFileName(prefix string, now time.Time) string {
	return fmt.Sprintf("%s_documents_%s.zip", prefix, now.Format("20060102_1504"))
}

// WriteZip stores files in a zip archive at zipPath. Entries are named by
// their base name.
func WriteZip(zipPath string, files []string) error {
	out, err := os.Create(zipPath)
	if err != nil {
		return fmt.Errorf("failed to create zip: %w", err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	for _, path := range files {
		if err := addToZip(zw, path); err != nil {
			zw.Close()
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize zip: %w", err)
	}
	return nil
}

func addToZip(zw *zip.Writer, path string) error {
	in, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer in.Close()

	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:     filepath.Base(path),
		Method:   zip.Deflate,
		Modified: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to add %s to zip: %w", path, err)
	}
	if _, err := io.Copy(w, in); err != nil {
		return fmt.Errorf("failed to add %s to zip: %w", path, err)
	}
	return nil
}

// =============================================================================
// RUN SUMMARY
// =============================================================================

// RunSummary contains summary information about a generation run.
type RunSummary struct {
	RunID     string
	StartTime time.Time
	EndTime   time.Time
	Template  string
	Data      string
	TotalRows int
	Generated int
	Failed    int
	Documents []DocumentInfo
}

// DocumentInfo describes one row of a run.
type DocumentInfo struct {
	Row        int
	Value      string
	OutputFile string
	Size       int64
	Error      string
}

// WriteSummaryLog writes a run summary to a log file.
//
// PARAMETERS:
//   - summary: The run summary.
//   - outputDir: The directory to write the summary file.
//
// RETURNS:
//   - The path to the summary file.
//   - An error if writing fails.
func WriteSummaryLog(summary RunSummary, outputDir string) (string, error) {
	timestamp := summary.StartTime.Format("20060102_150405")
	summaryPath := filepath.Join(outputDir, fmt.Sprintf("merge_summary_%s.txt", timestamp))

	file, err := os.Create(summaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	duration := summary.EndTime.Sub(summary.StartTime)
	fmt.Fprintf(writer, "Docx Mail Merge - Run Summary\n"+
		"================================================================================\n\n"+
		"Run Information:\n"+
		"  Run ID:         %s\n"+
		"  Template:       %s\n"+
		"  Data:           %s\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n\n"+
		"Statistics:\n"+
		"  Total Rows:     %d\n"+
		"  Generated:      %d\n"+
		"  Failed:         %d\n\n",
		summary.RunID,
		summary.Template,
		summary.Data,
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		duration.String(),
		summary.TotalRows,
		summary.Generated,
		summary.Failed)

	var ok, failed []DocumentInfo
	for _, d := range summary.Documents {
		if d.Error != "" {
			failed = append(failed, d)
		} else {
			ok = append(ok, d)
		}
	}

	if len(ok) > 0 {
		writer.WriteString("Generated Documents:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		for _, d := range ok {
			fmt.Fprintf(writer, "  Row %-5d %s (%s)\n", d.Row, filepath.Base(d.OutputFile), humanize.Bytes(uint64(d.Size)))
		}
		writer.WriteString("\n")
	}

	if len(failed) > 0 {
		writer.WriteString("Failed Rows:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		for _, d := range failed {
			fmt.Fprintf(writer, "  Row %-5d %s\n", d.Row, d.Value)
			fmt.Fprintf(writer, "  Error: %s\n\n", d.Error)
		}
	}

	writer.WriteString("================================================================================\n" +
		"End of Summary\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}

	return summaryPath, nil
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// GetFileSize returns the size of a file in bytes.
func GetFileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
