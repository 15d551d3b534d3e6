// package formatter renders custom lists to export formats (JSON, CSV, Markdown, plain text, XLSX)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mozillazg/go-unidecode"
	"github.com/xuri/excelize/v2"

	"github.com/desertthunder/cinelist/internal/models"
	"github.com/desertthunder/cinelist/internal/shared"
)

// PosterBaseURL is prefixed to a movie's poster path in Markdown exports.
const PosterBaseURL = "https://image.tmdb.org/t/p/w185"

// Format is an export file format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "txt"
	FormatXLSX     Format = "xlsx"
)

// Formats lists every supported format.
var Formats = []Format{FormatJSON, FormatCSV, FormatMarkdown, FormatText, FormatXLSX}

// ParseFormat accepts a format name and a few common aliases ("md", "text", "excel").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidFlag, s)
	}
}

var csvHeaders = []string{"Position", "Movie ID", "Title", "Year", "Runtime", "Genres", "Added", "Notes"}

func itemRecord(pos int, item models.CustomListItem) []string {
	title, year, runtime, genres := "", "", "", ""
	if m := item.Movie; m != nil {
		title = m.Title
		year = m.Year()
		if m.Runtime > 0 {
			runtime = strconv.Itoa(m.Runtime)
		}
		genres = strings.Join(m.Genres, "; ")
	}
	return []string{
		strconv.Itoa(pos),
		strconv.FormatInt(item.MovieID, 10),
		title,
		year,
		runtime,
		genres,
		item.AddedAt.UTC().Format(time.RFC3339),
		item.Notes,
	}
}

// movieLabel renders "Title (Year)" or a placeholder for items whose detail could not be resolved.
func movieLabel(item models.CustomListItem) string {
	if item.Movie == nil || item.Movie.Title == "" {
		return fmt.Sprintf("Movie #%d (details unavailable)", item.MovieID)
	}
	if y := item.Movie.Year(); y != "" {
		return fmt.Sprintf("%s (%s)", item.Movie.Title, y)
	}
	return item.Movie.Title
}

// ExportToCSV converts a list's items to CSV with one row per movie.
func ExportToCSV(list *models.CustomList) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(csvHeaders); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for i, item := range list.Items {
		if err := writer.Write(itemRecord(i+1, item)); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportToMarkdown converts a list to a Markdown document with poster thumbnails when known.
func ExportToMarkdown(list *models.CustomList) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", list.Name)
	if list.Description != "" {
		fmt.Fprintf(&buf, "**Description**: %s\n\n", list.Description)
	}
	fmt.Fprintf(&buf, "**Movies**: %d\n", len(list.Items))
	fmt.Fprintf(&buf, "**Visibility**: %s\n", shared.VisibilityString(list.IsPublic))
	if len(list.Tags) > 0 {
		fmt.Fprintf(&buf, "**Tags**: %s\n", strings.Join(list.Tags, ", "))
	}
	buf.WriteString("\n## Movies\n\n")

	for i, item := range list.Items {
		line := fmt.Sprintf("%d. %s", i+1, movieLabel(item))
		if item.Movie != nil && item.Movie.Runtime > 0 {
			line += fmt.Sprintf(" [%s]", shared.FormatRuntime(item.Movie.Runtime))
		}
		buf.WriteString(line + "\n")
		if item.Movie != nil && item.Movie.PosterPath != "" {
			fmt.Fprintf(&buf, "   ![%s](%s%s)\n", item.Movie.Title, PosterBaseURL, item.Movie.PosterPath)
		}
		if item.Notes != "" {
			fmt.Fprintf(&buf, "   > %s\n", item.Notes)
		}
	}
	return buf.Bytes(), nil
}

// ExportToText converts a list to plain text.
func ExportToText(list *models.CustomList) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "List: %s\n", list.Name)
	if list.Description != "" {
		fmt.Fprintf(&buf, "Description: %s\n", list.Description)
	}
	fmt.Fprintf(&buf, "Movies: %d\n\n", len(list.Items))

	for i, item := range list.Items {
		fmt.Fprintf(&buf, "%d. %s\n", i+1, movieLabel(item))
		if item.Notes != "" {
			fmt.Fprintf(&buf, "   %s\n", item.Notes)
		}
	}
	return buf.Bytes(), nil
}

// ExportToXLSX builds a workbook with a "Movies" sheet of items and a "List" sheet of metadata.
func ExportToXLSX(list *models.CustomList) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const moviesSheet, listSheet = "Movies", "List"
	if err := f.SetSheetName("Sheet1", moviesSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	rows := make([][]string, 0, len(list.Items)+1)
	rows = append(rows, csvHeaders)
	for i, item := range list.Items {
		rows = append(rows, itemRecord(i+1, item))
	}
	if err := writeRows(f, moviesSheet, rows); err != nil {
		return nil, err
	}
	last, _ := excelize.CoordinatesToCellName(len(csvHeaders), 1)
	if err := f.SetCellStyle(moviesSheet, "A1", last, bold); err != nil {
		return nil, fmt.Errorf("failed to style header: %w", err)
	}
	_ = f.SetColWidth(moviesSheet, "C", "C", 40)
	_ = f.SetColWidth(moviesSheet, "H", "H", 60)

	if _, err := f.NewSheet(listSheet); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	meta := [][]string{
		{"Name", list.Name},
		{"Description", list.Description},
		{"Visibility", shared.VisibilityString(list.IsPublic)},
		{"Tags", strings.Join(list.Tags, ", ")},
		{"Created", list.CreatedAt.UTC().Format(time.RFC3339)},
		{"Updated", list.UpdatedAt.UTC().Format(time.RFC3339)},
		{"Movies", strconv.Itoa(len(list.Items))},
	}
	if err := writeRows(f, listSheet, meta); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(listSheet, "A1", fmt.Sprintf("A%d", len(meta)), bold); err != nil {
		return nil, fmt.Errorf("failed to style labels: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to encode xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, rows [][]string) error {
	for r, row := range rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return fmt.Errorf("invalid cell: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("failed to write %s!%s: %w", sheet, cell, err)
			}
		}
	}
	return nil
}

// ToMetadataJSON generates a JSON representation of list metadata (without items)
func ToMetadataJSON(list *models.CustomList) ([]byte, error) {
	meta := *list
	meta.Items = nil
	return shared.MarshalJSON(struct {
		models.CustomList
		ItemCount int `json:"itemCount"`
	}{meta, len(list.Items)}, true)
}

// Slug turns a list name into an ASCII file name, transliterating accents and non-Latin scripts.
//
// Falls back to "list" when nothing usable remains.
func Slug(name string) string {
	ascii := strings.ToLower(unidecode.Unidecode(name))
	var b strings.Builder
	dash := false
	for _, r := range ascii {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimRight(b.String(), "-")
	if slug == "" {
		return "list"
	}
	return slug
}

// BaseName returns the file stem used for a list's exports: "<slug>-<first 8 of id>".
func BaseName(list *models.CustomList) string {
	id := list.ID
	if len(id) > 8 {
		id = id[:8]
	}
	if id == "" {
		return Slug(list.Name)
	}
	return Slug(list.Name) + "-" + id
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	ItemsFile    string
	MetadataFile string
}

// WriteCSVExport writes {base}_movies.csv and {base}_metadata.json.
func WriteCSVExport(list *models.CustomList, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = BaseName(list)
	}

	csvData, err := ExportToCSV(list)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}
	itemsFile := baseFilepath + "_movies.csv"
	if err := os.WriteFile(itemsFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(list)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}
	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{ItemsFile: itemsFile, MetadataFile: metadataFile}, nil
}

// WriteMarkdownExport writes {outputDir}/README.md, creating the directory.
func WriteMarkdownExport(list *models.CustomList, outputDir string) (string, error) {
	if outputDir == "" {
		outputDir = BaseName(list)
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	mdData, err := ExportToMarkdown(list)
	if err != nil {
		return "", fmt.Errorf("failed to generate Markdown: %w", err)
	}
	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return "", fmt.Errorf("failed to write Markdown file: %w", err)
	}
	return mdFile, nil
}

// WriteTextExport writes the plain text rendering to path.
func WriteTextExport(list *models.CustomList, path string) (string, error) {
	if path == "" {
		path = BaseName(list) + ".txt"
	}
	textData, err := ExportToText(list)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}
	if err := os.WriteFile(path, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}
	return path, nil
}

// WriteXLSXExport writes the workbook to path.
func WriteXLSXExport(list *models.CustomList, path string) (string, error) {
	if path == "" {
		path = BaseName(list) + ".xlsx"
	}
	data, err := ExportToXLSX(list)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write xlsx file: %w", err)
	}
	return path, nil
}

// WriteJSONExport writes the full list, items included, as indented JSON.
func WriteJSONExport(list *models.CustomList, path string) (string, error) {
	if path == "" {
		path = BaseName(list) + ".json"
	}
	data, err := shared.MarshalJSON(list, true)
	if err != nil {
		return "", fmt.Errorf("JSON marshal failed: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("JSON write failed: %w", err)
	}
	return path, nil
}

// WriteExport renders list in format under dir and returns the files written.
func WriteExport(list *models.CustomList, format Format, dir string) ([]string, error) {
	base := filepath.Join(dir, BaseName(list))

	switch format {
	case FormatCSV:
		res, err := WriteCSVExport(list, base)
		if err != nil {
			return nil, fmt.Errorf("CSV export failed: %w", err)
		}
		return []string{res.ItemsFile, res.MetadataFile}, nil
	case FormatMarkdown:
		path, err := WriteMarkdownExport(list, base)
		if err != nil {
			return nil, fmt.Errorf("markdown export failed: %w", err)
		}
		return []string{path}, nil
	case FormatText:
		path, err := WriteTextExport(list, base+".txt")
		if err != nil {
			return nil, fmt.Errorf("text export failed: %w", err)
		}
		return []string{path}, nil
	case FormatXLSX:
		path, err := WriteXLSXExport(list, base+".xlsx")
		if err != nil {
			return nil, fmt.Errorf("xlsx export failed: %w", err)
		}
		return []string{path}, nil
	case FormatJSON, "":
		path, err := WriteJSONExport(list, base+".json")
		if err != nil {
			return nil, err
		}
		return []string{path}, nil
	default:
		return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidFlag, format)
	}
}
