package services

import (
	"bytes"
	"encoding/base64"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

const xlsxMediaType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// DecoderService はアップロードされたペイロードをDatasetに変換します。副作用はありません。
type DecoderService struct {
	maxBytes int64
}

// NewDecoderService は新しいDecoderServiceを生成します。maxBytes <= 0 の場合はサイズ制限なしです。
func NewDecoderService(maxBytes int64) *DecoderService {
	return &DecoderService{maxBytes: maxBytes}
}

// Decode turns a data-URI payload ("data:text/csv;base64,....") into a Dataset.
func (s *DecoderService) Decode(payload, filename string) (*Dataset, error) {
	prefix, body, found := strings.Cut(payload, ",")
	if !found {
		return nil, &PayloadError{Reason: "missing ',' between media type and body"}
	}

	body = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, body)

	if s.maxBytes > 0 && int64(base64.StdEncoding.DecodedLen(len(body))) > s.maxBytes+2 {
		return nil, &PayloadError{Reason: fmt.Sprintf("decoded size over %d bytes", s.maxBytes), Err: errTooLarge}
	}

	raw, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return nil, &PayloadError{Reason: "body is not valid base64", Err: err}
	}

	return s.DecodeBytes(mediaTypeOf(prefix), filename, raw)
}

// DecodeBytes parses already-decoded file content. mediaType selects xlsx handling;
// when it is empty the filename extension decides.
func (s *DecoderService) DecodeBytes(mediaType, filename string, raw []byte) (*Dataset, error) {
	if s.maxBytes > 0 && int64(len(raw)) > s.maxBytes {
		return nil, &PayloadError{Reason: fmt.Sprintf("decoded size over %d bytes", s.maxBytes), Err: errTooLarge}
	}
	if len(raw) == 0 {
		return nil, &ParseError{Source: "csv", Err: errors.New("file is empty")}
	}

	var (
		header  []string
		records [][]string
		err     error
	)
	if isSpreadsheet(mediaType, filename) {
		header, records, err = readSpreadsheet(raw)
	} else {
		header, records, err = readCSV(raw)
	}
	if err != nil {
		return nil, err
	}

	ds, err := NewDataset(filename, uniqueHeader(header), records)
	if err != nil {
		return nil, &ParseError{Source: "csv", Err: err}
	}
	log.Printf("📂 [decoder] %q を読み込みました: %d列 x %d行", filename, len(ds.columns), ds.NRows())
	return ds, nil
}

// mediaTypeOf extracts "text/csv" from "data:text/csv;base64".
func mediaTypeOf(prefix string) string {
	mt := strings.TrimPrefix(strings.TrimSpace(prefix), "data:")
	if i := strings.Index(mt, ";"); i >= 0 {
		mt = mt[:i]
	}
	return strings.ToLower(mt)
}

func isSpreadsheet(mediaType, filename string) bool {
	if mediaType == xlsxMediaType {
		return true
	}
	return mediaType == "" && strings.HasSuffix(strings.ToLower(filename), ".xlsx")
}

func readCSV(raw []byte) ([]string, [][]string, error) {
	if !utf8.Valid(raw) {
		return nil, nil, &ParseError{Source: "utf-8", Err: errors.New("content is not valid UTF-8 text")}
	}
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))

	r := csv.NewReader(bytes.NewReader(raw))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil, &ParseError{Source: "csv", Err: errors.New("no columns to parse")}
	}
	if err != nil {
		return nil, nil, csvParseError(err)
	}

	var records [][]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, csvParseError(err)
		}
		if len(record) > len(header) {
			line, _ := r.FieldPos(0)
			return nil, nil, &ParseError{
				Source: "csv",
				Line:   line,
				Err:    fmt.Errorf("expected %d fields, saw %d", len(header), len(record)),
			}
		}
		records = append(records, record)
	}
	return header, records, nil
}

func csvParseError(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &ParseError{Source: "csv", Line: pe.Line, Err: pe.Err}
	}
	return &ParseError{Source: "csv", Err: err}
}

func readSpreadsheet(raw []byte) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return nil, nil, &ParseError{Source: "xlsx", Err: err}
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, nil, &ParseError{Source: "xlsx", Err: err}
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, nil, &ParseError{Source: "xlsx", Err: errors.New("first sheet has no header row")}
	}

	header := rows[0]
	records := make([][]string, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) > len(header) {
			return nil, nil, &ParseError{
				Source: "xlsx",
				Line:   i + 2,
				Err:    fmt.Errorf("expected %d fields, saw %d", len(header), len(row)),
			}
		}
		if isBlankRow(row) {
			continue
		}
		records = append(records, row)
	}
	return header, records, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// uniqueHeader trims names, fills blanks with "Unnamed: i" and renames duplicates to "name.1", "name.2", ...
func uniqueHeader(header []string) []string {
	out := make([]string, len(header))
	used := make(map[string]bool, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		candidate := name
		for n := 1; used[candidate]; n++ {
			candidate = fmt.Sprintf("%s.%d", name, n)
		}
		used[candidate] = true
		out[i] = candidate
	}
	return out
}
