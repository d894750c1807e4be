package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fitkit/fit-go/pkg/fit"
)

// ExportRecord is one message in JSON lines output.
type ExportRecord struct {
	Index     int            `json:"index"`
	Mesg      string         `json:"mesg"`
	MesgNum   uint16         `json:"mesg_num"`
	Fields    map[string]any `json:"fields"`
	DevFields map[string]any `json:"developer_fields,omitempty"`
}

// RunExport decodes the file and writes its messages as JSON lines or CSV.
func (e *Env) RunExport(path string, mode fit.DecodeMode, expand bool, format, output string, stdout io.Writer) error {
	if format != "jsonl" && format != "csv" {
		return fmt.Errorf("unknown format: %s (supported: jsonl, csv)", format)
	}

	file, err := e.Decode(path, mode, expand)
	if err != nil {
		return err
	}

	w := stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if format == "csv" {
		return exportCSV(file.Mesgs(), w)
	}
	return exportJSONL(file.Mesgs(), w)
}

func exportJSONL(mesgs []*fit.Mesg, w io.Writer) error {
	encoder := json.NewEncoder(w)
	for _, m := range mesgs {
		rec := ExportRecord{
			Index:   m.Index(),
			Mesg:    m.Name,
			MesgNum: m.Num,
			Fields:  fit.MesgValues(m),
		}
		if devs := m.DeveloperFields(); len(devs) > 0 {
			rec.DevFields = make(map[string]any, len(devs))
			for _, df := range devs {
				rec.DevFields[devFieldName(df)] = single(df.Values())
			}
		}
		if err := encoder.Encode(rec); err != nil {
			return fmt.Errorf("failed to encode message %d: %w", m.Index(), err)
		}
	}
	return nil
}

func exportCSV(mesgs []*fit.Mesg, w io.Writer) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"mesg", "index", "field", "value", "units"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, m := range mesgs {
		index := strconv.Itoa(m.Index())
		for _, f := range m.Fields() {
			sf := f.ActiveSubField(m)
			values := make([]any, f.NumValues())
			for i := range values {
				values[i] = f.ValueFor(i, sf)
			}
			row := []string{m.Name, index, fieldName(f, sf), csvValue(values), f.UnitsFor(sf)}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write row: %w", err)
			}
		}
		for _, df := range m.DeveloperFields() {
			row := []string{m.Name, index, devFieldName(df), csvValue(df.Values()), df.Units}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write row: %w", err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func fieldName(f *fit.Field, sf *fit.SubField) string {
	if f.Name == fit.UnknownName {
		return fit.UnknownName + "_" + strconv.Itoa(int(f.Num))
	}
	return f.NameFor(sf)
}

func devFieldName(df *fit.DeveloperField) string {
	if df.Name == "" || df.Name == fit.UnknownName {
		return "dev_" + df.Key().String()
	}
	return df.Name
}

func single(values []any) any {
	if len(values) == 1 {
		return values[0]
	}
	return values
}

// csvValue joins array values with '|'; invalid values are empty.
func csvValue(values []any) string {
	parts := make([]string, len(values))
	for i, v := range values {
		switch x := v.(type) {
		case nil:
		case float64:
			parts[i] = strconv.FormatFloat(x, 'f', -1, 64)
		case float32:
			parts[i] = strconv.FormatFloat(float64(x), 'f', -1, 32)
		default:
			parts[i] = fmt.Sprint(x)
		}
	}
	return strings.Join(parts, "|")
}
