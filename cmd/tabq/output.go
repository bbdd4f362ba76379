package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/insights"
	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/models"
)

func checkOutput(format string) error {
	switch format {
	case "text", "json", "yaml":
		return nil
	}
	return fmt.Errorf("unknown output format %q (want text, json or yaml)", format)
}

// writeStructured renders v as JSON or YAML. Text output is handled by the callers.
func writeStructured(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	}
	return checkOutput(format)
}

func writeAnswer(w io.Writer, format string, res *models.AnswerResult) error {
	if format != "text" {
		return writeStructured(w, format, res)
	}
	_, err := fmt.Fprintln(w, res.Answer)
	return err
}

func writeProfile(w io.Writer, format, path string, p *models.FileProfile) error {
	if format != "text" {
		return writeStructured(w, format, p)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s rows, %d columns\n", path, insights.FormatNumber(float64(p.RowCount)), p.ColumnCount)
	fmt.Fprintf(&b, "  numeric:     %s\n", listOrNone(p.NumericColumns))
	fmt.Fprintf(&b, "  date:        %s\n", listOrNone(p.DateColumns))
	fmt.Fprintf(&b, "  categorical: %s\n", listOrNone(p.CategoricalColumns))
	_, err := io.WriteString(w, b.String())
	return err
}

func listOrNone(cols []string) string {
	if len(cols) == 0 {
		return "none"
	}
	return strings.Join(cols, ", ")
}
