package cli

import (
	"encoding/json"
	"fmt"
	"hue-alerts/internal/domain/model"
	"io"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

var ValidFormats = []string{"text", "json", "yaml"}

func checkFormat(format string) error {
	if !slices.Contains(ValidFormats, format) {
		return fmt.Errorf("invalid format %q: must be one of %v", format, ValidFormats)
	}
	return nil
}

// printValue writes v as JSON or YAML, or calls table for text output.
func printValue(w io.Writer, format string, v any, table func(*tabwriter.Writer)) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		table(tw)
		return tw.Flush()
	}
}

// sortLights orders by numeric id so light:10 follows light:9.
func sortLights(lights []model.LightInfo) {
	slices.SortFunc(lights, func(a, b model.LightInfo) int {
		return lightNumber(a.ID) - lightNumber(b.ID)
	})
}

func lightNumber(id string) int {
	_, num, _ := strings.Cut(id, ":")
	n, err := strconv.Atoi(num)
	if err != nil {
		return 0
	}
	return n
}
