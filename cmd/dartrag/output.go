package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

var format = "yaml"

func setOutputFormat(f string) error {
	switch f {
	case "yaml", "json":
		format = f
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", f)
	}
}

// output writes data to stdout in the format chosen by --output.
func output(data any) error {
	return outputTo(os.Stdout, format, data)
}

func outputTo(w io.Writer, f string, data any) error {
	switch f {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(data)
	default:
		return fmt.Errorf("unknown output format: %s", f)
	}
}
