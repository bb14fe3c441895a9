package main

import (
	"encoding/json"
	"io"
	"os"
)

var stdout io.Writer = os.Stdout

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
