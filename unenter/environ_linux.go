package main

import (
	"bytes"
	"fmt"
	"os"
	"strings"
)

// projectEnviron replaces the Enterer's own environment with the target
// leader's. The read happens before any mutation of the current
// environment, so a read failure never leaves the caller half-cleared.
func projectEnviron(pid int) error {
	path := fmt.Sprintf("/proc/%d/environ", pid)

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("Read %s: %w", path, err)
	}

	records := parseEnviron(data)

	os.Clearenv()

	for _, record := range records {
		name, value, ok := strings.Cut(record, "=")
		if !ok {
			continue
		}

		if err := os.Setenv(name, value); err != nil {
			return fmt.Errorf("Set environment %s: %w", name, err)
		}
	}

	return nil
}

// parseEnviron splits a raw /proc/<pid>/environ image into its NUL
// delimited KEY=VALUE records, discarding the trailing empty record.
func parseEnviron(data []byte) []string {
	var records []string

	for _, record := range bytes.Split(data, []byte{0}) {
		if len(record) == 0 {
			continue
		}

		records = append(records, string(record))
	}

	return records
}
