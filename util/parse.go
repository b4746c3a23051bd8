package util

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ReadFileString reads a small /proc file and returns its contents.
func ReadFileString(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ReadFileLines reads a file and returns its lines.
func ReadFileLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}

// ParseKeyValueLines parses "Key:\tvalue" lines as found in /proc/<pid>/status.
func ParseKeyValueLines(lines []string) map[string]string {
	m := make(map[string]string, len(lines))
	for _, line := range lines {
		idx := strings.IndexByte(line, ':')
		if idx <= 0 {
			continue
		}
		m[strings.TrimSpace(line[:idx])] = strings.TrimSpace(line[idx+1:])
	}
	return m
}

// ParseUint64 parses a string to uint64, returning 0 on error.
// A trailing " kB" unit is ignored.
func ParseUint64(s string) uint64 {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "kB"))
	v, _ := strconv.ParseUint(s, 10, 64)
	return v
}

// ParseInt parses a string to int, returning 0 on error.
func ParseInt(s string) int {
	v, _ := strconv.Atoi(strings.TrimSpace(s))
	return v
}

// ParsePIDList parses "1,2 3" into positive pids, rejecting anything else.
func ParsePIDList(s string) ([]int, error) {
	var pids []int
	for _, f := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' }) {
		n, err := strconv.Atoi(f)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("bad pid %q", f)
		}
		pids = append(pids, n)
	}
	return pids, nil
}

// Digits returns the number of decimal digits in n.
func Digits(n uint64) int {
	d := 1
	for n >= 10 {
		n /= 10
		d++
	}
	return d
}
