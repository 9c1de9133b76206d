package file

import (
	"bufio"
	"os"
	"strings"
)

// ReadStatements reads a SQL script and returns its statements in order,
// without the terminating semicolons.
//
// Blank lines and lines starting with "--" (after trimming) are skipped.
// Statements may span lines; a trailing statement without a semicolon is
// still returned. Semicolons inside string literals are not recognised.
func ReadStatements(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var (
		out []string
		cur []string
	)
	flush := func() {
		stmt := strings.TrimSpace(strings.Join(cur, "\n"))
		if stmt != "" {
			out = append(out, stmt)
		}
		cur = cur[:0]
	}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		for {
			i := strings.IndexByte(line, ';')
			if i < 0 {
				break
			}
			cur = append(cur, line[:i])
			flush()
			line = strings.TrimSpace(line[i+1:])
		}
		if line != "" {
			cur = append(cur, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()
	return out, nil
}
