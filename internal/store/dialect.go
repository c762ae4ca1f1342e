package store

import (
	"fmt"
	"regexp"
	"strings"
)

// dialect captures the SQL differences between the supported drivers.
type dialect struct {
	driver      string // database/sql driver name
	quote       func(ident string) string
	placeholder func(n int) string
	intType     string
	textType    string
	realType    string
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

var dialects = map[string]dialect{
	"sqlite": {
		driver:      "sqlite",
		quote:       func(s string) string { return `"` + s + `"` },
		placeholder: func(int) string { return "?" },
		intType:     "INTEGER",
		textType:    "TEXT",
		realType:    "REAL",
	},
	// Unquoted identifiers fold to lower case in postgres, so names are
	// created lower-cased to keep plain queries working.
	"postgres": {
		driver:      "postgres",
		quote:       func(s string) string { return `"` + strings.ToLower(s) + `"` },
		placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
		intType:     "BIGINT",
		textType:    "TEXT",
		realType:    "DOUBLE PRECISION",
	},
	"mysql": {
		driver:      "mysql",
		quote:       func(s string) string { return "`" + s + "`" },
		placeholder: func(int) string { return "?" },
		intType:     "BIGINT",
		textType:    "TEXT",
		realType:    "DOUBLE",
	},
}

func lookupDialect(name string) (dialect, error) {
	d, ok := dialects[strings.ToLower(name)]
	if !ok {
		return dialect{}, fmt.Errorf("unsupported database driver %q", name)
	}
	return d, nil
}

func checkIdent(s string) error {
	if !identRe.MatchString(s) {
		return fmt.Errorf("invalid identifier %q", s)
	}
	return nil
}

func (d dialect) placeholders(n int) string {
	ps := make([]string, n)
	for i := range ps {
		ps[i] = d.placeholder(i + 1)
	}
	return strings.Join(ps, ", ")
}
