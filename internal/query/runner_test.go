package query

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"banketl/internal/store"
)

type fakeQuerier struct {
	res  *store.Result
	err  error
	seen []string
}

func (f *fakeQuerier) Query(_ context.Context, q string) (*store.Result, error) {
	f.seen = append(f.seen, q)
	return f.res, f.err
}

func TestRun(t *testing.T) {
	q := &fakeQuerier{res: &store.Result{
		Columns: []string{"Name", "MC_USD_Billion"},
		Rows: [][]any{
			{"JPMorgan Chase", 432.92},
			{"HSBC", nil},
		},
	}}
	var buf bytes.Buffer
	require.NoError(t, Run(context.Background(), q, "SELECT Name, MC_USD_Billion FROM Largest_banks", &buf))
	require.Equal(t, []string{"SELECT Name, MC_USD_Billion FROM Largest_banks"}, q.seen)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	require.Equal(t, "SELECT Name, MC_USD_Billion FROM Largest_banks", lines[0])
	require.Equal(t, []string{"Name", "MC_USD_Billion"}, strings.Fields(lines[1]))
	require.Equal(t, []string{"0", "JPMorgan", "Chase", "432.92"}, strings.Fields(lines[2]))
	require.Equal(t, []string{"1", "HSBC", "NULL"}, strings.Fields(lines[3]))
}

func TestRun_Error(t *testing.T) {
	boom := errors.New("no such table: Largest_banks")
	var buf bytes.Buffer
	err := Run(context.Background(), &fakeQuerier{err: boom}, "SELECT * FROM Largest_banks", &buf)
	require.ErrorIs(t, err, boom)
	require.Empty(t, buf.String())
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, "NULL"},
		{8295.0, "8295"},
		{float32(1.5), "1.5"},
		{int64(7), "7"},
		{"Bank A", "Bank A"},
		{true, "true"},
	}
	for _, tt := range tests {
		if got := FormatValue(tt.in); got != tt.want {
			t.Errorf("FormatValue(%#v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
