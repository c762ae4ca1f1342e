package collector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"banketl/internal/model"
)

var columns = []string{"Name", "MC_USD_Billion"}

func bankRow(rank int, name, mc string) string {
	return fmt.Sprintf(
		`<tr><td>%d</td><td><span class="flagicon"><img src="flag.png"></span> <a href="/wiki/%s" title="%s">%s</a></td><td>%s</td></tr>`,
		rank, name, name, name, mc)
}

func page(rows ...string) string {
	var b strings.Builder
	b.WriteString(`<html><body><h2>By market capitalization</h2><table class="wikitable"><tbody>`)
	b.WriteString(`<tr><th>Rank</th><th>Bank name</th><th>Market cap<br>(US$ billion)</th></tr>`)
	for _, r := range rows {
		b.WriteString(r)
	}
	b.WriteString(`</tbody></table>`)
	b.WriteString(`<table><tbody><tr><td>1</td><td><span></span> <a>Other table</a></td><td>1.0x</td></tr></tbody></table>`)
	b.WriteString(`</body></html>`)
	return b.String()
}

func TestParseTable(t *testing.T) {
	t.Run("data rows in document order", func(t *testing.T) {
		html := page(
			bankRow(1, "JPMorgan Chase", "432.92\n"),
			bankRow(2, "Bank of America", "231.52\n"),
			bankRow(3, "Industrial and Commercial Bank of China", "194.56\n"),
		)
		ds, err := ParseTable(strings.NewReader(html))
		require.NoError(t, err)

		require.Equal(t, "", cmp.Diff(&model.Dataset{
			Records: []model.Record{
				{Name: "JPMorgan Chase", MCUSDBillion: 432.92},
				{Name: "Bank of America", MCUSDBillion: 231.52},
				{Name: "Industrial and Commercial Bank of China", MCUSDBillion: 194.56},
			},
		}, ds))
	})

	t.Run("header only row yields no record", func(t *testing.T) {
		ds, err := ParseTable(strings.NewReader(page()))
		require.NoError(t, err)
		require.Equal(t, 0, ds.Len())
	})

	t.Run("separator rows are skipped", func(t *testing.T) {
		html := page(
			bankRow(1, "HSBC", "160.68\n"),
			`<tr></tr>`,
			`<tr><th colspan="3">continued</th></tr>`,
			bankRow(2, "Wells Fargo", "155.87\n"),
		)
		ds, err := ParseTable(strings.NewReader(html))
		require.NoError(t, err)
		require.Equal(t, 2, ds.Len())
		require.Equal(t, "Wells Fargo", ds.Records[1].Name)
	})

	t.Run("rows outside tbody are read", func(t *testing.T) {
		html := `<table><thead><tr><th>#</th></tr></thead>` +
			`<tbody>` + bankRow(1, "Citigroup", "99.5\n") + `</tbody>` +
			`<tfoot>` + bankRow(2, "UBS", "88.25\n") + `</tfoot></table>`
		ds, err := ParseTable(strings.NewReader(html))
		require.NoError(t, err)
		require.Equal(t, 2, ds.Len())
		require.Equal(t, "UBS", ds.Records[1].Name)
	})

	t.Run("missing table", func(t *testing.T) {
		_, err := ParseTable(strings.NewReader(`<html><body><p>nothing here</p></body></html>`))
		require.ErrorIs(t, err, model.ErrNoTable)
	})

	t.Run("malformed market cap fails", func(t *testing.T) {
		html := page(
			bankRow(1, "JPMorgan Chase", "432.92\n"),
			bankRow(2, "Bank of America", "n/a\n"),
		)
		_, err := ParseTable(strings.NewReader(html))
		require.ErrorIs(t, err, model.ErrMarketCap)
		require.Contains(t, err.Error(), "Bank of America")
	})

	t.Run("missing name node fails", func(t *testing.T) {
		html := page(`<tr><td>1</td><td>Plain name</td><td>10.0\n</td></tr>`)
		_, err := ParseTable(strings.NewReader(html))
		require.ErrorIs(t, err, model.ErrRowShape)
	})

	t.Run("too few cells fails", func(t *testing.T) {
		html := page(`<tr><td>1</td><td>only two</td></tr>`)
		_, err := ParseTable(strings.NewReader(html))
		require.ErrorIs(t, err, model.ErrRowShape)
	})
}

func TestParseMarketCap(t *testing.T) {
	tests := []struct {
		raw     string
		want    float64
		wantErr bool
	}{
		{"432.92\n", 432.92, false},
		{"100B", 100, false},
		{"7.5$", 7.5, false},
		{"12€", 12, false},
		{"", 0, true},
		{"\n", 0, true},
		{"abc\n", 0, true},
		{"-5.0\n", 0, true},
		{"NaN\n", 0, true},
		{"Inf\n", 0, true},
		{"-Infinity\n", 0, true},
	}
	for _, tt := range tests {
		got, err := parseMarketCap(tt.raw)
		if tt.wantErr {
			if !errors.Is(err, model.ErrMarketCap) {
				t.Errorf("parseMarketCap(%q): expected ErrMarketCap, got %v", tt.raw, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseMarketCap(%q): unexpected error %v", tt.raw, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseMarketCap(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestExtract_HTTP(t *testing.T) {
	body := page(bankRow(1, "JPMorgan Chase", "432.92\n"), bankRow(2, "HSBC", "160.68\n"))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, body)
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL, 0, "")
	require.Equal(t, "http", f.Name())

	ds, err := Extract(context.Background(), f, srv.URL, columns)
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())
	require.Equal(t, 160.68, ds.Records[1].MCUSDBillion)
}

func TestExtract_HTTPStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := Extract(context.Background(), NewHTTPFetcher(0, ""), srv.URL, columns)
	require.Error(t, err)
	require.Contains(t, err.Error(), "status 404")
}

func TestExtract_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "banks.html")
	require.NoError(t, os.WriteFile(path, []byte(page(bankRow(1, "Barclays", "33.1\n"))), 0o644))

	for _, source := range []string{path, "file://" + path} {
		f := NewFetcher(source, 0, "")
		require.Equal(t, "file", f.Name())
		ds, err := Extract(context.Background(), f, source, columns)
		require.NoError(t, err)
		require.Equal(t, []model.Record{{Name: "Barclays", MCUSDBillion: 33.1}}, ds.Records)
	}

	_, err := Extract(context.Background(), &FileFetcher{}, filepath.Join(t.TempDir(), "missing.html"), columns)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestExtract_ColumnMismatch(t *testing.T) {
	f := &StaticFetcher{Body: []byte(page(bankRow(1, "HSBC", "160.68\n")))}
	_, err := Extract(context.Background(), f, "static", []string{"Name", "MC_USD_Billion", "Country"})
	require.ErrorIs(t, err, model.ErrSchema)
}

func TestExtract_FetchError(t *testing.T) {
	boom := errors.New("connection refused")
	_, err := Extract(context.Background(), &StaticFetcher{Err: boom}, "static", columns)
	require.ErrorIs(t, err, boom)
}
