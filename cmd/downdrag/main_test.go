package main_test

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	main "github.com/CodeBeast357/downdrag/cmd/downdrag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const configTemplate = `
querier:
  mode: plain
  timeout: 5s
profiles:
  bars:
    url: %[1]s/bars
    items: //li
    name: //h1
    features: //p[@class="feature"]
    evaluator: '(.+)'
    pathfinder:
      target: current
      type: showcase
      value: //p[@data-bar='%%s']
details:
  price:
    type: float
    source: extrainfo
    conversion:
      process: value
      pattern: '\$(\d+\.\d+)'
  hours:
    source: extrainfo
    conversion:
      process: schedule
      pattern: '(\d+PM)-(\d+PM)'
outputs:
  csv:
    filename: %[2]s
`

func newSite(t *testing.T) *httptest.Server {
	t.Helper()
	pages := map[string]string{
		"/bars":       `<ul><li><a href="/bars/delta">Delta</a></li><li><a href="/bars/echo">Echo</a></li></ul>`,
		"/bars/delta": `<h1>Delta Lounge</h1><p class="feature">Patio</p><p data-bar="Delta">pints $4.50 5PM-7PM</p>`,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		content, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, content)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// writeConfig writes a configuration scraping srv into a temp dir and
// returns its path and the path of the CSV it produces.
func writeConfig(t *testing.T, srv *httptest.Server) (string, string) {
	t.Helper()
	dir := t.TempDir()
	out := filepath.Join(dir, "bars.csv")
	path := filepath.Join(dir, "downdrag.yml")
	require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf(configTemplate, srv.URL, out)), 0o644))
	return path, out
}

func fixedNow() time.Time {
	return time.Date(2026, 10, 14, 19, 30, 0, 0, time.UTC)
}

func TestMain_Run(t *testing.T) {
	t.Parallel()

	t.Run("scrapes into CSV", func(t *testing.T) {
		t.Parallel()

		srv := newSite(t)
		config, out := writeConfig(t, srv)
		stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}

		err := main.NewMain().Run(context.Background(),
			[]string{"--config", config, "run", "--now", "2026-10-14T19:30:00Z", "--log-file", "-"},
			stdout, stderr)

		require.NoError(t, err)
		assert.Equal(t, "Wrote 1 records (1 skipped)\n", stdout.String())
		data, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Equal(t,
			"itemindex,source,index,name,description,extrainfo,link,price,hours start,hours end\n"+
				"0,bars,0,Delta,Patio,pints $4.50 5PM-7PM,"+srv.URL+"/bars/delta,4.500000,17:00,19:00\n",
			string(data))
		assert.Contains(t, stderr.String(), "run=")
		assert.Contains(t, stderr.String(), `msg="item error"`)
		assert.Contains(t, stderr.String(), `msg="sink close"`)
	})

	t.Run("rejects a malformed now", func(t *testing.T) {
		t.Parallel()

		config, _ := writeConfig(t, newSite(t))

		err := main.NewMain().Run(context.Background(),
			[]string{"--config", config, "run", "--now", "yesterday", "--log-file", "-"},
			&bytes.Buffer{}, &bytes.Buffer{})

		assert.ErrorContains(t, err, "RFC3339")
	})

	t.Run("reports a missing configuration", func(t *testing.T) {
		t.Parallel()

		err := main.NewMain().Run(context.Background(),
			[]string{"--config", filepath.Join(t.TempDir(), "none.yml"), "check"},
			&bytes.Buffer{}, &bytes.Buffer{})

		assert.ErrorContains(t, err, "none.yml")
	})

	t.Run("reports configuration errors", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "downdrag.yml")
		require.NoError(t, os.WriteFile(path, []byte("profiles: {}\nmystery: 1\n"), 0o644))
		stderr := &bytes.Buffer{}

		err := main.NewMain().Run(context.Background(), []string{"--config", path, "check"}, &bytes.Buffer{}, stderr)

		require.Error(t, err)
		assert.Contains(t, stderr.String(), "error:")
	})

	t.Run("prints help without a command", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}

		err := main.NewMain().Run(context.Background(), nil, stdout, &bytes.Buffer{})

		require.Error(t, err)
		assert.Contains(t, stdout.String(), "downdrag")
		assert.Contains(t, stdout.String(), "run")
	})

	t.Run("prints help", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}

		err := main.NewMain().Run(context.Background(), []string{"--help"}, stdout, &bytes.Buffer{})

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "check")
	})
}

// Not parallel: changes the working directory.
func TestMain_Run_DefaultLogFile(t *testing.T) {
	srv := newSite(t)
	config, _ := writeConfig(t, srv)
	t.Chdir(t.TempDir())
	m := main.NewMain()
	m.Now = fixedNow

	err := m.Run(context.Background(), []string{"--config", config, "run"}, &bytes.Buffer{}, &bytes.Buffer{})

	require.NoError(t, err)
	data, err := os.ReadFile("downdrag_20261014_193000.log")
	require.NoError(t, err)
	assert.Contains(t, string(data), `msg="run complete"`)
}

func TestCheckCmd(t *testing.T) {
	t.Parallel()

	config, _ := writeConfig(t, newSite(t))
	stdout := &bytes.Buffer{}

	err := main.NewMain().Run(context.Background(), []string{"--config", config, "check"}, stdout, &bytes.Buffer{})

	require.NoError(t, err)
	assert.Equal(t, "Configuration OK: 1 profiles, 2 details, 1 outputs\n", stdout.String())
}

func TestFieldsCmd(t *testing.T) {
	t.Parallel()

	config, _ := writeConfig(t, newSite(t))
	stdout := &bytes.Buffer{}

	err := main.NewMain().Run(context.Background(), []string{"--config", config, "fields"}, stdout, &bytes.Buffer{})

	require.NoError(t, err)
	assert.Equal(t, "itemindex\tint\nsource\tstring\nindex\tint\nname\tstring\n"+
		"description\tstring\nextrainfo\tstring\nlink\tstring\n"+
		"price\tfloat\nhours start\tstring\nhours end\tstring\n", stdout.String())
}
