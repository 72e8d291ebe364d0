package factory

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/iulianpascalau/pagespeed-monitoring/services/pagespeed/common"
	"github.com/iulianpascalau/pagespeed-monitoring/services/pagespeed/config"
	"github.com/iulianpascalau/pagespeed-monitoring/services/pagespeed/testsCommon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createSitesFile(t *testing.T, sites ...string) string {
	path := filepath.Join(t.TempDir(), "site.txt")
	content := ""
	for _, site := range sites {
		content += site + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	return path
}

func createPageSpeedServer(t *testing.T) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("strategy") == string(common.Mobile) {
			_, _ = w.Write(testsCommon.LighthouseBody(0.6))
			return
		}

		_, _ = w.Write(testsCommon.LighthouseBody(0.9))
	}))
	t.Cleanup(server.Close)

	return server
}

func createConfig(t *testing.T, apiURL string) config.Config {
	return config.Config{
		SitesFile:                          createSitesFile(t, "https://a.example.com", "https://b.example.com"),
		APIURL:                             apiURL,
		Attempts:                           2,
		DelayBetweenAttemptsInMilliseconds: 1,
		NumWorkers:                         4,
	}
}

func TestNewComponentsHandler(t *testing.T) {
	t.Parallel()

	t.Run("minimal config should work", func(t *testing.T) {
		t.Parallel()

		handler, err := NewComponentsHandler(ArgsComponentsHandler{
			Config: config.Config{},
			APIKey: "key",
		})
		require.Nil(t, err)
		require.NotNil(t, handler)

		assert.Empty(t, handler.GetReporters())
		assert.Nil(t, handler.GetStore())
		assert.Nil(t, handler.GetServer())

		handler.Close()
	})
	t.Run("invalid API URL should error", func(t *testing.T) {
		t.Parallel()

		handler, err := NewComponentsHandler(ArgsComponentsHandler{
			Config: config.Config{APIURL: "not a url"},
		})
		assert.Nil(t, handler)
		assert.Error(t, err)
	})
	t.Run("API without storage should error", func(t *testing.T) {
		t.Parallel()

		handler, err := NewComponentsHandler(ArgsComponentsHandler{
			Config: config.Config{
				API: config.APIConfig{ListenAddress: "127.0.0.1:0"},
			},
		})
		assert.Nil(t, handler)
		assert.Error(t, err)
	})
}

func TestComponentsHandlerMethods(t *testing.T) {
	t.Parallel()

	cfg := config.Config{
		Report: config.ReportConfig{
			ExcelFile:  filepath.Join(t.TempDir(), "results.xlsx"),
			SQLitePath: ":memory:",
			Endpoint:   "http://127.0.0.1:1/api/report",
		},
		API: config.APIConfig{
			ListenAddress: "127.0.0.1:0",
		},
	}

	handler, err := NewComponentsHandler(ArgsComponentsHandler{
		Config:        cfg,
		APIKey:        "key",
		ServiceKeyApi: "service-key",
	})
	require.Nil(t, err)

	handler.Start()
	defer handler.Close()

	reporters := handler.GetReporters()
	require.Len(t, reporters, 3)
	assert.Equal(t, "*reporter.excelReporter", fmt.Sprintf("%T", reporters[0]))
	assert.Equal(t, "*storage.sqliteStorage", fmt.Sprintf("%T", reporters[1]))
	assert.Equal(t, "*reporter.httpReporter", fmt.Sprintf("%T", reporters[2]))

	store := handler.GetStore()
	assert.Equal(t, "*storage.sqliteStorage", fmt.Sprintf("%T", store))

	serv := handler.GetServer()
	assert.Equal(t, "*api.server", fmt.Sprintf("%T", serv))
	assert.NotEqual(t, "127.0.0.1:0", serv.Address())

	eng := handler.GetEngine()
	assert.Equal(t, "*engine.samplingEngine", fmt.Sprintf("%T", eng))

	assert.NotNil(t, handler.GetRegistry())
}

func TestComponentsHandler_RunOnce(t *testing.T) {
	t.Parallel()

	server := createPageSpeedServer(t)
	cfg := createConfig(t, server.URL)
	cfg.Report.SQLitePath = ":memory:"

	handler, err := NewComponentsHandler(ArgsComponentsHandler{
		Config: cfg,
		APIKey: "key",
	})
	require.Nil(t, err)
	defer handler.Close()

	report, err := handler.RunOnce(context.Background())
	require.Nil(t, err)
	require.Len(t, report.Averaged, 4)
	require.Len(t, report.Raw, 8)
	require.Empty(t, report.Faults)

	assert.Equal(t, "https://a.example.com", report.Averaged[0].Site)
	assert.Equal(t, common.Desktop, report.Averaged[0].Device)
	assert.Equal(t, 90, *report.Averaged[0].Record.Score)
	assert.Equal(t, common.Mobile, report.Averaged[1].Device)
	assert.Equal(t, 60, *report.Averaged[1].Record.Score)

	run, err := handler.GetStore().GetLatestRun(context.Background())
	require.Nil(t, err)
	assert.Equal(t, report.ID, run.ID)
	assert.Equal(t, 4, run.NumAveraged)

	assert.Equal(t, report, handler.GetEngine().LastReport())

	families, err := handler.GetRegistry().Gather()
	require.Nil(t, err)
	found := false
	for _, family := range families {
		if family.GetName() == "pagespeed_samples_total" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestComponentsHandler_MissingSitesFile(t *testing.T) {
	t.Parallel()

	cfg := config.Config{
		SitesFile: filepath.Join(t.TempDir(), "missing.txt"),
	}

	handler, err := NewComponentsHandler(ArgsComponentsHandler{Config: cfg})
	require.Nil(t, err)
	defer handler.Close()

	report, err := handler.RunOnce(context.Background())
	assert.Nil(t, report)
	assert.Error(t, err)
}
