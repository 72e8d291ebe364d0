package commonGo

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadSitesFile(t *testing.T) {
	t.Parallel()

	t.Run("missing file should error", func(t *testing.T) {
		t.Parallel()

		sites, err := ReadSitesFile(filepath.Join(t.TempDir(), "missing.txt"))
		assert.Nil(t, sites)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to open sites file")
	})
	t.Run("should skip blank lines and trim", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "site.txt")
		content := "https://a.example.com\n\n   \n  https://b.example.com  \r\nhttps://c.example.com"
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		sites, err := ReadSitesFile(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"https://a.example.com", "https://b.example.com", "https://c.example.com"}, sites)
	})
	t.Run("empty file should return empty slice", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "site.txt")
		require.NoError(t, os.WriteFile(path, nil, 0644))

		sites, err := ReadSitesFile(path)
		require.NoError(t, err)
		assert.Empty(t, sites)
	})
}

func TestReadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PAGESPEED_TEST_KEY=abc\n"), 0644))

	t.Run("should read the requested keys", func(t *testing.T) {
		m := map[string]string{"PAGESPEED_TEST_KEY": ""}
		err := ReadEnvFile(path, m)
		require.NoError(t, err)
		assert.Equal(t, "abc", m["PAGESPEED_TEST_KEY"])
	})
	t.Run("missing key should error", func(t *testing.T) {
		m := map[string]string{"PAGESPEED_TEST_MISSING_KEY": ""}
		err := ReadEnvFile(path, m)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "PAGESPEED_TEST_MISSING_KEY is not set")
	})
}

func TestCronJobStarter(t *testing.T) {
	t.Parallel()

	numCalls := uint32(0)
	ctx, cancel := context.WithCancel(context.Background())
	CronJobStarter(ctx, func(ctx context.Context) {
		atomic.AddUint32(&numCalls, 1)
	}, 50*time.Millisecond)

	time.Sleep(180 * time.Millisecond)
	cancel()
	time.Sleep(20 * time.Millisecond)

	assert.GreaterOrEqual(t, atomic.LoadUint32(&numCalls), uint32(2))
}
