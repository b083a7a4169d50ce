//go:build integration

package download

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestConcurrentDownloadsOfOneModelFetchOnce(t *testing.T) {
	payload := []byte("integration-payload")
	sum := sha256.Sum256(payload)
	sumHex := hex.EncodeToString(sum[:])

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/model.bin" {
			http.NotFound(w, r)
			return
		}
		hits.Add(1)
		time.Sleep(300 * time.Millisecond)
		_, _ = w.Write(payload)
	}))
	defer server.Close()

	target := filepath.Join(t.TempDir(), "models", "model.bin")

	var wg sync.WaitGroup
	errs := make([]error, 3)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = DownloadFile(context.Background(), Options{
				URL:            server.URL + "/model.bin",
				Destination:    target,
				ExpectedSHA256: sumHex,
				NoProgress:     true,
			})
		}()
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	require.Equal(t, int32(1), hits.Load())

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	require.Equal(t, payload, content)
}
