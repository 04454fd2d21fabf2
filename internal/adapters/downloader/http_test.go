package downloader

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"domaincreates/internal/core/domain"
)

func TestURLFor(t *testing.T) {
	d, err := domain.ParseTargetDate("05-06-2024")
	require.NoError(t, err)

	assert.Equal(t,
		"https://registry.in/system/files/domain-creates_05-06-2024.pdf",
		URLFor(DefaultURLTemplate, d))
}

func TestDownload_OK(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte("%PDF-1.4 body"))
	}))
	defer server.Close()

	d := NewHTTPDownloader(WithUserAgent("domain-creates/test"))
	body, err := d.Download(context.Background(), server.URL)
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 body", string(data))
	assert.Equal(t, "domain-creates/test", gotUA)
}

func TestDownload_NonSuccessStatus(t *testing.T) {
	for _, code := range []int{http.StatusNotFound, http.StatusInternalServerError, http.StatusMultipleChoices} {
		t.Run(http.StatusText(code), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(code)
			}))
			defer server.Close()

			_, err := NewHTTPDownloader().Download(context.Background(), server.URL)
			require.Error(t, err)

			var statusErr *domain.HTTPStatusError
			require.True(t, errors.As(err, &statusErr))
			assert.Equal(t, code, statusErr.StatusCode)
			assert.Equal(t, server.URL, statusErr.URL)
		})
	}
}

func TestDownload_AcceptsAny2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNonAuthoritativeInfo)
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	body, err := NewHTTPDownloader().Download(context.Background(), server.URL)
	require.NoError(t, err)
	body.Close()
}

func TestDownload_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	_, err := NewHTTPDownloader(WithTimeout(20*time.Millisecond)).Download(context.Background(), server.URL)
	require.Error(t, err)

	var statusErr *domain.HTTPStatusError
	assert.False(t, errors.As(err, &statusErr))
}

func TestDownload_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := NewHTTPDownloader().Download(context.Background(), url)
	require.Error(t, err)
}
