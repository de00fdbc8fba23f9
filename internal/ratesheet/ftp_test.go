package ratesheet

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFTPAddr(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		host string
		want string
	}{
		{"bare host gets default port", "rates.potiexpress.ge", "rates.potiexpress.ge:21"},
		{"explicit port kept", "rates.potiexpress.ge:2121", "rates.potiexpress.ge:2121"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ftpAddr(&url.URL{Host: tt.host}))
		})
	}
}

func TestDownloadRejectsBadURL(t *testing.T) {
	t.Parallel()

	// All of these fail before any connection is attempted.
	tests := []struct {
		name    string
		url     string
		wantMsg string
	}{
		{"http scheme", "http://rates.potiexpress.ge/current.xlsx", "unsupported scheme"},
		{"missing path", "ftp://rates.potiexpress.ge", "no workbook path"},
		{"unparseable url", "://bad", "parse url"},
	}

	f := NewFetcher(time.Second)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := f.Download(context.Background(), tt.url)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestNewFetcherDefaultTimeout(t *testing.T) {
	t.Parallel()

	f := NewFetcher(0)
	assert.Equal(t, 30*time.Second, f.timeout)

	f = NewFetcher(5 * time.Second)
	assert.Equal(t, 5*time.Second, f.timeout)
}
