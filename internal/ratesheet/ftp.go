package ratesheet

import (
	"context"
	"io"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/jlaffaye/ftp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Fetcher downloads rate-sheet workbooks from provider FTP drops.
type Fetcher struct {
	timeout time.Duration
}

// NewFetcher creates a Fetcher. A zero timeout defaults to 30 seconds.
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{timeout: timeout}
}

// ftpAddr turns a workbook URL host into a dialable address, defaulting to
// the standard FTP control port.
func ftpAddr(u *url.URL) string {
	if _, _, err := net.SplitHostPort(u.Host); err != nil {
		return net.JoinHostPort(u.Host, "21")
	}
	return u.Host
}

// Download opens the workbook behind an ftp:// URL as a stream. Closing the
// returned ReadCloser also releases the control connection.
func (f *Fetcher) Download(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, eris.Wrapf(err, "ratesheet: parse url %q", rawURL)
	}
	if u.Scheme != "ftp" {
		return nil, eris.Errorf("ratesheet: unsupported scheme %q, want ftp", u.Scheme)
	}
	if u.Path == "" {
		return nil, eris.Errorf("ratesheet: url %q names no workbook path", rawURL)
	}

	addr := ftpAddr(u)
	zap.L().Debug("ratesheet: connecting", zap.String("addr", addr), zap.String("path", u.Path))

	conn, err := ftp.Dial(addr, ftp.DialWithTimeout(f.timeout), ftp.DialWithContext(ctx))
	if err != nil {
		return nil, eris.Wrap(err, "ratesheet: ftp dial")
	}
	if err := conn.Login("anonymous", "anonymous@"); err != nil {
		conn.Quit()
		return nil, eris.Wrap(err, "ratesheet: ftp login")
	}

	resp, err := conn.Retr(u.Path)
	if err != nil {
		conn.Quit()
		return nil, eris.Wrap(err, "ratesheet: ftp retrieve")
	}
	return &workbookStream{resp: resp, conn: conn}, nil
}

// workbookStream keeps the control connection alive for the lifetime of the
// data stream and tears both down on Close.
type workbookStream struct {
	resp *ftp.Response
	conn *ftp.ServerConn
}

func (s *workbookStream) Read(p []byte) (int, error) {
	return s.resp.Read(p)
}

func (s *workbookStream) Close() error {
	respErr := s.resp.Close()
	quitErr := s.conn.Quit()
	if respErr != nil {
		return eris.Wrap(respErr, "ratesheet: close ftp response")
	}
	return eris.Wrap(quitErr, "ratesheet: quit ftp connection")
}

// FetchFile downloads the FTP URL into dir and returns the local path. The
// XLSX reader needs a seekable file, so the stream is spooled to disk.
func (f *Fetcher) FetchFile(ctx context.Context, ftpURL, dir string) (string, error) {
	rc, err := f.Download(ctx, ftpURL)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	local := filepath.Join(dir, "ratesheet.xlsx")
	file, err := os.Create(local)
	if err != nil {
		return "", eris.Wrap(err, "ratesheet: create local file")
	}
	defer file.Close()

	n, err := io.Copy(file, rc)
	if err != nil {
		return "", eris.Wrap(err, "ratesheet: spool workbook")
	}

	zap.L().Info("ratesheet: downloaded", zap.String("url", ftpURL), zap.Int64("bytes", n))
	return local, nil
}
