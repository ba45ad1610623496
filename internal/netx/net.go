// Package netx fetches objects through pre-signed storage URLs.
package netx

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// maxErrorBody caps how much of a failed response is quoted in the error.
const maxErrorBody = 512

// DownloadPresignedURL streams the object behind a pre-signed GET URL to w
// and returns the number of bytes written. The URL is used verbatim; its
// query string carries the signature.
func DownloadPresignedURL(ctx context.Context, url string, w io.Writer, timeout time.Duration) (int64, error) {
	client := resty.New().SetTimeout(timeout)

	resp, err := client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		return 0, err
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(body, maxErrorBody))
		return 0, fmt.Errorf("download failed: %s; body: %s", resp.Status(), string(b))
	}

	n, err := io.Copy(w, body)
	if err != nil {
		return n, fmt.Errorf("download interrupted after %d bytes: %w", n, err)
	}
	return n, nil
}
