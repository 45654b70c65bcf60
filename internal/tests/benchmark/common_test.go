package benchmark

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
)

// BodySizes are the check-in payload sizes exercised by the benchmarks.
var BodySizes = []int{64, 1024, 16 * 1024, 256 * 1024}

// checkinBody returns a printable payload of n bytes.
func checkinBody(n int) string {
	const unit = "host=bench-node status=done "
	return strings.Repeat(unit, n/len(unit)+1)[:n]
}

// newCheckinRequest builds a POST with an explicit Content-Length.
func newCheckinRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Length", strconv.Itoa(len(body)))
	return req
}

// runWithBodySizes runs benchFn once per payload size.
func runWithBodySizes(b *testing.B, benchFn func(b *testing.B, size int)) {
	for _, size := range BodySizes {
		b.Run(fmt.Sprintf("bytes_%d", size), func(b *testing.B) {
			b.SetBytes(int64(size))
			benchFn(b, size)
		})
	}
}
