package mock_test

import (
	"io/ioutil"
	"net/http"
	"testing"

	"github.com/m-mizutani/honeybadger/pkg/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClientRoutes(t *testing.T) {
	client := &mock.HTTPClient{
		RespCode: http.StatusNotFound,
		RespBody: "default",
		Routes: map[string]*mock.HTTPResponse{
			"https://api.apility.net/":             {Code: http.StatusOK, Body: "apility"},
			"https://api.apility.net/geoip_batch/": {Code: http.StatusOK, Body: "geoip"},
		},
	}

	testCases := []struct {
		url  string
		code int
		body string
	}{
		{"https://api.apility.net/geoip_batch/1.1.1.1", http.StatusOK, "geoip"},
		{"https://api.apility.net/as_batch/ip/1.1.1.1", http.StatusOK, "apility"},
		{"https://riskdiscovery.com/honeydb/api/bad-hosts", http.StatusNotFound, "default"},
	}

	for _, tc := range testCases {
		t.Run(tc.url, func(t *testing.T) {
			req, err := http.NewRequest("GET", tc.url, nil)
			require.NoError(t, err)
			resp, err := client.Do(req)
			require.NoError(t, err)
			body, err := ioutil.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Equal(t, tc.code, resp.StatusCode)
			assert.Equal(t, tc.body, string(body))
		})
	}
}
