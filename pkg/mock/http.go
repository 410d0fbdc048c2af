package mock

import (
	"bytes"
	"io/ioutil"
	"net/http"
	"strings"
)

// HTTPResponse is a canned response of HTTPClient
type HTTPResponse struct {
	Code int
	Body string
	Err  error
}

// HTTPClient is mock of adaptor.HTTPClient. A request is answered by the entry of Routes with the
// longest key that is a prefix of the request URL, or by RespCode/RespBody if no route matches.
type HTTPClient struct {
	Requests []*http.Request
	RespCode int
	RespBody string
	Err      error
	Routes   map[string]*HTTPResponse
}

func (x *HTTPClient) Do(req *http.Request) (*http.Response, error) {
	x.Requests = append(x.Requests, req)

	resp := &HTTPResponse{Code: x.RespCode, Body: x.RespBody, Err: x.Err}
	matched := ""
	for prefix, r := range x.Routes {
		if strings.HasPrefix(req.URL.String(), prefix) && len(prefix) > len(matched) {
			matched, resp = prefix, r
		}
	}

	if resp.Err != nil {
		return nil, resp.Err
	}

	return &http.Response{
		StatusCode: resp.Code,
		Body:       ioutil.NopCloser(bytes.NewReader([]byte(resp.Body))),
		Request:    req,
	}, nil
}
