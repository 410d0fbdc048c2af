package feed

import (
	"compress/gzip"
	"context"
	"io"
	"io/fs"
	"io/ioutil"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/m-mizutani/honeybadger/pkg/adaptor"
	"github.com/m-mizutani/honeybadger/pkg/errors"
	"github.com/m-mizutani/honeybadger/pkg/logging"
)

// Source provides a raw feed payload for a batch of identifiers. Parameterless feeds ignore
// identifiers.
type Source interface {
	Fetch(ctx context.Context, identifiers []string) ([]byte, error)
}

// URLBuilder creates request URL from identifiers
type URLBuilder func(identifiers []string) string

func fixedURL(u string) URLBuilder {
	return func([]string) string { return u }
}

// batchURL appends identifiers as the last path segment, comma separated
func batchURL(base string) URLBuilder {
	return func(identifiers []string) string {
		escaped := make([]string, len(identifiers))
		for i, id := range identifiers {
			escaped[i] = url.PathEscape(id)
		}
		return strings.TrimSuffix(base, "/") + "/" + strings.Join(escaped, ",")
	}
}

// HTTPSource calls a feed with GET and credential headers
type HTTPSource struct {
	name   string
	client adaptor.HTTPClient
	url    URLBuilder
	header http.Header
}

// NewHTTPSource is constructor of HTTPSource
func NewHTTPSource(name string, client adaptor.HTTPClient, url URLBuilder, header http.Header) *HTTPSource {
	return &HTTPSource{
		name:   name,
		client: client,
		url:    url,
		header: header,
	}
}

const maxErrorBodySize = 1024

func (x *HTTPSource) Fetch(ctx context.Context, identifiers []string) ([]byte, error) {
	apiURL := x.url(identifiers)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "Creating feed request").With("feed", x.name).With("url", apiURL)
	}
	for key, values := range x.header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	logging.Logger.Trace().Str("feed", x.name).Str("url", apiURL).Msg("API access")
	resp, err := x.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to send feed request").
			WithKind(errors.ErrUpstream).With("feed", x.name).With("url", apiURL)
	}
	defer resp.Body.Close()

	raw, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to read feed response").
			WithKind(errors.ErrUpstream).With("feed", x.name).With("url", apiURL)
	}

	if resp.StatusCode != http.StatusOK {
		body := string(raw)
		if len(body) > maxErrorBodySize {
			body = body[:maxErrorBodySize]
		}
		return nil, errors.New("Feed server error").WithKind(errors.ErrUpstream).
			With("feed", x.name).With("code", resp.StatusCode).With("body", body).With("url", apiURL)
	}

	return raw, nil
}

// FixtureLoader reads a named fixture
type FixtureLoader interface {
	Load(ctx context.Context, name string) ([]byte, error)
}

// FixtureSource returns contents of a fixture regardless of identifiers
type FixtureSource struct {
	loader FixtureLoader
	name   string
}

// NewFixtureSource is constructor of FixtureSource
func NewFixtureSource(loader FixtureLoader, name string) *FixtureSource {
	return &FixtureSource{
		loader: loader,
		name:   name,
	}
}

func (x *FixtureSource) Fetch(ctx context.Context, identifiers []string) ([]byte, error) {
	logging.Logger.Trace().Str("fixture", x.name).Int("identifiers", len(identifiers)).Msg("Read fixture")
	raw, err := x.loader.Load(ctx, x.name)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to load fixture").WithKind(errors.ErrUpstream).With("fixture", x.name)
	}
	return raw, nil
}

// DirLoader reads fixtures from a local directory
type DirLoader string

func (x DirLoader) Load(ctx context.Context, name string) ([]byte, error) {
	fpath := filepath.Join(string(x), name)
	raw, err := ioutil.ReadFile(fpath)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to read fixture file").With("path", fpath)
	}
	return raw, nil
}

// FSLoader reads fixtures from the root of a file system, e.g. embedded files
type FSLoader struct {
	FS fs.FS
}

func (x *FSLoader) Load(ctx context.Context, name string) ([]byte, error) {
	raw, err := fs.ReadFile(x.FS, name)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to read fixture").With("name", name)
	}
	return raw, nil
}

// S3Loader reads fixtures from S3 objects under Prefix. gzip encoded objects are decompressed.
type S3Loader struct {
	newS3  adaptor.S3ClientFactory
	region string
	bucket string
	prefix string
}

// NewS3Loader is constructor of S3Loader
func NewS3Loader(newS3 adaptor.S3ClientFactory, region, bucket, prefix string) *S3Loader {
	return &S3Loader{
		newS3:  newS3,
		region: region,
		bucket: bucket,
		prefix: prefix,
	}
}

func (x *S3Loader) Load(ctx context.Context, name string) ([]byte, error) {
	client, err := x.newS3(x.region)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to create S3 client").With("region", x.region)
	}

	input := &s3.GetObjectInput{
		Bucket: aws.String(x.bucket),
		Key:    aws.String(path.Join(x.prefix, name)),
	}
	output, err := client.GetObject(input)
	if err != nil {
		return nil, errors.Wrap(err, "Failed GetObject").With("input", input)
	}
	defer output.Body.Close()

	var r io.Reader = output.Body
	if aws.StringValue(output.ContentEncoding) == "gzip" {
		gz, err := gzip.NewReader(output.Body)
		if err != nil {
			return nil, errors.Wrap(err, "Failed to open gzip fixture").With("input", input)
		}
		defer gz.Close()
		r = gz
	}

	raw, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to read fixture object").With("input", input)
	}
	return raw, nil
}
