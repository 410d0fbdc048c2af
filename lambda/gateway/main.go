package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/m-mizutani/honeybadger/pkg/arguments"
	"github.com/m-mizutani/honeybadger/pkg/errors"
	"github.com/m-mizutani/honeybadger/pkg/gateway"
	"github.com/m-mizutani/honeybadger/pkg/lambda"
)

type errorResponse struct {
	Error   string   `json:"error"`
	Kind    string   `json:"kind,omitempty"`
	Queries []string `json:"queries,omitempty"`
}

// statusResponse is returned when no query is given
type statusResponse struct {
	Status  string   `json:"status"`
	Queries []string `json:"queries"`
}

func statusCodeOf(err error) int {
	switch errors.KindOf(err) {
	case errors.ErrValidation:
		return http.StatusBadRequest
	case errors.ErrUpstream, errors.ErrNormalization:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func jsonResponse(code int, v interface{}) (events.APIGatewayProxyResponse, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return events.APIGatewayProxyResponse{}, errors.Wrap(err, "Failed to marshal response")
	}
	return events.APIGatewayProxyResponse{
		StatusCode: code,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(raw),
	}, nil
}

// parseRequest reads a query from JSON body of POST or from query string of GET, e.g.
// ?query=geoLocations&identifiers=1.1.1.1,10.1.2.3
func parseRequest(req events.APIGatewayProxyRequest) (*gateway.Request, error) {
	if req.HTTPMethod == http.MethodPost {
		var q gateway.Request
		if err := json.Unmarshal([]byte(req.Body), &q); err != nil {
			return nil, errors.Wrap(err, "Invalid request body").WithKind(errors.ErrValidation)
		}
		return &q, nil
	}

	q := &gateway.Request{Query: req.QueryStringParameters["query"]}
	if name, ok := req.PathParameters["query"]; ok {
		q.Query = name
	}
	if ids, ok := req.QueryStringParameters["identifiers"]; ok {
		q.Identifiers = strings.Split(ids, ",")
	}
	return q, nil
}

// Handler is exported for test
func Handler(ctx context.Context, args *arguments.Arguments, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	q, err := parseRequest(req)
	if err != nil {
		return jsonResponse(statusCodeOf(err), &errorResponse{Error: err.Error(), Kind: string(errors.KindOf(err))})
	}

	gw, err := args.Gateway()
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	if q.Query == "" {
		return jsonResponse(http.StatusOK, &statusResponse{Status: "ok", Queries: gw.Queries()})
	}

	resp, err := gw.Execute(ctx, q)
	if err != nil {
		code := statusCodeOf(err)
		body := &errorResponse{Error: err.Error(), Kind: string(errors.KindOf(err))}
		if code == http.StatusBadRequest {
			body.Queries = gw.Queries()
		} else {
			errors.EmitSentry(err)
			lambda.LogError(err)
		}
		return jsonResponse(code, body)
	}

	return jsonResponse(http.StatusOK, resp)
}

func main() {
	lambda.Run(func(ctx context.Context, args *arguments.Arguments, event lambda.Event) (interface{}, error) {
		var req events.APIGatewayProxyRequest
		if err := event.Bind(&req); err != nil {
			return nil, err
		}
		return Handler(ctx, args, req)
	})
}
