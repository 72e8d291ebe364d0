package poller

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/iulianpascalau/pagespeed-monitoring/services/pagespeed/common"
)

const (
	paramURL      = "url"
	paramStrategy = "strategy"
	paramKey      = "key"
	paramCategory = "category"

	performanceCategory = "performance"
)

// ArgsHTTPPoller defines the arguments needed to create a PageSpeed poller
type ArgsHTTPPoller struct {
	APIURL  string
	APIKey  string
	Timeout time.Duration
}

type httpPoller struct {
	apiURL string
	apiKey string
	client *http.Client
}

// NewHTTPPoller creates a new HTTP-based poller for the PageSpeed Insights API
func NewHTTPPoller(args ArgsHTTPPoller) (*httpPoller, error) {
	if len(args.APIURL) == 0 {
		return nil, errors.New("empty API URL")
	}
	_, err := url.ParseRequestURI(args.APIURL)
	if err != nil {
		return nil, err
	}

	return &httpPoller{
		apiURL: args.APIURL,
		apiKey: args.APIKey,
		client: &http.Client{
			Timeout: args.Timeout,
		},
	}, nil
}

// Poll issues one measurement request for the work item and returns the raw response body
func (p *httpPoller) Poll(ctx context.Context, item common.WorkItem) ([]byte, error) {
	if !item.Device.IsValid() {
		return nil, errInvalidDevice(item.Device)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.requestURL(item), nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errStatusNotOK(resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

func (p *httpPoller) requestURL(item common.WorkItem) string {
	params := url.Values{}
	params.Set(paramURL, item.Site)
	params.Set(paramStrategy, string(item.Device))
	params.Set(paramCategory, performanceCategory)
	if len(p.apiKey) > 0 {
		params.Set(paramKey, p.apiKey)
	}

	return p.apiURL + "?" + params.Encode()
}

// IsInterfaceNil returns true if the value under the interface is nil
func (p *httpPoller) IsInterfaceNil() bool {
	return p == nil
}
