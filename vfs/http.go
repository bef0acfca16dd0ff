package vfs

import (
	"context"
	"io/ioutil"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

// HTTPDriver fetches http:// and https:// locations.
type HTTPDriver struct {
	client *http.Client
}

func NewHTTPDriver(client *http.Client) *HTTPDriver {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPDriver{client: client}
}

func (hd *HTTPDriver) Fetch(ctx context.Context, location string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "Bad request for '%s'", location)
	}

	resp, err := hd.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "Error fetching '%s'", location)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("Unexpected status %q for '%s'", resp.Status, location)
	}

	return ioutil.ReadAll(resp.Body)
}

// AutoDriver routes http(s) locations to an HTTPDriver and everything
// else to a DirectoryDriver.
type AutoDriver struct {
	Dir  *DirectoryDriver
	HTTP *HTTPDriver
}

func NewAutoDriver(root string) *AutoDriver {
	return &AutoDriver{
		Dir:  NewDirectoryDriver(root),
		HTTP: NewHTTPDriver(nil),
	}
}

func (ad *AutoDriver) Fetch(ctx context.Context, location string) ([]byte, error) {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return ad.HTTP.Fetch(ctx, location)
	}
	return ad.Dir.Fetch(ctx, location)
}
