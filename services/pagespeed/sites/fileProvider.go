package sites

import (
	"errors"

	"github.com/iulianpascalau/pagespeed-monitoring/commonGo"
)

type fileProvider struct {
	path string
}

// NewFileProvider creates a sites provider reading a newline-delimited file on every call
func NewFileProvider(path string) (*fileProvider, error) {
	if len(path) == 0 {
		return nil, errors.New("empty sites file path")
	}

	return &fileProvider{
		path: path,
	}, nil
}

// Sites returns the sites currently listed in the file
func (fp *fileProvider) Sites() ([]string, error) {
	return commonGo.ReadSitesFile(fp.path)
}

// IsInterfaceNil returns true if the value under the interface is nil
func (fp *fileProvider) IsInterfaceNil() bool {
	return fp == nil
}
