package poller

import (
	"net/http"
	"strconv"
)

type errStatusNotOK int

func (e errStatusNotOK) Error() string {
	return "non-2xx HTTP status code: " + strconv.Itoa(int(e)) + " " + http.StatusText(int(e))
}

type errInvalidDevice string

func (e errInvalidDevice) Error() string {
	return "invalid device profile: " + string(e)
}
