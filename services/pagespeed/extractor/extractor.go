package extractor

import (
	"math"

	"github.com/iulianpascalau/pagespeed-monitoring/services/pagespeed/common"
	"github.com/tidwall/gjson"
)

const (
	pathScore = "lighthouseResult.categories.performance.score"
	pathFCP   = "lighthouseResult.audits.first-contentful-paint.numericValue"
	pathLCP   = "lighthouseResult.audits.largest-contentful-paint.numericValue"
	pathSI    = "lighthouseResult.audits.speed-index.numericValue"
	pathTBT   = "lighthouseResult.audits.total-blocking-time.numericValue"
	pathCLS   = "lighthouseResult.audits.cumulative-layout-shift.numericValue"
	pathTTFB  = "lighthouseResult.audits.server-response-time.numericValue"
	pathINP   = "lighthouseResult.audits.interaction-to-next-paint.numericValue"

	millisInSecond = 1000
	scoreScale     = 100
	scoreEpsilon   = 1e-9
)

type lighthouseExtractor struct {
}

// NewLighthouseExtractor creates an extractor for PageSpeed Insights v5 responses
func NewLighthouseExtractor() *lighthouseExtractor {
	return &lighthouseExtractor{}
}

// Extract reads the metrics out of one raw PageSpeed response. Either all the required metrics are found or
// an error is returned; INP is the only metric allowed to be missing.
func (e *lighthouseExtractor) Extract(body []byte) (*common.MetricRecord, error) {
	if !gjson.ValidBytes(body) {
		return nil, ErrInvalidJSON
	}

	values := gjson.GetManyBytes(body, pathScore, pathFCP, pathLCP, pathSI, pathTBT, pathCLS, pathTTFB, pathINP)
	required := []string{pathScore, pathFCP, pathLCP, pathSI, pathTBT, pathCLS, pathTTFB}
	for i, path := range required {
		err := checkNumber(values[i], path)
		if err != nil {
			return nil, err
		}
	}

	score := values[0].Float()
	if score < 0 || score > 1 {
		return nil, errOutOfRange(pathScore)
	}

	record := &common.MetricRecord{
		Score: common.IntPtr(int(math.Floor(score*scoreScale + scoreEpsilon))),
		FCP:   common.FloatPtr(millisToSeconds(values[1].Float())),
		LCP:   common.FloatPtr(millisToSeconds(values[2].Float())),
		SI:    common.FloatPtr(millisToSeconds(values[3].Float())),
		TBT:   common.IntPtr(int(math.Round(values[4].Float()))),
		CLS:   common.FloatPtr(common.RoundTo(values[5].Float(), 3)),
		TTFB:  common.FloatPtr(millisToSeconds(values[6].Float())),
	}

	inp := values[7]
	if inp.Type == gjson.Number {
		record.INP = common.FloatPtr(inp.Float())
	}

	return record, nil
}

func checkNumber(result gjson.Result, path string) error {
	if !result.Exists() {
		return errPathNotFound(path)
	}
	if result.Type != gjson.Number {
		return errNotANumber(path)
	}

	return nil
}

func millisToSeconds(value float64) float64 {
	return common.RoundTo(value/millisInSecond, 1)
}

// IsInterfaceNil returns true if the value under the interface is nil
func (e *lighthouseExtractor) IsInterfaceNil() bool {
	return e == nil
}
