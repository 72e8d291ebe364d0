package testsCommon

import "fmt"

// LighthouseBody returns a minimal PageSpeed Insights v5 response carrying the provided performance score
// and fixed audit values: FCP 1200 ms, LCP 2400 ms, SI 3000 ms, TBT 150 ms, CLS 0.05, TTFB 500 ms, INP 90 ms
func LighthouseBody(score float64) []byte {
	return []byte(fmt.Sprintf(`{
  "lighthouseResult": {
    "categories": {"performance": {"score": %v}},
    "audits": {
      "first-contentful-paint": {"numericValue": 1200},
      "largest-contentful-paint": {"numericValue": 2400},
      "speed-index": {"numericValue": 3000},
      "total-blocking-time": {"numericValue": 150},
      "cumulative-layout-shift": {"numericValue": 0.05},
      "server-response-time": {"numericValue": 500},
      "interaction-to-next-paint": {"numericValue": 90}
    }
  }
}`, score))
}
