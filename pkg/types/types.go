package types

// Report summarizes one conversion run. Counters are accumulated by the
// converter and returned to the caller instead of being kept in globals, so a
// batch can be judged for data quality without scraping log output.
type Report struct {
	Processed    int `json:"processed"`     // records inspected
	Features     int `json:"features"`      // features emitted
	Dropped      int `json:"dropped"`       // records without usable coordinates
	ThumbCreated int `json:"thumb_created"` // thumbnails written
	ThumbFailed  int `json:"thumb_failed"`  // thumbnails skipped on image errors
}
