package analysis

import "time"

// TimestampLayout renders times as yyyy-MM-dd HH:mm:ss.
const TimestampLayout = "2006-01-02 15:04:05"

// Image is an uploaded image held in memory for a single request.
type Image struct {
	Data     []byte
	MIMEType string
	Filename string
}

type Request struct {
	Image *Image
	Query string
}

type Result struct {
	Content       string
	CompletedAt   time.Time
	Query         string
	ImageFilename string
}

func (r Result) Timestamp() string {
	return r.CompletedAt.Format(TimestampLayout)
}
