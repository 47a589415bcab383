package models

// PayloadFile records one file part captured into a payload.
type PayloadFile struct {
	Slot int
	Name string
	Size int64
}

// Payload is a fully materialised multipart submission body.
// It is captured once at submit time so later slot changes cannot affect it,
// and it can be replayed byte-for-byte by transport retries.
type Payload struct {
	ContentType string
	Body        []byte
	Files       []PayloadFile
}

// TotalSize returns the summed size of the captured files.
func (p *Payload) TotalSize() int64 {
	var total int64
	for _, f := range p.Files {
		total += f.Size
	}
	return total
}

// Response is the document returned by the comparison endpoint.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}
