package vslog

import "os"

// fileSink appends durable log lines to a file. Writes are unbuffered, so a
// returned append implies the line reached the operating system.
type fileSink struct {
	f *os.File
}

func newFileSink(path string) (*fileSink, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &fileSink{f: f}, nil
}

func (s *fileSink) append(ev Event) error {
	_, err := s.f.WriteString(FormatLine(ev))
	return err
}

func (s *fileSink) close() error {
	return s.f.Close()
}
