package client

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/lazy-eggplant/vs.logger/pkg/vslog"
)

// NewTailCommand constructs the `tail` command: it prints the events already
// in a durable log file and then follows appends.
func NewTailCommand() *cobra.Command {
	tailCmd := &cobra.Command{
		Use:   "tail",
		Short: "Follow a durable log file and print its events",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("file")
			fromEnd, _ := cmd.Flags().GetBool("from-end")
			if path == "" {
				return fmt.Errorf("--file is required")
			}

			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			sc := &lineScanner{}
			out := cmd.OutOrStdout()
			if fromEnd {
				if _, err := f.Seek(0, io.SeekEnd); err != nil {
					return err
				}
			} else if err := drain(f, sc, out); err != nil {
				return err
			}

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return err
			}
			defer watcher.Close()
			if err := watcher.Add(path); err != nil {
				return err
			}

			for {
				select {
				case <-cmd.Context().Done():
					return nil
				case ev, ok := <-watcher.Events:
					if !ok {
						return nil
					}
					if ev.Op&fsnotify.Write != 0 {
						if err := drain(f, sc, out); err != nil {
							return err
						}
					}
					if ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
						return fmt.Errorf("log file went away: %s", path)
					}
				case err, ok := <-watcher.Errors:
					if !ok {
						return nil
					}
					return err
				}
			}
		},
	}
	tailCmd.Flags().String("file", "", "Durable log file to follow")
	tailCmd.Flags().Bool("from-end", false, "Skip existing content and only print new events")
	return tailCmd
}

// drain reads everything currently available from r and prints the complete
// lines it yields.
func drain(r io.Reader, sc *lineScanner, out io.Writer) error {
	buf := make([]byte, 32*1024)
	for {
		n, err := r.Read(buf)
		for _, line := range sc.feed(buf[:n]) {
			printLine(out, line)
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func printLine(out io.Writer, line string) {
	ev, err := vslog.ParseLine(line)
	if err != nil {
		fmt.Fprintf(out, "?? %s\n", line)
		return
	}
	fmt.Fprintf(out, "%-7s %-4s activity=%d seq=%d parent=%d %s\n",
		ev.Kind, ev.Severity, ev.ActivityID, ev.SeqID, ev.ParentID, ev.Message)
}

// lineScanner accumulates arbitrary chunks and yields complete
// newline-terminated lines, holding back any trailing partial line until the
// rest of it arrives.
type lineScanner struct {
	pending []byte
}

func (s *lineScanner) feed(chunk []byte) []string {
	s.pending = append(s.pending, chunk...)
	var lines []string
	for {
		i := bytes.IndexByte(s.pending, '\n')
		if i < 0 {
			return lines
		}
		lines = append(lines, string(s.pending[:i]))
		s.pending = s.pending[i+1:]
	}
}
