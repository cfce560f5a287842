package main

import (
	"errors"
	"fmt"
	"io/fs"
	"math/rand/v2"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sunshineplan/imgnorm"
	"github.com/sunshineplan/utils/log"
	"github.com/sunshineplan/utils/progressbar"
	"golang.org/x/sync/errgroup"
)

var supported = regexp.MustCompile(`(?i)\.(jpe?g|png|gif|tiff?|bmp|webp)$`)

var errSkip = errors.New("skip")

// session holds the settings and counters of one run.
type session struct {
	task   *imgnorm.FormatOption
	width  int
	opts   []imgnorm.Option
	force  bool
	debug  bool
	worker int

	converted atomic.Int64
	skipped   atomic.Int64
	failed    atomic.Int64
}

// captureName names an image read from stdin the way a camera capture is named.
func captureName(t time.Time, format imgnorm.Format) string {
	return fmt.Sprintf("JPEG%s_%d.%s", t.Format("20060102_150405"), rand.Uint32(), format.Ext())
}

// scanInterval is how often loadImages refreshes its progress line.
var scanInterval = time.Second

func loadImages(root, skip string) (imgs []string) {
	var message atomic.Pointer[string]
	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		ticker := time.NewTicker(scanInterval)
		defer ticker.Stop()
		var width int
		for {
			select {
			case <-done:
				fmt.Fprintf(os.Stderr, "\r%s\r", strings.Repeat(" ", width))
				return
			case <-ticker.C:
				if m := message.Load(); m != nil {
					fmt.Fprintf(os.Stderr, "\r%s\r%s", strings.Repeat(" ", width), *m)
					width = len(*m)
				}
			}
		}
	}()

	skip = filepath.Clean(skip)
	var dir string
	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Error("Failed to scan", "path", path, "error", err)
			return nil
		}
		if d.IsDir() {
			if path != root && filepath.Clean(path) == skip {
				return filepath.SkipDir
			}
			dir = path
		} else if supported.MatchString(d.Name()) {
			imgs = append(imgs, path)
		}
		m := fmt.Sprintf("Found images: %d, Scanning directory %s", len(imgs), dir)
		message.Store(&m)
		return nil
	})
	close(done)
	<-stopped
	return
}

func (s *session) run(root, dst string, images []string) {
	if len(images) == 0 {
		return
	}
	pb := progressbar.New(len(images))
	pb.Start()
	var g errgroup.Group
	g.SetLimit(max(1, s.worker))
	for _, image := range images {
		g.Go(func() error {
			defer pb.Add(1)

			rel, err := filepath.Rel(root, image)
			if err != nil {
				log.Error("Failed to get relative path", "image", image, "error", err)
				s.failed.Add(1)
				return nil
			}
			s.process(imgnorm.File(image), s.task.ConvertExt(filepath.Join(dst, rel)))
			return nil
		})
	}
	g.Wait()
	pb.Done()
}

func (s *session) process(src imgnorm.Source, output string) error {
	err := s.normalize(src, output)
	switch {
	case err == nil:
		s.converted.Add(1)
		if s.debug {
			log.Info("Normalized", "image", src.String(), "output", output)
		}
	case errors.Is(err, errSkip):
		s.skipped.Add(1)
		log.Info("Skip", "output", output)
	default:
		s.failed.Add(1)
	}
	return err
}

func (s *session) normalize(src imgnorm.Source, output string) (err error) {
	if _, err = os.Stat(output); err == nil {
		if !s.force {
			return errSkip
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		log.Error("Failed to get FileInfo", "name", output, "error", err)
		return
	}
	path := filepath.Dir(output)
	if err = os.MkdirAll(path, 0755); err != nil {
		log.Error("Failed to create directory", "path", path, "error", err)
		return
	}
	img, err := imgnorm.Normalize(src, s.width, s.opts...)
	if err != nil {
		log.Error("Failed to normalize image", "image", src.String(), "error", err)
		return
	}
	f, err := os.CreateTemp(path, "*.tmp")
	if err != nil {
		log.Error("Failed to create temporary file", "path", path, "error", err)
		return
	}
	if err = s.task.Encode(f, img); err != nil {
		f.Close()
		os.Remove(f.Name())
		log.Error("Failed to encode image", "image", src.String(), "error", err)
		return
	}
	if err = f.Close(); err != nil {
		os.Remove(f.Name())
		log.Error("Failed to write temporary file", "name", f.Name(), "error", err)
		return
	}
	if err = os.Rename(f.Name(), output); err != nil {
		log.Error("Failed to move file", "from", f.Name(), "to", output, "error", err)
	}
	return
}

func (s *session) report() {
	log.Info("Done", "converted", s.converted.Load(), "skipped", s.skipped.Load(), "failed", s.failed.Load())
}
