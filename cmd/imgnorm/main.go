package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/sunshineplan/imgnorm"
	"github.com/sunshineplan/utils/log"
	"github.com/vharitonsky/iniflags"
)

var (
	src     = flag.String("src", "", "")
	dst     = flag.String("dst", "output", "")
	width   = flag.Int("width", 1080, "")
	quality = flag.Int("quality", 75, "")
	parity  = flag.Bool("parity", false, "")
	force   = flag.Bool("force", false, "")
	worker  = flag.Int("worker", 5, "")
	debug   = flag.Bool("debug", false, "")

	format imgnorm.Format
	canvas imgnorm.CanvasMode
)

func init() {
	flag.TextVar(&format, "format", imgnorm.JPEG, "")
	flag.TextVar(&canvas, "canvas", imgnorm.FitCanvas, "")
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "Usage of %s:\n", os.Args[0])
	fmt.Println(`
  --src
		source file or directory, - reads a single image from stdin
  --dst
		destination directory (default: output)
  --width
		target width, wider images are scaled down to it (default: 1080)
  --format
		output format (jpg, jpeg, png, gif, tif, tiff, bmp and pdf are supported, default: jpg)
  --quality
		set jpeg or pdf quality (range 1-100, default: 75)
  --canvas
		output canvas (fit, source, default: fit)
  --parity
		plan decode subsampling against the image bounds instead of the target width (default: false)
  --force
		force overwrite (default: false)
  --worker
		number of images normalized at the same time (default: 5)
  --debug
		log every normalized image (default: false)`)
}

func main() {
	var code int
	defer func() { os.Exit(code) }()

	self, err := os.Executable()
	if err != nil {
		log.Error("Failed to get self path", "error", err)
		code = 1
		return
	}

	flag.Usage = usage
	iniflags.SetConfigFile(filepath.Join(filepath.Dir(self), "config.ini"))
	iniflags.SetAllowMissingConfigFile(true)
	iniflags.Parse()

	if *width <= 0 {
		log.Error("Invalid target width", "width", *width)
		code = 1
		return
	}

	s := &session{
		task: &imgnorm.FormatOption{
			Format:       format,
			EncodeOption: []imgnorm.EncodeOption{imgnorm.Quality(*quality)},
		},
		width:  *width,
		opts:   []imgnorm.Option{imgnorm.Canvas(canvas), imgnorm.ParityTarget(*parity)},
		force:  *force,
		debug:  *debug,
		worker: *worker,
	}

	if err := prepareDestination(*dst); err != nil {
		log.Error("Failed to prepare destination", "path", *dst, "error", err)
		code = 1
		return
	}

	if *src == "-" {
		output := filepath.Join(*dst, captureName(time.Now(), format))
		if err := s.process(imgnorm.Stream(os.Stdin), output); err != nil {
			code = 1
		}
		s.report()
		return
	}

	srcInfo, err := os.Stat(*src)
	if err != nil {
		log.Error("Failed to get FileInfo", "name", *src, "error", err)
		code = 1
		return
	}

	switch mode := srcInfo.Mode(); {
	case mode.IsDir():
		images := loadImages(*src, *dst)
		log.Info("Found images", "total", len(images))
		s.run(*src, *dst, images)
		if s.failed.Load() > 0 {
			code = 1
		}
	case mode.IsRegular():
		output := s.task.ConvertExt(filepath.Join(*dst, filepath.Base(*src)))
		if err := s.process(imgnorm.File(*src), output); err != nil {
			if errors.Is(err, errSkip) {
				log.Error("Destination already exist", "name", output)
			}
			code = 1
		}
	default:
		log.Error("Unknown source", "name", *src)
		code = 1
		return
	}
	s.report()
}

func prepareDestination(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		if err := os.MkdirAll(path, 0755); err != nil {
			return err
		}
		return nil
	}
	if !info.IsDir() {
		return errors.New("destination is not a directory")
	}
	return nil
}
