package cmd

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/marcinbor85/gohex"
	"golang.org/x/crypto/blake2b"
	yaml "gopkg.in/yaml.v3"

	"github.com/marnovandermaas/sunburst/internal/configpaths"
)

// ImageCommand groups firmware image subcommands.
type ImageCommand struct {
	Info     ImageInfo     `cmd:"" help:"Describe the segments of an Intel HEX firmware image"`
	Manifest ImageManifest `cmd:"" help:"Write a digest manifest for an Intel HEX firmware image"`
	Verify   ImageVerify   `cmd:"" help:"Check an Intel HEX firmware image against its manifest"`
}

// SegmentDigest pins down one contiguous run of image data.
type SegmentDigest struct {
	Address string `json:"address" yaml:"address"`
	Size    int    `json:"size" yaml:"size"`
	Blake2b string `json:"blake2b" yaml:"blake2b"`
}

// ImageDigest is the manifest written alongside a firmware image. The
// image digest covers all segment data in address order.
type ImageDigest struct {
	Image    string          `json:"image" yaml:"image"`
	Size     int             `json:"size" yaml:"size"`
	Blake2b  string          `json:"blake2b" yaml:"blake2b"`
	Segments []SegmentDigest `json:"segments" yaml:"segments"`
}

func digestImage(path string) (*ImageDigest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	mem := gohex.NewMemory()
	if err := mem.ParseIntelHex(f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	d := &ImageDigest{Image: filepath.Base(path)}
	whole, err := blake2b.New256(nil)
	if err != nil {
		return nil, err
	}
	for _, seg := range mem.GetDataSegments() {
		sum := blake2b.Sum256(seg.Data)
		d.Segments = append(d.Segments, SegmentDigest{
			Address: fmt.Sprintf("%#010x", seg.Address),
			Size:    len(seg.Data),
			Blake2b: hex.EncodeToString(sum[:]),
		})
		d.Size += len(seg.Data)
		whole.Write(seg.Data)
	}
	d.Blake2b = hex.EncodeToString(whole.Sum(nil))
	return d, nil
}

// ImageInfo prints the segment layout of an image.
type ImageInfo struct {
	Path string `arg:"" type:"existingfile" help:"Intel HEX image"`
}

// Run is called by Kong when the image info command is executed.
func (c *ImageInfo) Run(logger *slog.Logger) error {
	d, err := digestImage(c.Path)
	if err != nil {
		return err
	}

	fmt.Printf("%s: %d segments, %d bytes, blake2b %s\n", d.Image, len(d.Segments), d.Size, d.Blake2b[:16])
	for _, seg := range d.Segments {
		fmt.Printf("  %s  %7d bytes  blake2b %s\n", seg.Address, seg.Size, seg.Blake2b[:16])
	}
	return nil
}

// ImageManifest writes the digest manifest for an image.
type ImageManifest struct {
	Path   string `arg:"" type:"existingfile" help:"Intel HEX image"`
	Format string `help:"Output format" enum:"json,yaml" default:"yaml"`
	Output string `help:"Destination file path (defaults next to the image)"`
	Force  bool   `help:"Overwrite if the file already exists"`
}

// Run is called by Kong when the image manifest command is executed.
func (c *ImageManifest) Run(logger *slog.Logger) error {
	d, err := digestImage(c.Path)
	if err != nil {
		return err
	}

	dest := c.Output
	if dest == "" {
		dest = strings.TrimSuffix(c.Path, filepath.Ext(c.Path)) + ".manifest." + c.Format
	}
	if !c.Force {
		if _, err := os.Stat(dest); err == nil {
			return errors.New("destination exists; use --force to overwrite")
		}
	}
	if err := configpaths.EnsureDir(dest); err != nil {
		return err
	}

	var data []byte
	switch c.Format {
	case "json":
		data, err = json.MarshalIndent(d, "", "  ")
	case "yaml":
		data, err = yaml.Marshal(d)
	}
	if err != nil {
		return err
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return err
	}

	logger.Info("Wrote image manifest", "image", c.Path, "manifest", dest, "segments", len(d.Segments))
	return nil
}

// ImageVerify checks an image against a previously written manifest.
type ImageVerify struct {
	Path     string `arg:"" type:"existingfile" help:"Intel HEX image"`
	Manifest string `arg:"" type:"existingfile" help:"Manifest to check against"`
}

// Run is called by Kong when the image verify command is executed.
func (c *ImageVerify) Run(logger *slog.Logger) error {
	want, err := readManifest(c.Manifest)
	if err != nil {
		return err
	}
	got, err := digestImage(c.Path)
	if err != nil {
		return err
	}

	ok := true
	if got.Blake2b != want.Blake2b || got.Size != want.Size {
		logger.Error("Image digest mismatch",
			"wantSize", want.Size, "gotSize", got.Size,
			"wantBlake2b", want.Blake2b, "gotBlake2b", got.Blake2b)
		ok = false
	}
	if len(got.Segments) != len(want.Segments) {
		logger.Error("Segment count mismatch", "want", len(want.Segments), "got", len(got.Segments))
		ok = false
	} else {
		for i := range want.Segments {
			if got.Segments[i] != want.Segments[i] {
				logger.Error("Segment mismatch",
					"address", want.Segments[i].Address,
					"wantBlake2b", want.Segments[i].Blake2b,
					"gotBlake2b", got.Segments[i].Blake2b)
				ok = false
			}
		}
	}
	if !ok {
		return errors.New("image does not match manifest")
	}

	logger.Info("Image matches manifest", "image", c.Path, "segments", len(got.Segments), "bytes", got.Size)
	return nil
}

func readManifest(path string) (*ImageDigest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var d ImageDigest
	if strings.HasSuffix(path, ".json") {
		err = json.Unmarshal(data, &d)
	} else {
		err = yaml.Unmarshal(data, &d)
	}
	if err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return &d, nil
}
