package data

import (
	"bufio"
	"compress/gzip"
	"encoding/binary"
	"image"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// IDX magic numbers of the MNIST family of datasets (MNIST, Fashion-MNIST, KMNIST).
const (
	imageMagic = 0x00000803
	labelMagic = 0x00000801

	// maxPixels bounds a single allocation driven by a file header.
	maxPixels = 1 << 31
)

var splitFiles = map[string][2]string{
	"train": {"train-images-idx3-ubyte", "train-labels-idx1-ubyte"},
	"test":  {"t10k-images-idx3-ubyte", "t10k-labels-idx1-ubyte"},
}

type imageFileHeader struct {
	Magic     int32
	NumImages int32
	Height    int32
	Width     int32
}

type labelFileHeader struct {
	Magic     int32
	NumLabels int32
}

// Images holds N grayscale images of Height x Width pixels, stored contiguously.
// 0 is background and 255 full intensity.
type Images struct {
	N, Height, Width int
	Pixels           []byte
}

// Size is the number of pixels of one image.
func (im *Images) Size() int { return im.Height * im.Width }

// Pixel row of image i, sharing storage.
func (im *Images) At(i int) []byte { return im.Pixels[i*im.Size() : (i+1)*im.Size()] }

// Gray returns image i as an image.Image, for plotting.
func (im *Images) Gray(i int) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, im.Width, im.Height))
	copy(g.Pix, im.At(i))
	return g
}

// Subset copies the images at idx, in that order.
func (im *Images) Subset(idx []int) *Images {
	out := &Images{N: len(idx), Height: im.Height, Width: im.Width, Pixels: make([]byte, 0, len(idx)*im.Size())}
	for _, i := range idx {
		out.Pixels = append(out.Pixels, im.At(i)...)
	}
	return out
}

// maybeGunzip transparently decompresses gzip input, detected by its magic bytes.
func maybeGunzip(r io.Reader) (io.Reader, func() error, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(2)
	if err == nil && head[0] == 0x1f && head[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, nil, errors.Wrap(err, "gzip.NewReader")
		}
		return gz, gz.Close, nil
	}
	return br, func() error { return nil }, nil
}

// ReadImages parses an IDX3 image file, gzipped or not.
func ReadImages(r io.Reader) (*Images, error) {
	r, closeFn, err := maybeGunzip(r)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	var header imageFileHeader
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return nil, errors.Wrap(err, "reading image file header")
	}
	if header.Magic != imageMagic {
		return nil, errors.Errorf("invalid image file magic 0x%08x, want 0x%08x", header.Magic, imageMagic)
	}
	if header.NumImages < 0 || header.Height <= 0 || header.Width <= 0 {
		return nil, errors.Errorf("invalid image file dimensions %dx%dx%d", header.NumImages, header.Height, header.Width)
	}
	total := int64(header.NumImages) * int64(header.Height) * int64(header.Width)
	if total > maxPixels {
		return nil, errors.Errorf("image file declares %d pixels, refusing to load more than %d", total, int64(maxPixels))
	}
	im := &Images{N: int(header.NumImages), Height: int(header.Height), Width: int(header.Width), Pixels: make([]byte, total)}
	if _, err := io.ReadFull(r, im.Pixels); err != nil {
		return nil, errors.Wrapf(err, "reading %d images", im.N)
	}
	return im, nil
}

// ReadLabels parses an IDX1 label file, gzipped or not.
func ReadLabels(r io.Reader) ([]uint8, error) {
	r, closeFn, err := maybeGunzip(r)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	var header labelFileHeader
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return nil, errors.Wrap(err, "reading label file header")
	}
	if header.Magic != labelMagic {
		return nil, errors.Errorf("invalid label file magic 0x%08x, want 0x%08x", header.Magic, labelMagic)
	}
	if header.NumLabels < 0 || int64(header.NumLabels) > maxPixels {
		return nil, errors.Errorf("invalid label count %d", header.NumLabels)
	}
	labels := make([]uint8, header.NumLabels)
	if _, err := io.ReadFull(r, labels); err != nil {
		return nil, errors.Wrapf(err, "reading %d labels", len(labels))
	}
	return labels, nil
}

func LoadImagesFile(path string) (*Images, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "os.Open")
	}
	defer f.Close()
	im, err := ReadImages(f)
	return im, errors.WithMessage(err, path)
}

func LoadLabelsFile(path string) ([]uint8, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "os.Open")
	}
	defer f.Close()
	labels, err := ReadLabels(f)
	return labels, errors.WithMessage(err, path)
}

// findFile returns dir/name, or dir/name.gz when only the compressed copy exists.
func findFile(dir, name string) (string, error) {
	for _, candidate := range []string{name, name + ".gz"} {
		p := filepath.Join(dir, candidate)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", errors.Errorf("neither %s nor %s.gz found in %s", name, name, dir)
}

// LoadSplit loads the "train" or "test" split of an MNIST-layout dataset from dir.
func LoadSplit(dir, split string) (*Images, []uint8, error) {
	names, ok := splitFiles[split]
	if !ok {
		return nil, nil, errors.Errorf("unknown split %q, want \"train\" or \"test\"", split)
	}
	imagesPath, err := findFile(dir, names[0])
	if err != nil {
		return nil, nil, err
	}
	labelsPath, err := findFile(dir, names[1])
	if err != nil {
		return nil, nil, err
	}
	images, err := LoadImagesFile(imagesPath)
	if err != nil {
		return nil, nil, err
	}
	labels, err := LoadLabelsFile(labelsPath)
	if err != nil {
		return nil, nil, err
	}
	if images.N != len(labels) {
		return nil, nil, errors.Errorf("%s split has %d images but %d labels", split, images.N, len(labels))
	}
	klog.V(1).Infof("loaded %s split from %s: %d images of %dx%d", split, dir, images.N, images.Height, images.Width)
	return images, labels, nil
}

// WriteImages encodes im as an uncompressed IDX3 file.
func WriteImages(w io.Writer, im *Images) error {
	header := imageFileHeader{Magic: imageMagic, NumImages: int32(im.N), Height: int32(im.Height), Width: int32(im.Width)}
	if err := binary.Write(w, binary.BigEndian, header); err != nil {
		return errors.Wrap(err, "writing image file header")
	}
	_, err := w.Write(im.Pixels)
	return errors.Wrap(err, "writing pixels")
}

// WriteLabels encodes labels as an uncompressed IDX1 file.
func WriteLabels(w io.Writer, labels []uint8) error {
	header := labelFileHeader{Magic: labelMagic, NumLabels: int32(len(labels))}
	if err := binary.Write(w, binary.BigEndian, header); err != nil {
		return errors.Wrap(err, "writing label file header")
	}
	_, err := w.Write(labels)
	return errors.Wrap(err, "writing labels")
}
