package bbox

import (
	"github.com/menta2k/image-augment/pkg/errors"
)

// Format identifies an external bounding-box layout.
type Format string

// Supported external formats.
const (
	// FormatPascalVOC is pixel-space (x_min, y_min, x_max, y_max).
	FormatPascalVOC Format = "pascal_voc"
	// FormatCOCO is pixel-space (x, y, width, height) with (x, y) the
	// top-left corner.
	FormatCOCO Format = "coco"
	// FormatYOLO is normalized (center_x, center_y, width, height).
	FormatYOLO Format = "yolo"
	// FormatInternal is the normalized min/max layout used internally,
	// accepted externally as well.
	FormatInternal Format = "normalized"
)

// ParseFormat validates a bounding-box format name.
func ParseFormat(spec string) (Format, error) {
	switch Format(spec) {
	case FormatPascalVOC, FormatCOCO, FormatYOLO, FormatInternal:
		return Format(spec), nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat,
		"unknown bbox format %q (must be one of: pascal_voc, coco, yolo, normalized)", spec)
}

// ToInternal converts a single external record to the internal normalized
// representation. The first four fields are interpreted per the format; any
// remaining fields are carried as trailing payload.
func ToInternal(record []float64, rows, cols int, f Format) (Box, error) {
	if len(record) < 4 {
		return Box{}, errors.New(errors.ErrCodeInvalidFormat,
			"bbox record has %d fields, format %q requires 4", len(record), f)
	}

	w := float64(cols)
	h := float64(rows)
	var b Box
	switch f {
	case FormatPascalVOC:
		b = Box{XMin: record[0] / w, YMin: record[1] / h, XMax: record[2] / w, YMax: record[3] / h}
	case FormatCOCO:
		b = Box{XMin: record[0] / w, YMin: record[1] / h, XMax: (record[0] + record[2]) / w, YMax: (record[1] + record[3]) / h}
	case FormatYOLO:
		cx, cy, bw, bh := record[0], record[1], record[2], record[3]
		b = Box{XMin: cx - bw/2, YMin: cy - bh/2, XMax: cx + bw/2, YMax: cy + bh/2}
	case FormatInternal:
		b = Box{XMin: record[0], YMin: record[1], XMax: record[2], YMax: record[3]}
	default:
		return Box{}, errors.New(errors.ErrCodeInvalidFormat, "unknown bbox format %q", f)
	}
	if extra := record[4:]; len(extra) > 0 {
		b.Extra = append([]float64(nil), extra...)
	}
	return b, nil
}

// FromInternal converts a box back to the external layout selected by the
// format, re-appending the trailing payload. It is the exact inverse of
// ToInternal up to floating-point tolerance.
func FromInternal(b Box, rows, cols int, f Format) []float64 {
	w := float64(cols)
	h := float64(rows)
	record := make([]float64, 0, 4+len(b.Extra))
	switch f {
	case FormatPascalVOC:
		record = append(record, b.XMin*w, b.YMin*h, b.XMax*w, b.YMax*h)
	case FormatCOCO:
		record = append(record, b.XMin*w, b.YMin*h, (b.XMax-b.XMin)*w, (b.YMax-b.YMin)*h)
	case FormatYOLO:
		record = append(record, (b.XMin+b.XMax)/2, (b.YMin+b.YMax)/2, b.XMax-b.XMin, b.YMax-b.YMin)
	default:
		record = append(record, b.XMin, b.YMin, b.XMax, b.YMax)
	}
	return append(record, b.Extra...)
}

// ToInternalBatch converts a sequence of external records, preserving order
// and length. It stops at the first malformed record.
func ToInternalBatch(records [][]float64, rows, cols int, f Format) ([]Box, error) {
	boxes := make([]Box, 0, len(records))
	for i, r := range records {
		b, err := ToInternal(r, rows, cols, f)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "bbox %d", i)
		}
		boxes = append(boxes, b)
	}
	return boxes, nil
}

// FromInternalBatch converts a sequence of boxes back to external records,
// preserving order and length.
func FromInternalBatch(boxes []Box, rows, cols int, f Format) [][]float64 {
	records := make([][]float64, 0, len(boxes))
	for _, b := range boxes {
		records = append(records, FromInternal(b, rows, cols, f))
	}
	return records
}
