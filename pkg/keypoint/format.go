package keypoint

import (
	"math"

	"github.com/menta2k/image-augment/pkg/errors"
)

// Format describes the field layout of an external keypoint record. It is
// parsed once from a format string such as "xy", "yx", "xya", "xys", "xyas" or
// any other ordering of those letters with x and y present and no letter
// repeated. Record fields beyond the format-defined ones are treated as
// trailing payload.
type Format struct {
	spec     string
	letters  []byte
	hasAngle bool
	hasScale bool
}

// ParseFormat validates a keypoint format string. It fails with an
// INVALID_FORMAT error when the string is empty, contains a letter outside the
// x/y/a/s vocabulary, repeats a letter, or omits x or y.
func ParseFormat(spec string) (Format, error) {
	if spec == "" {
		return Format{}, errors.New(errors.ErrCodeInvalidFormat, "keypoint format is empty")
	}

	f := Format{spec: spec}
	seen := map[byte]bool{}
	for i := 0; i < len(spec); i++ {
		l := spec[i]
		switch l {
		case 'x', 'y':
		case 'a':
			f.hasAngle = true
		case 's':
			f.hasScale = true
		default:
			return Format{}, errors.New(errors.ErrCodeInvalidFormat,
				"unknown letter %q in keypoint format %q", string(l), spec)
		}
		if seen[l] {
			return Format{}, errors.New(errors.ErrCodeInvalidFormat,
				"duplicate letter %q in keypoint format %q", string(l), spec)
		}
		seen[l] = true
		f.letters = append(f.letters, l)
	}
	if !seen['x'] || !seen['y'] {
		return Format{}, errors.New(errors.ErrCodeInvalidFormat,
			"keypoint format %q must contain both x and y", spec)
	}
	return f, nil
}

// String returns the original format string.
func (f Format) String() string { return f.spec }

// HasAngle reports whether the format carries an angle field.
func (f Format) HasAngle() bool { return f.hasAngle }

// HasScale reports whether the format carries a scale field.
func (f Format) HasScale() bool { return f.hasScale }

// NumFields returns the number of format-defined fields in a record.
func (f Format) NumFields() int { return len(f.letters) }

// ToInternal converts a single external record to the internal representation.
// Fields are consumed in the order the format letters appear; a missing angle
// defaults to 0 and a missing scale to 0 (the "absent" convention). When the
// format carries an angle and unit is Degrees, the angle is converted to
// radians; either way it is normalized into [0, 2π). Fields beyond the
// format-defined ones are copied into Extra unchanged.
//
// rows and cols are the dimensions of the image the record belongs to; the
// conversion itself is dimension-independent, they are part of the contract so
// both directions share one signature with the bounding-box converters.
func ToInternal(record []float64, rows, cols int, f Format, unit AngleUnit) (Keypoint, error) {
	_ = rows
	_ = cols
	if len(record) < len(f.letters) {
		return Keypoint{}, errors.New(errors.ErrCodeInvalidFormat,
			"keypoint record has %d fields, format %q requires %d", len(record), f.spec, len(f.letters))
	}

	var kp Keypoint
	for i, l := range f.letters {
		v := record[i]
		switch l {
		case 'x':
			kp.X = v
		case 'y':
			kp.Y = v
		case 'a':
			if unit == Degrees {
				v = v * math.Pi / 180
			}
			kp.Angle = NormalizeAngle(v)
		case 's':
			kp.Scale = v
		}
	}
	if extra := record[len(f.letters):]; len(extra) > 0 {
		kp.Extra = append([]float64(nil), extra...)
	}
	return kp, nil
}

// FromInternal converts a keypoint back to the external record layout selected
// by the format, re-appending the trailing payload. It is the exact inverse of
// ToInternal up to floating-point tolerance in the angle conversion.
func FromInternal(kp Keypoint, rows, cols int, f Format, unit AngleUnit) []float64 {
	_ = rows
	_ = cols
	record := make([]float64, 0, len(f.letters)+len(kp.Extra))
	for _, l := range f.letters {
		switch l {
		case 'x':
			record = append(record, kp.X)
		case 'y':
			record = append(record, kp.Y)
		case 'a':
			a := NormalizeAngle(kp.Angle)
			if unit == Degrees {
				a = a * 180 / math.Pi
			}
			record = append(record, a)
		case 's':
			record = append(record, kp.Scale)
		}
	}
	return append(record, kp.Extra...)
}

// ToInternalBatch converts a sequence of external records, preserving order
// and length. It stops at the first malformed record.
func ToInternalBatch(records [][]float64, rows, cols int, f Format, unit AngleUnit) ([]Keypoint, error) {
	kps := make([]Keypoint, 0, len(records))
	for i, r := range records {
		kp, err := ToInternal(r, rows, cols, f, unit)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "keypoint %d", i)
		}
		kps = append(kps, kp)
	}
	return kps, nil
}

// FromInternalBatch converts a sequence of keypoints back to external records,
// preserving order and length.
func FromInternalBatch(kps []Keypoint, rows, cols int, f Format, unit AngleUnit) [][]float64 {
	records := make([][]float64, 0, len(kps))
	for _, kp := range kps {
		records = append(records, FromInternal(kp, rows, cols, f, unit))
	}
	return records
}
