// Package pipeline implements Compose, the orchestrator that applies a
// sequence of probabilistic transforms to an image while keeping keypoints,
// bounding boxes, masks, label arrays and additional target streams
// consistent with the transformed image.
//
// # Invocation flow
//
// Each call converts external annotations to the internal representation,
// then for every transform in order: draws the probability gate, samples the
// transform's random parameters once, applies the identical parameters to
// every target kind the transform touches, filters annotations that left the
// image, and projects the reduction onto label arrays. Finally annotations
// are converted back to the caller's external format.
//
//	aug, err := pipeline.Compose([]transform.Transform{
//	    transform.HorizontalFlip{P: 0.5},
//	    transform.Rotate{P: 0.7, Limit: 30},
//	}, pipeline.Options{
//	    Keypoints: &pipeline.KeypointParams{Format: "xyas"},
//	    Seed:      42,
//	})
//	out, err := aug.Run(pipeline.Data{Image: img, Keypoints: kps})
//
// # Randomness
//
// A Pipeline owns a single *rand.Rand, seeded from Options.Seed (or the clock
// when zero) unless the caller supplies one via Options.RNG. The
// draw-and-sample sequence of each step is serialized with a mutex, so
// concurrent Run calls on one Pipeline are safe but interleave draws; use one
// Pipeline per worker for per-seed reproducibility.
package pipeline

import (
	"image"
	"io"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/menta2k/image-augment/pkg/bbox"
	"github.com/menta2k/image-augment/pkg/errors"
	"github.com/menta2k/image-augment/pkg/keypoint"
	"github.com/menta2k/image-augment/pkg/target"
	"github.com/menta2k/image-augment/pkg/transform"
)

// Reserved target names. Label fields and additional targets may not reuse
// them.
const (
	TargetImage     = "image"
	TargetMask      = "mask"
	TargetKeypoints = "keypoints"
	TargetBboxes    = "bboxes"
)

var reservedNames = map[string]bool{
	TargetImage:     true,
	TargetMask:      true,
	TargetKeypoints: true,
	TargetBboxes:    true,
}

// KeypointParams configures the external keypoint representation.
type KeypointParams struct {
	// Format is the keypoint format string, e.g. "xy", "yx", "xya", "xys",
	// "xyas".
	Format string
	// AngleUnit is the unit of external angle fields. Defaults to degrees.
	AngleUnit keypoint.AngleUnit
	// LabelFields names the label arrays aligned 1:1 with the keypoints.
	LabelFields []string
}

// BoxParams configures the external bounding-box representation.
type BoxParams struct {
	// Format is the box format name: "pascal_voc", "coco", "yolo" or
	// "normalized".
	Format string
	// LabelFields names the label arrays aligned 1:1 with the boxes.
	LabelFields []string
}

// Options configures a Pipeline.
type Options struct {
	// Keypoints must be set when keypoint targets (primary or additional)
	// are used.
	Keypoints *KeypointParams
	// Boxes must be set when bounding-box targets are used.
	Boxes *BoxParams
	// AdditionalTargets maps extra target names to the base kind whose
	// transform semantics they share: "image", "mask", "keypoints" or
	// "bboxes".
	AdditionalTargets map[string]string
	// Seed seeds the internal random generator; the clock is used when it
	// is zero and RNG is nil.
	Seed int64
	// RNG, when set, replaces the internal generator. The pipeline still
	// serializes draws with its own mutex, but the generator must not be
	// used concurrently elsewhere.
	RNG *rand.Rand
	// Logger receives per-step debug logging. Defaults to a discard logger.
	Logger *log.Logger
}

// Data is the per-call input and output of a Pipeline. The output carries
// exactly the keys supplied on input: annotation sequences come back possibly
// empty, never absent, in the same external format as supplied.
type Data struct {
	Image     image.Image
	Mask      image.Image
	Keypoints [][]float64
	Bboxes    [][]float64
	// Labels holds the declared label arrays, keyed by field name.
	Labels map[string][]any
	// Additional holds the declared additional targets, keyed by name.
	// Values are image.Image for image/mask kinds and [][]float64 for
	// keypoints/bboxes kinds.
	Additional map[string]any
}

// Pipeline is an immutable, reusable transform sequence. Create one with
// Compose and invoke it with Run.
type Pipeline struct {
	transforms []transform.Transform

	kpFormat  keypoint.Format
	kpUnit    keypoint.AngleUnit
	kpLabels  []string
	hasKP     bool
	boxFormat bbox.Format
	boxLabels []string
	hasBox    bool

	additional map[string]transform.Kind

	mu     sync.Mutex
	rng    *rand.Rand
	logger *log.Logger
}

// Compose validates the configuration and builds a Pipeline. All
// configuration inconsistencies surface here as INVALID_CONFIG errors, before
// any data is processed.
func Compose(transforms []transform.Transform, opts Options) (*Pipeline, error) {
	p := &Pipeline{
		transforms: transforms,
		kpUnit:     keypoint.Degrees,
		additional: map[string]transform.Kind{},
		logger:     opts.Logger,
	}
	if p.logger == nil {
		p.logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	for _, tr := range transforms {
		if pr := tr.Probability(); pr < 0 || pr > 1 {
			return nil, errors.New(errors.ErrCodeInvalidConfig,
				"transform %s: probability %v outside [0,1]", tr.Name(), pr)
		}
	}

	if opts.Keypoints != nil {
		f, err := keypoint.ParseFormat(opts.Keypoints.Format)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "keypoint params")
		}
		p.kpFormat = f
		p.hasKP = true
		if opts.Keypoints.AngleUnit != "" {
			p.kpUnit = opts.Keypoints.AngleUnit
		}
		p.kpLabels = opts.Keypoints.LabelFields
	}
	if opts.Boxes != nil {
		f, err := bbox.ParseFormat(opts.Boxes.Format)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "bbox params")
		}
		p.boxFormat = f
		p.hasBox = true
		p.boxLabels = opts.Boxes.LabelFields
	}

	seen := map[string]bool{}
	for _, name := range append(append([]string{}, p.kpLabels...), p.boxLabels...) {
		if reservedNames[name] {
			return nil, errors.New(errors.ErrCodeInvalidConfig,
				"label field %q collides with a reserved target name", name)
		}
		if seen[name] {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "duplicate label field %q", name)
		}
		seen[name] = true
	}

	for name, kindName := range opts.AdditionalTargets {
		kind := transform.Kind(kindName)
		if !transform.ValidKinds[kind] {
			return nil, errors.New(errors.ErrCodeInvalidConfig,
				"additional target %q maps to unknown base kind %q", name, kindName)
		}
		if reservedNames[name] {
			return nil, errors.New(errors.ErrCodeInvalidConfig,
				"additional target %q collides with a reserved target name", name)
		}
		if seen[name] {
			return nil, errors.New(errors.ErrCodeInvalidConfig,
				"additional target %q collides with a label field", name)
		}
		if kind == transform.KindKeypoints && !p.hasKP {
			return nil, errors.New(errors.ErrCodeInvalidConfig,
				"additional target %q requires keypoint params", name)
		}
		if kind == transform.KindBboxes && !p.hasBox {
			return nil, errors.New(errors.ErrCodeInvalidConfig,
				"additional target %q requires bbox params", name)
		}
		seen[name] = true
		p.additional[name] = kind
	}

	if opts.RNG != nil {
		p.rng = opts.RNG
	} else {
		seed := opts.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		p.rng = rand.New(rand.NewSource(seed))
	}
	return p, nil
}

// callState is the per-invocation working copy of all targets.
type callState struct {
	img        image.Image
	mask       image.Image
	imgStreams map[string]image.Image         // additional image/mask targets
	kpStreams  map[string][]keypoint.Keypoint // primary + additional keypoints
	boxStreams map[string][]bbox.Box          // primary + additional boxes
	imgOrder   []string
	kpOrder    []string
	boxOrder   []string
	labels     map[string][]any
	rows, cols int
}

func dims(img image.Image) (rows, cols int) {
	b := img.Bounds()
	return b.Dy(), b.Dx()
}

// Run applies the pipeline to one set of targets. The input Data is not
// mutated; the result holds the transformed value for every supplied key.
// All alignment checks run before the first transform touches anything.
func (p *Pipeline) Run(d Data) (Data, error) {
	st, err := p.newCallState(d)
	if err != nil {
		return Data{}, err
	}

	for _, tr := range p.transforms {
		if err := p.step(tr, st); err != nil {
			return Data{}, err
		}
	}

	return p.assemble(d, st), nil
}

func (p *Pipeline) newCallState(d Data) (*callState, error) {
	if d.Image == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "target %q is required", TargetImage)
	}
	if d.Keypoints != nil && !p.hasKP {
		return nil, errors.New(errors.ErrCodeInvalidConfig,
			"keypoints supplied but no keypoint params configured")
	}
	if d.Bboxes != nil && !p.hasBox {
		return nil, errors.New(errors.ErrCodeInvalidConfig,
			"bboxes supplied but no bbox params configured")
	}

	st := &callState{
		img:        d.Image,
		mask:       d.Mask,
		imgStreams: map[string]image.Image{},
		kpStreams:  map[string][]keypoint.Keypoint{},
		boxStreams: map[string][]bbox.Box{},
		labels:     map[string][]any{},
	}
	st.rows, st.cols = dims(d.Image)

	// Label fields: every declared field must be present and aligned with
	// its annotation set; undeclared fields are rejected.
	declared := map[string]int{}
	if d.Keypoints != nil {
		for _, name := range p.kpLabels {
			declared[name] = len(d.Keypoints)
		}
	}
	if d.Bboxes != nil {
		for _, name := range p.boxLabels {
			declared[name] = len(d.Bboxes)
		}
	}
	for name, want := range declared {
		vals, ok := d.Labels[name]
		if !ok {
			return nil, errors.New(errors.ErrCodeTargetMismatch,
				"label field %q declared but not supplied", name)
		}
		if len(vals) != want {
			return nil, errors.New(errors.ErrCodeTargetMismatch,
				"label field %q has %d items, its annotation set has %d", name, len(vals), want)
		}
		st.labels[name] = append([]any(nil), vals...)
	}
	for name := range d.Labels {
		if _, ok := declared[name]; !ok {
			return nil, errors.New(errors.ErrCodeTargetMismatch,
				"label field %q was not declared", name)
		}
	}

	if d.Keypoints != nil {
		kps, err := keypoint.ToInternalBatch(d.Keypoints, st.rows, st.cols, p.kpFormat, p.kpUnit)
		if err != nil {
			return nil, err
		}
		st.kpStreams[TargetKeypoints] = kps
		st.kpOrder = append(st.kpOrder, TargetKeypoints)
	}
	if d.Bboxes != nil {
		boxes, err := bbox.ToInternalBatch(d.Bboxes, st.rows, st.cols, p.boxFormat)
		if err != nil {
			return nil, err
		}
		st.boxStreams[TargetBboxes] = boxes
		st.boxOrder = append(st.boxOrder, TargetBboxes)
	}

	// Additional targets are optional per call, but a supplied name must be
	// declared with a matching value type.
	for name := range d.Additional {
		if _, ok := p.additional[name]; !ok {
			return nil, errors.New(errors.ErrCodeInvalidConfig,
				"additional target %q was not declared", name)
		}
	}
	names := make([]string, 0, len(d.Additional))
	for name := range d.Additional {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		val := d.Additional[name]
		switch kind := p.additional[name]; kind {
		case transform.KindImage, transform.KindMask:
			img, ok := val.(image.Image)
			if !ok {
				return nil, errors.New(errors.ErrCodeInvalidInput,
					"additional target %q must be an image.Image", name)
			}
			st.imgStreams[name] = img
			st.imgOrder = append(st.imgOrder, name)
		case transform.KindKeypoints:
			records, ok := val.([][]float64)
			if !ok {
				return nil, errors.New(errors.ErrCodeInvalidInput,
					"additional target %q must be [][]float64", name)
			}
			kps, err := keypoint.ToInternalBatch(records, st.rows, st.cols, p.kpFormat, p.kpUnit)
			if err != nil {
				return nil, err
			}
			st.kpStreams[name] = kps
			st.kpOrder = append(st.kpOrder, name)
		case transform.KindBboxes:
			records, ok := val.([][]float64)
			if !ok {
				return nil, errors.New(errors.ErrCodeInvalidInput,
					"additional target %q must be [][]float64", name)
			}
			boxes, err := bbox.ToInternalBatch(records, st.rows, st.cols, p.boxFormat)
			if err != nil {
				return nil, err
			}
			st.boxStreams[name] = boxes
			st.boxOrder = append(st.boxOrder, name)
		}
	}
	return st, nil
}

// step runs one transform: probability gate, parameter sampling, application
// to every touched target kind, validation and label synchronization.
func (p *Pipeline) step(tr transform.Transform, st *callState) error {
	if dc, ok := tr.(transform.DimsChecker); ok {
		if err := dc.CheckDims(st.rows, st.cols); err != nil {
			return err
		}
	}

	// One gate draw and one parameter sample per transform per call, atomic
	// with respect to other Run calls sharing this generator.
	p.mu.Lock()
	apply := p.rng.Float64() < tr.Probability()
	var params transform.Params
	if apply {
		params = tr.Sample(p.rng, st.rows, st.cols)
	}
	p.mu.Unlock()

	if !apply {
		p.logger.Debug("transform skipped", "transform", tr.Name())
		return nil
	}
	p.logger.Debug("transform applied", "transform", tr.Name())

	oldRows, oldCols := st.rows, st.cols

	if ia, ok := tr.(transform.ImageApplier); ok {
		st.img = ia.ApplyToImage(st.img, params)
		for _, name := range st.imgOrder {
			if p.additional[name] == transform.KindImage {
				st.imgStreams[name] = ia.ApplyToImage(st.imgStreams[name], params)
			}
		}
	}
	if ma, ok := tr.(transform.MaskApplier); ok {
		if st.mask != nil {
			st.mask = ma.ApplyToMask(st.mask, params)
		}
		for _, name := range st.imgOrder {
			if p.additional[name] == transform.KindMask {
				st.imgStreams[name] = ma.ApplyToMask(st.imgStreams[name], params)
			}
		}
	}
	st.rows, st.cols = dims(st.img)

	if ka, ok := tr.(transform.KeypointApplier); ok {
		for _, name := range st.kpOrder {
			moved := ka.ApplyToKeypoints(st.kpStreams[name], params, oldRows, oldCols)
			kept, mask := target.FilterKeypoints(moved, st.rows, st.cols)
			st.kpStreams[name] = kept
			if name == TargetKeypoints {
				if err := p.reduceLabels(p.kpLabels, mask, st); err != nil {
					return err
				}
			}
		}
	}
	if kd, ok := tr.(transform.KeypointDropper); ok {
		for _, name := range st.kpOrder {
			mask := kd.KeypointKeepMask(st.kpStreams[name], params)
			kept, err := target.ApplyMask(mask, st.kpStreams[name])
			if err != nil {
				return err
			}
			st.kpStreams[name] = kept
			if name == TargetKeypoints {
				if err := p.reduceLabels(p.kpLabels, mask, st); err != nil {
					return err
				}
			}
		}
	}

	if ba, ok := tr.(transform.BoxApplier); ok {
		for _, name := range st.boxOrder {
			moved := ba.ApplyToBoxes(st.boxStreams[name], params, oldRows, oldCols)
			kept, mask := target.FilterBoxes(moved)
			st.boxStreams[name] = kept
			if name == TargetBboxes {
				if err := p.reduceLabels(p.boxLabels, mask, st); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// reduceLabels projects a keep mask onto the named label arrays.
func (p *Pipeline) reduceLabels(names []string, mask []bool, st *callState) error {
	for _, name := range names {
		vals, ok := st.labels[name]
		if !ok {
			continue
		}
		reduced, err := target.ApplyMask(mask, vals)
		if err != nil {
			return errors.Wrap(errors.ErrCodeTargetMismatch, err, "label field %q", name)
		}
		st.labels[name] = reduced
	}
	return nil
}

// assemble converts the working state back to the caller's external formats,
// mirroring the keys supplied on input.
func (p *Pipeline) assemble(d Data, st *callState) Data {
	out := Data{
		Image: st.img,
		Mask:  st.mask,
	}
	if d.Keypoints != nil {
		out.Keypoints = keypoint.FromInternalBatch(st.kpStreams[TargetKeypoints], st.rows, st.cols, p.kpFormat, p.kpUnit)
	}
	if d.Bboxes != nil {
		out.Bboxes = bbox.FromInternalBatch(st.boxStreams[TargetBboxes], st.rows, st.cols, p.boxFormat)
	}
	if d.Labels != nil {
		out.Labels = st.labels
	}
	if d.Additional != nil {
		out.Additional = make(map[string]any, len(d.Additional))
		for name := range d.Additional {
			switch p.additional[name] {
			case transform.KindImage, transform.KindMask:
				out.Additional[name] = st.imgStreams[name]
			case transform.KindKeypoints:
				out.Additional[name] = keypoint.FromInternalBatch(st.kpStreams[name], st.rows, st.cols, p.kpFormat, p.kpUnit)
			case transform.KindBboxes:
				out.Additional[name] = bbox.FromInternalBatch(st.boxStreams[name], st.rows, st.cols, p.boxFormat)
			}
		}
	}
	return out
}
