package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/menta2k/image-augment/internal/config"
	"github.com/menta2k/image-augment/internal/utils"
	"github.com/menta2k/image-augment/pkg/imageio"
	"github.com/menta2k/image-augment/pkg/keypoint"
	"github.com/menta2k/image-augment/pkg/pipeline"
	"github.com/menta2k/image-augment/pkg/transform"
)

var logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	TimeFormat:      time.Kitchen,
})

func main() {
	if err := rootCmd().Execute(); err != nil {
		logger.Fatal(err.Error())
	}
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "image-augment",
		Short: "Augment images for dataset generation",
		Long: "image-augment applies a configurable chain of geometric transforms " +
			"to images and writes one or more augmented variants per input.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logger.SetLevel(log.DebugLevel)
			}
		},
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (JSON)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(runCmd(&configPath))
	cmd.AddCommand(initConfigCmd())
	cmd.AddCommand(versionCmd())
	return cmd
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	cfg, err := config.LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runCmd(configPath *string) *cobra.Command {
	var (
		outDir   string
		seed     int64
		variants int
	)

	cmd := &cobra.Command{
		Use:   "run [inputs...]",
		Short: "Augment the given image files or directories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("out") {
				cfg.Output.OutputDir = outDir
			}
			if cmd.Flags().Changed("seed") {
				cfg.Augment.Seed = seed
			}
			if cmd.Flags().Changed("variants") {
				cfg.Augment.Variants = variants
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runBatch(cfg, args)
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", "./output", "output directory")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 uses the clock)")
	cmd.Flags().IntVar(&variants, "variants", 1, "augmented variants per input")
	return cmd
}

func initConfigCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "init-config",
		Short: "Write a default config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				path = config.GetConfigPath()
			}
			if err := config.Default().SaveToFile(path); err != nil {
				return err
			}
			logger.Info("wrote default config", "path", path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "path", "p", "", "destination path")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("image-augment 1.0.0")
		},
	}
}

// buildTransforms maps the config knobs onto the transform chain. Transforms
// with zero probability are left out entirely.
func buildTransforms(cfg *config.Config) []transform.Transform {
	var chain []transform.Transform
	if cfg.Augment.FlipP > 0 {
		chain = append(chain, transform.HorizontalFlip{P: cfg.Augment.FlipP})
	}
	if cfg.Augment.VerticalFlipP > 0 {
		chain = append(chain, transform.VerticalFlip{P: cfg.Augment.VerticalFlipP})
	}
	if cfg.Augment.Rotate90P > 0 {
		chain = append(chain, transform.RandomRotate90{P: cfg.Augment.Rotate90P})
	}
	if cfg.Augment.RotateP > 0 {
		chain = append(chain, transform.Rotate{P: cfg.Augment.RotateP, Limit: cfg.Augment.RotateLimit})
	}
	if cfg.Augment.ScaleP > 0 {
		chain = append(chain, transform.RandomScale{P: cfg.Augment.ScaleP, Limit: cfg.Augment.ScaleLimit})
	}
	if cfg.Augment.CropP > 0 {
		chain = append(chain, transform.RandomCrop{
			P:      cfg.Augment.CropP,
			Height: cfg.Augment.CropHeight,
			Width:  cfg.Augment.CropWidth,
		})
	}
	if cfg.Augment.DropoutP > 0 {
		chain = append(chain, transform.CoarseDropout{
			P:        cfg.Augment.DropoutP,
			MinHoles: 1, MaxHoles: cfg.Augment.DropoutHoles,
			MinHeight: 1, MaxHeight: cfg.Augment.DropoutMaxSize,
			MinWidth: 1, MaxWidth: cfg.Augment.DropoutMaxSize,
		})
	}
	return chain
}

func pipelineOptions(cfg *config.Config) pipeline.Options {
	opts := pipeline.Options{
		Seed:   cfg.Augment.Seed,
		Logger: logger,
	}
	if cfg.Keypoints.Format != "" {
		opts.Keypoints = &pipeline.KeypointParams{
			Format:      cfg.Keypoints.Format,
			AngleUnit:   keypoint.AngleUnit(cfg.Keypoints.AngleUnit),
			LabelFields: cfg.Keypoints.LabelFields,
		}
	}
	if cfg.Boxes.Format != "" {
		opts.Boxes = &pipeline.BoxParams{
			Format:      cfg.Boxes.Format,
			LabelFields: cfg.Boxes.LabelFields,
		}
	}
	return opts
}

func runBatch(cfg *config.Config, inputs []string) error {
	p, err := pipeline.Compose(buildTransforms(cfg), pipelineOptions(cfg))
	if err != nil {
		return err
	}

	var files []string
	for _, in := range inputs {
		info, err := os.Stat(in)
		if err != nil {
			return err
		}
		if info.IsDir() {
			found, err := utils.ListImageFiles(in)
			if err != nil {
				return err
			}
			files = append(files, found...)
		} else {
			files = append(files, in)
		}
	}
	if len(files) == 0 {
		return fmt.Errorf("no image files found in %v", inputs)
	}

	if err := utils.EnsureDir(cfg.Output.OutputDir); err != nil {
		return err
	}

	start := time.Now()
	written := 0
	for _, file := range files {
		img, err := imageio.LoadAny(file)
		if err != nil {
			logger.Error("skipping input", "file", file, "err", err)
			continue
		}
		for v := 0; v < cfg.Augment.Variants; v++ {
			out, err := p.Run(pipeline.Data{Image: img})
			if err != nil {
				return err
			}
			dest := utils.OutputFilename(file, cfg.Output.OutputDir,
				cfg.Output.Prefix, cfg.Output.Suffix, cfg.Output.Format,
				v, cfg.Augment.Variants)
			opts := imageio.SaveOptions{Quality: cfg.Output.Quality}
			if err := imageio.Save(out.Image, dest, opts); err != nil {
				return err
			}
			logger.Debug("wrote variant", "file", dest)
			written++
		}
	}
	logger.Info("augmentation finished",
		"inputs", len(files), "written", written, "elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}
